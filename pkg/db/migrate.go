package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iceymoss/go-newsfeed/migrations"
	"github.com/iceymoss/go-newsfeed/pkg/db/objects"
)

const migrationsTable = "schema_migrations"

// Migrate 建表
// postgres 和 mysql 走内嵌 SQL 迁移 (唯一索引在 SQL 中声明)，其余驱动 (测试用 sqlite) 退回 AutoMigrate
func Migrate(dbConn *gorm.DB, driver string, log *zap.Logger) error {
	if driver == "" {
		driver = DriverPostgres
	}
	if driver != DriverPostgres && driver != DriverMySQL {
		return dbConn.AutoMigrate(&objects.Category{}, &objects.NewsArticle{}, &objects.ServiceLink{}, &objects.SysJobLog{})
	}

	sqlDB, err := dbConn.DB()
	if err != nil {
		return err
	}

	src, err := MigrationSource(driver)
	if err != nil {
		return err
	}

	dbDriver, err := migrationDriver(sqlDB, driver)
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, dbDriver)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("Nothing to migrate", zap.String("driver", driver))
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}

	log.Info("Successfully migrated to the latest version", zap.String("driver", driver))
	return nil
}

// MigrationSource 返回驱动对应的内嵌迁移脚本
func MigrationSource(driver string) (source.Driver, error) {
	switch driver {
	case DriverPostgres, DriverMySQL:
	default:
		return nil, fmt.Errorf("no sql migrations for driver %q", driver)
	}
	src, err := iofs.New(migrations.FS, driver)
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	return src, nil
}

func migrationDriver(sqlDB *sql.DB, driver string) (database.Driver, error) {
	if driver == DriverMySQL {
		// mysql 驱动默认不开启 multiStatements，脚本每个文件只写一条语句
		return migratemysql.WithInstance(sqlDB, &migratemysql.Config{MigrationsTable: migrationsTable})
	}
	return migratepg.WithInstance(sqlDB, &migratepg.Config{MigrationsTable: migrationsTable})
}
