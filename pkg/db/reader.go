package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/iceymoss/go-newsfeed/internal/conf"
)

// OpenReader 返回给公开 feed 查询使用的 sqlx 连接
// 配置了 read_url 时连接只读副本 (lib/pq)，否则复用 gorm 的连接池
func OpenReader(cfg conf.DatabaseConfig, primary *gorm.DB) (*sqlx.DB, error) {
	driverName := cfg.Driver
	if driverName == "" {
		driverName = DriverPostgres
	}

	if cfg.ReadURL != "" && driverName == DriverPostgres {
		readCfg := cfg
		readCfg.URL = cfg.ReadURL
		dsn, err := DSN(readCfg)
		if err != nil {
			return nil, err
		}
		reader, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("connect read replica: %w", err)
		}
		reader.SetMaxOpenConns(20)
		reader.SetMaxIdleConns(5)
		return reader, nil
	}

	sqlDB, err := primary.DB()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(sqlDB, driverName), nil
}
