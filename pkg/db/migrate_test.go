package db

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/iceymoss/go-newsfeed/pkg/db/objects"
)

// readMigrations 按版本顺序读取全部 up 脚本
func readMigrations(t *testing.T, driver string) map[uint]string {
	t.Helper()
	src, err := MigrationSource(driver)
	require.NoError(t, err)
	defer src.Close()

	out := make(map[uint]string)
	version, err := src.First()
	require.NoError(t, err)
	for {
		r, _, err := src.ReadUp(version)
		require.NoError(t, err)
		body, err := io.ReadAll(r)
		require.NoError(t, err)
		_ = r.Close()
		out[version] = string(body)

		next, err := src.Next(version)
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		require.NoError(t, err)
		version = next
	}
	return out
}

func TestMySQLMigrations(t *testing.T) {
	scripts := readMigrations(t, DriverMySQL)
	require.Len(t, scripts, 4)

	var all strings.Builder
	for version, body := range scripts {
		stmt := strings.TrimSpace(body)
		// 未开启 multiStatements，每个文件只能有一条语句
		assert.Equal(t, 1, strings.Count(stmt, ";"), "version %d", version)
		assert.True(t, strings.HasSuffix(stmt, ";"), "version %d", version)
		assert.NotContains(t, strings.ToUpper(stmt), "UUID", "mysql 没有 uuid 类型")
		all.WriteString(stmt)
	}
	assert.Contains(t, all.String(), "UNIQUE KEY idx_news_articles_source_url (source_url)")
	for _, table := range []string{"categories", "news_articles", "service_links", "sys_job_logs"} {
		assert.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
}

func TestPostgresMigrations(t *testing.T) {
	scripts := readMigrations(t, DriverPostgres)
	require.Contains(t, scripts, uint(1))
	assert.Contains(t, scripts[1], "CREATE UNIQUE INDEX IF NOT EXISTS idx_news_articles_source_url")
}

func TestMigrationSourceUnknownDriver(t *testing.T) {
	_, err := MigrationSource("sqlite")
	assert.Error(t, err)
}

// AutoMigrate 使用模型标签建表，标签中不能出现某个数据库独有的类型
func TestModelColumnTypesArePortable(t *testing.T) {
	cache := &sync.Map{}
	for _, model := range []any{&objects.Category{}, &objects.NewsArticle{}, &objects.ServiceLink{}, &objects.SysJobLog{}} {
		s, err := schema.Parse(model, cache, schema.NamingStrategy{})
		require.NoError(t, err)
		for _, field := range s.Fields {
			assert.NotEqual(t, "uuid", strings.ToLower(field.TagSettings["TYPE"]), "%s.%s", s.Table, field.DBName)
		}
	}
}

func TestMigrateFallsBackToAutoMigrate(t *testing.T) {
	dbConn, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := dbConn.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, Migrate(dbConn, "sqlite", zap.NewNop()))
	for _, table := range []string{"categories", "news_articles", "service_links", "sys_job_logs"} {
		assert.True(t, dbConn.Migrator().HasTable(table), table)
	}
	assert.True(t, dbConn.Migrator().HasIndex(&objects.NewsArticle{}, "idx_news_articles_source_url"))
}
