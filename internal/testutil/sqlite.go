// Package testutil 提供测试用的内存数据库
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iceymoss/go-newsfeed/pkg/db/objects"
)

var dbSeq atomic.Int64

// NewSQLite 每次调用返回一个独立的内存库，并完成建表
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:newsfeed_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	dbConn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbConn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, dbConn.AutoMigrate(
		&objects.Category{},
		&objects.NewsArticle{},
		&objects.ServiceLink{},
		&objects.SysJobLog{},
	))
	return dbConn
}
