package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/bunker-game/internal/config"
	"github.com/wfunc/bunker-game/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 测试SQLite初始化与迁移
func TestInitAndAutoMigrate(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "bunker.db")
	err := Init(&config.DatabaseConfig{
		Driver:          "sqlite",
		DSN:             dsn,
		MaxIdleConns:    1,
		MaxOpenConns:    4,
		ConnMaxLifetime: time.Hour,
		LogLevel:        "silent",
	})
	require.NoError(t, err)
	defer Close()

	assert.True(t, IsConnected())
	require.NoError(t, AutoMigrate())

	for _, m := range models.All() {
		assert.True(t, GetDB().Migrator().HasTable(m), "%T", m)
	}

	// 迁移锁已释放
	_, statErr := os.Stat(dsn + ".migration.lock")
	assert.True(t, os.IsNotExist(statErr))
}

// 测试不支持的驱动
func TestInitUnknownDriver(t *testing.T) {
	err := Init(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

// 测试DSN补全
func TestSqliteDSN(t *testing.T) {
	dsn, err := sqliteDSN(":memory:")
	require.NoError(t, err)
	assert.Equal(t, ":memory:", dsn)

	dsn, err = sqliteDSN("file:x?mode=memory")
	require.NoError(t, err)
	assert.Equal(t, "file:x?mode=memory", dsn)

	dir := filepath.Join(t.TempDir(), "data")
	dsn, err = sqliteDSN(filepath.Join(dir, "a.db"))
	require.NoError(t, err)
	assert.Contains(t, dsn, "_busy_timeout=5000")
	assert.DirExists(t, dir)
}

// 数据库目录无法创建时返回明确的错误
func TestSqliteDSNDirError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := sqliteDSN(filepath.Join(blocker, "sub", "a.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "创建数据库目录失败")

	err = Init(&config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(blocker, "sub", "a.db"),
		LogLevel: "silent",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "创建数据库目录失败")
}

// 测试GORM日志适配器
func TestGormLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Warn)

	sql := func() (string, int64) { return "SELECT 1", 1 }

	// 记录未找到不输出
	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "SQL执行错误", logs.All()[0].Message)

	// Warn级别不输出普通SQL
	l.Trace(context.Background(), time.Now(), sql, nil)
	assert.Equal(t, 1, logs.Len())

	// LogMode返回新实例
	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	assert.Equal(t, 1, logs.Len())

	assert.Equal(t, gormlogger.Silent, ParseLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, ParseLogLevel("unknown"))
}
