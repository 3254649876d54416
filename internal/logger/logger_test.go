package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/bunker-game/internal/config"
	"go.uber.org/zap/zapcore"
)

// Init 只生效一次，文件输出和级别热更新放在同一个测试中
func TestInitFileOutputAndSetLevel(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(&config.LogConfig{
		Level:  "info",
		Format: "json",
		Output: "file",
		File: config.LogFileConfig{
			Path:     dir,
			Filename: "bunker.log",
			MaxSize:  1,
		},
		Modules: map[string]string{"game": "debug"},
	}))

	Debug("不应出现")
	Info("房间已创建")
	Error("删除房间失败")
	require.NoError(t, Sync())

	data, err := os.ReadFile(filepath.Join(dir, "bunker.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "房间已创建")
	assert.NotContains(t, string(data), "不应出现")

	errData, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errData), "删除房间失败")
	assert.NotContains(t, string(errData), "房间已创建")

	// 模块日志器使用独立级别
	assert.True(t, WithModule("game").Core().Enabled(zapcore.DebugLevel))
	assert.False(t, WithModule("http").Core().Enabled(zapcore.DebugLevel))

	SetLevel("debug")
	Debug("级别已调整")
	require.NoError(t, Sync())
	data, err = os.ReadFile(filepath.Join(dir, "bunker.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "级别已调整")
	SetLevel("info")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("unknown"))
}
