package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试默认配置
func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, 30*time.Second, c.Game.ActiveThreshold)
	assert.Equal(t, 5*time.Minute, c.Game.JoinGrace)
	assert.Equal(t, time.Hour, c.Game.FinishedRetention)
	assert.Equal(t, 2, c.Game.MinPlayers)
	assert.Equal(t, 20, c.Game.MaxPlayers)
	assert.Equal(t, "local", c.PubSub.Driver)
	assert.Equal(t, "sqlite", c.Database.Driver)
}

// 测试配置校验
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"最少人数过小", func(c *Config) { c.Game.MinPlayers = 1 }},
		{"最大人数小于最少人数", func(c *Config) { c.Game.MaxPlayers = 1 }},
		{"默认人数越界", func(c *Config) { c.Game.DefaultMaxPlayers = 50 }},
		{"阈值为零", func(c *Config) { c.Game.ActiveThreshold = 0 }},
		{"未知回合模式", func(c *Config) { c.Game.DefaultRoundMode = "turbo" }},
		{"未知分发驱动", func(c *Config) { c.PubSub.Driver = "kafka" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
