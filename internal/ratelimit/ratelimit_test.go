package ratelimit

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/wfunc/bunker-game/internal/config"
)

func TestTokenBucketPerIdentity(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tb := NewTokenBucket(60, 3, time.Minute, clock)

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow("alice"), "突发第%d次", i+1)
	}
	assert.False(t, tb.Allow("alice"))
	assert.True(t, tb.Allow("bob"), "不同身份互不影响")

	// 每分钟60次即每秒补充一个
	clock.Advance(time.Second)
	assert.True(t, tb.Allow("alice"))
	assert.False(t, tb.Allow("alice"))
}

func TestTokenBucketCleanup(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tb := NewTokenBucket(60, 1, time.Minute, clock)

	tb.Allow("alice")
	clock.Advance(30 * time.Second)
	tb.Allow("bob")
	assert.Equal(t, 2, tb.Len())

	clock.Advance(45 * time.Second)
	assert.Equal(t, 1, tb.Cleanup())
	assert.Equal(t, 1, tb.Len())

	// 回收后重新计数
	assert.True(t, tb.Allow("alice"))
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default().Security.RateLimit

	_, ok := FromConfig(cfg, nil).(*TokenBucket)
	assert.True(t, ok)

	cfg.Enabled = false
	l := FromConfig(cfg, nil)
	assert.IsType(t, Unlimited{}, l)
	for i := 0; i < 1000; i++ {
		assert.True(t, l.Allow("x"))
	}
}
