package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/wfunc/bunker-game/internal/config"
	"golang.org/x/time/rate"
)

// Limiter 按身份限流
type Limiter interface {
	// Allow 消耗一次配额，返回是否放行
	Allow(key string) bool
}

// Unlimited 不限流
type Unlimited struct{}

// Allow 总是放行
func (Unlimited) Allow(string) bool { return true }

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenBucket 每个身份一个令牌桶，长时间未使用的桶会被回收
type TokenBucket struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	clock   clockwork.Clock
	buckets map[string]*bucket
}

// NewTokenBucket 创建令牌桶限流器
func NewTokenBucket(perMinute, burst int, idleTTL time.Duration, clock clockwork.Clock) *TokenBucket {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if burst <= 0 {
		burst = 1
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &TokenBucket{
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		idleTTL: idleTTL,
		clock:   clock,
		buckets: make(map[string]*bucket),
	}
}

// FromConfig 按配置创建限流器，未启用时返回 Unlimited
func FromConfig(cfg config.RateLimitConfig, clock clockwork.Clock) Limiter {
	if !cfg.Enabled || cfg.RequestsPerMinute <= 0 {
		return Unlimited{}
	}
	return NewTokenBucket(cfg.RequestsPerMinute, cfg.Burst, cfg.IdleTTL, clock)
}

// Allow 消耗一次配额
func (b *TokenBucket) Allow(key string) bool {
	now := b.clock.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	bk, ok := b.buckets[key]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(b.limit, b.burst)}
		b.buckets[key] = bk
	}
	bk.lastSeen = now
	return bk.limiter.AllowN(now, 1)
}

// Cleanup 回收空闲的桶，返回回收数量
func (b *TokenBucket) Cleanup() int {
	cutoff := b.clock.Now().Add(-b.idleTTL)

	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for key, bk := range b.buckets {
		if bk.lastSeen.Before(cutoff) {
			delete(b.buckets, key)
			removed++
		}
	}
	return removed
}

// Len 当前桶数量
func (b *TokenBucket) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buckets)
}

// StartCleanupTask 定时回收空闲的桶
func (b *TokenBucket) StartCleanupTask(ctx context.Context) {
	go func() {
		ticker := b.clock.NewTicker(b.idleTTL)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				b.Cleanup()
			}
		}
	}()
}
