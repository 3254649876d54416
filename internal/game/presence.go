package game

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/wfunc/bunker-game/internal/config"
	apperrors "github.com/wfunc/bunker-game/internal/errors"
	"github.com/wfunc/bunker-game/internal/models"
	"github.com/wfunc/bunker-game/internal/repository"
)

// PresencePolicy 在线判定参数
type PresencePolicy struct {
	ActiveThreshold   time.Duration // 心跳有效期
	JoinGrace         time.Duration // 从未心跳的玩家自加入起的宽限期
	FinishedRetention time.Duration // 已结束房间的保留期
}

// PolicyFromConfig 从游戏配置读取在线判定参数
func PolicyFromConfig(cfg *config.GameConfig) PresencePolicy {
	return PresencePolicy{
		ActiveThreshold:   cfg.ActiveThreshold,
		JoinGrace:         cfg.JoinGrace,
		FinishedRetention: cfg.FinishedRetention,
	}
}

// Liveness 转换为存储层可以重新校验的在线条件
func (p PresencePolicy) Liveness(now time.Time) repository.Liveness {
	return repository.Liveness{
		SeenSince:   now.Add(-p.ActiveThreshold),
		JoinedSince: now.Add(-p.JoinGrace),
	}
}

// RetentionLiveness 已结束房间使用的在线条件
func (p PresencePolicy) RetentionLiveness(now time.Time) repository.Liveness {
	return repository.Liveness{
		SeenSince:   now.Add(-p.FinishedRetention),
		JoinedSince: now.Add(-p.JoinGrace),
	}
}

// IsActive 判断玩家在 now 时刻是否在线。
// 有心跳时看最后心跳是否在有效期内；从未心跳时看加入时间是否在宽限期内。
func IsActive(p *models.Player, now time.Time, threshold, grace time.Duration) bool {
	if p.LastSeenAt != nil {
		return now.Sub(*p.LastSeenAt) <= threshold
	}
	return now.Sub(p.JoinedAt) <= grace
}

// Tracker 玩家在线状态跟踪器
type Tracker struct {
	players repository.PlayerRepository
	clock   clockwork.Clock
	policy  PresencePolicy
}

// NewTracker 创建在线状态跟踪器
func NewTracker(players repository.PlayerRepository, clock clockwork.Clock, policy PresencePolicy) *Tracker {
	return &Tracker{players: players, clock: clock, policy: policy}
}

// Now 当前时间
func (t *Tracker) Now() time.Time {
	return t.clock.Now()
}

// Policy 当前判定参数
func (t *Tracker) Policy() PresencePolicy {
	return t.policy
}

// RecordHeartbeat 记录玩家心跳
func (t *Tracker) RecordHeartbeat(ctx context.Context, playerID uint) (time.Time, error) {
	now := t.clock.Now()
	ok, err := t.players.Touch(ctx, playerID, now)
	if err != nil {
		return now, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "记录心跳失败")
	}
	if !ok {
		return now, apperrors.New(apperrors.ErrNotFound, "玩家不存在")
	}
	return now, nil
}

// IsActive 按当前时间判断玩家是否在线
func (t *Tracker) IsActive(p *models.Player) bool {
	return IsActive(p, t.clock.Now(), t.policy.ActiveThreshold, t.policy.JoinGrace)
}

// ActiveSet 返回在线玩家ID集合
func (t *Tracker) ActiveSet(players []*models.Player) map[uint]bool {
	return t.activeSetAt(players, t.clock.Now())
}

func (t *Tracker) activeSetAt(players []*models.Player, now time.Time) map[uint]bool {
	set := make(map[uint]bool, len(players))
	for _, p := range players {
		if IsActive(p, now, t.policy.ActiveThreshold, t.policy.JoinGrace) {
			set[p.ID] = true
		}
	}
	return set
}

// AnyRecentlyActive 是否有玩家在保留期内活跃过，用于判断已结束房间能否回收
func (t *Tracker) AnyRecentlyActive(players []*models.Player) bool {
	return t.anyRecentlyActiveAt(players, t.clock.Now())
}

func (t *Tracker) anyRecentlyActiveAt(players []*models.Player, now time.Time) bool {
	for _, p := range players {
		if IsActive(p, now, t.policy.FinishedRetention, t.policy.JoinGrace) {
			return true
		}
	}
	return false
}
