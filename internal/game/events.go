package game

import (
	"context"
	stderrors "errors"
	"time"

	apperrors "github.com/wfunc/bunker-game/internal/errors"
	"github.com/wfunc/bunker-game/internal/models"
	"github.com/wfunc/bunker-game/internal/pubsub"
	"github.com/wfunc/bunker-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GameSummary 游戏结束时的统计数据
type GameSummary struct {
	RoomID     uint             `json:"room_id"`
	Round      int              `json:"round"`
	FinishedAt time.Time        `json:"finished_at"`
	Players    []*models.Player `json:"-"`
	Survivors  []uint           `json:"survivors"`
}

// StatsHook 游戏结束钩子，每局只会被调用一次，失败不影响结束状态
type StatsHook interface {
	OnGameFinished(ctx context.Context, summary *GameSummary) error
}

// StatsHookFunc 函数形式的钩子
type StatsHookFunc func(ctx context.Context, summary *GameSummary) error

// OnGameFinished 调用函数本身
func (f StatsHookFunc) OnGameFinished(ctx context.Context, summary *GameSummary) error {
	return f(ctx, summary)
}

// DBStatsHook 把结果写入玩家战绩表
type DBStatsHook struct {
	stats repository.StatRepository
}

// NewDBStatsHook 创建战绩钩子
func NewDBStatsHook(stats repository.StatRepository) *DBStatsHook {
	return &DBStatsHook{stats: stats}
}

// OnGameFinished 为每位玩家记录一局，未淘汰即为幸存
func (h *DBStatsHook) OnGameFinished(ctx context.Context, summary *GameSummary) error {
	var errs []error
	for _, p := range summary.Players {
		if err := h.stats.RecordGame(ctx, p.UserID, !p.IsEliminated, summary.FinishedAt); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// notifier 尽力发布房间事件，失败只记录日志
type notifier struct {
	pub    pubsub.Publisher
	logger *zap.Logger
}

func (n notifier) publish(ctx context.Context, t pubsub.EventType, roomID uint, data interface{}) {
	if n.pub == nil {
		return
	}
	if err := n.pub.Publish(ctx, pubsub.NewEvent(t, roomID, data)); err != nil {
		n.logger.Warn("发布房间事件失败",
			zap.String("type", string(t)),
			zap.Uint("room_id", roomID),
			zap.Error(err))
	}
}

// errPhaseChanged 事务内条件更新未命中，阶段已被其他请求修改
var errPhaseChanged = stderrors.New("阶段已被其他请求修改")

func isNotFound(err error) bool {
	return stderrors.Is(err, gorm.ErrRecordNotFound)
}

// dbErr 把仓储错误转换为业务错误，记录不存在时返回 NotFound
func dbErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return apperrors.New(apperrors.ErrNotFound, what+"不存在")
	}
	if stderrors.Is(err, repository.ErrMetadataConflict) {
		return apperrors.Wrap(err, apperrors.ErrPreconditionFailed, "玩家状态变化过快，请重试")
	}
	return apperrors.Wrap(err, apperrors.ErrDatabaseQuery, what)
}
