package game

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/wfunc/bunker-game/internal/models"
	"github.com/wfunc/bunker-game/internal/pubsub"
	"github.com/wfunc/bunker-game/internal/repository"
	"go.uber.org/zap"
)

// SweepOutcome 单个房间的清理结果
type SweepOutcome string

const (
	SweepKept           SweepOutcome = "kept"            // 无需处理
	SweepGone           SweepOutcome = "gone"            // 房间已不存在
	SweepFinishedReaped SweepOutcome = "finished_reaped" // 已结束且无人查看
	SweepOrphaned       SweepOutcome = "orphaned"        // 无在线玩家
	SweepHostAbandoned  SweepOutcome = "host_abandoned"  // 房主离线
	SweepHostLeft       SweepOutcome = "host_left"       // 房主主动离开
	SweepSeatsReclaimed SweepOutcome = "seats_reclaimed" // 回收了离线玩家的座位
	SweepFailed         SweepOutcome = "failed"          // 读写失败，已记录日志
)

// RoomDeleted 该结果是否删除了房间
func (o SweepOutcome) RoomDeleted() bool {
	switch o {
	case SweepFinishedReaped, SweepOrphaned, SweepHostAbandoned, SweepHostLeft:
		return true
	}
	return false
}

// SweepResult 单个房间的清理结果
type SweepResult struct {
	RoomID    uint         `json:"room_id"`
	Outcome   SweepOutcome `json:"outcome"`
	Reclaimed []uint       `json:"reclaimed,omitempty"`
}

// SweepReport 一次全量清理的汇总
type SweepReport struct {
	Scanned      int                  `json:"scanned"`
	RoomsDeleted int                  `json:"rooms_deleted"`
	SeatsFreed   int                  `json:"seats_freed"`
	Outcomes     map[SweepOutcome]int `json:"outcomes"`
}

// Sweeper 按在线状态回收房间和座位。
// 可被多个请求并发触发，所有删除都是幂等的；错误只记录日志不向上返回。
type Sweeper struct {
	repos      *repository.Manager
	tracker    *Tracker
	clock      clockwork.Clock
	events     notifier
	logger     *zap.Logger
	intervalCh chan time.Duration
}

// NewSweeper 创建清理器
func NewSweeper(repos *repository.Manager, tracker *Tracker, clock clockwork.Clock, pub pubsub.Publisher, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		repos:      repos,
		tracker:    tracker,
		clock:      clock,
		events:     notifier{pub: pub, logger: logger},
		logger:     logger,
		intervalCh: make(chan time.Duration, 1),
	}
}

// SweepAll 清理所有房间
func (s *Sweeper) SweepAll(ctx context.Context) *SweepReport {
	report := &SweepReport{Outcomes: make(map[SweepOutcome]int)}

	ids, err := s.repos.Room().ListIDs(ctx)
	if err != nil {
		s.logger.Error("读取房间列表失败", zap.Error(err))
		return report
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		res := s.SweepRoom(ctx, id)
		report.Scanned++
		report.Outcomes[res.Outcome]++
		if res.Outcome.RoomDeleted() {
			report.RoomsDeleted++
		}
		report.SeatsFreed += len(res.Reclaimed)
	}

	if report.RoomsDeleted > 0 || report.SeatsFreed > 0 {
		s.logger.Info("清理完成",
			zap.Int("scanned", report.Scanned),
			zap.Int("rooms_deleted", report.RoomsDeleted),
			zap.Int("seats_freed", report.SeatsFreed))
	}
	return report
}

// SweepRoom 清理单个房间。
// 判定基于读取到的快照，删除语句带上同一时刻的在线条件重新校验，读取之后到达的心跳不会被删掉。
func (s *Sweeper) SweepRoom(ctx context.Context, roomID uint) *SweepResult {
	res := &SweepResult{RoomID: roomID}
	now := s.tracker.Now()
	policy := s.tracker.Policy()
	live := policy.Liveness(now)

	room, err := s.repos.Room().FindByID(ctx, roomID)
	if err != nil {
		if isNotFound(err) {
			res.Outcome = SweepGone
			return res
		}
		s.logger.Error("读取房间失败", zap.Uint("room_id", roomID), zap.Error(err))
		res.Outcome = SweepFailed
		return res
	}

	players, err := s.repos.Player().ListByRoom(ctx, roomID)
	if err != nil {
		s.logger.Error("读取玩家失败", zap.Uint("room_id", roomID), zap.Error(err))
		res.Outcome = SweepFailed
		return res
	}

	// 已结束的房间保留一段时间供查看结果
	if room.Phase == models.PhaseFinished {
		if s.tracker.anyRecentlyActiveAt(players, now) {
			res.Outcome = SweepKept
			return res
		}
		res.Outcome = s.deleteRoom(ctx, roomID, SweepFinishedReaped,
			repository.InPhase(models.PhaseFinished),
			repository.NoActivePlayers(policy.RetentionLiveness(now)))
		return res
	}

	active := s.tracker.activeSetAt(players, now)
	if len(active) == 0 {
		res.Outcome = s.deleteRoom(ctx, roomID, SweepOrphaned,
			repository.NotInPhase(models.PhaseFinished),
			repository.NoActivePlayers(live))
		return res
	}

	var host *models.Player
	for _, p := range players {
		if p.IsHostOf(room) {
			host = p
			break
		}
	}
	if host == nil || !active[host.ID] {
		res.Outcome = s.deleteRoom(ctx, roomID, SweepHostAbandoned,
			repository.NotInPhase(models.PhaseFinished),
			repository.HostInactive(live))
		return res
	}

	var inactive []uint
	for _, p := range players {
		if p.ID != host.ID && !active[p.ID] {
			inactive = append(inactive, p.ID)
		}
	}
	if len(inactive) == 0 {
		res.Outcome = SweepKept
		return res
	}

	removed, deleted, err := s.repos.ReclaimPlayers(ctx, roomID, inactive, live)
	if err != nil {
		s.logger.Warn("回收座位失败", zap.Uint("room_id", roomID), zap.Error(err))
		res.Outcome = SweepFailed
		return res
	}
	if len(removed) == 0 {
		res.Outcome = SweepKept
		return res
	}
	s.logger.Info("回收离线玩家座位",
		zap.Uint("room_id", roomID),
		zap.Uints("players", removed),
		zap.Int64("deleted", deleted.Players))
	s.events.publish(ctx, pubsub.EventSeatsReclaimed, roomID, map[string]interface{}{"players": removed})

	res.Outcome = SweepSeatsReclaimed
	res.Reclaimed = removed
	return res
}

// HostLeft 房主主动离开，不检查在线状态直接解散房间
func (s *Sweeper) HostLeft(ctx context.Context, roomID uint) *SweepResult {
	return &SweepResult{RoomID: roomID, Outcome: s.deleteRoom(ctx, roomID, SweepHostLeft)}
}

// deleteRoom 先尝试事务级联删除，失败后逐步删除，依赖数据的失败不阻止删除房间。
// guards 在删除时重新校验，不成立说明房间已恢复，保留房间。
func (s *Sweeper) deleteRoom(ctx context.Context, roomID uint, reason SweepOutcome, guards ...repository.RoomGuard) SweepOutcome {
	res, err := s.repos.DeleteRoomCascade(ctx, roomID, guards...)
	if err != nil {
		s.logger.Warn("事务删除房间失败，改为逐步删除",
			zap.Uint("room_id", roomID),
			zap.Error(err))

		var failures []*repository.StepError
		res, failures, err = s.repos.DeleteRoomBestEffort(ctx, roomID, guards...)
		for _, f := range failures {
			s.logger.Warn("删除房间数据失败",
				zap.Uint("room_id", roomID),
				zap.String("step", f.Step),
				zap.Error(f.Err))
		}
		if err != nil {
			s.logger.Error("删除房间失败", zap.Uint("room_id", roomID), zap.Error(err))
			return SweepFailed
		}
	}

	if res.Rooms == 0 {
		if len(guards) == 0 {
			return SweepGone
		}
		if _, err := s.repos.Room().FindByID(ctx, roomID); err != nil {
			if isNotFound(err) {
				return SweepGone
			}
			s.logger.Warn("读取房间失败", zap.Uint("room_id", roomID), zap.Error(err))
			return SweepFailed
		}
		s.logger.Debug("房间状态已变化，放弃删除",
			zap.Uint("room_id", roomID),
			zap.String("reason", string(reason)))
		return SweepKept
	}
	s.logger.Info("房间已删除",
		zap.Uint("room_id", roomID),
		zap.String("reason", string(reason)),
		zap.Int64("players", res.Players),
		zap.Int64("votes", res.Votes))
	s.events.publish(ctx, pubsub.EventRoomClosed, roomID, map[string]interface{}{"reason": reason})
	return reason
}

// SetInterval 修改定时清理间隔，配置热更新时调用
func (s *Sweeper) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case s.intervalCh <- d:
	default:
	}
}

// StartCleanupTask 启动定时清理任务
func (s *Sweeper) StartCleanupTask(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := s.clock.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("停止房间清理任务")
				return
			case d := <-s.intervalCh:
				ticker.Reset(d)
				s.logger.Info("清理间隔已更新", zap.Duration("interval", d))
			case <-ticker.Chan():
				s.SweepAll(ctx)
			}
		}
	}()
}
