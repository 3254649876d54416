package game

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	apperrors "github.com/wfunc/bunker-game/internal/errors"
	"github.com/wfunc/bunker-game/internal/logger"
	"github.com/wfunc/bunker-game/internal/models"
	"github.com/wfunc/bunker-game/internal/pubsub"
	"github.com/wfunc/bunker-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PhaseEvent 触发阶段转换的事件
type PhaseEvent string

const (
	EventStartGame      PhaseEvent = "start_game"
	EventSkipIntro      PhaseEvent = "skip_intro"
	EventStartVoting    PhaseEvent = "start_voting"
	EventEndVoting      PhaseEvent = "end_voting"
	EventAdvanceRound   PhaseEvent = "advance_round"
	EventFinishGame     PhaseEvent = "finish_game"
	EventFinishManually PhaseEvent = "finish_manually"
)

// PhaseTransition 阶段转换定义
type PhaseTransition struct {
	From  models.Phase
	Event PhaseEvent
	To    models.Phase
}

// Rules 回合规则
type Rules struct {
	MinPlayers        int // 开局最少人数
	SurvivorThreshold int // 剩余人数不超过该值时游戏结束
}

// TransitionResult 阶段操作结果。
// Applied 为 false 表示本次调用没有改变状态（已被其他请求完成），不是错误。
type TransitionResult struct {
	Applied   bool         `json:"applied"`
	Event     PhaseEvent   `json:"event"`
	From      models.Phase `json:"from"`
	To        models.Phase `json:"to"`
	Room      *models.Room `json:"room"`
	Tally     *TallyResult `json:"tally,omitempty"`
	Survivors []uint       `json:"survivors,omitempty"`
}

// PhaseMachine 房间阶段状态机，状态保存在数据库中，
// 每次转换都是以当前阶段为条件的更新，并发请求只有一个生效。
type PhaseMachine struct {
	repos       *repository.Manager
	clock       clockwork.Clock
	rng         Rand
	dealer      *Dealer
	rules       Rules
	stats       StatsHook
	events      notifier
	logger      *zap.Logger
	transitions map[string]PhaseTransition
	sources     map[PhaseEvent][]models.Phase
}

// PhaseMachineOption 状态机选项
type PhaseMachineOption func(*PhaseMachine)

// WithClock 指定时钟
func WithClock(clock clockwork.Clock) PhaseMachineOption {
	return func(sm *PhaseMachine) { sm.clock = clock }
}

// WithRand 指定随机源
func WithRand(rng Rand) PhaseMachineOption {
	return func(sm *PhaseMachine) {
		sm.rng = rng
		sm.dealer = NewDealer(rng)
	}
}

// WithStatsHook 指定游戏结束钩子
func WithStatsHook(hook StatsHook) PhaseMachineOption {
	return func(sm *PhaseMachine) { sm.stats = hook }
}

// WithPublisher 指定事件发布者
func WithPublisher(pub pubsub.Publisher) PhaseMachineOption {
	return func(sm *PhaseMachine) { sm.events.pub = pub }
}

// WithLogger 指定日志
func WithLogger(l *zap.Logger) PhaseMachineOption {
	return func(sm *PhaseMachine) {
		sm.logger = l
		sm.events.logger = l
	}
}

// NewPhaseMachine 创建阶段状态机
func NewPhaseMachine(repos *repository.Manager, rules Rules, opts ...PhaseMachineOption) *PhaseMachine {
	l := logger.WithModule("game")
	sm := &PhaseMachine{
		repos:       repos,
		clock:       clockwork.NewRealClock(),
		rng:         DefaultRand,
		dealer:      NewDealer(DefaultRand),
		rules:       rules,
		events:      notifier{logger: l},
		logger:      l,
		transitions: make(map[string]PhaseTransition),
		sources:     make(map[PhaseEvent][]models.Phase),
	}
	for _, opt := range opts {
		opt(sm)
	}
	sm.initTransitions()
	return sm
}

// initTransitions 初始化阶段转换规则
func (sm *PhaseMachine) initTransitions() {
	sm.addTransition(models.PhaseWaiting, EventStartGame, models.PhasePlaying)
	sm.addTransition(models.PhasePlaying, EventSkipIntro, models.PhasePlaying)
	sm.addTransition(models.PhasePlaying, EventStartVoting, models.PhaseVoting)
	sm.addTransition(models.PhaseVoting, EventEndVoting, models.PhaseResults)
	sm.addTransition(models.PhaseResults, EventAdvanceRound, models.PhasePlaying)
	sm.addTransition(models.PhaseResults, EventFinishGame, models.PhaseFinished)

	// 手动模式下房主可在任意进行中阶段结束
	sm.addTransition(models.PhasePlaying, EventFinishManually, models.PhaseFinished)
	sm.addTransition(models.PhaseVoting, EventFinishManually, models.PhaseFinished)
	sm.addTransition(models.PhaseResults, EventFinishManually, models.PhaseFinished)
}

// addTransition 添加转换规则
func (sm *PhaseMachine) addTransition(from models.Phase, event PhaseEvent, to models.Phase) {
	sm.transitions[transitionKey(from, event)] = PhaseTransition{From: from, Event: event, To: to}
	sm.sources[event] = append(sm.sources[event], from)
}

// transitionKey 生成转换键
func transitionKey(from models.Phase, event PhaseEvent) string {
	return fmt.Sprintf("%s:%s", from, event)
}

// CanTrigger 当前阶段能否触发事件
func (sm *PhaseMachine) CanTrigger(from models.Phase, event PhaseEvent) bool {
	_, ok := sm.transitions[transitionKey(from, event)]
	return ok
}

// lookup 查找转换，不存在时返回阶段错误
func (sm *PhaseMachine) lookup(room *models.Room, event PhaseEvent) (PhaseTransition, error) {
	t, ok := sm.transitions[transitionKey(room.Phase, event)]
	if !ok {
		return t, apperrors.Newf(apperrors.ErrWrongPhase, "阶段 %s 不能执行 %s", room.Phase, event)
	}
	return t, nil
}

// authorize 读取房间并校验调用者为房主
func (sm *PhaseMachine) authorize(ctx context.Context, roomID uint, userID string) (*models.Room, error) {
	if userID == "" {
		return nil, apperrors.New(apperrors.ErrUnauthorized)
	}
	room, err := sm.repos.Room().FindByID(ctx, roomID)
	if err != nil {
		return nil, dbErr(err, "房间")
	}
	if !room.IsHostUser(userID) {
		return nil, apperrors.New(apperrors.ErrForbidden, "只有房主可以操作")
	}
	return room, nil
}

// anchor 自动模式返回当前时间作为计时锚点，手动模式返回 nil
func (sm *PhaseMachine) anchor(room *models.Room) interface{} {
	if room.Settings.IsManual() {
		return nil
	}
	return sm.clock.Now()
}

// notApplied 已被其他请求完成时重新读取房间返回
func (sm *PhaseMachine) notApplied(ctx context.Context, event PhaseEvent, from models.Phase, roomID uint) (*TransitionResult, error) {
	room, err := sm.repos.Room().FindByID(ctx, roomID)
	if err != nil {
		return nil, dbErr(err, "房间")
	}
	sm.logger.Debug("阶段转换未生效",
		zap.Uint("room_id", roomID),
		zap.String("event", string(event)),
		zap.String("phase", string(room.Phase)))
	return &TransitionResult{Event: event, From: from, To: room.Phase, Room: room}, nil
}

// applied 转换成功后记录日志并读取最新房间
func (sm *PhaseMachine) applied(ctx context.Context, t PhaseTransition, roomID uint) (*TransitionResult, error) {
	sm.logger.Info("阶段转换",
		zap.Uint("room_id", roomID),
		zap.String("from", string(t.From)),
		zap.String("to", string(t.To)),
		zap.String("event", string(t.Event)))

	room, err := sm.repos.Room().FindByID(ctx, roomID)
	if err != nil {
		return nil, dbErr(err, "房间")
	}
	return &TransitionResult{Applied: true, Event: t.Event, From: t.From, To: t.To, Room: room}, nil
}

// StartGame 开始游戏：waiting -> playing，并为每位玩家发特征和卡牌
func (sm *PhaseMachine) StartGame(ctx context.Context, roomID uint, userID string) (*TransitionResult, error) {
	room, err := sm.authorize(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if room.Phase == models.PhasePlaying {
		return sm.notApplied(ctx, EventStartGame, room.Phase, roomID)
	}
	t, err := sm.lookup(room, EventStartGame)
	if err != nil {
		return nil, err
	}

	// 有开场介绍时计时从跳过介绍开始
	var anchor interface{}
	if !room.Settings.IntroEnabled {
		anchor = sm.anchor(room)
	}

	err = sm.repos.Transaction().WithTransaction(ctx, func(tx *repository.Transaction) error {
		players, err := tx.Players().ListByRoom(ctx, room.ID)
		if err != nil {
			return err
		}
		if len(players) < sm.rules.MinPlayers {
			return apperrors.Newf(apperrors.ErrPreconditionFailed, "至少需要%d名玩家", sm.rules.MinPlayers)
		}

		ok, err := tx.Rooms().CompareAndSetPhase(ctx, room.ID, sm.sources[EventStartGame], map[string]interface{}{
			"phase":            t.To,
			"current_round":    1,
			"round_started_at": anchor,
		})
		if err != nil {
			return err
		}
		if !ok {
			return errPhaseChanged
		}

		if err := tx.Characteristics().CreateBatch(ctx, sm.dealer.DealCharacteristics(room.ID, players)); err != nil {
			return err
		}
		if room.Settings.CardsEnabled {
			if err := tx.Cards().CreateBatch(ctx, sm.dealer.DealCards(room.ID, players)); err != nil {
				return err
			}
		}
		return nil
	})
	if stderrors.Is(err, errPhaseChanged) {
		return sm.notApplied(ctx, EventStartGame, room.Phase, roomID)
	}
	if err != nil {
		return nil, dbErr(err, "开始游戏")
	}

	res, err := sm.applied(ctx, t, roomID)
	if err != nil {
		return nil, err
	}
	sm.events.publish(ctx, pubsub.EventGameStarted, roomID, res.Room)
	return res, nil
}

// SkipIntro 跳过开场介绍，自动模式下开始第一回合计时
func (sm *PhaseMachine) SkipIntro(ctx context.Context, roomID uint, userID string) (*TransitionResult, error) {
	room, err := sm.authorize(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	t, err := sm.lookup(room, EventSkipIntro)
	if err != nil {
		return nil, err
	}
	if room.CurrentRound != 1 {
		return nil, apperrors.New(apperrors.ErrWrongPhase, "只能在第一回合跳过介绍")
	}
	if room.Settings.IntroSkipped {
		return sm.notApplied(ctx, EventSkipIntro, room.Phase, roomID)
	}

	settings := room.Settings
	settings.IntroSkipped = true
	ok, err := sm.repos.Room().CompareAndSetPhase(ctx, room.ID, []models.Phase{t.From}, map[string]interface{}{
		"settings":         settings,
		"round_started_at": sm.anchor(room),
	})
	if err != nil {
		return nil, dbErr(err, "跳过介绍")
	}
	if !ok {
		return sm.notApplied(ctx, EventSkipIntro, room.Phase, roomID)
	}

	res, err := sm.applied(ctx, t, roomID)
	if err != nil {
		return nil, err
	}
	sm.events.publish(ctx, pubsub.EventIntroSkipped, roomID, res.Room)
	return res, nil
}

// StartVoting 开始投票：playing -> voting
func (sm *PhaseMachine) StartVoting(ctx context.Context, roomID uint, userID string) (*TransitionResult, error) {
	room, err := sm.authorize(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if room.Phase == models.PhaseVoting {
		return sm.notApplied(ctx, EventStartVoting, room.Phase, roomID)
	}
	t, err := sm.lookup(room, EventStartVoting)
	if err != nil {
		return nil, err
	}

	ok, err := sm.repos.Room().CompareAndSetPhase(ctx, room.ID, sm.sources[EventStartVoting], map[string]interface{}{
		"phase":            t.To,
		"round_started_at": sm.anchor(room),
	})
	if err != nil {
		return nil, dbErr(err, "开始投票")
	}
	if !ok {
		return sm.notApplied(ctx, EventStartVoting, room.Phase, roomID)
	}

	res, err := sm.applied(ctx, t, roomID)
	if err != nil {
		return nil, err
	}
	sm.events.publish(ctx, pubsub.EventVotingStarted, roomID, res.Room)
	return res, nil
}

// EndVoting 结束投票：voting -> results。
// 在同一事务中先抢占阶段，再计票、淘汰并清除本轮的投票限制，保证每轮只结算一次。
func (sm *PhaseMachine) EndVoting(ctx context.Context, roomID uint, userID string) (*TransitionResult, error) {
	room, err := sm.authorize(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if room.Phase == models.PhaseResults {
		return sm.notApplied(ctx, EventEndVoting, room.Phase, roomID)
	}
	t, err := sm.lookup(room, EventEndVoting)
	if err != nil {
		return nil, err
	}

	var tally *TallyResult
	err = sm.repos.Transaction().WithTransaction(ctx, func(tx *repository.Transaction) error {
		ok, err := tx.Rooms().CompareAndSetPhase(ctx, room.ID, sm.sources[EventEndVoting], map[string]interface{}{
			"phase":            t.To,
			"round_started_at": nil,
		})
		if err != nil {
			return err
		}
		if !ok {
			return errPhaseChanged
		}

		current, err := tx.Rooms().FindByID(ctx, room.ID)
		if err != nil {
			return err
		}
		round := current.CurrentRound

		votes, err := tx.Votes().ListByRound(ctx, room.ID, round)
		if err != nil {
			return err
		}
		players, err := tx.Players().ListByRoom(ctx, room.ID)
		if err != nil {
			return err
		}

		tally = Resolve(votes, players, round, sm.rng)
		if tally.Eliminated != nil {
			marked, err := tx.Players().MarkEliminated(ctx, *tally.Eliminated, round)
			if err != nil {
				return err
			}
			if marked {
				if _, err := tx.Characteristics().RevealAllForPlayer(ctx, *tally.Eliminated, round); err != nil {
					return err
				}
			}
		}

		// 逐个重读后清除，结算期间新写入的限制也会被清掉
		for _, p := range players {
			_, err := tx.Players().UpdateMetadata(ctx, p.ID, func(meta *models.PlayerMetadata) bool {
				return meta.PurgeRoundScoped()
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if stderrors.Is(err, errPhaseChanged) {
		return sm.notApplied(ctx, EventEndVoting, room.Phase, roomID)
	}
	if err != nil {
		return nil, dbErr(err, "结束投票")
	}

	res, err := sm.applied(ctx, t, roomID)
	if err != nil {
		return nil, err
	}
	res.Tally = tally

	fields := []zap.Field{zap.Uint("room_id", roomID), zap.Int("round", res.Room.CurrentRound), zap.Int("max_votes", tally.MaxVotes)}
	if tally.Eliminated != nil {
		fields = append(fields, zap.Uint("eliminated", *tally.Eliminated))
	}
	if len(tally.SavedByImmunity) > 0 {
		fields = append(fields, zap.Uints("saved_by_immunity", tally.SavedByImmunity))
	}
	sm.logger.Info("投票结算", fields...)

	sm.events.publish(ctx, pubsub.EventVotingEnded, roomID, map[string]interface{}{
		"round": res.Room.CurrentRound,
		"tally": tally,
	})
	return res, nil
}

// AdvanceRound 推进回合：剩余人数不超过阈值时结束游戏，否则进入下一回合。
// 结束游戏时统计钩子只在抢占成功的调用中执行一次。
func (sm *PhaseMachine) AdvanceRound(ctx context.Context, roomID uint, userID string) (*TransitionResult, error) {
	room, err := sm.authorize(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if room.Phase == models.PhaseFinished {
		return sm.notApplied(ctx, EventFinishGame, room.Phase, roomID)
	}

	remaining, err := sm.repos.Player().CountRemaining(ctx, room.ID)
	if err != nil {
		return nil, dbErr(err, "统计剩余玩家")
	}

	if int(remaining) <= sm.rules.SurvivorThreshold {
		t, err := sm.lookup(room, EventFinishGame)
		if err != nil {
			return nil, err
		}
		return sm.finish(ctx, room, t, sm.sources[EventFinishGame])
	}

	t, err := sm.lookup(room, EventAdvanceRound)
	if err != nil {
		return nil, err
	}
	ok, err := sm.repos.Room().CompareAndSetPhase(ctx, room.ID, sm.sources[EventAdvanceRound], map[string]interface{}{
		"phase":            t.To,
		"current_round":    gorm.Expr("current_round + 1"),
		"round_started_at": sm.anchor(room),
	})
	if err != nil {
		return nil, dbErr(err, "推进回合")
	}
	if !ok {
		return sm.notApplied(ctx, EventAdvanceRound, room.Phase, roomID)
	}

	res, err := sm.applied(ctx, t, roomID)
	if err != nil {
		return nil, err
	}
	sm.events.publish(ctx, pubsub.EventRoundAdvanced, roomID, res.Room)
	return res, nil
}

// FinishManually 手动模式下房主提前结束游戏，至少进行到第二回合
func (sm *PhaseMachine) FinishManually(ctx context.Context, roomID uint, userID string) (*TransitionResult, error) {
	room, err := sm.authorize(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if room.Phase == models.PhaseFinished {
		return sm.notApplied(ctx, EventFinishManually, room.Phase, roomID)
	}
	if !room.Settings.IsManual() {
		return nil, apperrors.New(apperrors.ErrPreconditionFailed, "只有手动模式可以提前结束")
	}
	if room.CurrentRound < 2 {
		return nil, apperrors.New(apperrors.ErrPreconditionFailed, "至少进行到第二回合才能结束")
	}
	t, err := sm.lookup(room, EventFinishManually)
	if err != nil {
		return nil, err
	}
	return sm.finish(ctx, room, t, sm.sources[EventFinishManually])
}

// finish 抢占结束状态，成功后执行统计钩子并广播
func (sm *PhaseMachine) finish(ctx context.Context, room *models.Room, t PhaseTransition, from []models.Phase) (*TransitionResult, error) {
	now := sm.clock.Now()
	ok, err := sm.repos.Room().CompareAndSetPhase(ctx, room.ID, from, map[string]interface{}{
		"phase":            models.PhaseFinished,
		"round_started_at": nil,
		"finished_at":      now,
	})
	if err != nil {
		return nil, dbErr(err, "结束游戏")
	}
	if !ok {
		return sm.notApplied(ctx, t.Event, room.Phase, room.ID)
	}

	res, err := sm.applied(ctx, t, room.ID)
	if err != nil {
		return nil, err
	}

	players, err := sm.repos.Player().ListByRoom(ctx, room.ID)
	if err != nil {
		sm.logger.Error("读取结束时玩家列表失败", zap.Uint("room_id", room.ID), zap.Error(err))
	}
	summary := &GameSummary{RoomID: room.ID, Round: res.Room.CurrentRound, FinishedAt: now, Players: players}
	for _, p := range players {
		if !p.IsEliminated {
			summary.Survivors = append(summary.Survivors, p.ID)
		}
	}
	res.Survivors = summary.Survivors

	if sm.stats != nil {
		if err := sm.stats.OnGameFinished(ctx, summary); err != nil {
			sm.logger.Error("记录战绩失败", zap.Uint("room_id", room.ID), zap.Error(err))
		}
	}

	logger.LogGameEvent(string(t.Event), room.ID, map[string]interface{}{
		"round":     summary.Round,
		"survivors": summary.Survivors,
		"players":   len(players),
	})
	sm.events.publish(ctx, pubsub.EventGameFinished, room.ID, summary)
	return res, nil
}
