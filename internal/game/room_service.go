package game

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/wfunc/bunker-game/internal/config"
	apperrors "github.com/wfunc/bunker-game/internal/errors"
	"github.com/wfunc/bunker-game/internal/logger"
	"github.com/wfunc/bunker-game/internal/models"
	"github.com/wfunc/bunker-game/internal/pubsub"
	"github.com/wfunc/bunker-game/internal/repository"
	"github.com/wfunc/bunker-game/internal/utils"
	"go.uber.org/zap"
)

const (
	maxCodeAttempts  = 10
	maxNameLength    = 50
	maxRoomNameLen   = 100
	snapshotChatSize = 50
	minPhaseSeconds  = 10
	maxPhaseSeconds  = 3600
	settingsRetries  = 3
)

// Options 服务依赖，零值字段使用默认实现
type Options struct {
	Clock     clockwork.Clock
	Rand      Rand
	Publisher pubsub.Publisher
	Stats     StatsHook
	Logger    *zap.Logger
}

// Service 房间服务，组合状态机、卡牌结算、在线跟踪和清理器
type Service struct {
	repos     *repository.Manager
	cfg       *config.GameConfig
	clock     clockwork.Clock
	rng       Rand
	machine   *PhaseMachine
	abilities *AbilityResolver
	tracker   *Tracker
	sweeper   *Sweeper
	events    notifier
	logger    *zap.Logger
}

// NewService 创建房间服务
func NewService(repos *repository.Manager, cfg *config.GameConfig, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Rand == nil {
		opts.Rand = DefaultRand
	}
	if opts.Publisher == nil {
		opts.Publisher = pubsub.NopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.WithModule("game")
	}

	tracker := NewTracker(repos.Player(), opts.Clock, PolicyFromConfig(cfg))
	machine := NewPhaseMachine(repos,
		Rules{MinPlayers: cfg.MinPlayers, SurvivorThreshold: cfg.SurvivorThreshold},
		WithClock(opts.Clock),
		WithRand(opts.Rand),
		WithStatsHook(opts.Stats),
		WithPublisher(opts.Publisher),
		WithLogger(opts.Logger),
	)

	return &Service{
		repos:     repos,
		cfg:       cfg,
		clock:     opts.Clock,
		rng:       opts.Rand,
		machine:   machine,
		abilities: NewAbilityResolver(NewDealer(opts.Rand)),
		tracker:   tracker,
		sweeper:   NewSweeper(repos, tracker, opts.Clock, opts.Publisher, opts.Logger),
		events:    notifier{pub: opts.Publisher, logger: opts.Logger},
		logger:    opts.Logger,
	}
}

// Machine 阶段状态机
func (s *Service) Machine() *PhaseMachine { return s.machine }

// Sweeper 清理器
func (s *Service) Sweeper() *Sweeper { return s.sweeper }

// Tracker 在线跟踪器
func (s *Service) Tracker() *Tracker { return s.tracker }

// CreateRoomRequest 创建房间参数
type CreateRoomRequest struct {
	Name              string           `json:"name"`
	HostName          string           `json:"host_name" binding:"required"`
	MaxPlayers        int              `json:"max_players"`
	RoundMode         models.RoundMode `json:"round_mode"`
	DiscussionSeconds int              `json:"discussion_seconds"`
	VotingSeconds     int              `json:"voting_seconds"`
	IntroEnabled      *bool            `json:"intro_enabled"`
	ChatEnabled       *bool            `json:"chat_enabled"`
	CardsEnabled      *bool            `json:"cards_enabled"`
}

// RoomSummary 房间列表项
type RoomSummary struct {
	ID         uint         `json:"id"`
	Code       string       `json:"code"`
	Name       string       `json:"name"`
	Phase      models.Phase `json:"phase"`
	Players    int64        `json:"players"`
	MaxPlayers int          `json:"max_players"`
}

// PlayerView 快照中的玩家信息，他人未公开的特征和卡牌不可见
type PlayerView struct {
	ID              uint                     `json:"id"`
	UserID          string                   `json:"user_id"`
	Name            string                   `json:"name"`
	IsHost          bool                     `json:"is_host"`
	IsReady         bool                     `json:"is_ready"`
	IsEliminated    bool                     `json:"is_eliminated"`
	IsActive        bool                     `json:"is_active"`
	EliminatedIn    *int                     `json:"eliminated_in,omitempty"`
	HasVoted        bool                     `json:"has_voted"`
	Characteristics []*models.Characteristic `json:"characteristics"`
	Cards           []*models.SpecialCard    `json:"cards,omitempty"`
}

// RoomSnapshot 房间完整状态，客户端重连后据此恢复
type RoomSnapshot struct {
	Room       *models.Room          `json:"room"`
	YouID      uint                  `json:"you"`
	Players    []*PlayerView         `json:"players"`
	VotesCast  int                   `json:"votes_cast"`
	Chat       []*models.ChatMessage `json:"chat"`
	ServerTime time.Time             `json:"server_time"`
}

// HeartbeatResult 心跳结果
type HeartbeatResult struct {
	LastSeenAt time.Time    `json:"last_seen_at"`
	RoomClosed bool         `json:"room_closed"`
	Sweep      SweepOutcome `json:"sweep"`
}

// member 读取房间并确认调用者在房间内
func (s *Service) member(ctx context.Context, roomID uint, userID string) (*models.Room, *models.Player, error) {
	if userID == "" {
		return nil, nil, apperrors.New(apperrors.ErrUnauthorized)
	}
	room, err := s.repos.Room().FindByID(ctx, roomID)
	if err != nil {
		return nil, nil, dbErr(err, "房间")
	}
	p, err := s.repos.Player().FindByRoomAndUser(ctx, roomID, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, apperrors.New(apperrors.ErrForbidden, "不在该房间内")
		}
		return nil, nil, dbErr(err, "玩家")
	}
	return room, p, nil
}

// host 读取房间并确认调用者为房主
func (s *Service) host(ctx context.Context, roomID uint, userID string) (*models.Room, error) {
	if userID == "" {
		return nil, apperrors.New(apperrors.ErrUnauthorized)
	}
	room, err := s.repos.Room().FindByID(ctx, roomID)
	if err != nil {
		return nil, dbErr(err, "房间")
	}
	if !room.IsHostUser(userID) {
		return nil, apperrors.New(apperrors.ErrForbidden, "只有房主可以操作")
	}
	return room, nil
}

func validName(name string, max int) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n == 0 || n > max {
		return "", apperrors.Newf(apperrors.ErrValidationFailed, "名称长度需在1到%d之间", max)
	}
	return name, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// buildSettings 校验并补全房间设置
func (s *Service) buildSettings(req *CreateRoomRequest) (models.RoomSettings, error) {
	settings := models.RoomSettings{
		RoundMode:         req.RoundMode,
		DiscussionSeconds: req.DiscussionSeconds,
		VotingSeconds:     req.VotingSeconds,
		IntroEnabled:      boolOr(req.IntroEnabled, s.cfg.IntroEnabled),
		ChatEnabled:       boolOr(req.ChatEnabled, true),
		CardsEnabled:      boolOr(req.CardsEnabled, true),
	}
	if settings.RoundMode == "" {
		settings.RoundMode = models.RoundMode(s.cfg.DefaultRoundMode)
	}
	if settings.RoundMode != models.RoundModeAutomatic && settings.RoundMode != models.RoundModeManual {
		return settings, apperrors.Newf(apperrors.ErrValidationFailed, "未知的回合模式: %s", settings.RoundMode)
	}
	if settings.DiscussionSeconds == 0 {
		settings.DiscussionSeconds = s.cfg.DiscussionSeconds
	}
	if settings.VotingSeconds == 0 {
		settings.VotingSeconds = s.cfg.VotingSeconds
	}
	for _, sec := range []int{settings.DiscussionSeconds, settings.VotingSeconds} {
		if sec < minPhaseSeconds || sec > maxPhaseSeconds {
			return settings, apperrors.Newf(apperrors.ErrValidationFailed, "阶段时长需在%d到%d秒之间", minPhaseSeconds, maxPhaseSeconds)
		}
	}
	return settings, nil
}

// CreateRoom 创建房间，调用者成为房主
func (s *Service) CreateRoom(ctx context.Context, userID string, req *CreateRoomRequest) (*models.Room, *models.Player, error) {
	if userID == "" {
		return nil, nil, apperrors.New(apperrors.ErrUnauthorized)
	}
	hostName, err := validName(req.HostName, maxNameLength)
	if err != nil {
		return nil, nil, err
	}
	roomName := strings.TrimSpace(req.Name)
	if roomName == "" {
		roomName = hostName + "的避难所"
	}
	if utf8.RuneCountInString(roomName) > maxRoomNameLen {
		return nil, nil, apperrors.New(apperrors.ErrValidationFailed, "房间名过长")
	}

	maxPlayers := req.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = s.cfg.DefaultMaxPlayers
	}
	if maxPlayers < s.cfg.MinPlayers || maxPlayers > s.cfg.MaxPlayers {
		return nil, nil, apperrors.Newf(apperrors.ErrValidationFailed, "人数上限需在%d到%d之间", s.cfg.MinPlayers, s.cfg.MaxPlayers)
	}

	settings, err := s.buildSettings(req)
	if err != nil {
		return nil, nil, err
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, nil, err
	}

	now := s.clock.Now()
	room := &models.Room{
		Code:         code,
		Name:         roomName,
		HostID:       userID,
		Phase:        models.PhaseWaiting,
		CurrentRound: 1,
		MaxPlayers:   maxPlayers,
		Settings:     settings,
	}
	host := &models.Player{
		UserID:     userID,
		Name:       hostName,
		IsHost:     true,
		LastSeenAt: &now,
		JoinedAt:   now,
	}

	err = s.repos.Transaction().WithTransaction(ctx, func(tx *repository.Transaction) error {
		if err := tx.Rooms().Create(ctx, room); err != nil {
			return err
		}
		host.RoomID = room.ID
		return tx.Players().Create(ctx, host)
	})
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "创建房间失败")
	}

	s.logger.Info("创建房间",
		zap.Uint("room_id", room.ID),
		zap.String("code", room.Code),
		zap.String("host", userID),
		zap.String("round_mode", string(settings.RoundMode)))
	return room, host, nil
}

// uniqueCode 生成未被进行中房间占用的邀请码
func (s *Service) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := utils.GenerateJoinCode(s.cfg.JoinCodeLength, s.rng)
		inUse, err := s.repos.Room().CodeInUse(ctx, code)
		if err != nil {
			return "", dbErr(err, "邀请码")
		}
		if !inUse {
			return code, nil
		}
	}
	return "", apperrors.New(apperrors.ErrJoinCodeExhausted)
}

// JoinRoom 通过邀请码加入房间；已在房间内时直接返回原座位
func (s *Service) JoinRoom(ctx context.Context, userID, code, name string) (*models.Room, *models.Player, error) {
	if userID == "" {
		return nil, nil, apperrors.New(apperrors.ErrUnauthorized)
	}
	code = utils.NormalizeJoinCode(code)
	if !utils.ValidJoinCode(code, s.cfg.JoinCodeLength) {
		return nil, nil, apperrors.New(apperrors.ErrValidationFailed, "邀请码格式错误")
	}
	name, err := validName(name, maxNameLength)
	if err != nil {
		return nil, nil, err
	}

	room, err := s.repos.Room().FindOpenByCode(ctx, code)
	if err != nil {
		return nil, nil, dbErr(err, "房间")
	}
	if room.Settings.IsBanned(userID) {
		return nil, nil, apperrors.New(apperrors.ErrForbidden, "已被禁止进入该房间")
	}

	if existing, err := s.repos.Player().FindByRoomAndUser(ctx, room.ID, userID); err == nil {
		if _, err := s.tracker.RecordHeartbeat(ctx, existing.ID); err != nil {
			return nil, nil, err
		}
		return room, existing, nil
	} else if !isNotFound(err) {
		return nil, nil, dbErr(err, "玩家")
	}

	if room.Phase != models.PhaseWaiting {
		return nil, nil, apperrors.New(apperrors.ErrWrongPhase, "游戏已开始")
	}

	player := &models.Player{
		RoomID:   room.ID,
		UserID:   userID,
		Name:     name,
		JoinedAt: s.clock.Now(),
	}
	err = s.repos.Transaction().WithTransaction(ctx, func(tx *repository.Transaction) error {
		count, err := tx.Players().CountByRoom(ctx, room.ID)
		if err != nil {
			return err
		}
		if int(count) >= room.MaxPlayers {
			return apperrors.New(apperrors.ErrRoomFull)
		}
		return tx.Players().Create(ctx, player)
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrRoomFull) {
			return nil, nil, err
		}
		// 并发加入时唯一索引冲突，返回已创建的座位
		if existing, findErr := s.repos.Player().FindByRoomAndUser(ctx, room.ID, userID); findErr == nil {
			return room, existing, nil
		}
		return nil, nil, apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "加入房间失败")
	}

	s.logger.Info("玩家加入房间",
		zap.Uint("room_id", room.ID),
		zap.Uint("player_id", player.ID),
		zap.String("user_id", userID))
	s.events.publish(ctx, pubsub.EventPlayerJoined, room.ID, player)
	return room, player, nil
}

// CheckMember 确认用户在房间内，订阅房间事件前调用
func (s *Service) CheckMember(ctx context.Context, roomID uint, userID string) error {
	_, _, err := s.member(ctx, roomID, userID)
	return err
}

// LeaveRoom 离开房间；房主离开时解散房间
func (s *Service) LeaveRoom(ctx context.Context, roomID uint, userID string) (*SweepResult, error) {
	room, p, err := s.member(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if p.IsHostOf(room) {
		return s.sweeper.HostLeft(ctx, roomID), nil
	}

	if _, err := s.repos.DeletePlayersCascade(ctx, roomID, []uint{p.ID}); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseDelete, "离开房间失败")
	}
	s.events.publish(ctx, pubsub.EventPlayerLeft, roomID, map[string]interface{}{"player_id": p.ID})
	return &SweepResult{RoomID: roomID, Outcome: SweepKept}, nil
}

// Kick 房主踢出玩家，ban 为 true 时同时禁止该用户再次加入
func (s *Service) Kick(ctx context.Context, roomID uint, hostUserID string, targetPlayerID uint, ban bool) error {
	room, err := s.host(ctx, roomID, hostUserID)
	if err != nil {
		return err
	}
	target, err := s.repos.Player().FindByID(ctx, targetPlayerID)
	if err != nil {
		return dbErr(err, "玩家")
	}
	if target.RoomID != room.ID {
		return apperrors.New(apperrors.ErrNotFound, "玩家不存在")
	}
	if target.IsHostOf(room) {
		return apperrors.New(apperrors.ErrValidationFailed, "不能踢出房主")
	}

	if ban {
		if err := s.banUser(ctx, roomID, target.UserID); err != nil {
			return err
		}
	}
	if _, err := s.repos.DeletePlayersCascade(ctx, roomID, []uint{target.ID}); err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseDelete, "踢出玩家失败")
	}

	s.logger.Info("踢出玩家",
		zap.Uint("room_id", roomID),
		zap.Uint("player_id", target.ID),
		zap.Bool("ban", ban))
	s.events.publish(ctx, pubsub.EventPlayerKicked, roomID, map[string]interface{}{
		"player_id": target.ID,
		"banned":    ban,
	})
	return nil
}

// banUser 把用户加入房间黑名单，以当前阶段为条件写入，冲突时重读重试
func (s *Service) banUser(ctx context.Context, roomID uint, userID string) error {
	for i := 0; i < settingsRetries; i++ {
		room, err := s.repos.Room().FindByID(ctx, roomID)
		if err != nil {
			return dbErr(err, "房间")
		}
		if room.Settings.IsBanned(userID) {
			return nil
		}
		settings := room.Settings
		settings.BannedUserIDs = append(append([]string(nil), settings.BannedUserIDs...), userID)
		ok, err := s.repos.Room().CompareAndSetPhase(ctx, roomID, []models.Phase{room.Phase}, map[string]interface{}{
			"settings": settings,
		})
		if err != nil {
			return dbErr(err, "更新房间设置")
		}
		if ok {
			return nil
		}
	}
	return apperrors.New(apperrors.ErrPreconditionFailed, "房间状态变化过快，请重试")
}

// SetReady 设置准备状态
func (s *Service) SetReady(ctx context.Context, roomID uint, userID string, ready bool) error {
	room, p, err := s.member(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if room.Phase != models.PhaseWaiting {
		return apperrors.New(apperrors.ErrWrongPhase, "游戏已开始")
	}
	if err := s.repos.Player().SetReady(ctx, p.ID, ready); err != nil {
		return dbErr(err, "更新准备状态")
	}
	s.events.publish(ctx, pubsub.EventPlayerReady, roomID, map[string]interface{}{
		"player_id": p.ID,
		"ready":     ready,
	})
	return nil
}

// Heartbeat 记录心跳并顺带清理该房间
func (s *Service) Heartbeat(ctx context.Context, roomID uint, userID string) (*HeartbeatResult, error) {
	_, p, err := s.member(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	at, err := s.tracker.RecordHeartbeat(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	sweep := s.sweeper.SweepRoom(ctx, roomID)
	return &HeartbeatResult{
		LastSeenAt: at,
		RoomClosed: sweep.Outcome.RoomDeleted() || sweep.Outcome == SweepGone,
		Sweep:      sweep.Outcome,
	}, nil
}

// CastVote 投票，同一回合重复投票覆盖之前的选择。
// 写入前在事务内以投票阶段为条件更新房间，结束投票之后到达的票会被拒绝而不是静默丢失。
func (s *Service) CastVote(ctx context.Context, roomID uint, userID string, targetPlayerID uint) (*models.Vote, error) {
	room, voter, err := s.member(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if room.Phase != models.PhaseVoting {
		return nil, apperrors.New(apperrors.ErrWrongPhase, "当前不在投票阶段")
	}
	if targetPlayerID == voter.ID {
		return nil, apperrors.New(apperrors.ErrValidationFailed, "不能投给自己")
	}

	var vote *models.Vote
	err = s.repos.Transaction().WithTransaction(ctx, func(tx *repository.Transaction) error {
		// 条件更新同时锁住房间行，结束投票的条件更新需等本事务提交
		ok, err := tx.Rooms().CompareAndSetPhase(ctx, roomID, []models.Phase{models.PhaseVoting},
			map[string]interface{}{"updated_at": s.clock.Now()})
		if err != nil {
			return dbErr(err, "房间")
		}
		if !ok {
			return apperrors.New(apperrors.ErrWrongPhase, "投票已结束")
		}
		current, err := tx.Rooms().FindByID(ctx, roomID)
		if err != nil {
			return dbErr(err, "房间")
		}
		room = current

		fresh, err := tx.Players().FindByID(ctx, voter.ID)
		if err != nil {
			return dbErr(err, "玩家")
		}
		voter = fresh
		if voter.IsEliminated {
			return apperrors.New(apperrors.ErrPreconditionFailed, "已淘汰的玩家不能投票")
		}

		target, err := tx.Players().FindByID(ctx, targetPlayerID)
		if err != nil {
			return dbErr(err, "投票目标")
		}
		if target.RoomID != room.ID {
			return apperrors.New(apperrors.ErrNotFound, "投票目标不存在")
		}
		if target.IsEliminated {
			return apperrors.New(apperrors.ErrPreconditionFailed, "目标已被淘汰")
		}
		if voter.Metadata.IsRestrictedFrom(target.ID) {
			return apperrors.New(apperrors.ErrVoteRestricted)
		}

		vote = &models.Vote{
			RoomID:   room.ID,
			Round:    room.CurrentRound,
			VoterID:  voter.ID,
			TargetID: target.ID,
			Weight:   voter.Metadata.VoteWeight(room.CurrentRound),
		}
		return tx.Votes().Upsert(ctx, vote)
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "投票失败")
	}

	cast, err := s.repos.Vote().CountByRound(ctx, room.ID, room.CurrentRound)
	if err != nil {
		s.logger.Warn("统计投票人数失败", zap.Uint("room_id", room.ID), zap.Error(err))
	}
	// 投票目标在结算前保密，只广播进度
	s.events.publish(ctx, pubsub.EventVoteCast, room.ID, map[string]interface{}{
		"voter_id":   voter.ID,
		"round":      room.CurrentRound,
		"votes_cast": cast,
	})
	return vote, nil
}

// RevealCharacteristic 玩家公开自己的一项特征，已公开时不报错
func (s *Service) RevealCharacteristic(ctx context.Context, roomID uint, userID string, characteristicID uint) (*models.Characteristic, error) {
	room, p, err := s.member(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if room.Phase != models.PhasePlaying && room.Phase != models.PhaseVoting {
		return nil, apperrors.Newf(apperrors.ErrWrongPhase, "阶段 %s 不能公开特征", room.Phase)
	}
	if p.IsEliminated {
		return nil, apperrors.New(apperrors.ErrPreconditionFailed, "已淘汰的玩家不能操作")
	}

	c, err := s.repos.Characteristic().FindByID(ctx, characteristicID)
	if err != nil {
		return nil, dbErr(err, "特征")
	}
	if c.RoomID != room.ID {
		return nil, apperrors.New(apperrors.ErrNotFound, "特征不存在")
	}
	if c.PlayerID != p.ID {
		return nil, apperrors.New(apperrors.ErrForbidden, "只能公开自己的特征")
	}

	revealed, err := s.repos.Characteristic().Reveal(ctx, c.ID, room.CurrentRound)
	if err != nil {
		return nil, dbErr(err, "公开特征")
	}
	if !revealed {
		return c, nil
	}

	round := room.CurrentRound
	c.IsRevealed = true
	c.RevealRound = &round
	s.events.publish(ctx, pubsub.EventCharRevealed, room.ID, c)
	return c, nil
}

// UseCard 使用特殊卡牌
func (s *Service) UseCard(ctx context.Context, roomID uint, userID string, req *UseCardRequest) (*AbilityResult, error) {
	if userID == "" {
		return nil, apperrors.New(apperrors.ErrUnauthorized)
	}

	var result *AbilityResult
	err := s.repos.Transaction().WithTransaction(ctx, func(tx *repository.Transaction) error {
		room, err := tx.Rooms().FindByID(ctx, roomID)
		if err != nil {
			return dbErr(err, "房间")
		}
		caller, err := tx.Players().FindByRoomAndUser(ctx, roomID, userID)
		if err != nil {
			if isNotFound(err) {
				return apperrors.New(apperrors.ErrForbidden, "不在该房间内")
			}
			return dbErr(err, "玩家")
		}
		result, err = s.abilities.Use(ctx, tx, room, caller, req)
		return err
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseUpdate, "使用卡牌失败")
	}

	s.logger.Info("使用卡牌",
		zap.Uint("room_id", roomID),
		zap.Uint("card_id", result.Card.ID),
		zap.String("card_type", string(result.Card.CardType)),
		zap.Uint("target", result.TargetPlayerID))
	s.events.publish(ctx, pubsub.EventCardUsed, roomID, map[string]interface{}{
		"player_id": result.Card.PlayerID,
		"card_type": result.Card.CardType,
		"target":    result.TargetPlayerID,
		"changed":   result.Changed,
	})
	return result, nil
}

// SendChat 发送聊天消息
func (s *Service) SendChat(ctx context.Context, roomID uint, userID, text string) (*models.ChatMessage, error) {
	room, p, err := s.member(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if !room.Settings.ChatEnabled {
		return nil, apperrors.New(apperrors.ErrPreconditionFailed, "房间未开启聊天")
	}
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n == 0 || n > s.cfg.ChatMaxLength {
		return nil, apperrors.Newf(apperrors.ErrValidationFailed, "消息长度需在1到%d之间", s.cfg.ChatMaxLength)
	}

	msg := &models.ChatMessage{RoomID: room.ID, PlayerID: p.ID, Text: text}
	if err := s.repos.Chat().Create(ctx, msg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "发送消息失败")
	}
	s.events.publish(ctx, pubsub.EventChatMessage, room.ID, msg)
	return msg, nil
}

// Snapshot 返回调用者视角的房间状态
func (s *Service) Snapshot(ctx context.Context, roomID uint, userID string) (*RoomSnapshot, error) {
	room, me, err := s.member(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}

	players, err := s.repos.Player().ListByRoom(ctx, roomID)
	if err != nil {
		return nil, dbErr(err, "玩家列表")
	}
	chars, err := s.repos.Characteristic().ListByRoom(ctx, roomID)
	if err != nil {
		return nil, dbErr(err, "特征")
	}
	cards, err := s.repos.Card().ListByPlayer(ctx, me.ID)
	if err != nil {
		return nil, dbErr(err, "卡牌")
	}
	votes, err := s.repos.Vote().ListByRound(ctx, roomID, room.CurrentRound)
	if err != nil {
		return nil, dbErr(err, "投票")
	}
	chat, err := s.repos.Chat().ListRecent(ctx, roomID, snapshotChatSize)
	if err != nil {
		return nil, dbErr(err, "聊天")
	}

	voted := make(map[uint]bool, len(votes))
	for _, v := range votes {
		voted[v.VoterID] = true
	}
	active := s.tracker.ActiveSet(players)

	snap := &RoomSnapshot{
		Room:       room,
		YouID:      me.ID,
		VotesCast:  len(votes),
		Chat:       chat,
		ServerTime: s.clock.Now(),
	}
	views := make(map[uint]*PlayerView, len(players))
	for _, p := range players {
		v := &PlayerView{
			ID:              p.ID,
			UserID:          p.UserID,
			Name:            p.Name,
			IsHost:          p.IsHostOf(room),
			IsReady:         p.IsReady,
			IsEliminated:    p.IsEliminated,
			IsActive:        active[p.ID],
			EliminatedIn:    p.EliminatedIn,
			HasVoted:        voted[p.ID],
			Characteristics: []*models.Characteristic{},
		}
		if p.ID == me.ID {
			v.Cards = cards
		}
		views[p.ID] = v
		snap.Players = append(snap.Players, v)
	}
	for _, c := range chars {
		v, ok := views[c.PlayerID]
		if !ok {
			continue
		}
		if c.IsRevealed || c.PlayerID == me.ID {
			v.Characteristics = append(v.Characteristics, c)
		}
	}
	return snap, nil
}

// ListRooms 先清理再列出可加入的房间
func (s *Service) ListRooms(ctx context.Context, p *repository.Pagination) ([]*RoomSummary, error) {
	s.sweeper.SweepAll(ctx)

	rooms, err := s.repos.Room().ListJoinable(ctx, p)
	if err != nil {
		return nil, dbErr(err, "房间列表")
	}
	out := make([]*RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		n, err := s.repos.Player().CountByRoom(ctx, r.ID)
		if err != nil {
			return nil, dbErr(err, "玩家人数")
		}
		out = append(out, &RoomSummary{
			ID:         r.ID,
			Code:       r.Code,
			Name:       r.Name,
			Phase:      r.Phase,
			Players:    n,
			MaxPlayers: r.MaxPlayers,
		})
	}
	return out, nil
}

// PlayerStats 读取用户战绩
func (s *Service) PlayerStats(ctx context.Context, userID string) (*models.PlayerStat, error) {
	if userID == "" {
		return nil, apperrors.New(apperrors.ErrUnauthorized)
	}
	stat, err := s.repos.Stat().FindByUser(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return &models.PlayerStat{UserID: userID}, nil
		}
		return nil, dbErr(err, "战绩")
	}
	return stat, nil
}
