package game

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wfunc/bunker-game/internal/errors"
	"github.com/wfunc/bunker-game/internal/models"
	"github.com/wfunc/bunker-game/internal/pubsub"
	"github.com/wfunc/bunker-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createRoom(t *testing.T, env *testEnv, maxPlayers int) *models.Room {
	t.Helper()
	room, host, err := env.svc.CreateRoom(context.Background(), "u-host", &CreateRoomRequest{
		HostName:   "老王",
		MaxPlayers: maxPlayers,
	})
	require.NoError(t, err)
	require.True(t, host.IsHost)
	return room
}

func TestCreateRoom(t *testing.T) {
	env := newTestEnv(t)
	room := createRoom(t, env, 0)

	assert.Len(t, room.Code, env.cfg.JoinCodeLength)
	assert.Equal(t, models.PhaseWaiting, room.Phase)
	assert.Equal(t, env.cfg.DefaultMaxPlayers, room.MaxPlayers)
	assert.Equal(t, "老王的避难所", room.Name)
	assert.Equal(t, models.RoundModeAutomatic, room.Settings.RoundMode)
	assert.True(t, room.Settings.IntroEnabled)

	// fixedRand 每次生成相同的邀请码
	_, _, err := env.svc.CreateRoom(context.Background(), "u-other", &CreateRoomRequest{HostName: "小李"})
	assert.True(t, apperrors.Is(err, apperrors.ErrJoinCodeExhausted))
}

func TestCreateRoomValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  *CreateRoomRequest
	}{
		{"空名字", &CreateRoomRequest{HostName: "  "}},
		{"名字过长", &CreateRoomRequest{HostName: strings.Repeat("名", 51)}},
		{"人数过多", &CreateRoomRequest{HostName: "a", MaxPlayers: 99}},
		{"人数过少", &CreateRoomRequest{HostName: "a", MaxPlayers: 1}},
		{"未知模式", &CreateRoomRequest{HostName: "a", RoundMode: "turbo"}},
		{"时长过短", &CreateRoomRequest{HostName: "a", VotingSeconds: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := env.svc.CreateRoom(ctx, "u-1", tc.req)
			assert.Equal(t, apperrors.CategoryValidationFailed, apperrors.CategoryOf(err))
		})
	}

	_, _, err := env.svc.CreateRoom(ctx, "", &CreateRoomRequest{HostName: "a"})
	assert.Equal(t, apperrors.CategoryUnauthorized, apperrors.CategoryOf(err))
}

func TestJoinRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := createRoom(t, env, 3)

	_, b, err := env.svc.JoinRoom(ctx, "u-b", strings.ToLower(room.Code), "小B")
	require.NoError(t, err)
	assert.False(t, b.IsHost)
	assert.Nil(t, b.LastSeenAt, "未发心跳前处于宽限期")

	_, again, err := env.svc.JoinRoom(ctx, "u-b", room.Code, "小B")
	require.NoError(t, err)
	assert.Equal(t, b.ID, again.ID)
	require.NotNil(t, env.player(t, b.ID).LastSeenAt, "重新加入记为心跳")

	_, _, err = env.svc.JoinRoom(ctx, "u-c", room.Code, "小C")
	require.NoError(t, err)
	_, _, err = env.svc.JoinRoom(ctx, "u-d", room.Code, "小D")
	assert.True(t, apperrors.Is(err, apperrors.ErrRoomFull))

	_, _, err = env.svc.JoinRoom(ctx, "u-d", "ABC", "小D")
	assert.Equal(t, apperrors.CategoryValidationFailed, apperrors.CategoryOf(err))
	_, _, err = env.svc.JoinRoom(ctx, "u-d", "ZZZZZZ", "小D")
	assert.Equal(t, apperrors.CategoryNotFound, apperrors.CategoryOf(err))

	assert.Equal(t, 2, env.pub.count(pubsub.EventPlayerJoined))
}

func TestJoinAfterStart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := createRoom(t, env, 0)
	_, b, err := env.svc.JoinRoom(ctx, "u-b", room.Code, "小B")
	require.NoError(t, err)

	_, err = env.svc.Machine().StartGame(ctx, room.ID, "u-host")
	require.NoError(t, err)

	_, _, err = env.svc.JoinRoom(ctx, "u-late", room.Code, "迟到")
	assert.True(t, apperrors.Is(err, apperrors.ErrWrongPhase))

	// 已在房间内的玩家仍可重连
	_, again, err := env.svc.JoinRoom(ctx, "u-b", room.Code, "小B")
	require.NoError(t, err)
	assert.Equal(t, b.ID, again.ID)
}

func TestKickAndBan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := createRoom(t, env, 0)
	_, b, err := env.svc.JoinRoom(ctx, "u-b", room.Code, "小B")
	require.NoError(t, err)
	_, c, err := env.svc.JoinRoom(ctx, "u-c", room.Code, "小C")
	require.NoError(t, err)

	err = env.svc.Kick(ctx, room.ID, "u-b", c.ID, false)
	assert.Equal(t, apperrors.CategoryForbidden, apperrors.CategoryOf(err))

	hostPlayer, err := env.repos.Player().FindByRoomAndUser(ctx, room.ID, "u-host")
	require.NoError(t, err)
	err = env.svc.Kick(ctx, room.ID, "u-host", hostPlayer.ID, false)
	assert.Equal(t, apperrors.CategoryValidationFailed, apperrors.CategoryOf(err))

	require.NoError(t, env.svc.Kick(ctx, room.ID, "u-host", c.ID, false))
	_, _, err = env.svc.JoinRoom(ctx, "u-c", room.Code, "小C")
	assert.NoError(t, err, "仅踢出可以重新加入")

	require.NoError(t, env.svc.Kick(ctx, room.ID, "u-host", b.ID, true))
	_, _, err = env.svc.JoinRoom(ctx, "u-b", room.Code, "小B")
	assert.Equal(t, apperrors.CategoryForbidden, apperrors.CategoryOf(err))
	assert.True(t, env.room(t, room.ID).Settings.IsBanned("u-b"))
	assert.Equal(t, 2, env.pub.count(pubsub.EventPlayerKicked))
}

func TestLeaveRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := createRoom(t, env, 0)
	_, b, err := env.svc.JoinRoom(ctx, "u-b", room.Code, "小B")
	require.NoError(t, err)

	res, err := env.svc.LeaveRoom(ctx, room.ID, "u-b")
	require.NoError(t, err)
	assert.Equal(t, SweepKept, res.Outcome)
	_, err = env.repos.Player().FindByID(ctx, b.ID)
	assert.Error(t, err)

	_, err = env.svc.LeaveRoom(ctx, room.ID, "u-b")
	assert.Equal(t, apperrors.CategoryForbidden, apperrors.CategoryOf(err))

	res, err = env.svc.LeaveRoom(ctx, room.ID, "u-host")
	require.NoError(t, err)
	assert.Equal(t, SweepHostLeft, res.Outcome)
	_, err = env.repos.Room().FindByID(ctx, room.ID)
	assert.Error(t, err, "房主离开后房间解散")
}

func TestSetReady(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fx := repository.SeedRoom(t, env.db, models.PhaseWaiting, "A", "B")

	require.NoError(t, env.svc.SetReady(ctx, fx.Room.ID, "user-B", true))
	assert.True(t, env.player(t, fx.Player("B").ID).IsReady)

	env.setPhase(t, fx.Room.ID, models.PhasePlaying, 1)
	err := env.svc.SetReady(ctx, fx.Room.ID, "user-B", false)
	assert.True(t, apperrors.IsPrecondition(err))
}

func TestCastVote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fx := repository.SeedRoom(t, env.db, models.PhaseVoting, "A", "B", "C")
	b, c := fx.Player("B"), fx.Player("C")

	_, err := env.svc.CastVote(ctx, fx.Room.ID, "user-A", c.ID)
	require.NoError(t, err)
	_, err = env.svc.CastVote(ctx, fx.Room.ID, "user-A", b.ID)
	require.NoError(t, err)

	votes, err := env.repos.Vote().ListByRound(ctx, fx.Room.ID, 1)
	require.NoError(t, err)
	require.Len(t, votes, 1, "改投覆盖原票")
	assert.Equal(t, b.ID, votes[0].TargetID)

	_, err = env.svc.CastVote(ctx, fx.Room.ID, "user-A", fx.Player("A").ID)
	assert.Equal(t, apperrors.CategoryValidationFailed, apperrors.CategoryOf(err))

	other := repository.SeedRoom(t, env.db, models.PhaseVoting, "X", "Y")
	_, err = env.svc.CastVote(ctx, fx.Room.ID, "user-A", other.Player("Y").ID)
	assert.Equal(t, apperrors.CategoryNotFound, apperrors.CategoryOf(err))

	_, err = env.svc.CastVote(ctx, fx.Room.ID, "user-X", b.ID)
	assert.Equal(t, apperrors.CategoryForbidden, apperrors.CategoryOf(err))

	_, err = env.repos.Player().MarkEliminated(ctx, c.ID, 1)
	require.NoError(t, err)
	_, err = env.svc.CastVote(ctx, fx.Room.ID, "user-C", b.ID)
	assert.True(t, apperrors.IsPrecondition(err), "已淘汰不能投票")
	_, err = env.svc.CastVote(ctx, fx.Room.ID, "user-B", c.ID)
	assert.True(t, apperrors.IsPrecondition(err), "不能投给已淘汰玩家")

	env.setPhase(t, fx.Room.ID, models.PhasePlaying, 1)
	_, err = env.svc.CastVote(ctx, fx.Room.ID, "user-B", fx.Player("A").ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrWrongPhase))
}

func TestRevealCharacteristic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fx := repository.SeedRoom(t, env.db, models.PhasePlaying, "A", "B")
	env.setPhase(t, fx.Room.ID, models.PhasePlaying, 2)
	mine := giveTrait(t, env, fx.Player("A"), models.CategoryHobby, "下棋")
	theirs := giveTrait(t, env, fx.Player("B"), models.CategoryHobby, "游泳")

	c, err := env.svc.RevealCharacteristic(ctx, fx.Room.ID, "user-A", mine.ID)
	require.NoError(t, err)
	assert.True(t, c.IsRevealed)
	assert.Equal(t, 2, *c.RevealRound)

	_, err = env.svc.RevealCharacteristic(ctx, fx.Room.ID, "user-A", mine.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, env.pub.count(pubsub.EventCharRevealed), "重复公开不再广播")

	_, err = env.svc.RevealCharacteristic(ctx, fx.Room.ID, "user-A", theirs.ID)
	assert.Equal(t, apperrors.CategoryForbidden, apperrors.CategoryOf(err))
	assert.False(t, reload(t, env, theirs.ID).IsRevealed)
}

func TestSendChat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fx := repository.SeedRoom(t, env.db, models.PhasePlaying, "A", "B")

	msg, err := env.svc.SendChat(ctx, fx.Room.ID, "user-B", "  大家好  ")
	require.NoError(t, err)
	assert.Equal(t, "大家好", msg.Text)

	_, err = env.svc.SendChat(ctx, fx.Room.ID, "user-B", "   ")
	assert.Equal(t, apperrors.CategoryValidationFailed, apperrors.CategoryOf(err))

	_, err = env.svc.SendChat(ctx, fx.Room.ID, "user-B", strings.Repeat("字", env.cfg.ChatMaxLength))
	assert.NoError(t, err, "按字符计数")
	_, err = env.svc.SendChat(ctx, fx.Room.ID, "user-B", strings.Repeat("字", env.cfg.ChatMaxLength+1))
	assert.Equal(t, apperrors.CategoryValidationFailed, apperrors.CategoryOf(err))

	room := env.room(t, fx.Room.ID)
	room.Settings.ChatEnabled = false
	require.NoError(t, env.db.Model(room).Update("settings", room.Settings).Error)
	_, err = env.svc.SendChat(ctx, fx.Room.ID, "user-B", "hi")
	assert.True(t, apperrors.IsPrecondition(err))
}

func TestSnapshotVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fx := repository.SeedRoom(t, env.db, models.PhaseVoting, "A", "B")
	a, b := fx.Player("A"), fx.Player("B")

	giveTrait(t, env, a, models.CategoryHealth, "健康")
	hidden := giveTrait(t, env, b, models.CategoryHealth, "哮喘")
	shown := giveTrait(t, env, b, models.CategoryProfession, "工程师")
	_, err := env.repos.Characteristic().Reveal(ctx, shown.ID, 1)
	require.NoError(t, err)
	giveCard(t, env, a, models.CardPeek)
	giveCard(t, env, b, models.CardReroll)
	_, err = env.svc.CastVote(ctx, fx.Room.ID, "user-B", a.ID)
	require.NoError(t, err)
	_, err = env.svc.SendChat(ctx, fx.Room.ID, "user-A", "你好")
	require.NoError(t, err)

	snap, err := env.svc.Snapshot(ctx, fx.Room.ID, "user-A")
	require.NoError(t, err)
	assert.Equal(t, a.ID, snap.YouID)
	assert.Equal(t, 1, snap.VotesCast)
	assert.Len(t, snap.Chat, 1)
	require.Len(t, snap.Players, 2)

	views := map[uint]*PlayerView{}
	for _, v := range snap.Players {
		views[v.ID] = v
	}
	assert.True(t, views[a.ID].IsHost)
	assert.Len(t, views[a.ID].Characteristics, 1)
	assert.Len(t, views[a.ID].Cards, 1)
	assert.False(t, views[a.ID].HasVoted)

	assert.True(t, views[b.ID].HasVoted)
	assert.Nil(t, views[b.ID].Cards, "看不到他人的卡牌")
	require.Len(t, views[b.ID].Characteristics, 1)
	assert.Equal(t, shown.ID, views[b.ID].Characteristics[0].ID)
	for _, c := range views[b.ID].Characteristics {
		assert.NotEqual(t, hidden.ID, c.ID)
	}

	_, err = env.svc.Snapshot(ctx, fx.Room.ID, "user-nobody")
	assert.Equal(t, apperrors.CategoryForbidden, apperrors.CategoryOf(err))
}

func TestHeartbeat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := createRoom(t, env, 0)
	_, b, err := env.svc.JoinRoom(ctx, "u-b", room.Code, "小B")
	require.NoError(t, err)

	env.clock.Advance(10 * time.Second)
	res, err := env.svc.Heartbeat(ctx, room.ID, "u-b")
	require.NoError(t, err)
	assert.False(t, res.RoomClosed)
	assert.Equal(t, SweepKept, res.Sweep)
	assert.True(t, res.LastSeenAt.Equal(env.clock.Now()))
	require.NotNil(t, env.player(t, b.ID).LastSeenAt)

	// 房主超时未心跳
	env.clock.Advance(env.cfg.ActiveThreshold)
	res, err = env.svc.Heartbeat(ctx, room.ID, "u-b")
	require.NoError(t, err)
	assert.True(t, res.RoomClosed)
	assert.Equal(t, SweepHostAbandoned, res.Sweep)

	_, err = env.svc.Heartbeat(ctx, room.ID, "u-b")
	assert.Error(t, err, "房间已删除")
}

func TestListRoomsSweepsFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := createRoom(t, env, 0)
	repository.SeedRoom(t, env.db, models.PhasePlaying, "A", "B")

	list, err := env.svc.ListRooms(ctx, repository.NewPagination(1, 20))
	require.NoError(t, err)
	require.Len(t, list, 1, "只列出等待中的房间")
	assert.Equal(t, room.ID, list[0].ID)
	assert.EqualValues(t, 1, list[0].Players)

	env.clock.Advance(env.cfg.ActiveThreshold + time.Second)
	list, err = env.svc.ListRooms(ctx, repository.NewPagination(1, 20))
	require.NoError(t, err)
	assert.Empty(t, list)

	ids, err := env.repos.Room().ListIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids, "无人在线的房间全部被清理")
}

func TestPlayerStatsAfterGame(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewService(env.repos, env.cfg, Options{
		Clock:  env.clock,
		Rand:   fixedRand{},
		Stats:  NewDBStatsHook(env.repos.Stat()),
		Logger: zap.NewNop(),
	})
	fx := repository.SeedRoom(t, env.db, models.PhaseResults, "A", "B", "C")
	_, err := env.repos.Player().MarkEliminated(ctx, fx.Player("C").ID, 1)
	require.NoError(t, err)

	res, err := svc.Machine().AdvanceRound(ctx, fx.Room.ID, "user-A")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseFinished, res.To)

	stat, err := svc.PlayerStats(ctx, "user-A")
	require.NoError(t, err)
	assert.Equal(t, 1, stat.GamesPlayed)
	assert.Equal(t, 1, stat.GamesSurvived)

	stat, err = svc.PlayerStats(ctx, "user-C")
	require.NoError(t, err)
	assert.Equal(t, 1, stat.TimesEliminated)
	assert.Zero(t, stat.GamesSurvived)

	stat, err = svc.PlayerStats(ctx, "user-new")
	require.NoError(t, err)
	assert.Zero(t, stat.GamesPlayed)
}

func TestCastVoteRejectedAfterVotingEnds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fx := repository.SeedRoom(t, env.db, models.PhaseVoting, "A", "B", "C")

	// 投票读到 voting 之后，结束投票的条件更新抢先提交
	fired := false
	err := env.db.Callback().Update().Before("gorm:update").Register("test:end_voting", func(db *gorm.DB) {
		if fired || db.Statement.Table != "rooms" {
			return
		}
		fired = true
		err := db.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE rooms SET phase = ? WHERE id = ?", models.PhaseResults, fx.Room.ID).Error
		assert.NoError(t, err)
	})
	require.NoError(t, err)

	_, err = env.svc.CastVote(ctx, fx.Room.ID, "user-A", fx.Player("B").ID)
	require.True(t, fired)
	assert.True(t, apperrors.Is(err, apperrors.ErrWrongPhase))

	votes, err := env.repos.Vote().ListByRound(ctx, fx.Room.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, votes, "结束投票之后的票不写入")
}
