package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/wfunc/bunker-game/internal/config"
	"github.com/wfunc/bunker-game/internal/models"
	"github.com/wfunc/bunker-game/internal/pubsub"
	"github.com/wfunc/bunker-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recordingPublisher 记录发布过的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []*pubsub.Event
}

func (r *recordingPublisher) Publish(_ context.Context, evt *pubsub.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) count(t pubsub.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// fixedRand 总是返回 min(v, n-1)
type fixedRand struct{ v int }

func (f fixedRand) Intn(n int) int {
	if f.v >= n {
		return n - 1
	}
	return f.v
}

// countingHook 统计钩子调用次数
type countingHook struct {
	mu       sync.Mutex
	calls    int
	lastSeen *GameSummary
}

func (h *countingHook) OnGameFinished(_ context.Context, s *GameSummary) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	h.lastSeen = s
	return nil
}

type testEnv struct {
	db    *gorm.DB
	repos *repository.Manager
	clock *clockwork.FakeClock
	pub   *recordingPublisher
	hook  *countingHook
	cfg   *config.GameConfig
	svc   *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := repository.SetupTestDB(t)
	cfg := config.Default().Game
	env := &testEnv{
		db:    db,
		repos: repository.NewManager(db),
		clock: clockwork.NewFakeClockAt(time.Now()),
		pub:   &recordingPublisher{},
		hook:  &countingHook{},
		cfg:   &cfg,
	}
	env.svc = NewService(env.repos, env.cfg, Options{
		Clock:     env.clock,
		Rand:      fixedRand{},
		Publisher: env.pub,
		Stats:     env.hook,
		Logger:    zap.NewNop(),
	})
	return env
}

func (e *testEnv) room(t *testing.T, id uint) *models.Room {
	t.Helper()
	room, err := e.repos.Room().FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("读取房间失败: %v", err)
	}
	return room
}

func (e *testEnv) player(t *testing.T, id uint) *models.Player {
	t.Helper()
	p, err := e.repos.Player().FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("读取玩家失败: %v", err)
	}
	return p
}

func (e *testEnv) setPhase(t *testing.T, roomID uint, phase models.Phase, round int) {
	t.Helper()
	err := e.db.Model(&models.Room{}).Where("id = ?", roomID).
		Updates(map[string]interface{}{"phase": phase, "current_round": round}).Error
	if err != nil {
		t.Fatalf("设置阶段失败: %v", err)
	}
}

func (e *testEnv) setManual(t *testing.T, room *models.Room) {
	t.Helper()
	room.Settings.RoundMode = models.RoundModeManual
	if err := e.db.Model(&models.Room{}).Where("id = ?", room.ID).Update("settings", room.Settings).Error; err != nil {
		t.Fatalf("设置手动模式失败: %v", err)
	}
}

func intPtr(v int) *int { return &v }
