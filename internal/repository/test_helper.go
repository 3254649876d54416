package repository

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/bunker-game/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB 为单个测试创建独立的内存数据库
func SetupTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	// 共享缓存的命名内存库，单连接保证事务与普通查询串行
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))

	t.Cleanup(func() {
		CleanupTestDB(db)
	})
	return db
}

// CleanupTestDB 清理测试数据库
func CleanupTestDB(db *gorm.DB) {
	sqlDB, _ := db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

var seedSeq atomic.Int64

// Fixture 测试房间及其玩家，Players[0] 为房主
type Fixture struct {
	Room    *models.Room
	Players []*models.Player
}

// SeedRoom 创建一个房间和若干玩家，玩家均刚发送过心跳
func SeedRoom(t testing.TB, db *gorm.DB, phase models.Phase, names ...string) *Fixture {
	t.Helper()
	require.NotEmpty(t, names, "至少需要房主")

	now := time.Now()
	room := &models.Room{
		Code:         fmt.Sprintf("T%05d", seedSeq.Add(1)),
		Name:         "测试房间",
		HostID:       "user-" + names[0],
		Phase:        phase,
		CurrentRound: 1,
		MaxPlayers:   20,
		Settings: models.RoomSettings{
			RoundMode:         models.RoundModeAutomatic,
			DiscussionSeconds: 120,
			VotingSeconds:     60,
			ChatEnabled:       true,
			CardsEnabled:      true,
		},
	}
	require.NoError(t, db.Create(room).Error)

	fx := &Fixture{Room: room}
	for i, name := range names {
		p := &models.Player{
			RoomID:     room.ID,
			UserID:     "user-" + name,
			Name:       name,
			IsHost:     i == 0,
			LastSeenAt: &now,
			JoinedAt:   now.Add(time.Duration(i) * time.Millisecond),
		}
		require.NoError(t, db.Create(p).Error)
		fx.Players = append(fx.Players, p)
	}
	return fx
}

// Player 按名字取玩家
func (f *Fixture) Player(name string) *models.Player {
	for _, p := range f.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}
