package repository

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// Manager 仓储管理器，提供所有仓储的统一访问接口
type Manager struct {
	db *gorm.DB

	txManager TransactionManager

	// 仓储实例（懒加载）
	roomOnce sync.Once
	room     RoomRepository

	playerOnce sync.Once
	player     PlayerRepository

	voteOnce sync.Once
	vote     VoteRepository

	characteristicOnce sync.Once
	characteristic     CharacteristicRepository

	cardOnce sync.Once
	card     CardRepository

	chatOnce sync.Once
	chat     ChatRepository

	statOnce sync.Once
	stat     StatRepository
}

// NewManager 创建仓储管理器
func NewManager(db *gorm.DB) *Manager {
	return &Manager{
		db:        db,
		txManager: NewTransactionManager(db),
	}
}

// DB 获取数据库实例
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Transaction 获取事务管理器
func (m *Manager) Transaction() TransactionManager {
	return m.txManager
}

// Room 房间仓储
func (m *Manager) Room() RoomRepository {
	m.roomOnce.Do(func() {
		m.room = NewRoomRepository(m.db)
	})
	return m.room
}

// Player 玩家仓储
func (m *Manager) Player() PlayerRepository {
	m.playerOnce.Do(func() {
		m.player = NewPlayerRepository(m.db)
	})
	return m.player
}

// Vote 投票仓储
func (m *Manager) Vote() VoteRepository {
	m.voteOnce.Do(func() {
		m.vote = NewVoteRepository(m.db)
	})
	return m.vote
}

// Characteristic 特征仓储
func (m *Manager) Characteristic() CharacteristicRepository {
	m.characteristicOnce.Do(func() {
		m.characteristic = NewCharacteristicRepository(m.db)
	})
	return m.characteristic
}

// Card 卡牌仓储
func (m *Manager) Card() CardRepository {
	m.cardOnce.Do(func() {
		m.card = NewCardRepository(m.db)
	})
	return m.card
}

// Chat 聊天仓储
func (m *Manager) Chat() ChatRepository {
	m.chatOnce.Do(func() {
		m.chat = NewChatRepository(m.db)
	})
	return m.chat
}

// Stat 战绩仓储
func (m *Manager) Stat() StatRepository {
	m.statOnce.Do(func() {
		m.stat = NewStatRepository(m.db)
	})
	return m.stat
}

// DeleteRoomCascade 在单个事务中删除房间及其全部数据，guards 不成立时不删除
func (m *Manager) DeleteRoomCascade(ctx context.Context, roomID uint, guards ...RoomGuard) (*CascadeResult, error) {
	var res *CascadeResult
	err := m.txManager.WithTransaction(ctx, func(tx *Transaction) error {
		var err error
		res, err = tx.DeleteRoom(roomID, guards...)
		return err
	})
	return res, err
}

// DeleteRoomBestEffort 不使用事务逐步删除房间数据
func (m *Manager) DeleteRoomBestEffort(ctx context.Context, roomID uint, guards ...RoomGuard) (*CascadeResult, []*StepError, error) {
	return BestEffortDeleteRoom(ctx, m.db, roomID, guards...)
}

// ReclaimPlayers 在单个事务中回收仍然离线的玩家，返回实际删除的玩家
func (m *Manager) ReclaimPlayers(ctx context.Context, roomID uint, playerIDs []uint, live Liveness) ([]uint, *CascadeResult, error) {
	var (
		removed []uint
		res     *CascadeResult
	)
	err := m.txManager.WithTransaction(ctx, func(tx *Transaction) error {
		var err error
		removed, res, err = tx.ReclaimPlayers(roomID, playerIDs, live)
		return err
	})
	return removed, res, err
}

// DeletePlayersCascade 在单个事务中删除玩家及其数据
func (m *Manager) DeletePlayersCascade(ctx context.Context, roomID uint, playerIDs []uint) (*CascadeResult, error) {
	var res *CascadeResult
	err := m.txManager.WithTransaction(ctx, func(tx *Transaction) error {
		var err error
		res, err = tx.DeletePlayers(roomID, playerIDs)
		return err
	})
	return res, err
}
