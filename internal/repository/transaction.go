package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// TransactionManager 事务管理器接口
type TransactionManager interface {
	// Begin 开始事务
	Begin(ctx context.Context) (*Transaction, error)
	// WithTransaction 在事务中执行函数
	WithTransaction(ctx context.Context, fn func(tx *Transaction) error) error
}

// Transaction 事务包装器，事务内只能通过这里取得仓储
type Transaction struct {
	tx         *gorm.DB
	ctx        context.Context
	committed  bool
	rolledback bool

	rooms           RoomRepository
	players         PlayerRepository
	votes           VoteRepository
	characteristics CharacteristicRepository
	cards           CardRepository
	chats           ChatRepository
	stats           StatRepository
}

// txManager 事务管理器实现
type txManager struct {
	db *gorm.DB
}

// NewTransactionManager 创建事务管理器
func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &txManager{db: db}
}

// Begin 开始事务
func (m *txManager) Begin(ctx context.Context) (*Transaction, error) {
	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &Transaction{tx: tx, ctx: ctx}, nil
}

// WithTransaction 在事务中执行函数
func (m *txManager) WithTransaction(ctx context.Context, fn func(tx *Transaction) error) error {
	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}

	// 确保事务被处理
	defer func() {
		if !tx.committed && !tx.rolledback {
			tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Commit 提交事务
func (t *Transaction) Commit() error {
	if t.committed {
		return fmt.Errorf("事务已提交")
	}
	if t.rolledback {
		return fmt.Errorf("事务已回滚")
	}

	if err := t.tx.Commit().Error; err != nil {
		return err
	}

	t.committed = true
	return nil
}

// Rollback 回滚事务
func (t *Transaction) Rollback() error {
	if t.committed {
		return fmt.Errorf("事务已提交，无法回滚")
	}
	if t.rolledback {
		return fmt.Errorf("事务已回滚")
	}

	if err := t.tx.Rollback().Error; err != nil {
		return err
	}

	t.rolledback = true
	return nil
}

// GetDB 获取事务中的数据库实例
func (t *Transaction) GetDB() *gorm.DB {
	return t.tx
}

// Context 事务所属上下文
func (t *Transaction) Context() context.Context {
	return t.ctx
}

// Rooms 获取事务中的房间仓储
func (t *Transaction) Rooms() RoomRepository {
	if t.rooms == nil {
		t.rooms = &roomRepo{BaseRepo: &BaseRepo{db: t.tx}}
	}
	return t.rooms
}

// Players 获取事务中的玩家仓储
func (t *Transaction) Players() PlayerRepository {
	if t.players == nil {
		t.players = &playerRepo{BaseRepo: &BaseRepo{db: t.tx}}
	}
	return t.players
}

// Votes 获取事务中的投票仓储
func (t *Transaction) Votes() VoteRepository {
	if t.votes == nil {
		t.votes = &voteRepo{BaseRepo: &BaseRepo{db: t.tx}}
	}
	return t.votes
}

// Characteristics 获取事务中的特征仓储
func (t *Transaction) Characteristics() CharacteristicRepository {
	if t.characteristics == nil {
		t.characteristics = &characteristicRepo{BaseRepo: &BaseRepo{db: t.tx}}
	}
	return t.characteristics
}

// Cards 获取事务中的卡牌仓储
func (t *Transaction) Cards() CardRepository {
	if t.cards == nil {
		t.cards = &cardRepo{BaseRepo: &BaseRepo{db: t.tx}}
	}
	return t.cards
}

// Chats 获取事务中的聊天仓储
func (t *Transaction) Chats() ChatRepository {
	if t.chats == nil {
		t.chats = &chatRepo{BaseRepo: &BaseRepo{db: t.tx}}
	}
	return t.chats
}

// Stats 获取事务中的战绩仓储
func (t *Transaction) Stats() StatRepository {
	if t.stats == nil {
		t.stats = &statRepo{BaseRepo: &BaseRepo{db: t.tx}}
	}
	return t.stats
}

// DeletePlayers 在事务中级联删除玩家
func (t *Transaction) DeletePlayers(roomID uint, playerIDs []uint) (*CascadeResult, error) {
	return CascadeDeletePlayers(t.ctx, t.tx, roomID, playerIDs)
}

// DeleteRoom 在事务中级联删除房间，guards 不成立时不删除
func (t *Transaction) DeleteRoom(roomID uint, guards ...RoomGuard) (*CascadeResult, error) {
	return CascadeDeleteRoom(t.ctx, t.tx, roomID, guards...)
}

// ReclaimPlayers 在事务中回收仍然离线的玩家
func (t *Transaction) ReclaimPlayers(roomID uint, playerIDs []uint, live Liveness) ([]uint, *CascadeResult, error) {
	return ReclaimInactivePlayers(t.ctx, t.tx, roomID, playerIDs, live)
}
