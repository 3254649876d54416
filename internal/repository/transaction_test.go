package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/bunker-game/internal/models"
)

func TestTransactionManager_WithTransaction(t *testing.T) {
	db := SetupTestDB(t)
	fx := SeedRoom(t, db, models.PhasePlaying, "房主", "玩家")
	manager := NewTransactionManager(db)
	repos := NewManager(db)
	ctx := context.Background()

	// 成功的事务，事务内可以读到自己的写入
	err := manager.WithTransaction(ctx, func(tx *Transaction) error {
		msg := &models.ChatMessage{RoomID: fx.Room.ID, PlayerID: fx.Players[1].ID, Text: "提交"}
		if err := tx.Chats().Create(ctx, msg); err != nil {
			return err
		}
		recent, err := tx.Chats().ListRecent(ctx, fx.Room.ID, 10)
		if err != nil {
			return err
		}
		assert.Len(t, recent, 1)
		return nil
	})
	require.NoError(t, err)

	recent, err := repos.Chat().ListRecent(ctx, fx.Room.ID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "提交", recent[0].Text)
}

func TestTransactionManager_Rollback(t *testing.T) {
	db := SetupTestDB(t)
	fx := SeedRoom(t, db, models.PhaseWaiting, "房主")
	manager := NewTransactionManager(db)
	repos := NewManager(db)
	ctx := context.Background()

	// 失败的事务（应该回滚）
	boom := errors.New("故意的错误")
	err := manager.WithTransaction(ctx, func(tx *Transaction) error {
		p := &models.Player{RoomID: fx.Room.ID, UserID: "user-late", Name: "迟到"}
		if err := tx.Players().Create(ctx, p); err != nil {
			return err
		}
		ok, err := tx.Rooms().CompareAndSetPhase(ctx, fx.Room.ID, []models.Phase{models.PhaseWaiting},
			map[string]interface{}{"phase": models.PhasePlaying})
		if err != nil {
			return err
		}
		assert.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// 验证数据未写入（已回滚）
	n, err := repos.Player().CountByRoom(ctx, fx.Room.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	room, err := repos.Room().FindByID(ctx, fx.Room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseWaiting, room.Phase)
}

func TestTransactionManager_DeleteRoom(t *testing.T) {
	db := SetupTestDB(t)
	fx := SeedRoom(t, db, models.PhaseVoting, "房主", "甲", "乙")
	manager := NewTransactionManager(db)
	repos := NewManager(db)
	ctx := context.Background()

	var res *CascadeResult
	err := manager.WithTransaction(ctx, func(tx *Transaction) error {
		var err error
		res, err = tx.DeleteRoom(fx.Room.ID)
		return err
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Rooms)
	assert.EqualValues(t, 3, res.Players)

	_, err = repos.Room().FindByID(ctx, fx.Room.ID)
	assert.Error(t, err)
}

func TestTransaction_CommitRollback(t *testing.T) {
	db := SetupTestDB(t)
	fx := SeedRoom(t, db, models.PhaseWaiting, "房主")
	manager := NewTransactionManager(db)
	repos := NewManager(db)
	ctx := context.Background()

	// 测试手动提交
	tx1, err := manager.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx1.Players().SetReady(ctx, fx.Players[0].ID, true))
	require.NoError(t, tx1.Commit())

	// 验证重复提交错误
	err = tx1.Commit()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "已提交")

	p, err := repos.Player().FindByID(ctx, fx.Players[0].ID)
	require.NoError(t, err)
	assert.True(t, p.IsReady)

	// 测试手动回滚
	tx2, err := manager.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx2.Players().SetReady(ctx, fx.Players[0].ID, false))
	require.NoError(t, tx2.Rollback())

	// 验证重复回滚错误
	err = tx2.Rollback()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "已回滚")

	// 验证已回滚的事务不能提交
	err = tx2.Commit()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "已回滚")

	p, err = repos.Player().FindByID(ctx, fx.Players[0].ID)
	require.NoError(t, err)
	assert.True(t, p.IsReady)
}
