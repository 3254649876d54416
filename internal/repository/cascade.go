package repository

import (
	"context"
	"fmt"

	"github.com/wfunc/bunker-game/internal/models"
	"gorm.io/gorm"
)

// CascadeResult 级联删除的行数统计
type CascadeResult struct {
	Votes           int64 `json:"votes"`
	ChatMessages    int64 `json:"chat_messages"`
	Characteristics int64 `json:"characteristics"`
	Cards           int64 `json:"cards"`
	Players         int64 `json:"players"`
	Rooms           int64 `json:"rooms"`
}

// roomStep 删除房间时依次执行的一步，依赖数据在前，房间本身最后
type roomStep struct {
	name string
	run  func(db *gorm.DB, res *CascadeResult) error
}

func roomSteps(roomID uint, guards []RoomGuard) []roomStep {
	return []roomStep{
		{"votes", func(db *gorm.DB, res *CascadeResult) error {
			r := db.Where("room_id = ?", roomID).Delete(&models.Vote{})
			res.Votes = r.RowsAffected
			return r.Error
		}},
		{"chat_messages", func(db *gorm.DB, res *CascadeResult) error {
			r := db.Where("room_id = ?", roomID).Delete(&models.ChatMessage{})
			res.ChatMessages = r.RowsAffected
			return r.Error
		}},
		{"characteristics", func(db *gorm.DB, res *CascadeResult) error {
			r := db.Where("room_id = ?", roomID).Delete(&models.Characteristic{})
			res.Characteristics = r.RowsAffected
			return r.Error
		}},
		{"special_cards", func(db *gorm.DB, res *CascadeResult) error {
			r := db.Where("room_id = ?", roomID).Delete(&models.SpecialCard{})
			res.Cards = r.RowsAffected
			return r.Error
		}},
		{"players", func(db *gorm.DB, res *CascadeResult) error {
			r := db.Where("room_id = ?", roomID).Delete(&models.Player{})
			res.Players = r.RowsAffected
			return r.Error
		}},
		{"rooms", func(db *gorm.DB, res *CascadeResult) error {
			r := applyGuards(db, guards).Delete(&models.Room{}, roomID)
			res.Rooms = r.RowsAffected
			return r.Error
		}},
	}
}

// CascadeDeleteRoom 在给定连接（通常为事务）上删除房间及其全部数据。
// 带条件时先按条件删除房间本身，条件不成立则不动任何数据，Rooms 为 0。
func CascadeDeleteRoom(ctx context.Context, db *gorm.DB, roomID uint, guards ...RoomGuard) (*CascadeResult, error) {
	res := &CascadeResult{}
	steps := roomSteps(roomID, guards)
	guarded := len(guards) > 0
	if guarded {
		last := len(steps) - 1
		steps = append([]roomStep{steps[last]}, steps[:last]...)
	}
	for i, step := range steps {
		if err := step.run(db.WithContext(ctx), res); err != nil {
			return res, fmt.Errorf("删除%s失败: %w", step.name, err)
		}
		if guarded && i == 0 && res.Rooms == 0 {
			return res, nil
		}
	}
	return res, nil
}

// StepError 尽力删除时某一步的失败
type StepError struct {
	Step string
	Err  error
}

// Error 实现error接口
func (e *StepError) Error() string {
	return fmt.Sprintf("删除%s失败: %v", e.Step, e.Err)
}

// Unwrap 返回原始错误
func (e *StepError) Unwrap() error {
	return e.Err
}

// BestEffortDeleteRoom 逐步删除房间数据，依赖数据删除失败不阻止删除房间本身。
// 返回依赖数据的失败列表，以及房间本身的删除错误。
// 带条件时先检查一次条件，删除房间本身时再次校验。
func BestEffortDeleteRoom(ctx context.Context, db *gorm.DB, roomID uint, guards ...RoomGuard) (*CascadeResult, []*StepError, error) {
	res := &CascadeResult{}
	var failures []*StepError

	if len(guards) > 0 {
		var n int64
		q := db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", roomID)
		if err := applyGuards(q, guards).Count(&n).Error; err != nil {
			return res, nil, &StepError{Step: "rooms", Err: err}
		}
		if n == 0 {
			return res, nil, nil
		}
	}

	steps := roomSteps(roomID, guards)
	last := len(steps) - 1
	for i, step := range steps {
		err := step.run(db.WithContext(ctx), res)
		if err == nil {
			continue
		}
		if i == last {
			return res, failures, &StepError{Step: step.name, Err: err}
		}
		failures = append(failures, &StepError{Step: step.name, Err: err})
	}
	return res, failures, nil
}

// deletePlayerDependents 删除玩家的特征、卡牌、聊天，以及投出和收到的票
func deletePlayerDependents(db *gorm.DB, roomID uint, playerIDs []uint, res *CascadeResult) error {
	r := db.Where("room_id = ? AND (voter_id IN ? OR target_id IN ?)", roomID, playerIDs, playerIDs).Delete(&models.Vote{})
	if r.Error != nil {
		return fmt.Errorf("删除votes失败: %w", r.Error)
	}
	res.Votes = r.RowsAffected

	r = db.Where("room_id = ? AND player_id IN ?", roomID, playerIDs).Delete(&models.ChatMessage{})
	if r.Error != nil {
		return fmt.Errorf("删除chat_messages失败: %w", r.Error)
	}
	res.ChatMessages = r.RowsAffected

	r = db.Where("room_id = ? AND player_id IN ?", roomID, playerIDs).Delete(&models.Characteristic{})
	if r.Error != nil {
		return fmt.Errorf("删除characteristics失败: %w", r.Error)
	}
	res.Characteristics = r.RowsAffected

	r = db.Where("room_id = ? AND player_id IN ?", roomID, playerIDs).Delete(&models.SpecialCard{})
	if r.Error != nil {
		return fmt.Errorf("删除special_cards失败: %w", r.Error)
	}
	res.Cards = r.RowsAffected
	return nil
}

// CascadeDeletePlayers 删除房间内指定玩家及其特征、卡牌、投票、聊天
func CascadeDeletePlayers(ctx context.Context, db *gorm.DB, roomID uint, playerIDs []uint) (*CascadeResult, error) {
	res := &CascadeResult{}
	if len(playerIDs) == 0 {
		return res, nil
	}
	db = db.WithContext(ctx)

	if err := deletePlayerDependents(db, roomID, playerIDs, res); err != nil {
		return res, err
	}

	r := db.Where("room_id = ? AND id IN ?", roomID, playerIDs).Delete(&models.Player{})
	if r.Error != nil {
		return res, fmt.Errorf("删除players失败: %w", r.Error)
	}
	res.Players = r.RowsAffected

	return res, nil
}

// ReclaimInactivePlayers 回收 playerIDs 中删除时仍然离线的玩家。
// 在线判定写在 DELETE 条件里，读取之后才到达的心跳会保住座位；只级联清理实际删除的玩家。
func ReclaimInactivePlayers(ctx context.Context, db *gorm.DB, roomID uint, playerIDs []uint, live Liveness) ([]uint, *CascadeResult, error) {
	res := &CascadeResult{}
	if len(playerIDs) == 0 {
		return nil, res, nil
	}
	db = db.WithContext(ctx)

	var candidates []uint
	err := db.Model(&models.Player{}).
		Where("room_id = ? AND id IN ?", roomID, playerIDs).
		Where(live.inactiveSQL(""), live.args()...).
		Pluck("id", &candidates).Error
	if err != nil {
		return nil, res, fmt.Errorf("读取离线玩家失败: %w", err)
	}
	if len(candidates) == 0 {
		return nil, res, nil
	}

	r := db.Where("room_id = ? AND id IN ?", roomID, candidates).
		Where(live.inactiveSQL(""), live.args()...).
		Delete(&models.Player{})
	if r.Error != nil {
		return nil, res, fmt.Errorf("删除players失败: %w", r.Error)
	}
	if r.RowsAffected == 0 {
		return nil, res, nil
	}
	res.Players = r.RowsAffected

	var kept []uint
	if err := db.Model(&models.Player{}).Where("id IN ?", candidates).Pluck("id", &kept).Error; err != nil {
		return nil, res, fmt.Errorf("读取玩家失败: %w", err)
	}
	stillHere := make(map[uint]bool, len(kept))
	for _, id := range kept {
		stillHere[id] = true
	}
	removed := make([]uint, 0, len(candidates))
	for _, id := range candidates {
		if !stillHere[id] {
			removed = append(removed, id)
		}
	}

	if err := deletePlayerDependents(db, roomID, removed, res); err != nil {
		return nil, res, err
	}
	return removed, res, nil
}
