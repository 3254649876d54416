package repository

import (
	"context"

	"github.com/wfunc/bunker-game/internal/models"
	"gorm.io/gorm"
)

// CharacteristicRepository 玩家特征仓储接口
type CharacteristicRepository interface {
	BaseRepository
	CreateBatch(ctx context.Context, items []*models.Characteristic) error
	FindByID(ctx context.Context, id uint) (*models.Characteristic, error)
	ListByPlayer(ctx context.Context, playerID uint) ([]*models.Characteristic, error)
	ListByRoom(ctx context.Context, roomID uint) ([]*models.Characteristic, error)
	// Reveal 公开单项特征，已公开的不改动揭示回合
	Reveal(ctx context.Context, id uint, round int) (bool, error)
	RevealAllForPlayer(ctx context.Context, playerID uint, round int) (int64, error)
	UpdateValue(ctx context.Context, id uint, value string) error
}

// characteristicRepo 玩家特征仓储实现
type characteristicRepo struct {
	*BaseRepo
}

// NewCharacteristicRepository 创建玩家特征仓储
func NewCharacteristicRepository(db *gorm.DB) CharacteristicRepository {
	return &characteristicRepo{BaseRepo: NewBaseRepo(db)}
}

// WithTx 使用事务
func (r *characteristicRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &characteristicRepo{BaseRepo: &BaseRepo{db: tx}}
}

// CreateBatch 批量创建
func (r *characteristicRepo) CreateBatch(ctx context.Context, items []*models.Characteristic) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(items, 100).Error
}

// FindByID 根据ID查找
func (r *characteristicRepo) FindByID(ctx context.Context, id uint) (*models.Characteristic, error) {
	var item models.Characteristic
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByPlayer 列出玩家的特征
func (r *characteristicRepo) ListByPlayer(ctx context.Context, playerID uint) ([]*models.Characteristic, error) {
	var items []*models.Characteristic
	err := r.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("id asc").
		Find(&items).Error
	return items, err
}

// ListByRoom 列出房间内的全部特征
func (r *characteristicRepo) ListByRoom(ctx context.Context, roomID uint) ([]*models.Characteristic, error) {
	var items []*models.Characteristic
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("player_id asc, id asc").
		Find(&items).Error
	return items, err
}

// Reveal 公开单项特征
func (r *characteristicRepo) Reveal(ctx context.Context, id uint, round int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Characteristic{}).
		Where("id = ? AND is_revealed = ?", id, false).
		Updates(map[string]interface{}{
			"is_revealed":  true,
			"reveal_round": round,
		})
	return result.RowsAffected > 0, result.Error
}

// RevealAllForPlayer 公开玩家全部未公开特征
func (r *characteristicRepo) RevealAllForPlayer(ctx context.Context, playerID uint, round int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Characteristic{}).
		Where("player_id = ? AND is_revealed = ?", playerID, false).
		Updates(map[string]interface{}{
			"is_revealed":  true,
			"reveal_round": round,
		})
	return result.RowsAffected, result.Error
}

// UpdateValue 替换特征值
func (r *characteristicRepo) UpdateValue(ctx context.Context, id uint, value string) error {
	return r.db.WithContext(ctx).
		Model(&models.Characteristic{}).
		Where("id = ?", id).
		Update("value", value).Error
}
