package repository

import (
	"context"

	"github.com/wfunc/bunker-game/internal/models"
	"gorm.io/gorm"
)

// CardRepository 特殊卡牌仓储接口
type CardRepository interface {
	BaseRepository
	CreateBatch(ctx context.Context, cards []*models.SpecialCard) error
	FindByID(ctx context.Context, id uint) (*models.SpecialCard, error)
	ListByPlayer(ctx context.Context, playerID uint) ([]*models.SpecialCard, error)
	// MarkUsed 仅当卡牌未使用时生效
	MarkUsed(ctx context.Context, id uint, round int) (bool, error)
}

// cardRepo 特殊卡牌仓储实现
type cardRepo struct {
	*BaseRepo
}

// NewCardRepository 创建特殊卡牌仓储
func NewCardRepository(db *gorm.DB) CardRepository {
	return &cardRepo{BaseRepo: NewBaseRepo(db)}
}

// WithTx 使用事务
func (r *cardRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &cardRepo{BaseRepo: &BaseRepo{db: tx}}
}

// CreateBatch 批量创建
func (r *cardRepo) CreateBatch(ctx context.Context, cards []*models.SpecialCard) error {
	if len(cards) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(cards, 100).Error
}

// FindByID 根据ID查找
func (r *cardRepo) FindByID(ctx context.Context, id uint) (*models.SpecialCard, error) {
	var card models.SpecialCard
	if err := r.db.WithContext(ctx).First(&card, id).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// ListByPlayer 列出玩家的卡牌
func (r *cardRepo) ListByPlayer(ctx context.Context, playerID uint) ([]*models.SpecialCard, error) {
	var cards []*models.SpecialCard
	err := r.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("id asc").
		Find(&cards).Error
	return cards, err
}

// MarkUsed 标记卡牌已使用
func (r *cardRepo) MarkUsed(ctx context.Context, id uint, round int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SpecialCard{}).
		Where("id = ? AND is_used = ?", id, false).
		Updates(map[string]interface{}{
			"is_used":    true,
			"used_round": round,
		})
	return result.RowsAffected > 0, result.Error
}
