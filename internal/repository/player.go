package repository

import (
	"context"
	"errors"
	"time"

	"github.com/wfunc/bunker-game/internal/models"
	"gorm.io/gorm"
)

// PlayerRepository 玩家仓储接口
type PlayerRepository interface {
	BaseRepository
	Create(ctx context.Context, player *models.Player) error
	FindByID(ctx context.Context, id uint) (*models.Player, error)
	FindByRoomAndUser(ctx context.Context, roomID uint, userID string) (*models.Player, error)
	ListByRoom(ctx context.Context, roomID uint) ([]*models.Player, error)
	CountByRoom(ctx context.Context, roomID uint) (int64, error)
	CountRemaining(ctx context.Context, roomID uint) (int64, error)
	Touch(ctx context.Context, id uint, at time.Time) (bool, error)
	SetReady(ctx context.Context, id uint, ready bool) error
	// MarkEliminated 仅对未淘汰的玩家生效
	MarkEliminated(ctx context.Context, id uint, round int) (bool, error)
	// SaveMetadata 仅当版本号仍为 version 时写入
	SaveMetadata(ctx context.Context, id uint, version int, meta models.PlayerMetadata) (bool, error)
	UpdateMetadata(ctx context.Context, id uint, fn func(meta *models.PlayerMetadata) bool) (*models.Player, error)
}

// ErrMetadataConflict 多次重试后卡牌效果仍被并发修改
var ErrMetadataConflict = errors.New("玩家卡牌效果被并发修改")

const metadataRetries = 5

// playerRepo 玩家仓储实现
type playerRepo struct {
	*BaseRepo
}

// NewPlayerRepository 创建玩家仓储
func NewPlayerRepository(db *gorm.DB) PlayerRepository {
	return &playerRepo{BaseRepo: NewBaseRepo(db)}
}

// WithTx 使用事务
func (r *playerRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &playerRepo{BaseRepo: &BaseRepo{db: tx}}
}

// Create 创建玩家
func (r *playerRepo) Create(ctx context.Context, player *models.Player) error {
	return r.db.WithContext(ctx).Create(player).Error
}

// FindByID 根据ID查找
func (r *playerRepo) FindByID(ctx context.Context, id uint) (*models.Player, error) {
	var player models.Player
	if err := r.db.WithContext(ctx).First(&player, id).Error; err != nil {
		return nil, err
	}
	return &player, nil
}

// FindByRoomAndUser 查找用户在房间中的座位
func (r *playerRepo) FindByRoomAndUser(ctx context.Context, roomID uint, userID string) (*models.Player, error) {
	var player models.Player
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&player).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// ListByRoom 列出房间内全部玩家，按加入顺序
func (r *playerRepo) ListByRoom(ctx context.Context, roomID uint) ([]*models.Player, error) {
	var players []*models.Player
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("joined_at asc, id asc").
		Find(&players).Error
	return players, err
}

// CountByRoom 统计房间人数
func (r *playerRepo) CountByRoom(ctx context.Context, roomID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	return count, err
}

// CountRemaining 统计未淘汰人数
func (r *playerRepo) CountRemaining(ctx context.Context, roomID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("room_id = ? AND is_eliminated = ?", roomID, false).
		Count(&count).Error
	return count, err
}

// Touch 记录心跳时间
func (r *playerRepo) Touch(ctx context.Context, id uint, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("id = ?", id).
		Update("last_seen_at", at)
	return result.RowsAffected > 0, result.Error
}

// SetReady 更新准备状态
func (r *playerRepo) SetReady(ctx context.Context, id uint, ready bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("id = ?", id).
		Update("is_ready", ready).Error
}

// MarkEliminated 标记淘汰
func (r *playerRepo) MarkEliminated(ctx context.Context, id uint, round int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("id = ? AND is_eliminated = ?", id, false).
		Updates(map[string]interface{}{
			"is_eliminated": true,
			"eliminated_in": round,
		})
	return result.RowsAffected > 0, result.Error
}

// SaveMetadata 以读取时的版本号为条件写入卡牌效果
func (r *playerRepo) SaveMetadata(ctx context.Context, id uint, version int, meta models.PlayerMetadata) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("id = ? AND meta_version = ?", id, version).
		Updates(map[string]interface{}{
			"metadata":     meta,
			"meta_version": gorm.Expr("meta_version + 1"),
		})
	return result.RowsAffected > 0, result.Error
}

// UpdateMetadata 读取最新的卡牌效果交给 fn 修改，fn 返回 false 表示无需写入。
// 版本冲突时重读重试，返回写入后的玩家。
func (r *playerRepo) UpdateMetadata(ctx context.Context, id uint, fn func(meta *models.PlayerMetadata) bool) (*models.Player, error) {
	for i := 0; i < metadataRetries; i++ {
		p, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !fn(&p.Metadata) {
			return p, nil
		}
		ok, err := r.SaveMetadata(ctx, id, p.MetaVersion, p.Metadata)
		if err != nil {
			return nil, err
		}
		if ok {
			p.MetaVersion++
			return p, nil
		}
	}
	return nil, ErrMetadataConflict
}
