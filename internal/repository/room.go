package repository

import (
	"context"

	"github.com/wfunc/bunker-game/internal/models"
	"gorm.io/gorm"
)

// RoomRepository 房间仓储接口
type RoomRepository interface {
	BaseRepository
	Create(ctx context.Context, room *models.Room) error
	FindByID(ctx context.Context, id uint) (*models.Room, error)
	FindOpenByCode(ctx context.Context, code string) (*models.Room, error)
	CodeInUse(ctx context.Context, code string) (bool, error)
	ListJoinable(ctx context.Context, p *Pagination) ([]*models.Room, error)
	ListIDs(ctx context.Context) ([]uint, error)
	// CompareAndSetPhase 仅当阶段仍在from之中时写入updates，返回是否写入成功
	CompareAndSetPhase(ctx context.Context, id uint, from []models.Phase, updates map[string]interface{}) (bool, error)
	Delete(ctx context.Context, id uint) (int64, error)
}

// roomRepo 房间仓储实现
type roomRepo struct {
	*BaseRepo
}

// NewRoomRepository 创建房间仓储
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepo{BaseRepo: NewBaseRepo(db)}
}

// WithTx 使用事务
func (r *roomRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &roomRepo{BaseRepo: &BaseRepo{db: tx}}
}

// Create 创建房间
func (r *roomRepo) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// FindByID 根据ID查找
func (r *roomRepo) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// FindOpenByCode 根据房间码查找未结束的房间
func (r *roomRepo) FindOpenByCode(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Where("code = ? AND phase <> ?", code, models.PhaseFinished).
		Order("id desc").
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// CodeInUse 房间码是否被未结束的房间占用
func (r *roomRepo) CodeInUse(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("code = ? AND phase <> ?", code, models.PhaseFinished).
		Count(&count).Error
	return count > 0, err
}

// ListJoinable 列出等待中的房间（分页）
func (r *roomRepo) ListJoinable(ctx context.Context, p *Pagination) ([]*models.Room, error) {
	var rooms []*models.Room

	query := r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("phase = ?", models.PhaseWaiting)
	if err := query.Count(&p.Total).Error; err != nil {
		return nil, err
	}

	err := r.db.WithContext(ctx).
		Where("phase = ?", models.PhaseWaiting).
		Order("created_at desc").
		Scopes(Paginate(p)).
		Find(&rooms).Error
	return rooms, err
}

// ListIDs 列出全部房间ID，供清理任务遍历
func (r *roomRepo) ListIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Room{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// CompareAndSetPhase 条件更新房间
func (r *roomRepo) CompareAndSetPhase(ctx context.Context, id uint, from []models.Phase, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("id = ? AND phase IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete 删除房间
func (r *roomRepo) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Room{}, id)
	return result.RowsAffected, result.Error
}
