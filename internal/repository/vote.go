package repository

import (
	"context"
	"time"

	"github.com/wfunc/bunker-game/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteRepository 投票仓储接口
type VoteRepository interface {
	BaseRepository
	// Upsert 同一回合重复投票覆盖旧票
	Upsert(ctx context.Context, vote *models.Vote) error
	ListByRound(ctx context.Context, roomID uint, round int) ([]*models.Vote, error)
	CountByRound(ctx context.Context, roomID uint, round int) (int64, error)
	UpdateWeight(ctx context.Context, roomID uint, round int, voterID uint, weight int) (int64, error)
	// DeleteAgainst 删除投票人本回合投给目标的票
	DeleteAgainst(ctx context.Context, roomID uint, round int, voterID, targetID uint) (int64, error)
}

// voteRepo 投票仓储实现
type voteRepo struct {
	*BaseRepo
}

// NewVoteRepository 创建投票仓储
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepo{BaseRepo: NewBaseRepo(db)}
}

// WithTx 使用事务
func (r *voteRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &voteRepo{BaseRepo: &BaseRepo{db: tx}}
}

// Upsert 写入或覆盖投票
func (r *voteRepo) Upsert(ctx context.Context, vote *models.Vote) error {
	if vote.Weight < 1 {
		vote.Weight = 1
	}
	vote.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}, {Name: "round"}, {Name: "voter_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"target_id", "weight", "updated_at"}),
		}).
		Create(vote).Error
}

// ListByRound 列出某回合的投票
func (r *voteRepo) ListByRound(ctx context.Context, roomID uint, round int) ([]*models.Vote, error) {
	var votes []*models.Vote
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND round = ?", roomID, round).
		Order("id asc").
		Find(&votes).Error
	return votes, err
}

// CountByRound 统计某回合已投票人数
func (r *voteRepo) CountByRound(ctx context.Context, roomID uint, round int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("room_id = ? AND round = ?", roomID, round).
		Count(&count).Error
	return count, err
}

// UpdateWeight 更新投票人本回合的票数权重
func (r *voteRepo) UpdateWeight(ctx context.Context, roomID uint, round int, voterID uint, weight int) (int64, error) {
	if weight < 1 {
		weight = 1
	}
	result := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("room_id = ? AND round = ? AND voter_id = ?", roomID, round, voterID).
		Updates(map[string]interface{}{
			"weight":     weight,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// DeleteAgainst 删除投票人本回合投给目标的票
func (r *voteRepo) DeleteAgainst(ctx context.Context, roomID uint, round int, voterID, targetID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("room_id = ? AND round = ? AND voter_id = ? AND target_id = ?", roomID, round, voterID, targetID).
		Delete(&models.Vote{})
	return result.RowsAffected, result.Error
}
