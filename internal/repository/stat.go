package repository

import (
	"context"
	"time"

	"github.com/wfunc/bunker-game/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatRepository 战绩仓储接口
type StatRepository interface {
	BaseRepository
	RecordGame(ctx context.Context, userID string, survived bool, at time.Time) error
	FindByUser(ctx context.Context, userID string) (*models.PlayerStat, error)
}

// statRepo 战绩仓储实现
type statRepo struct {
	*BaseRepo
}

// NewStatRepository 创建战绩仓储
func NewStatRepository(db *gorm.DB) StatRepository {
	return &statRepo{BaseRepo: NewBaseRepo(db)}
}

// WithTx 使用事务
func (r *statRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &statRepo{BaseRepo: &BaseRepo{db: tx}}
}

// RecordGame 累加一局战绩
func (r *statRepo) RecordGame(ctx context.Context, userID string, survived bool, at time.Time) error {
	survivedInc, eliminatedInc := 0, 1
	if survived {
		survivedInc, eliminatedInc = 1, 0
	}

	stat := &models.PlayerStat{
		UserID:          userID,
		GamesPlayed:     1,
		GamesSurvived:   survivedInc,
		TimesEliminated: eliminatedInc,
		LastPlayedAt:    &at,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"games_played":     gorm.Expr("games_played + 1"),
				"games_survived":   gorm.Expr("games_survived + ?", survivedInc),
				"times_eliminated": gorm.Expr("times_eliminated + ?", eliminatedInc),
				"last_played_at":   at,
				"updated_at":       at,
			}),
		}).
		Create(stat).Error
}

// FindByUser 查询用户战绩
func (r *statRepo) FindByUser(ctx context.Context, userID string) (*models.PlayerStat, error) {
	var stat models.PlayerStat
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&stat).Error; err != nil {
		return nil, err
	}
	return &stat, nil
}
