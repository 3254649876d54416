package repository

import (
	"context"

	"github.com/wfunc/bunker-game/internal/models"
	"gorm.io/gorm"
)

// ChatRepository 聊天记录仓储接口
type ChatRepository interface {
	BaseRepository
	Create(ctx context.Context, msg *models.ChatMessage) error
	ListRecent(ctx context.Context, roomID uint, limit int) ([]*models.ChatMessage, error)
}

// chatRepo 聊天记录仓储实现
type chatRepo struct {
	*BaseRepo
}

// NewChatRepository 创建聊天记录仓储
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepo{BaseRepo: NewBaseRepo(db)}
}

// WithTx 使用事务
func (r *chatRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &chatRepo{BaseRepo: &BaseRepo{db: tx}}
}

// Create 写入聊天消息
func (r *chatRepo) Create(ctx context.Context, msg *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListRecent 最近的聊天消息，按时间正序返回
func (r *chatRepo) ListRecent(ctx context.Context, roomID uint, limit int) ([]*models.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	var msgs []*models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("id desc").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
