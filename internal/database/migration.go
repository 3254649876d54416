package database

import (
	"fmt"

	"github.com/wfunc/bunker-game/internal/logger"
	"github.com/wfunc/bunker-game/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	CleanupStaleLocks()

	// 获取迁移锁，避免多个进程同时迁移同一个SQLite文件
	if dbPath := getDBPath(); dbPath != "" {
		lockFile, err := acquireMigrationLock(dbPath)
		if err != nil {
			logger.Error("无法获取迁移锁", zap.Error(err))
			return fmt.Errorf("获取迁移锁失败: %w", err)
		}
		defer releaseMigrationLock(lockFile)
	}

	logger.Info("开始数据库迁移...")
	if err := Migrate(DB); err != nil {
		return err
	}
	logger.Info("数据库迁移完成")
	return nil
}

// Migrate 在指定连接上迁移全部模型并创建索引
func Migrate(db *gorm.DB) error {
	for _, model := range models.All() {
		if err := db.AutoMigrate(model); err != nil {
			logger.Error("迁移失败",
				zap.String("model", fmt.Sprintf("%T", model)),
				zap.Error(err),
			)
			return err
		}
	}
	createIndexes(db)
	return nil
}

// createIndexes 创建查询热点索引，失败只记录警告
func createIndexes(db *gorm.DB) {
	indexes := map[string]string{
		"idx_rooms_code_phase":           "CREATE INDEX IF NOT EXISTS idx_rooms_code_phase ON rooms(code, phase)",
		"idx_players_room_eliminated":    "CREATE INDEX IF NOT EXISTS idx_players_room_eliminated ON players(room_id, is_eliminated)",
		"idx_characteristics_player_cat": "CREATE INDEX IF NOT EXISTS idx_characteristics_player_cat ON characteristics(player_id, category)",
		"idx_chat_messages_room_created": "CREATE INDEX IF NOT EXISTS idx_chat_messages_room_created ON chat_messages(room_id, created_at)",
	}

	for name, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			logger.Warn("创建索引失败", zap.String("index", name), zap.Error(err))
		}
	}
}
