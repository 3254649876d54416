package models

import "time"

// PlayerStat 用户累计战绩
type PlayerStat struct {
	BaseModel
	UserID          string     `gorm:"size:64;not null;uniqueIndex" json:"user_id"`
	GamesPlayed     int        `gorm:"default:0" json:"games_played"`
	GamesSurvived   int        `gorm:"default:0" json:"games_survived"`
	TimesEliminated int        `gorm:"default:0" json:"times_eliminated"`
	LastPlayedAt    *time.Time `json:"last_played_at"`
}

// All 全部需要迁移的模型
func All() []interface{} {
	return []interface{}{
		&Room{},
		&Player{},
		&Vote{},
		&Characteristic{},
		&SpecialCard{},
		&ChatMessage{},
		&PlayerStat{},
	}
}
