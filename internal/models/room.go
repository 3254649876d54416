package models

import (
	"database/sql/driver"
	"time"
)

// Phase 房间阶段
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePlaying  Phase = "playing"
	PhaseVoting   Phase = "voting"
	PhaseResults  Phase = "results"
	PhaseFinished Phase = "finished"
)

// IsTerminal 是否为终止阶段
func (p Phase) IsTerminal() bool {
	return p == PhaseFinished
}

// RoundMode 回合推进模式
type RoundMode string

const (
	RoundModeAutomatic RoundMode = "automatic" // 按时长计时，客户端依据锚点倒计时
	RoundModeManual    RoundMode = "manual"    // 房主手动推进，无计时
)

// RoomSettings 房间设置
type RoomSettings struct {
	RoundMode         RoundMode `json:"round_mode"`
	DiscussionSeconds int       `json:"discussion_seconds"`
	VotingSeconds     int       `json:"voting_seconds"`
	BannedUserIDs     []string  `json:"banned_user_ids,omitempty"`
	IntroEnabled      bool      `json:"intro_enabled"`
	IntroSkipped      bool      `json:"intro_skipped"`
	ChatEnabled       bool      `json:"chat_enabled"`
	CardsEnabled      bool      `json:"cards_enabled"`
}

// IsManual 是否为手动模式
func (s RoomSettings) IsManual() bool {
	return s.RoundMode == RoundModeManual
}

// IsBanned 用户是否被封禁
func (s RoomSettings) IsBanned(userID string) bool {
	for _, id := range s.BannedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Value 实现 driver.Valuer 接口
func (s RoomSettings) Value() (driver.Value, error) {
	return jsonValue(s)
}

// Scan 实现 sql.Scanner 接口
func (s *RoomSettings) Scan(value interface{}) error {
	return jsonScan(value, s)
}

// Room 房间表
type Room struct {
	BaseModel
	Code           string       `gorm:"size:16;not null;index" json:"code"`
	Name           string       `gorm:"size:100" json:"name"`
	HostID         string       `gorm:"size:64;not null;index" json:"host_id"` // 房主用户ID
	Phase          Phase        `gorm:"size:20;not null;default:'waiting';index" json:"phase"`
	CurrentRound   int          `gorm:"not null;default:1" json:"current_round"`
	RoundStartedAt *time.Time   `json:"round_started_at"` // 计时锚点，nil表示无计时
	MaxPlayers     int          `gorm:"not null;default:12" json:"max_players"`
	Settings       RoomSettings `gorm:"type:text" json:"settings"`
	FinishedAt     *time.Time   `json:"finished_at,omitempty"`
}

// IsHostUser 用户是否为房主
func (r *Room) IsHostUser(userID string) bool {
	return userID != "" && r.HostID == userID
}
