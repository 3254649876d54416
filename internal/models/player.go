package models

import (
	"database/sql/driver"
	"time"
)

// VoteRestriction 禁止投票给某玩家的效果
type VoteRestriction struct {
	TargetID uint     `json:"target_id"`
	CardType CardType `json:"card_type"`
}

// VoteWeightBonus 某回合的额外票数
type VoteWeightBonus struct {
	Round int `json:"round"`
	Extra int `json:"extra"`
}

// PlayerMetadata 玩家身上的临时卡牌效果
type PlayerMetadata struct {
	ImmuneThroughRound *int              `json:"immune_through_round,omitempty"`
	CannotVoteAgainst  []VoteRestriction `json:"cannot_vote_against,omitempty"`
	VoteBonuses        []VoteWeightBonus `json:"vote_bonuses,omitempty"`
}

// IsImmune 在指定回合是否免疫淘汰
func (m PlayerMetadata) IsImmune(round int) bool {
	return m.ImmuneThroughRound != nil && round <= *m.ImmuneThroughRound
}

// IsRestrictedFrom 是否被禁止投票给目标
func (m PlayerMetadata) IsRestrictedFrom(targetID uint) bool {
	for _, r := range m.CannotVoteAgainst {
		if r.TargetID == targetID {
			return true
		}
	}
	return false
}

// VoteWeight 指定回合的投票权重，至少为1
func (m PlayerMetadata) VoteWeight(round int) int {
	weight := 1
	for _, b := range m.VoteBonuses {
		if b.Round == round && b.Extra > 0 {
			weight += b.Extra
		}
	}
	return weight
}

// PurgeRoundScoped 清除回合内有效的限制，返回是否有变化
func (m *PlayerMetadata) PurgeRoundScoped() bool {
	if len(m.CannotVoteAgainst) == 0 {
		return false
	}
	kept := m.CannotVoteAgainst[:0]
	for _, r := range m.CannotVoteAgainst {
		if !r.CardType.IsRoundScoped() {
			kept = append(kept, r)
		}
	}
	changed := len(kept) != len(m.CannotVoteAgainst)
	if len(kept) == 0 {
		kept = nil
	}
	m.CannotVoteAgainst = kept
	return changed
}

// Value 实现 driver.Valuer 接口
func (m PlayerMetadata) Value() (driver.Value, error) {
	return jsonValue(m)
}

// Scan 实现 sql.Scanner 接口
func (m *PlayerMetadata) Scan(value interface{}) error {
	return jsonScan(value, m)
}

// Player 玩家表
type Player struct {
	BaseModel
	RoomID       uint           `gorm:"not null;uniqueIndex:idx_player_room_user" json:"room_id"`
	UserID       string         `gorm:"size:64;not null;uniqueIndex:idx_player_room_user" json:"user_id"`
	Name         string         `gorm:"size:50;not null" json:"name"`
	IsEliminated bool           `gorm:"default:false" json:"is_eliminated"`
	IsHost       bool           `gorm:"default:false" json:"is_host"`
	IsReady      bool           `gorm:"default:false" json:"is_ready"`
	LastSeenAt   *time.Time     `gorm:"index" json:"last_seen_at"`
	JoinedAt     time.Time      `gorm:"not null" json:"joined_at"`
	EliminatedIn *int           `json:"eliminated_in,omitempty"` // 被淘汰的回合
	Metadata     PlayerMetadata `gorm:"type:text" json:"-"`
	MetaVersion  int            `gorm:"not null;default:0" json:"-"` // 卡牌效果的写入版本，条件更新用
}

// IsHostOf 是否为房间房主
func (p *Player) IsHostOf(room *Room) bool {
	return p.IsHost || room.IsHostUser(p.UserID)
}
