package models

// CardType 特殊卡牌类型
type CardType string

const (
	CardImmunity   CardType = "immunity"    // 本回合免疫淘汰
	CardVoteBlock  CardType = "vote_block"  // 指定玩家本轮不能投票给持卡人
	CardDoubleVote CardType = "double_vote" // 本回合多一票
	CardExchange   CardType = "exchange"    // 与他人交换同类特征
	CardReroll     CardType = "reroll"      // 重抽一项特征
	CardReveal     CardType = "reveal"      // 强制公开他人一项特征
	CardPeek       CardType = "peek"        // 私下查看他人一项特征
)

// AllCardTypes 可发放的卡牌类型
var AllCardTypes = []CardType{
	CardImmunity,
	CardVoteBlock,
	CardDoubleVote,
	CardExchange,
	CardReroll,
	CardReveal,
	CardPeek,
}

// IsRoundScoped 效果是否只在一次投票阶段内有效
func (c CardType) IsRoundScoped() bool {
	return c == CardVoteBlock
}

// Valid 是否为已知卡牌类型
func (c CardType) Valid() bool {
	for _, t := range AllCardTypes {
		if t == c {
			return true
		}
	}
	return false
}

// SpecialCard 特殊能力卡
type SpecialCard struct {
	BaseModel
	PlayerID  uint     `gorm:"not null;index" json:"player_id"`
	RoomID    uint     `gorm:"not null;index" json:"room_id"`
	CardType  CardType `gorm:"size:32;not null" json:"card_type"`
	IsUsed    bool     `gorm:"default:false" json:"is_used"`
	UsedRound *int     `json:"used_round,omitempty"`
}
