package models

// Vote 投票表，同一回合每个投票者只保留一票
type Vote struct {
	BaseModel
	RoomID   uint `gorm:"not null;uniqueIndex:idx_vote_room_round_voter;index:idx_vote_room_round" json:"room_id"`
	Round    int  `gorm:"not null;uniqueIndex:idx_vote_room_round_voter;index:idx_vote_room_round" json:"round"`
	VoterID  uint `gorm:"not null;uniqueIndex:idx_vote_room_round_voter" json:"voter_id"`
	TargetID uint `gorm:"not null;index" json:"target_id"`
	Weight   int  `gorm:"not null;default:1" json:"weight"`
}
