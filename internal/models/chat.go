package models

// ChatMessage 房间聊天记录
type ChatMessage struct {
	BaseModel
	RoomID   uint   `gorm:"not null;index" json:"room_id"`
	PlayerID uint   `gorm:"not null;index" json:"player_id"`
	Text     string `gorm:"size:500;not null" json:"text"`
}
