package models

// Category 角色特征类别
type Category string

const (
	CategoryProfession Category = "profession"
	CategoryHealth     Category = "health"
	CategoryBiology    Category = "biology"
	CategoryHobby      Category = "hobby"
	CategoryPhobia     Category = "phobia"
	CategoryBaggage    Category = "baggage"
	CategoryFact       Category = "fact"
)

// AllCategories 发牌时的类别顺序
var AllCategories = []Category{
	CategoryProfession,
	CategoryHealth,
	CategoryBiology,
	CategoryHobby,
	CategoryPhobia,
	CategoryBaggage,
	CategoryFact,
}

// Characteristic 玩家特征表
type Characteristic struct {
	BaseModel
	PlayerID    uint     `gorm:"not null;index" json:"player_id"`
	RoomID      uint     `gorm:"not null;index" json:"room_id"`
	Category    Category `gorm:"size:32;not null" json:"category"`
	Value       string   `gorm:"size:255;not null" json:"value"`
	IsRevealed  bool     `gorm:"default:false" json:"is_revealed"`
	RevealRound *int     `json:"reveal_round"`
}
