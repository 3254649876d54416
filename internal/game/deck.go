package game

import (
	"github.com/wfunc/bunker-game/internal/models"
)

// deckPools 各类别的特征牌库
var deckPools = map[models.Category][]string{
	models.CategoryProfession: {
		"外科医生", "电工", "农学家", "中学教师", "程序员", "厨师", "消防员", "心理咨询师",
		"机械师", "药剂师", "建筑师", "军人", "护士", "木匠", "化学家", "律师",
	},
	models.CategoryHealth: {
		"完全健康", "轻度哮喘", "糖尿病", "视力极差", "慢性背痛", "过敏体质",
		"心脏早搏", "失眠", "听力受损", "体能极佳", "偏头痛", "骨折未愈",
	},
	models.CategoryBiology: {
		"男 25岁", "女 31岁", "男 46岁", "女 19岁", "男 63岁", "女 52岁",
		"男 34岁 不育", "女 28岁 怀孕", "男 71岁", "女 40岁",
	},
	models.CategoryHobby: {
		"园艺", "射击", "钓鱼", "下棋", "登山", "无线电", "缝纫", "烘焙",
		"徒步", "绘画", "吉他", "急救培训",
	},
	models.CategoryPhobia: {
		"幽闭恐惧", "恐高", "怕黑", "怕血", "怕狗", "社交恐惧",
		"怕水", "怕虫", "无恐惧", "怕火",
	},
	models.CategoryBaggage: {
		"急救包", "猎枪", "种子一袋", "收音机", "净水片", "工具箱",
		"罐头二十个", "帐篷", "发电机", "医学手册", "一箱书", "打火机",
	},
	models.CategoryFact: {
		"曾经坐过牢", "会说五种语言", "知道另一个避难所的位置", "是前奥运选手",
		"曾经独自在荒野生存一个月", "有严重赌瘾", "会驾驶飞机", "隐瞒了传染病史",
		"是一名牧师", "懂得修理柴油机",
	},
}

// Dealer 发牌器
type Dealer struct {
	rng Rand
}

// NewDealer 创建发牌器
func NewDealer(rng Rand) *Dealer {
	if rng == nil {
		rng = DefaultRand
	}
	return &Dealer{rng: rng}
}

// DealCharacteristics 为每位玩家每个类别发一张特征，同类别内尽量不重复
func (d *Dealer) DealCharacteristics(roomID uint, players []*models.Player) []*models.Characteristic {
	items := make([]*models.Characteristic, 0, len(players)*len(models.AllCategories))
	for _, cat := range models.AllCategories {
		pool := d.shuffled(deckPools[cat])
		for i, p := range players {
			items = append(items, &models.Characteristic{
				PlayerID: p.ID,
				RoomID:   roomID,
				Category: cat,
				Value:    pool[i%len(pool)],
			})
		}
	}
	return items
}

// DealCards 每位玩家随机发一张特殊卡
func (d *Dealer) DealCards(roomID uint, players []*models.Player) []*models.SpecialCard {
	cards := make([]*models.SpecialCard, 0, len(players))
	for _, p := range players {
		cards = append(cards, &models.SpecialCard{
			PlayerID: p.ID,
			RoomID:   roomID,
			CardType: models.AllCardTypes[d.rng.Intn(len(models.AllCardTypes))],
		})
	}
	return cards
}

// Reroll 抽取一个与当前值不同的新特征值
func (d *Dealer) Reroll(cat models.Category, current string) string {
	pool := deckPools[cat]
	if len(pool) == 0 {
		return current
	}
	others := make([]string, 0, len(pool))
	for _, v := range pool {
		if v != current {
			others = append(others, v)
		}
	}
	if len(others) == 0 {
		return current
	}
	return others[d.rng.Intn(len(others))]
}

func (d *Dealer) shuffled(src []string) []string {
	out := append([]string(nil), src...)
	for i := len(out) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
