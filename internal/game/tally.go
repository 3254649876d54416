package game

import (
	"math/rand"
	"sort"

	"github.com/wfunc/bunker-game/internal/models"
)

// Rand 随机数来源，平票抽签和发牌使用
type Rand interface {
	Intn(n int) int
}

// defaultRand 使用全局随机源，可并发调用
type defaultRand struct{}

func (defaultRand) Intn(n int) int { return rand.Intn(n) }

// DefaultRand 默认随机源
var DefaultRand Rand = defaultRand{}

// TallyResult 计票结果
type TallyResult struct {
	Counts          map[uint]int `json:"counts"`                      // 目标玩家ID -> 加权票数
	MaxVotes        int          `json:"max_votes"`                   // 最高票数
	Eliminated      *uint        `json:"eliminated,omitempty"`        // 被淘汰的玩家，nil表示无人淘汰
	EliminatedVotes int          `json:"eliminated_votes,omitempty"`  // 被淘汰者所在票档
	SavedByImmunity []uint       `json:"saved_by_immunity,omitempty"` // 最高票档中因免疫逃过淘汰的玩家
	Candidates      []uint       `json:"candidates,omitempty"`        // 参与抽签的候选人
}

// HasElimination 是否有人被淘汰
func (r *TallyResult) HasElimination() bool {
	return r.Eliminated != nil
}

// Resolve 根据本回合投票决定淘汰对象。
// 只统计投给房间内未淘汰玩家的票；最高票档全部免疫时逐档向下寻找非免疫候选人，
// 同档多名候选人时均匀随机抽取一人；没有有效票或所有票档都免疫时无人淘汰。
func Resolve(votes []*models.Vote, players []*models.Player, round int, rng Rand) *TallyResult {
	if rng == nil {
		rng = DefaultRand
	}

	eligible := make(map[uint]*models.Player, len(players))
	for _, p := range players {
		if !p.IsEliminated {
			eligible[p.ID] = p
		}
	}

	result := &TallyResult{Counts: make(map[uint]int)}
	for _, v := range votes {
		if v.Round != round {
			continue
		}
		if _, ok := eligible[v.TargetID]; !ok {
			continue
		}
		weight := v.Weight
		if weight < 1 {
			weight = 1
		}
		result.Counts[v.TargetID] += weight
	}
	if len(result.Counts) == 0 {
		return result
	}

	tiers := groupTiers(result.Counts)
	result.MaxVotes = tiers[0].votes

	for i, tier := range tiers {
		var candidates []uint
		for _, id := range tier.players {
			if eligible[id].Metadata.IsImmune(round) {
				if i == 0 {
					result.SavedByImmunity = append(result.SavedByImmunity, id)
				}
				continue
			}
			candidates = append(candidates, id)
		}
		if len(candidates) == 0 {
			continue
		}

		chosen := candidates[rng.Intn(len(candidates))]
		result.Eliminated = &chosen
		result.EliminatedVotes = tier.votes
		result.Candidates = candidates
		break
	}
	return result
}

type voteTier struct {
	votes   int
	players []uint
}

// groupTiers 按票数从高到低分档，档内按玩家ID排序保证抽签输入稳定
func groupTiers(counts map[uint]int) []voteTier {
	byVotes := make(map[int][]uint)
	for id, n := range counts {
		byVotes[n] = append(byVotes[n], id)
	}

	tiers := make([]voteTier, 0, len(byVotes))
	for n, ids := range byVotes {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		tiers = append(tiers, voteTier{votes: n, players: ids})
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].votes > tiers[j].votes })
	return tiers
}
