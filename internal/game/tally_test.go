package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/bunker-game/internal/models"
)

func players(ids ...uint) []*models.Player {
	out := make([]*models.Player, 0, len(ids))
	for _, id := range ids {
		p := &models.Player{Name: "p"}
		p.ID = id
		out = append(out, p)
	}
	return out
}

func vote(voter, target uint) *models.Vote {
	return &models.Vote{Round: 1, VoterID: voter, TargetID: target, Weight: 1}
}

func TestResolveMajority(t *testing.T) {
	ps := players(1, 2, 3)
	res := Resolve([]*models.Vote{vote(2, 1), vote(3, 1), vote(1, 2)}, ps, 1, fixedRand{})

	require.True(t, res.HasElimination())
	assert.Equal(t, uint(1), *res.Eliminated)
	assert.Equal(t, 2, res.MaxVotes)
	assert.Equal(t, map[uint]int{1: 2, 2: 1}, res.Counts)
	assert.Empty(t, res.SavedByImmunity)
}

func TestResolveZeroVotes(t *testing.T) {
	res := Resolve(nil, players(1, 2, 3), 1, fixedRand{})
	assert.False(t, res.HasElimination())
	assert.Zero(t, res.MaxVotes)
}

func TestResolveIgnoresStaleAndEliminatedTargets(t *testing.T) {
	ps := players(1, 2, 3)
	ps[2].IsEliminated = true

	stale := vote(1, 2)
	stale.Round = 0
	res := Resolve([]*models.Vote{vote(1, 3), vote(2, 3), stale, vote(3, 99)}, ps, 1, fixedRand{})

	assert.False(t, res.HasElimination(), "只有投给已淘汰或不存在玩家的票")
	assert.Empty(t, res.Counts)
}

func TestResolveWeightedVotes(t *testing.T) {
	double := vote(3, 2)
	double.Weight = 2
	zero := vote(4, 1)
	zero.Weight = 0

	res := Resolve([]*models.Vote{vote(2, 1), double, zero}, players(1, 2, 3, 4), 1, fixedRand{})
	assert.Equal(t, 2, res.Counts[1], "权重不足1按1计")
	assert.Equal(t, 2, res.Counts[2])
	assert.Len(t, res.Candidates, 2)
}

func TestResolveImmunityTieSavesImmune(t *testing.T) {
	// X 免疫到第2回合，与 Y 同为最高票
	ps := players(10, 20, 30, 40)
	ps[0].Metadata.ImmuneThroughRound = intPtr(2)

	votes := []*models.Vote{
		{Round: 2, VoterID: 30, TargetID: 10, Weight: 1},
		{Round: 2, VoterID: 40, TargetID: 20, Weight: 1},
	}
	res := Resolve(votes, ps, 2, fixedRand{})

	require.True(t, res.HasElimination())
	assert.Equal(t, uint(20), *res.Eliminated)
	assert.Equal(t, []uint{10}, res.SavedByImmunity)
}

func TestResolveImmunityExpires(t *testing.T) {
	ps := players(10, 20)
	ps[0].Metadata.ImmuneThroughRound = intPtr(1)

	res := Resolve([]*models.Vote{{Round: 2, VoterID: 20, TargetID: 10, Weight: 1}}, ps, 2, fixedRand{})
	require.True(t, res.HasElimination())
	assert.Equal(t, uint(10), *res.Eliminated)
}

func TestResolveDescendsPastImmuneTiers(t *testing.T) {
	// 票档 3(免疫) / 2(免疫) / 1(非免疫)
	ps := players(1, 2, 3, 4, 5, 6, 7)
	ps[0].Metadata.ImmuneThroughRound = intPtr(1)
	ps[1].Metadata.ImmuneThroughRound = intPtr(1)

	votes := []*models.Vote{
		vote(4, 1), vote(5, 1), vote(6, 1),
		vote(3, 2), vote(7, 2),
		vote(1, 3),
	}
	res := Resolve(votes, ps, 1, fixedRand{})

	require.True(t, res.HasElimination())
	assert.Equal(t, uint(3), *res.Eliminated)
	assert.Equal(t, 1, res.EliminatedVotes)
	assert.Equal(t, 3, res.MaxVotes)
	assert.Equal(t, []uint{1}, res.SavedByImmunity)
}

func TestResolveAllImmune(t *testing.T) {
	ps := players(1, 2, 3)
	for _, p := range ps {
		p.Metadata.ImmuneThroughRound = intPtr(5)
	}
	res := Resolve([]*models.Vote{vote(1, 2), vote(2, 3), vote(3, 2)}, ps, 1, fixedRand{})

	assert.False(t, res.HasElimination())
	assert.Equal(t, []uint{2}, res.SavedByImmunity)
}

func TestResolveTieBreakIsUniform(t *testing.T) {
	ps := players(1, 2, 3, 4, 5, 6)
	votes := []*models.Vote{vote(4, 1), vote(5, 2), vote(6, 3)}
	rng := rand.New(rand.NewSource(42))

	const trials = 30000
	hits := make(map[uint]int)
	for i := 0; i < trials; i++ {
		res := Resolve(votes, ps, 1, rng)
		require.True(t, res.HasElimination())
		hits[*res.Eliminated]++
	}

	require.Len(t, hits, 3)
	for id, n := range hits {
		freq := float64(n) / trials
		assert.InDelta(t, 1.0/3, freq, 0.02, "玩家 %d 被抽中的频率", id)
	}
}

func TestResolveExactlyOneOutcome(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		n := 2 + rng.Intn(6)
		ids := make([]uint, n)
		for j := range ids {
			ids[j] = uint(j + 1)
		}
		ps := players(ids...)
		for _, p := range ps {
			if rng.Intn(3) == 0 {
				p.Metadata.ImmuneThroughRound = intPtr(1)
			}
		}
		var votes []*models.Vote
		for _, voter := range ids {
			if rng.Intn(4) == 0 {
				continue
			}
			votes = append(votes, vote(voter, ids[rng.Intn(n)]))
		}

		res := Resolve(votes, ps, 1, rng)
		if !res.HasElimination() {
			continue
		}
		elim := *res.Eliminated
		assert.False(t, ps[elim-1].Metadata.IsImmune(1), "淘汰的玩家不能免疫")
		// 淘汰者所在票档之上只能是全部免疫的票档
		for id, c := range res.Counts {
			if c > res.Counts[elim] {
				assert.True(t, ps[id-1].Metadata.IsImmune(1))
			}
		}
	}
}
