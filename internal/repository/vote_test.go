package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/bunker-game/internal/models"
)

// 测试重复投票覆盖
func TestVoteRepository_UpsertOverwrites(t *testing.T) {
	db := SetupTestDB(t)
	fx := SeedRoom(t, db, models.PhaseVoting, "host", "a", "b")
	repo := NewVoteRepository(db)
	ctx := context.Background()

	voter := fx.Player("host").ID
	require.NoError(t, repo.Upsert(ctx, &models.Vote{RoomID: fx.Room.ID, Round: 1, VoterID: voter, TargetID: fx.Player("a").ID}))
	require.NoError(t, repo.Upsert(ctx, &models.Vote{RoomID: fx.Room.ID, Round: 1, VoterID: voter, TargetID: fx.Player("b").ID, Weight: 2}))

	votes, err := repo.ListByRound(ctx, fx.Room.ID, 1)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, fx.Player("b").ID, votes[0].TargetID)
	assert.Equal(t, 2, votes[0].Weight)

	// 不同回合互不影响
	require.NoError(t, repo.Upsert(ctx, &models.Vote{RoomID: fx.Room.ID, Round: 2, VoterID: voter, TargetID: fx.Player("a").ID}))
	count, err := repo.CountByRound(ctx, fx.Room.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// 测试权重下限
func TestVoteRepository_WeightFloor(t *testing.T) {
	db := SetupTestDB(t)
	fx := SeedRoom(t, db, models.PhaseVoting, "host", "a")
	repo := NewVoteRepository(db)

	vote := &models.Vote{RoomID: fx.Room.ID, Round: 1, VoterID: fx.Players[0].ID, TargetID: fx.Players[1].ID, Weight: 0}
	require.NoError(t, repo.Upsert(context.Background(), vote))
	assert.Equal(t, 1, vote.Weight)
}
