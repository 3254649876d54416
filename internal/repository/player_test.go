package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/bunker-game/internal/models"
)

func TestPlayerRepository_MarkEliminatedOnce(t *testing.T) {
	db := SetupTestDB(t)
	fx := SeedRoom(t, db, models.PhaseVoting, "host", "a", "b")
	repo := NewPlayerRepository(db)
	ctx := context.Background()

	ok, err := repo.MarkEliminated(ctx, fx.Player("a").ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkEliminated(ctx, fx.Player("a").ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	p, err := repo.FindByID(ctx, fx.Player("a").ID)
	require.NoError(t, err)
	require.NotNil(t, p.EliminatedIn)
	assert.Equal(t, 1, *p.EliminatedIn)

	remaining, err := repo.CountRemaining(ctx, fx.Room.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), remaining)
}

func TestPlayerRepository_TouchAndMetadata(t *testing.T) {
	db := SetupTestDB(t)
	fx := SeedRoom(t, db, models.PhasePlaying, "host", "a")
	repo := NewPlayerRepository(db)
	ctx := context.Background()

	at := time.Now().Add(time.Minute).Truncate(time.Second)
	ok, err := repo.Touch(ctx, fx.Player("a").ID, at)
	require.NoError(t, err)
	assert.True(t, ok)

	round := 3
	_, err = repo.UpdateMetadata(ctx, fx.Player("a").ID, func(meta *models.PlayerMetadata) bool {
		meta.ImmuneThroughRound = &round
		return true
	})
	require.NoError(t, err)

	p, err := repo.FindByRoomAndUser(ctx, fx.Room.ID, "user-a")
	require.NoError(t, err)
	assert.True(t, p.LastSeenAt.Equal(at))
	assert.True(t, p.Metadata.IsImmune(3))

	ok, err = repo.Touch(ctx, 9999, at)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCardRepository_MarkUsedOnce(t *testing.T) {
	db := SetupTestDB(t)
	fx := SeedRoom(t, db, models.PhasePlaying, "host")
	repo := NewCardRepository(db)
	ctx := context.Background()

	card := &models.SpecialCard{PlayerID: fx.Players[0].ID, RoomID: fx.Room.ID, CardType: models.CardPeek}
	require.NoError(t, repo.CreateBatch(ctx, []*models.SpecialCard{card}))

	ok, err := repo.MarkUsed(ctx, card.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkUsed(ctx, card.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCharacteristicRepository_RevealMonotonic(t *testing.T) {
	db := SetupTestDB(t)
	fx := SeedRoom(t, db, models.PhasePlaying, "host")
	repo := NewCharacteristicRepository(db)
	ctx := context.Background()

	items := []*models.Characteristic{
		{PlayerID: fx.Players[0].ID, RoomID: fx.Room.ID, Category: models.CategoryProfession, Value: "厨师"},
		{PlayerID: fx.Players[0].ID, RoomID: fx.Room.ID, Category: models.CategoryHobby, Value: "钓鱼"},
	}
	require.NoError(t, repo.CreateBatch(ctx, items))

	ok, err := repo.Reveal(ctx, items[0].ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	// 全部公开时不改动已公开项的回合
	n, err := repo.RevealAllForPlayer(ctx, fx.Players[0].ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	list, err := repo.ListByPlayer(ctx, fx.Players[0].ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, *list[0].RevealRound)
	assert.Equal(t, 3, *list[1].RevealRound)
}

func TestStatRepository_RecordGame(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewStatRepository(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.RecordGame(ctx, "u1", true, now))
	require.NoError(t, repo.RecordGame(ctx, "u1", false, now))

	stat, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, stat.GamesPlayed)
	assert.Equal(t, 1, stat.GamesSurvived)
	assert.Equal(t, 1, stat.TimesEliminated)
}

func TestPlayerRepository_MetadataVersion(t *testing.T) {
	db := SetupTestDB(t)
	fx := SeedRoom(t, db, models.PhasePlaying, "host", "a", "b")
	repo := NewPlayerRepository(db)
	ctx := context.Background()
	a := fx.Player("a")

	stale, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)

	// 其他请求先写入一条投票限制
	_, err = repo.UpdateMetadata(ctx, a.ID, func(meta *models.PlayerMetadata) bool {
		meta.CannotVoteAgainst = append(meta.CannotVoteAgainst, models.VoteRestriction{
			TargetID: fx.Player("b").ID,
			CardType: models.CardVoteBlock,
		})
		return true
	})
	require.NoError(t, err)

	// 按旧版本写回会被拒绝
	round := 2
	meta := stale.Metadata
	meta.ImmuneThroughRound = &round
	ok, err := repo.SaveMetadata(ctx, a.ID, stale.MetaVersion, meta)
	require.NoError(t, err)
	assert.False(t, ok)

	p, err := repo.UpdateMetadata(ctx, a.ID, func(meta *models.PlayerMetadata) bool {
		meta.ImmuneThroughRound = &round
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, stale.MetaVersion+2, p.MetaVersion)
	assert.True(t, p.Metadata.IsImmune(2))
	assert.True(t, p.Metadata.IsRestrictedFrom(fx.Player("b").ID))

	// 无变化时不写入
	p, err = repo.UpdateMetadata(ctx, a.ID, func(*models.PlayerMetadata) bool { return false })
	require.NoError(t, err)
	assert.Equal(t, stale.MetaVersion+2, p.MetaVersion)
}
