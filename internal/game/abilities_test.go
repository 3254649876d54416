package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wfunc/bunker-game/internal/errors"
	"github.com/wfunc/bunker-game/internal/models"
	"github.com/wfunc/bunker-game/internal/pubsub"
	"github.com/wfunc/bunker-game/internal/repository"
	"gorm.io/gorm"
)

func giveCard(t *testing.T, env *testEnv, p *models.Player, cardType models.CardType) *models.SpecialCard {
	t.Helper()
	card := &models.SpecialCard{PlayerID: p.ID, RoomID: p.RoomID, CardType: cardType}
	require.NoError(t, env.repos.Card().CreateBatch(context.Background(), []*models.SpecialCard{card}))
	return card
}

func giveTrait(t *testing.T, env *testEnv, p *models.Player, cat models.Category, value string) *models.Characteristic {
	t.Helper()
	c := &models.Characteristic{PlayerID: p.ID, RoomID: p.RoomID, Category: cat, Value: value}
	require.NoError(t, env.repos.Characteristic().CreateBatch(context.Background(), []*models.Characteristic{c}))
	return c
}

func reload(t *testing.T, env *testEnv, id uint) *models.Characteristic {
	t.Helper()
	c, err := env.repos.Characteristic().FindByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

func TestImmunityCard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fx := repository.SeedRoom(t, env.db, models.PhasePlaying, "A", "B")
	card := giveCard(t, env, fx.Player("A"), models.CardImmunity)

	res, err := env.svc.UseCard(ctx, fx.Room.ID, "user-A", &UseCardRequest{CardID: card.ID})
	require.NoError(t, err)
	assert.True(t, res.Card.IsUsed)
	assert.Equal(t, fx.Player("A").ID, res.TargetPlayerID)

	a := env.player(t, fx.Player("A").ID)
	assert.True(t, a.Metadata.IsImmune(1))
	assert.False(t, a.Metadata.IsImmune(2))

	_, err = env.svc.UseCard(ctx, fx.Room.ID, "user-A", &UseCardRequest{CardID: card.ID})
	assert.True(t, apperrors.Is(err, apperrors.ErrCardAlreadyUsed))
	assert.True(t, apperrors.IsPrecondition(err))
	assert.Equal(t, 1, env.pub.count(pubsub.EventCardUsed))
}

func TestImmunityDuringResultsCoversNextRound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fx := repository.SeedRoom(t, env.db, models.PhaseResults, "A", "B")
	card := giveCard(t, env, fx.Player("B"), models.CardImmunity)

	_, err := env.svc.UseCard(ctx, fx.Room.ID, "user-B", &UseCardRequest{CardID: card.ID})
	require.NoError(t, err)
	assert.True(t, env.player(t, fx.Player("B").ID).Metadata.IsImmune(2))
}

func TestImmunityScenarioSavesHolder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fx := repository.SeedRoom(t, env.db, models.PhasePlaying, "X", "Y", "Z", "W")
	env.setPhase(t, fx.Room.ID, models.PhasePlaying, 2)
	card := giveCard(t, env, fx.Player("X"), models.CardImmunity)

	_, err := env.svc.UseCard(ctx, fx.Room.ID, "user-X", &UseCardRequest{CardID: card.ID})
	require.NoError(t, err)

	_, err = env.svc.Machine().StartVoting(ctx, fx.Room.ID, "user-X")
	require.NoError(t, err)
	_, err = env.svc.CastVote(ctx, fx.Room.ID, "user-Z", fx.Player("X").ID)
	require.NoError(t, err)
	_, err = env.svc.CastVote(ctx, fx.Room.ID, "user-W", fx.Player("Y").ID)
	require.NoError(t, err)

	res, err := env.svc.Machine().EndVoting(ctx, fx.Room.ID, "user-X")
	require.NoError(t, err)
	require.NotNil(t, res.Tally.Eliminated)
	assert.Equal(t, fx.Player("Y").ID, *res.Tally.Eliminated)
	assert.Equal(t, []uint{fx.Player("X").ID}, res.Tally.SavedByImmunity)
}

func TestVoteBlockCard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fx := repository.SeedRoom(t, env.db, models.PhaseVoting, "A", "B", "C")
	a, b, c := fx.Player("A"), fx.Player("B"), fx.Player("C")

	_, err := env.svc.CastVote(ctx, fx.Room.ID, "user-B", a.ID)
	require.NoError(t, err)

	card := giveCard(t, env, a, models.CardVoteBlock)
	_, err = env.svc.UseCard(ctx, fx.Room.ID, "user-A", &UseCardRequest{CardID: card.ID, TargetPlayerID: b.ID})
	require.NoError(t, err)

	n, err := env.repos.Vote().CountByRound(ctx, fx.Room.ID, 1)
	require.NoError(t, err)
	assert.Zero(t, n, "已投给持卡人的票作废")

	_, err = env.svc.CastVote(ctx, fx.Room.ID, "user-B", a.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrVoteRestricted))

	_, err = env.svc.CastVote(ctx, fx.Room.ID, "user-B", c.ID)
	assert.NoError(t, err)

	_, err = env.svc.Machine().EndVoting(ctx, fx.Room.ID, "user-A")
	require.NoError(t, err)
	assert.Empty(t, env.player(t, b.ID).Metadata.CannotVoteAgainst, "投票结束后清除")
}

func TestDoubleVoteCard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fx := repository.SeedRoom(t, env.db, models.PhaseVoting, "A", "B", "C")

	_, err := env.svc.CastVote(ctx, fx.Room.ID, "user-A", fx.Player("B").ID)
	require.NoError(t, err)

	card := giveCard(t, env, fx.Player("A"), models.CardDoubleVote)
	_, err = env.svc.UseCard(ctx, fx.Room.ID, "user-A", &UseCardRequest{CardID: card.ID})
	require.NoError(t, err)

	votes, err := env.repos.Vote().ListByRound(ctx, fx.Room.ID, 1)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, 2, votes[0].Weight)

	// 改投后仍保持加权
	v, err := env.svc.CastVote(ctx, fx.Room.ID, "user-A", fx.Player("C").ID)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Weight)
}

func TestExchangeCard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fx := repository.SeedRoom(t, env.db, models.PhasePlaying, "A", "B")
	mine := giveTrait(t, env, fx.Player("A"), models.CategoryProfession, "厨师")
	theirs := giveTrait(t, env, fx.Player("B"), models.CategoryProfession, "外科医生")
	hobby := giveTrait(t, env, fx.Player("B"), models.CategoryHobby, "钓鱼")
	card := giveCard(t, env, fx.Player("A"), models.CardExchange)

	_, err := env.svc.UseCard(ctx, fx.Room.ID, "user-A", &UseCardRequest{CardID: card.ID, CharacteristicID: mine.ID, TargetCharacteristicID: hobby.ID})
	assert.Equal(t, apperrors.CategoryValidationFailed, apperrors.CategoryOf(err), "类别不同")

	res, err := env.svc.UseCard(ctx, fx.Room.ID, "user-A", &UseCardRequest{CardID: card.ID, CharacteristicID: mine.ID, TargetCharacteristicID: theirs.ID})
	require.NoError(t, err)
	assert.Len(t, res.Changed, 2)
	assert.Equal(t, "外科医生", reload(t, env, mine.ID).Value)
	assert.Equal(t, "厨师", reload(t, env, theirs.ID).Value)
}

func TestAbilityRejectsCrossRoomReferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fx := repository.SeedRoom(t, env.db, models.PhasePlaying, "A", "B")
	other := repository.SeedRoom(t, env.db, models.PhasePlaying, "P", "Q")

	mine := giveTrait(t, env, fx.Player("A"), models.CategoryProfession, "厨师")
	foreign := giveTrait(t, env, other.Player("Q"), models.CategoryProfession, "律师")
	card := giveCard(t, env, fx.Player("A"), models.CardExchange)

	_, err := env.svc.UseCard(ctx, fx.Room.ID, "user-A", &UseCardRequest{CardID: card.ID, CharacteristicID: mine.ID, TargetCharacteristicID: foreign.ID})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	assert.Equal(t, "厨师", reload(t, env, mine.ID).Value)
	assert.Equal(t, "律师", reload(t, env, foreign.ID).Value)
	stored, err := env.repos.Card().FindByID(ctx, card.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsUsed, "失败时卡牌不被消耗")

	otherCard := giveCard(t, env, other.Player("P"), models.CardImmunity)
	_, err = env.svc.UseCard(ctx, fx.Room.ID, "user-A", &UseCardRequest{CardID: otherCard.ID})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	bCard := giveCard(t, env, fx.Player("B"), models.CardImmunity)
	_, err = env.svc.UseCard(ctx, fx.Room.ID, "user-A", &UseCardRequest{CardID: bCard.ID})
	assert.Equal(t, apperrors.CategoryForbidden, apperrors.CategoryOf(err))

	block := giveCard(t, env, fx.Player("A"), models.CardVoteBlock)
	_, err = env.svc.UseCard(ctx, fx.Room.ID, "user-A", &UseCardRequest{CardID: block.ID, TargetPlayerID: other.Player("Q").ID})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Empty(t, env.player(t, other.Player("Q").ID).Metadata.CannotVoteAgainst)
}

func TestRerollRevealPeek(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fx := repository.SeedRoom(t, env.db, models.PhasePlaying, "A", "B")
	own := giveTrait(t, env, fx.Player("A"), models.CategoryPhobia, "恐高")
	target := giveTrait(t, env, fx.Player("B"), models.CategoryHealth, "失眠")

	reroll := giveCard(t, env, fx.Player("A"), models.CardReroll)
	_, err := env.svc.UseCard(ctx, fx.Room.ID, "user-A", &UseCardRequest{CardID: reroll.ID, CharacteristicID: own.ID})
	require.NoError(t, err)
	assert.NotEqual(t, "恐高", reload(t, env, own.ID).Value)

	peek := giveCard(t, env, fx.Player("A"), models.CardPeek)
	res, err := env.svc.UseCard(ctx, fx.Room.ID, "user-A", &UseCardRequest{CardID: peek.ID, CharacteristicID: target.ID})
	require.NoError(t, err)
	require.NotNil(t, res.Peeked)
	assert.Equal(t, "失眠", res.Peeked.Value)
	assert.False(t, reload(t, env, target.ID).IsRevealed, "查看不公开")

	reveal := giveCard(t, env, fx.Player("A"), models.CardReveal)
	_, err = env.svc.UseCard(ctx, fx.Room.ID, "user-A", &UseCardRequest{CardID: reveal.ID, CharacteristicID: target.ID})
	require.NoError(t, err)
	got := reload(t, env, target.ID)
	assert.True(t, got.IsRevealed)
	require.NotNil(t, got.RevealRound)
	assert.Equal(t, 1, *got.RevealRound)
}

func TestAbilityPreconditions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fx := repository.SeedRoom(t, env.db, models.PhaseWaiting, "A", "B")
	card := giveCard(t, env, fx.Player("A"), models.CardImmunity)

	_, err := env.svc.UseCard(ctx, fx.Room.ID, "user-A", &UseCardRequest{CardID: card.ID})
	assert.True(t, apperrors.IsPrecondition(err), "等待阶段不能用卡")

	env.setPhase(t, fx.Room.ID, models.PhasePlaying, 1)
	_, err = env.repos.Player().MarkEliminated(ctx, fx.Player("A").ID, 1)
	require.NoError(t, err)
	_, err = env.svc.UseCard(ctx, fx.Room.ID, "user-A", &UseCardRequest{CardID: card.ID})
	assert.True(t, apperrors.IsPrecondition(err), "已淘汰不能用卡")

	_, err = env.svc.UseCard(ctx, fx.Room.ID, "user-stranger", &UseCardRequest{CardID: card.ID})
	assert.Equal(t, apperrors.CategoryForbidden, apperrors.CategoryOf(err))
}

func TestImmunityKeepsConcurrentRestriction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fx := repository.SeedRoom(t, env.db, models.PhasePlaying, "A", "B")
	a, b := fx.Player("A"), fx.Player("B")
	card := giveCard(t, env, a, models.CardImmunity)

	// 写入免疫前，另一张投票限制卡先修改了 A 的卡牌效果
	fired := false
	err := env.db.Callback().Update().Before("gorm:update").Register("test:concurrent_block", func(db *gorm.DB) {
		updates, ok := db.Statement.Dest.(map[string]interface{})
		if fired || !ok || db.Statement.Table != "players" {
			return
		}
		if _, ok := updates["meta_version"]; !ok {
			return
		}
		fired = true
		meta := models.PlayerMetadata{CannotVoteAgainst: []models.VoteRestriction{{TargetID: b.ID, CardType: models.CardVoteBlock}}}
		err := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Player{}).
			Where("id = ?", a.ID).
			Updates(map[string]interface{}{"metadata": meta, "meta_version": gorm.Expr("meta_version + 1")}).Error
		assert.NoError(t, err)
	})
	require.NoError(t, err)

	_, err = env.svc.UseCard(ctx, fx.Room.ID, "user-A", &UseCardRequest{CardID: card.ID})
	require.NoError(t, err)
	require.True(t, fired)

	got := env.player(t, a.ID)
	assert.True(t, got.Metadata.IsImmune(1))
	assert.True(t, got.Metadata.IsRestrictedFrom(b.ID), "并发写入的投票限制不能丢失")
	assert.Equal(t, 2, got.MetaVersion)
}
