package game

import (
	"context"

	apperrors "github.com/wfunc/bunker-game/internal/errors"
	"github.com/wfunc/bunker-game/internal/models"
	"github.com/wfunc/bunker-game/internal/repository"
)

// UseCardRequest 使用卡牌的参数
type UseCardRequest struct {
	CardID                 uint `json:"card_id"`
	TargetPlayerID         uint `json:"target_player_id,omitempty"`         // immunity/vote_block 的目标
	CharacteristicID       uint `json:"characteristic_id,omitempty"`        // exchange 时为自己的特征，其余为目标特征
	TargetCharacteristicID uint `json:"target_characteristic_id,omitempty"` // exchange 时对方的特征
}

// AbilityResult 卡牌效果
type AbilityResult struct {
	Card           *models.SpecialCard      `json:"card"`
	TargetPlayerID uint                     `json:"target_player_id,omitempty"`
	Changed        []*models.Characteristic `json:"changed,omitempty"`
	Peeked         *models.Characteristic   `json:"-"` // 只返回给使用者
}

// AbilityResolver 卡牌效果结算，所有读写都在调用者提供的事务中完成，
// 任何校验失败都会回滚，不留下副作用。
type AbilityResolver struct {
	dealer *Dealer
}

// NewAbilityResolver 创建卡牌结算器
func NewAbilityResolver(dealer *Dealer) *AbilityResolver {
	return &AbilityResolver{dealer: dealer}
}

// effectRound 效果生效的回合，结果阶段使用的卡作用于下一回合
func effectRound(room *models.Room) int {
	if room.Phase == models.PhaseResults {
		return room.CurrentRound + 1
	}
	return room.CurrentRound
}

// Use 使用卡牌
func (a *AbilityResolver) Use(ctx context.Context, tx *repository.Transaction, room *models.Room, caller *models.Player, req *UseCardRequest) (*AbilityResult, error) {
	switch room.Phase {
	case models.PhasePlaying, models.PhaseVoting, models.PhaseResults:
	default:
		return nil, apperrors.Newf(apperrors.ErrWrongPhase, "阶段 %s 不能使用卡牌", room.Phase)
	}
	if !room.Settings.CardsEnabled {
		return nil, apperrors.New(apperrors.ErrPreconditionFailed, "房间未启用卡牌")
	}
	if caller.IsEliminated {
		return nil, apperrors.New(apperrors.ErrPreconditionFailed, "已淘汰的玩家不能使用卡牌")
	}

	card, err := tx.Cards().FindByID(ctx, req.CardID)
	if err != nil {
		return nil, dbErr(err, "卡牌")
	}
	if card.RoomID != room.ID {
		return nil, apperrors.New(apperrors.ErrNotFound, "卡牌不存在")
	}
	if card.PlayerID != caller.ID {
		return nil, apperrors.New(apperrors.ErrForbidden, "不能使用他人的卡牌")
	}
	if card.IsUsed {
		return nil, apperrors.New(apperrors.ErrCardAlreadyUsed)
	}

	result := &AbilityResult{Card: card}
	round := effectRound(room)

	switch card.CardType {
	case models.CardImmunity:
		err = a.immunity(ctx, tx, room, caller, req, round, result)
	case models.CardVoteBlock:
		err = a.voteBlock(ctx, tx, room, caller, req, result)
	case models.CardDoubleVote:
		err = a.doubleVote(ctx, tx, room, caller, round)
	case models.CardExchange:
		err = a.exchange(ctx, tx, room, caller, req, result)
	case models.CardReroll:
		err = a.reroll(ctx, tx, room, req, result)
	case models.CardReveal:
		err = a.reveal(ctx, tx, room, caller, req, result)
	case models.CardPeek:
		err = a.peek(ctx, tx, room, caller, req, result)
	default:
		err = apperrors.Newf(apperrors.ErrValidationFailed, "未知的卡牌类型: %s", card.CardType)
	}
	if err != nil {
		return nil, err
	}

	ok, err := tx.Cards().MarkUsed(ctx, card.ID, room.CurrentRound)
	if err != nil {
		return nil, dbErr(err, "标记卡牌")
	}
	if !ok {
		return nil, apperrors.New(apperrors.ErrCardAlreadyUsed)
	}
	used := room.CurrentRound
	card.IsUsed = true
	card.UsedRound = &used
	return result, nil
}

// playerInRoom 读取房间内的玩家，其他房间的玩家视为不存在
func playerInRoom(ctx context.Context, tx *repository.Transaction, roomID, playerID uint) (*models.Player, error) {
	p, err := tx.Players().FindByID(ctx, playerID)
	if err != nil {
		return nil, dbErr(err, "玩家")
	}
	if p.RoomID != roomID {
		return nil, apperrors.New(apperrors.ErrNotFound, "玩家不存在")
	}
	return p, nil
}

// characteristicInRoom 读取特征，并确认特征和它的主人都在本房间
func characteristicInRoom(ctx context.Context, tx *repository.Transaction, roomID, id uint) (*models.Characteristic, *models.Player, error) {
	c, err := tx.Characteristics().FindByID(ctx, id)
	if err != nil {
		return nil, nil, dbErr(err, "特征")
	}
	if c.RoomID != roomID {
		return nil, nil, apperrors.New(apperrors.ErrNotFound, "特征不存在")
	}
	owner, err := playerInRoom(ctx, tx, roomID, c.PlayerID)
	if err != nil {
		return nil, nil, err
	}
	return c, owner, nil
}

func (a *AbilityResolver) immunity(ctx context.Context, tx *repository.Transaction, room *models.Room, caller *models.Player, req *UseCardRequest, round int, result *AbilityResult) error {
	target := caller
	if req.TargetPlayerID != 0 && req.TargetPlayerID != caller.ID {
		p, err := playerInRoom(ctx, tx, room.ID, req.TargetPlayerID)
		if err != nil {
			return err
		}
		if p.IsEliminated {
			return apperrors.New(apperrors.ErrPreconditionFailed, "目标已被淘汰")
		}
		target = p
	}

	updated, err := tx.Players().UpdateMetadata(ctx, target.ID, func(meta *models.PlayerMetadata) bool {
		if meta.ImmuneThroughRound != nil && *meta.ImmuneThroughRound >= round {
			return false
		}
		meta.ImmuneThroughRound = &round
		return true
	})
	if err != nil {
		return dbErr(err, "保存免疫")
	}
	target.Metadata = updated.Metadata
	result.TargetPlayerID = target.ID
	return nil
}

// voteBlock 目标玩家在本次投票中不能投给持卡人
func (a *AbilityResolver) voteBlock(ctx context.Context, tx *repository.Transaction, room *models.Room, caller *models.Player, req *UseCardRequest, result *AbilityResult) error {
	if req.TargetPlayerID == 0 || req.TargetPlayerID == caller.ID {
		return apperrors.New(apperrors.ErrValidationFailed, "需要指定其他玩家")
	}
	target, err := playerInRoom(ctx, tx, room.ID, req.TargetPlayerID)
	if err != nil {
		return err
	}

	_, err = tx.Players().UpdateMetadata(ctx, target.ID, func(meta *models.PlayerMetadata) bool {
		if meta.IsRestrictedFrom(caller.ID) {
			return false
		}
		meta.CannotVoteAgainst = append(meta.CannotVoteAgainst, models.VoteRestriction{
			TargetID: caller.ID,
			CardType: models.CardVoteBlock,
		})
		return true
	})
	if err != nil {
		return dbErr(err, "保存投票限制")
	}

	// 目标本轮已投给持卡人的票作废
	if room.Phase == models.PhaseVoting {
		if _, err := tx.Votes().DeleteAgainst(ctx, room.ID, room.CurrentRound, target.ID, caller.ID); err != nil {
			return dbErr(err, "作废投票")
		}
	}
	result.TargetPlayerID = target.ID
	return nil
}

func (a *AbilityResolver) doubleVote(ctx context.Context, tx *repository.Transaction, room *models.Room, caller *models.Player, round int) error {
	updated, err := tx.Players().UpdateMetadata(ctx, caller.ID, func(meta *models.PlayerMetadata) bool {
		meta.VoteBonuses = append(meta.VoteBonuses, models.VoteWeightBonus{Round: round, Extra: 1})
		return true
	})
	if err != nil {
		return dbErr(err, "保存加票")
	}
	meta := updated.Metadata
	caller.Metadata = meta

	// 投票阶段已投过的票按新权重更新
	if room.Phase != models.PhaseVoting {
		return nil
	}
	if _, err := tx.Votes().UpdateWeight(ctx, room.ID, room.CurrentRound, caller.ID, meta.VoteWeight(room.CurrentRound)); err != nil {
		return dbErr(err, "更新投票权重")
	}
	return nil
}

// exchange 交换自己与他人的同类特征
func (a *AbilityResolver) exchange(ctx context.Context, tx *repository.Transaction, room *models.Room, caller *models.Player, req *UseCardRequest, result *AbilityResult) error {
	if req.CharacteristicID == 0 || req.TargetCharacteristicID == 0 {
		return apperrors.New(apperrors.ErrValidationFailed, "需要指定双方的特征")
	}
	mine, _, err := characteristicInRoom(ctx, tx, room.ID, req.CharacteristicID)
	if err != nil {
		return err
	}
	theirs, owner, err := characteristicInRoom(ctx, tx, room.ID, req.TargetCharacteristicID)
	if err != nil {
		return err
	}
	if mine.PlayerID != caller.ID {
		return apperrors.New(apperrors.ErrForbidden, "只能交换自己的特征")
	}
	if owner.ID == caller.ID {
		return apperrors.New(apperrors.ErrValidationFailed, "需要与其他玩家交换")
	}
	if mine.Category != theirs.Category {
		return apperrors.New(apperrors.ErrValidationFailed, "只能交换同类特征")
	}

	mine.Value, theirs.Value = theirs.Value, mine.Value
	if err := tx.Characteristics().UpdateValue(ctx, mine.ID, mine.Value); err != nil {
		return dbErr(err, "交换特征")
	}
	if err := tx.Characteristics().UpdateValue(ctx, theirs.ID, theirs.Value); err != nil {
		return dbErr(err, "交换特征")
	}
	result.TargetPlayerID = owner.ID
	result.Changed = []*models.Characteristic{mine, theirs}
	return nil
}

// reroll 重抽一项特征，默认是自己的
func (a *AbilityResolver) reroll(ctx context.Context, tx *repository.Transaction, room *models.Room, req *UseCardRequest, result *AbilityResult) error {
	if req.CharacteristicID == 0 {
		return apperrors.New(apperrors.ErrValidationFailed, "需要指定特征")
	}
	c, owner, err := characteristicInRoom(ctx, tx, room.ID, req.CharacteristicID)
	if err != nil {
		return err
	}
	c.Value = a.dealer.Reroll(c.Category, c.Value)
	if err := tx.Characteristics().UpdateValue(ctx, c.ID, c.Value); err != nil {
		return dbErr(err, "重抽特征")
	}
	result.TargetPlayerID = owner.ID
	result.Changed = []*models.Characteristic{c}
	return nil
}

// reveal 强制公开他人的一项特征
func (a *AbilityResolver) reveal(ctx context.Context, tx *repository.Transaction, room *models.Room, caller *models.Player, req *UseCardRequest, result *AbilityResult) error {
	c, owner, err := a.othersCharacteristic(ctx, tx, room, caller, req)
	if err != nil {
		return err
	}
	if _, err := tx.Characteristics().Reveal(ctx, c.ID, room.CurrentRound); err != nil {
		return dbErr(err, "公开特征")
	}
	if !c.IsRevealed {
		round := room.CurrentRound
		c.IsRevealed = true
		c.RevealRound = &round
	}
	result.TargetPlayerID = owner.ID
	result.Changed = []*models.Characteristic{c}
	return nil
}

// peek 私下查看他人的一项特征，不修改数据
func (a *AbilityResolver) peek(ctx context.Context, tx *repository.Transaction, room *models.Room, caller *models.Player, req *UseCardRequest, result *AbilityResult) error {
	c, owner, err := a.othersCharacteristic(ctx, tx, room, caller, req)
	if err != nil {
		return err
	}
	result.TargetPlayerID = owner.ID
	result.Peeked = c
	return nil
}

func (a *AbilityResolver) othersCharacteristic(ctx context.Context, tx *repository.Transaction, room *models.Room, caller *models.Player, req *UseCardRequest) (*models.Characteristic, *models.Player, error) {
	if req.CharacteristicID == 0 {
		return nil, nil, apperrors.New(apperrors.ErrValidationFailed, "需要指定特征")
	}
	c, owner, err := characteristicInRoom(ctx, tx, room.ID, req.CharacteristicID)
	if err != nil {
		return nil, nil, err
	}
	if owner.ID == caller.ID {
		return nil, nil, apperrors.New(apperrors.ErrValidationFailed, "需要指定其他玩家的特征")
	}
	return c, owner, nil
}
