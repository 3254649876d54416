package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/bunker-game/internal/game"
	"github.com/wfunc/bunker-game/internal/middleware"
	"github.com/wfunc/bunker-game/internal/models"
)

// RoundHandler 回合流程与玩家操作接口
type RoundHandler struct {
	svc *game.Service
}

// NewRoundHandler 创建回合处理器
func NewRoundHandler(svc *game.Service) *RoundHandler {
	return &RoundHandler{svc: svc}
}

// VoteRequest 投票参数
type VoteRequest struct {
	TargetID uint `json:"target_id" binding:"required"`
}

// UseCardRequest 使用卡牌参数，卡牌ID来自路径
type UseCardRequest struct {
	TargetPlayerID         uint `json:"target_player_id"`
	CharacteristicID       uint `json:"characteristic_id"`
	TargetCharacteristicID uint `json:"target_characteristic_id"`
}

// UseCardResponse 卡牌效果，窥视结果只返回给使用者
type UseCardResponse struct {
	*game.AbilityResult
	Peeked *models.Characteristic `json:"peeked,omitempty"`
}

type transitionFunc func(ctx context.Context, roomID uint, userID string) (*game.TransitionResult, error)

// transition 阶段操作的公共流程，未生效（已被其他请求完成）时仍返回 200
func (h *RoundHandler) transition(c *gin.Context, fn transitionFunc) {
	roomID, userID, ok := roomCaller(c)
	if !ok {
		return
	}
	res, err := fn(c.Request.Context(), roomID, userID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, res)
}

// Start 开始游戏
// @Summary 开始游戏
// @Description 房主操作，发放特征和卡牌
// @Tags Round
// @Security Bearer
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} Response{data=game.TransitionResult}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/rooms/{id}/start [post]
func (h *RoundHandler) Start(c *gin.Context) {
	h.transition(c, h.svc.Machine().StartGame)
}

// SkipIntro 跳过开场介绍
// @Summary 跳过开场介绍
// @Tags Round
// @Security Bearer
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} Response{data=game.TransitionResult}
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/rooms/{id}/skip-intro [post]
func (h *RoundHandler) SkipIntro(c *gin.Context) {
	h.transition(c, h.svc.Machine().SkipIntro)
}

// StartVoting 开始投票
// @Summary 开始投票
// @Tags Round
// @Security Bearer
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} Response{data=game.TransitionResult}
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/rooms/{id}/voting/start [post]
func (h *RoundHandler) StartVoting(c *gin.Context) {
	h.transition(c, h.svc.Machine().StartVoting)
}

// EndVoting 结束投票并结算
// @Summary 结束投票并结算
// @Tags Round
// @Security Bearer
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} Response{data=game.TransitionResult}
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/rooms/{id}/voting/end [post]
func (h *RoundHandler) EndVoting(c *gin.Context) {
	h.transition(c, h.svc.Machine().EndVoting)
}

// Advance 进入下一回合
// @Summary 进入下一回合
// @Tags Round
// @Security Bearer
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} Response{data=game.TransitionResult}
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/rooms/{id}/rounds/advance [post]
func (h *RoundHandler) Advance(c *gin.Context) {
	h.transition(c, h.svc.Machine().AdvanceRound)
}

// Finish 手动结束游戏
// @Summary 手动结束游戏
// @Tags Round
// @Security Bearer
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} Response{data=game.TransitionResult}
// @Failure 403 {object} errors.ErrorResponse
// @Router /api/v1/rooms/{id}/finish [post]
func (h *RoundHandler) Finish(c *gin.Context) {
	h.transition(c, h.svc.Machine().FinishManually)
}

// Vote 投票
// @Summary 投票
// @Description 同一回合重复投票覆盖之前的选择
// @Tags Round
// @Security Bearer
// @Accept json
// @Produce json
// @Param id path int true "房间ID"
// @Param request body VoteRequest true "被投票的玩家"
// @Success 200 {object} Response{data=models.Vote}
// @Failure 409 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/v1/rooms/{id}/votes [post]
func (h *RoundHandler) Vote(c *gin.Context) {
	roomID, userID, ok := roomCaller(c)
	if !ok {
		return
	}
	var req VoteRequest
	if !bindJSON(c, &req) {
		return
	}
	vote, err := h.svc.CastVote(c.Request.Context(), roomID, userID, req.TargetID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, vote)
}

// Reveal 公开自己的特征
// @Summary 公开自己的特征
// @Tags Round
// @Security Bearer
// @Produce json
// @Param id path int true "房间ID"
// @Param cid path int true "特征ID"
// @Success 200 {object} Response{data=models.Characteristic}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/rooms/{id}/characteristics/{cid}/reveal [post]
func (h *RoundHandler) Reveal(c *gin.Context) {
	roomID, userID, ok := roomCaller(c)
	if !ok {
		return
	}
	cid, ok := pathID(c, "cid")
	if !ok {
		return
	}
	char, err := h.svc.RevealCharacteristic(c.Request.Context(), roomID, userID, cid)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, char)
}

// UseCard 使用特殊卡牌
// @Summary 使用特殊卡牌
// @Tags Round
// @Security Bearer
// @Accept json
// @Produce json
// @Param id path int true "房间ID"
// @Param card_id path int true "卡牌ID"
// @Param request body UseCardRequest false "目标"
// @Success 200 {object} Response{data=UseCardResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/rooms/{id}/cards/{card_id}/use [post]
func (h *RoundHandler) UseCard(c *gin.Context) {
	roomID, userID, ok := roomCaller(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "card_id")
	if !ok {
		return
	}
	var req UseCardRequest
	// 立即生效的卡牌不需要请求体
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	res, err := h.svc.UseCard(c.Request.Context(), roomID, userID, &game.UseCardRequest{
		CardID:                 cardID,
		TargetPlayerID:         req.TargetPlayerID,
		CharacteristicID:       req.CharacteristicID,
		TargetCharacteristicID: req.TargetCharacteristicID,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, UseCardResponse{AbilityResult: res, Peeked: res.Peeked})
}
