package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/bunker-game/internal/game"
	"github.com/wfunc/bunker-game/internal/middleware"
	"github.com/wfunc/bunker-game/internal/models"
	"github.com/wfunc/bunker-game/internal/repository"
)

// RoomHandler 房间管理接口
type RoomHandler struct {
	svc *game.Service
}

// NewRoomHandler 创建房间处理器
func NewRoomHandler(svc *game.Service) *RoomHandler {
	return &RoomHandler{svc: svc}
}

// JoinRequest 加入房间参数
type JoinRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name"`
}

// ReadyRequest 准备状态参数
type ReadyRequest struct {
	Ready bool `json:"ready"`
}

// PlayerRequest 踢人参数
type PlayerRequest struct {
	PlayerID uint `json:"player_id" binding:"required"`
}

// ChatRequest 聊天参数
type ChatRequest struct {
	Text string `json:"text" binding:"required"`
}

// RoomResponse 创建或加入房间的结果
type RoomResponse struct {
	Room   *models.Room   `json:"room"`
	Player *models.Player `json:"player"`
}

// RoomListResponse 房间列表
type RoomListResponse struct {
	Rooms      []*game.RoomSummary    `json:"rooms"`
	Pagination *repository.Pagination `json:"pagination"`
}

// List 列出可加入的房间
// @Summary 列出可加入的房间
// @Description 列出前先清理无人在线的房间
// @Tags Room
// @Security Bearer
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} Response{data=RoomListResponse}
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	p := repository.NewPagination(page, size)

	rooms, err := h.svc.ListRooms(c.Request.Context(), p)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, RoomListResponse{Rooms: rooms, Pagination: p})
}

// Create 创建房间
// @Summary 创建房间
// @Tags Room
// @Security Bearer
// @Accept json
// @Produce json
// @Param request body game.CreateRoomRequest true "房间设置"
// @Success 200 {object} Response{data=RoomResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/rooms [post]
func (h *RoomHandler) Create(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	var req game.CreateRoomRequest
	if !bindJSON(c, &req) {
		return
	}

	room, player, err := h.svc.CreateRoom(c.Request.Context(), userID, &req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, RoomResponse{Room: room, Player: player})
}

// Join 通过邀请码加入房间
// @Summary 通过邀请码加入房间
// @Description 名字为空时使用令牌中的显示名；已在房间内时返回原座位
// @Tags Room
// @Security Bearer
// @Accept json
// @Produce json
// @Param request body JoinRequest true "邀请码和名字"
// @Success 200 {object} Response{data=RoomResponse}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/rooms/join [post]
func (h *RoomHandler) Join(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	var req JoinRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Name == "" {
		req.Name = middleware.GetUserName(c)
	}

	room, player, err := h.svc.JoinRoom(c.Request.Context(), userID, req.Code, req.Name)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, RoomResponse{Room: room, Player: player})
}

// Snapshot 房间快照
// @Summary 房间快照
// @Description 返回调用者视角的完整房间状态，断线重连后使用
// @Tags Room
// @Security Bearer
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} Response{data=game.RoomSnapshot}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/rooms/{id} [get]
func (h *RoomHandler) Snapshot(c *gin.Context) {
	roomID, userID, ok := roomCaller(c)
	if !ok {
		return
	}
	snap, err := h.svc.Snapshot(c.Request.Context(), roomID, userID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, snap)
}

// Leave 离开房间
// @Summary 离开房间
// @Description 房主离开时解散房间
// @Tags Room
// @Security Bearer
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} Response{data=game.SweepResult}
// @Failure 403 {object} errors.ErrorResponse
// @Router /api/v1/rooms/{id}/leave [post]
func (h *RoomHandler) Leave(c *gin.Context) {
	roomID, userID, ok := roomCaller(c)
	if !ok {
		return
	}
	res, err := h.svc.LeaveRoom(c.Request.Context(), roomID, userID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, res)
}

// Heartbeat 心跳
// @Summary 心跳
// @Tags Room
// @Security Bearer
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} Response{data=game.HeartbeatResult}
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/v1/rooms/{id}/heartbeat [post]
func (h *RoomHandler) Heartbeat(c *gin.Context) {
	roomID, userID, ok := roomCaller(c)
	if !ok {
		return
	}
	res, err := h.svc.Heartbeat(c.Request.Context(), roomID, userID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, res)
}

// Ready 设置准备状态
// @Summary 设置准备状态
// @Tags Room
// @Security Bearer
// @Accept json
// @Produce json
// @Param id path int true "房间ID"
// @Param request body ReadyRequest true "是否准备"
// @Success 200 {object} Response
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/rooms/{id}/ready [post]
func (h *RoomHandler) Ready(c *gin.Context) {
	roomID, userID, ok := roomCaller(c)
	if !ok {
		return
	}
	var req ReadyRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.SetReady(c.Request.Context(), roomID, userID, req.Ready); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, req)
}

// Kick 踢出玩家
// @Summary 踢出玩家
// @Tags Room
// @Security Bearer
// @Accept json
// @Produce json
// @Param id path int true "房间ID"
// @Param request body PlayerRequest true "玩家ID"
// @Success 200 {object} Response
// @Failure 403 {object} errors.ErrorResponse
// @Router /api/v1/rooms/{id}/kick [post]
func (h *RoomHandler) Kick(c *gin.Context) {
	h.kick(c, false)
}

// Ban 踢出并封禁玩家
// @Summary 踢出并封禁玩家
// @Tags Room
// @Security Bearer
// @Accept json
// @Produce json
// @Param id path int true "房间ID"
// @Param request body PlayerRequest true "玩家ID"
// @Success 200 {object} Response
// @Failure 403 {object} errors.ErrorResponse
// @Router /api/v1/rooms/{id}/ban [post]
func (h *RoomHandler) Ban(c *gin.Context) {
	h.kick(c, true)
}

func (h *RoomHandler) kick(c *gin.Context, ban bool) {
	roomID, userID, ok := roomCaller(c)
	if !ok {
		return
	}
	var req PlayerRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.Kick(c.Request.Context(), roomID, userID, req.PlayerID, ban); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, gin.H{"player_id": req.PlayerID, "banned": ban})
}

// Chat 发送聊天消息
// @Summary 发送聊天消息
// @Tags Room
// @Security Bearer
// @Accept json
// @Produce json
// @Param id path int true "房间ID"
// @Param request body ChatRequest true "消息内容"
// @Success 200 {object} Response{data=models.ChatMessage}
// @Failure 409 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/v1/rooms/{id}/chat [post]
func (h *RoomHandler) Chat(c *gin.Context) {
	roomID, userID, ok := roomCaller(c)
	if !ok {
		return
	}
	var req ChatRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.svc.SendChat(c.Request.Context(), roomID, userID, req.Text)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, msg)
}

// MyStats 我的战绩
// @Summary 我的战绩
// @Tags Stats
// @Security Bearer
// @Produce json
// @Success 200 {object} Response{data=models.PlayerStat}
// @Router /api/v1/stats/me [get]
func (h *RoomHandler) MyStats(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	stat, err := h.svc.PlayerStats(c.Request.Context(), userID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, stat)
}
