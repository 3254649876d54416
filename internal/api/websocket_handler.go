package api

import (
	"github.com/gin-gonic/gin"
	"github.com/wfunc/bunker-game/internal/game"
	"github.com/wfunc/bunker-game/internal/middleware"
	"github.com/wfunc/bunker-game/internal/websocket"
	"go.uber.org/zap"
)

// WebSocketHandler 房间事件订阅
type WebSocketHandler struct {
	svc    *game.Service
	hub    *websocket.Hub
	logger *zap.Logger
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(svc *game.Service, hub *websocket.Hub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{svc: svc, hub: hub, logger: logger}
}

// Subscribe 订阅房间事件，只有房间成员可以订阅
// @Summary 订阅房间事件
// @Description 升级为WebSocket连接，推送房间内的所有事件；令牌可通过 ?token= 传递
// @Tags Room
// @Security Bearer
// @Param id path int true "房间ID"
// @Param token query string false "访问令牌"
// @Success 101
// @Failure 403 {object} errors.ErrorResponse
// @Router /ws/rooms/{id} [get]
func (h *WebSocketHandler) Subscribe(c *gin.Context) {
	roomID, userID, ok := roomCaller(c)
	if !ok {
		return
	}
	if err := h.svc.CheckMember(c.Request.Context(), roomID, userID); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	// 升级失败时 upgrader 已写出响应
	if err := h.hub.ServeRoom(c.Writer, c.Request, userID, roomID); err != nil {
		h.logger.Warn("WebSocket升级失败",
			zap.Uint("room_id", roomID),
			zap.String("user_id", userID),
			zap.Error(err))
	}
}
