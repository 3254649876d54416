package websocket

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/bunker-game/internal/logger"
	"go.uber.org/zap"
)

// 错误定义
var (
	ErrClientNotFound = errors.New("客户端未找到")
	ErrSendBufferFull = errors.New("发送缓冲区已满")
	ErrHubClosed      = errors.New("连接中心已关闭")
)

// sendBufferSize 每个连接的待发送队列长度
const sendBufferSize = 256

// Client 订阅某个房间事件的 WebSocket 连接
type Client struct {
	ID     string          // 客户端ID
	UserID string          // 用户ID
	RoomID uint            // 订阅的房间
	Hub    *Hub            // Hub引用
	Conn   *websocket.Conn // WebSocket连接
	Send   chan []byte     // 发送通道
}

// NewClient 创建新客户端
func NewClient(hub *Hub, conn *websocket.Conn, userID string, roomID uint) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		RoomID: roomID,
		Hub:    hub,
		Conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// ReadPump 读取消息，连接只接收客户端心跳，游戏操作走 HTTP 接口
func (c *Client) ReadPump() {
	cfg := c.Hub.cfg
	defer func() {
		c.Close()
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(cfg.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("WebSocket读取错误",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
			break
		}
		c.handleMessage(message)
	}
}

// WritePump 写入消息
func (c *Client) WritePump() {
	cfg := c.Hub.cfg
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if !ok {
				// Hub关闭了通道
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 每个事件单独一帧，客户端按帧解析 JSON
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage 处理接收到的消息
func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
		c.Hub.logger.Debug("无效的WebSocket消息",
			zap.String("client_id", c.ID),
			zap.Int("size", len(data)))
		c.sendError("消息格式错误")
		return
	}
	logger.LogWebSocketMessage("receive", msg.Type, msg.RoomID)

	switch msg.Type {
	case MessageTypePing:
		c.send(&Message{Type: MessageTypePong, RoomID: c.RoomID, Timestamp: time.Now().UnixMilli()})
	case MessageTypePong:
	default:
		c.sendError("不支持的消息类型: " + msg.Type)
	}
}

// sendError 发送错误消息
func (c *Client) sendError(message string) {
	data, _ := json.Marshal(map[string]string{"error": message})
	c.send(&Message{Type: MessageTypeError, RoomID: c.RoomID, Data: data, Timestamp: time.Now().UnixMilli()})
}

func (c *Client) send(msg *Message) {
	if err := c.Hub.SendToClient(c.ID, msg); err != nil {
		c.Hub.logger.Debug("发送消息失败", zap.String("client_id", c.ID), zap.Error(err))
	}
}

// Close 注销客户端
func (c *Client) Close() {
	select {
	case c.Hub.unregister <- c:
	case <-c.Hub.done:
	}
}
