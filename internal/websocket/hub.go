package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wfunc/bunker-game/internal/config"
	"go.uber.org/zap"
)

// Hub 按房间分组管理 WebSocket 连接
type Hub struct {
	// 客户端连接池
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 房间ID到客户端的映射
	rooms map[uint]map[string]*Client

	// 注册/注销通道
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader

	// 日志
	logger *zap.Logger
}

// Message 连接级别的控制消息，房间事件直接透传
type Message struct {
	Type      string          `json:"type"` // 消息类型
	RoomID    uint            `json:"room_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"` // 消息数据
	Timestamp int64           `json:"timestamp"`      // 时间戳
}

// MessageType 消息类型
const (
	MessageTypeConnected = "connected"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
	MessageTypeError     = "error"
)

// NewHub 创建Hub
func NewHub(cfg config.WebSocketConfig, logger *zap.Logger) *Hub {
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = 60 * time.Second
	}
	if cfg.PingInterval <= 0 || cfg.PingInterval >= cfg.PongTimeout {
		cfg.PingInterval = cfg.PongTimeout * 9 / 10
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 8192
	}
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[uint]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		cfg:        cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    cfg.ReadBufferSize,
			WriteBufferSize:   cfg.WriteBufferSize,
			EnableCompression: cfg.EnableCompression,
			// 鉴权在升级前完成
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Run 运行Hub，ctx 结束时断开所有连接
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// ServeRoom 升级连接并订阅房间事件，调用方需已确认用户在房间内
func (h *Hub) ServeRoom(w http.ResponseWriter, r *http.Request, userID string, roomID uint) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	client := NewClient(h, conn, userID, roomID)
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return ErrHubClosed
	}

	go client.WritePump()
	go client.ReadPump()
	return nil
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	members, ok := h.rooms[client.RoomID]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[client.RoomID] = members
	}
	members[client.ID] = client
	h.clientsMu.Unlock()

	h.logger.Info("WebSocket客户端连接",
		zap.String("client_id", client.ID),
		zap.String("user_id", client.UserID),
		zap.Uint("room_id", client.RoomID))

	msg := &Message{
		Type:      MessageTypeConnected,
		RoomID:    client.RoomID,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := h.SendToClient(client.ID, msg); err != nil {
		h.logger.Warn("发送连接消息失败", zap.String("client_id", client.ID), zap.Error(err))
	}
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		if members, ok := h.rooms[client.RoomID]; ok {
			delete(members, client.ID)
			if len(members) == 0 {
				delete(h.rooms, client.RoomID)
			}
		}
		close(client.Send)
	}
	h.clientsMu.Unlock()

	h.logger.Info("WebSocket客户端断开",
		zap.String("client_id", client.ID),
		zap.String("user_id", client.UserID),
		zap.Uint("room_id", client.RoomID))
}

func (h *Hub) closeAll() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for id, client := range h.clients {
		close(client.Send)
		delete(h.clients, id)
	}
	h.rooms = make(map[uint]map[string]*Client)
}

// BroadcastToRoom 向房间内所有连接投递，返回成功入队的连接数
func (h *Hub) BroadcastToRoom(roomID uint, payload []byte) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	sent := 0
	for _, client := range h.rooms[roomID] {
		select {
		case client.Send <- payload:
			sent++
		default:
			// 慢连接丢弃该事件，客户端可通过快照恢复
			h.logger.Warn("客户端发送缓冲区满",
				zap.String("client_id", client.ID),
				zap.Uint("room_id", roomID))
		}
	}
	return sent
}

// SendToClient 发送消息给指定客户端
func (h *Hub) SendToClient(clientID string, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	client, ok := h.clients[clientID]
	if !ok {
		return ErrClientNotFound
	}

	select {
	case client.Send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// RoomCount 房间内的连接数
func (h *Hub) RoomCount(roomID uint) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.rooms[roomID])
}

// GetOnlineCount 获取在线连接数
func (h *Hub) GetOnlineCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}
