package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/wfunc/bunker-game/internal/config"
	apperrors "github.com/wfunc/bunker-game/internal/errors"
	"go.uber.org/zap"
)

// RoomSubject 房间事件主题，形如 bunker.room.42
func RoomSubject(prefix string, roomID uint) string {
	return fmt.Sprintf("%s.room.%d", prefix, roomID)
}

// roomWildcard 订阅所有房间事件
func roomWildcard(prefix string) string {
	return prefix + ".room.*"
}

// Connect 连接 NATS
func Connect(cfg *config.PubSubConfig, logger *zap.Logger) (*nats.Conn, error) {
	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("bunker-game"),
		nats.Timeout(cfg.ConnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS连接断开", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS已重连", zap.String("url", c.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("NATS连接已关闭")
		}),
	)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPublish, "连接NATS失败")
	}
	return conn, nil
}

// NATSPublisher 把房间事件发布到 NATS，由各实例的 NATSBridge 转发给本地连接
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger *zap.Logger
}

// NewNATSPublisher 创建 NATS 发布者
func NewNATSPublisher(conn *nats.Conn, prefix string, logger *zap.Logger) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix, logger: logger}
}

// Publish 发布事件
func (p *NATSPublisher) Publish(ctx context.Context, evt *Event) error {
	payload, err := evt.Encode()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrMessageFormat, "序列化事件失败")
	}
	if err := p.conn.Publish(RoomSubject(p.prefix, evt.RoomID), payload); err != nil {
		return apperrors.Wrap(err, apperrors.ErrPublish, "发布NATS消息失败")
	}
	return nil
}

// Close 刷新缓冲并断开
func (p *NATSPublisher) Close() error {
	if p.conn.IsClosed() {
		return nil
	}
	return p.conn.Drain()
}

// NATSBridge 订阅所有房间主题并投递到本地 Hub
type NATSBridge struct {
	hub    RoomBroadcaster
	logger *zap.Logger
	sub    *nats.Subscription
}

// NewNATSBridge 创建桥接
func NewNATSBridge(hub RoomBroadcaster, logger *zap.Logger) *NATSBridge {
	return &NATSBridge{hub: hub, logger: logger}
}

// Start 开始订阅
func (b *NATSBridge) Start(conn *nats.Conn, prefix string) error {
	sub, err := conn.Subscribe(roomWildcard(prefix), b.handle)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrPublish, "订阅NATS主题失败")
	}
	b.sub = sub
	return nil
}

// Stop 取消订阅
func (b *NATSBridge) Stop() error {
	if b.sub == nil {
		return nil
	}
	return b.sub.Unsubscribe()
}

func (b *NATSBridge) handle(msg *nats.Msg) {
	var head struct {
		RoomID uint `json:"room_id"`
	}
	if err := json.Unmarshal(msg.Data, &head); err != nil || head.RoomID == 0 {
		b.logger.Warn("丢弃无法解析的房间事件",
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return
	}
	b.hub.BroadcastToRoom(head.RoomID, msg.Data)
}
