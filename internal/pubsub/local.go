package pubsub

import (
	"context"
	"errors"

	apperrors "github.com/wfunc/bunker-game/internal/errors"
	"go.uber.org/zap"
)

// LocalPublisher 直接投递到本进程的 WebSocket Hub
type LocalPublisher struct {
	hub    RoomBroadcaster
	logger *zap.Logger
}

// NewLocalPublisher 创建本地发布者
func NewLocalPublisher(hub RoomBroadcaster, logger *zap.Logger) *LocalPublisher {
	return &LocalPublisher{hub: hub, logger: logger}
}

// Publish 发布事件
func (p *LocalPublisher) Publish(ctx context.Context, evt *Event) error {
	payload, err := evt.Encode()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrMessageFormat, "序列化事件失败")
	}
	n := p.hub.BroadcastToRoom(evt.RoomID, payload)
	p.logger.Debug("房间事件已投递",
		zap.String("type", string(evt.Type)),
		zap.Uint("room_id", evt.RoomID),
		zap.Int("clients", n))
	return nil
}

// Close 无需释放资源
func (p *LocalPublisher) Close() error {
	return nil
}

// MultiPublisher 同时发布到多个发布者
type MultiPublisher []Publisher

// Publish 逐个发布，汇总错误
func (m MultiPublisher) Publish(ctx context.Context, evt *Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close 关闭全部发布者
func (m MultiPublisher) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopPublisher 丢弃所有事件
type NopPublisher struct{}

// Publish 丢弃事件
func (NopPublisher) Publish(context.Context, *Event) error { return nil }

// Close 无操作
func (NopPublisher) Close() error { return nil }
