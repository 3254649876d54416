package pubsub

import (
	"github.com/wfunc/bunker-game/internal/config"
	apperrors "github.com/wfunc/bunker-game/internal/errors"
	"go.uber.org/zap"
)

// New 按配置创建发布者，返回的关闭函数负责释放订阅与连接
func New(cfg *config.PubSubConfig, hub RoomBroadcaster, logger *zap.Logger) (Publisher, func() error, error) {
	switch cfg.Driver {
	case "", "local":
		p := NewLocalPublisher(hub, logger)
		return p, p.Close, nil
	case "nats":
		conn, err := Connect(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		bridge := NewNATSBridge(hub, logger)
		if err := bridge.Start(conn, cfg.SubjectPrefix); err != nil {
			conn.Close()
			return nil, nil, err
		}
		p := NewNATSPublisher(conn, cfg.SubjectPrefix, logger)
		closeFn := func() error {
			if err := bridge.Stop(); err != nil {
				logger.Warn("取消NATS订阅失败", zap.Error(err))
			}
			return p.Close()
		}
		logger.Info("房间事件通过NATS分发",
			zap.String("url", cfg.NATSURL),
			zap.String("prefix", cfg.SubjectPrefix))
		return p, closeFn, nil
	default:
		return nil, nil, apperrors.Newf(apperrors.ErrConfigLoad, "未知的发布驱动: %s", cfg.Driver)
	}
}
