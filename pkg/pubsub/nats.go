package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"pre-exam/config"
	"pre-exam/pkg/logger"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// envelope 跨实例传输的数据
type envelope struct {
	UserID uint  `json:"user_id"`
	Event  Event `json:"event"`
}

// NATSBroker 通过 NATS 在多个实例间扇出事件
// 发布发往 <prefix>.<userID>，每个实例订阅 <prefix>.* 并转发给本地 broker
type NATSBroker struct {
	local  *LocalBroker
	nc     *nats.Conn
	sub    *nats.Subscription
	prefix string
}

// NewNATSBroker 连接 NATS 并开始转发
func NewNATSBroker(cfg config.NATSConfig, local *LocalBroker) (*NATSBroker, error) {
	if len(cfg.Servers) == 0 {
		return nil, errors.New("nats servers missing")
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 500 * time.Millisecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Second
	}
	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = "preexam.notify"
	}

	nc, err := nats.Connect(strings.Join(cfg.Servers, ","),
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS连接断开", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS重新连接", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, err
	}

	b := &NATSBroker{local: local, nc: nc, prefix: prefix}
	sub, err := nc.Subscribe(prefix+".*", b.forward)
	if err != nil {
		nc.Close()
		return nil, err
	}
	// 确保订阅已在服务端生效
	if err := nc.Flush(); err != nil {
		nc.Close()
		return nil, err
	}
	b.sub = sub
	return b, nil
}

// Subject 用户对应的主题
func Subject(prefix string, userID uint) string {
	return prefix + "." + strconv.FormatUint(uint64(userID), 10)
}

// Publish 发布到 NATS，由各实例的订阅转发给在线用户
func (b *NATSBroker) Publish(_ context.Context, userID uint, ev Event) error {
	data, err := json.Marshal(envelope{UserID: userID, Event: ev})
	if err != nil {
		return err
	}
	return b.nc.Publish(Subject(b.prefix, userID), data)
}

// Subscribe 订阅只发生在本实例
func (b *NATSBroker) Subscribe(userID uint) *Subscription {
	return b.local.Subscribe(userID)
}

func (b *NATSBroker) forward(m *nats.Msg) {
	var env envelope
	if err := json.Unmarshal(m.Data, &env); err != nil {
		logger.Warn("丢弃无法解析的NATS消息", zap.String("subject", m.Subject), zap.Error(err))
		return
	}
	_ = b.local.Publish(context.Background(), env.UserID, env.Event)
}

// Close 停止转发并断开连接
func (b *NATSBroker) Close() error {
	if b.sub != nil {
		_ = b.sub.Unsubscribe()
	}
	return b.nc.Drain()
}
