package websocket

import (
	"encoding/json"
	"time"

	"pre-exam/pkg/logger"
	"pre-exam/pkg/pubsub"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// Client 代表一个用户的WebSocket连接
// 事件来自该用户在 broker 上的订阅，订阅被关闭或被新连接替换时连接随之关闭
type Client struct {
	UserID uint
	Conn   *websocket.Conn
	sub    *pubsub.Subscription
}

// inbound 客户端上行帧
type inbound struct {
	Type string `json:"type"`
}

// writePump 把订阅事件写到连接上，并定时发送 ping
func (c *Client) writePump(pingInterval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.sub.C():
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 订阅被替换或关闭
				_ = c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session replaced"))
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				logger.Warn("事件序列化失败", zap.Uint("user_id", c.UserID), zap.Error(err))
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Debug("推送事件失败", zap.Uint("user_id", c.UserID), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.Conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// readPump 读取上行帧，超时未收到任何数据则返回
func (c *Client) readPump(readTimeout time.Duration, onHeartbeat func()) {
	_ = c.Conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, payload, err := c.Conn.ReadMessage()
		if err != nil {
			return
		}
		_ = c.Conn.SetReadDeadline(time.Now().Add(readTimeout))

		var msg inbound
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		if msg.Type == "heartbeat" && onHeartbeat != nil {
			onHeartbeat()
		}
	}
}
