package websocket

import (
	"context"
	"net/http"
	"strings"
	"time"

	"pre-exam/config"
	"pre-exam/pkg/apperr"
	"pre-exam/pkg/jwt"
	"pre-exam/pkg/logger"
	"pre-exam/pkg/pubsub"
	"pre-exam/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域
	},
}

// Presence 在线状态维护
type Presence interface {
	SetOnline(ctx context.Context, userID uint, username string) error
	SetOffline(ctx context.Context, userID uint) error
	Heartbeat(userID uint)
}

// Handler 实时通知通道
type Handler struct {
	jwtService *jwt.JWTService
	broker     pubsub.Broker
	presence   Presence
	cfg        config.WebSocketConfig
}

// NewHandler 创建Handler实例，presence 可以为 nil
func NewHandler(jwtService *jwt.JWTService, broker pubsub.Broker, presence Presence, cfg config.WebSocketConfig) *Handler {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 3 * cfg.PingInterval
	}
	return &Handler{
		jwtService: jwtService,
		broker:     broker,
		presence:   presence,
		cfg:        cfg,
	}
}

// tokenFromRequest 令牌可以放在 query 参数 token 或 Sec-WebSocket-Protocol 中
func tokenFromRequest(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	return strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Sec-WebSocket-Protocol"), "Bearer "))
}

// Serve Gin路由处理函数
func (h *Handler) Serve(c *gin.Context) {
	token := tokenFromRequest(c)
	if token == "" {
		response.Fail(c, apperr.New(apperr.KindUnauthorized, "missing token"))
		return
	}
	sess, err := h.jwtService.SessionFromToken(token)
	if err != nil {
		response.Fail(c, apperr.New(apperr.KindUnauthorized, "token is invalid or expired"))
		return
	}

	// 回显子协议，避免客户端提示 "Server sent no subprotocol"
	respHeader := http.Header{}
	if protocol := c.GetHeader("Sec-WebSocket-Protocol"); protocol != "" {
		respHeader.Set("Sec-WebSocket-Protocol", protocol)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		logger.Debug("WebSocket升级失败", zap.Error(err))
		return
	}

	client := &Client{
		UserID: sess.UserID,
		Conn:   conn,
		sub:    h.broker.Subscribe(sess.UserID),
	}
	logger.Info("WebSocket连接建立", zap.Uint("user_id", sess.UserID))

	// 连接与请求的生命周期脱钩
	ctx := context.WithoutCancel(c.Request.Context())
	if h.presence != nil {
		if err := h.presence.SetOnline(ctx, sess.UserID, sess.Username); err != nil {
			logger.Warn("标记在线失败", zap.Uint("user_id", sess.UserID), zap.Error(err))
		}
	}

	done := make(chan struct{})
	go client.writePump(h.cfg.PingInterval, done)

	var heartbeat func()
	if h.presence != nil {
		heartbeat = func() { h.presence.Heartbeat(sess.UserID) }
	}
	client.readPump(h.cfg.ReadTimeout, heartbeat)

	close(done)
	replaced := h.closeSubscription(client)
	if h.presence != nil && !replaced {
		if err := h.presence.SetOffline(ctx, sess.UserID); err != nil {
			logger.Warn("标记离线失败", zap.Uint("user_id", sess.UserID), zap.Error(err))
		}
	}
	logger.Info("WebSocket连接关闭", zap.Uint("user_id", sess.UserID), zap.Bool("replaced", replaced))
}

// closeSubscription 取消订阅，返回该用户是否已经有更新的连接
func (h *Handler) closeSubscription(client *Client) bool {
	client.sub.Close()
	return client.sub.Replaced()
}
