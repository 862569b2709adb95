package jwt

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// Session 当前请求的调用者身份
// 登录时签发令牌即创建会话，令牌过期或登出即结束
type Session struct {
	UserID    uint
	Username  string
	Role      string
	ExpiresAt time.Time
}

type sessionKey struct{}

// ContextSessionKey 会话在gin.Context中的键名
const ContextSessionKey = "session"

// WithSession 把会话放入 context
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// FromContext 从 context 取出会话
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(*Session)
	return sess, ok && sess != nil
}

// CurrentSession 从gin.Context中获取会话
func CurrentSession(c *gin.Context) (*Session, bool) {
	if v, exists := c.Get(ContextSessionKey); exists {
		if sess, ok := v.(*Session); ok && sess != nil {
			return sess, true
		}
	}
	return FromContext(c.Request.Context())
}
