package jwt

import (
	"strings"

	"pre-exam/pkg/apperr"
	"pre-exam/pkg/logger"
	"pre-exam/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BearerToken 从 Authorization 请求头提取令牌
func BearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// AuthMiddleware JWT认证中间件
// 从请求头中提取Authorization: Bearer <token>
// 验证token并将会话存入gin.Context和请求的context
func (s *JWTService) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := BearerToken(c)
		if tokenString == "" {
			response.Fail(c, apperr.New(apperr.KindUnauthorized, "missing bearer token"))
			c.Abort()
			return
		}

		sess, err := s.SessionFromToken(tokenString)
		if err != nil {
			logger.Warn("JWT验证失败",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
			)
			response.Fail(c, apperr.New(apperr.KindUnauthorized, "token is invalid or expired"))
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, sess)
		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), sess))

		c.Next()
	}
}
