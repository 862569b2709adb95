package handler

import (
	"pre-exam/internal/service"
	"pre-exam/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireActive 在 JWT 中间件之后使用，拒绝已被禁用的账号
func RequireActive(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.Abort()
			return
		}
		if err := users.EnsureActive(c.Request.Context(), userID); err != nil {
			response.Fail(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
