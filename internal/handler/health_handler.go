package handler

import (
	"net/http"

	"pre-exam/pkg/db"
	"pre-exam/pkg/pubsub"
	"pre-exam/pkg/redis"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查
type HealthHandler struct {
	local *pubsub.LocalBroker
}

// NewHealthHandler 创建HealthHandler实例，local 可以为 nil
func NewHealthHandler(local *pubsub.LocalBroker) *HealthHandler {
	return &HealthHandler{local: local}
}

// Check Redis 未启用时只检查数据库
func (h *HealthHandler) Check(c *gin.Context) {
	status := gin.H{"database": "ok"}
	code := http.StatusOK

	if err := db.HealthCheck(); err != nil {
		status["database"] = err.Error()
		code = http.StatusServiceUnavailable
	}

	if redis.Enabled() {
		status["redis"] = "ok"
		if err := redis.HealthCheck(); err != nil {
			status["redis"] = err.Error()
			code = http.StatusServiceUnavailable
		} else if ids, err := redis.GetOnlineUsers(); err == nil {
			status["online_users"] = len(ids)
		}
	} else {
		status["redis"] = "disabled"
	}

	if h.local != nil {
		status["live_sessions"] = h.local.Count()
	}

	bodyCode := 0
	if code != http.StatusOK {
		bodyCode = code
	}
	c.JSON(code, gin.H{"code": bodyCode, "message": "health", "data": status})
}
