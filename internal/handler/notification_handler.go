package handler

import (
	"time"

	"pre-exam/internal/model"
	"pre-exam/internal/service"
	"pre-exam/pkg/response"

	"github.com/gin-gonic/gin"
)

// NotificationHandler 通知处理器
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler 创建NotificationHandler实例
func NewNotificationHandler(s *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: s}
}

// notificationItem 通知列表项
type notificationItem struct {
	ID        uint      `json:"id"`
	Kind      string    `json:"kind"`
	ActorID   *uint     `json:"actor_id,omitempty"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationItems(items []*model.Notification) []notificationItem {
	out := make([]notificationItem, 0, len(items))
	for _, n := range items {
		out = append(out, notificationItem{
			ID:        n.ID,
			Kind:      n.Kind,
			ActorID:   n.ActorID,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}

// List 获取通知列表
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	items, err := h.service.ListNotifications(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, toNotificationItems(items))
}

// UnreadCount 获取未读通知数
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"unread": count})
}

// MarkAllRead 全部标记为已读
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	updated, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已全部标记为已读", gin.H{"updated": updated})
}
