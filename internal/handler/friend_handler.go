package handler

import (
	"strconv"

	"pre-exam/internal/service"
	"pre-exam/pkg/response"

	"github.com/gin-gonic/gin"
)

// FriendHandler 好友处理器
type FriendHandler struct {
	friends *service.FriendService
	social  *service.SocialService
}

// NewFriendHandler 创建FriendHandler实例
func NewFriendHandler(friends *service.FriendService, social *service.SocialService) *FriendHandler {
	return &FriendHandler{friends: friends, social: social}
}

// CheckStatus 查看与某个用户的关系
func (h *FriendHandler) CheckStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	otherID, ok := paramID(c, "id")
	if !ok {
		return
	}

	status, err := h.friends.GetStatus(c.Request.Context(), userID, otherID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"status": status})
}

// SendRequest 发送好友请求
func (h *FriendHandler) SendRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var r friendRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if _, err := h.friends.SendRequest(c.Request.Context(), userID, r.FriendID); err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "好友请求已发送", gin.H{"status": "sent"})
}

// AcceptRequest 接受好友请求，friendId 为发起方
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var r friendRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if _, err := h.friends.AcceptRequest(c.Request.Context(), userID, r.FriendID); err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已添加为好友", gin.H{"status": "friends"})
}

// Remove 取消请求、拒绝请求或解除好友
func (h *FriendHandler) Remove(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	otherID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.friends.RemoveRelation(c.Request.Context(), userID, otherID); err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已删除", gin.H{"status": "none"})
}

// ListFriends 好友列表
func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	items, err := h.social.ListFriends(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, items)
}

// ListPending 收到的好友请求
func (h *FriendHandler) ListPending(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	items, err := h.social.ListPending(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, items)
}

// ListSent 发出的好友请求
func (h *FriendHandler) ListSent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	items, err := h.social.ListSent(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, items)
}

// Search 搜索用户
func (h *FriendHandler) Search(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	hits, err := h.social.Search(c.Request.Context(), userID, c.Query("q"), limit)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, hits)
}
