package handler

import (
	"strconv"

	"pre-exam/pkg/apperr"
	"pre-exam/pkg/jwt"
	"pre-exam/pkg/response"

	"github.com/gin-gonic/gin"
)

// currentUserID 从会话获取当前用户ID，没有会话时直接写出 401
func currentUserID(c *gin.Context) (uint, bool) {
	sess, ok := jwt.CurrentSession(c)
	if !ok {
		response.Fail(c, apperr.New(apperr.KindUnauthorized, "login required"))
		return 0, false
	}
	return sess.UserID, true
}

// paramID 解析路径中的用户ID
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, apperr.New(apperr.KindInvalidArgument, "invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

// friendRequest 好友操作请求体
type friendRequest struct {
	FriendID uint `json:"friendId" binding:"required"`
}
