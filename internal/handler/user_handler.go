package handler

import (
	"pre-exam/internal/service"
	"pre-exam/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler 创建UserHandler实例
func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	type req struct {
		Username    string `json:"username" binding:"required"`
		Email       string `json:"email"`
		Password    string `json:"password" binding:"required"`
		DisplayName string `json:"displayName"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Register(c.Request.Context(), r.Username, r.Email, r.Password, r.DisplayName)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.SuccessWithMessage(c, "注册成功", &response.AuthResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
		ExpiresIn:   h.service.TokenTTL(),
	})
}

// Login 用户登录
func (h *UserHandler) Login(c *gin.Context) {
	type req struct {
		UsernameOrEmail string `json:"usernameOrEmail" binding:"required"`
		Password        string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Login(c.Request.Context(), r.UsernameOrEmail, r.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.SuccessWithMessage(c, "登录成功", &response.AuthResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
		ExpiresIn:   h.service.TokenTTL(),
	})
}

// GetProfile 获取当前用户资料
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "获取用户资料成功", response.FilterUserInfo(user))
}

// Logout 用户登出：仅更新在线状态为离线
func (h *UserHandler) Logout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.service.Logout(c.Request.Context(), userID); err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已离线", nil)
}
