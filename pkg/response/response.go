package response

import (
	"net/http"

	"pre-exam/internal/model"
	"pre-exam/pkg/apperr"
	"pre-exam/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const timeLayout = "2006-01-02 15:04:05"

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`            // 状态码：0表示成功，其他与HTTP状态码一致
	Kind    string      `json:"kind,omitempty"`  // 错误类别，客户端据此判断
	Message string      `json:"message"`         // 响应消息
	Data    interface{} `json:"data,omitempty"`  // 响应数据
	Error   string      `json:"error,omitempty"` // 错误详情（仅在开发环境显示）
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	SuccessWithMessage(c, "success", data)
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Fail 按错误类别输出失败响应
func Fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	code := apperr.HTTPCode(kind)

	resp := Response{
		Code:    code,
		Kind:    string(kind),
		Message: apperr.MessageOf(err),
	}

	if kind == apperr.KindInternal {
		logger.Error("请求处理失败",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		// 在开发环境下显示错误详情
		if gin.Mode() == gin.DebugMode {
			resp.Error = err.Error()
		}
	}

	_ = c.Error(err)
	c.JSON(code, resp)
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	Fail(c, apperr.New(apperr.KindInvalidArgument, "%s", message))
}

// UserInfo 用户信息（隐藏敏感字段）
type UserInfo struct {
	ID          uint   `json:"id"`
	PublicID    string `json:"public_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	Role        string `json:"role"`
	Plan        string `json:"plan"`
	Status      string `json:"status"`
	Online      bool   `json:"online"`
	LastSeen    string `json:"last_seen,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// FilterUserInfo 过滤用户信息，隐藏敏感字段
func FilterUserInfo(user *model.User) *UserInfo {
	if user == nil {
		return nil
	}

	info := &UserInfo{
		ID:          user.ID,
		PublicID:    user.PublicID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Avatar:      user.Avatar,
		Role:        user.Role,
		Plan:        user.Plan,
		Status:      user.Status,
		Online:      user.Online,
		CreatedAt:   user.CreatedAt.Format(timeLayout),
	}
	if !user.LastSeen.IsZero() {
		info.LastSeen = user.LastSeen.Format(timeLayout)
	}
	return info
}

// AuthResponse 登录与注册响应
type AuthResponse struct {
	User        *UserInfo `json:"user"`
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
}
