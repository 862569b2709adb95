package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"pre-exam/internal/model"
	"pre-exam/internal/repository"
	"pre-exam/pkg/apperr"
	"pre-exam/pkg/jwt"
	"pre-exam/pkg/logger"
	"pre-exam/pkg/password"
	"pre-exam/pkg/redis"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService 用户服务
type UserService struct {
	repo       *repository.UserRepository
	jwtService *jwt.JWTService
}

// NewUserService 创建UserService实例
func NewUserService(repo *repository.UserRepository, jwtService *jwt.JWTService) *UserService {
	return &UserService{repo: repo, jwtService: jwtService}
}

// Register 注册
func (s *UserService) Register(ctx context.Context, username, email, plainPassword, displayName string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	displayName = strings.TrimSpace(displayName)
	if username == "" || plainPassword == "" {
		return nil, "", apperr.New(apperr.KindInvalidArgument, "username and password are required")
	}
	// 密码哈希
	hash, err := password.Hash(plainPassword)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return nil, "", apperr.New(apperr.KindInvalidArgument, "password is too long")
		}
		return nil, "", apperr.Internal(err, "hash password failed")
	}
	user := &model.User{
		PublicID:     uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		Role:         model.RoleUser,
		Plan:         "free",
		Status:       model.UserStatusActive,
		LastSeen:     time.Now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, "", err
	}
	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login 登录
func (s *UserService) Login(ctx context.Context, identifier, plainPassword string) (*model.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || plainPassword == "" {
		return nil, "", apperr.New(apperr.KindInvalidArgument, "identifier and password are required")
	}
	u, err := s.repo.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, "", apperr.New(apperr.KindUnauthorized, "invalid credentials")
		}
		return nil, "", err
	}
	if !password.Verify(plainPassword, u.PasswordHash) {
		return nil, "", apperr.New(apperr.KindUnauthorized, "invalid credentials")
	}
	if !u.Active() {
		return nil, "", apperr.New(apperr.KindUnauthorized, "account is disabled")
	}
	token, err := s.issue(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *UserService) issue(u *model.User) (string, error) {
	token, err := s.jwtService.GenerateToken(u.ID, u.Username, u.Role)
	if err != nil {
		return "", apperr.Internal(err, "issue token failed")
	}
	return token, nil
}

// TokenTTL 令牌有效期（秒）
func (s *UserService) TokenTTL() int64 {
	return int64(s.jwtService.ExpireAfter().Seconds())
}

// Profile 获取用户资料
func (s *UserService) Profile(ctx context.Context, userID uint) (*model.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// EnsureActive 校验会话对应的账号仍然可用，令牌签发后被禁用的账号同样拒绝
func (s *UserService) EnsureActive(ctx context.Context, userID uint) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return apperr.New(apperr.KindUnauthorized, "account no longer exists")
		}
		return err
	}
	if !u.Active() {
		return apperr.New(apperr.KindUnauthorized, "account is disabled")
	}
	return nil
}

// Logout 登出：仅把用户标记为离线，令牌自然过期
func (s *UserService) Logout(ctx context.Context, userID uint) error {
	return s.SetOffline(ctx, userID)
}

// SetOnline 标记用户在线（数据库 + Redis）
func (s *UserService) SetOnline(ctx context.Context, userID uint, username string) error {
	if err := s.repo.UpdateStatus(ctx, userID, true); err != nil {
		return err
	}
	if redis.Enabled() {
		if err := redis.SetUserPresence(userID, username, "online"); err != nil {
			logger.Warn("更新在线状态缓存失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// SetOffline 标记用户离线（数据库 + Redis）
func (s *UserService) SetOffline(ctx context.Context, userID uint) error {
	if err := s.repo.UpdateStatus(ctx, userID, false); err != nil {
		return err
	}
	if redis.Enabled() {
		if err := redis.SetUserPresence(userID, "", "offline"); err != nil {
			logger.Warn("更新在线状态缓存失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// Heartbeat 刷新在线状态的过期时间
func (s *UserService) Heartbeat(userID uint) {
	if !redis.Enabled() {
		return
	}
	if err := redis.RefreshUserPresence(userID); err != nil {
		logger.Debug("刷新在线状态失败", zap.Uint("user_id", userID), zap.Error(err))
	}
}
