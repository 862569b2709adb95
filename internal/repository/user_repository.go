package repository

import (
	"context"
	"time"

	"pre-exam/internal/model"
	"pre-exam/pkg/apperr"

	"gorm.io/gorm"
)

// UserRepository 用户数据仓储
type UserRepository struct {
	orm *gorm.DB
}

// NewUserRepository 创建UserRepository实例
func NewUserRepository(orm *gorm.DB) *UserRepository {
	return &UserRepository{orm: orm}
}

// Create 创建用户，用户名或对外ID重复时返回 AlreadyExists
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.orm.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return apperr.New(apperr.KindAlreadyExists, "username %q is taken", user.Username)
		}
		return apperr.Internal(err, "create user failed")
	}
	return nil
}

// GetByID 根据ID获取用户
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).First(&u, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.New(apperr.KindNotFound, "user %d not found", id)
		}
		return nil, apperr.Internal(err, "load user failed")
	}
	return &u, nil
}

// GetByIDs 批量获取用户，返回 ID -> 用户
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*model.User, error) {
	result := make(map[uint]*model.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var users []*model.User
	if err := r.orm.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, apperr.Internal(err, "load users failed")
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

// GetByUsernameOrEmail 根据用户名或邮箱获取用户
func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error) {
	var u model.User
	err := r.orm.WithContext(ctx).
		Where("username = ? OR (email <> '' AND email = ?)", identifier, identifier).
		First(&u).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Internal(err, "load user failed")
	}
	return &u, nil
}

// Search 按用户名或显示名称做大小写无关的子串匹配，匹配 BeforeCreate 生成的 search_key
// 排除 excludeID 与已禁用用户，按存储顺序返回，最多 limit 条
func (r *UserRepository) Search(ctx context.Context, excludeID uint, query string, limit int) ([]*model.User, error) {
	pattern := likePattern(query)

	var users []*model.User
	err := r.orm.WithContext(ctx).
		Where("id <> ? AND status <> ?", excludeID, model.UserStatusDisabled).
		Where("search_key LIKE ? ESCAPE '!'", pattern).
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, apperr.Internal(err, "search users failed")
	}
	return users, nil
}

// UpdateStatus 更新用户在线状态
func (r *UserRepository) UpdateStatus(ctx context.Context, id uint, online bool) error {
	err := r.orm.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"online":    online,
			"last_seen": time.Now(),
		}).Error
	if err != nil {
		return apperr.Internal(err, "update user status failed")
	}
	return nil
}
