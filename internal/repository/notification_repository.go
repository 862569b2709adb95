package repository

import (
	"context"

	"pre-exam/internal/model"
	"pre-exam/pkg/apperr"

	"gorm.io/gorm"
)

// NotificationRepository 通知数据仓储
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建NotificationRepository实例
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create 保存通知
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return apperr.Internal(err, "save notification failed")
	}
	return nil
}

// ListByUser 获取用户的全部通知，最新的在前
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uint) ([]*model.Notification, error) {
	var items []*model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, apperr.Internal(err, "list notifications failed")
	}
	return items, nil
}

// MarkAllRead 将用户所有未读通知标记为已读，返回受影响行数
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, apperr.Internal(result.Error, "mark notifications read failed")
	}
	return result.RowsAffected, nil
}

// CountUnread 获取用户未读通知数量
func (r *NotificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Internal(err, "count unread notifications failed")
	}
	return count, nil
}
