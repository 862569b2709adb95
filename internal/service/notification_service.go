package service

import (
	"context"
	"time"

	"pre-exam/internal/model"
	"pre-exam/internal/repository"
	"pre-exam/pkg/logger"
	"pre-exam/pkg/pubsub"

	"go.uber.org/zap"
)

// UnreadCounter 未读通知计数缓存
type UnreadCounter interface {
	Increment(userID uint) error
	Get(userID uint) (count int64, ok bool, err error)
	Set(userID uint, count int64) error
	Invalidate(userID uint) error
}

// NotificationPayload 实时推送的通知内容
type NotificationPayload struct {
	ID        uint      `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationService 通知服务
// 先落库，再尽力推送；推送失败只记日志
type NotificationService struct {
	repo      *repository.NotificationRepository
	publisher pubsub.Publisher
	counter   UnreadCounter
}

// NewNotificationService 创建NotificationService实例，counter 可以为 nil
func NewNotificationService(repo *repository.NotificationRepository, publisher pubsub.Publisher, counter UnreadCounter) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		counter:   counter,
	}
}

// Notify 给用户发送一条系统通知
func (s *NotificationService) Notify(ctx context.Context, userID uint, message string) (*model.Notification, error) {
	return s.NotifyKind(ctx, userID, model.NotificationSystem, nil, message)
}

// NotifyKind 给用户发送指定类型的通知
func (s *NotificationService) NotifyKind(ctx context.Context, userID uint, kind string, actorID *uint, message string) (*model.Notification, error) {
	n := &model.Notification{
		UserID:  userID,
		Kind:    kind,
		ActorID: actorID,
		Message: message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	if s.counter != nil {
		if err := s.counter.Increment(userID); err != nil {
			logger.Warn("更新未读计数失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}

	s.push(ctx, n)
	return n, nil
}

// push 推送到在线连接，用户不在线时由 broker 静默丢弃
func (s *NotificationService) push(ctx context.Context, n *model.Notification) {
	if s.publisher == nil {
		return
	}
	ev, err := pubsub.NewEvent(pubsub.EventNewNotification, NotificationPayload{
		ID:        n.ID,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, n.UserID, ev)
	}
	if err != nil {
		logger.Warn("通知推送失败",
			zap.Uint("user_id", n.UserID),
			zap.Uint("notification_id", n.ID),
			zap.Error(err),
		)
	}
}

// ListNotifications 获取用户全部通知，最新的在前
func (s *NotificationService) ListNotifications(ctx context.Context, userID uint) ([]*model.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

// MarkAllRead 将用户全部通知标记为已读，返回本次标记的条数
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	// 删除而不是置零，避免覆盖并发的递增
	if s.counter != nil {
		if err := s.counter.Invalidate(userID); err != nil {
			logger.Warn("清除未读计数失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return n, nil
}

// UnreadCount 未读通知数，优先读缓存，缓存缺失时查库并回填
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	if s.counter != nil {
		count, ok, err := s.counter.Get(userID)
		if err == nil && ok {
			return count, nil
		}
		if err != nil {
			logger.Debug("读取未读计数缓存失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.counter != nil {
		if err := s.counter.Set(userID, count); err != nil {
			logger.Debug("回填未读计数失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return count, nil
}
