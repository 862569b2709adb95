package service

import (
	"context"
	"fmt"

	"pre-exam/internal/model"
	"pre-exam/internal/repository"
	"pre-exam/pkg/apperr"
	"pre-exam/pkg/logger"

	"go.uber.org/zap"
)

// Notifier 通知出口，好友服务只依赖这个接口
type Notifier interface {
	NotifyKind(ctx context.Context, userID uint, kind string, actorID *uint, message string) (*model.Notification, error)
}

// FriendService 好友关系服务
type FriendService struct {
	friends  *repository.FriendRepository
	users    *repository.UserRepository
	notifier Notifier
}

// NewFriendService 创建FriendService实例
func NewFriendService(friends *repository.FriendRepository, users *repository.UserRepository, notifier Notifier) *FriendService {
	return &FriendService{
		friends:  friends,
		users:    users,
		notifier: notifier,
	}
}

// SendRequest requesterID 向 targetID 发送好友请求
func (s *FriendService) SendRequest(ctx context.Context, requesterID, targetID uint) (*model.FriendRelation, error) {
	if requesterID == targetID {
		return nil, apperr.New(apperr.KindInvalidTarget, "cannot add yourself as a friend")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !target.Active() {
		return nil, apperr.New(apperr.KindNotFound, "user %d not found", targetID)
	}
	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	// 唯一索引兜底并发，这里提前检查只是为了给出更明确的提示
	if existing, err := s.friends.FindBetween(ctx, requesterID, targetID); err == nil {
		return nil, alreadyRelated(existing, requesterID)
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return nil, err
	}

	rel := &model.FriendRelation{
		RequesterID: requesterID,
		TargetID:    targetID,
		Status:      model.RelationPending,
	}
	if err := s.friends.Create(ctx, rel); err != nil {
		return nil, err
	}

	s.notify(ctx, targetID, model.NotificationFriendRequest, requesterID,
		fmt.Sprintf("%s sent you a friend request", requester.Name()))
	return rel, nil
}

// AcceptRequest targetID 接受 requesterID 发来的请求
func (s *FriendService) AcceptRequest(ctx context.Context, targetID, requesterID uint) (*model.FriendRelation, error) {
	ok, err := s.friends.Accept(ctx, requesterID, targetID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "no pending request from %d", requesterID)
	}

	rel, err := s.friends.FindBetween(ctx, requesterID, targetID)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("user %d", targetID)
	if target, err := s.users.GetByID(ctx, targetID); err == nil {
		name = target.Name()
	}
	s.notify(ctx, requesterID, model.NotificationFriendAccepted, targetID,
		fmt.Sprintf("%s accepted your friend request", name))
	return rel, nil
}

// RemoveRelation 删除两人之间的关系：取消请求、拒绝请求、解除好友都走这里，不发通知
func (s *FriendService) RemoveRelation(ctx context.Context, userID, otherID uint) error {
	n, err := s.friends.DeleteBetween(ctx, userID, otherID)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "no relation with user %d", otherID)
	}
	return nil
}

// GetStatus 从 viewerID 的角度查看与 otherID 的关系
func (s *FriendService) GetStatus(ctx context.Context, viewerID, otherID uint) (model.FriendView, error) {
	rel, err := s.friends.FindBetween(ctx, viewerID, otherID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return model.ViewNone, nil
		}
		return "", err
	}
	return rel.ViewOf(viewerID), nil
}

// notify 关系已经提交，通知失败只记录日志
func (s *FriendService) notify(ctx context.Context, userID uint, kind string, actorID uint, message string) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.NotifyKind(ctx, userID, kind, &actorID, message); err != nil {
		logger.Error("发送好友通知失败",
			zap.Uint("user_id", userID),
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
}

func alreadyRelated(rel *model.FriendRelation, viewerID uint) error {
	switch rel.ViewOf(viewerID) {
	case model.ViewFriends:
		return apperr.New(apperr.KindAlreadyExists, "you are already friends")
	case model.ViewReceived:
		return apperr.New(apperr.KindAlreadyExists, "this user has already sent you a request")
	default:
		return apperr.New(apperr.KindAlreadyExists, "friend request already sent")
	}
}
