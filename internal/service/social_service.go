package service

import (
	"context"
	"strings"
	"time"

	"pre-exam/internal/model"
	"pre-exam/internal/repository"
	"pre-exam/pkg/apperr"
)

// 搜索条数
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 50
)

// Profile 对外展示的用户资料
type Profile struct {
	ID          uint   `json:"id"`
	PublicID    string `json:"public_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	Plan        string `json:"plan"`
	Online      bool   `json:"online"`
}

func profileOf(u *model.User) Profile {
	return Profile{
		ID:          u.ID,
		PublicID:    u.PublicID,
		Username:    u.Username,
		DisplayName: u.Name(),
		Avatar:      u.Avatar,
		Plan:        u.Plan,
		Online:      u.Online,
	}
}

// FriendItem 好友列表项
type FriendItem struct {
	Profile
	Since time.Time `json:"since"`
}

// PendingItem 待处理请求列表项
type PendingItem struct {
	Profile
	RequestedAt time.Time `json:"requested_at"`
}

// SearchHit 搜索结果，附带查看者与该用户的关系
type SearchHit struct {
	Profile
	Status model.FriendView `json:"status"`
}

// SocialService 好友相关查询
type SocialService struct {
	friends *repository.FriendRepository
	users   *repository.UserRepository
}

// NewSocialService 创建SocialService实例
func NewSocialService(friends *repository.FriendRepository, users *repository.UserRepository) *SocialService {
	return &SocialService{friends: friends, users: users}
}

// ListFriends 获取好友列表
func (s *SocialService) ListFriends(ctx context.Context, userID uint) ([]FriendItem, error) {
	rels, err := s.friends.ListAccepted(ctx, userID)
	if err != nil {
		return nil, err
	}
	profiles, err := s.usersOf(ctx, rels, userID)
	if err != nil {
		return nil, err
	}

	items := make([]FriendItem, 0, len(rels))
	for _, rel := range rels {
		u, ok := profiles[rel.Other(userID)]
		if !ok {
			continue
		}
		items = append(items, FriendItem{Profile: profileOf(u), Since: rel.UpdatedAt})
	}
	return items, nil
}

// ListPending 获取收到的待处理请求，最新的在前
func (s *SocialService) ListPending(ctx context.Context, userID uint) ([]PendingItem, error) {
	rels, err := s.friends.ListPendingReceived(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.pendingItems(ctx, rels, userID)
}

// ListSent 获取自己发出且尚未处理的请求，最新的在前
func (s *SocialService) ListSent(ctx context.Context, userID uint) ([]PendingItem, error) {
	rels, err := s.friends.ListPendingSent(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.pendingItems(ctx, rels, userID)
}

func (s *SocialService) pendingItems(ctx context.Context, rels []*model.FriendRelation, userID uint) ([]PendingItem, error) {
	profiles, err := s.usersOf(ctx, rels, userID)
	if err != nil {
		return nil, err
	}
	items := make([]PendingItem, 0, len(rels))
	for _, rel := range rels {
		u, ok := profiles[rel.Other(userID)]
		if !ok {
			continue
		}
		items = append(items, PendingItem{Profile: profileOf(u), RequestedAt: rel.CreatedAt})
	}
	return items, nil
}

// Search 按用户名或显示名称搜索用户，并标注与查看者的关系
func (s *SocialService) Search(ctx context.Context, viewerID uint, query string, limit int) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "search query is required")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	users, err := s.users.Search(ctx, viewerID, query, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	rels, err := s.friends.FindForUserAmong(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(users))
	for _, u := range users {
		hits = append(hits, SearchHit{
			Profile: profileOf(u),
			Status:  rels[u.ID].ViewOf(viewerID),
		})
	}
	return hits, nil
}

func (s *SocialService) usersOf(ctx context.Context, rels []*model.FriendRelation, userID uint) (map[uint]*model.User, error) {
	ids := make([]uint, 0, len(rels))
	for _, rel := range rels {
		ids = append(ids, rel.Other(userID))
	}
	return s.users.GetByIDs(ctx, ids)
}
