package repository

import (
	"context"

	"pre-exam/internal/model"
	"pre-exam/pkg/apperr"

	"gorm.io/gorm"
)

// FriendRepository 好友关系数据仓储
// 所有按用户对的查询都走规范化的 (pair_low, pair_high) 唯一索引，与方向无关
type FriendRepository struct {
	db *gorm.DB
}

// NewFriendRepository 创建FriendRepository实例
func NewFriendRepository(db *gorm.DB) *FriendRepository {
	return &FriendRepository{db: db}
}

// Create 创建关系，用户对已存在关系时返回 AlreadyExists
func (r *FriendRepository) Create(ctx context.Context, rel *model.FriendRelation) error {
	if err := r.db.WithContext(ctx).Create(rel).Error; err != nil {
		if isDuplicateKey(err) {
			return apperr.New(apperr.KindAlreadyExists, "a relation between %d and %d already exists", rel.RequesterID, rel.TargetID)
		}
		return apperr.Internal(err, "create friend relation failed")
	}
	return nil
}

// FindBetween 查询两人之间的关系（双向）
func (r *FriendRepository) FindBetween(ctx context.Context, a, b uint) (*model.FriendRelation, error) {
	low, high := model.CanonicalPair(a, b)

	var rel model.FriendRelation
	err := r.db.WithContext(ctx).
		Where("pair_low = ? AND pair_high = ?", low, high).
		First(&rel).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.New(apperr.KindNotFound, "no relation between %d and %d", a, b)
		}
		return nil, apperr.Internal(err, "load friend relation failed")
	}
	return &rel, nil
}

// Accept 将 requesterID -> targetID 的待处理请求改为已接受
// 只有存在对应方向的 pending 行时才会更新，返回是否更新成功
func (r *FriendRepository) Accept(ctx context.Context, requesterID, targetID uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.FriendRelation{}).
		Where("requester_id = ? AND target_id = ? AND status = ?", requesterID, targetID, model.RelationPending).
		Update("status", model.RelationAccepted)
	if result.Error != nil {
		return false, apperr.Internal(result.Error, "accept friend request failed")
	}
	return result.RowsAffected == 1, nil
}

// DeleteBetween 删除两人之间的关系（不区分状态与方向），返回删除行数
func (r *FriendRepository) DeleteBetween(ctx context.Context, a, b uint) (int64, error) {
	low, high := model.CanonicalPair(a, b)

	result := r.db.WithContext(ctx).
		Where("pair_low = ? AND pair_high = ?", low, high).
		Delete(&model.FriendRelation{})
	if result.Error != nil {
		return 0, apperr.Internal(result.Error, "delete friend relation failed")
	}
	return result.RowsAffected, nil
}

// ListAccepted 获取用户的全部好友关系
func (r *FriendRepository) ListAccepted(ctx context.Context, userID uint) ([]*model.FriendRelation, error) {
	var rels []*model.FriendRelation
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? OR target_id = ?) AND status = ?", userID, userID, model.RelationAccepted).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&rels).Error
	if err != nil {
		return nil, apperr.Internal(err, "list friends failed")
	}
	return rels, nil
}

// ListPendingReceived 获取用户收到的待处理请求，最新的在前
func (r *FriendRepository) ListPendingReceived(ctx context.Context, userID uint) ([]*model.FriendRelation, error) {
	return r.listPending(ctx, "target_id = ?", userID)
}

// ListPendingSent 获取用户发出的待处理请求，最新的在前
func (r *FriendRepository) ListPendingSent(ctx context.Context, userID uint) ([]*model.FriendRelation, error) {
	return r.listPending(ctx, "requester_id = ?", userID)
}

func (r *FriendRepository) listPending(ctx context.Context, cond string, userID uint) ([]*model.FriendRelation, error) {
	var rels []*model.FriendRelation
	err := r.db.WithContext(ctx).
		Where(cond, userID).
		Where("status = ?", model.RelationPending).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rels).Error
	if err != nil {
		return nil, apperr.Internal(err, "list pending requests failed")
	}
	return rels, nil
}

// FindForUserAmong 批量查询 userID 与 others 中每个人的关系，返回 对方ID -> 关系
func (r *FriendRepository) FindForUserAmong(ctx context.Context, userID uint, others []uint) (map[uint]*model.FriendRelation, error) {
	result := make(map[uint]*model.FriendRelation, len(others))
	if len(others) == 0 {
		return result, nil
	}

	var rels []*model.FriendRelation
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND target_id IN ?) OR (target_id = ? AND requester_id IN ?)", userID, others, userID, others).
		Find(&rels).Error
	if err != nil {
		return nil, apperr.Internal(err, "load friend relations failed")
	}
	for _, rel := range rels {
		result[rel.Other(userID)] = rel
	}
	return result, nil
}
