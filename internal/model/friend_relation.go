package model

import (
	"time"

	"gorm.io/gorm"
)

// RelationStatus 好友关系状态
type RelationStatus string

const (
	RelationPending  RelationStatus = "pending"
	RelationAccepted RelationStatus = "accepted"
)

// RelationRole 某个用户在关系中的角色
type RelationRole string

const (
	RoleNone      RelationRole = ""
	RoleRequester RelationRole = "requester"
	RoleTarget    RelationRole = "target"
)

// FriendView 从查看者角度看到的关系
type FriendView string

const (
	ViewNone     FriendView = "none"
	ViewSent     FriendView = "sent"
	ViewReceived FriendView = "received"
	ViewFriends  FriendView = "friends"
)

// FriendRelation 好友关系
// RequesterID 为发起方，TargetID 为接收方
// PairLow/PairHigh 为规范化后的用户对，联合唯一索引保证每对用户至多一行

type FriendRelation struct {
	ID          uint           `gorm:"primaryKey"`
	RequesterID uint           `gorm:"not null;index;comment:发起方用户ID"`
	TargetID    uint           `gorm:"not null;index;comment:接收方用户ID"`
	PairLow     uint           `gorm:"not null;uniqueIndex:uk_friend_pair,priority:1;comment:较小的用户ID"`
	PairHigh    uint           `gorm:"not null;uniqueIndex:uk_friend_pair,priority:2;comment:较大的用户ID"`
	Status      RelationStatus `gorm:"type:varchar(16);not null;default:'pending';index;comment:关系状态"`
	CreatedAt   time.Time      `gorm:"comment:创建时间"`
	UpdatedAt   time.Time      `gorm:"comment:更新时间"`
}

func (FriendRelation) TableName() string { return "friend_relation" }

// CanonicalPair 返回规范化的用户对 (min, max)
func CanonicalPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// BeforeCreate 写入前填充规范化用户对
func (r *FriendRelation) BeforeCreate(_ *gorm.DB) error {
	r.PairLow, r.PairHigh = CanonicalPair(r.RequesterID, r.TargetID)
	return nil
}

// RoleOf 返回 userID 在关系中的角色
func (r *FriendRelation) RoleOf(userID uint) RelationRole {
	switch userID {
	case r.RequesterID:
		return RoleRequester
	case r.TargetID:
		return RoleTarget
	default:
		return RoleNone
	}
}

// Other 返回关系中的另一方
func (r *FriendRelation) Other(userID uint) uint {
	if userID == r.RequesterID {
		return r.TargetID
	}
	return r.RequesterID
}

// ViewOf 从 viewerID 的角度解释这条关系，nil 表示无关系
func (r *FriendRelation) ViewOf(viewerID uint) FriendView {
	if r == nil {
		return ViewNone
	}
	if r.Status == RelationAccepted {
		return ViewFriends
	}
	switch r.RoleOf(viewerID) {
	case RoleRequester:
		return ViewSent
	case RoleTarget:
		return ViewReceived
	default:
		return ViewNone
	}
}
