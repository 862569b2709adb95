package model

import "time"

// 通知类型
const (
	NotificationSystem         = "system"
	NotificationFriendRequest  = "friend_request"
	NotificationFriendAccepted = "friend_accepted"
)

// Notification 用户通知
// 永久保留，只有已读标记会被修改

type Notification struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index:idx_notification_user_read,priority:1;comment:所属用户ID"`
	Kind      string    `gorm:"type:varchar(32);not null;default:'system';comment:通知类型"`
	ActorID   *uint     `gorm:"comment:触发通知的用户ID"`
	Message   string    `gorm:"type:text;not null;comment:通知内容"`
	IsRead    bool      `gorm:"not null;default:false;index:idx_notification_user_read,priority:2;comment:是否已读"`
	CreatedAt time.Time `gorm:"index;comment:创建时间"`
}

func (Notification) TableName() string { return "notification" }

// Models 需要自动迁移的全部模型
func Models() []interface{} {
	return []interface{}{&User{}, &FriendRelation{}, &Notification{}}
}
