package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// 用户角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// 用户状态，用户不会被物理删除，禁用即为软删除
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// User 用户模型
// 索引与唯一约束：用户名唯一、对外ID唯一
// 说明：密码仅存储哈希（PasswordHash），不存储明文
// Online/LastSeen 由 WebSocket 连接维护

type User struct {
	ID           uint      `gorm:"primaryKey"`
	PublicID     string    `gorm:"type:varchar(36);not null;uniqueIndex;comment:对外ID"`
	Username     string    `gorm:"type:varchar(64);not null;uniqueIndex;comment:用户名"`
	Email        string    `gorm:"type:varchar(128);index;comment:邮箱"`
	PasswordHash string    `gorm:"type:varchar(255);not null;comment:密码哈希"`
	DisplayName  string    `gorm:"type:varchar(64);index;comment:显示名称"`
	SearchKey    string    `gorm:"type:varchar(160);not null;default:'';comment:搜索键（小写的用户名与显示名称）"`
	Avatar       string    `gorm:"type:varchar(255);comment:头像URL"`
	Role         string    `gorm:"type:varchar(16);not null;default:'user';comment:角色"`
	Plan         string    `gorm:"type:varchar(32);not null;default:'free';comment:套餐等级"`
	Status       string    `gorm:"type:varchar(16);not null;default:'active';comment:账号状态"`
	Online       bool      `gorm:"not null;default:false;comment:是否在线"`
	LastSeen     time.Time `gorm:"comment:最近在线时间"`
	CreatedAt    time.Time `gorm:"comment:创建时间"`
	UpdatedAt    time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名（因全局配置使用单数表名，这里与结构体名一致为 user）
func (User) TableName() string { return "user" }

// Name 展示用名称，未设置显示名称时回退到用户名
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Active 账号是否可用
func (u *User) Active() bool {
	return u.Status != UserStatusDisabled
}

// BuildSearchKey 在 Go 中统一做 Unicode 小写，数据库端只做子串匹配
func BuildSearchKey(username, displayName string) string {
	return strings.ToLower(username + "\n" + displayName)
}

// BeforeCreate 写入前生成搜索键
func (u *User) BeforeCreate(_ *gorm.DB) error {
	u.SearchKey = BuildSearchKey(u.Username, u.DisplayName)
	return nil
}
