// Package testdb 为测试提供已迁移的内存 SQLite 数据库
package testdb

import (
	"fmt"
	"testing"

	"pre-exam/config"
	"pre-exam/internal/model"
	dbPkg "pre-exam/pkg/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Open 打开独立的内存数据库并完成迁移，测试结束时自动关闭
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	orm, err := dbPkg.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		Database: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := orm.AutoMigrate(model.Models()...); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := orm.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return orm
}

// CreateUser 创建测试用户
func CreateUser(t testing.TB, orm *gorm.DB, username, displayName string) *model.User {
	t.Helper()

	u := &model.User{
		PublicID:     uuid.NewString(),
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: "x",
		Role:         model.RoleUser,
		Plan:         "free",
		Status:       model.UserStatusActive,
	}
	if err := orm.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}
