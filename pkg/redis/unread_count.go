package redis

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// 未读通知计数相关常量
const (
	UnreadCountKeyPrefix = "preexam:unread:" // 未读通知计数key前缀
	UnreadCountTTL       = 24 * time.Hour
)

// 仅在计数已存在时递增，不存在时由下一次读取从数据库回填
var incrIfExists = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	local n = redis.call('INCR', KEYS[1])
	redis.call('EXPIRE', KEYS[1], ARGV[1])
	return n
end
return -1
`)

func unreadKey(userID uint) string {
	return UnreadCountKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// IncrementUnreadCount 增加用户未读通知计数
func IncrementUnreadCount(userID uint) error {
	if client == nil {
		return ErrNotInitialized
	}

	err := incrIfExists.Run(ctx, client, []string{unreadKey(userID)}, int(UnreadCountTTL.Seconds())).Err()
	if err != nil {
		return fmt.Errorf("增加未读通知计数失败: %w", err)
	}
	return nil
}

// GetUnreadCount 获取用户未读通知计数，缓存不存在时 ok 为 false
func GetUnreadCount(userID uint) (count int64, ok bool, err error) {
	if client == nil {
		return 0, false, ErrNotInitialized
	}

	count, err = client.Get(ctx, unreadKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("获取未读通知计数失败: %w", err)
	}
	return count, true, nil
}

// SetUnreadCount 设置用户未读通知计数（用于回填或重置）
func SetUnreadCount(userID uint, count int64) error {
	if client == nil {
		return ErrNotInitialized
	}

	if err := client.Set(ctx, unreadKey(userID), count, UnreadCountTTL).Err(); err != nil {
		return fmt.Errorf("设置未读通知计数失败: %w", err)
	}
	return nil
}

// DeleteUnreadCount 删除用户未读通知计数，下一次读取从数据库回填
func DeleteUnreadCount(userID uint) error {
	if client == nil {
		return ErrNotInitialized
	}

	if err := client.Del(ctx, unreadKey(userID)).Err(); err != nil {
		return fmt.Errorf("删除未读通知计数失败: %w", err)
	}
	return nil
}

// NotificationCounter 以 Redis 实现的未读计数缓存，供通知服务注入
type NotificationCounter struct{}

func (NotificationCounter) Increment(userID uint) error { return IncrementUnreadCount(userID) }

func (NotificationCounter) Get(userID uint) (int64, bool, error) { return GetUnreadCount(userID) }

func (NotificationCounter) Set(userID uint, count int64) error { return SetUnreadCount(userID, count) }

func (NotificationCounter) Invalidate(userID uint) error { return DeleteUnreadCount(userID) }
