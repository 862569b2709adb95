package redis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// PresenceData 在线状态数据
type PresenceData struct {
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Status    string    `json:"status"` // online/offline
	LastSeen  time.Time `json:"last_seen"`
	Connected bool      `json:"connected"` // 是否有活跃连接
}

// 在线状态相关常量
const (
	PresenceKeyPrefix = "preexam:presence:user:" // 用户在线状态key前缀
	OnlineUsersKey    = "preexam:online:users"   // 在线用户集合key
	PresenceTTL       = 2 * time.Minute          // 在线状态TTL（2倍心跳周期）
)

func presenceKey(userID uint) string {
	return PresenceKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// SetUserPresence 设置用户在线状态
func SetUserPresence(userID uint, username string, status string) error {
	if client == nil {
		return ErrNotInitialized
	}

	presence := PresenceData{
		UserID:    userID,
		Username:  username,
		Status:    status,
		LastSeen:  time.Now(),
		Connected: status == "online",
	}

	data, err := json.Marshal(presence)
	if err != nil {
		return fmt.Errorf("序列化在线状态失败: %w", err)
	}

	pipe := client.TxPipeline()
	if presence.Connected {
		pipe.Set(ctx, presenceKey(userID), data, PresenceTTL)
		pipe.SAdd(ctx, OnlineUsersKey, userID)
	} else {
		pipe.Del(ctx, presenceKey(userID))
		pipe.SRem(ctx, OnlineUsersKey, userID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("设置用户在线状态失败: %w", err)
	}

	return nil
}

// IsUserOnline 检查用户是否在线（任意实例上存在活跃连接）
func IsUserOnline(userID uint) (bool, error) {
	if client == nil {
		return false, ErrNotInitialized
	}

	exists, err := client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("检查用户在线状态失败: %w", err)
	}

	return exists > 0, nil
}

// RefreshUserPresence 刷新用户在线状态（延长TTL）
func RefreshUserPresence(userID uint) error {
	if client == nil {
		return ErrNotInitialized
	}

	ok, err := client.Expire(ctx, presenceKey(userID), PresenceTTL).Result()
	if err != nil {
		return fmt.Errorf("刷新用户在线状态失败: %w", err)
	}
	if !ok {
		return fmt.Errorf("用户不在线")
	}

	return nil
}

// GetOnlineUsers 获取所有在线用户ID列表，顺带清理已过期的成员
func GetOnlineUsers() ([]uint, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}

	members, err := client.SMembers(ctx, OnlineUsersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("获取在线用户列表失败: %w", err)
	}

	var userIDs []uint
	for _, member := range members {
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue
		}
		online, err := IsUserOnline(uint(id))
		if err != nil {
			return nil, err
		}
		if !online {
			client.SRem(ctx, OnlineUsersKey, member)
			continue
		}
		userIDs = append(userIDs, uint(id))
	}

	return userIDs, nil
}
