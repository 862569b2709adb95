package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"pre-exam/config"
	"pre-exam/internal/model"
	"pre-exam/internal/repository"
	"pre-exam/internal/testdb"
	"pre-exam/pkg/apperr"
	"pre-exam/pkg/jwt"
	"pre-exam/pkg/password"
	"pre-exam/pkg/pubsub"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	password.Cost = bcrypt.MinCost
}

type fixture struct {
	orm           *gorm.DB
	broker        *pubsub.LocalBroker
	counter       *memCounter
	users         *repository.UserRepository
	notifications *NotificationService
	friends       *FriendService
	social        *SocialService
	accounts      *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	orm := testdb.Open(t)
	f := &fixture{
		orm:     orm,
		broker:  pubsub.NewLocalBroker(8),
		counter: newMemCounter(),
		users:   repository.NewUserRepository(orm),
	}
	friendRepo := repository.NewFriendRepository(orm)
	f.notifications = NewNotificationService(repository.NewNotificationRepository(orm), f.broker, f.counter)
	f.friends = NewFriendService(friendRepo, f.users, f.notifications)
	f.social = NewSocialService(friendRepo, f.users)
	f.accounts = NewUserService(f.users, jwt.NewJWTService(config.JWTConfig{
		Secret:     "test-secret",
		Issuer:     "pre-exam-test",
		ExpireTime: time.Hour,
	}))
	return f
}

func (f *fixture) status(t *testing.T, viewer, other uint) model.FriendView {
	t.Helper()
	v, err := f.friends.GetStatus(context.Background(), viewer, other)
	require.NoError(t, err)
	return v
}

// memCounter 内存版未读计数，行为与 Redis 版一致：只在已存在时递增
type memCounter struct {
	mu     sync.Mutex
	counts map[uint]int64
}

func newMemCounter() *memCounter {
	return &memCounter{counts: make(map[uint]int64)}
}

func (c *memCounter) Increment(userID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.counts[userID]; ok {
		c.counts[userID] = n + 1
	}
	return nil
}

func (c *memCounter) Get(userID uint) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.counts[userID]
	return n, ok, nil
}

func (c *memCounter) Set(userID uint, count int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[userID] = count
	return nil
}

func (c *memCounter) Invalidate(userID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, userID)
	return nil
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, uint, pubsub.Event) error {
	return errors.New("broker down")
}

type failingNotifier struct{ calls int }

func (n *failingNotifier) NotifyKind(context.Context, uint, string, *uint, string) (*model.Notification, error) {
	n.calls++
	return nil, errors.New("notification store down")
}

func isKind(err error, kind apperr.Kind) bool {
	return err != nil && apperr.KindOf(err) == kind
}

func decodePayload(t *testing.T, ev pubsub.Event) NotificationPayload {
	t.Helper()
	var p NotificationPayload
	require.NoError(t, json.Unmarshal(ev.Data, &p))
	return p
}
