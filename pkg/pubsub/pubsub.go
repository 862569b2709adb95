// Package pubsub 实时推送的发布订阅接口
// 通知持久化之后通过 Publisher 投递，投递与存储完全解耦
package pubsub

import (
	"context"
	"encoding/json"
	"sync"
)

// 事件类型
const EventNewNotification = "new_notification"

// Event 推送给客户端的事件
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewEvent 构造事件，data 会被序列化为 JSON
func NewEvent(typ string, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: typ, Data: raw}, nil
}

// Publisher 向指定用户发布事件，用户不在线时静默丢弃
type Publisher interface {
	Publish(ctx context.Context, userID uint, ev Event) error
}

// Broker 发布订阅
type Broker interface {
	Publisher
	Subscribe(userID uint) *Subscription
}

// Subscription 某个用户的事件流
type Subscription struct {
	userID   uint
	ch       chan Event
	broker   *LocalBroker
	closed   bool // 由 broker.mu 保护
	replaced bool // 由 broker.mu 保护
}

// C 事件通道，订阅被关闭或被新订阅替换时关闭
func (s *Subscription) C() <-chan Event { return s.ch }

// UserID 订阅所属用户
func (s *Subscription) UserID() uint { return s.userID }

// Close 取消订阅，可重复调用
func (s *Subscription) Close() {
	b := s.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	if cur, ok := b.subs[s.userID]; ok && cur == s {
		delete(b.subs, s.userID)
	}
	s.closeLocked()
}

// Replaced 是否因为同一用户的新订阅而被关闭
func (s *Subscription) Replaced() bool {
	s.broker.mu.RLock()
	defer s.broker.mu.RUnlock()
	return s.replaced
}

func (s *Subscription) closeLocked() {
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// LocalBroker 进程内的发布订阅，每个用户最多一个消费者
type LocalBroker struct {
	mu     sync.RWMutex
	subs   map[uint]*Subscription
	buffer int
}

// NewLocalBroker 创建进程内 broker，buffer 为每个订阅的缓冲大小
func NewLocalBroker(buffer int) *LocalBroker {
	if buffer <= 0 {
		buffer = 64
	}
	return &LocalBroker{
		subs:   make(map[uint]*Subscription),
		buffer: buffer,
	}
}

// Subscribe 订阅用户事件，同一用户已有订阅时旧订阅被关闭
func (b *LocalBroker) Subscribe(userID uint) *Subscription {
	sub := &Subscription{
		userID: userID,
		ch:     make(chan Event, b.buffer),
		broker: b,
	}

	b.mu.Lock()
	if old, ok := b.subs[userID]; ok {
		old.replaced = true
		old.closeLocked()
	}
	b.subs[userID] = sub
	b.mu.Unlock()

	return sub
}

// Publish 非阻塞投递，缓冲已满时丢弃
func (b *LocalBroker) Publish(_ context.Context, userID uint, ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	sub, ok := b.subs[userID]
	if !ok {
		return nil
	}
	select {
	case sub.ch <- ev:
	default:
	}
	return nil
}

// Online 该用户在本实例上是否有订阅
func (b *LocalBroker) Online(userID uint) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subs[userID]
	return ok
}

// Count 当前订阅数
func (b *LocalBroker) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
