package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"pre-exam/config"
	"pre-exam/pkg/jwt"
	"pre-exam/pkg/pubsub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPresence struct {
	mu         sync.Mutex
	online     map[uint]bool
	heartbeats int
}

func (p *recordingPresence) SetOnline(_ context.Context, userID uint, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userID] = true
	return nil
}

func (p *recordingPresence) SetOffline(_ context.Context, userID uint) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userID] = false
	return nil
}

func (p *recordingPresence) Heartbeat(uint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.heartbeats++
}

func (p *recordingPresence) isOnline(userID uint) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online[userID]
}

func (p *recordingPresence) heartbeatCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.heartbeats
}

type harness struct {
	server   *httptest.Server
	broker   *pubsub.LocalBroker
	presence *recordingPresence
	jwt      *jwt.JWTService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &harness{
		broker:   pubsub.NewLocalBroker(4),
		presence: &recordingPresence{online: map[uint]bool{}},
		jwt: jwt.NewJWTService(config.JWTConfig{
			Secret:     "ws-secret",
			Issuer:     "pre-exam-test",
			ExpireTime: time.Hour,
		}),
	}
	ws := NewHandler(h.jwt, h.broker, h.presence, config.WebSocketConfig{
		PingInterval: time.Second,
		ReadTimeout:  5 * time.Second,
	})

	r := gin.New()
	r.GET("/ws", ws.Serve)
	h.server = httptest.NewServer(r)
	t.Cleanup(h.server.Close)
	return h
}

func (h *harness) dial(t *testing.T, userID uint) *websocket.Conn {
	t.Helper()
	token, err := h.jwt.GenerateToken(userID, "user", "user")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(h.server.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestServe_RejectsMissingOrBadToken(t *testing.T) {
	h := newHarness(t)
	base := "ws" + strings.TrimPrefix(h.server.URL, "http") + "/ws"

	cases := map[string]string{
		base:                    "missing token",
		base + "?token=garbage": "token is invalid or expired",
	}
	for url, message := range cases {
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body struct {
			Code    int    `json:"code"`
			Kind    string `json:"kind"`
			Message string `json:"message"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, body.Code)
		assert.Equal(t, "Unauthorized", body.Kind)
		assert.Equal(t, message, body.Message)
	}
}

func TestServe_DeliversPublishedEvents(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, 7)

	require.Eventually(t, func() bool { return h.broker.Online(7) && h.presence.isOnline(7) },
		2*time.Second, 10*time.Millisecond)

	ev, err := pubsub.NewEvent(pubsub.EventNewNotification, map[string]interface{}{
		"id":      1,
		"message": "bob sent you a friend request",
	})
	require.NoError(t, err)
	require.NoError(t, h.broker.Publish(context.Background(), 7, ev))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Type string `json:"type"`
		Data struct {
			ID      uint   `json:"id"`
			Message string `json:"message"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, "new_notification", got.Type)
	assert.Equal(t, uint(1), got.Data.ID)
	assert.Equal(t, "bob sent you a friend request", got.Data.Message)
}

func TestServe_HeartbeatAndOfflineOnClose(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, 9)
	require.Eventually(t, func() bool { return h.presence.isOnline(9) }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"heartbeat"}`)))
	require.Eventually(t, func() bool { return h.presence.heartbeatCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return !h.broker.Online(9) && !h.presence.isOnline(9) },
		2*time.Second, 10*time.Millisecond)
}

func TestServe_NewerConnectionReplacesOlder(t *testing.T) {
	h := newHarness(t)
	first := h.dial(t, 3)
	require.Eventually(t, func() bool { return h.broker.Online(3) }, 2*time.Second, 10*time.Millisecond)

	second := h.dial(t, 3)

	// 旧连接被服务端关闭
	_ = first.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := first.ReadMessage()
	require.Error(t, err)

	ev, err := pubsub.NewEvent(pubsub.EventNewNotification, map[string]string{"message": "hi"})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return h.broker.Publish(context.Background(), 3, ev) == nil && h.broker.Count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	_ = second.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := second.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"hi"`)

	// 旧连接关闭不会把仍然在线的用户标记为离线
	assert.True(t, h.presence.isOnline(3))
}
