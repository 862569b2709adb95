package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig().Server.Port, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 30*time.Second, cfg.WebSocket.PingInterval)
}

func TestLoadConfig_YAMLKeepsUnsetDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeFile(t, "server:\n  port: \"9090\"\njwt:\n  expireTime: 2h\n"))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	// 未出现在文件中的字段保留默认值
	assert.Equal(t, "pre-exam", cfg.JWT.Issuer)
	assert.Equal(t, 64, cfg.WebSocket.SendBuffer)
}

func TestLoadConfig_EnvOverridesYAML(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeFile(t, "server:\n  port: \"9090\"\nredis:\n  enabled: false\n"))
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("WS_READ_TIMEOUT", "15s")
	t.Setenv("NATS_SERVERS", "nats://a:4222,nats://b:4222")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 15*time.Second, cfg.WebSocket.ReadTimeout)
	assert.Equal(t, []string{"nats://a:4222", "nats://b:4222"}, cfg.NATS.Servers)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeFile(t, "server: [unclosed"))

	_, err := LoadConfig()
	assert.Error(t, err)
}
