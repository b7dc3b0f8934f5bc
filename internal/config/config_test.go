package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Parallel()

	content := `
server:
  host: "127.0.0.1"
  port: 8080
  mode: release
  max_connections: 5000

redis:
  addr: "redis:6379"
  password: "secret"
  db: 1

database:
  dsn: "host=db user=truco dbname=truco sslmode=disable"

game:
  reconnect_grace: 45
  room_timeout: 15
  target_score: 15
  history_size: 5

security:
  allowed_origins:
    - "http://localhost:3000"
    - "https://example.com"
  rate_limit:
    max_per_second: 20
    max_per_minute: 120
    ban_duration: 120
  message_limit:
    max_per_second: 50
  chat_limit:
    max_per_second: 2
    max_per_minute: 60
    cooldown: 10
`
	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 5000, cfg.Server.MaxConnections)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 1, cfg.Redis.DB)
	assert.Equal(t, "host=db user=truco dbname=truco sslmode=disable", cfg.Database.DSN)
	assert.Equal(t, 45, cfg.Game.ReconnectGrace)
	assert.Equal(t, 15, cfg.Game.TargetScore)
	assert.Equal(t, 5, cfg.Game.HistorySize)
	assert.Len(t, cfg.Security.AllowedOrigins, 2)
	assert.Equal(t, 50, cfg.Security.MessageLimit.MaxPerSecond)
	assert.Equal(t, 10, cfg.Security.ChatLimit.Cooldown)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	cfg, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "invalid: yaml: :::"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, defaultMode, cfg.Server.Mode)
	assert.Equal(t, defaultMaxConnections, cfg.Server.MaxConnections)
	assert.Equal(t, time.Minute, cfg.Server.ShutdownWaitDuration())
	assert.Equal(t, defaultRedisAddr, cfg.Redis.Addr)
	assert.Empty(t, cfg.Database.DSN)
	assert.Equal(t, defaultReconnectGrace, cfg.Game.ReconnectGrace)
	assert.Equal(t, defaultTargetScore, cfg.Game.TargetScore)
	assert.Equal(t, defaultHistorySize, cfg.Game.HistorySize)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, defaultChatCooldown, cfg.Security.ChatLimit.Cooldown)
}

func TestDefault(t *testing.T) {
	// Not parallel: Default reads environment variables.

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Game.ReconnectGraceDuration())
	assert.Equal(t, defaultTargetScore, cfg.Game.TargetScore)
}

func TestDurationMethods(t *testing.T) {
	t.Parallel()

	game := &GameConfig{ReconnectGrace: 30, RoomTimeout: 10, CleanupPeriod: 5}
	assert.Equal(t, 30*time.Second, game.ReconnectGraceDuration())
	assert.Equal(t, 10*time.Minute, game.RoomTimeoutDuration())
	assert.Equal(t, 5*time.Second, game.CleanupPeriodDuration())

	rate := &RateLimitConfig{BanDuration: 120}
	assert.Equal(t, 120*time.Second, rate.BanDurationTime())

	chat := &ChatLimitConfig{Cooldown: 10}
	assert.Equal(t, 10*time.Second, chat.CooldownDuration())
}

func TestLoadFromEnv(t *testing.T) {
	// Not parallel because it modifies environment variables.
	t.Setenv("SERVER_HOST", "env-host")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("REDIS_ADDR", "env-redis:6380")
	t.Setenv("DATABASE_DSN", "postgres://env")
	t.Setenv("GAME_RECONNECT_GRACE", "5")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a.com, http://b.com,")

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Server.Host)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "env-redis:6380", cfg.Redis.Addr)
	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.Equal(t, 5, cfg.Game.ReconnectGrace)
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, cfg.Security.AllowedOrigins)
}

func TestLoadFromEnv_IgnoresBadNumbers(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)
	assert.Equal(t, defaultPort, cfg.Server.Port)
}
