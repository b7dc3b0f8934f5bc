package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// 默认值
const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 1780
	defaultMode           = "debug"
	defaultMaxConnections = 10000
	defaultShutdownWait   = 60 // 秒
	defaultRedisAddr      = "localhost:6379"

	defaultReconnectGrace = 30 // 秒
	defaultRoomTimeout    = 10 // 分钟
	defaultTargetScore    = 12
	defaultHistorySize    = 20
	defaultCleanupPeriod  = 60 // 秒

	defaultRateMaxPerSecond    = 10
	defaultRateMaxPerMinute    = 60
	defaultRateBanDuration     = 60 // 秒
	defaultMessageMaxPerSecond = 20
	defaultChatMaxPerSecond    = 1
	defaultChatMaxPerMinute    = 20
	defaultChatCooldown        = 30 // 秒
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Game     GameConfig     `yaml:"game"`
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig HTTP/WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Mode           string `yaml:"mode"` // debug / release，同时决定日志格式
	MaxConnections int    `yaml:"max_connections"`
	ShutdownWait   int    `yaml:"shutdown_wait"` // 停机前等待对局结束的最长时间（秒）
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DatabaseConfig 关系库配置，DSN 为空时不启用大厅台账
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// GameConfig 游戏配置
type GameConfig struct {
	ReconnectGrace int `yaml:"reconnect_grace"` // 掉线保留座位时长（秒）
	RoomTimeout    int `yaml:"room_timeout"`    // 房间等待超时（分钟）
	TargetScore    int `yaml:"target_score"`    // 获胜分数
	HistorySize    int `yaml:"history_size"`    // 每个房间保留的对局记录数
	CleanupPeriod  int `yaml:"cleanup_period"`  // 清理循环间隔（秒）
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins"`
	RateLimit      RateLimitConfig    `yaml:"rate_limit"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit"`
	ChatLimit      ChatLimitConfig    `yaml:"chat_limit"`
}

// RateLimitConfig 连接速率限制（按 IP）
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	BanDuration  int `yaml:"ban_duration"` // 秒
}

// MessageLimitConfig 消息速率限制（按连接）
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
}

// ChatLimitConfig 聊天限制（按玩家）
type ChatLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	Cooldown     int `yaml:"cooldown"` // 超限后的禁言时长（秒）
}

// ShutdownWaitDuration 返回停机等待时长
func (c *ServerConfig) ShutdownWaitDuration() time.Duration {
	return time.Duration(c.ShutdownWait) * time.Second
}

// ReconnectGraceDuration 返回掉线保留时长
func (c *GameConfig) ReconnectGraceDuration() time.Duration {
	return time.Duration(c.ReconnectGrace) * time.Second
}

// RoomTimeoutDuration 返回房间等待超时时长
func (c *GameConfig) RoomTimeoutDuration() time.Duration {
	return time.Duration(c.RoomTimeout) * time.Minute
}

// CleanupPeriodDuration 返回清理间隔
func (c *GameConfig) CleanupPeriodDuration() time.Duration {
	return time.Duration(c.CleanupPeriod) * time.Second
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// CooldownDuration 返回禁言时长
func (c *ChatLimitConfig) CooldownDuration() time.Duration {
	return time.Duration(c.Cooldown) * time.Second
}

// Load 加载配置文件，随后应用默认值和环境变量
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

// Default 返回默认配置（同样应用环境变量）
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.Host, defaultHost)
	setDefault(&c.Server.Port, defaultPort)
	setDefault(&c.Server.Mode, defaultMode)
	setDefault(&c.Server.MaxConnections, defaultMaxConnections)
	setDefault(&c.Server.ShutdownWait, defaultShutdownWait)
	setDefault(&c.Redis.Addr, defaultRedisAddr)

	setDefault(&c.Game.ReconnectGrace, defaultReconnectGrace)
	setDefault(&c.Game.RoomTimeout, defaultRoomTimeout)
	setDefault(&c.Game.TargetScore, defaultTargetScore)
	setDefault(&c.Game.HistorySize, defaultHistorySize)
	setDefault(&c.Game.CleanupPeriod, defaultCleanupPeriod)

	if len(c.Security.AllowedOrigins) == 0 {
		c.Security.AllowedOrigins = []string{"*"}
	}
	setDefault(&c.Security.RateLimit.MaxPerSecond, defaultRateMaxPerSecond)
	setDefault(&c.Security.RateLimit.MaxPerMinute, defaultRateMaxPerMinute)
	setDefault(&c.Security.RateLimit.BanDuration, defaultRateBanDuration)
	setDefault(&c.Security.MessageLimit.MaxPerSecond, defaultMessageMaxPerSecond)
	setDefault(&c.Security.ChatLimit.MaxPerSecond, defaultChatMaxPerSecond)
	setDefault(&c.Security.ChatLimit.MaxPerMinute, defaultChatMaxPerMinute)
	setDefault(&c.Security.ChatLimit.Cooldown, defaultChatCooldown)
}

func (c *Config) applyEnv() {
	envString("SERVER_HOST", &c.Server.Host)
	envInt("SERVER_PORT", &c.Server.Port)
	envString("SERVER_MODE", &c.Server.Mode)
	envString("REDIS_ADDR", &c.Redis.Addr)
	envString("REDIS_PASSWORD", &c.Redis.Password)
	envString("DATABASE_DSN", &c.Database.DSN)
	envInt("GAME_RECONNECT_GRACE", &c.Game.ReconnectGrace)
	envInt("GAME_ROOM_TIMEOUT", &c.Game.RoomTimeout)

	if v := os.Getenv("SECURITY_ALLOWED_ORIGINS"); v != "" {
		origins := make([]string, 0)
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Security.AllowedOrigins = origins
	}
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

func envString(key string, field *string) {
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}

func envInt(key string, field *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*field = n
		}
	}
}
