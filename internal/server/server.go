package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/palemoky/truco-server/internal/config"
	"github.com/palemoky/truco-server/internal/game/room"
	"github.com/palemoky/truco-server/internal/logger"
	"github.com/palemoky/truco-server/internal/server/handler"
	"github.com/palemoky/truco-server/internal/server/security"
	"github.com/palemoky/truco-server/internal/server/session"
	"github.com/palemoky/truco-server/internal/server/storage"
)

// Options 外部资源。Redis 或 DB 为 nil 时对应的持久化功能关闭
type Options struct {
	Redis  *redis.Client
	DB     *gorm.DB
	Logger *zap.Logger
}

// Server WebSocket + HTTP 服务器
type Server struct {
	config *config.Config
	log    *zap.Logger

	redis       *redis.Client
	store       *storage.RedisStore
	leaderboard *storage.Leaderboard
	ledger      *storage.LobbyLedger

	rooms     *room.RoomManager
	directory *session.Directory
	handler   *handler.Handler

	clients   map[string]*Client // 连接 ID -> 连接
	clientsMu sync.RWMutex

	// 安全组件
	rateLimiter    *security.RateLimiter
	originChecker  *security.OriginChecker
	messageLimiter *security.MessageRateLimiter
	chatLimiter    *security.ChatLimiter

	upgrader  websocket.Upgrader
	semaphore chan struct{} // 并发连接数
	router    *gin.Engine
	http      *http.Server

	maintenance atomic.Bool
	done        chan struct{}
	closeOnce   sync.Once
}

// New 创建服务器实例
func New(cfg *config.Config, opts Options) (*Server, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Log
	}

	s := &Server{
		config:      cfg,
		log:         log,
		redis:       opts.Redis,
		store:       storage.NewRedisStore(opts.Redis),
		leaderboard: storage.NewLeaderboard(opts.Redis),
		directory:   session.NewDirectory(log),
		clients:     make(map[string]*Client),
		rateLimiter: security.NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker:  security.NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: security.NewMessageRateLimiter(cfg.Security.MessageLimit.MaxPerSecond),
		chatLimiter: security.NewChatLimiter(
			cfg.Security.ChatLimit.MaxPerSecond,
			cfg.Security.ChatLimit.MaxPerMinute,
			cfg.Security.ChatLimit.CooldownDuration(),
		),
		semaphore: make(chan struct{}, cfg.Server.MaxConnections),
		done:      make(chan struct{}),
	}

	if opts.DB != nil {
		ledger, err := storage.NewLobbyLedger(opts.DB)
		if err != nil {
			s.rateLimiter.Stop()
			return nil, err
		}
		s.ledger = ledger
	}

	deps := room.ManagerDeps{
		Store:         s.store,
		Ledger:        s.ledger,
		Lobby:         s,
		Logger:        log,
		Grace:         cfg.Game.ReconnectGraceDuration(),
		RoomTimeout:   cfg.Game.RoomTimeoutDuration(),
		CleanupPeriod: cfg.Game.CleanupPeriodDuration(),
		TargetScore:   cfg.Game.TargetScore,
		HistorySize:   cfg.Game.HistorySize,
	}
	if opts.Redis != nil {
		deps.Results = s.leaderboard
	}
	s.rooms = room.NewRoomManager(deps)

	s.handler = handler.NewHandler(handler.Deps{
		Server:      s,
		Rooms:       s.rooms,
		Directory:   s.directory,
		ChatLimiter: s.chatLimiter,
		Ranking:     s.leaderboard,
		Logger:      log,
	})

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}
	s.router = s.newRouter()

	log.Info("🔒 安全配置",
		zap.Int("conn_per_second", cfg.Security.RateLimit.MaxPerSecond),
		zap.Int("msg_per_second", cfg.Security.MessageLimit.MaxPerSecond),
		zap.Int("chat_per_second", cfg.Security.ChatLimit.MaxPerSecond),
		zap.Int("max_connections", cfg.Server.MaxConnections),
		zap.Strings("origins", cfg.Security.AllowedOrigins))
	return s, nil
}

// Handler HTTP 入口（gin 路由）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Rooms 房间注册表
func (s *Server) Rooms() *room.RoomManager {
	return s.rooms
}

// Start 启动服务器，阻塞直到 Shutdown
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		IdleTimeout:       60 * time.Second,
	}

	go s.monitorStats()

	s.log.Info("🚀 服务器启动", zap.String("addr", "ws://"+addr+"/ws"))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("监听失败: %w", err)
	}
	return nil
}

// Shutdown 关闭 HTTP 服务、所有连接和房间管理器。Redis 与数据库由调用方关闭
func (s *Server) Shutdown(ctx context.Context) {
	s.closeOnce.Do(func() {
		close(s.done)

		if s.http != nil {
			if err := s.http.Shutdown(ctx); err != nil {
				s.log.Warn("HTTP 服务关闭出错", zap.Error(err))
			}
		}

		s.clientsMu.RLock()
		for _, c := range s.clients {
			c.Close()
		}
		s.clientsMu.RUnlock()

		s.rooms.Close()
		s.rateLimiter.Stop()
		s.log.Info("服务器已关闭")
	})
}
