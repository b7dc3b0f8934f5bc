package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/palemoky/truco-server/internal/apperrors"
	"github.com/palemoky/truco-server/internal/protocol"
	"github.com/palemoky/truco-server/internal/protocol/codec"
	"github.com/palemoky/truco-server/internal/server/handler"
	"github.com/palemoky/truco-server/internal/server/security"
	"github.com/palemoky/truco-server/internal/server/storage"
)

const (
	apiTimeout          = 3 * time.Second
	defaultRankingLimit = 10
	maxRankingLimit     = 50
)

func (s *Server) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.handleHealth)
	r.GET("/ws", s.handleWebSocket)

	api := r.Group("/api")
	{
		api.GET("/rooms", s.handleListRooms)
		api.GET("/rooms/:id", s.handleRoomDetail)
		api.GET("/lobby/rooms", s.handleLobbyRooms)
		api.GET("/lobby/rooms/:id", s.handleLobbyRoom)
		api.GET("/ranking", s.handleRanking)
	}
	return r
}

// requestLogger 用 zap 记录 HTTP 请求
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()))
	}
}

// handleWebSocket 建立 WebSocket 连接
func (s *Server) handleWebSocket(c *gin.Context) {
	w, r := c.Writer, c.Request
	clientIP := security.GetClientIP(r)

	// 维护模式检查（最优先）
	if s.IsMaintenanceMode() {
		s.log.Info("🔧 维护模式，拒绝新连接", zap.String("ip", clientIP))
		c.String(http.StatusServiceUnavailable, "Server is under maintenance, please try again later")
		return
	}

	select {
	case s.semaphore <- struct{}{}:
	default:
		s.log.Warn("🚫 达到最大连接数", zap.Int("max", cap(s.semaphore)), zap.String("ip", clientIP))
		c.String(http.StatusServiceUnavailable, "Server Full")
		return
	}
	release := func() { <-s.semaphore }

	if !s.originChecker.Check(r) {
		release()
		s.log.Warn("🚫 来源验证失败", zap.String("origin", r.Header.Get("Origin")), zap.String("ip", clientIP))
		c.String(http.StatusForbidden, "Origin not allowed")
		return
	}
	if !s.rateLimiter.Allow(clientIP) {
		release()
		c.String(http.StatusTooManyRequests, "Too Many Requests")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		release()
		s.log.Warn("WebSocket 升级失败", zap.String("ip", clientIP), zap.Error(err))
		return
	}

	client := NewClient(s, conn, clientIP)
	s.registerClient(client)
	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		ConnectionID: client.ID,
	}))
	s.log.Info("✅ 新连接", zap.String("conn", client.ID), zap.String("ip", clientIP))

	go func() {
		defer release()
		client.ReadPump()
	}()
	go client.WritePump()
}

// handleHealth 健康检查
func (s *Server) handleHealth(c *gin.Context) {
	status := http.StatusOK
	redisState := "disabled"
	if s.store.Enabled() {
		ctx, cancel := context.WithTimeout(c.Request.Context(), apiTimeout)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			redisState = "down"
			status = http.StatusServiceUnavailable
		} else {
			redisState = "up"
		}
	}

	c.JSON(status, gin.H{
		"status":       http.StatusText(status),
		"online":       s.GetOnlineCount(),
		"rooms":        s.rooms.RoomCount(),
		"active_games": s.rooms.GetActiveGamesCount(),
		"maintenance":  s.IsMaintenanceMode(),
		"redis":        redisState,
	})
}

func (s *Server) handleListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, protocol.RoomsListPayload{Rooms: s.rooms.GetRoomList()})
}

// handleRoomDetail 房间公开状态和对局历史，所有手牌为占位
func (s *Server) handleRoomDetail(c *gin.Context) {
	id := c.Param("id")
	state, err := s.rooms.RoomDetail(id)
	if err != nil {
		writeError(c, http.StatusNotFound, err)
		return
	}
	history, err := s.rooms.History(id)
	if err != nil {
		writeError(c, http.StatusNotFound, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state, "history": history})
}

// handleLobbyRooms 关系库中的开局前房间台账
func (s *Server) handleLobbyRooms(c *gin.Context) {
	if !s.ledger.Enabled() {
		c.JSON(http.StatusOK, gin.H{"rooms": []storage.LobbyRoom{}})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), apiTimeout)
	defer cancel()
	rooms, err := s.ledger.ListOpenRooms(ctx)
	if err != nil {
		s.log.Warn("读取大厅台账失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, protocol.ErrorPayload{Code: protocol.ErrCodeUnknown, Message: "读取大厅台账失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// handleLobbyRoom 台账中的单个房间及成员
func (s *Server) handleLobbyRoom(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), apiTimeout)
	defer cancel()
	room, err := s.ledger.GetRoom(ctx, c.Param("id"))
	if err != nil {
		s.log.Warn("读取大厅台账失败", zap.String("room", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, protocol.ErrorPayload{Code: protocol.ErrCodeUnknown, Message: "读取大厅台账失败"})
		return
	}
	if room == nil {
		writeError(c, http.StatusNotFound, apperrors.ErrRoomNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

// handleRanking GET /api/ranking?limit=N
func (s *Server) handleRanking(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRankingLimit)))
	if err != nil || limit <= 0 || limit > maxRankingLimit {
		limit = defaultRankingLimit
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), apiTimeout)
	defer cancel()
	board, err := s.leaderboard.GetRanking(ctx, limit)
	if err != nil {
		s.log.Warn("读取排行榜失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, protocol.ErrorPayload{Code: protocol.ErrCodeUnknown, Message: "获取排行榜失败"})
		return
	}
	c.JSON(http.StatusOK, protocol.RankingPayload{Entries: handler.RankingEntries(board)})
}

func writeError(c *gin.Context, status int, err error) {
	if ge, ok := apperrors.As(err); ok {
		c.JSON(status, protocol.ErrorPayload{Code: ge.Code, Message: ge.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, protocol.ErrorPayload{Code: protocol.ErrCodeUnknown, Message: err.Error()})
}
