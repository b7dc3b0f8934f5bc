package server

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/truco-server/internal/apperrors"
	"github.com/palemoky/truco-server/internal/protocol"
	"github.com/palemoky/truco-server/internal/protocol/codec"
)

const (
	monitorInterval       = 30 * time.Second
	shutdownCheckInterval = time.Second
	closeTimeout          = 5 * time.Second
)

// registerClient 注册连接
func (s *Server) registerClient(c *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[c.ID] = c
}

// unregisterClient 注销连接
func (s *Server) unregisterClient(c *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[c.ID]; ok {
		delete(s.clients, c.ID)
		s.log.Info("❌ 连接断开", zap.String("conn", c.ID), zap.String("player", c.Profile().PlayerID))
	}
}

// GetOnlineCount 当前连接数
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// BroadcastToLobby 推送给不在房间里的连接
func (s *Server) BroadcastToLobby(msg *protocol.Message) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, c := range s.clients {
		if c.GetRoom() == "" {
			c.SendMessage(msg)
		}
	}
}

// EnterMaintenanceMode 进入维护模式：拒绝新连接和新房间，已开始的对局照常进行
func (s *Server) EnterMaintenanceMode() {
	if s.maintenance.Swap(true) {
		return
	}
	s.BroadcastToLobby(codec.NewErrorMessageWithText(apperrors.ErrMaintenance.Code, "👷🏻‍♂️ 维护模式：停止新的房间创建"))
	s.log.Info("🔧 进入维护模式：停止新连接和房间创建")
}

// IsMaintenanceMode 是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	return s.maintenance.Load()
}

// GracefulShutdown 进入维护模式，等待对局结束（最多 timeout），然后关闭
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(shutdownCheckInterval)
	defer ticker.Stop()

	for {
		active := s.rooms.GetActiveGamesCount()
		if active == 0 {
			s.log.Info("✅ 所有对局已结束")
			break
		}
		if !time.Now().Before(deadline) {
			s.log.Warn("⚠️ 等待超时，强制关闭", zap.Int("active_games", active))
			break
		}
		s.log.Info("⏳ 等待对局结束...", zap.Int("active_games", active))
		<-ticker.C
	}

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	s.Shutdown(ctx)
}

// monitorStats 定期记录服务器状态
func (s *Server) monitorStats() {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			s.log.Info("📊 监控",
				zap.Int("online", s.GetOnlineCount()),
				zap.Int("players", s.directory.Count()),
				zap.Int("rooms", s.rooms.RoomCount()),
				zap.Int("active_games", s.rooms.GetActiveGamesCount()),
				zap.Int("goroutines", runtime.NumGoroutine()),
				zap.Int("conns", len(s.semaphore)),
				zap.Float64("mem_mb", float64(m.Alloc)/1024/1024))
		}
	}
}
