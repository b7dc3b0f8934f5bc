package room

import (
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/truco-server/internal/protocol"
	"github.com/palemoky/truco-server/internal/protocol/codec"
	"github.com/palemoky/truco-server/internal/types"
)

// PlayerDisconnected 连接断开：座位保留为离线并启动宽限计时器。
// 该座位已经绑定到更新的连接时忽略（会话被顶替的旧连接）
func (rm *RoomManager) PlayerDisconnected(client types.ClientInterface) {
	playerID := client.Profile().PlayerID
	room := rm.roomOfPlayer(playerID)
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	p := room.playerByID(playerID)
	if room.closed || p == nil || p.Client != client {
		return
	}

	p.Online = false
	p.Client = nil
	room.broadcastExcept(p.ID, codec.MustNewMessage(protocol.MsgPlayerDisconnected, protocol.PlayerDisconnectedPayload{
		PlayerID: p.ID,
		Name:     p.Name,
		Seat:     p.Seat,
		Timeout:  int(rm.grace / time.Second),
	}))
	rm.startGrace(room, p)
	rm.saveLocked(room)

	rm.log.Info("玩家掉线",
		zap.String("room", room.ID),
		zap.String("player", p.ID),
		zap.Int("seat", p.Seat),
		zap.Duration("grace", rm.grace))
}

// startGrace 调用方持有 room.mu
func (rm *RoomManager) startGrace(room *Room, p *Player) {
	rm.stopGrace(p)
	select {
	case <-rm.done:
		// 管理器已关闭，不再启动计时器
		return
	default:
	}
	gen := p.graceGen
	roomID, playerID := room.ID, p.ID
	p.grace = time.AfterFunc(rm.grace, func() { rm.graceExpired(roomID, playerID, gen) })
}

// stopGrace 取消计时器并使已触发但尚未拿到锁的回调失效，调用方持有 room.mu
func (rm *RoomManager) stopGrace(p *Player) {
	if p.grace != nil {
		p.grace.Stop()
		p.grace = nil
	}
	p.graceGen++
}

// graceExpired 宽限期到期仍未重连：移出座位；房间内没有在线玩家时解散房间
func (rm *RoomManager) graceExpired(roomID, playerID string, gen uint64) {
	room := rm.GetRoom(roomID)
	if room == nil {
		return
	}

	room.mu.Lock()
	p := room.playerByID(playerID)
	if room.closed || p == nil || p.Online || p.graceGen != gen {
		room.mu.Unlock()
		return
	}

	p.grace = nil
	rm.log.Info("掉线超时，移出座位", zap.String("room", roomID), zap.String("player", playerID))
	rm.removeLocked(room, p, ReasonTimeout)

	closed := room.onlineCount() == 0
	if closed {
		rm.closeLocked(room)
	}
	room.mu.Unlock()

	rm.afterMembership(room, closed)
}
