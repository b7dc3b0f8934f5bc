package room

import (
	"github.com/palemoky/truco-server/internal/protocol"
)

// broadcast 发给房间内所有在线玩家，调用方持有 r.mu
func (r *Room) broadcast(msg *protocol.Message) {
	for _, p := range r.Players {
		if p.Client != nil {
			p.Client.SendMessage(msg)
		}
	}
}

func (r *Room) broadcastExcept(playerID string, msg *protocol.Message) {
	for _, p := range r.Players {
		if p.ID != playerID && p.Client != nil {
			p.Client.SendMessage(msg)
		}
	}
}

// broadcastEach 为每个在线玩家单独生成消息（脱敏视图）
func (r *Room) broadcastEach(build func(p *Player) *protocol.Message) {
	for _, p := range r.Players {
		if p.Client != nil {
			p.Client.SendMessage(build(p))
		}
	}
}
