package types

import (
	"context"

	"github.com/palemoky/truco-server/internal/protocol"
)

// Profile 连接绑定的玩家身份
type Profile struct {
	PlayerID string
	Name     string
	Avatar   string
	Chips    int
}

// Registered 是否已经 register
func (p Profile) Registered() bool {
	return p.PlayerID != ""
}

// ServerInterface 定义服务器接口（用于打破循环依赖）
type ServerInterface interface {
	IsMaintenanceMode() bool
	GetOnlineCount() int
	BroadcastToLobby(msg *protocol.Message)
}

// LobbyBroadcaster 向大厅（未入座的连接）推送消息
type LobbyBroadcaster interface {
	BroadcastToLobby(msg *protocol.Message)
}

// ClientInterface 定义客户端接口。GetID 是连接 ID，玩家身份在 Profile 中
type ClientInterface interface {
	GetID() string
	Profile() Profile
	SetProfile(p Profile)
	GetRoom() string
	SetRoom(roomID string)
	SendMessage(msg *protocol.Message)
	Close()
}

// ChatLimiter 聊天速率限制器接口
type ChatLimiter interface {
	AllowChat(playerID string) (allowed bool, reason string)
	RemoveClient(playerID string)
}

// ResultRecorder 记录对局结果（排行榜）
type ResultRecorder interface {
	RecordMatchResult(ctx context.Context, playerID, playerName string, won bool) error
}
