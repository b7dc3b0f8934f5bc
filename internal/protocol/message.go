package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgRegister MessageType = "register" // 绑定玩家身份
	MsgPing     MessageType = "ping"     // 心跳 ping

	// 房间操作
	MsgCreateRoom MessageType = "create-room" // 创建房间
	MsgGetRooms   MessageType = "get-rooms"   // 获取房间列表
	MsgJoinRoom   MessageType = "join-room"   // 加入房间（或重连）
	MsgLeaveRoom  MessageType = "leave-room"  // 离开房间
	MsgStartGame  MessageType = "start-game"  // 房主开局

	// 游戏操作
	MsgPlayCard     MessageType = "play-card"     // 出牌
	MsgCallTruco    MessageType = "call-truco"    // 叫 truco（加注）
	MsgRespondTruco MessageType = "respond-truco" // 接受/拒绝加注

	// 排行榜
	MsgGetStats   MessageType = "get-stats"   // 获取个人统计
	MsgGetRanking MessageType = "get-ranking" // 获取排行榜

	MsgChat MessageType = "chat-message" // 聊天消息（双向）
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected  MessageType = "connected"  // 连接成功
	MsgRegistered MessageType = "registered" // 身份绑定成功
	MsgPong       MessageType = "pong"       // 心跳 pong

	// 大厅
	MsgRoomsList    MessageType = "rooms-list"    // 房间列表（应答 get-rooms）
	MsgRoomsUpdated MessageType = "rooms-updated" // 房间列表变化推送
	MsgRoomCreated  MessageType = "room-created"  // 新房间
	MsgRoomDeleted  MessageType = "room-deleted"  // 房间被删除

	// 房间成员
	MsgRoomJoined         MessageType = "room-joined"         // 自己入座成功
	MsgPlayerJoined       MessageType = "player-joined"       // 玩家加入
	MsgPlayerLeft         MessageType = "player-left"         // 玩家离开
	MsgPlayerReconnected  MessageType = "player-reconnected"  // 玩家重连
	MsgPlayerDisconnected MessageType = "player-disconnected" // 玩家掉线
	MsgPlayerRemoved      MessageType = "player-removed"      // 掉线超时被移出

	// 对局流程
	MsgGameStarted   MessageType = "game-started"   // 对局开始
	MsgCardPlayed    MessageType = "card-played"    // 有人出牌
	MsgNewHand       MessageType = "new-hand"       // 新的一手牌
	MsgTrucoCalled   MessageType = "truco-called"   // 有人加注
	MsgTrucoAccepted MessageType = "truco-accepted" // 加注被接受
	MsgTrucoDeclined MessageType = "truco-declined" // 加注被拒绝
	MsgGameOver      MessageType = "game-over"      // 对局结束
	MsgMatchAborted  MessageType = "match-aborted"  // 对局因有人离开中止
	MsgGameState     MessageType = "game-state"     // 重连后的完整状态

	// 排行榜
	MsgStats   MessageType = "stats"   // 个人统计结果
	MsgRanking MessageType = "ranking" // 排行榜结果

	// 错误
	MsgError MessageType = "error" // 错误消息
)
