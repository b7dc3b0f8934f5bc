package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/palemoky/truco-server/internal/apperrors"
	"github.com/palemoky/truco-server/internal/game/room"
	"github.com/palemoky/truco-server/internal/protocol"
	"github.com/palemoky/truco-server/internal/protocol/codec"
	"github.com/palemoky/truco-server/internal/server/session"
	"github.com/palemoky/truco-server/internal/server/storage"
	"github.com/palemoky/truco-server/internal/types"
)

// Ranking 排行榜读接口
type Ranking interface {
	GetPlayerStats(ctx context.Context, playerID string) (*storage.PlayerStats, error)
	GetPlayerRank(ctx context.Context, playerID string) (int64, error)
	GetRanking(ctx context.Context, limit int) ([]storage.LeaderboardEntry, error)
}

// Deps 处理器依赖
type Deps struct {
	Server      types.ServerInterface
	Rooms       *room.RoomManager
	Directory   *session.Directory
	ChatLimiter types.ChatLimiter
	Ranking     Ranking
	Logger      *zap.Logger
}

// Handler 消息处理器
type Handler struct {
	server      types.ServerInterface
	rooms       *room.RoomManager
	directory   *session.Directory
	chatLimiter types.ChatLimiter
	ranking     Ranking
	log         *zap.Logger
	handlers    map[protocol.MessageType]handlerEntry
}

// handlerFunc 统一的处理器签名。返回的错误只回给发起方
type handlerFunc func(client types.ClientInterface, msg *protocol.Message) error

type handlerEntry struct {
	fn handlerFunc
	// 需要先 register
	needsProfile bool
}

// NewHandler 创建处理器
func NewHandler(deps Deps) *Handler {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{
		server:      deps.Server,
		rooms:       deps.Rooms,
		directory:   deps.Directory,
		chatLimiter: deps.ChatLimiter,
		ranking:     deps.Ranking,
		log:         log,
	}
	h.initHandlers()
	return h
}

func (h *Handler) initHandlers() {
	open := func(fn handlerFunc) handlerEntry { return handlerEntry{fn: fn} }
	gated := func(fn handlerFunc) handlerEntry { return handlerEntry{fn: fn, needsProfile: true} }

	h.handlers = map[protocol.MessageType]handlerEntry{
		// 连接
		protocol.MsgRegister: open(h.handleRegister),
		protocol.MsgPing:     open(h.handlePing),

		// 房间
		protocol.MsgGetRooms:   open(h.handleGetRooms),
		protocol.MsgCreateRoom: gated(h.handleCreateRoom),
		protocol.MsgJoinRoom:   gated(h.handleJoinRoom),
		protocol.MsgLeaveRoom:  gated(h.handleLeaveRoom),
		protocol.MsgStartGame:  gated(h.handleStartGame),

		// 对局
		protocol.MsgPlayCard:     gated(h.handlePlayCard),
		protocol.MsgCallTruco:    gated(h.handleCallTruco),
		protocol.MsgRespondTruco: gated(h.handleRespondTruco),
		protocol.MsgChat:         gated(h.handleChat),

		// 排行榜
		protocol.MsgGetStats:   gated(h.handleGetStats),
		protocol.MsgGetRanking: open(h.handleGetRanking),
	}
}

// Handle 分发一条消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	entry, ok := h.handlers[msg.Type]
	if !ok {
		h.log.Warn("⚠️ 未知消息类型",
			zap.String("type", string(msg.Type)),
			zap.String("conn", client.GetID()),
			zap.Int("payload_bytes", len(msg.Payload)))
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	if entry.needsProfile && !client.Profile().Registered() {
		h.reply(client, msg.Type, apperrors.ErrNotRegistered)
		return
	}
	if err := entry.fn(client, msg); err != nil {
		h.reply(client, msg.Type, err)
	}
}

// reply 把错误发回发起方。非 GameError 记日志后按未知错误处理
func (h *Handler) reply(client types.ClientInterface, msgType protocol.MessageType, err error) {
	if ge, ok := apperrors.As(err); ok {
		client.SendMessage(codec.NewErrorMessageWithText(ge.Code, ge.Message))
		return
	}
	h.log.Error("处理消息失败",
		zap.String("type", string(msgType)),
		zap.String("conn", client.GetID()),
		zap.Error(err))
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
}

// Disconnect 连接关闭：保留座位进入宽限期，解除身份绑定
func (h *Handler) Disconnect(client types.ClientInterface) {
	profile := client.Profile()
	if !profile.Registered() {
		return
	}
	h.rooms.PlayerDisconnected(client)
	if h.directory != nil && h.directory.Unbind(profile.PlayerID, client) && h.chatLimiter != nil {
		h.chatLimiter.RemoveClient(profile.PlayerID)
	}
}

// parse 解析 payload，失败统一为 InvalidMessage
func parse[T any](msg *protocol.Message) (*T, error) {
	p, err := codec.ParsePayload[T](msg)
	if err != nil {
		return nil, apperrors.ErrInvalidMessage
	}
	return p, nil
}
