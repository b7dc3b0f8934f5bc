package handler

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/palemoky/truco-server/internal/apperrors"
	"github.com/palemoky/truco-server/internal/protocol"
	"github.com/palemoky/truco-server/internal/protocol/codec"
	"github.com/palemoky/truco-server/internal/types"
)

const (
	maxNameRunes     = 24
	maxPlayerIDBytes = 64
)

// handleRegister 绑定玩家身份。同一身份在其他连接上时顶替旧连接
func (h *Handler) handleRegister(client types.ClientInterface, msg *protocol.Message) error {
	p, err := parse[protocol.RegisterPayload](msg)
	if err != nil {
		return err
	}
	playerID := strings.TrimSpace(p.PlayerID)
	name := strings.TrimSpace(p.Name)
	if playerID == "" || len(playerID) > maxPlayerIDBytes || name == "" {
		return apperrors.ErrInvalidMessage
	}
	if utf8.RuneCountInString(name) > maxNameRunes {
		name = string([]rune(name)[:maxNameRunes])
	}

	prev := client.Profile()
	if prev.Registered() && prev.PlayerID != playerID {
		// 入座后不能换身份
		if client.GetRoom() != "" {
			return apperrors.ErrAlreadyInRoom
		}
		if h.directory != nil {
			h.directory.Unbind(prev.PlayerID, client)
		}
	}

	client.SetProfile(types.Profile{
		PlayerID: playerID,
		Name:     name,
		Avatar:   p.Avatar,
		Chips:    max(p.Chips, 0),
	})
	if h.directory != nil {
		h.directory.Bind(playerID, client)
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgRegistered, protocol.RegisteredPayload{
		PlayerID: playerID,
		Name:     name,
		RoomID:   h.rooms.RoomOf(playerID),
	}))
	h.log.Info("玩家注册", zap.String("conn", client.GetID()), zap.String("player", playerID), zap.String("name", name))
	return nil
}

// handlePing 心跳
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) error {
	p, err := parse[protocol.PingPayload](msg)
	if err != nil {
		return err
	}
	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: p.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
	return nil
}
