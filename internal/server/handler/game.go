package handler

import (
	"github.com/palemoky/truco-server/internal/apperrors"
	"github.com/palemoky/truco-server/internal/protocol"
	"github.com/palemoky/truco-server/internal/types"
)

func (h *Handler) handlePlayCard(client types.ClientInterface, msg *protocol.Message) error {
	p, err := parse[protocol.PlayCardPayload](msg)
	if err != nil {
		return err
	}
	return h.rooms.PlayCard(client, p.RoomID, p.Card)
}

func (h *Handler) handleCallTruco(client types.ClientInterface, msg *protocol.Message) error {
	p, err := parse[protocol.RoomPayload](msg)
	if err != nil {
		return err
	}
	return h.rooms.CallTruco(client, p.RoomID)
}

func (h *Handler) handleRespondTruco(client types.ClientInterface, msg *protocol.Message) error {
	p, err := parse[protocol.RespondTrucoPayload](msg)
	if err != nil {
		return err
	}
	return h.rooms.RespondTruco(client, p.RoomID, p.Accept)
}

// handleChat 先过聊天限速，再由房间转发
func (h *Handler) handleChat(client types.ClientInterface, msg *protocol.Message) error {
	p, err := parse[protocol.ChatPayload](msg)
	if err != nil {
		return err
	}
	if h.chatLimiter != nil {
		if allowed, reason := h.chatLimiter.AllowChat(client.Profile().PlayerID); !allowed {
			return &apperrors.GameError{Code: apperrors.ErrRateLimited.Code, Message: reason}
		}
	}
	roomID := p.RoomID
	if roomID == "" {
		roomID = client.GetRoom()
	}
	return h.rooms.Chat(client, roomID, p.Text)
}
