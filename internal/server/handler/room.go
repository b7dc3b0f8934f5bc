package handler

import (
	"github.com/palemoky/truco-server/internal/apperrors"
	"github.com/palemoky/truco-server/internal/game/room"
	"github.com/palemoky/truco-server/internal/protocol"
	"github.com/palemoky/truco-server/internal/protocol/codec"
	"github.com/palemoky/truco-server/internal/types"
)

func (h *Handler) handleGetRooms(client types.ClientInterface, _ *protocol.Message) error {
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomsList, protocol.RoomsListPayload{
		Rooms: h.rooms.GetRoomList(),
	}))
	return nil
}

// handleCreateRoom 维护模式下不再创建新房间
func (h *Handler) handleCreateRoom(client types.ClientInterface, msg *protocol.Message) error {
	if h.server != nil && h.server.IsMaintenanceMode() {
		return apperrors.ErrMaintenance
	}
	p, err := parse[protocol.CreateRoomPayload](msg)
	if err != nil {
		return err
	}
	_, err = h.rooms.Create(client, room.Options{
		Name:    p.Name,
		Stake:   p.Stake,
		Private: p.Private,
		Variant: p.Variant,
	})
	return err
}

// handleJoinRoom 按 ID 或邀请码加入；已有座位时走重连
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) error {
	p, err := parse[protocol.JoinRoomPayload](msg)
	if err != nil {
		return err
	}
	if p.RoomID == "" && p.RoomCode == "" {
		return apperrors.ErrInvalidMessage
	}
	_, err = h.rooms.Join(client, p.RoomID, p.RoomCode)
	return err
}

func (h *Handler) handleLeaveRoom(client types.ClientInterface, _ *protocol.Message) error {
	return h.rooms.Leave(client)
}

func (h *Handler) handleStartGame(client types.ClientInterface, msg *protocol.Message) error {
	p, err := parse[protocol.RoomPayload](msg)
	if err != nil {
		return err
	}
	return h.rooms.StartGame(client, p.RoomID)
}
