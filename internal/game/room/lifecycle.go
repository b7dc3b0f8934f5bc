package room

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/palemoky/truco-server/internal/apperrors"
	"github.com/palemoky/truco-server/internal/game/match"
	"github.com/palemoky/truco-server/internal/protocol"
	"github.com/palemoky/truco-server/internal/protocol/codec"
	"github.com/palemoky/truco-server/internal/server/storage"
	"github.com/palemoky/truco-server/internal/types"
)

// Create 创建房间，创建者坐 0 号座位并成为房主
func (rm *RoomManager) Create(client types.ClientInterface, opts Options) (*Room, error) {
	profile := client.Profile()
	if !profile.Registered() {
		return nil, apperrors.ErrNotRegistered
	}
	if profile.Chips < opts.Stake {
		return nil, apperrors.ErrInsufficientStake
	}

	roomID := uuid.NewString()
	if !rm.claimSeat(profile.PlayerID, roomID) {
		return nil, apperrors.ErrAlreadyInRoom
	}

	now := rm.now()
	rm.mu.Lock()
	room := newRoom(roomID, rm.generateRoomCode(), opts, now)
	if room.Name == "" {
		room.Name = profile.Name + " 的房间"
	}
	rm.rooms[room.ID] = room
	rm.codes[room.Code] = room.ID
	room.mu.Lock()
	rm.mu.Unlock()

	p := newPlayer(profile, client, 0, now)
	room.Players = append(room.Players, p)
	room.refreshStatus()
	client.SetRoom(room.ID)

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		Room:    room.listItem(),
		Seat:    p.Seat,
		Players: room.playersInfo(p.ID),
	}))
	item := room.listItem()
	rm.saveLocked(room)
	room.mu.Unlock()

	rm.log.Info("房间已创建",
		zap.String("room", room.ID),
		zap.String("code", room.Code),
		zap.String("player", p.ID),
		zap.Int("stake", room.Stake))

	if !room.Private {
		rm.notifyLobby(codec.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{Room: item}))
		rm.broadcastRoomsUpdated()
	}
	return room, nil
}

// Join 按房间 ID 或邀请码入座。已在座的身份视为重连
func (rm *RoomManager) Join(client types.ClientInterface, roomID, code string) (*Room, error) {
	profile := client.Profile()
	if !profile.Registered() {
		return nil, apperrors.ErrNotRegistered
	}

	room := rm.lookup(roomID, code)
	if room == nil {
		return nil, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return nil, apperrors.ErrRoomNotFound
	}

	if p := room.playerByID(profile.PlayerID); p != nil {
		rm.reconnectLocked(room, p, client)
		room.mu.Unlock()
		return room, nil
	}

	if len(room.Players) >= MaxPlayers {
		room.mu.Unlock()
		return nil, apperrors.ErrRoomFull
	}
	if profile.Chips < room.Stake {
		room.mu.Unlock()
		return nil, apperrors.ErrInsufficientStake
	}
	if !rm.claimSeat(profile.PlayerID, room.ID) {
		room.mu.Unlock()
		return nil, apperrors.ErrAlreadyInRoom
	}

	now := rm.now()
	p := newPlayer(profile, client, len(room.Players), now)
	room.Players = append(room.Players, p)
	room.refreshStatus()
	room.touch(now)
	client.SetRoom(room.ID)

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		Room:    room.listItem(),
		Seat:    p.Seat,
		Players: room.playersInfo(p.ID),
	}))
	room.broadcastExcept(p.ID, codec.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
		Player:  room.playerInfo(p, ""),
		Players: room.playersInfo(""),
		Status:  string(room.Status),
	}))
	rm.saveLocked(room)
	room.mu.Unlock()

	rm.log.Info("玩家加入房间",
		zap.String("room", room.ID),
		zap.String("player", p.ID),
		zap.Int("seat", p.Seat),
		zap.String("team", p.Team.String()))

	rm.broadcastRoomsUpdated()
	return room, nil
}

// Leave 离开所在房间，房间空了则解散
func (rm *RoomManager) Leave(client types.ClientInterface) error {
	playerID := client.Profile().PlayerID
	room := rm.roomOfPlayer(playerID)
	if room == nil {
		client.SetRoom("")
		return apperrors.ErrNotInRoom
	}

	room.mu.Lock()
	p := room.playerByID(playerID)
	if room.closed || p == nil {
		room.mu.Unlock()
		return apperrors.ErrNotInRoom
	}

	rm.removeLocked(room, p, ReasonLeft)
	client.SetRoom("")
	closed := len(room.Players) == 0
	if closed {
		rm.closeLocked(room)
	}
	room.mu.Unlock()

	rm.afterMembership(room, closed)
	return nil
}

// StartGame 房主在四人就座后开局
func (rm *RoomManager) StartGame(client types.ClientInterface, roomID string) error {
	playerID := client.Profile().PlayerID
	room := rm.roomOfPlayer(playerID)
	if room == nil || (roomID != "" && roomID != room.ID) {
		return apperrors.ErrNotInRoom
	}

	room.mu.Lock()
	if room.closed || room.playerByID(playerID) == nil {
		room.mu.Unlock()
		return apperrors.ErrNotInRoom
	}
	if room.ownerID() != playerID {
		room.mu.Unlock()
		return apperrors.ErrNotRoomOwner
	}
	if room.Match != nil {
		room.mu.Unlock()
		return apperrors.ErrMatchInProgress
	}
	if len(room.Players) < MaxPlayers {
		room.mu.Unlock()
		return apperrors.ErrNotEnoughPlayers
	}

	m, err := match.New(uuid.NewString(), room.teams(), rm.matchOpts...)
	if err != nil {
		room.mu.Unlock()
		return fmt.Errorf("创建对局失败: %w", err)
	}
	room.Match = m
	room.refreshStatus()
	room.touch(rm.now())

	room.broadcastEach(func(p *Player) *protocol.Message {
		return codec.MustNewMessage(protocol.MsgGameStarted, protocol.GameStartedPayload{
			Match: *room.matchView(p.ID),
		})
	})
	rm.saveLocked(room)
	room.mu.Unlock()

	rm.log.Info("对局开始", zap.String("room", room.ID), zap.String("match", m.ID()))

	rm.broadcastRoomsUpdated()
	return nil
}

// removeLocked 移除玩家：中止对局、重新编号座位并通知其余玩家。调用方持有 room.mu
func (rm *RoomManager) removeLocked(room *Room, p *Player, reason string) {
	rm.stopGrace(p)
	if room.Match != nil {
		rm.abortMatchLocked(room, p, reason)
	}

	if idx := slices.Index(room.Players, p); idx >= 0 {
		room.Players = slices.Delete(room.Players, idx, idx+1)
	}
	room.renumber()
	room.refreshStatus()
	room.touch(rm.now())
	rm.releaseSeat(p.ID, room.ID)
	if p.Client != nil {
		p.Client.SetRoom("")
		p.Client = nil
	}

	msgType := protocol.MsgPlayerLeft
	if reason == ReasonTimeout {
		msgType = protocol.MsgPlayerRemoved
	}
	room.broadcast(codec.MustNewMessage(msgType, protocol.PlayerLeftPayload{
		PlayerID: p.ID,
		Name:     p.Name,
		Players:  room.playersInfo(""),
		Status:   string(room.Status),
		Reason:   reason,
	}))
	rm.saveLocked(room)

	rm.log.Info("玩家离开房间",
		zap.String("room", room.ID),
		zap.String("player", p.ID),
		zap.String("reason", reason),
		zap.Int("remaining", len(room.Players)))
}

// abortMatchLocked 有人离开时中止对局，调用方持有 room.mu
func (rm *RoomManager) abortMatchLocked(room *Room, p *Player, reason string) {
	m := room.Match
	room.broadcast(codec.MustNewMessage(protocol.MsgMatchAborted, protocol.MatchAbortedPayload{
		MatchID:  m.ID(),
		PlayerID: p.ID,
		Reason:   reason,
	}))

	scores := m.Scores()
	room.addHistory(storage.MatchRecord{
		MatchID:     m.ID(),
		ScoreA:      scores[0],
		ScoreB:      scores[1],
		HandsPlayed: m.HandsPlayed(),
		Reason:      storage.RecordAborted,
		FinishedAt:  rm.now().Unix(),
	}, rm.historySize)
	room.Match = nil

	rm.log.Warn("对局中止",
		zap.String("room", room.ID),
		zap.String("match", m.ID()),
		zap.String("player", p.ID),
		zap.String("reason", reason))
}

// reconnectLocked 同一身份重新入座。先取消宽限计时器再恢复状态，调用方持有 room.mu
func (rm *RoomManager) reconnectLocked(room *Room, p *Player, client types.ClientInterface) {
	rm.stopGrace(p)

	wasOffline := !p.Online
	if old := p.Client; old != nil && old != client {
		old.SetRoom("")
	}
	p.Client = client
	p.Online = true
	client.SetRoom(room.ID)
	room.touch(rm.now())

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		Room:        room.listItem(),
		Seat:        p.Seat,
		Players:     room.playersInfo(p.ID),
		Reconnected: true,
	}))
	client.SendMessage(codec.MustNewMessage(protocol.MsgGameState, room.gameState(p.ID)))

	if wasOffline {
		room.broadcastExcept(p.ID, codec.MustNewMessage(protocol.MsgPlayerReconnected, protocol.PlayerReconnectedPayload{
			PlayerID: p.ID,
			Name:     p.Name,
			Seat:     p.Seat,
		}))
	}
	rm.saveLocked(room)

	rm.log.Info("玩家重连", zap.String("room", room.ID), zap.String("player", p.ID), zap.Int("seat", p.Seat))
}
