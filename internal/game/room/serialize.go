package room

import (
	"time"

	"github.com/palemoky/truco-server/internal/server/storage"
)

// toRoomData 生成 Redis 快照，调用方持有 r.mu
func (r *Room) toRoomData(now time.Time) *storage.RoomData {
	data := &storage.RoomData{
		ID:        r.ID,
		Code:      r.Code,
		Name:      r.Name,
		Stake:     r.Stake,
		Private:   r.Private,
		Variant:   r.Variant,
		Status:    string(r.Status),
		Players:   make([]storage.PlayerData, 0, len(r.Players)),
		History:   append([]storage.MatchRecord(nil), r.History...),
		CreatedAt: r.CreatedAt.Unix(),
		UpdatedAt: now.Unix(),
	}

	for _, p := range r.Players {
		data.Players = append(data.Players, storage.PlayerData{
			ID:     p.ID,
			Name:   p.Name,
			Seat:   p.Seat,
			Team:   p.Team.String(),
			Online: p.Online,
		})
	}

	if m := r.Match; m != nil {
		scores := m.Scores()
		data.Match = &storage.MatchData{
			ID:        m.ID(),
			Status:    string(m.Status()),
			ScoreA:    scores[0],
			ScoreB:    scores[1],
			HandIndex: m.CurrentHand().Index,
			BetValue:  m.CurrentHand().BetValue,
			TurnSeat:  m.TurnSeat(),
		}
	}

	return data
}

// toLedger 生成关系库台账记录，调用方持有 r.mu
func (r *Room) toLedger() (storage.LobbyRoom, []storage.LobbyMember) {
	room := storage.LobbyRoom{
		ID:        r.ID,
		Code:      r.Code,
		Name:      r.Name,
		Stake:     r.Stake,
		Private:   r.Private,
		Variant:   r.Variant,
		OwnerID:   r.ownerID(),
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
	}

	members := make([]storage.LobbyMember, len(r.Players))
	for i, p := range r.Players {
		members[i] = storage.LobbyMember{
			RoomID:   r.ID,
			PlayerID: p.ID,
			Name:     p.Name,
			Seat:     p.Seat,
			JoinedAt: p.JoinedAt,
		}
	}
	return room, members
}
