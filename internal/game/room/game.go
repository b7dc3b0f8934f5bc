package room

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/palemoky/truco-server/internal/apperrors"
	"github.com/palemoky/truco-server/internal/game/match"
	"github.com/palemoky/truco-server/internal/protocol"
	"github.com/palemoky/truco-server/internal/protocol/codec"
	"github.com/palemoky/truco-server/internal/protocol/convert"
	"github.com/palemoky/truco-server/internal/server/storage"
	"github.com/palemoky/truco-server/internal/types"
)

const recordTimeout = 5 * time.Second

// acquire 找到连接对应的座位并锁住房间。成功时调用方负责释放 room.mu
func (rm *RoomManager) acquire(client types.ClientInterface, roomID string) (*Room, *Player, error) {
	playerID := client.Profile().PlayerID
	room := rm.roomOfPlayer(playerID)
	if room == nil || (roomID != "" && roomID != room.ID) {
		return nil, nil, apperrors.ErrNotInRoom
	}

	room.mu.Lock()
	p := room.playerByID(playerID)
	if room.closed || p == nil || p.Client != client {
		room.mu.Unlock()
		return nil, nil, apperrors.ErrNotInRoom
	}
	return room, p, nil
}

// PlayCard 出牌。失败时不修改任何状态，错误只回给调用方
func (rm *RoomManager) PlayCard(client types.ClientInterface, roomID string, info protocol.CardInfo) error {
	c, err := convert.InfoToCard(info)
	if err != nil {
		return apperrors.ErrInvalidCard
	}

	room, p, err := rm.acquire(client, roomID)
	if err != nil {
		return err
	}
	m := room.Match
	if m == nil {
		room.mu.Unlock()
		return apperrors.ErrNoActiveMatch
	}

	res, err := m.PlayCard(p.Seat, c)
	if err != nil {
		room.mu.Unlock()
		return err
	}
	room.touch(rm.now())

	room.broadcast(codec.MustNewMessage(protocol.MsgCardPlayed, protocol.CardPlayedPayload{
		PlayerID:  p.ID,
		Seat:      p.Seat,
		Card:      convert.CardToInfo(c),
		NextSeat:  res.NextSeat,
		Round:     room.roundView(res.Round),
		RoundOver: res.RoundOver,
		Scores:    teamScores(m),
	}))
	finished := rm.afterHandLocked(room, res.Hand, res.Finished, ReasonScore)
	rm.saveLocked(room)
	room.mu.Unlock()

	if finished {
		rm.broadcastRoomsUpdated()
	}
	return nil
}

// CallTruco 请求把本手分值提高一档
func (rm *RoomManager) CallTruco(client types.ClientInterface, roomID string) error {
	room, p, err := rm.acquire(client, roomID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	m := room.Match
	if m == nil {
		return apperrors.ErrNoActiveMatch
	}
	res, err := m.CallBid(p.Seat)
	if err != nil {
		return err
	}
	room.touch(rm.now())

	room.broadcast(codec.MustNewMessage(protocol.MsgTrucoCalled, protocol.TrucoCalledPayload{
		PlayerID:      p.ID,
		Name:          p.Name,
		Seat:          p.Seat,
		Team:          res.Team.String(),
		CurrentValue:  res.CurrentValue,
		ProposedValue: res.ProposedValue,
	}))
	rm.saveLocked(room)

	rm.log.Debug("truco",
		zap.String("room", room.ID),
		zap.String("team", res.Team.String()),
		zap.Int("proposed", res.ProposedValue))
	return nil
}

// RespondTruco 对方队伍接受或拒绝加注
func (rm *RoomManager) RespondTruco(client types.ClientInterface, roomID string, accept bool) error {
	room, p, err := rm.acquire(client, roomID)
	if err != nil {
		return err
	}
	m := room.Match
	if m == nil {
		room.mu.Unlock()
		return apperrors.ErrNoActiveMatch
	}

	res, err := m.RespondBid(p.Seat, accept)
	if err != nil {
		room.mu.Unlock()
		return err
	}
	room.touch(rm.now())

	finished := false
	if res.Accepted {
		room.broadcast(codec.MustNewMessage(protocol.MsgTrucoAccepted, protocol.TrucoAcceptedPayload{
			PlayerID: p.ID,
			Team:     res.Team.String(),
			BetValue: res.BetValue,
		}))
	} else {
		room.broadcast(codec.MustNewMessage(protocol.MsgTrucoDeclined, protocol.TrucoDeclinedPayload{
			PlayerID:    p.ID,
			Team:        res.Team.String(),
			WinningTeam: res.Hand.Winner.String(),
			Points:      res.Hand.Points,
			Scores:      teamScores(m),
		}))
		finished = rm.afterHandLocked(room, res.Hand, res.Finished, ReasonDeclined)
	}
	rm.saveLocked(room)
	room.mu.Unlock()

	if finished {
		rm.broadcastRoomsUpdated()
	}
	return nil
}

// Chat 房间聊天，只转发不保存
func (rm *RoomManager) Chat(client types.ClientInterface, roomID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) > maxChatRunes {
		text = string([]rune(text)[:maxChatRunes])
	}

	room, p, err := rm.acquire(client, roomID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	room.broadcast(codec.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{
		RoomID:     room.ID,
		Text:       text,
		SenderID:   p.ID,
		SenderName: p.Name,
		Time:       rm.now().Unix(),
	}))
	return nil
}

// afterHandLocked 一手牌结束后的推送：比赛结束发 game-over，否则按接收者推送新的一手。
// 返回比赛是否结束。调用方持有 room.mu
func (rm *RoomManager) afterHandLocked(room *Room, outcome *match.HandOutcome, finished bool, reason string) bool {
	if outcome == nil {
		return false
	}
	if finished {
		rm.finishMatchLocked(room, reason)
		return true
	}

	prev := handResultInfo(outcome)
	room.broadcastEach(func(p *Player) *protocol.Message {
		return codec.MustNewMessage(protocol.MsgNewHand, protocol.NewHandPayload{
			Previous: prev,
			Voided:   outcome.Void,
			Match:    *room.matchView(p.ID),
		})
	})
	return false
}

type matchResult struct {
	playerID string
	name     string
	won      bool
}

// finishMatchLocked 比赛结束：记录历史、异步写排行榜，房间回到等待开局。调用方持有 room.mu
func (rm *RoomManager) finishMatchLocked(room *Room, reason string) {
	m := room.Match
	winner := m.Winner()
	scores := m.Scores()

	room.broadcast(codec.MustNewMessage(protocol.MsgGameOver, protocol.GameOverPayload{
		MatchID:     m.ID(),
		WinningTeam: winner.String(),
		Scores:      teamScores(m),
		HandsPlayed: m.HandsPlayed(),
		Reason:      reason,
	}))
	room.addHistory(storage.MatchRecord{
		MatchID:     m.ID(),
		Winner:      winner.String(),
		ScoreA:      scores[0],
		ScoreB:      scores[1],
		HandsPlayed: m.HandsPlayed(),
		Reason:      storage.RecordCompleted,
		FinishedAt:  rm.now().Unix(),
	}, rm.historySize)

	results := make([]matchResult, len(room.Players))
	for i, p := range room.Players {
		results[i] = matchResult{playerID: p.ID, name: p.Name, won: p.Team == winner}
	}
	room.Match = nil
	// 对局结束房间回到等待状态，满员时房主可直接再开一局
	room.Status = StatusWaiting

	rm.log.Info("对局结束",
		zap.String("room", room.ID),
		zap.String("match", m.ID()),
		zap.String("winner", winner.String()),
		zap.Int("score_a", scores[0]),
		zap.Int("score_b", scores[1]),
		zap.String("reason", reason))

	if rm.results != nil {
		rm.bg.Go(func() { rm.recordResults(results) })
	}
}

func (rm *RoomManager) recordResults(results []matchResult) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	for _, r := range results {
		if err := rm.results.RecordMatchResult(ctx, r.playerID, r.name, r.won); err != nil {
			rm.log.Warn("记录对局结果失败", zap.String("player", r.playerID), zap.Error(err))
		}
	}
}
