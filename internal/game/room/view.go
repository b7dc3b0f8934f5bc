package room

import (
	"github.com/palemoky/truco-server/internal/game/match"
	"github.com/palemoky/truco-server/internal/game/rule"
	"github.com/palemoky/truco-server/internal/protocol"
	"github.com/palemoky/truco-server/internal/protocol/convert"
)

// 以下函数按接收者生成视图：只有 viewer 自己的手牌是明牌，其他人的手牌替换为同样数量的占位牌。
// viewer 为空时（HTTP 查询）所有手牌都是占位。调用方持有 r.mu。

func (r *Room) playerInfo(p *Player, viewer string) protocol.PlayerInfo {
	info := protocol.PlayerInfo{
		ID:      p.ID,
		Name:    p.Name,
		Avatar:  p.Avatar,
		Chips:   p.Chips,
		Seat:    p.Seat,
		Team:    p.Team.String(),
		Online:  p.Online,
		IsOwner: p.Seat == 0,
	}

	if m := r.Match; m != nil {
		info.CardCount = m.HandSize(p.Seat)
		if p.ID == viewer {
			info.Hand = convert.CardsToInfos(m.HandOf(p.Seat))
		} else {
			info.Hand = convert.HiddenCards(info.CardCount)
		}
	}
	return info
}

func (r *Room) playersInfo(viewer string) []protocol.PlayerInfo {
	infos := make([]protocol.PlayerInfo, len(r.Players))
	for i, p := range r.Players {
		infos[i] = r.playerInfo(p, viewer)
	}
	return infos
}

func (r *Room) matchView(viewer string) *protocol.MatchView {
	m := r.Match
	if m == nil {
		return nil
	}

	view := &protocol.MatchView{
		ID:          m.ID(),
		Status:      string(m.Status()),
		TurnSeat:    m.TurnSeat(),
		Scores:      teamScores(m),
		TargetScore: m.TargetScore(),
		Hand:        r.handView(m.CurrentHand()),
		Players:     r.playersInfo(viewer),
		MySeat:      -1,
		MyHand:      []protocol.CardInfo{},
	}
	if p := r.playerByID(viewer); p != nil {
		view.MySeat = p.Seat
		view.MyTeam = p.Team.String()
		view.MyHand = convert.CardsToInfos(m.HandOf(p.Seat))
	}
	return view
}

func (r *Room) handView(h *match.Hand) protocol.HandView {
	view := protocol.HandView{
		Index:          h.Index,
		Vira:           convert.CardToInfo(h.Vira),
		Manilha:        rule.ManilhaRank(h.Vira).String(),
		BetValue:       h.BetValue,
		RequestingTeam: h.RequestingTeam.String(),
		ProposedValue:  h.ProposedValue,
		Rounds:         make([]protocol.RoundView, len(h.Rounds)),
	}
	for i, round := range h.Rounds {
		view.Rounds[i] = r.roundView(round)
	}
	return view
}

// roundView 已出的牌是公开信息，对所有人相同
func (r *Room) roundView(round *match.Round) protocol.RoundView {
	view := protocol.RoundView{
		Index:       round.Index,
		Played:      make([]protocol.PlayedCardInfo, len(round.Played)),
		WinningSeat: round.WinningSeat,
	}
	for i, pc := range round.Played {
		info := protocol.PlayedCardInfo{
			Seat:     pc.Seat,
			Card:     convert.CardToInfo(pc.Card),
			PlayedAt: pc.PlayedAt.UnixMilli(),
		}
		if p := r.playerAt(pc.Seat); p != nil {
			info.PlayerID = p.ID
		}
		view.Played[i] = info
	}
	if round.Complete() {
		view.Outcome = round.Outcome.String()
	}
	return view
}

func (r *Room) gameState(viewer string) protocol.GameStatePayload {
	return protocol.GameStatePayload{
		Room:    r.listItem(),
		Players: r.playersInfo(viewer),
		Match:   r.matchView(viewer),
	}
}

func teamScores(m *match.Match) protocol.TeamScores {
	s := m.Scores()
	return protocol.TeamScores{A: s[rule.TeamA], B: s[rule.TeamB]}
}

func handResultInfo(o *match.HandOutcome) *protocol.HandResultInfo {
	if o == nil {
		return nil
	}
	return &protocol.HandResultInfo{
		Index:    o.Index,
		Winner:   o.Winner.String(),
		Void:     o.Void,
		Points:   o.Points,
		Declined: o.Declined,
	}
}
