package match

import (
	"fmt"
	"slices"
	"time"

	"github.com/palemoky/truco-server/internal/apperrors"
	"github.com/palemoky/truco-server/internal/game/card"
	"github.com/palemoky/truco-server/internal/game/rule"
)

// Match 一局比赛的状态机。本身不加锁，由所属房间串行调用
type Match struct {
	id          string
	teams       [Seats]rule.Team
	hands       [Seats][]card.Card
	hand        *Hand
	handsPlayed int
	turnSeat    int
	status      Status
	scores      [2]int
	winner      rule.Team
	targetScore int

	dealer card.Dealer
	now    func() time.Time
}

// Option 对局配置项
type Option func(*Match)

// WithDealer 指定发牌函数（测试用来固定牌面）
func WithDealer(d card.Dealer) Option {
	return func(m *Match) { m.dealer = d }
}

// WithClock 指定时钟
func WithClock(now func() time.Time) Option {
	return func(m *Match) { m.now = now }
}

// WithTargetScore 指定获胜分数
func WithTargetScore(score int) Option {
	return func(m *Match) {
		if score > 0 {
			m.targetScore = score
		}
	}
}

// New 创建对局并发第一手牌。teams 按座位给出每个座位所属队伍
func New(id string, teams [Seats]rule.Team, opts ...Option) (*Match, error) {
	var count [2]int
	for seat, t := range teams {
		if t != rule.TeamA && t != rule.TeamB {
			return nil, fmt.Errorf("seat %d has no team", seat)
		}
		count[t]++
	}
	if count[rule.TeamA] != 2 || count[rule.TeamB] != 2 {
		return nil, fmt.Errorf("teams must have two seats each, got %v", count)
	}

	m := &Match{
		id:          id,
		teams:       teams,
		status:      StatusInProgress,
		winner:      rule.NoTeam,
		targetScore: DefaultTargetScore,
		dealer:      card.ShuffledDealer,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.startHand(); err != nil {
		return nil, err
	}
	return m, nil
}

// --- 只读访问 ---

func (m *Match) ID() string { return m.id }
func (m *Match) Status() Status { return m.status }
func (m *Match) TurnSeat() int { return m.turnSeat }
func (m *Match) Winner() rule.Team { return m.winner }
func (m *Match) CurrentHand() *Hand { return m.hand }
func (m *Match) HandsPlayed() int { return m.handsPlayed }
func (m *Match) TargetScore() int { return m.targetScore }
func (m *Match) TeamOf(seat int) rule.Team { return m.teams[seat] }

// Score 某队当前得分
func (m *Match) Score(t rule.Team) int {
	if t != rule.TeamA && t != rule.TeamB {
		return 0
	}
	return m.scores[t]
}

// Scores 两队得分，下标为队伍
func (m *Match) Scores() [2]int {
	return m.scores
}

// HandOf 返回某座位手牌的副本
func (m *Match) HandOf(seat int) []card.Card {
	if seat < 0 || seat >= Seats {
		return nil
	}
	return slices.Clone(m.hands[seat])
}

// HandSize 某座位剩余手牌数
func (m *Match) HandSize(seat int) int {
	if seat < 0 || seat >= Seats {
		return 0
	}
	return len(m.hands[seat])
}

// --- 操作 ---

// PlayCard 出牌
func (m *Match) PlayCard(seat int, c card.Card) (*PlayResult, error) {
	switch m.status {
	case StatusFinished:
		return nil, apperrors.ErrNoActiveMatch
	case StatusBidRequested:
		return nil, apperrors.ErrInvalidBidState
	}
	if seat != m.turnSeat {
		return nil, apperrors.ErrNotYourTurn
	}
	idx := slices.Index(m.hands[seat], c)
	if idx < 0 {
		return nil, apperrors.ErrCardNotInHand
	}

	m.hands[seat] = slices.Delete(m.hands[seat], idx, idx+1)
	round := m.hand.CurrentRound()
	round.Played = append(round.Played, PlayedCard{
		Seat:     seat,
		Team:     m.teams[seat],
		Card:     c,
		PlayedAt: m.now(),
	})

	result := &PlayResult{Seat: seat, Card: c, Round: round}
	if !round.Complete() {
		m.turnSeat = (seat + 1) % Seats
		result.NextSeat = m.turnSeat
		return result, nil
	}

	result.RoundOver = true
	m.resolveRound(round)

	hr := rule.ResolveHand(m.hand.Outcomes())
	if !hr.Done {
		m.hand.Rounds = append(m.hand.Rounds, m.newRound(len(m.hand.Rounds)+1, m.turnSeat))
		result.NextSeat = m.turnSeat
		return result, nil
	}

	outcome := m.finishHand(hr.Winner, hr.Void, false)
	result.Hand = outcome
	if err := m.advance(); err != nil {
		return nil, err
	}
	result.Finished = m.status == StatusFinished
	result.NewHand = !result.Finished
	result.NextSeat = m.turnSeat
	return result, nil
}

// CallBid 请求加注
func (m *Match) CallBid(seat int) (*CallResult, error) {
	switch m.status {
	case StatusFinished:
		return nil, apperrors.ErrNoActiveMatch
	case StatusBidRequested:
		// 已有未回应的加注
		return nil, apperrors.ErrInvalidBidState
	}
	if seat < 0 || seat >= Seats {
		return nil, apperrors.ErrNotInRoom
	}
	next, ok := rule.NextBet(m.hand.BetValue)
	if !ok {
		return nil, apperrors.ErrBidNotRaisable
	}

	team := m.teams[seat]
	m.status = StatusBidRequested
	m.hand.RequestingTeam = team
	m.hand.ProposedValue = next

	return &CallResult{
		Seat:          seat,
		Team:          team,
		CurrentValue:  m.hand.BetValue,
		ProposedValue: next,
	}, nil
}

// RespondBid 回应加注。拒绝时加注方按加注前的分值拿下本手
func (m *Match) RespondBid(seat int, accept bool) (*RespondResult, error) {
	switch m.status {
	case StatusFinished:
		return nil, apperrors.ErrNoActiveMatch
	case StatusInProgress:
		return nil, apperrors.ErrInvalidBidState
	}
	if seat < 0 || seat >= Seats {
		return nil, apperrors.ErrNotInRoom
	}
	team := m.teams[seat]
	if team == m.hand.RequestingTeam {
		return nil, apperrors.ErrBidRespondedByWrongTeam
	}

	result := &RespondResult{Seat: seat, Team: team, Accepted: accept}
	if accept {
		m.hand.BetValue = m.hand.ProposedValue
		m.clearBid()
		m.status = StatusInProgress
		result.BetValue = m.hand.BetValue
		return result, nil
	}

	requesting := m.hand.RequestingTeam
	m.clearBid()
	result.BetValue = m.hand.BetValue
	result.Hand = m.finishHand(requesting, false, true)
	if err := m.advance(); err != nil {
		return nil, err
	}
	result.Finished = m.status == StatusFinished
	result.NewHand = !result.Finished
	return result, nil
}

// --- 内部流程 ---

func (m *Match) startHand() error {
	hands, vira, err := m.dealer(Seats)
	if err != nil {
		return fmt.Errorf("deal hand: %w", err)
	}
	if len(hands) != Seats {
		return fmt.Errorf("dealer returned %d hands", len(hands))
	}

	index := m.handsPlayed + 1
	leader := (index - 1) % Seats
	for seat := range Seats {
		m.hands[seat] = slices.Clone(hands[seat])
	}
	m.hand = &Hand{
		Index:          index,
		Vira:           vira,
		Leader:         leader,
		BetValue:       rule.BetLadder[0],
		RequestingTeam: rule.NoTeam,
		Winner:         rule.NoTeam,
	}
	m.hand.Rounds = []*Round{m.newRound(1, leader)}
	m.turnSeat = leader
	m.status = StatusInProgress
	return nil
}

func (m *Match) newRound(index, leader int) *Round {
	return &Round{
		Index:       index,
		Leader:      leader,
		Played:      make([]PlayedCard, 0, Seats),
		WinningSeat: -1,
	}
}

// resolveRound 结算一轮，并设置下一轮的先手
func (m *Match) resolveRound(r *Round) {
	cards := make([]card.Card, len(r.Played))
	for i, p := range r.Played {
		cards[i] = p.Card
	}

	best, tie := rule.Best(cards, m.hand.Vira)
	if tie {
		r.Outcome = rule.Tied
		m.turnSeat = r.Leader
		return
	}
	winner := r.Played[best]
	r.Outcome = rule.OutcomeFor(winner.Team)
	r.WinningSeat = winner.Seat
	m.turnSeat = winner.Seat
}

func (m *Match) finishHand(winner rule.Team, void, declined bool) *HandOutcome {
	h := m.hand
	h.Winner = winner
	h.Void = void
	m.handsPlayed++

	outcome := &HandOutcome{
		Index:    h.Index,
		Winner:   winner,
		Void:     void,
		Declined: declined,
	}
	if !void && winner != rule.NoTeam {
		outcome.Points = h.BetValue
		m.scores[winner] += h.BetValue
		if m.scores[winner] >= m.targetScore {
			m.status = StatusFinished
			m.winner = winner
		}
	}
	return outcome
}

// advance 比赛未结束时发下一手牌
func (m *Match) advance() error {
	if m.status == StatusFinished {
		return nil
	}
	return m.startHand()
}

func (m *Match) clearBid() {
	m.hand.RequestingTeam = rule.NoTeam
	m.hand.ProposedValue = 0
}
