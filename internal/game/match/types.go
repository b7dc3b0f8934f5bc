package match

import (
	"time"

	"github.com/palemoky/truco-server/internal/game/card"
	"github.com/palemoky/truco-server/internal/game/rule"
)

// Status 对局状态
type Status string

const (
	StatusInProgress   Status = "in_progress"
	StatusBidRequested Status = "bid_requested"
	StatusFinished     Status = "finished"
)

const (
	// Seats 每局固定 4 个座位
	Seats = 4
	// DefaultTargetScore 先到 12 分的队伍获胜
	DefaultTargetScore = 12
)

// PlayedCard 一次出牌记录，写入后不再修改
type PlayedCard struct {
	Seat     int
	Team     rule.Team
	Card     card.Card
	PlayedAt time.Time
}

// Round 一轮（每个座位各出一张）
type Round struct {
	Index       int // 1..3
	Leader      int
	Played      []PlayedCard
	Outcome     rule.Outcome
	WinningSeat int // 平局或未结束时为 -1
}

// Complete 本轮是否已出满
func (r *Round) Complete() bool {
	return len(r.Played) == Seats
}

// Hand 一手牌（1~3 轮）
type Hand struct {
	Index          int
	Vira           card.Card
	Leader         int
	Rounds         []*Round
	BetValue       int
	RequestingTeam rule.Team // 未回应的加注方，没有时为 NoTeam
	ProposedValue  int
	Winner         rule.Team
	Void           bool
}

// CurrentRound 当前轮
func (h *Hand) CurrentRound() *Round {
	return h.Rounds[len(h.Rounds)-1]
}

// Outcomes 已结束各轮的结果
func (h *Hand) Outcomes() []rule.Outcome {
	outcomes := make([]rule.Outcome, 0, len(h.Rounds))
	for _, r := range h.Rounds {
		if r.Complete() {
			outcomes = append(outcomes, r.Outcome)
		}
	}
	return outcomes
}

// HandOutcome 一手牌的结算结果
type HandOutcome struct {
	Index    int
	Winner   rule.Team
	Void     bool
	Points   int
	Declined bool // 因拒绝加注而结束
}

// PlayResult 出牌结果
type PlayResult struct {
	Seat      int
	Card      card.Card
	NextSeat  int
	Round     *Round
	RoundOver bool
	Hand      *HandOutcome // 本手结束时非空
	NewHand   bool
	Finished  bool
}

// CallResult 加注请求结果
type CallResult struct {
	Seat          int
	Team          rule.Team
	CurrentValue  int
	ProposedValue int
}

// RespondResult 回应加注的结果
type RespondResult struct {
	Seat     int
	Team     rule.Team
	Accepted bool
	BetValue int
	Hand     *HandOutcome // 拒绝时非空
	NewHand  bool
	Finished bool
}
