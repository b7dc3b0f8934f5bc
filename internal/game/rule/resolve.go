package rule

// Outcome 一轮（或一手）的结果
type Outcome int

const (
	Undecided Outcome = iota
	WonByA
	WonByB
	Tied
)

// OutcomeFor 把队伍换成胜负结果
func OutcomeFor(t Team) Outcome {
	switch t {
	case TeamA:
		return WonByA
	case TeamB:
		return WonByB
	default:
		return Undecided
	}
}

// Winner 结果对应的胜方，平局或未决返回 NoTeam
func (o Outcome) Winner() Team {
	switch o {
	case WonByA:
		return TeamA
	case WonByB:
		return TeamB
	default:
		return NoTeam
	}
}

func (o Outcome) Decisive() bool {
	return o == WonByA || o == WonByB
}

func (o Outcome) String() string {
	switch o {
	case WonByA:
		return "A"
	case WonByB:
		return "B"
	case Tied:
		return "tie"
	default:
		return ""
	}
}

// MaxRounds 每手牌最多 3 轮
const MaxRounds = 3

// HandResult 一手牌的裁决
type HandResult struct {
	Done   bool // 是否已决出
	Winner Team // 胜方，Void 时为 NoTeam
	Void   bool // 三轮均平，本手作废
}

// ResolveHand 根据已完成各轮的结果判断本手牌是否结束。
//
//   - 前两轮同一队获胜，或第一轮平、第二轮有胜方：该队胜
//   - 否则第三轮有胜方则其胜
//   - 第三轮平：由第一个有胜负的轮次决定；三轮全平则作废
func ResolveHand(rounds []Outcome) HandResult {
	if len(rounds) < 2 {
		return HandResult{Winner: NoTeam}
	}

	r1, r2 := rounds[0], rounds[1]
	if r1.Decisive() && r1 == r2 {
		return HandResult{Done: true, Winner: r1.Winner()}
	}
	if r1 == Tied && r2.Decisive() {
		return HandResult{Done: true, Winner: r2.Winner()}
	}
	if len(rounds) < MaxRounds {
		return HandResult{Winner: NoTeam}
	}

	if r3 := rounds[2]; r3.Decisive() {
		return HandResult{Done: true, Winner: r3.Winner()}
	}
	for _, r := range rounds[:2] {
		if r.Decisive() {
			return HandResult{Done: true, Winner: r.Winner()}
		}
	}
	return HandResult{Done: true, Winner: NoTeam, Void: true}
}
