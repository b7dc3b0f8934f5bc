package rule

import (
	"github.com/palemoky/truco-server/internal/game/card"
)

// Team 定义队伍
type Team int

const (
	NoTeam Team = iota - 1
	TeamA         // 座位 0、2
	TeamB         // 座位 1、3
)

func (t Team) String() string {
	switch t {
	case TeamA:
		return "A"
	case TeamB:
		return "B"
	default:
		return ""
	}
}

// Other 对方队伍
func (t Team) Other() Team {
	switch t {
	case TeamA:
		return TeamB
	case TeamB:
		return TeamA
	default:
		return NoTeam
	}
}

// TeamForSeat 按座位奇偶分队
func TeamForSeat(seat int) Team {
	if seat%2 == 0 {
		return TeamA
	}
	return TeamB
}

// manilhaBase manilha 的强度下限，高于所有普通牌
const manilhaBase = 10

// ManilhaRank 返回 vira 的下一个点数
func ManilhaRank(vira card.Card) card.Rank {
	return vira.Rank.Next()
}

// IsManilha 判断是否为本手牌的 manilha
func IsManilha(c, vira card.Card) bool {
	return c.Rank == ManilhaRank(vira)
}

// Strength 计算牌力。manilha 为 10+花色序，其余为点数序
func Strength(c, vira card.Card) int {
	if IsManilha(c, vira) {
		return manilhaBase + int(c.Suit)
	}
	return int(c.Rank)
}

// Compare 比较两张牌，返回 1、0 或 -1
func Compare(c1, c2, vira card.Card) int {
	s1, s2 := Strength(c1, vira), Strength(c2, vira)
	switch {
	case s1 > s2:
		return 1
	case s1 < s2:
		return -1
	default:
		return 0
	}
}

// Best 返回牌力最大的牌的下标；若最大牌力不唯一则 tie 为 true
func Best(cards []card.Card, vira card.Card) (idx int, tie bool) {
	if len(cards) == 0 {
		return -1, false
	}
	idx = 0
	for i := 1; i < len(cards); i++ {
		switch Compare(cards[i], cards[idx], vira) {
		case 1:
			idx, tie = i, false
		case 0:
			tie = true
		}
	}
	return idx, tie
}
