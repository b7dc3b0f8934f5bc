package rule

import "slices"

// BetLadder 下注档位
var BetLadder = []int{1, 3, 6, 9, 12}

// MaxBet 最高档位
const MaxBet = 12

// NextBet 返回下一个档位；已到顶或非法值返回 false
func NextBet(current int) (int, bool) {
	i := slices.Index(BetLadder, current)
	if i < 0 || i+1 >= len(BetLadder) {
		return 0, false
	}
	return BetLadder[i+1], true
}

// ValidBet 是否是合法档位
func ValidBet(v int) bool {
	return slices.Contains(BetLadder, v)
}
