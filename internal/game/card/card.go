package card

import (
	"fmt"
	"strings"
)

// Suit 定义花色，数值即为manilha之间的大小顺序
type Suit int

// Rank 定义点数，数值即为普通牌的大小顺序
type Rank int

// Card 定义一张牌
type Card struct {
	Rank Rank
	Suit Suit
}

const (
	Diamonds Suit = iota // 方块 ♦
	Spades               // 黑桃 ♠
	Hearts               // 红心 ♥
	Clubs                // 梅花 ♣
)

// Suits 所有花色（按manilha大小升序）
var Suits = []Suit{Diamonds, Spades, Hearts, Clubs}

var suitNames = map[Suit]string{
	Diamonds: "diamonds",
	Spades:   "spades",
	Hearts:   "hearts",
	Clubs:    "clubs",
}

var suitSymbols = map[Suit]string{
	Diamonds: "♦",
	Spades:   "♠",
	Hearts:   "♥",
	Clubs:    "♣",
}

func (s Suit) String() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return ""
}

// Symbol 返回花色符号
func (s Suit) Symbol() string {
	return suitSymbols[s]
}

// ParseSuit 解析花色名称
func ParseSuit(name string) (Suit, error) {
	for s, n := range suitNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return -1, fmt.Errorf("unknown suit: %q", name)
}

// 点数按固定顺序 4,5,6,7,Q,J,K,A,2,3 递增，顺序循环决定 manilha
const (
	Rank4 Rank = iota
	Rank5
	Rank6
	Rank7
	RankQ // Queen
	RankJ // Jack
	RankK // King
	RankA // Ace
	Rank2
	Rank3
)

// RankCount 点数总数
const RankCount = 10

var rankNames = map[Rank]string{
	Rank4: "4",
	Rank5: "5",
	Rank6: "6",
	Rank7: "7",
	RankQ: "Q",
	RankJ: "J",
	RankK: "K",
	RankA: "A",
	Rank2: "2",
	Rank3: "3",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return "?"
}

// Valid 是否为合法点数
func (r Rank) Valid() bool {
	return r >= Rank4 && r <= Rank3
}

// Next 顺序中的下一个点数（循环）
func (r Rank) Next() Rank {
	return (r + 1) % RankCount
}

// ParseRank 解析点数名称
func ParseRank(name string) (Rank, error) {
	for r, n := range rankNames {
		if strings.EqualFold(n, name) {
			return r, nil
		}
	}
	return -1, fmt.Errorf("unknown rank: %q", name)
}

// Valid 是否为合法的牌
func (c Card) Valid() bool {
	_, ok := suitNames[c.Suit]
	return ok && c.Rank.Valid()
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.Symbol()
}
