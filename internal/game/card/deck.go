package card

import (
	"errors"
	"math/rand/v2"
)

const (
	// DeckSize 一副牌 40 张（去掉 8、9、10）
	DeckSize = RankCount * 4
	// HandSize 每人手牌数
	HandSize = 3
)

// ErrDeckTooSmall 牌不够发
var ErrDeckTooSmall = errors.New("deck has too few cards to deal")

// Deck 定义一副牌
type Deck []Card

// NewDeck 生成未洗的 40 张牌
func NewDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for _, s := range Suits {
		for r := Rank4; r <= Rank3; r++ {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

func (d Deck) Shuffle() {
	rand.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// Deal 按座位顺序每人发 3 张，然后翻开下一张作为 vira
func (d Deck) Deal(players int) (hands [][]Card, vira Card, err error) {
	if players <= 0 || len(d) < HandSize*players+1 {
		return nil, Card{}, ErrDeckTooSmall
	}

	hands = make([][]Card, players)
	idx := 0
	for seat := range players {
		hands[seat] = make([]Card, HandSize)
		copy(hands[seat], d[idx:idx+HandSize])
		idx += HandSize
	}
	return hands, d[idx], nil
}

// Dealer 发牌函数，每手牌开始时调用
type Dealer func(players int) (hands [][]Card, vira Card, err error)

// ShuffledDealer 默认发牌：新牌、洗牌、发牌
func ShuffledDealer(players int) ([][]Card, Card, error) {
	deck := NewDeck()
	deck.Shuffle()
	return deck.Deal(players)
}
