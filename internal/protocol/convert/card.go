package convert

import (
	"fmt"

	"github.com/palemoky/truco-server/internal/game/card"
	"github.com/palemoky/truco-server/internal/protocol"
)

// CardToInfo 将 card.Card 转换为 protocol.CardInfo
func CardToInfo(c card.Card) protocol.CardInfo {
	return protocol.CardInfo{
		Rank: c.Rank.String(),
		Suit: c.Suit.String(),
	}
}

// CardsToInfos 将 []card.Card 转换为 []protocol.CardInfo
func CardsToInfos(cards []card.Card) []protocol.CardInfo {
	infos := make([]protocol.CardInfo, len(cards))
	for i, c := range cards {
		infos[i] = CardToInfo(c)
	}
	return infos
}

// HiddenCards 生成 n 张占位牌
func HiddenCards(n int) []protocol.CardInfo {
	infos := make([]protocol.CardInfo, n)
	for i := range infos {
		infos[i] = protocol.CardInfo{Hidden: true}
	}
	return infos
}

// InfoToCard 将 protocol.CardInfo 转换为 card.Card
func InfoToCard(info protocol.CardInfo) (card.Card, error) {
	if info.Hidden {
		return card.Card{}, fmt.Errorf("hidden card cannot be played")
	}
	rank, err := card.ParseRank(info.Rank)
	if err != nil {
		return card.Card{}, err
	}
	suit, err := card.ParseSuit(info.Suit)
	if err != nil {
		return card.Card{}, err
	}
	return card.Card{Rank: rank, Suit: suit}, nil
}
