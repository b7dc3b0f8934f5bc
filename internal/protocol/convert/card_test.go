package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/truco-server/internal/game/card"
	"github.com/palemoky/truco-server/internal/protocol"
)

func TestCardToInfo(t *testing.T) {
	t.Parallel()

	info := CardToInfo(card.Card{Rank: card.RankQ, Suit: card.Spades})
	assert.Equal(t, protocol.CardInfo{Rank: "Q", Suit: "spades"}, info)
}

func TestInfoToCard_AllDeck(t *testing.T) {
	t.Parallel()

	for _, c := range card.NewDeck() {
		got, err := InfoToCard(CardToInfo(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestInfoToCard_Invalid(t *testing.T) {
	t.Parallel()

	tests := []protocol.CardInfo{
		{Hidden: true},
		{Rank: "8", Suit: "hearts"},
		{Rank: "A", Suit: ""},
		{},
	}
	for _, info := range tests {
		_, err := InfoToCard(info)
		assert.Error(t, err, "%+v", info)
	}
}

func TestHiddenCards(t *testing.T) {
	t.Parallel()

	hidden := HiddenCards(3)
	require.Len(t, hidden, 3)
	for _, h := range hidden {
		assert.True(t, h.Hidden)
		assert.Empty(t, h.Rank)
		assert.Empty(t, h.Suit)
	}
	assert.Empty(t, HiddenCards(0))
}
