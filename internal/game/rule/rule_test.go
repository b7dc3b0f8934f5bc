package rule

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/truco-server/internal/game/card"
)

func c(r card.Rank, s card.Suit) card.Card { return card.Card{Rank: r, Suit: s} }

func TestManilhaRank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		vira card.Card
		want card.Rank
	}{
		{c(card.Rank4, card.Clubs), card.Rank5},
		{c(card.Rank7, card.Hearts), card.RankQ},
		{c(card.RankK, card.Spades), card.RankA},
		{c(card.Rank3, card.Diamonds), card.Rank4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ManilhaRank(tt.vira), "vira %v", tt.vira)
	}
}

// vira 4♣ makes 5 the manilha; 5♥ beats every non-manilha and 5♦.
func TestCompare_ManilhaBeatsEverything(t *testing.T) {
	t.Parallel()

	vira := c(card.Rank4, card.Clubs)
	fiveHearts := c(card.Rank5, card.Hearts)

	for _, other := range card.NewDeck() {
		if other.Rank == card.Rank5 {
			continue
		}
		assert.Equal(t, 1, Compare(fiveHearts, other, vira), "5♥ vs %v", other)
	}
	assert.Equal(t, 1, Compare(fiveHearts, c(card.Rank5, card.Diamonds), vira))
	assert.Equal(t, -1, Compare(fiveHearts, c(card.Rank5, card.Clubs), vira))
}

func TestCompare_TotalAndAntisymmetric(t *testing.T) {
	t.Parallel()

	deck := card.NewDeck()
	for _, vira := range deck {
		for _, c1 := range deck {
			for _, c2 := range deck {
				if c1 == c2 {
					continue
				}
				assert.Equal(t, Compare(c1, c2, vira), -Compare(c2, c1, vira))
				if IsManilha(c1, vira) && !IsManilha(c2, vira) {
					assert.Equal(t, 1, Compare(c1, c2, vira))
				}
			}
		}
	}
}

func TestCompare_SameRankTies(t *testing.T) {
	t.Parallel()

	vira := c(card.Rank7, card.Hearts)
	assert.Equal(t, 0, Compare(c(card.Rank3, card.Spades), c(card.Rank3, card.Hearts), vira))
	// The manilha rank is ordered by suit instead.
	assert.Equal(t, -1, Compare(c(card.RankQ, card.Spades), c(card.RankQ, card.Hearts), vira))
}

func TestBest(t *testing.T) {
	t.Parallel()

	vira := c(card.RankK, card.Diamonds) // manilha A

	idx, tie := Best([]card.Card{
		c(card.Rank3, card.Hearts),
		c(card.Rank4, card.Clubs),
		c(card.RankA, card.Diamonds),
		c(card.Rank2, card.Spades),
	}, vira)
	assert.Equal(t, 2, idx)
	assert.False(t, tie)

	_, tie = Best([]card.Card{
		c(card.Rank3, card.Hearts),
		c(card.Rank4, card.Clubs),
		c(card.Rank3, card.Spades),
		c(card.Rank2, card.Spades),
	}, vira)
	assert.True(t, tie)

	// A later stronger card clears an earlier tie.
	idx, tie = Best([]card.Card{
		c(card.Rank2, card.Hearts),
		c(card.Rank2, card.Clubs),
		c(card.RankA, card.Clubs),
		c(card.Rank4, card.Spades),
	}, vira)
	assert.Equal(t, 2, idx)
	assert.False(t, tie)
}

func TestBest_RandomRounds(t *testing.T) {
	t.Parallel()

	deck := card.NewDeck()
	rng := rand.New(rand.NewPCG(20, 26))
	for range 5000 {
		perm := rng.Perm(len(deck))
		vira := deck[perm[0]]
		played := []card.Card{deck[perm[1]], deck[perm[2]], deck[perm[3]], deck[perm[4]]}

		top, count := -1, 0
		for _, pc := range played {
			switch st := Strength(pc, vira); {
			case st > top:
				top, count = st, 1
			case st == top:
				count++
			}
		}

		idx, tie := Best(played, vira)
		if !assert.Equal(t, count > 1, tie, "vira %v played %v", vira, played) {
			return
		}
		assert.Equal(t, top, Strength(played[idx], vira), "vira %v played %v", vira, played)
	}
}

func TestTeamForSeat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TeamA, TeamForSeat(0))
	assert.Equal(t, TeamB, TeamForSeat(1))
	assert.Equal(t, TeamA, TeamForSeat(2))
	assert.Equal(t, TeamB, TeamForSeat(3))
	assert.Equal(t, TeamB, TeamA.Other())
	assert.Equal(t, NoTeam, NoTeam.Other())
}

func TestResolveHand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		rounds []Outcome
		want   HandResult
	}{
		{"one round is never enough", []Outcome{WonByA}, HandResult{Winner: NoTeam}},
		{"two straight wins", []Outcome{WonByB, WonByB}, HandResult{Done: true, Winner: TeamB}},
		{"tie then win", []Outcome{Tied, WonByA}, HandResult{Done: true, Winner: TeamA}},
		{"split needs third", []Outcome{WonByA, WonByB}, HandResult{Winner: NoTeam}},
		{"win then tie needs third", []Outcome{WonByA, Tied}, HandResult{Winner: NoTeam}},
		{"split decided by third", []Outcome{WonByA, WonByB, WonByB}, HandResult{Done: true, Winner: TeamB}},
		{"double tie decided by third", []Outcome{Tied, Tied, WonByA}, HandResult{Done: true, Winner: TeamA}},
		{"third tie goes to first decisive", []Outcome{WonByB, WonByA, Tied}, HandResult{Done: true, Winner: TeamB}},
		{"win tie tie", []Outcome{WonByA, Tied, Tied}, HandResult{Done: true, Winner: TeamA}},
		{"all tied is void", []Outcome{Tied, Tied, Tied}, HandResult{Done: true, Winner: NoTeam, Void: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ResolveHand(tt.rounds))
		})
	}
}

func TestNextBet(t *testing.T) {
	t.Parallel()

	seq := []int{1}
	for v := 1; ; {
		next, ok := NextBet(v)
		if !ok {
			break
		}
		assert.Greater(t, next, v)
		seq = append(seq, next)
		v = next
	}
	assert.Equal(t, BetLadder, seq)

	_, ok := NextBet(MaxBet)
	assert.False(t, ok)
	_, ok = NextBet(4)
	assert.False(t, ok)
	assert.True(t, ValidBet(9))
	assert.False(t, ValidBet(2))
}
