package room

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/truco-server/internal/game/card"
	"github.com/palemoky/truco-server/internal/protocol"
	"github.com/palemoky/truco-server/internal/testutil"
)

func c(r card.Rank, s card.Suit) card.Card { return card.Card{Rank: r, Suit: s} }

// Vira 4♣ makes 5 the manilha; seat 0 holds 5♥.
var (
	testVira  = c(card.Rank4, card.Clubs)
	testHands = [][]card.Card{
		{c(card.Rank5, card.Hearts), c(card.RankK, card.Diamonds), c(card.Rank6, card.Diamonds)},
		{c(card.Rank3, card.Spades), c(card.Rank4, card.Spades), c(card.Rank6, card.Spades)},
		{c(card.Rank7, card.Hearts), c(card.Rank4, card.Hearts), c(card.Rank6, card.Hearts)},
		{c(card.Rank2, card.Clubs), c(card.RankQ, card.Clubs), c(card.Rank6, card.Clubs)},
	}
)

func fixedDealer(int) ([][]card.Card, card.Card, error) {
	out := make([][]card.Card, len(testHands))
	for i, h := range testHands {
		out[i] = slices.Clone(h)
	}
	return out, testVira, nil
}

func newTestManager(t *testing.T, deps ManagerDeps) *RoomManager {
	t.Helper()
	if deps.Dealer == nil {
		deps.Dealer = fixedDealer
	}
	rm := NewRoomManager(deps)
	t.Cleanup(rm.Close)
	return rm
}

func newClients() []*testutil.SimpleClient {
	return []*testutil.SimpleClient{
		testutil.NewSimpleClient("p1", "Ana").WithChips(100),
		testutil.NewSimpleClient("p2", "Bruno").WithChips(100),
		testutil.NewSimpleClient("p3", "Carla").WithChips(100),
		testutil.NewSimpleClient("p4", "Davi").WithChips(100),
	}
}

// fullRoom creates a room with all four seats taken, in client order.
func fullRoom(t *testing.T, rm *RoomManager, clients []*testutil.SimpleClient) *Room {
	t.Helper()
	room, err := rm.Create(clients[0], Options{Name: "Mesa 1", Stake: 10})
	require.NoError(t, err)
	for _, cl := range clients[1:] {
		_, err := rm.Join(cl, room.ID, "")
		require.NoError(t, err)
	}
	return room
}

// startedRoom seats everyone, starts the match and clears recorded messages.
func startedRoom(t *testing.T, rm *RoomManager, clients []*testutil.SimpleClient) *Room {
	t.Helper()
	room := fullRoom(t, rm, clients)
	require.NoError(t, rm.StartGame(clients[0], room.ID))
	for _, cl := range clients {
		cl.Reset()
	}
	return room
}

type seatView struct {
	ID     string
	Seat   int
	Team   string
	Online bool
}

func seats(r *Room) []seatView {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]seatView, len(r.Players))
	for i, p := range r.Players {
		out[i] = seatView{ID: p.ID, Seat: p.Seat, Team: p.Team.String(), Online: p.Online}
	}
	return out
}

func statusOf(r *Room) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Status
}

func historyOf(r *Room) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.History))
	for i, h := range r.History {
		out[i] = h.Reason
	}
	return out
}

func TestRoom_RenumberPreservesOrder(t *testing.T) {
	t.Parallel()

	r := newRoom("r", "000000", Options{}, testClockStart)
	for i, id := range []string{"a", "b", "c", "d"} {
		r.Players = append(r.Players, &Player{ID: id, Seat: i})
	}
	r.Players = slices.Delete(r.Players, 1, 2)
	r.renumber()

	ids := make([]string, len(r.Players))
	for i, p := range r.Players {
		ids[i] = p.ID
		assert.Equal(t, i, p.Seat)
		assert.Equal(t, i%2 == 0, p.Team.String() == "A")
	}
	assert.Equal(t, []string{"a", "c", "d"}, ids)
}

func TestRoom_RefreshStatus(t *testing.T) {
	t.Parallel()

	r := newRoom("r", "000000", Options{}, testClockStart)
	r.refreshStatus()
	assert.Equal(t, StatusWaiting, r.Status)
	assert.Equal(t, DefaultVariant, r.Variant)

	for i := range MaxPlayers {
		r.Players = append(r.Players, &Player{Seat: i})
	}
	r.refreshStatus()
	assert.Equal(t, StatusFull, r.Status)
	assert.False(t, r.listed())
}

func TestRoom_HistoryIsCapped(t *testing.T) {
	t.Parallel()

	r := newRoom("r", "000000", Options{}, testClockStart)
	for i := range 5 {
		r.addHistory(recordWithHands(i), 3)
	}
	require.Len(t, r.History, 3)
	assert.Equal(t, 2, r.History[0].HandsPlayed)
	assert.Equal(t, 4, r.History[2].HandsPlayed)
}

func TestView_RedactsOtherHands(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, ManagerDeps{})
	clients := newClients()
	room := fullRoom(t, rm, clients)
	require.NoError(t, rm.StartGame(clients[0], room.ID))

	for seat, cl := range clients {
		started := testutil.LastPayload[protocol.GameStartedPayload](cl, protocol.MsgGameStarted)
		require.NotNil(t, started, "seat %d", seat)

		view := started.Match
		assert.Equal(t, seat, view.MySeat)
		assert.Len(t, view.MyHand, card.HandSize)
		for _, info := range view.MyHand {
			assert.False(t, info.Hidden)
		}
		assert.Equal(t, "4", view.Hand.Vira.Rank)
		assert.Equal(t, "5", view.Hand.Manilha)

		for _, pi := range view.Players {
			assert.Equal(t, card.HandSize, pi.CardCount)
			require.Len(t, pi.Hand, card.HandSize)
			for _, info := range pi.Hand {
				if pi.Seat == seat {
					assert.False(t, info.Hidden)
					assert.NotEmpty(t, info.Rank)
				} else {
					assert.True(t, info.Hidden)
					assert.Empty(t, info.Rank)
					assert.Empty(t, info.Suit)
				}
			}
		}
	}
}

func TestRoomDetail_HidesEveryHand(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, ManagerDeps{})
	clients := newClients()
	room := startedRoom(t, rm, clients)

	detail, err := rm.RoomDetail(room.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Match)
	assert.Equal(t, -1, detail.Match.MySeat)
	assert.Empty(t, detail.Match.MyHand)
	for _, pi := range detail.Players {
		for _, info := range pi.Hand {
			assert.True(t, info.Hidden)
		}
	}

	_, err = rm.RoomDetail("missing")
	assert.Error(t, err)
}
