package room

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/truco-server/internal/apperrors"
	"github.com/palemoky/truco-server/internal/protocol"
	"github.com/palemoky/truco-server/internal/server/storage"
	"github.com/palemoky/truco-server/internal/testutil"
)

func TestCreate_SeatsCreatorAsOwner(t *testing.T) {
	t.Parallel()

	lobby := &testutil.LobbyRecorder{}
	rm := newTestManager(t, ManagerDeps{Lobby: lobby})
	ana := newClients()[0]

	room, err := rm.Create(ana, Options{Name: "Mesa", Stake: 50, Variant: "mineiro"})
	require.NoError(t, err)

	assert.Len(t, room.Code, roomCodeLength)
	assert.Equal(t, room.ID, ana.GetRoom())
	assert.Equal(t, room.ID, rm.RoomOf("p1"))
	assert.Equal(t, []seatView{{ID: "p1", Seat: 0, Team: "A", Online: true}}, seats(room))

	joined := testutil.LastPayload[protocol.RoomJoinedPayload](ana, protocol.MsgRoomJoined)
	require.NotNil(t, joined)
	assert.Equal(t, 0, joined.Seat)
	assert.False(t, joined.Reconnected)
	assert.Equal(t, "p1", joined.Room.OwnerID)
	assert.Equal(t, "mineiro", joined.Room.Variant)

	assert.Equal(t, []protocol.MessageType{protocol.MsgRoomCreated, protocol.MsgRoomsUpdated}, lobby.Types())

	list := rm.GetRoomList()
	require.Len(t, list, 1)
	assert.Equal(t, "Mesa", list[0].Name)
	assert.Equal(t, 1, list[0].Players)
}

func TestCreate_Rejections(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, ManagerDeps{})

	_, err := rm.Create(testutil.NewSimpleClient("", ""), Options{})
	assert.ErrorIs(t, err, apperrors.ErrNotRegistered)

	poor := testutil.NewSimpleClient("p9", "Pobre").WithChips(5)
	_, err = rm.Create(poor, Options{Stake: 10})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStake)

	ana := newClients()[0]
	_, err = rm.Create(ana, Options{})
	require.NoError(t, err)
	_, err = rm.Create(ana, Options{})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInRoom)
	assert.Equal(t, 1, rm.RoomCount())
}

func TestCreate_PrivateRoomIsNotListed(t *testing.T) {
	t.Parallel()

	lobby := &testutil.LobbyRecorder{}
	rm := newTestManager(t, ManagerDeps{Lobby: lobby})

	room, err := rm.Create(newClients()[0], Options{Private: true})
	require.NoError(t, err)

	assert.Empty(t, rm.GetRoomList())
	assert.Empty(t, lobby.Types())

	// Private rooms are still reachable through the invite code.
	bruno := newClients()[1]
	_, err = rm.Join(bruno, "", room.Code)
	require.NoError(t, err)
}

func TestJoin_AssignsSeatsAndTeams(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, ManagerDeps{})
	clients := newClients()
	room := fullRoom(t, rm, clients)

	assert.Equal(t, []seatView{
		{ID: "p1", Seat: 0, Team: "A", Online: true},
		{ID: "p2", Seat: 1, Team: "B", Online: true},
		{ID: "p3", Seat: 2, Team: "A", Online: true},
		{ID: "p4", Seat: 3, Team: "B", Online: true},
	}, seats(room))
	assert.Equal(t, StatusFull, statusOf(room))
	assert.Empty(t, rm.GetRoomList())

	// Everyone seated before p4 was told about the arrival.
	for _, cl := range clients[:3] {
		joined := testutil.LastPayload[protocol.PlayerJoinedPayload](cl, protocol.MsgPlayerJoined)
		require.NotNil(t, joined)
		assert.Equal(t, "p4", joined.Player.ID)
		assert.Equal(t, string(StatusFull), joined.Status)
		assert.Len(t, joined.Players, 4)
	}
	assert.Empty(t, clients[3].MessagesOfType(protocol.MsgPlayerJoined))
}

func TestJoin_FullRoomIsRejectedWithoutChange(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, ManagerDeps{})
	clients := newClients()
	room := fullRoom(t, rm, clients)
	before := seats(room)
	for _, cl := range clients {
		cl.Reset()
	}

	fifth := testutil.NewSimpleClient("p5", "Eva").WithChips(100)
	_, err := rm.Join(fifth, room.ID, "")

	assert.ErrorIs(t, err, apperrors.ErrRoomFull)
	assert.Equal(t, before, seats(room))
	assert.Equal(t, StatusFull, statusOf(room))
	assert.Empty(t, rm.RoomOf("p5"))
	assert.Empty(t, fifth.GetRoom())
	for _, cl := range clients {
		assert.Empty(t, cl.SentMessages())
	}
}

func TestJoin_Rejections(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, ManagerDeps{})
	clients := newClients()
	room, err := rm.Create(clients[0], Options{Stake: 50})
	require.NoError(t, err)

	_, err = rm.Join(clients[1], "missing", "")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)

	_, err = rm.Join(clients[1], "", "999999x")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)

	poor := testutil.NewSimpleClient("p9", "Pobre").WithChips(49)
	_, err = rm.Join(poor, room.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStake)

	other, err := rm.Create(clients[2], Options{})
	require.NoError(t, err)
	_, err = rm.Join(clients[2], room.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInRoom)
	assert.Equal(t, other.ID, rm.RoomOf("p3"))

	_, err = rm.Join(clients[1], "", room.Code)
	require.NoError(t, err)
	assert.Len(t, seats(room), 2)
}

func TestLeave_RenumbersRemainingSeats(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, ManagerDeps{})
	clients := newClients()
	room := fullRoom(t, rm, clients)

	require.NoError(t, rm.Leave(clients[1]))

	assert.Equal(t, []seatView{
		{ID: "p1", Seat: 0, Team: "A", Online: true},
		{ID: "p3", Seat: 1, Team: "B", Online: true},
		{ID: "p4", Seat: 2, Team: "A", Online: true},
	}, seats(room))
	assert.Equal(t, StatusWaiting, statusOf(room))
	assert.Empty(t, clients[1].GetRoom())
	assert.Empty(t, rm.RoomOf("p2"))

	left := testutil.LastPayload[protocol.PlayerLeftPayload](clients[0], protocol.MsgPlayerLeft)
	require.NotNil(t, left)
	assert.Equal(t, "p2", left.PlayerID)
	assert.Equal(t, ReasonLeft, left.Reason)
	assert.Equal(t, 2, left.Players[2].Seat)

	assert.ErrorIs(t, rm.Leave(clients[1]), apperrors.ErrNotInRoom)
}

func TestLeave_OwnerLeavingPassesOwnership(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, ManagerDeps{})
	clients := newClients()
	room := fullRoom(t, rm, clients)

	require.NoError(t, rm.Leave(clients[0]))
	_, err := rm.Join(clients[0], room.ID, "") // back as seat 3
	require.NoError(t, err)

	assert.ErrorIs(t, rm.StartGame(clients[0], room.ID), apperrors.ErrNotRoomOwner)
	assert.NoError(t, rm.StartGame(clients[1], room.ID))
}

func TestLeave_LastPlayerDeletesRoom(t *testing.T) {
	t.Parallel()

	lobby := &testutil.LobbyRecorder{}
	rm := newTestManager(t, ManagerDeps{Lobby: lobby})
	ana := newClients()[0]
	room, err := rm.Create(ana, Options{})
	require.NoError(t, err)

	require.NoError(t, rm.Leave(ana))

	assert.Nil(t, rm.GetRoom(room.ID))
	assert.Zero(t, rm.RoomCount())
	assert.Contains(t, lobby.Types(), protocol.MsgRoomDeleted)

	_, err = rm.Join(newClients()[1], room.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)
}

func TestStartGame_Preconditions(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, ManagerDeps{})
	clients := newClients()
	room, err := rm.Create(clients[0], Options{})
	require.NoError(t, err)
	_, err = rm.Join(clients[1], room.ID, "")
	require.NoError(t, err)

	assert.ErrorIs(t, rm.StartGame(clients[0], room.ID), apperrors.ErrNotEnoughPlayers)
	assert.ErrorIs(t, rm.StartGame(clients[1], room.ID), apperrors.ErrNotRoomOwner)
	assert.ErrorIs(t, rm.StartGame(clients[2], room.ID), apperrors.ErrNotInRoom)
	assert.ErrorIs(t, rm.StartGame(clients[0], "other"), apperrors.ErrNotInRoom)

	for _, cl := range clients[2:] {
		_, err := rm.Join(cl, room.ID, "")
		require.NoError(t, err)
	}
	require.NoError(t, rm.StartGame(clients[0], room.ID))
	assert.Equal(t, StatusPlaying, statusOf(room))
	assert.Equal(t, 1, rm.GetActiveGamesCount())

	assert.ErrorIs(t, rm.StartGame(clients[0], room.ID), apperrors.ErrMatchInProgress)
}

func TestLeave_DuringMatchAbortsIt(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, ManagerDeps{})
	clients := newClients()
	room := startedRoom(t, rm, clients)

	require.NoError(t, rm.Leave(clients[2]))

	for _, cl := range []*testutil.SimpleClient{clients[0], clients[1], clients[3]} {
		aborted := testutil.LastPayload[protocol.MatchAbortedPayload](cl, protocol.MsgMatchAborted)
		require.NotNil(t, aborted)
		assert.Equal(t, "p3", aborted.PlayerID)
		assert.Equal(t, ReasonLeft, aborted.Reason)
	}
	assert.Equal(t, StatusWaiting, statusOf(room))
	assert.Equal(t, []string{storage.RecordAborted}, historyOf(room))
	assert.Zero(t, rm.GetActiveGamesCount())
	assert.ErrorIs(t, rm.PlayCard(clients[0], room.ID, protocol.CardInfo{Rank: "5", Suit: "hearts"}), apperrors.ErrNoActiveMatch)
}

func TestCleanup_ClosesIdleRooms(t *testing.T) {
	t.Parallel()

	lobby := &testutil.LobbyRecorder{}
	rm := newTestManager(t, ManagerDeps{Lobby: lobby, RoomTimeout: time.Minute})
	loner := testutil.NewSimpleClient("p0", "Zé")
	idle, err := rm.Create(loner, Options{})
	require.NoError(t, err)
	playing := startedRoom(t, rm, newClients())

	rm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	rm.cleanup()

	assert.Nil(t, rm.GetRoom(idle.ID))
	assert.Empty(t, loner.GetRoom())
	assert.Empty(t, rm.RoomOf("p0"))
	assert.NotNil(t, loner.LastOfType(protocol.MsgError))
	assert.Contains(t, lobby.Types(), protocol.MsgRoomDeleted)

	// Rooms with a match in progress are never expired.
	assert.Same(t, playing, rm.GetRoom(playing.ID))
	assert.Equal(t, 1, rm.GetActiveGamesCount())
}

func TestPersistence_SnapshotsRoomToRedis(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := storage.NewRedisStore(client)

	rm := NewRoomManager(ManagerDeps{Store: store, Dealer: fixedDealer})
	clients := newClients()
	room := fullRoom(t, rm, clients)
	require.NoError(t, rm.StartGame(clients[0], room.ID))
	rm.Close()

	data, err := store.LoadRoom(context.Background(), room.ID)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, string(StatusPlaying), data.Status)
	require.Len(t, data.Players, 4)
	assert.Equal(t, "B", data.Players[3].Team)
	require.NotNil(t, data.Match)
	assert.Equal(t, 1, data.Match.HandIndex)

	// A fresh process drops snapshots left behind.
	rm2 := NewRoomManager(ManagerDeps{Store: store})
	t.Cleanup(rm2.Close)
	require.NoError(t, rm2.PurgeSnapshots(context.Background()))
	ids, err := store.GetAllRoomIDs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFinishMatch_RecordsResults(t *testing.T) {
	t.Parallel()

	lb := &testutil.MockLeaderboard{}
	for _, id := range []string{"p1", "p3"} {
		lb.On("RecordMatchResult", mock.Anything, id, mock.Anything, true).Return(nil).Once()
	}
	for _, id := range []string{"p2", "p4"} {
		lb.On("RecordMatchResult", mock.Anything, id, mock.Anything, false).Return(nil).Once()
	}

	rm := NewRoomManager(ManagerDeps{Results: lb, TargetScore: 1, Dealer: fixedDealer})
	clients := newClients()
	room := startedRoom(t, rm, clients)

	require.NoError(t, rm.CallTruco(clients[0], room.ID))
	require.NoError(t, rm.RespondTruco(clients[1], room.ID, false))
	rm.Close()

	lb.AssertExpectations(t)
	assert.Equal(t, []string{storage.RecordCompleted}, historyOf(room))
	assert.Equal(t, StatusWaiting, statusOf(room))
}
