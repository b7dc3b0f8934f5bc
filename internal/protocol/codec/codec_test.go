package codec

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/truco-server/internal/protocol"
)

func TestMessagePool_GetPut(t *testing.T) {
	t.Parallel()

	msg := GetMessage()
	assert.NotNil(t, msg)

	msg.Type = "test"
	msg.Payload = []byte("data")
	PutMessage(msg)

	msg2 := GetMessage()
	assert.NotNil(t, msg2)
	assert.Empty(t, msg2.Type)
	assert.Nil(t, msg2.Payload)
}

func TestPools_PutNil(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		PutMessage(nil)
		PutBuffer(nil)
	})
}

func TestBufferPool_ConcurrentUse(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			buf := GetBuffer()
			buf.WriteString("payload")
			PutBuffer(buf)
		})
	}
	wg.Wait()

	assert.Equal(t, 0, GetBuffer().Len())
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	msg := MustNewMessage(protocol.MsgPlayCard, protocol.PlayCardPayload{
		RoomID: "room-1",
		Card:   protocol.CardInfo{Rank: "A", Suit: "hearts"},
	})

	data, err := Encode(msg)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\n")
	assert.Contains(t, string(data), `"type":"play-card"`)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgPlayCard, decoded.Type)

	payload, err := ParsePayload[protocol.PlayCardPayload](decoded)
	require.NoError(t, err)
	assert.Equal(t, "room-1", payload.RoomID)
	assert.Equal(t, "hearts", payload.Card.Suit)
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"payload":{}}`))
	assert.Error(t, err)
}

func TestParsePayload_EmptyAndMismatched(t *testing.T) {
	t.Parallel()

	p, err := ParsePayload[protocol.RoomPayload](&protocol.Message{Type: protocol.MsgGetRooms})
	require.NoError(t, err)
	assert.Empty(t, p.RoomID)

	_, err = ParsePayload[protocol.RoomPayload](&protocol.Message{Payload: []byte(`{"room_id":1}`)})
	assert.Error(t, err)
}

func TestNewErrorMessage(t *testing.T) {
	t.Parallel()

	msg := NewErrorMessage(protocol.ErrCodeRoomFull)
	assert.Equal(t, protocol.MsgError, msg.Type)

	payload, err := ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeRoomFull, payload.Code)
	assert.Equal(t, protocol.ErrorMessages[protocol.ErrCodeRoomFull], payload.Message)
}
