package room

import (
	"time"

	"github.com/palemoky/truco-server/internal/server/storage"
)

var testClockStart = time.Unix(1700000000, 0)

func recordWithHands(n int) storage.MatchRecord {
	return storage.MatchRecord{MatchID: "m", HandsPlayed: n, Reason: storage.RecordCompleted}
}
