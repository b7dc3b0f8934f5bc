package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/palemoky/truco-server/internal/server/storage"
)

func stalledPersister() *persister {
	return &persister{
		log:  zap.NewNop(),
		jobs: make(chan persistJob, 1),
		done: make(chan struct{}),
	}
}

func TestPersister_FullQueueKeepsDeletes(t *testing.T) {
	t.Parallel()

	p := stalledPersister()
	p.enqueue(persistJob{roomID: "r1", data: &storage.RoomData{ID: "r1"}})
	// 队列已满：快照直接丢弃
	p.enqueue(persistJob{roomID: "r1", data: &storage.RoomData{ID: "r1"}})

	sent := make(chan struct{})
	go func() {
		p.enqueue(persistJob{roomID: "r1"})
		close(sent)
	}()

	first := <-p.jobs
	require.NotNil(t, first.data)

	select {
	case job := <-p.jobs:
		assert.Equal(t, "r1", job.roomID)
		assert.Nil(t, job.data)
	case <-time.After(time.Second):
		t.Fatal("删除任务被丢弃")
	}
	<-sent
	assert.Empty(t, p.jobs)
}

func TestPersister_DeleteAfterStopReturns(t *testing.T) {
	t.Parallel()

	p := stalledPersister()
	p.jobs <- persistJob{roomID: "r1", data: &storage.RoomData{ID: "r1"}}
	close(p.done)

	start := time.Now()
	p.enqueue(persistJob{roomID: "r1"})
	assert.Less(t, time.Since(start), persistTimeout)
	assert.Len(t, p.jobs, 1)
}
