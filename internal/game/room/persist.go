package room

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/truco-server/internal/server/storage"
)

const (
	persistQueueSize = 1024
	persistTimeout   = 3 * time.Second
)

// persistJob 一次快照写入；data 为 nil 表示删除房间
type persistJob struct {
	roomID  string
	data    *storage.RoomData
	ledger  storage.LobbyRoom
	members []storage.LobbyMember
}

// persister 单协程按入队顺序写 Redis 快照和大厅台账，保证同一房间的写入不会乱序。
// 写入失败只记日志，不影响对局。
type persister struct {
	store  *storage.RedisStore
	ledger *storage.LobbyLedger
	log    *zap.Logger

	jobs chan persistJob
	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func newPersister(store *storage.RedisStore, ledger *storage.LobbyLedger, log *zap.Logger) *persister {
	p := &persister{
		store:  store,
		ledger: ledger,
		log:    log,
		done:   make(chan struct{}),
	}
	if !store.Enabled() && !ledger.Enabled() {
		return p
	}

	p.jobs = make(chan persistJob, persistQueueSize)
	p.wg.Go(p.run)
	return p
}

func (p *persister) enqueue(job persistJob) {
	if p.jobs == nil {
		return
	}
	select {
	case p.jobs <- job:
		return
	default:
	}
	if job.data != nil {
		p.log.Warn("持久化队列已满，丢弃房间快照", zap.String("room", job.roomID))
		return
	}

	// 删除任务不能丢，否则快照和台账会残留已关闭的房间
	timer := time.NewTimer(persistTimeout)
	defer timer.Stop()
	select {
	case p.jobs <- job:
	case <-p.done:
		p.log.Error("持久化已停止，房间删除未写入", zap.String("room", job.roomID))
	case <-timer.C:
		p.log.Error("持久化队列已满，房间删除未写入", zap.String("room", job.roomID))
	}
}

func (p *persister) run() {
	for {
		select {
		case job := <-p.jobs:
			p.apply(job)
		case <-p.done:
			// 退出前写完已入队的任务
			for {
				select {
				case job := <-p.jobs:
					p.apply(job)
				default:
					return
				}
			}
		}
	}
}

func (p *persister) apply(job persistJob) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if job.data == nil {
		if err := p.store.DeleteRoom(ctx, job.roomID); err != nil {
			p.log.Warn("删除房间快照失败", zap.String("room", job.roomID), zap.Error(err))
		}
		if err := p.ledger.DeleteRoom(ctx, job.roomID); err != nil {
			p.log.Warn("删除大厅台账失败", zap.String("room", job.roomID), zap.Error(err))
		}
		return
	}

	if err := p.store.SaveRoom(ctx, job.roomID, job.data); err != nil {
		p.log.Warn("保存房间快照失败", zap.String("room", job.roomID), zap.Error(err))
	}
	if err := p.ledger.SyncRoom(ctx, job.ledger, job.members); err != nil {
		p.log.Warn("同步大厅台账失败", zap.String("room", job.roomID), zap.Error(err))
	}
}

func (p *persister) close() {
	p.once.Do(func() { close(p.done) })
	p.wg.Wait()
}
