package room

import (
	"context"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/truco-server/internal/apperrors"
	"github.com/palemoky/truco-server/internal/game/card"
	"github.com/palemoky/truco-server/internal/game/match"
	"github.com/palemoky/truco-server/internal/logger"
	"github.com/palemoky/truco-server/internal/protocol"
	"github.com/palemoky/truco-server/internal/protocol/codec"
	"github.com/palemoky/truco-server/internal/server/storage"
	"github.com/palemoky/truco-server/internal/types"
)

const (
	defaultGrace         = 30 * time.Second
	defaultRoomTimeout   = 10 * time.Minute
	defaultCleanupPeriod = time.Minute
	defaultHistorySize   = 20
)

// ManagerDeps 房间管理器依赖，零值字段使用默认值
type ManagerDeps struct {
	Store   *storage.RedisStore
	Ledger  *storage.LobbyLedger
	Results types.ResultRecorder
	Lobby   types.LobbyBroadcaster
	Logger  *zap.Logger

	Grace         time.Duration // 掉线保留座位时长
	RoomTimeout   time.Duration // 无对局房间的闲置超时
	CleanupPeriod time.Duration
	TargetScore   int
	HistorySize   int
	Dealer        card.Dealer // 为空时洗牌发牌
}

// RoomManager 房间注册表。
//
// 锁顺序：mu → Room.mu → idxMu。idxMu 只保护 players 索引，持有时不再获取其他锁。
type RoomManager struct {
	store   *storage.RedisStore
	ledger  *storage.LobbyLedger
	results types.ResultRecorder
	lobby   types.LobbyBroadcaster
	log     *zap.Logger
	persist *persister

	grace         time.Duration
	roomTimeout   time.Duration
	cleanupPeriod time.Duration
	historySize   int
	matchOpts     []match.Option
	now           func() time.Time

	rooms map[string]*Room  // roomID -> room
	codes map[string]string // 邀请码 -> roomID
	mu    sync.RWMutex

	players map[string]string // playerID -> roomID
	idxMu   sync.Mutex

	bg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
}

// NewRoomManager 创建房间管理器并启动清理协程，用完需调用 Close
func NewRoomManager(deps ManagerDeps) *RoomManager {
	log := deps.Logger
	if log == nil {
		log = logger.Log
	}

	rm := &RoomManager{
		store:         deps.Store,
		ledger:        deps.Ledger,
		results:       deps.Results,
		lobby:         deps.Lobby,
		log:           log,
		persist:       newPersister(deps.Store, deps.Ledger, log),
		grace:         orDefault(deps.Grace, defaultGrace),
		roomTimeout:   orDefault(deps.RoomTimeout, defaultRoomTimeout),
		cleanupPeriod: orDefault(deps.CleanupPeriod, defaultCleanupPeriod),
		historySize:   orDefault(deps.HistorySize, defaultHistorySize),
		now:           time.Now,
		rooms:         make(map[string]*Room),
		codes:         make(map[string]string),
		players:       make(map[string]string),
		done:          make(chan struct{}),
	}
	if deps.TargetScore > 0 {
		rm.matchOpts = append(rm.matchOpts, match.WithTargetScore(deps.TargetScore))
	}
	if deps.Dealer != nil {
		rm.matchOpts = append(rm.matchOpts, match.WithDealer(deps.Dealer))
	}

	rm.bg.Go(rm.cleanupLoop)
	return rm
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// Close 停止清理协程和所有宽限计时器，等待后台写入完成
func (rm *RoomManager) Close() {
	rm.closeOnce.Do(func() {
		close(rm.done)

		rm.mu.RLock()
		rooms := slices.Collect(maps.Values(rm.rooms))
		rm.mu.RUnlock()
		for _, room := range rooms {
			room.mu.Lock()
			for _, p := range room.Players {
				rm.stopGrace(p)
			}
			room.mu.Unlock()
		}

		rm.bg.Wait()
		rm.persist.close()
	})
}

// PurgeSnapshots 清理上一个进程留下的快照和台账。房间只存在于内存中，重启后全部失效
func (rm *RoomManager) PurgeSnapshots(ctx context.Context) error {
	ids, err := rm.store.GetAllRoomIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := rm.store.DeleteRoom(ctx, id); err != nil {
			return err
		}
	}
	if len(ids) > 0 {
		rm.log.Info("已清理过期房间快照", zap.Int("count", len(ids)))
	}
	return rm.ledger.Reset(ctx)
}

// --- 查询 ---

// GetRoom 按 ID 获取房间
func (rm *RoomManager) GetRoom(roomID string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[roomID]
}

// lookup 按 ID 或邀请码查找
func (rm *RoomManager) lookup(roomID, code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	if roomID != "" {
		return rm.rooms[roomID]
	}
	if id, ok := rm.codes[strings.TrimSpace(code)]; ok {
		return rm.rooms[id]
	}
	return nil
}

// RoomOf 玩家当前就座的房间 ID（掉线宽限期内仍算就座）
func (rm *RoomManager) RoomOf(playerID string) string {
	rm.idxMu.Lock()
	defer rm.idxMu.Unlock()
	return rm.players[playerID]
}

func (rm *RoomManager) roomOfPlayer(playerID string) *Room {
	if playerID == "" {
		return nil
	}
	return rm.GetRoom(rm.RoomOf(playerID))
}

// claimSeat 原子地登记玩家所在房间，已在其他房间时返回 false
func (rm *RoomManager) claimSeat(playerID, roomID string) bool {
	rm.idxMu.Lock()
	defer rm.idxMu.Unlock()

	if cur, ok := rm.players[playerID]; ok && cur != roomID {
		return false
	}
	rm.players[playerID] = roomID
	return true
}

func (rm *RoomManager) releaseSeat(playerID, roomID string) {
	rm.idxMu.Lock()
	defer rm.idxMu.Unlock()

	if rm.players[playerID] == roomID {
		delete(rm.players, playerID)
	}
}

// GetRoomList 大厅可见的房间：未开局、未满员且非私密
func (rm *RoomManager) GetRoomList() []protocol.RoomListItem {
	rm.mu.RLock()
	rooms := slices.Collect(maps.Values(rm.rooms))
	rm.mu.RUnlock()

	slices.SortFunc(rooms, func(a, b *Room) int { return a.CreatedAt.Compare(b.CreatedAt) })

	items := make([]protocol.RoomListItem, 0, len(rooms))
	for _, room := range rooms {
		room.mu.Lock()
		if room.listed() {
			items = append(items, room.listItem())
		}
		room.mu.Unlock()
	}
	return items
}

// RoomDetail 房间的公开状态，所有手牌均为占位
func (rm *RoomManager) RoomDetail(roomID string) (*protocol.GameStatePayload, error) {
	room := rm.GetRoom(roomID)
	if room == nil {
		return nil, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return nil, apperrors.ErrRoomNotFound
	}
	state := room.gameState("")
	return &state, nil
}

// History 房间最近的对局记录
func (rm *RoomManager) History(roomID string) ([]storage.MatchRecord, error) {
	room := rm.GetRoom(roomID)
	if room == nil {
		return nil, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	return slices.Clone(room.History), nil
}

// GetActiveGamesCount 进行中的对局数
func (rm *RoomManager) GetActiveGamesCount() int {
	rm.mu.RLock()
	rooms := slices.Collect(maps.Values(rm.rooms))
	rm.mu.RUnlock()

	count := 0
	for _, room := range rooms {
		room.mu.Lock()
		if room.Match != nil {
			count++
		}
		room.mu.Unlock()
	}
	return count
}

// RoomCount 房间总数
func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// --- 大厅通知与持久化 ---

func (rm *RoomManager) notifyLobby(msg *protocol.Message) {
	if rm.lobby != nil {
		rm.lobby.BroadcastToLobby(msg)
	}
}

// broadcastRoomsUpdated 推送最新房间列表，调用方不能持有任何房间锁
func (rm *RoomManager) broadcastRoomsUpdated() {
	if rm.lobby == nil {
		return
	}
	rm.notifyLobby(codec.MustNewMessage(protocol.MsgRoomsUpdated, protocol.RoomsListPayload{
		Rooms: rm.GetRoomList(),
	}))
}

// saveLocked 快照入队，调用方持有 room.mu
func (rm *RoomManager) saveLocked(room *Room) {
	ledgerRoom, members := room.toLedger()
	rm.persist.enqueue(persistJob{
		roomID:  room.ID,
		data:    room.toRoomData(rm.now()),
		ledger:  ledgerRoom,
		members: members,
	})
}

// closeLocked 关闭房间：释放所有座位并停止计时器，调用方持有 room.mu，之后需调用 deleteRoom
func (rm *RoomManager) closeLocked(room *Room) {
	room.closed = true
	for _, p := range room.Players {
		rm.stopGrace(p)
		rm.releaseSeat(p.ID, room.ID)
		if p.Client != nil {
			p.Client.SetRoom("")
		}
	}
	room.Players = nil
	room.Match = nil
}

// deleteRoom 从注册表移除已关闭的房间并通知大厅
func (rm *RoomManager) deleteRoom(room *Room) {
	rm.mu.Lock()
	if rm.rooms[room.ID] == room {
		delete(rm.rooms, room.ID)
		delete(rm.codes, room.Code)
	}
	rm.mu.Unlock()

	rm.persist.enqueue(persistJob{roomID: room.ID})
	rm.log.Info("房间已解散", zap.String("room", room.ID), zap.String("code", room.Code))

	rm.notifyLobby(codec.MustNewMessage(protocol.MsgRoomDeleted, protocol.RoomDeletedPayload{RoomID: room.ID}))
	rm.broadcastRoomsUpdated()
}

// afterMembership 成员变化后的收尾，调用方已释放 room.mu
func (rm *RoomManager) afterMembership(room *Room, closed bool) {
	if closed {
		rm.deleteRoom(room)
		return
	}
	rm.broadcastRoomsUpdated()
}

// generateRoomCode 生成房间号，调用方持有 rm.mu
func (rm *RoomManager) generateRoomCode() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
		}
		codeStr := string(code)
		if _, exists := rm.codes[codeStr]; !exists {
			return codeStr
		}
	}
}

// --- 清理 ---

func (rm *RoomManager) cleanupLoop() {
	ticker := time.NewTicker(rm.cleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-rm.done:
			return
		case <-ticker.C:
			rm.cleanup()
		}
	}
}

// cleanup 关闭闲置超时且没有对局的房间
func (rm *RoomManager) cleanup() {
	now := rm.now()

	rm.mu.RLock()
	rooms := slices.Collect(maps.Values(rm.rooms))
	rm.mu.RUnlock()

	for _, room := range rooms {
		room.mu.Lock()
		expired := !room.closed && room.Match == nil && now.Sub(room.lastActive) > rm.roomTimeout
		if expired {
			room.broadcast(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "房间超时已关闭"))
			rm.closeLocked(room)
		}
		room.mu.Unlock()

		if expired {
			rm.log.Info("房间闲置超时", zap.String("room", room.ID), zap.String("reason", ReasonExpired))
			rm.deleteRoom(room)
		}
	}
}
