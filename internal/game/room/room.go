package room

import (
	"sync"
	"time"

	"github.com/palemoky/truco-server/internal/game/match"
	"github.com/palemoky/truco-server/internal/game/rule"
	"github.com/palemoky/truco-server/internal/protocol"
	"github.com/palemoky/truco-server/internal/server/storage"
	"github.com/palemoky/truco-server/internal/types"
)

const (
	MaxPlayers     = match.Seats
	DefaultVariant = "paulista"

	roomCodeLength = 6            // 房间号长度
	roomCodeChars  = "0123456789" // 房间号字符集
	maxChatRunes   = 200
)

// Options 创建房间的参数
type Options struct {
	Name    string
	Stake   int
	Private bool
	Variant string
}

// Player 房间中的玩家。Client 为 nil 表示掉线
type Player struct {
	ID       string
	Name     string
	Avatar   string
	Chips    int
	Seat     int
	Team     rule.Team
	Online   bool
	JoinedAt time.Time
	Client   types.ClientInterface

	// 掉线宽限计时器。graceGen 每次启动或取消都会递增，过期回调据此识别自己是否已失效
	grace    *time.Timer
	graceGen uint64
}

// Room 游戏房间，所有字段由 mu 保护
type Room struct {
	ID        string
	Code      string
	Name      string
	Stake     int
	Private   bool
	Variant   string
	CreatedAt time.Time

	Status  Status
	Players []*Player // 按座位顺序
	Match   *match.Match
	History []storage.MatchRecord

	lastActive time.Time
	closed     bool

	mu sync.Mutex
}

func newRoom(id, code string, opts Options, now time.Time) *Room {
	variant := opts.Variant
	if variant == "" {
		variant = DefaultVariant
	}
	return &Room{
		ID:         id,
		Code:       code,
		Name:       opts.Name,
		Stake:      max(opts.Stake, 0),
		Private:    opts.Private,
		Variant:    variant,
		CreatedAt:  now,
		Status:     StatusWaiting,
		Players:    make([]*Player, 0, MaxPlayers),
		lastActive: now,
	}
}

func (r *Room) playerByID(playerID string) *Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (r *Room) playerAt(seat int) *Player {
	if seat < 0 || seat >= len(r.Players) {
		return nil
	}
	return r.Players[seat]
}

// ownerID 0 号座位为房主
func (r *Room) ownerID() string {
	if len(r.Players) == 0 {
		return ""
	}
	return r.Players[0].ID
}

// renumber 座位从 0 连续编号并保持原有相对顺序，队伍随座位重新计算
func (r *Room) renumber() {
	for i, p := range r.Players {
		p.Seat = i
		p.Team = rule.TeamForSeat(i)
	}
}

func (r *Room) refreshStatus() {
	switch {
	case r.Match != nil:
		r.Status = StatusPlaying
	case len(r.Players) >= MaxPlayers:
		r.Status = StatusFull
	default:
		r.Status = StatusWaiting
	}
}

func (r *Room) teams() [match.Seats]rule.Team {
	var teams [match.Seats]rule.Team
	for i, p := range r.Players {
		teams[i] = p.Team
	}
	return teams
}

func (r *Room) onlineCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Online {
			n++
		}
	}
	return n
}

// listed 是否出现在大厅房间列表中
func (r *Room) listed() bool {
	return !r.closed && !r.Private && r.Status == StatusWaiting && len(r.Players) < MaxPlayers
}

func (r *Room) addHistory(rec storage.MatchRecord, limit int) {
	r.History = append(r.History, rec)
	if limit > 0 && len(r.History) > limit {
		r.History = r.History[len(r.History)-limit:]
	}
}

func (r *Room) listItem() protocol.RoomListItem {
	return protocol.RoomListItem{
		ID:         r.ID,
		Code:       r.Code,
		Name:       r.Name,
		Stake:      r.Stake,
		Private:    r.Private,
		Variant:    r.Variant,
		OwnerID:    r.ownerID(),
		Players:    len(r.Players),
		MaxPlayers: MaxPlayers,
		Status:     string(r.Status),
	}
}

func (r *Room) touch(now time.Time) {
	r.lastActive = now
}

func newPlayer(profile types.Profile, client types.ClientInterface, seat int, now time.Time) *Player {
	return &Player{
		ID:       profile.PlayerID,
		Name:     profile.Name,
		Avatar:   profile.Avatar,
		Chips:    profile.Chips,
		Seat:     seat,
		Team:     rule.TeamForSeat(seat),
		Online:   true,
		JoinedAt: now,
		Client:   client,
	}
}
