package protocol

// --- 客户端请求 Payloads ---

// RegisterPayload 绑定玩家身份
type RegisterPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	Chips    int    `json:"chips"`
}

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	Name    string `json:"name"`
	Stake   int    `json:"stake"`
	Private bool   `json:"private"`
	Variant string `json:"variant,omitempty"` // paulista / mineiro / gaucho
}

// JoinRoomPayload 加入房间请求，按 ID 或邀请码
type JoinRoomPayload struct {
	RoomID   string `json:"room_id,omitempty"`
	RoomCode string `json:"room_code,omitempty"`
}

// RoomPayload 只携带房间 ID 的请求（leave-room、start-game、call-truco）
type RoomPayload struct {
	RoomID string `json:"room_id"`
}

// PlayCardPayload 出牌请求
type PlayCardPayload struct {
	RoomID string   `json:"room_id"`
	Card   CardInfo `json:"card"`
}

// RespondTrucoPayload 回应加注
type RespondTrucoPayload struct {
	RoomID string `json:"room_id"`
	Accept bool   `json:"accept"`
}

// GetRankingPayload 获取排行榜请求
type GetRankingPayload struct {
	Limit int `json:"limit"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	ConnectionID string `json:"connection_id"`
}

// RegisteredPayload 身份绑定成功
type RegisteredPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	RoomID   string `json:"room_id,omitempty"` // 仍有座位的房间，客户端可据此 join-room 重连
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// RoomsListPayload 房间列表（rooms-list / rooms-updated）
type RoomsListPayload struct {
	Rooms []RoomListItem `json:"rooms"`
}

// RoomCreatedPayload 新房间通知（大厅）
type RoomCreatedPayload struct {
	Room RoomListItem `json:"room"`
}

// RoomDeletedPayload 房间删除通知（大厅）
type RoomDeletedPayload struct {
	RoomID string `json:"room_id"`
}

// RoomJoinedPayload 入座成功（只发给自己）
type RoomJoinedPayload struct {
	Room        RoomListItem `json:"room"`
	Seat        int          `json:"seat"`
	Players     []PlayerInfo `json:"players"`
	Reconnected bool         `json:"reconnected"`
}

// PlayerJoinedPayload 其他玩家加入通知
type PlayerJoinedPayload struct {
	Player  PlayerInfo   `json:"player"`
	Players []PlayerInfo `json:"players"`
	Status  string       `json:"status"`
}

// PlayerLeftPayload 玩家离开或被移出，Players 为重新编号后的座位
type PlayerLeftPayload struct {
	PlayerID string       `json:"player_id"`
	Name     string       `json:"name"`
	Players  []PlayerInfo `json:"players"`
	Status   string       `json:"status"`
	Reason   string       `json:"reason,omitempty"`
}

// PlayerDisconnectedPayload 玩家掉线通知
type PlayerDisconnectedPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Seat     int    `json:"seat"`
	Timeout  int    `json:"timeout"` // 等待重连超时（秒）
}

// PlayerReconnectedPayload 玩家重连通知
type PlayerReconnectedPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Seat     int    `json:"seat"`
}

// GameStartedPayload 对局开始（按接收者脱敏）
type GameStartedPayload struct {
	Match MatchView `json:"match"`
}

// CardPlayedPayload 出牌通知
type CardPlayedPayload struct {
	PlayerID  string     `json:"player_id"`
	Seat      int        `json:"seat"`
	Card      CardInfo   `json:"card"`
	NextSeat  int        `json:"next_seat"`
	Round     RoundView  `json:"round"`
	RoundOver bool       `json:"round_over"`
	Scores    TeamScores `json:"scores"`
}

// NewHandPayload 新一手牌（按接收者脱敏），Previous 为上一手的结算
type NewHandPayload struct {
	Previous *HandResultInfo `json:"previous,omitempty"`
	Voided   bool            `json:"voided"`
	Match    MatchView       `json:"match"`
}

// HandResultInfo 一手牌的结算
type HandResultInfo struct {
	Index    int    `json:"index"`
	Winner   string `json:"winner,omitempty"` // A / B，作废时为空
	Void     bool   `json:"void"`
	Points   int    `json:"points"`
	Declined bool   `json:"declined"`
}

// TrucoCalledPayload 加注请求通知
type TrucoCalledPayload struct {
	PlayerID      string `json:"player_id"`
	Name          string `json:"name"`
	Seat          int    `json:"seat"`
	Team          string `json:"team"`
	CurrentValue  int    `json:"current_value"`
	ProposedValue int    `json:"proposed_value"`
}

// TrucoAcceptedPayload 加注被接受
type TrucoAcceptedPayload struct {
	PlayerID string `json:"player_id"`
	Team     string `json:"team"`
	BetValue int    `json:"bet_value"`
}

// TrucoDeclinedPayload 加注被拒绝，请求方按加注前的分值拿下本手
type TrucoDeclinedPayload struct {
	PlayerID    string     `json:"player_id"`
	Team        string     `json:"team"`
	WinningTeam string     `json:"winning_team"`
	Points      int        `json:"points"`
	Scores      TeamScores `json:"scores"`
}

// GameOverPayload 对局结束
type GameOverPayload struct {
	MatchID     string     `json:"match_id"`
	WinningTeam string     `json:"winning_team"`
	Scores      TeamScores `json:"scores"`
	HandsPlayed int        `json:"hands_played"`
	Reason      string     `json:"reason,omitempty"`
}

// MatchAbortedPayload 对局中止
type MatchAbortedPayload struct {
	MatchID  string `json:"match_id"`
	PlayerID string `json:"player_id"`
	Reason   string `json:"reason"`
}

// GameStatePayload 重连后的完整状态（按接收者脱敏）
type GameStatePayload struct {
	Room    RoomListItem `json:"room"`
	Players []PlayerInfo `json:"players"`
	Match   *MatchView   `json:"match,omitempty"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// StatsPayload 个人统计结果
type StatsPayload struct {
	PlayerID      string  `json:"player_id"`
	Name          string  `json:"name"`
	TotalGames    int     `json:"total_games"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	WinRate       float64 `json:"win_rate"`
	Score         int     `json:"score"`
	Rank          int     `json:"rank"`
	CurrentStreak int     `json:"current_streak"`
	MaxWinStreak  int     `json:"max_win_streak"`
}

// RankingPayload 排行榜结果
type RankingPayload struct {
	Entries []RankingEntry `json:"entries"`
}

// RankingEntry 排行榜条目
type RankingEntry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Score    int     `json:"score"`
	Wins     int     `json:"wins"`
	WinRate  float64 `json:"win_rate"`
}

// ChatPayload 聊天消息。客户端只填 RoomID 和 Text，其余由服务端填充
type ChatPayload struct {
	RoomID     string `json:"room_id"`
	Text       string `json:"text"`
	SenderID   string `json:"sender_id,omitempty"`
	SenderName string `json:"sender_name,omitempty"`
	Time       int64  `json:"time,omitempty"`
}

// --- 通用数据结构 ---

// RoomListItem 房间摘要
type RoomListItem struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Stake      int    `json:"stake"`
	Private    bool   `json:"private"`
	Variant    string `json:"variant"`
	OwnerID    string `json:"owner_id"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
	Status     string `json:"status"`
}

// PlayerInfo 玩家信息。Hand 只在接收者本人时为明牌，其余为占位
type PlayerInfo struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Avatar    string     `json:"avatar,omitempty"`
	Chips     int        `json:"chips"`
	Seat      int        `json:"seat"`
	Team      string     `json:"team"`
	Online    bool       `json:"online"`
	IsOwner   bool       `json:"is_owner"`
	CardCount int        `json:"card_count"`
	Hand      []CardInfo `json:"hand,omitempty"`
}

// TeamScores 两队得分
type TeamScores struct {
	A int `json:"A"`
	B int `json:"B"`
}

// MatchView 某个接收者看到的对局
type MatchView struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	TurnSeat    int          `json:"turn_seat"`
	Scores      TeamScores   `json:"scores"`
	TargetScore int          `json:"target_score"`
	Hand        HandView     `json:"hand"`
	Players     []PlayerInfo `json:"players"`
	MySeat      int          `json:"my_seat"`
	MyTeam      string       `json:"my_team"`
	MyHand      []CardInfo   `json:"my_hand"`
}

// HandView 一手牌的公开信息
type HandView struct {
	Index          int         `json:"index"`
	Vira           CardInfo    `json:"vira"`
	Manilha        string      `json:"manilha"`
	BetValue       int         `json:"bet_value"`
	RequestingTeam string      `json:"requesting_team,omitempty"`
	ProposedValue  int         `json:"proposed_value,omitempty"`
	Rounds         []RoundView `json:"rounds"`
}

// RoundView 一轮的公开信息
type RoundView struct {
	Index       int              `json:"index"`
	Played      []PlayedCardInfo `json:"played"`
	Outcome     string           `json:"outcome,omitempty"` // A / B / tie
	WinningSeat int              `json:"winning_seat"`
}

// PlayedCardInfo 已出的牌
type PlayedCardInfo struct {
	Seat     int      `json:"seat"`
	PlayerID string   `json:"player_id"`
	Card     CardInfo `json:"card"`
	PlayedAt int64    `json:"played_at"` // 毫秒
}

// CardInfo 牌信息。Hidden 为 true 时是他人手牌的占位，不含点数和花色
type CardInfo struct {
	Rank   string `json:"rank,omitempty"`
	Suit   string `json:"suit,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}
