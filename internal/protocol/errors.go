package protocol

// 错误码
const (
	ErrCodeUnknown        = 1000
	ErrCodeInvalidMsg     = 1001
	ErrCodeRateLimit      = 1002 // 速率限制
	ErrCodeNotRegistered  = 1003 // 尚未绑定身份
	ErrCodeSessionReplace = 1004 // 同一身份在别处登录

	ErrCodeRoomNotFound      = 2001
	ErrCodeRoomFull          = 2002
	ErrCodeNotInRoom         = 2003
	ErrCodeMatchInProgress   = 2004 // 对局进行中
	ErrCodeInsufficientStake = 2005 // 筹码不足
	ErrCodeNotRoomOwner      = 2006 // 非房主
	ErrCodeNotEnoughPlayers  = 2007 // 人数不足
	ErrCodeAlreadyInRoom     = 2008 // 已在其他房间

	ErrCodeNoActiveMatch   = 3001
	ErrCodeNotYourTurn     = 3002
	ErrCodeCardNotInHand   = 3003
	ErrCodeInvalidCard     = 3004
	ErrCodeBidNotRaisable  = 3005
	ErrCodeBidWrongTeam    = 3006
	ErrCodeInvalidBidState = 3007

	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "未知错误",
	ErrCodeInvalidMsg:        "无效的消息格式",
	ErrCodeRateLimit:         "请求过于频繁",
	ErrCodeNotRegistered:     "请先注册身份",
	ErrCodeSessionReplace:    "您的账号已在其他地方登录",
	ErrCodeRoomNotFound:      "房间不存在",
	ErrCodeRoomFull:          "房间已满",
	ErrCodeNotInRoom:         "您不在房间中",
	ErrCodeMatchInProgress:   "对局进行中",
	ErrCodeInsufficientStake: "筹码不足",
	ErrCodeNotRoomOwner:      "只有房主可以开始游戏",
	ErrCodeNotEnoughPlayers:  "需要 4 名玩家才能开始",
	ErrCodeAlreadyInRoom:     "您已在其他房间中",
	ErrCodeNoActiveMatch:     "当前没有进行中的对局",
	ErrCodeNotYourTurn:       "还没轮到您",
	ErrCodeCardNotInHand:     "这张牌不在您手中",
	ErrCodeInvalidCard:       "无效的牌",
	ErrCodeBidNotRaisable:    "已经是最高注",
	ErrCodeBidWrongTeam:      "不能回应本队的加注",
	ErrCodeInvalidBidState:   "当前不能进行该加注操作",
	ErrCodeServerMaintenance: "服务器维护中",
}
