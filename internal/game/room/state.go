package room

// Status 房间状态
type Status string

const (
	StatusWaiting Status = "waiting" // 未满员
	StatusFull    Status = "full"    // 四人已就座，等待房主开局
	StatusPlaying Status = "playing" // 对局进行中
)

// 玩家离开房间的原因
const (
	ReasonLeft     = "left"     // 主动离开
	ReasonTimeout  = "timeout"  // 掉线超时被移出
	ReasonExpired  = "expired"  // 房间等待超时
	ReasonDeclined = "declined" // 拒绝加注导致对局结束
	ReasonScore    = "score"    // 达到目标分数
)
