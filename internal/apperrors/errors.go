package apperrors

import (
	"errors"

	"github.com/palemoky/truco-server/internal/protocol"
)

// GameError 游戏错误（房间、对局和会话共享），只回给发起方
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

func newError(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

// 预定义错误
var (
	ErrInvalidMessage  = newError(protocol.ErrCodeInvalidMsg)
	ErrRateLimited     = newError(protocol.ErrCodeRateLimit)
	ErrNotRegistered   = newError(protocol.ErrCodeNotRegistered)
	ErrSessionReplaced = newError(protocol.ErrCodeSessionReplace)
	ErrMaintenance     = newError(protocol.ErrCodeServerMaintenance)

	ErrRoomNotFound      = newError(protocol.ErrCodeRoomNotFound)
	ErrRoomFull          = newError(protocol.ErrCodeRoomFull)
	ErrNotInRoom         = newError(protocol.ErrCodeNotInRoom)
	ErrMatchInProgress   = newError(protocol.ErrCodeMatchInProgress)
	ErrInsufficientStake = newError(protocol.ErrCodeInsufficientStake)
	ErrNotRoomOwner      = newError(protocol.ErrCodeNotRoomOwner)
	ErrNotEnoughPlayers  = newError(protocol.ErrCodeNotEnoughPlayers)
	ErrAlreadyInRoom     = newError(protocol.ErrCodeAlreadyInRoom)

	ErrNoActiveMatch           = newError(protocol.ErrCodeNoActiveMatch)
	ErrNotYourTurn             = newError(protocol.ErrCodeNotYourTurn)
	ErrCardNotInHand           = newError(protocol.ErrCodeCardNotInHand)
	ErrInvalidCard             = newError(protocol.ErrCodeInvalidCard)
	ErrBidNotRaisable          = newError(protocol.ErrCodeBidNotRaisable)
	ErrBidRespondedByWrongTeam = newError(protocol.ErrCodeBidWrongTeam)
	ErrInvalidBidState         = newError(protocol.ErrCodeInvalidBidState)
)

// As 从错误链中取出 GameError
func As(err error) (*GameError, bool) {
	var ge *GameError
	ok := errors.As(err, &ge)
	return ge, ok
}
