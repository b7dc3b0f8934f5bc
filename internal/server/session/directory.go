// Package session 维护玩家身份到当前连接的映射。一个身份同一时刻只绑定一个连接
package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/palemoky/truco-server/internal/apperrors"
	"github.com/palemoky/truco-server/internal/protocol/codec"
	"github.com/palemoky/truco-server/internal/types"
)

// Directory 连接目录：playerID -> 连接
type Directory struct {
	mu      sync.RWMutex
	clients map[string]types.ClientInterface
	log     *zap.Logger
}

// NewDirectory 创建连接目录
func NewDirectory(log *zap.Logger) *Directory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Directory{
		clients: make(map[string]types.ClientInterface),
		log:     log,
	}
}

// Bind 把身份绑定到连接。身份已经绑定在另一个连接上时顶替它：
// 旧连接收到 SessionReplaced 错误后被关闭，返回被顶替的连接
func (d *Directory) Bind(playerID string, client types.ClientInterface) types.ClientInterface {
	d.mu.Lock()
	old := d.clients[playerID]
	d.clients[playerID] = client
	d.mu.Unlock()

	if old == nil || old == client {
		return nil
	}

	d.log.Info("会话被顶替",
		zap.String("player", playerID),
		zap.String("old_conn", old.GetID()),
		zap.String("new_conn", client.GetID()))
	old.SendMessage(codec.NewErrorMessage(apperrors.ErrSessionReplaced.Code))
	old.Close()
	return old
}

// Unbind 连接断开时解除绑定。身份已经转到其他连接时不做任何事
func (d *Directory) Unbind(playerID string, client types.ClientInterface) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cur, ok := d.clients[playerID]; ok && cur == client {
		delete(d.clients, playerID)
		return true
	}
	return false
}

// Lookup 查找身份当前的连接
func (d *Directory) Lookup(playerID string) (types.ClientInterface, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.clients[playerID]
	return c, ok
}

// Count 已绑定身份的数量
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.clients)
}
