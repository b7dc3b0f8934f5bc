//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/truco-server/internal/protocol"
)

// MockServer 实现 types.ServerInterface 的 mock
type MockServer struct {
	mock.Mock
}

func (m *MockServer) IsMaintenanceMode() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockServer) GetOnlineCount() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockServer) BroadcastToLobby(msg *protocol.Message) {
	m.Called(msg)
}

// LobbyRecorder 记录大厅广播，实现 types.LobbyBroadcaster
type LobbyRecorder struct {
	mu       sync.Mutex
	messages []*protocol.Message
}

func (l *LobbyRecorder) BroadcastToLobby(msg *protocol.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

// Types 已广播消息的类型序列
func (l *LobbyRecorder) Types() []protocol.MessageType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]protocol.MessageType, len(l.messages))
	for i, m := range l.messages {
		out[i] = m.Type
	}
	return out
}
