//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/truco-server/internal/protocol"
	"github.com/palemoky/truco-server/internal/protocol/codec"
	"github.com/palemoky/truco-server/internal/types"
)

// MockClient 实现 types.ClientInterface 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) Profile() types.Profile {
	args := m.Called()
	return args.Get(0).(types.Profile)
}

func (m *MockClient) SetProfile(p types.Profile) {
	m.Called(p)
}

func (m *MockClient) GetRoom() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetRoom(roomID string) {
	m.Called(roomID)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient 并发安全的记录型客户端，不使用 testify（用于只关心收到什么消息的测试）
type SimpleClient struct {
	ID string

	mu       sync.Mutex
	profile  types.Profile
	roomID   string
	messages []*protocol.Message
	closed   bool
}

// NewSimpleClient 创建已注册身份的客户端，连接 ID 为 "conn-" + playerID
func NewSimpleClient(playerID, name string) *SimpleClient {
	return &SimpleClient{
		ID:      "conn-" + playerID,
		profile: types.Profile{PlayerID: playerID, Name: name},
	}
}

// WithChips 设置筹码
func (c *SimpleClient) WithChips(chips int) *SimpleClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile.Chips = chips
	return c
}

func (c *SimpleClient) GetID() string { return c.ID }

func (c *SimpleClient) Profile() types.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

func (c *SimpleClient) SetProfile(p types.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = p
}

func (c *SimpleClient) GetRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

func (c *SimpleClient) SetRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
}

func (c *SimpleClient) SendMessage(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

func (c *SimpleClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Closed 是否已被关闭
func (c *SimpleClient) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// SentMessages 已收到的所有消息（副本）
func (c *SimpleClient) SentMessages() []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*protocol.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// MessagesOfType 收到的某类消息
func (c *SimpleClient) MessagesOfType(t protocol.MessageType) []*protocol.Message {
	var out []*protocol.Message
	for _, m := range c.SentMessages() {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// LastOfType 最后一条某类消息，没有时返回 nil
func (c *SimpleClient) LastOfType(t protocol.MessageType) *protocol.Message {
	msgs := c.MessagesOfType(t)
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

// Reset 清空已收到的消息
func (c *SimpleClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

// LastPayload 解析最后一条某类消息的 payload，没有时返回 nil
func LastPayload[T any](c *SimpleClient, t protocol.MessageType) *T {
	msg := c.LastOfType(t)
	if msg == nil {
		return nil
	}
	p, err := codec.ParsePayload[T](msg)
	if err != nil {
		return nil
	}
	return p
}
