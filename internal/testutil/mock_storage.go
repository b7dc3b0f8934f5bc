//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockLeaderboard 排行榜 mock，实现 types.ResultRecorder
type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) RecordMatchResult(ctx context.Context, playerID, playerName string, won bool) error {
	args := m.Called(ctx, playerID, playerName, won)
	return args.Error(0)
}
