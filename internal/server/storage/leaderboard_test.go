package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLeaderboard(t *testing.T) *Leaderboard {
	t.Helper()
	client, _ := newTestRedis(t)
	lb := NewLeaderboard(client)
	lb.now = func() time.Time { return time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) }
	return lb
}

func TestLeaderboard_RecordMatchResult(t *testing.T) {
	t.Parallel()

	lb := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lb.RecordMatchResult(ctx, "p1", "Ana", true))
	require.NoError(t, lb.RecordMatchResult(ctx, "p1", "Ana", true))
	require.NoError(t, lb.RecordMatchResult(ctx, "p1", "Ana Maria", false))

	stats, err := lb.GetPlayerStats(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, stats)

	assert.Equal(t, "Ana Maria", stats.PlayerName)
	assert.Equal(t, 3, stats.TotalGames)
	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.Equal(t, -1, stats.CurrentStreak)
	assert.Equal(t, 2, stats.MaxWinStreak)
	assert.Equal(t, WinPoints*2+LosePoints, stats.Score)
	assert.InDelta(t, 66.67, stats.WinRate(), 0.01)
}

func TestLeaderboard_ScoreNeverNegative(t *testing.T) {
	t.Parallel()

	lb := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lb.RecordMatchResult(ctx, "p1", "Ana", false))
	stats, err := lb.GetPlayerStats(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Score)
}

func TestLeaderboard_StreakBonus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, streakBonus(2))
	assert.Equal(t, StreakBonus3, streakBonus(3))
	assert.Equal(t, StreakBonus5, streakBonus(7))
	assert.Equal(t, StreakBonus10, streakBonus(10))
	assert.Equal(t, 0, streakBonus(-4))
}

func TestLeaderboard_RankingOrder(t *testing.T) {
	t.Parallel()

	lb := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lb.RecordMatchResult(ctx, "low", "Low", false))
	require.NoError(t, lb.RecordMatchResult(ctx, "high", "High", true))
	require.NoError(t, lb.RecordMatchResult(ctx, "high", "High", true))
	require.NoError(t, lb.RecordMatchResult(ctx, "mid", "Mid", true))

	entries, err := lb.GetRanking(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "high", entries[0].PlayerID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "mid", entries[1].PlayerID)
	assert.Equal(t, "low", entries[2].PlayerID)

	top, err := lb.GetRanking(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)

	rank, err := lb.GetPlayerRank(ctx, "mid")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rank)

	rank, err = lb.GetPlayerRank(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), rank)
}

func TestLeaderboard_NilClient(t *testing.T) {
	t.Parallel()

	lb := NewLeaderboard(nil)
	ctx := context.Background()

	assert.NoError(t, lb.RecordMatchResult(ctx, "p1", "Ana", true))
	entries, err := lb.GetRanking(ctx, 5)
	assert.NoError(t, err)
	assert.Empty(t, entries)
	stats, err := lb.GetPlayerStats(ctx, "p1")
	assert.NoError(t, err)
	assert.Nil(t, stats)
}
