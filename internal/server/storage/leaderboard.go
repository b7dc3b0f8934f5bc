package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key
	playerStatsKey    = "player:stats:"
	leaderboardKey    = "leaderboard:score"
	weeklyLeaderboard = "leaderboard:weekly:"
)

// 积分规则
const (
	WinPoints  = 20
	LosePoints = -10

	// 连胜加成
	StreakBonus3  = 5
	StreakBonus5  = 10
	StreakBonus10 = 20
)

// PlayerStats 玩家统计数据
type PlayerStats struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`

	TotalGames int `json:"total_games"`
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Score      int `json:"score"`

	// 正数为连胜，负数为连败
	CurrentStreak int `json:"current_streak"`
	MaxWinStreak  int `json:"max_win_streak"`

	LastPlayedAt int64 `json:"last_played_at"`
	CreatedAt    int64 `json:"created_at"`
}

// WinRate 胜率（百分比）
func (s *PlayerStats) WinRate() float64 {
	if s.TotalGames == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.TotalGames) * 100
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Score      int     `json:"score"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
}

// Leaderboard 排行榜（Redis 有序集合 + 玩家统计）
type Leaderboard struct {
	redis *redis.Client
	now   func() time.Time
}

// NewLeaderboard 创建排行榜，client 为 nil 时所有操作为空操作
func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{redis: client, now: time.Now}
}

func (lb *Leaderboard) enabled() bool {
	return lb != nil && lb.redis != nil
}

// GetPlayerStats 获取玩家统计，不存在时返回 nil, nil
func (lb *Leaderboard) GetPlayerStats(ctx context.Context, playerID string) (*PlayerStats, error) {
	if !lb.enabled() {
		return nil, nil
	}

	data, err := lb.redis.Get(ctx, playerStatsKey+playerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// updateWinLoss 更新胜负和连胜/连败
func updateWinLoss(stats *PlayerStats, won bool) {
	if won {
		stats.Wins++
		stats.CurrentStreak = max(1, stats.CurrentStreak+1)
	} else {
		stats.Losses++
		stats.CurrentStreak = min(-1, stats.CurrentStreak-1)
	}
	stats.MaxWinStreak = max(stats.MaxWinStreak, stats.CurrentStreak)
}

// streakBonus 连胜加成
func streakBonus(streak int) int {
	switch {
	case streak >= 10:
		return StreakBonus10
	case streak >= 5:
		return StreakBonus5
	case streak >= 3:
		return StreakBonus3
	default:
		return 0
	}
}

// RecordMatchResult 记录一名玩家的对局结果
func (lb *Leaderboard) RecordMatchResult(ctx context.Context, playerID, playerName string, won bool) error {
	if !lb.enabled() {
		return nil
	}

	stats, err := lb.GetPlayerStats(ctx, playerID)
	if err != nil {
		return err
	}
	now := lb.now()
	if stats == nil {
		stats = &PlayerStats{PlayerID: playerID, CreatedAt: now.Unix()}
	}

	stats.PlayerName = playerName
	stats.TotalGames++
	stats.LastPlayedAt = now.Unix()
	updateWinLoss(stats, won)

	delta := LosePoints
	if won {
		delta = WinPoints + streakBonus(stats.CurrentStreak)
	}
	stats.Score = max(0, stats.Score+delta)

	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	year, week := now.ISOWeek()
	weeklyKey := fmt.Sprintf("%s%d-W%02d", weeklyLeaderboard, year, week)
	member := redis.Z{Score: float64(stats.Score), Member: playerID}

	_, err = lb.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, playerStatsKey+playerID, data, 0)
		pipe.ZAdd(ctx, leaderboardKey, member)
		pipe.ZAdd(ctx, weeklyKey, member)
		pipe.Expire(ctx, weeklyKey, 8*24*time.Hour)
		return nil
	})
	return err
}

// GetRanking 获取总排行榜前 limit 名
func (lb *Leaderboard) GetRanking(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if !lb.enabled() || limit <= 0 {
		return []LeaderboardEntry{}, nil
	}

	results, err := lb.redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for i, result := range results {
		playerID, ok := result.Member.(string)
		if !ok {
			continue
		}
		stats, err := lb.GetPlayerStats(ctx, playerID)
		if err != nil || stats == nil {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			Rank:       i + 1,
			PlayerID:   playerID,
			PlayerName: stats.PlayerName,
			Score:      int(result.Score),
			Wins:       stats.Wins,
			WinRate:    stats.WinRate(),
		})
	}
	return entries, nil
}

// GetPlayerRank 获取玩家排名，未上榜返回 -1
func (lb *Leaderboard) GetPlayerRank(ctx context.Context, playerID string) (int64, error) {
	if !lb.enabled() {
		return -1, nil
	}

	rank, err := lb.redis.ZRevRank(ctx, leaderboardKey, playerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil
}
