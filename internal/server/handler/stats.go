package handler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/truco-server/internal/protocol"
	"github.com/palemoky/truco-server/internal/protocol/codec"
	"github.com/palemoky/truco-server/internal/server/storage"
	"github.com/palemoky/truco-server/internal/types"
)

const (
	defaultRankingLimit = 10
	maxRankingLimit     = 50
	queryTimeout        = 3 * time.Second
)

// handleGetStats 获取个人统计，没有记录时返回空统计
func (h *Handler) handleGetStats(client types.ClientInterface, _ *protocol.Message) error {
	profile := client.Profile()
	result := protocol.StatsPayload{PlayerID: profile.PlayerID, Name: profile.Name}
	if h.ranking == nil {
		client.SendMessage(codec.MustNewMessage(protocol.MsgStats, result))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	stats, err := h.ranking.GetPlayerStats(ctx, profile.PlayerID)
	if err != nil {
		h.log.Warn("获取统计失败", zap.String("player", profile.PlayerID), zap.Error(err))
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "获取统计失败"))
		return nil
	}
	if stats != nil {
		rank, _ := h.ranking.GetPlayerRank(ctx, profile.PlayerID)
		result = protocol.StatsPayload{
			PlayerID:      stats.PlayerID,
			Name:          stats.PlayerName,
			TotalGames:    stats.TotalGames,
			Wins:          stats.Wins,
			Losses:        stats.Losses,
			WinRate:       stats.WinRate(),
			Score:         stats.Score,
			Rank:          int(rank),
			CurrentStreak: stats.CurrentStreak,
			MaxWinStreak:  stats.MaxWinStreak,
		}
	}
	client.SendMessage(codec.MustNewMessage(protocol.MsgStats, result))
	return nil
}

// handleGetRanking 获取排行榜，limit 非法时取默认值
func (h *Handler) handleGetRanking(client types.ClientInterface, msg *protocol.Message) error {
	limit := defaultRankingLimit
	if p, err := parse[protocol.GetRankingPayload](msg); err == nil && p.Limit > 0 && p.Limit <= maxRankingLimit {
		limit = p.Limit
	}

	entries := []protocol.RankingEntry{}
	if h.ranking != nil {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		board, err := h.ranking.GetRanking(ctx, limit)
		if err != nil {
			h.log.Warn("获取排行榜失败", zap.Error(err))
			client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "获取排行榜失败"))
			return nil
		}
		entries = RankingEntries(board)
	}
	client.SendMessage(codec.MustNewMessage(protocol.MsgRanking, protocol.RankingPayload{Entries: entries}))
	return nil
}

// RankingEntries 存储层排行转为协议格式，HTTP 接口共用
func RankingEntries(board []storage.LeaderboardEntry) []protocol.RankingEntry {
	entries := make([]protocol.RankingEntry, len(board))
	for i, e := range board {
		entries[i] = protocol.RankingEntry{
			Rank:     e.Rank,
			PlayerID: e.PlayerID,
			Name:     e.PlayerName,
			Score:    e.Score,
			Wins:     e.Wins,
			WinRate:  e.WinRate,
		}
	}
	return entries
}
