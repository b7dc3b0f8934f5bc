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
	// Redis key 前缀
	roomKeyPrefix = "room:"

	// 房间快照过期时间
	roomExpiration = 2 * time.Hour
)

// RoomData 房间快照（用于 Redis 序列化）。不含任何手牌
type RoomData struct {
	ID        string        `json:"id"`
	Code      string        `json:"code"`
	Name      string        `json:"name"`
	Stake     int           `json:"stake"`
	Private   bool          `json:"private"`
	Variant   string        `json:"variant"`
	Status    string        `json:"status"`
	Players   []PlayerData  `json:"players"`
	Match     *MatchData    `json:"match,omitempty"`
	History   []MatchRecord `json:"history,omitempty"`
	CreatedAt int64         `json:"created_at"`
	UpdatedAt int64         `json:"updated_at"`
}

// PlayerData 玩家数据
type PlayerData struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Seat   int    `json:"seat"`
	Team   string `json:"team"`
	Online bool   `json:"online"`
}

// MatchData 对局的公开进度
type MatchData struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	ScoreA    int    `json:"score_a"`
	ScoreB    int    `json:"score_b"`
	HandIndex int    `json:"hand_index"`
	BetValue  int    `json:"bet_value"`
	TurnSeat  int    `json:"turn_seat"`
}

// MatchRecord.Reason 取值
const (
	RecordCompleted = "completed"
	RecordAborted   = "aborted"
)

// MatchRecord 已结束对局的摘要
type MatchRecord struct {
	MatchID     string `json:"match_id"`
	Winner      string `json:"winner,omitempty"` // A / B，中止时为空
	ScoreA      int    `json:"score_a"`
	ScoreB      int    `json:"score_b"`
	HandsPlayed int    `json:"hands_played"`
	Reason      string `json:"reason"` // completed / aborted
	FinishedAt  int64  `json:"finished_at"`
}

// RedisStore Redis 存储。client 为 nil 时所有操作为空操作
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Enabled 是否连接了 Redis
func (rs *RedisStore) Enabled() bool {
	return rs != nil && rs.client != nil
}

// --- 房间快照 ---

// SaveRoom 保存房间快照
func (rs *RedisStore) SaveRoom(ctx context.Context, roomID string, data *RoomData) error {
	if !rs.Enabled() || data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化房间数据失败: %w", err)
	}

	return rs.client.Set(ctx, roomKeyPrefix+roomID, jsonData, roomExpiration).Err()
}

// LoadRoom 读取房间快照，不存在时返回 nil, nil
func (rs *RedisStore) LoadRoom(ctx context.Context, roomID string) (*RoomData, error) {
	if !rs.Enabled() {
		return nil, nil
	}

	data, err := rs.client.Get(ctx, roomKeyPrefix+roomID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var roomData RoomData
	if err := json.Unmarshal(data, &roomData); err != nil {
		return nil, fmt.Errorf("反序列化房间数据失败: %w", err)
	}
	return &roomData, nil
}

// DeleteRoom 删除房间快照
func (rs *RedisStore) DeleteRoom(ctx context.Context, roomID string) error {
	if !rs.Enabled() {
		return nil
	}
	return rs.client.Del(ctx, roomKeyPrefix+roomID).Err()
}

// GetAllRoomIDs 获取所有有快照的房间 ID
func (rs *RedisStore) GetAllRoomIDs(ctx context.Context) ([]string, error) {
	if !rs.Enabled() {
		return nil, nil
	}

	var ids []string
	iter := rs.client.Scan(ctx, 0, roomKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(roomKeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Ping 检查连接
func (rs *RedisStore) Ping(ctx context.Context) error {
	if !rs.Enabled() {
		return nil
	}
	return rs.client.Ping(ctx).Err()
}
