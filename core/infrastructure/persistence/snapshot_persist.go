package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"shanten/core/domain/entity"
	"shanten/core/domain/repository"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const snapshotKeyPrefix = "replay:snapshot"

// hashStore database.RedisManager 的子集
type hashStore interface {
	HSet(ctx context.Context, key string, field string, value any, expiration time.Duration) error
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

// SnapshotRepository 快照写入 redis hash，key 为游戏+局，field 为座位
type SnapshotRepository struct {
	redis hashStore
	ttl   time.Duration
}

func NewSnapshotRepository(redis hashStore, ttl time.Duration) repository.SnapshotRepository {
	return &SnapshotRepository{redis: redis, ttl: ttl}
}

func snapshotKey(gameRecordID primitive.ObjectID, roundNumber int) string {
	return fmt.Sprintf("%s:%s:%d", snapshotKeyPrefix, gameRecordID.Hex(), roundNumber)
}

func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, snap *entity.SeatSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	key := snapshotKey(snap.GameRecordID, snap.RoundNumber)
	if err := r.redis.HSet(ctx, key, strconv.Itoa(snap.Seat), data, r.ttl); err != nil {
		return fmt.Errorf("save snapshot %s seat %d: %w", key, snap.Seat, err)
	}
	return nil
}

func (r *SnapshotRepository) FindSnapshot(ctx context.Context, gameRecordID primitive.ObjectID, roundNumber, seat int) (*entity.SeatSnapshot, error) {
	key := snapshotKey(gameRecordID, roundNumber)
	data, err := r.redis.HGet(ctx, key, strconv.Itoa(seat)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s seat %d: %w", key, seat, repository.ErrSnapshotNotFound)
		}
		return nil, err
	}
	var snap entity.SeatSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s seat %d: %w", key, seat, err)
	}
	return &snap, nil
}
