package repository

import (
	"context"

	"shanten/core/domain/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SnapshotRepository 保存每个座位最近一次决策点的快照
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, snap *entity.SeatSnapshot) error
	FindSnapshot(ctx context.Context, gameRecordID primitive.ObjectID, roundNumber, seat int) (*entity.SeatSnapshot, error)
}
