package repository

import (
	"context"

	"shanten/core/domain/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoundRecordRepository 局记录来源，mongo 与本地文件各有一个实现
type RoundRecordRepository interface {
	// FindRoundRecords 查找游戏的所有局记录（按局数排序）
	FindRoundRecords(ctx context.Context, gameRecordID primitive.ObjectID) ([]*entity.RoundRecord, error)

	// FindRoundRecord 查找指定局数的记录
	FindRoundRecord(ctx context.Context, gameRecordID primitive.ObjectID, roundNumber int) (*entity.RoundRecord, error)
}
