package persistence

import (
	"context"
	"errors"
	"fmt"

	"shanten/common/database"
	"shanten/common/log"
	"shanten/core/domain/entity"
	"shanten/core/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const roundRecordCollection = "round_records"

type RoundRecordRepository struct {
	mongo *database.MongoManager
}

func NewRoundRecordRepository(mongo *database.MongoManager) repository.RoundRecordRepository {
	return &RoundRecordRepository{mongo: mongo}
}

// FindRoundRecords 查找游戏的所有局记录（按局数排序）
func (r *RoundRecordRepository) FindRoundRecords(ctx context.Context, gameRecordID primitive.ObjectID) ([]*entity.RoundRecord, error) {
	collection := r.mongo.Db.Collection(roundRecordCollection)

	filter := bson.M{"game_record_id": gameRecordID}
	opts := options.Find().SetSort(bson.M{"round_number": 1})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		log.Error("查询局记录失败: %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var result []*entity.RoundRecord
	if err := cursor.All(ctx, &result); err != nil {
		log.Error("解析局记录失败: %v", err)
		return nil, fmt.Errorf("decode round records: %w", errors.Join(repository.ErrInvalidRoundRecord, err))
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("game %s: %w", gameRecordID.Hex(), repository.ErrRoundRecordNotFound)
	}
	return result, nil
}

// FindRoundRecord 查找指定局数的记录
func (r *RoundRecordRepository) FindRoundRecord(ctx context.Context, gameRecordID primitive.ObjectID, roundNumber int) (*entity.RoundRecord, error) {
	collection := r.mongo.Db.Collection(roundRecordCollection)

	filter := bson.M{
		"game_record_id": gameRecordID,
		"round_number":   roundNumber,
	}

	var record entity.RoundRecord
	err := collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("game %s round %d: %w", gameRecordID.Hex(), roundNumber, repository.ErrRoundRecordNotFound)
		}
		log.Error("查询局记录失败: %v", err)
		return nil, err
	}
	return &record, nil
}
