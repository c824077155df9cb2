package persistence

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"shanten/core/domain/entity"
	"shanten/core/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileRoundSource 从 mongoexport 导出的文件读取局记录，每行一个 Extended JSON 文档
type FileRoundSource struct {
	rounds []*entity.RoundRecord
}

func NewFileRoundSource(path string) (*FileRoundSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRoundSource(f)
}

// ReadRoundSource 读取全部记录，空行忽略
func ReadRoundSource(r io.Reader) (*FileRoundSource, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	src := &FileRoundSource{}
	line := 0
	for scanner.Scan() {
		line++
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		var record entity.RoundRecord
		if err := bson.UnmarshalExtJSON(data, false, &record); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, errors.Join(repository.ErrInvalidRoundRecord, err))
		}
		src.rounds = append(src.rounds, &record)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	slices.SortStableFunc(src.rounds, func(a, b *entity.RoundRecord) int {
		return a.RoundNumber - b.RoundNumber
	})
	return src, nil
}

// GameRecordIDs 文件中出现的游戏，按首次出现顺序
func (s *FileRoundSource) GameRecordIDs() []primitive.ObjectID {
	var ids []primitive.ObjectID
	for _, r := range s.rounds {
		if !slices.Contains(ids, r.GameRecordID) {
			ids = append(ids, r.GameRecordID)
		}
	}
	return ids
}

// FindRoundRecords 查找游戏的所有局记录（按局数排序）
func (s *FileRoundSource) FindRoundRecords(ctx context.Context, gameRecordID primitive.ObjectID) ([]*entity.RoundRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var result []*entity.RoundRecord
	for _, r := range s.rounds {
		if r.GameRecordID == gameRecordID {
			result = append(result, r)
		}
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("game %s: %w", gameRecordID.Hex(), repository.ErrRoundRecordNotFound)
	}
	return result, nil
}

// FindRoundRecord 查找指定局数的记录
func (s *FileRoundSource) FindRoundRecord(ctx context.Context, gameRecordID primitive.ObjectID, roundNumber int) (*entity.RoundRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, r := range s.rounds {
		if r.GameRecordID == gameRecordID && r.RoundNumber == roundNumber {
			return r, nil
		}
	}
	return nil, fmt.Errorf("game %s round %d: %w", gameRecordID.Hex(), roundNumber, repository.ErrRoundRecordNotFound)
}
