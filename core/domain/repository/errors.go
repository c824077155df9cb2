package repository

import "errors"

var (
	// 牌谱相关错误
	ErrRoundRecordNotFound = errors.New("round record not found")
	ErrInvalidRoundRecord  = errors.New("invalid round record")

	// 快照相关错误
	ErrSnapshotNotFound = errors.New("seat snapshot not found")
)
