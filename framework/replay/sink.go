package replay

import (
	"context"
	"strconv"

	"shanten/common/log"
	"shanten/core/domain/entity"
	"shanten/core/domain/repository"
)

// Sink 接收每个决策点的座位快照
type Sink interface {
	Emit(ctx context.Context, snap *entity.SeatSnapshot) error
}

type SinkFunc func(ctx context.Context, snap *entity.SeatSnapshot) error

func (f SinkFunc) Emit(ctx context.Context, snap *entity.SeatSnapshot) error { return f(ctx, snap) }

// LogSink 输出到日志
type LogSink struct{}

func (LogSink) Emit(_ context.Context, snap *entity.SeatSnapshot) error {
	log.Info("round %d #%d %s seat %d shanten=%d (kokushi=%d chiitoi=%d normal=%d) tehai=%v",
		snap.RoundNumber, snap.Sequence, snap.EventType, snap.Seat, snap.Shanten,
		snap.Breakdown.Kokushi, snap.Breakdown.Chiitoi, snap.Breakdown.Normal, snap.Tehai)
	return nil
}

// SnapshotSink 写入快照仓储，同一座位只保留最新一条
type SnapshotSink struct {
	repo repository.SnapshotRepository
}

func NewSnapshotSink(repo repository.SnapshotRepository) *SnapshotSink {
	return &SnapshotSink{repo: repo}
}

func (s *SnapshotSink) Emit(ctx context.Context, snap *entity.SeatSnapshot) error {
	return s.repo.SaveSnapshot(ctx, snap)
}

// Publisher message.NatsPublisher 满足该接口
type Publisher interface {
	Publish(subject string, v any) error
}

// PublishSink 发布到 subject.<seat>
type PublishSink struct {
	pub     Publisher
	subject string
}

func NewPublishSink(pub Publisher, subject string) *PublishSink {
	return &PublishSink{pub: pub, subject: subject}
}

func (s *PublishSink) Emit(_ context.Context, snap *entity.SeatSnapshot) error {
	return s.pub.Publish(s.subject+"."+strconv.Itoa(snap.Seat), snap)
}
