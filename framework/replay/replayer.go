package replay

import (
	"context"
	"fmt"

	"shanten/common/log"
	"shanten/core/domain/entity"
	"shanten/core/domain/repository"
	"shanten/framework/game/engines/mahjong"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const seatCount = 4

// RoundSummary 一局回放的统计
type RoundSummary struct {
	RoundNumber int
	Events      int
	Evaluations int
	Warnings    int
	Skipped     bool
	// BestShanten 每个座位本局达到的最小向听数
	BestShanten [seatCount]int
}

type Option func(*Replayer)

func WithSinks(sinks ...Sink) Option {
	return func(r *Replayer) { r.sinks = append(r.sinks, sinks...) }
}

// WithSkipInvalid 事件流不一致的局记日志后跳过，否则中止整场回放
func WithSkipInvalid(skip bool) Option {
	return func(r *Replayer) { r.skipInvalid = skip }
}

// WithEveryEvent 每个影响座位的事件后都计算，而不只在决策点
func WithEveryEvent(every bool) Option {
	return func(r *Replayer) { r.everyEvent = every }
}

func WithRunID(id string) Option {
	return func(r *Replayer) { r.runID = id }
}

// Replayer 四个座位的状态机，按顺序回放牌谱并在决策点计算向听
type Replayer struct {
	runID       string
	searcher    *mahjong.Searcher
	sinks       []Sink
	skipInvalid bool
	everyEvent  bool
	seats       [seatCount]*mahjong.PlayerImage
}

func NewReplayer(searcher *mahjong.Searcher, opts ...Option) *Replayer {
	r := &Replayer{
		runID:    uuid.NewString(),
		searcher: searcher,
	}
	for i := range r.seats {
		r.seats[i] = mahjong.NewPlayerImage(i)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Replayer) RunID() string {
	return r.runID
}

// Seat 座位当前状态，只读使用
func (r *Replayer) Seat(i int) *mahjong.PlayerImage {
	return r.seats[i]
}

// ReplayGame 依次回放一场游戏的所有局
func (r *Replayer) ReplayGame(ctx context.Context, source repository.RoundRecordRepository, gameRecordID primitive.ObjectID) ([]RoundSummary, error) {
	rounds, err := source.FindRoundRecords(ctx, gameRecordID)
	if err != nil {
		return nil, err
	}
	log.Info("run %s 回放游戏 %s, 共 %d 局", r.runID, gameRecordID.Hex(), len(rounds))

	summaries := make([]RoundSummary, 0, len(rounds))
	for _, round := range rounds {
		sum, err := r.ReplayRound(ctx, round)
		if err != nil {
			if ctx.Err() != nil || !r.skipInvalid {
				return summaries, err
			}
			log.Warn("跳过第 %d 局: %v", round.RoundNumber, err)
			sum.Skipped = true
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

// ReplayRound 回放一局，事件之间检查 ctx
func (r *Replayer) ReplayRound(ctx context.Context, round *entity.RoundRecord) (RoundSummary, error) {
	sum := RoundSummary{RoundNumber: round.RoundNumber}
	for i := range sum.BestShanten {
		sum.BestShanten[i] = 8
	}

	events, err := round.MahjongEvents()
	if err != nil {
		return sum, err
	}

	started := false
	for seq, ev := range events {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		for _, seat := range r.seats {
			if err := seat.Update(ev); err != nil {
				return sum, fmt.Errorf("round %d event #%d %s: %w", round.RoundNumber, seq, ev.Type(), err)
			}
		}
		sum.Events++

		if _, ok := ev.(mahjong.StartKyokuEvent); ok {
			started = true
		}
		if !started {
			continue
		}
		sum.Warnings += r.checkCommitted(round, seq, ev)

		seats := r.seatsToEvaluate(ev)
		if len(seats) == 0 {
			continue
		}
		snaps, err := r.evaluate(ctx, round, seq, ev, seats)
		if err != nil {
			return sum, err
		}
		for _, snap := range snaps {
			sum.Evaluations++
			sum.BestShanten[snap.Seat] = min(sum.BestShanten[snap.Seat], snap.Shanten)
			r.emit(ctx, snap)
		}
	}
	return sum, nil
}

// seatsToEvaluate 配牌后四家都算；摸牌与吃碰后轮到该家出牌
func (r *Replayer) seatsToEvaluate(ev mahjong.Event) []int {
	switch ev.(type) {
	case mahjong.StartKyokuEvent:
		return []int{0, 1, 2, 3}
	case mahjong.TsumoEvent, mahjong.ChiEvent, mahjong.PonEvent:
		return []int{mahjong.ActorOf(ev)}
	case mahjong.DahaiEvent, mahjong.DaiminkanEvent, mahjong.KakanEvent, mahjong.AnkanEvent:
		if r.everyEvent {
			return []int{mahjong.ActorOf(ev)}
		}
	}
	return nil
}

func (r *Replayer) evaluate(ctx context.Context, round *entity.RoundRecord, seq int, ev mahjong.Event, seats []int) ([]*entity.SeatSnapshot, error) {
	snaps := make([]*entity.SeatSnapshot, len(seats))
	g, _ := errgroup.WithContext(ctx)
	for i, seat := range seats {
		if seat < 0 || seat >= seatCount {
			return nil, fmt.Errorf("round %d event #%d: seat %d out of range", round.RoundNumber, seq, seat)
		}
		g.Go(func() error {
			p := r.seats[seat]
			snaps[i] = entity.NewSeatSnapshot(r.runID, round, seq, ev.Type(), p, r.searcher.Shanten(p))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snaps, nil
}

func (r *Replayer) emit(ctx context.Context, snap *entity.SeatSnapshot) {
	for _, sink := range r.sinks {
		if err := sink.Emit(ctx, snap); err != nil {
			log.Warn("sink %T 写入失败, seat %d #%d: %v", sink, snap.Seat, snap.Sequence, err)
		}
	}
}

// checkCommitted 手牌数 + 3×副露数 应为 13 或 14
func (r *Replayer) checkCommitted(round *entity.RoundRecord, seq int, ev mahjong.Event) int {
	warnings := 0
	for _, seat := range r.seats {
		if n := seat.CommittedTiles(); n != 13 && n != 14 {
			log.Warn("round %d event #%d %s: seat %d holds %d committed tiles", round.RoundNumber, seq, ev.Type(), seat.SeatIndex, n)
			warnings++
		}
	}
	return warnings
}
