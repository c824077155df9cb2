package replay

import (
	"context"
	"errors"
	"sync"
	"testing"

	"shanten/core/domain/entity"
	"shanten/core/domain/repository"
	"shanten/framework/game/engines/mahjong"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type collector struct {
	mu    sync.Mutex
	snaps []*entity.SeatSnapshot
}

func (c *collector) Emit(_ context.Context, snap *entity.SeatSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps = append(c.snaps, snap)
	return nil
}

func kokushiHaipai(seat0 string) [4][]mahjong.Tile {
	var tehais [4][]mahjong.Tile
	for i := range tehais {
		tehais[i] = mahjong.MustParseTiles("19m19p19s1234567z")
	}
	tehais[0] = mahjong.MustParseTiles(seat0)
	return tehais
}

func buildRound(gameID primitive.ObjectID, number int, events ...mahjong.Event) *entity.RoundRecord {
	rr := entity.NewRoundRecord(gameID, number, "E", 0, 0)
	for _, ev := range events {
		rr.AddEvent(ev)
	}
	return rr
}

func sampleRound(gameID primitive.ObjectID, number int) *entity.RoundRecord {
	return buildRound(gameID, number,
		mahjong.StartKyokuEvent{Tehais: kokushiHaipai("123m456p789s1123z")},
		mahjong.TsumoEvent{Actor: 0, Pai: mahjong.East},
		mahjong.DahaiEvent{Actor: 0, Pai: mahjong.West},
		mahjong.TsumoEvent{Actor: 1, Pai: mahjong.Man1},
		mahjong.DahaiEvent{Actor: 1, Pai: mahjong.Man1, Tsumogiri: true},
		mahjong.TsumoEvent{Actor: 2, Pai: mahjong.Red},
		mahjong.DahaiEvent{Actor: 2, Pai: mahjong.Red, Tsumogiri: true},
		mahjong.TsumoEvent{Actor: 3, Pai: mahjong.East},
		mahjong.DahaiEvent{Actor: 3, Pai: mahjong.East, Tsumogiri: true},
		mahjong.PonEvent{Actor: 0, Target: 3, Pai: mahjong.East, Consumed: mahjong.Consumed2{mahjong.East, mahjong.East}},
		mahjong.DahaiEvent{Actor: 0, Pai: mahjong.South},
		mahjong.RyukyokuEvent{},
	)
}

func TestReplayRound(t *testing.T) {
	c := &collector{}
	r := NewReplayer(mahjong.NewSearcher(nil), WithSinks(c))
	sum, err := r.ReplayRound(context.Background(), sampleRound(primitive.NewObjectID(), 1))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if sum.Events != 12 || sum.Evaluations != 9 || sum.Warnings != 0 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	for seat := 1; seat < 4; seat++ {
		if sum.BestShanten[seat] != -1 {
			t.Fatalf("seat %d completes kokushi on its draw, got %d", seat, sum.BestShanten[seat])
		}
	}
	if len(c.snaps) != 9 {
		t.Fatalf("expected 9 snapshots, got %d", len(c.snaps))
	}
	for i := 0; i < 4; i++ {
		if c.snaps[i].Sequence != 0 || c.snaps[i].Seat != i {
			t.Fatalf("start_kyoku snapshots must cover seats in order, got %+v", c.snaps[i])
		}
	}

	e := mahjong.NewEvaluator()
	for _, snap := range c.snaps {
		if snap.RunID != r.RunID() || snap.RunID == "" {
			t.Fatalf("snapshot run id %q, replayer %q", snap.RunID, r.RunID())
		}
		tiles := make([]mahjong.Tile, len(snap.Tehai))
		for i, name := range snap.Tehai {
			tiles[i], _ = mahjong.ParseTile(name)
		}
		if got := e.Evaluate(tiles); got != snap.Shanten {
			t.Fatalf("#%d seat %d: snapshot shanten %d, evaluator %d", snap.Sequence, snap.Seat, snap.Shanten, got)
		}
	}

	pon := c.snaps[len(c.snaps)-1]
	if pon.EventType != mahjong.TypePon || pon.Seat != 0 || len(pon.Fuuros) != 1 || len(pon.Tehai) != 11 {
		t.Fatalf("unexpected pon snapshot %+v", pon)
	}
	if melds := r.Seat(0).Melds(); len(melds) != 1 {
		t.Fatalf("seat 0 should keep its pon, got %v", melds)
	}
}

func TestReplayRound_EveryEvent(t *testing.T) {
	r := NewReplayer(mahjong.NewSearcher(nil), WithEveryEvent(true))
	sum, err := r.ReplayRound(context.Background(), sampleRound(primitive.NewObjectID(), 1))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if sum.Evaluations != 14 {
		t.Fatalf("discards should be evaluated too, got %d", sum.Evaluations)
	}
}

func TestReplayRound_CommittedWarning(t *testing.T) {
	r := NewReplayer(mahjong.NewSearcher(nil))
	round := buildRound(primitive.NewObjectID(), 1,
		mahjong.StartKyokuEvent{Tehais: kokushiHaipai("123m456p789s1123z")},
		mahjong.TsumoEvent{Actor: 0, Pai: mahjong.East},
		mahjong.TsumoEvent{Actor: 0, Pai: mahjong.North},
	)
	sum, err := r.ReplayRound(context.Background(), round)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if sum.Warnings != 1 {
		t.Fatalf("double draw should warn once, got %d", sum.Warnings)
	}
}

func TestReplayRound_SinkErrorDoesNotAbort(t *testing.T) {
	failing := SinkFunc(func(context.Context, *entity.SeatSnapshot) error { return errors.New("down") })
	c := &collector{}
	r := NewReplayer(mahjong.NewSearcher(nil), WithSinks(failing, c))
	if _, err := r.ReplayRound(context.Background(), sampleRound(primitive.NewObjectID(), 1)); err != nil {
		t.Fatalf("sink errors must not abort the replay: %v", err)
	}
	if len(c.snaps) != 9 {
		t.Fatalf("later sinks still receive snapshots, got %d", len(c.snaps))
	}
}

func TestReplayRound_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewReplayer(mahjong.NewSearcher(nil))
	sum, err := r.ReplayRound(ctx, sampleRound(primitive.NewObjectID(), 1))
	if !errors.Is(err, context.Canceled) || sum.Events != 0 {
		t.Fatalf("expected context.Canceled before any event, got %v %+v", err, sum)
	}
}

type memRounds struct {
	rounds []*entity.RoundRecord
}

func (m *memRounds) FindRoundRecords(_ context.Context, gameID primitive.ObjectID) ([]*entity.RoundRecord, error) {
	var out []*entity.RoundRecord
	for _, r := range m.rounds {
		if r.GameRecordID == gameID {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, repository.ErrRoundRecordNotFound
	}
	return out, nil
}

func (m *memRounds) FindRoundRecord(ctx context.Context, gameID primitive.ObjectID, n int) (*entity.RoundRecord, error) {
	rounds, err := m.FindRoundRecords(ctx, gameID)
	if err != nil {
		return nil, err
	}
	for _, r := range rounds {
		if r.RoundNumber == n {
			return r, nil
		}
	}
	return nil, repository.ErrRoundRecordNotFound
}

func TestReplayGame_InvalidRound(t *testing.T) {
	gameID := primitive.NewObjectID()
	broken := buildRound(gameID, 1,
		mahjong.StartKyokuEvent{Tehais: kokushiHaipai("123m456p789s1123z")},
		mahjong.DahaiEvent{Actor: 0, Pai: mahjong.Red},
	)
	source := &memRounds{rounds: []*entity.RoundRecord{broken, sampleRound(gameID, 2)}}

	r := NewReplayer(mahjong.NewSearcher(nil))
	if _, err := r.ReplayGame(context.Background(), source, gameID); !errors.Is(err, mahjong.ErrTileNotInHand) {
		t.Fatalf("expected ErrTileNotInHand, got %v", err)
	}

	r = NewReplayer(mahjong.NewSearcher(nil), WithSkipInvalid(true))
	sums, err := r.ReplayGame(context.Background(), source, gameID)
	if err != nil {
		t.Fatalf("skip invalid: %v", err)
	}
	if len(sums) != 2 || !sums[0].Skipped || sums[1].Skipped || sums[1].Evaluations != 9 {
		t.Fatalf("unexpected summaries %+v", sums)
	}

	if _, err := r.ReplayGame(context.Background(), source, primitive.NewObjectID()); !errors.Is(err, repository.ErrRoundRecordNotFound) {
		t.Fatalf("expected ErrRoundRecordNotFound, got %v", err)
	}
}

type fakePublisher struct {
	subjects []string
}

func (f *fakePublisher) Publish(subject string, _ any) error {
	f.subjects = append(f.subjects, subject)
	return nil
}

func TestPublishSink(t *testing.T) {
	pub := &fakePublisher{}
	r := NewReplayer(mahjong.NewSearcher(nil), WithSinks(NewPublishSink(pub, "replay.shanten")), WithRunID("run-x"))
	if _, err := r.ReplayRound(context.Background(), sampleRound(primitive.NewObjectID(), 1)); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(pub.subjects) != 9 || pub.subjects[2] != "replay.shanten.2" {
		t.Fatalf("unexpected subjects %v", pub.subjects)
	}
	if r.RunID() != "run-x" {
		t.Fatalf("run id option ignored")
	}
}
