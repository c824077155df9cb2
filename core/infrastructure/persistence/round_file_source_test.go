package persistence

import (
	"context"
	"errors"
	"strings"
	"testing"

	"shanten/core/domain/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const gameHex = "65a1f0c2e4b0a1b2c3d4e5f6"

const exported = `
{"_id":{"$oid":"65a1f0c2e4b0a1b2c3d4e602"},"game_record_id":{"$oid":"65a1f0c2e4b0a1b2c3d4e5f6"},"round_number":2,"round_wind":"E","dealer_index":1,"honba":0,"events":[{"sequence":0,"event_type":"start_kyoku","seat_index":-1,"target":0,"tehais":[["1m","2m","3m","4p","5pr","6p","7s","8s","9s","E","E","S","W"],["1m","9m","1p","9p","1s","9s","E","S","W","N","P","F","C"],["1m","9m","1p","9p","1s","9s","E","S","W","N","P","F","C"],["1m","9m","1p","9p","1s","9s","E","S","W","N","P","F","C"]]}]}
{"_id":{"$oid":"65a1f0c2e4b0a1b2c3d4e601"},"game_record_id":{"$oid":"65a1f0c2e4b0a1b2c3d4e5f6"},"round_number":1,"round_wind":"E","dealer_index":0,"honba":0,"events":[{"sequence":0,"event_type":"ryukyoku","seat_index":-1,"target":0}]}

{"_id":{"$oid":"65a1f0c2e4b0a1b2c3d4e701"},"game_record_id":{"$oid":"65a1f0c2e4b0a1b2c3d4e700"},"round_number":1,"round_wind":"S","dealer_index":0,"honba":2,"events":[]}
`

func TestFileRoundSource(t *testing.T) {
	src, err := ReadRoundSource(strings.NewReader(exported))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	game, _ := primitive.ObjectIDFromHex(gameHex)
	if ids := src.GameRecordIDs(); len(ids) != 2 || ids[0] != game {
		t.Fatalf("unexpected game ids %v", ids)
	}

	rounds, err := src.FindRoundRecords(context.Background(), game)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(rounds) != 2 || rounds[0].RoundNumber != 1 || rounds[1].RoundNumber != 2 {
		t.Fatalf("rounds must be sorted by number, got %d", len(rounds))
	}
	events, err := rounds[1].MahjongEvents()
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(events) != 1 || events[0].Type() != "start_kyoku" {
		t.Fatalf("unexpected events %v", events)
	}

	round, err := src.FindRoundRecord(context.Background(), game, 2)
	if err != nil || round.DealerIndex != 1 {
		t.Fatalf("find round 2: %v %+v", err, round)
	}
	if _, err := src.FindRoundRecord(context.Background(), game, 9); !errors.Is(err, repository.ErrRoundRecordNotFound) {
		t.Fatalf("expected ErrRoundRecordNotFound, got %v", err)
	}
	if _, err := src.FindRoundRecords(context.Background(), primitive.NewObjectID()); !errors.Is(err, repository.ErrRoundRecordNotFound) {
		t.Fatalf("expected ErrRoundRecordNotFound, got %v", err)
	}
}

func TestFileRoundSource_Invalid(t *testing.T) {
	_, err := ReadRoundSource(strings.NewReader(`{"round_number": "one"`))
	if !errors.Is(err, repository.ErrInvalidRoundRecord) {
		t.Fatalf("expected ErrInvalidRoundRecord, got %v", err)
	}
}

func TestFileRoundSource_Cancelled(t *testing.T) {
	src, err := ReadRoundSource(strings.NewReader(exported))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.FindRoundRecords(ctx, primitive.NewObjectID()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
