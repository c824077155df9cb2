package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"shanten/framework/game/engines/mahjong"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SeatSnapshot 某座位在某个事件之后的手牌与向听
type SeatSnapshot struct {
	RunID        string             `json:"run_id" bson:"run_id"`
	GameRecordID primitive.ObjectID `json:"game_record_id" bson:"game_record_id"`
	RoundNumber  int                `json:"round_number" bson:"round_number"`
	Seat         int                `json:"seat" bson:"seat"`
	Sequence     int                `json:"sequence" bson:"sequence"`
	EventType    string             `json:"event_type" bson:"event_type"`
	Shanten      int                `json:"shanten" bson:"shanten"`
	Breakdown    mahjong.Breakdown  `json:"breakdown" bson:"breakdown"`
	Tehai        []string           `json:"tehai" bson:"tehai"`
	Fuuros       []mahjong.Meld     `json:"fuuros" bson:"-"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

// NewSeatSnapshot 由座位状态和向听结果构造快照
func NewSeatSnapshot(runID string, round *RoundRecord, sequence int, eventType string, p *mahjong.PlayerImage, b mahjong.Breakdown) *SeatSnapshot {
	snap := p.Snapshot()
	return &SeatSnapshot{
		RunID:        runID,
		GameRecordID: round.GameRecordID,
		RoundNumber:  round.RoundNumber,
		Seat:         p.SeatIndex,
		Sequence:     sequence,
		EventType:    eventType,
		Shanten:      b.Min,
		Breakdown:    b,
		Tehai:        snap.Tehai,
		Fuuros:       snap.Fuuros,
		CreatedAt:    time.Now(),
	}
}

func (s *SeatSnapshot) UnmarshalJSON(data []byte) error {
	type alias SeatSnapshot
	aux := struct {
		*alias
		Fuuros []json.RawMessage `json:"fuuros"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.Fuuros = make([]mahjong.Meld, 0, len(aux.Fuuros))
	for i, raw := range aux.Fuuros {
		m, err := mahjong.UnmarshalMeld(raw)
		if err != nil {
			return fmt.Errorf("fuuro %d: %w", i, err)
		}
		s.Fuuros = append(s.Fuuros, m)
	}
	return nil
}
