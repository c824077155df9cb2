package entity

import (
	"errors"
	"fmt"
	"time"

	"shanten/framework/game/engines/mahjong"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrMalformedEvent = errors.New("malformed round event")

// RoundRecord 局记录（每局一个文档），事件按时间顺序存放
type RoundRecord struct {
	ID           primitive.ObjectID `bson:"_id"`
	GameRecordID primitive.ObjectID `bson:"game_record_id"` // 关联游戏记录
	RoundNumber  int                `bson:"round_number"`   // 局数，从 1 开始
	RoundWind    string             `bson:"round_wind"`     // 场风 "E", "S", "W", "N"
	DealerIndex  int                `bson:"dealer_index"`   // 庄家座位
	Honba        int                `bson:"honba"`          // 本场数
	Events       []RoundEvent       `bson:"events"`
	CreatedAt    time.Time          `bson:"created_at"`
}

// RoundEvent 回合事件，牌用 mjai 记法（"1m", "5pr", "E"）存储
type RoundEvent struct {
	Sequence   int        `bson:"sequence"`   // 事件序号（从0开始，该局内递增）
	EventType  string     `bson:"event_type"` // 与 mahjong.Type* 一致
	SeatIndex  int        `bson:"seat_index"` // 操作玩家座位（-1表示系统事件）
	Target     int        `bson:"target"`
	Pai        string     `bson:"pai,omitempty"`
	Consumed   []string   `bson:"consumed,omitempty"`
	Tsumogiri  bool       `bson:"tsumogiri,omitempty"`
	Tehais     [][]string `bson:"tehais,omitempty"`
	DoraMarker string     `bson:"dora_marker,omitempty"`
}

// NewRoundRecord 创建局记录
func NewRoundRecord(gameRecordID primitive.ObjectID, roundNumber int, roundWind string, dealerIndex, honba int) *RoundRecord {
	return &RoundRecord{
		ID:           primitive.NewObjectID(),
		GameRecordID: gameRecordID,
		RoundNumber:  roundNumber,
		RoundWind:    roundWind,
		DealerIndex:  dealerIndex,
		Honba:        honba,
		Events:       make([]RoundEvent, 0, 100),
		CreatedAt:    time.Now(),
	}
}

// AddEvent 追加一个引擎事件，序号自动递增
func (rr *RoundRecord) AddEvent(ev mahjong.Event) {
	re := FromEvent(ev)
	re.Sequence = len(rr.Events)
	rr.Events = append(rr.Events, re)
}

// MahjongEvents 按顺序转换为引擎事件，start_kyoku 的场况取自局记录
func (rr *RoundRecord) MahjongEvents() ([]mahjong.Event, error) {
	bakaze, err := mahjong.ParseTile(rr.RoundWind)
	if err != nil && rr.RoundWind != "" {
		return nil, fmt.Errorf("round %d wind %q: %w", rr.RoundNumber, rr.RoundWind, err)
	}
	events := make([]mahjong.Event, 0, len(rr.Events))
	for _, re := range rr.Events {
		ev, err := re.ToEvent()
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", rr.RoundNumber, err)
		}
		if sk, ok := ev.(mahjong.StartKyokuEvent); ok {
			sk.Bakaze = bakaze
			sk.Kyoku = rr.RoundNumber
			sk.Honba = rr.Honba
			sk.Oya = rr.DealerIndex
			ev = sk
		}
		events = append(events, ev)
	}
	return events, nil
}

// ToEvent 转换为引擎事件，牌名或副露张数不合法时返回 ErrMalformedEvent / mahjong.ErrInvalidTile
func (re RoundEvent) ToEvent() (mahjong.Event, error) {
	switch re.EventType {
	case mahjong.TypeStartKyoku:
		if len(re.Tehais) != 4 {
			return nil, re.malformed("expected 4 tehais, got %d", len(re.Tehais))
		}
		ev := mahjong.StartKyokuEvent{}
		for i, names := range re.Tehais {
			tiles, err := parseNames(names)
			if err != nil {
				return nil, re.wrap(err)
			}
			ev.Tehais[i] = tiles
		}
		if re.DoraMarker != "" {
			dora, err := mahjong.ParseTile(re.DoraMarker)
			if err != nil {
				return nil, re.wrap(err)
			}
			ev.DoraMarker = dora
		}
		return ev, nil

	case mahjong.TypeTsumo:
		pai, err := re.pai()
		if err != nil {
			return nil, err
		}
		return mahjong.TsumoEvent{Actor: re.SeatIndex, Pai: pai}, nil

	case mahjong.TypeDahai:
		pai, err := re.pai()
		if err != nil {
			return nil, err
		}
		return mahjong.DahaiEvent{Actor: re.SeatIndex, Pai: pai, Tsumogiri: re.Tsumogiri}, nil

	case mahjong.TypeChi, mahjong.TypePon:
		pai, err := re.pai()
		if err != nil {
			return nil, err
		}
		consumed, err := re.consumed(2)
		if err != nil {
			return nil, err
		}
		c := mahjong.Consumed2(consumed)
		if re.EventType == mahjong.TypeChi {
			return mahjong.ChiEvent{Actor: re.SeatIndex, Target: re.Target, Pai: pai, Consumed: c}, nil
		}
		return mahjong.PonEvent{Actor: re.SeatIndex, Target: re.Target, Pai: pai, Consumed: c}, nil

	case mahjong.TypeDaiminkan:
		pai, err := re.pai()
		if err != nil {
			return nil, err
		}
		consumed, err := re.consumed(3)
		if err != nil {
			return nil, err
		}
		return mahjong.DaiminkanEvent{Actor: re.SeatIndex, Target: re.Target, Pai: pai, Consumed: mahjong.Consumed3(consumed)}, nil

	case mahjong.TypeKakan:
		pai, err := re.pai()
		if err != nil {
			return nil, err
		}
		consumed, err := re.consumed(3)
		if err != nil {
			return nil, err
		}
		return mahjong.KakanEvent{Actor: re.SeatIndex, Pai: pai, Consumed: mahjong.Consumed3(consumed)}, nil

	case mahjong.TypeAnkan:
		consumed, err := re.consumed(4)
		if err != nil {
			return nil, err
		}
		return mahjong.AnkanEvent{Actor: re.SeatIndex, Consumed: mahjong.Consumed4(consumed)}, nil

	case mahjong.TypeDora:
		dora, err := mahjong.ParseTile(re.DoraMarker)
		if err != nil {
			return nil, re.wrap(err)
		}
		return mahjong.DoraEvent{DoraMarker: dora}, nil

	case mahjong.TypeReach:
		return mahjong.ReachEvent{Actor: re.SeatIndex}, nil
	case mahjong.TypeHora:
		return mahjong.HoraEvent{Actor: re.SeatIndex, Target: re.Target}, nil
	case mahjong.TypeRyukyoku:
		return mahjong.RyukyokuEvent{}, nil
	case mahjong.TypeEndKyoku:
		return mahjong.EndKyokuEvent{}, nil
	}
	return nil, re.malformed("unknown event type %q", re.EventType)
}

// FromEvent 引擎事件转存储格式，Sequence 由调用方设置
func FromEvent(ev mahjong.Event) RoundEvent {
	re := RoundEvent{EventType: ev.Type(), SeatIndex: mahjong.ActorOf(ev)}
	switch e := ev.(type) {
	case mahjong.StartKyokuEvent:
		re.Tehais = make([][]string, len(e.Tehais))
		for i, tehai := range e.Tehais {
			re.Tehais[i] = tileNames(tehai)
		}
		if e.DoraMarker != mahjong.Unknown {
			re.DoraMarker = e.DoraMarker.String()
		}
	case mahjong.TsumoEvent:
		re.Pai = e.Pai.String()
	case mahjong.DahaiEvent:
		re.Pai = e.Pai.String()
		re.Tsumogiri = e.Tsumogiri
	case mahjong.ChiEvent:
		re.Target, re.Pai, re.Consumed = e.Target, e.Pai.String(), tileNames(e.Consumed[:])
	case mahjong.PonEvent:
		re.Target, re.Pai, re.Consumed = e.Target, e.Pai.String(), tileNames(e.Consumed[:])
	case mahjong.DaiminkanEvent:
		re.Target, re.Pai, re.Consumed = e.Target, e.Pai.String(), tileNames(e.Consumed[:])
	case mahjong.KakanEvent:
		re.Pai, re.Consumed = e.Pai.String(), tileNames(e.Consumed[:])
	case mahjong.AnkanEvent:
		re.Consumed = tileNames(e.Consumed[:])
	case mahjong.DoraEvent:
		re.DoraMarker = e.DoraMarker.String()
	case mahjong.HoraEvent:
		re.Target = e.Target
	}
	return re
}

func (re RoundEvent) pai() (mahjong.Tile, error) {
	t, err := mahjong.ParseTile(re.Pai)
	if err != nil {
		return mahjong.Unknown, re.wrap(err)
	}
	return t, nil
}

func (re RoundEvent) consumed(n int) ([]mahjong.Tile, error) {
	if len(re.Consumed) != n {
		return nil, re.malformed("%s expects %d consumed tiles, got %d", re.EventType, n, len(re.Consumed))
	}
	tiles, err := parseNames(re.Consumed)
	if err != nil {
		return nil, re.wrap(err)
	}
	return tiles, nil
}

func (re RoundEvent) malformed(format string, args ...any) error {
	return fmt.Errorf("event #%d: %s: %w", re.Sequence, fmt.Sprintf(format, args...), ErrMalformedEvent)
}

func (re RoundEvent) wrap(err error) error {
	return fmt.Errorf("event #%d %s: %w", re.Sequence, re.EventType, err)
}

func parseNames(names []string) ([]mahjong.Tile, error) {
	tiles := make([]mahjong.Tile, len(names))
	for i, name := range names {
		t, err := mahjong.ParseTile(name)
		if err != nil {
			return nil, err
		}
		tiles[i] = t
	}
	return tiles, nil
}

func tileNames(tiles []mahjong.Tile) []string {
	names := make([]string, len(tiles))
	for i, t := range tiles {
		names[i] = t.String()
	}
	return names
}
