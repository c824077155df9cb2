package mahjong

// Event 牌谱事件。带 actor 的事件只影响该座位，其余事件对座位状态没有影响
type Event interface {
	Type() string
	event()
}

type StartKyokuEvent struct {
	Bakaze     Tile
	Kyoku      int
	Honba      int
	Oya        int
	DoraMarker Tile
	Tehais     [4][]Tile
}

type TsumoEvent struct {
	Actor int
	Pai   Tile
}

type DahaiEvent struct {
	Actor     int
	Pai       Tile
	Tsumogiri bool
}

type ChiEvent struct {
	Actor    int
	Target   int
	Pai      Tile
	Consumed Consumed2
}

type PonEvent struct {
	Actor    int
	Target   int
	Pai      Tile
	Consumed Consumed2
}

type DaiminkanEvent struct {
	Actor    int
	Target   int
	Pai      Tile
	Consumed Consumed3
}

// KakanEvent Consumed 为碰的三张，Pai 为加上去的那张
type KakanEvent struct {
	Actor    int
	Pai      Tile
	Consumed Consumed3
}

type AnkanEvent struct {
	Actor    int
	Consumed Consumed4
}

type DoraEvent struct {
	DoraMarker Tile
}

type ReachEvent struct {
	Actor int
}

type HoraEvent struct {
	Actor  int
	Target int
}

type RyukyokuEvent struct{}

type EndKyokuEvent struct{}

const (
	TypeStartKyoku = "start_kyoku"
	TypeTsumo      = "tsumo"
	TypeDahai      = "dahai"
	TypeChi        = "chi"
	TypePon        = "pon"
	TypeDaiminkan  = "daiminkan"
	TypeKakan      = "kakan"
	TypeAnkan      = "ankan"
	TypeDora       = "dora"
	TypeReach      = "reach"
	TypeHora       = "hora"
	TypeRyukyoku   = "ryukyoku"
	TypeEndKyoku   = "end_kyoku"
)

func (StartKyokuEvent) Type() string { return TypeStartKyoku }
func (TsumoEvent) Type() string      { return TypeTsumo }
func (DahaiEvent) Type() string      { return TypeDahai }
func (ChiEvent) Type() string        { return TypeChi }
func (PonEvent) Type() string        { return TypePon }
func (DaiminkanEvent) Type() string  { return TypeDaiminkan }
func (KakanEvent) Type() string      { return TypeKakan }
func (AnkanEvent) Type() string      { return TypeAnkan }
func (DoraEvent) Type() string       { return TypeDora }
func (ReachEvent) Type() string      { return TypeReach }
func (HoraEvent) Type() string       { return TypeHora }
func (RyukyokuEvent) Type() string   { return TypeRyukyoku }
func (EndKyokuEvent) Type() string   { return TypeEndKyoku }

func (StartKyokuEvent) event() {}
func (TsumoEvent) event()      {}
func (DahaiEvent) event()      {}
func (ChiEvent) event()        {}
func (PonEvent) event()        {}
func (DaiminkanEvent) event()  {}
func (KakanEvent) event()      {}
func (AnkanEvent) event()      {}
func (DoraEvent) event()       {}
func (ReachEvent) event()      {}
func (HoraEvent) event()       {}
func (RyukyokuEvent) event()   {}
func (EndKyokuEvent) event()   {}

// ActorOf 事件的操作座位，系统事件返回 -1
func ActorOf(ev Event) int {
	switch e := ev.(type) {
	case TsumoEvent:
		return e.Actor
	case DahaiEvent:
		return e.Actor
	case ChiEvent:
		return e.Actor
	case PonEvent:
		return e.Actor
	case DaiminkanEvent:
		return e.Actor
	case KakanEvent:
		return e.Actor
	case AnkanEvent:
		return e.Actor
	case ReachEvent:
		return e.Actor
	case HoraEvent:
		return e.Actor
	default:
		return -1
	}
}
