package mahjong

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

var ErrInvalidMeld = errors.New("invalid meld")

type MeldKind int

const (
	MeldChi MeldKind = iota
	MeldPon
	MeldDaiminkan
	MeldKakan
	MeldAnkan
)

func (k MeldKind) String() string {
	switch k {
	case MeldChi:
		return "chi"
	case MeldPon:
		return "pon"
	case MeldDaiminkan:
		return "daiminkan"
	case MeldKakan:
		return "kakan"
	case MeldAnkan:
		return "ankan"
	default:
		return "unknown"
	}
}

type (
	Consumed2 [2]Tile
	Consumed3 [3]Tile
	Consumed4 [4]Tile
)

// EqualAsSet 作为多重集合比较，不关心顺序
func EqualAsSet(a, b []Tile) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	slices.SortFunc(x, Compare)
	slices.SortFunc(y, Compare)
	return slices.Equal(x, y)
}

// Meld 副露，五种之一
type Meld interface {
	Kind() MeldKind
	// Tiles 展开成牌，被鸣的牌在前
	Tiles() []Tile
	// ConsumedTiles 从手牌中拿出的牌
	ConsumedTiles() []Tile
	meld()
}

// Chi 吃
type Chi struct {
	Target   int
	Pai      Tile
	Consumed Consumed2
}

// Pon 碰
type Pon struct {
	Target   int
	Pai      Tile
	Consumed Consumed2
}

// Daiminkan 大明杠
type Daiminkan struct {
	Target   int
	Pai      Tile
	Consumed Consumed3
}

// Kakan 加杠，由原来的碰原地替换而来，保留碰的来源
type Kakan struct {
	Pai               Tile
	PreviousPonTarget int
	PreviousPonPai    Tile
	Consumed          Consumed2
}

// Ankan 暗杠
type Ankan struct {
	Consumed Consumed4
}

func (Chi) Kind() MeldKind       { return MeldChi }
func (Pon) Kind() MeldKind       { return MeldPon }
func (Daiminkan) Kind() MeldKind { return MeldDaiminkan }
func (Kakan) Kind() MeldKind     { return MeldKakan }
func (Ankan) Kind() MeldKind     { return MeldAnkan }

func (Chi) meld()       {}
func (Pon) meld()       {}
func (Daiminkan) meld() {}
func (Kakan) meld()     {}
func (Ankan) meld()     {}

func (m Chi) Tiles() []Tile       { return append([]Tile{m.Pai}, m.Consumed[:]...) }
func (m Pon) Tiles() []Tile       { return append([]Tile{m.Pai}, m.Consumed[:]...) }
func (m Daiminkan) Tiles() []Tile { return append([]Tile{m.Pai}, m.Consumed[:]...) }
func (m Kakan) Tiles() []Tile {
	return append([]Tile{m.Pai, m.PreviousPonPai}, m.Consumed[:]...)
}
func (m Ankan) Tiles() []Tile { return slices.Clone(m.Consumed[:]) }

func (m Chi) ConsumedTiles() []Tile       { return slices.Clone(m.Consumed[:]) }
func (m Pon) ConsumedTiles() []Tile       { return slices.Clone(m.Consumed[:]) }
func (m Daiminkan) ConsumedTiles() []Tile { return slices.Clone(m.Consumed[:]) }

// ConsumedTiles 加杠从手牌拿出的是碰时的两张加上加杠的那张
func (m Kakan) ConsumedTiles() []Tile { return []Tile{m.Consumed[0], m.Consumed[1], m.Pai} }
func (m Ankan) ConsumedTiles() []Tile { return slices.Clone(m.Consumed[:]) }

// matchesKakan 碰的三张与加杠事件的 consumed 是否一致
func (m Pon) matchesKakan(consumed Consumed3) bool {
	return EqualAsSet([]Tile{m.Pai, m.Consumed[0], m.Consumed[1]}, consumed[:])
}

func (m Pon) promote(pai Tile) Kakan {
	return Kakan{
		Pai:               pai,
		PreviousPonTarget: m.Target,
		PreviousPonPai:    m.Pai,
		Consumed:          m.Consumed,
	}
}

// -------------- 导出 --------------

type meldJSON struct {
	Type              string   `json:"type"`
	Target            *int     `json:"target,omitempty"`
	Pai               string   `json:"pai,omitempty"`
	PreviousPonTarget *int     `json:"previous_pon_target,omitempty"`
	PreviousPonPai    string   `json:"previous_pon_pai,omitempty"`
	Consumed          []string `json:"consumed"`
}

func tileStrings(tiles []Tile) []string {
	out := make([]string, len(tiles))
	for i, t := range tiles {
		out[i] = t.String()
	}
	return out
}

func (m Chi) MarshalJSON() ([]byte, error) {
	return json.Marshal(meldJSON{Type: m.Kind().String(), Target: &m.Target, Pai: m.Pai.String(), Consumed: tileStrings(m.Consumed[:])})
}

func (m Pon) MarshalJSON() ([]byte, error) {
	return json.Marshal(meldJSON{Type: m.Kind().String(), Target: &m.Target, Pai: m.Pai.String(), Consumed: tileStrings(m.Consumed[:])})
}

func (m Daiminkan) MarshalJSON() ([]byte, error) {
	return json.Marshal(meldJSON{Type: m.Kind().String(), Target: &m.Target, Pai: m.Pai.String(), Consumed: tileStrings(m.Consumed[:])})
}

func (m Kakan) MarshalJSON() ([]byte, error) {
	return json.Marshal(meldJSON{
		Type:              m.Kind().String(),
		Pai:               m.Pai.String(),
		PreviousPonTarget: &m.PreviousPonTarget,
		PreviousPonPai:    m.PreviousPonPai.String(),
		Consumed:          tileStrings(m.Consumed[:]),
	})
}

func (m Ankan) MarshalJSON() ([]byte, error) {
	return json.Marshal(meldJSON{Type: m.Kind().String(), Consumed: tileStrings(m.Consumed[:])})
}

// UnmarshalMeld 解析 MarshalJSON 的输出
func UnmarshalMeld(data []byte) (Meld, error) {
	var raw meldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	consumed := make([]Tile, len(raw.Consumed))
	for i, name := range raw.Consumed {
		t, err := ParseTile(name)
		if err != nil {
			return nil, err
		}
		consumed[i] = t
	}
	var pai, prev Tile
	var err error
	if raw.Pai != "" {
		if pai, err = ParseTile(raw.Pai); err != nil {
			return nil, err
		}
	}
	if raw.PreviousPonPai != "" {
		if prev, err = ParseTile(raw.PreviousPonPai); err != nil {
			return nil, err
		}
	}
	target := func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	}

	want := map[string]int{"chi": 2, "pon": 2, "daiminkan": 3, "kakan": 2, "ankan": 4}[raw.Type]
	if want == 0 || len(consumed) != want {
		return nil, fmt.Errorf("%w: %s with %d consumed tiles", ErrInvalidMeld, raw.Type, len(consumed))
	}
	switch raw.Type {
	case "chi":
		return Chi{Target: target(raw.Target), Pai: pai, Consumed: Consumed2(consumed)}, nil
	case "pon":
		return Pon{Target: target(raw.Target), Pai: pai, Consumed: Consumed2(consumed)}, nil
	case "daiminkan":
		return Daiminkan{Target: target(raw.Target), Pai: pai, Consumed: Consumed3(consumed)}, nil
	case "kakan":
		return Kakan{Pai: pai, PreviousPonTarget: target(raw.PreviousPonTarget), PreviousPonPai: prev, Consumed: Consumed2(consumed)}, nil
	default:
		return Ankan{Consumed: Consumed4(consumed)}, nil
	}
}
