package mahjong

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

var ErrPonNotFound = errors.New("invalid state: previous pon not found for kakan")

// PlayerImage 单个座位的手牌与副露，按顺序消费牌谱事件
type PlayerImage struct {
	SeatIndex int
	hand      *Hand
	melds     []Meld
}

// NewPlayerImage 创建座位状态
func NewPlayerImage(seatIndex int) *PlayerImage {
	return &PlayerImage{
		SeatIndex: seatIndex,
		hand:      NewHand(),
		melds:     make([]Meld, 0, 4),
	}
}

// Update 应用一个事件，只处理发给本座位的配牌、摸切、鸣牌与杠
func (p *PlayerImage) Update(ev Event) error {
	switch e := ev.(type) {
	case StartKyokuEvent:
		p.hand.Haipai(e.Tehais[p.SeatIndex])
		p.melds = p.melds[:0]

	case TsumoEvent:
		if e.Actor != p.SeatIndex {
			return nil
		}
		p.hand.Tsumo(e.Pai)

	case DahaiEvent:
		if e.Actor != p.SeatIndex {
			return nil
		}
		if e.Tsumogiri {
			return p.hand.Tsumogiri()
		}
		return p.hand.Tedashi(e.Pai)

	case ChiEvent:
		if e.Actor != p.SeatIndex {
			return nil
		}
		return p.call(e.Consumed[:], Chi{Target: e.Target, Pai: e.Pai, Consumed: e.Consumed})

	case PonEvent:
		if e.Actor != p.SeatIndex {
			return nil
		}
		return p.call(e.Consumed[:], Pon{Target: e.Target, Pai: e.Pai, Consumed: e.Consumed})

	case DaiminkanEvent:
		if e.Actor != p.SeatIndex {
			return nil
		}
		return p.call(e.Consumed[:], Daiminkan{Target: e.Target, Pai: e.Pai, Consumed: e.Consumed})

	case AnkanEvent:
		if e.Actor != p.SeatIndex {
			return nil
		}
		return p.call(e.Consumed[:], Ankan{Consumed: e.Consumed})

	case KakanEvent:
		if e.Actor != p.SeatIndex {
			return nil
		}
		return p.kakan(e)
	}
	return nil
}

func (p *PlayerImage) call(consumed []Tile, m Meld) error {
	if err := p.hand.RemoveMultiple(consumed); err != nil {
		return fmt.Errorf("seat %d %s: %w", p.SeatIndex, m.Kind(), err)
	}
	p.melds = append(p.melds, m)
	return nil
}

func (p *PlayerImage) kakan(e KakanEvent) error {
	idx := slices.IndexFunc(p.melds, func(m Meld) bool {
		pon, ok := m.(Pon)
		return ok && pon.matchesKakan(e.Consumed)
	})
	if idx < 0 {
		return fmt.Errorf("seat %d kakan %s: %w", p.SeatIndex, e.Pai, ErrPonNotFound)
	}
	if err := p.hand.Tedashi(e.Pai); err != nil {
		return fmt.Errorf("seat %d kakan: %w", p.SeatIndex, err)
	}
	p.melds[idx] = p.melds[idx].(Pon).promote(e.Pai)
	return nil
}

// Hand 手牌只读视图
func (p *PlayerImage) Hand() []Tile {
	return p.hand.View()
}

// Melds 副露列表拷贝
func (p *PlayerImage) Melds() []Meld {
	return slices.Clone(p.melds)
}

// Tiles 手牌在前，随后依次展开每个副露
func (p *PlayerImage) Tiles() iter.Seq[Tile] {
	return func(yield func(Tile) bool) {
		for _, t := range p.hand.tiles {
			if !yield(t) {
				return
			}
		}
		for _, m := range p.melds {
			for _, t := range m.Tiles() {
				if !yield(t) {
					return
				}
			}
		}
	}
}

// CommittedTiles 手牌数 + 3×副露数，正常为 13，摸牌后为 14
func (p *PlayerImage) CommittedTiles() int {
	return p.hand.Len() + 3*len(p.melds)
}

// Shanten 以当前手牌计算向听数，副露通过手牌张数体现
func (p *PlayerImage) Shanten(e *Evaluator) int {
	return e.Evaluate(p.hand.tiles)
}

// Snapshot 可序列化的快照
type Snapshot struct {
	Tehai  []string `json:"tehai"`
	Fuuros []Meld   `json:"fuuros"`
}

func (p *PlayerImage) Snapshot() Snapshot {
	return Snapshot{
		Tehai:  tileStrings(p.hand.tiles),
		Fuuros: slices.Clone(p.melds),
	}
}
