package mahjong

import (
	"errors"
	"fmt"
	"slices"
)

var ErrTileNotInHand = errors.New("tile not in hand")

// Hand 手牌（不含副露），摸牌后最新的一张放在末尾，其余保持有序
type Hand struct {
	tiles []Tile
}

func NewHand(tiles ...Tile) *Hand {
	h := &Hand{}
	h.Haipai(tiles)
	return h
}

// Haipai 配牌，替换全部手牌
func (h *Hand) Haipai(tiles []Tile) {
	h.tiles = make([]Tile, len(tiles), 14)
	copy(h.tiles, tiles)
	h.sort()
}

// Tsumo 摸牌
func (h *Hand) Tsumo(t Tile) {
	h.tiles = append(h.tiles, t)
}

// Tedashi 手切，移除第一张相同的牌
func (h *Hand) Tedashi(t Tile) error {
	idx := slices.Index(h.tiles, t)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTileNotInHand, t)
	}
	h.tiles = slices.Delete(h.tiles, idx, idx+1)
	h.sort()
	return nil
}

// Tsumogiri 摸切，移除最新摸到的牌
func (h *Hand) Tsumogiri() error {
	if len(h.tiles) == 0 {
		return fmt.Errorf("%w: tsumogiri on empty hand", ErrTileNotInHand)
	}
	h.tiles = h.tiles[:len(h.tiles)-1]
	return nil
}

// RemoveMultiple 鸣牌时移除被用掉的牌，任一张不存在时手牌保持不变
func (h *Hand) RemoveMultiple(tiles []Tile) error {
	work := slices.Clone(h.tiles)
	for _, t := range tiles {
		idx := slices.Index(work, t)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrTileNotInHand, t)
		}
		work = slices.Delete(work, idx, idx+1)
	}
	h.tiles = work
	h.sort()
	return nil
}

// View 只读拷贝
func (h *Hand) View() []Tile {
	return slices.Clone(h.tiles)
}

func (h *Hand) Len() int {
	return len(h.tiles)
}

func (h *Hand) String() string {
	return FormatTiles(h.tiles)
}

func (h *Hand) sort() {
	slices.SortStableFunc(h.tiles, Compare)
}
