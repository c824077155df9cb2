package mahjong

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidTile = errors.New("invalid tile")

// RankSpace 计数数组的长度，万 11-19、筒 21-29、索 31-39、字 41-47，其余为空位
const RankSpace = 48

// Tile 一张牌，普通牌的值等于它的 rank，赤五单独编码
type Tile uint8

const (
	Unknown Tile = 0

	// 万子 (11-19)
	Man1 Tile = iota + 10
	Man2
	Man3
	Man4
	Man5
	Man6
	Man7
	Man8
	Man9
)

const (
	// 筒子 (21-29)
	Pin1 Tile = iota + 21
	Pin2
	Pin3
	Pin4
	Pin5
	Pin6
	Pin7
	Pin8
	Pin9
)

const (
	// 索子 (31-39)
	So1 Tile = iota + 31
	So2
	So3
	So4
	So5
	So6
	So7
	So8
	So9
)

const (
	// 字牌 (41-47)
	East Tile = iota + 41
	South
	West
	North
	White
	Green
	Red
)

const (
	Man5Red Tile = iota + 51 // 赤五万
	Pin5Red                  // 赤五筒
	So5Red                   // 赤五索
)

var tileNames = map[Tile]string{
	East: "E", South: "S", West: "W", North: "N",
	White: "P", Green: "F", Red: "C",
	Man5Red: "5mr", Pin5Red: "5pr", So5Red: "5sr",
}

var tilesByName = make(map[string]Tile, 37)

func init() {
	for _, t := range AllTiles() {
		tilesByName[t.String()] = t
	}
}

// AllTiles 全部 37 种牌（34 种 + 3 张赤五）
func AllTiles() []Tile {
	out := make([]Tile, 0, 37)
	for r := 0; r < RankSpace; r++ {
		if t, err := TileFromRank(r); err == nil {
			out = append(out, t)
		}
	}
	return append(out, Man5Red, Pin5Red, So5Red)
}

// TileFromRank rank 转牌，空位和越界返回 ErrInvalidTile
func TileFromRank(rank int) (Tile, error) {
	switch {
	case rank >= 11 && rank <= 19, rank >= 21 && rank <= 29, rank >= 31 && rank <= 39, rank >= 41 && rank <= 47:
		return Tile(rank), nil
	default:
		return Unknown, fmt.Errorf("%w: rank %d", ErrInvalidTile, rank)
	}
}

// Rank 计数用的下标，赤五归一到普通五
func (t Tile) Rank() int {
	switch t {
	case Man5Red:
		return int(Man5)
	case Pin5Red:
		return int(Pin5)
	case So5Red:
		return int(So5)
	default:
		return int(t)
	}
}

func (t Tile) IsValid() bool {
	if t.IsRedFive() {
		return true
	}
	_, err := TileFromRank(int(t))
	return err == nil
}

func (t Tile) IsNumbered() bool {
	r := t.Rank()
	return r >= int(Man1) && r <= int(So9) && r%10 != 0
}

func (t Tile) IsHonor() bool {
	return t >= East && t <= Red
}

func (t Tile) IsRedFive() bool {
	return t == Man5Red || t == Pin5Red || t == So5Red
}

// IsYaochu 幺九牌：老头牌和字牌
func (t Tile) IsYaochu() bool {
	if t.IsHonor() {
		return true
	}
	n := t.Rank() % 10
	return t.IsNumbered() && (n == 1 || n == 9)
}

// Number 数牌的点数 1-9，字牌返回 0
func (t Tile) Number() int {
	if !t.IsNumbered() {
		return 0
	}
	return t.Rank() % 10
}

// Suit 花色字母 m/p/s/z
func (t Tile) Suit() byte {
	switch t.Rank() / 10 {
	case 1:
		return 'm'
	case 2:
		return 'p'
	case 3:
		return 's'
	case 4:
		return 'z'
	default:
		return '?'
	}
}

// Normal 去掉赤标记
func (t Tile) Normal() Tile {
	return Tile(t.Rank())
}

// String mjai 记法
func (t Tile) String() string {
	if name, ok := tileNames[t]; ok {
		return name
	}
	if t.IsNumbered() {
		return fmt.Sprintf("%d%c", t.Number(), t.Suit())
	}
	return "?"
}

// Compare 先按 rank，同 rank 普通五在赤五前
func Compare(a, b Tile) int {
	if ra, rb := a.Rank(), b.Rank(); ra != rb {
		return ra - rb
	}
	switch {
	case a.IsRedFive() == b.IsRedFive():
		return 0
	case a.IsRedFive():
		return 1
	default:
		return -1
	}
}

// ParseTile 解析 mjai 记法的单张牌
func ParseTile(s string) (Tile, error) {
	if t, ok := tilesByName[s]; ok {
		return t, nil
	}
	return Unknown, fmt.Errorf("%w: %q", ErrInvalidTile, s)
}

// ParseTiles 解析紧凑记法，如 "40m12356p4699s222z"，0 表示赤五
func ParseTiles(s string) ([]Tile, error) {
	var out []Tile
	var pending []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			pending = append(pending, c)
		case c == 'm' || c == 'p' || c == 's' || c == 'z':
			if len(pending) == 0 {
				return nil, fmt.Errorf("%w: suit %q without numbers in %q", ErrInvalidTile, c, s)
			}
			for _, d := range pending {
				t, err := compactTile(d-'0', c)
				if err != nil {
					return nil, fmt.Errorf("parse %q: %w", s, err)
				}
				out = append(out, t)
			}
			pending = pending[:0]
		case c == ' ':
		default:
			return nil, fmt.Errorf("%w: unexpected %q in %q", ErrInvalidTile, c, s)
		}
	}
	if len(pending) > 0 {
		return nil, fmt.Errorf("%w: trailing numbers in %q", ErrInvalidTile, s)
	}
	return out, nil
}

// MustParseTiles 测试和常量用
func MustParseTiles(s string) []Tile {
	tiles, err := ParseTiles(s)
	if err != nil {
		panic(err)
	}
	return tiles
}

func compactTile(n byte, suit byte) (Tile, error) {
	base := map[byte]int{'m': 10, 'p': 20, 's': 30, 'z': 40}[suit]
	if suit == 'z' {
		if n < 1 || n > 7 {
			return Unknown, fmt.Errorf("%w: %d%c", ErrInvalidTile, n, suit)
		}
		return TileFromRank(base + int(n))
	}
	if n == 0 {
		return Tile(base + 5).redFive(), nil
	}
	return TileFromRank(base + int(n))
}

func (t Tile) redFive() Tile {
	switch t {
	case Man5:
		return Man5Red
	case Pin5:
		return Pin5Red
	case So5:
		return So5Red
	default:
		return t
	}
}

// FormatTiles 紧凑记法输出，调试日志用
func FormatTiles(tiles []Tile) string {
	var b strings.Builder
	var suit byte
	for _, t := range tiles {
		if suit != 0 && t.Suit() != suit {
			b.WriteByte(suit)
		}
		suit = t.Suit()
		switch {
		case t.IsRedFive():
			b.WriteByte('0')
		case t.IsHonor():
			b.WriteByte(byte('0' + t.Rank() - 40))
		default:
			b.WriteByte(byte('0' + t.Number()))
		}
	}
	if suit != 0 {
		b.WriteByte(suit)
	}
	return b.String()
}
