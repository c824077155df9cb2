package mahjong

import (
	"strings"
)

// Tracer 搜索过程观察者，nil 时不输出
type Tracer interface {
	Trace(format string, args ...any)
}

type TracerFunc func(format string, args ...any)

func (f TracerFunc) Trace(format string, args ...any) { f(format, args...) }

type Option func(*Evaluator)

func WithTracer(t Tracer) Option {
	return func(e *Evaluator) { e.tracer = t }
}

// WithClampedPenalty 叶子罚分取 max(0, 块数-5)。默认不截断，与历史牌谱测试结果保持一致
func WithClampedPenalty() Option {
	return func(e *Evaluator) { e.clampPenalty = true }
}

// Breakdown 三种牌型各自的向听数
type Breakdown struct {
	Kokushi int `json:"kokushi" bson:"kokushi"`
	Chiitoi int `json:"chiitoi" bson:"chiitoi"`
	Normal  int `json:"normal" bson:"normal"`
	Min     int `json:"min" bson:"min"`
}

// Evaluator 向听数计算。计数数组在搜索中原地修改并在返回前全部恢复，不可并发使用
type Evaluator struct {
	counts    [RankSpace]int
	remaining int
	total     int

	tracer       Tracer
	clampPenalty bool
	taken        [][]int
}

type searchState struct {
	shanten int
	cMax    int
}

func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate 手牌（不含副露）的向听数，-1 为和了，0 为听牌
func (e *Evaluator) Evaluate(tiles []Tile) int {
	return e.Breakdown(tiles).Min
}

func (e *Evaluator) Breakdown(tiles []Tile) Breakdown {
	e.load(tiles)
	b := Breakdown{
		Kokushi: e.kokushi(),
		Chiitoi: e.chiitoi(),
		Normal:  e.normal(),
	}
	b.Min = min(b.Kokushi, b.Chiitoi, b.Normal)
	return b
}

// Kokushi 国士无双向听数，有副露时为 8
func (e *Evaluator) Kokushi(tiles []Tile) int {
	e.load(tiles)
	return e.kokushi()
}

// Chiitoi 七对子向听数，有副露时为 6
func (e *Evaluator) Chiitoi(tiles []Tile) int {
	e.load(tiles)
	return e.chiitoi()
}

// Normal 一般型（4 面子 1 雀头）向听数
func (e *Evaluator) Normal(tiles []Tile) int {
	e.load(tiles)
	return e.normal()
}

// load 统计各 rank 张数，无法还原成牌的 rank 视为不存在
func (e *Evaluator) load(tiles []Tile) {
	e.counts = [RankSpace]int{}
	e.remaining = 0
	for _, t := range tiles {
		if !t.IsValid() {
			continue
		}
		e.counts[t.Rank()]++
		e.remaining++
	}
	e.total = e.remaining
	e.taken = e.taken[:0]
}

func (e *Evaluator) kokushi() int {
	if e.total < 13 {
		return 8
	}
	kinds, pair := 0, false
	for rank, n := range e.counts {
		if n == 0 {
			continue
		}
		t, err := TileFromRank(rank)
		if err != nil || !t.IsYaochu() {
			continue
		}
		kinds++
		if n > 1 {
			pair = true
		}
	}
	sh := 13 - kinds
	if pair {
		sh--
	}
	return sh
}

func (e *Evaluator) chiitoi() int {
	sh := 6
	if e.total < 13 {
		return sh
	}
	kinds := 0
	for rank, n := range e.counts {
		if n == 0 {
			continue
		}
		if _, err := TileFromRank(rank); err != nil {
			continue
		}
		if n >= 2 {
			sh--
		}
		kinds++
	}
	return sh + max(0, 7-kinds)
}

// normal 先枚举雀头（含不取雀头），再分两阶段搜索：面子，然后搭子与孤张
func (e *Evaluator) normal() int {
	st := &searchState{shanten: 8}
	for _, eye := range e.eyes() {
		e.trace("take %s as eye begin", rankName(eye))
		e.with([]int{eye, eye}, func() {
			e.searchGroups(st, 0, 1, 0)
		})
		e.trace("take %s as eye done, s: %d", rankName(eye), st.shanten)
	}
	e.trace("take nothing as eye begin")
	e.searchGroups(st, 0, 0, 0)
	e.trace("take nothing as eye done, s: %d", st.shanten)
	return st.shanten
}

func (e *Evaluator) eyes() []int {
	var out []int
	for rank, n := range e.counts {
		if n >= 2 {
			out = append(out, rank)
		}
	}
	return out
}

// with 拿出 ranks 后执行 fn，返回前无条件放回
func (e *Evaluator) with(ranks []int, fn func()) {
	for _, r := range ranks {
		e.counts[r]--
	}
	e.remaining -= len(ranks)
	if e.tracer != nil {
		e.taken = append(e.taken, ranks)
	}
	defer func() {
		for _, r := range ranks {
			e.counts[r]++
		}
		e.remaining += len(ranks)
		if e.tracer != nil {
			e.taken = e.taken[:len(e.taken)-1]
		}
	}()
	fn()
}

// maxGroups 剩余张数最多还能组成的面子数
func (e *Evaluator) maxGroups(eye int) int {
	if eye == 1 {
		return (e.total - 2) / 3
	}
	return e.total / 3
}

func (e *Evaluator) searchGroups(st *searchState, pos, eye, groups int) {
	r := e.nextNonZero(pos)
	if r >= RankSpace || e.remaining < 3 || groups >= e.maxGroups(eye) {
		e.searchPartials(st, 0, eye, groups, 0)
		return
	}

	if e.counts[r] >= 3 {
		e.with([]int{r, r, r}, func() {
			e.searchGroups(st, r, eye, groups+1)
		})
	}
	if e.canRun(r) {
		e.with([]int{r, r + 1, r + 2}, func() {
			e.searchGroups(st, r, eye, groups+1)
		})
	}
	e.searchGroups(st, r+1, eye, groups)
}

func (e *Evaluator) searchPartials(st *searchState, pos, eye, groups, partials int) {
	if st.shanten == -1 {
		return
	}
	c := 3*groups + 2*partials + 2*eye
	if e.remaining < st.cMax-c {
		e.trace("cut %s: %d < %d - %d", e.takenString(), e.remaining, st.cMax, c)
		return
	}
	if e.remaining == 0 {
		e.score(st, eye, groups, partials, c)
		return
	}

	r := e.nextNonZero(pos)
	// 对子
	if e.counts[r] >= 2 {
		e.with([]int{r, r}, func() {
			e.searchPartials(st, r, eye, groups, partials+1)
		})
	}
	// 两面/边张
	if sameSuit(r, r+1) && e.counts[r+1] > 0 {
		e.with([]int{r, r + 1}, func() {
			e.searchPartials(st, r, eye, groups, partials+1)
		})
	}
	// 嵌张
	if sameSuit(r, r+2) && e.counts[r+2] > 0 {
		e.with([]int{r, r + 2}, func() {
			e.searchPartials(st, r, eye, groups, partials+1)
		})
	}
	// 孤张
	e.with([]int{r}, func() {
		e.searchPartials(st, r, eye, groups, partials)
	})
}

// score 叶子：9 - 2×面子 - 搭子 - 2×雀头 - 副露 + (面子+搭子+雀头-5)
func (e *Evaluator) score(st *searchState, eye, groups, partials, c int) {
	melds := (14 - e.total) / 3
	penalty := groups + partials + eye - 5
	if e.clampPenalty {
		penalty = max(0, penalty)
	}
	sh := 9 - 2*groups - partials - 2*eye - melds + penalty
	st.shanten = min(st.shanten, sh)
	st.cMax = max(st.cMax, c)
	e.trace("leaf %s: s: %d, c: %d, s_min: %d, c_max: %d", e.takenString(), sh, c, st.shanten, st.cMax)
}

func (e *Evaluator) nextNonZero(pos int) int {
	for r := pos; r < RankSpace; r++ {
		if e.counts[r] > 0 {
			return r
		}
	}
	return RankSpace
}

func (e *Evaluator) canRun(r int) bool {
	return sameSuit(r, r+2) && e.counts[r+1] > 0 && e.counts[r+2] > 0
}

// sameSuit 两个 rank 属于同一数牌花色，字牌不参与顺子
func sameSuit(a, b int) bool {
	return a < 40 && b < 40 && a/10 == b/10
}

func rankName(rank int) string {
	t, err := TileFromRank(rank)
	if err != nil {
		return "?"
	}
	return t.String()
}

func (e *Evaluator) trace(format string, args ...any) {
	if e.tracer != nil {
		e.tracer.Trace(format, args...)
	}
}

func (e *Evaluator) takenString() string {
	if e.tracer == nil {
		return ""
	}
	parts := make([]string, 0, len(e.taken))
	for _, ranks := range e.taken {
		names := make([]string, len(ranks))
		for i, r := range ranks {
			names[i] = rankName(r)
		}
		parts = append(parts, strings.Join(names, ""))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
