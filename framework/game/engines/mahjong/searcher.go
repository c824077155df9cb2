package mahjong

import (
	"sync"
)

// Cache 向听缓存，common/cache.GeneralCache 满足该接口
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}) bool
}

// Searcher 并发安全的向听查询：每次调用从池中取独立的 Evaluator，结果按手牌计数缓存
type Searcher struct {
	cache Cache
	pool  sync.Pool
}

func NewSearcher(cache Cache, opts ...Option) *Searcher {
	s := &Searcher{cache: cache}
	s.pool.New = func() any {
		return NewEvaluator(opts...)
	}
	return s
}

// ShantenAll 三种牌型的向听数，带副露时由手牌张数体现
func (s *Searcher) ShantenAll(tiles []Tile) Breakdown {
	key := HandKey(tiles)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if b, ok := v.(Breakdown); ok {
				return b
			}
		}
	}

	e := s.pool.Get().(*Evaluator)
	b := e.Breakdown(tiles)
	s.pool.Put(e)

	if s.cache != nil {
		s.cache.Set(key, b)
	}
	return b
}

// Shanten 座位当前手牌的向听数
func (s *Searcher) Shanten(p *PlayerImage) Breakdown {
	return s.ShantenAll(p.hand.tiles)
}

// HandKey 按 rank 计数生成缓存 key，赤五与普通五等价
func HandKey(tiles []Tile) string {
	var b [RankSpace]byte
	for _, t := range tiles {
		if t.IsValid() {
			b[t.Rank()]++
		}
	}
	return string(b[:])
}
