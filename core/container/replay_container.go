package container

import (
	"fmt"
	"sync"
	"time"

	"shanten/common/cache"
	"shanten/common/config"
	"shanten/common/log"
	"shanten/core/domain/repository"
	"shanten/core/infrastructure/message"
	"shanten/core/infrastructure/persistence"
	"shanten/framework/game/engines/mahjong"
	"shanten/framework/replay"
)

// ReplayContainer replay 服务专用容器
type ReplayContainer struct {
	*BaseContainer
	Source    repository.RoundRecordRepository
	Replayer  *replay.Replayer
	cache     *cache.GeneralCache
	publisher *message.NatsPublisher
	closed    bool
	mu        sync.Mutex
}

// NewReplayContainer 按配置装配牌谱来源、向听缓存与输出
func NewReplayContainer(conf config.ReplayConfiguration) (*ReplayContainer, error) {
	fromFile := conf.ReplayConf.Source == "file"
	if !fromFile && conf.ReplayConf.Source != "mongo" {
		return nil, fmt.Errorf("unknown replay source: %s", conf.ReplayConf.Source)
	}

	base, err := NewBase(conf.DatabaseConf, !fromFile)
	if err != nil {
		return nil, err
	}
	c := &ReplayContainer{BaseContainer: base}

	if fromFile {
		src, err := persistence.NewFileRoundSource(conf.ReplayConf.File)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("读取牌谱文件失败: %w", err)
		}
		c.Source = src
	} else {
		c.Source = persistence.NewRoundRecordRepository(base.GetMongo())
	}

	c.cache, err = cache.NewGeneralCache(conf.CacheConf.MaxCost, time.Duration(conf.CacheConf.TTL)*time.Second)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	var evalOpts []mahjong.Option
	if conf.ReplayConf.ClampedPenalty {
		evalOpts = append(evalOpts, mahjong.WithClampedPenalty())
	}
	if log.IsDebug() {
		evalOpts = append(evalOpts, mahjong.WithTracer(log.Tracer{}))
	}

	sinks := []replay.Sink{replay.LogSink{}}
	if redis := base.GetRedis(); redis != nil {
		repo := persistence.NewSnapshotRepository(redis, time.Duration(conf.ReplayConf.SnapshotTTL)*time.Second)
		sinks = append(sinks, replay.NewSnapshotSink(repo))
	}
	if conf.NatsConfig.URL != "" {
		c.publisher = message.NewNatsPublisher(conf.ID)
		if err := c.publisher.Run(conf.NatsConfig.URL); err != nil {
			_ = c.Close()
			return nil, err
		}
		sinks = append(sinks, replay.NewPublishSink(c.publisher, conf.NatsConfig.Subject))
	}

	c.Replayer = replay.NewReplayer(
		mahjong.NewSearcher(c.cache, evalOpts...),
		replay.WithSinks(sinks...),
		replay.WithSkipInvalid(conf.ReplayConf.SkipInvalid),
		replay.WithEveryEvent(conf.ReplayConf.EveryEvent),
	)
	return c, nil
}

// CacheStats 向听缓存命中情况
func (c *ReplayContainer) CacheStats() (hits, misses uint64, ratio float64) {
	return c.cache.Stats()
}

// Close 幂等
func (c *ReplayContainer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			log.Warn("nats 关闭失败: %v", err)
		}
	}
	if c.cache != nil {
		c.cache.Close()
	}
	return c.BaseContainer.Close()
}
