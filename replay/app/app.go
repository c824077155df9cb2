package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shanten/common/config"
	"shanten/common/log"
	"shanten/core/container"
	"shanten/core/infrastructure/persistence"
	"shanten/framework/replay"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Options 命令行指定的回放目标
type Options struct {
	Game string // 游戏记录 ID（hex），文件来源时为空表示全部
	Seat int    // >=0 时输出该座位每局的最小向听
}

// Run 装配容器后回放，收到信号或回放结束时退出
func Run(ctx context.Context, conf config.ReplayConfiguration, opts Options) error {
	replayContainer, err := container.NewReplayContainer(conf)
	if err != nil {
		return fmt.Errorf("replay 容器初始化失败: %w", err)
	}
	defer func() {
		if err := replayContainer.Close(); err != nil {
			log.Error("关闭 replay 容器失败: %v", err)
		}
	}()

	games, err := targetGames(replayContainer, opts.Game)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- replayGames(ctx, replayContainer, games, opts.Seat)
	}()

	stop := func() {
		log.Info("正在停止回放...")
		cancel()
		timeout := time.Duration(conf.ReplayConf.ShutdownTimeout) * time.Second
		select {
		case <-done:
			log.Info("回放已停止")
		case <-time.After(timeout):
			log.Warn("停止回放超时（%s）", timeout)
		}
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGHUP)
	defer signal.Stop(c)
	for {
		select {
		case err := <-done:
			hits, misses, ratio := replayContainer.CacheStats()
			log.Info("回放结束 run=%s, 向听缓存 hits=%d misses=%d ratio=%.2f", replayContainer.Replayer.RunID(), hits, misses, ratio)
			return err
		case <-ctx.Done():
			stop()
			return nil
		case s := <-c:
			switch s {
			case syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT:
				stop()
				log.Info("中断信号，服务停止")
				return nil
			case syscall.SIGHUP:
				stop()
				log.Info("挂起信号，服务停止")
				return nil
			default:
				return nil
			}
		}
	}
}

func targetGames(c *container.ReplayContainer, game string) ([]primitive.ObjectID, error) {
	if game != "" {
		id, err := primitive.ObjectIDFromHex(game)
		if err != nil {
			return nil, fmt.Errorf("invalid game id %q: %w", game, err)
		}
		return []primitive.ObjectID{id}, nil
	}
	if src, ok := c.Source.(*persistence.FileRoundSource); ok {
		return src.GameRecordIDs(), nil
	}
	return nil, errors.New("--game is required when replaying from mongo")
}

func replayGames(ctx context.Context, c *container.ReplayContainer, games []primitive.ObjectID, seat int) error {
	for _, game := range games {
		summaries, err := c.Replayer.ReplayGame(ctx, c.Source, game)
		if err != nil {
			return fmt.Errorf("game %s: %w", game.Hex(), err)
		}
		logSummaries(game, summaries, seat)
		if seat >= 0 && seat < 4 {
			p := c.Replayer.Seat(seat)
			log.Info("game %s seat %d 终局手牌 %v, 副露 %d", game.Hex(), seat, p.Snapshot().Tehai, len(p.Melds()))
		}
	}
	return nil
}

func logSummaries(game primitive.ObjectID, summaries []replay.RoundSummary, seat int) {
	for _, s := range summaries {
		if s.Skipped {
			log.Warn("game %s round %d 已跳过", game.Hex(), s.RoundNumber)
			continue
		}
		if seat >= 0 && seat < 4 {
			log.Info("game %s round %d seat %d 最小向听 %d", game.Hex(), s.RoundNumber, seat, s.BestShanten[seat])
			continue
		}
		log.Info("game %s round %d events=%d evaluations=%d warnings=%d best=%v",
			game.Hex(), s.RoundNumber, s.Events, s.Evaluations, s.Warnings, s.BestShanten)
	}
}
