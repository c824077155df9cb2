package main

import (
	"context"
	"fmt"
	"os"

	"shanten/common/config"
	"shanten/common/log"
	"shanten/common/metrics"
	"shanten/replay/app"

	"github.com/spf13/cobra"
)

var (
	configFile string
	source     string
	file       string
	game       string
	seat       int
)

var rootCmd = &cobra.Command{
	Use:   "replay",
	Short: "replay 牌谱回放与向听分析",
	Long:  `replay 从 mongo 或导出文件读取局记录，逐事件重建四家手牌并在决策点计算向听数`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.Load(configFile); err != nil {
			log.Fatal("文件配置发生错误：%v", err)
		}
		conf := config.ReplayNodeConfig
		if cmd.Flags().Changed("source") {
			conf.ReplayConf.Source = source
		}
		if cmd.Flags().Changed("file") {
			conf.ReplayConf.File = file
			if !cmd.Flags().Changed("source") {
				conf.ReplayConf.Source = "file"
			}
		}

		log.InitLog(conf.ID, conf.LogConf.Level)
		log.Info("配置文件: %+v", conf)

		if err := config.Watch(configFile, func(c config.ReplayConfiguration) {
			log.SetLevel(c.LogConf.Level)
			log.Info("配置已更新, 日志级别: %s", c.LogConf.Level)
		}); err != nil {
			log.Warn("配置文件监听失败: %v", err)
		}

		if conf.MetricPort > 0 {
			go func() {
				log.Info("启动监控..., URL: http://localhost:%d/debug/statsviz/", conf.MetricPort)
				if err := metrics.Serve(fmt.Sprintf("0.0.0.0:%d", conf.MetricPort)); err != nil {
					log.Error("监控服务退出: %v", err)
				}
			}()
		}

		err := app.Run(context.Background(), conf, app.Options{Game: game, Seat: seat})
		if err != nil {
			log.Error("发生异常: %v", err)
			os.Exit(-1)
		}
	},
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "configFile", "resource/application.yml", "resource file")
	rootCmd.Flags().StringVar(&source, "source", "mongo", "牌谱来源: mongo | file")
	rootCmd.Flags().StringVar(&file, "file", "", "mongoexport 导出的局记录文件（每行一个文档）")
	rootCmd.Flags().StringVar(&game, "game", "", "游戏记录 ID")
	rootCmd.Flags().IntVar(&seat, "seat", -1, "只输出该座位的结果")
	rootCmd.MarkFlagRequired("configFile")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("error happen: %#v", err)
		os.Exit(1)
	}
}
