package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var ReplayNodeConfig ReplayConfiguration

type BaseConfig struct {
	ID         string `mapstructure:"id"`
	ServerType string `mapstructure:"serverType"`
	MetricPort int    `mapstructure:"metricPort"`
}

type ReplayConfiguration struct {
	BaseConfig   `mapstructure:",squash"`
	DatabaseConf `mapstructure:"database"`
	LogConf      `mapstructure:"log"`
	NatsConfig   `mapstructure:"nats"`
	CacheConf    `mapstructure:"cache"`
	ReplayConf   `mapstructure:"replay"`
}

type LogConf struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type DatabaseConf struct {
	MongoConf MongoConf `mapstructure:"mongo"`
	RedisConf RedisConf `mapstructure:"redis"`
}

type MongoConf struct {
	Url         string `mapstructure:"url"`
	Db          string `mapstructure:"db"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	MinPoolSize int    `mapstructure:"minPoolSize"`
	MaxPoolSize int    `mapstructure:"maxPoolSize"`
}

type RedisConf struct {
	Addr         string   `mapstructure:"addr"`
	ClusterAddrs []string `mapstructure:"clusterAddrs"`
	Password     string   `mapstructure:"password"`
	PoolSize     int      `mapstructure:"poolSize"`
	MinIdleConns int      `mapstructure:"minIdleConns"`
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
}

// Enabled 未配置地址时不启用 redis 快照
func (c RedisConf) Enabled() bool {
	return c.Addr != "" || (c.Host != "" && c.Port > 0) || len(c.ClusterAddrs) > 0
}

type NatsConfig struct {
	URL     string `json:"url" mapstructure:"url"`
	Subject string `json:"subject" mapstructure:"subject"`
}

// CacheConf 向听缓存，MaxCost 为条目数上限，TTL 单位秒
type CacheConf struct {
	MaxCost int64 `mapstructure:"maxCost"`
	TTL     int   `mapstructure:"ttl"`
}

type ReplayConf struct {
	Source          string `mapstructure:"source"` // mongo | file
	File            string `mapstructure:"file"`
	SkipInvalid     bool   `mapstructure:"skipInvalid"`
	ClampedPenalty  bool   `mapstructure:"clampedPenalty"`
	SnapshotTTL     int    `mapstructure:"snapshotTTL"` // 秒，0 不过期
	EveryEvent      bool   `mapstructure:"everyEvent"`
	ShutdownTimeout int    `mapstructure:"shutdownTimeout"`
}

func (c *ReplayConfiguration) applyDefaults() {
	if c.ServerType == "" {
		c.ServerType = "replay"
	}
	if c.CacheConf.MaxCost <= 0 {
		c.CacheConf.MaxCost = 1 << 20
	}
	if c.ReplayConf.Source == "" {
		c.ReplayConf.Source = "mongo"
	}
	if c.ReplayConf.ShutdownTimeout <= 0 {
		c.ReplayConf.ShutdownTimeout = 5
	}
	if c.NatsConfig.Subject == "" {
		c.NatsConfig.Subject = "replay.shanten"
	}
}

func newViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return v, nil
}

// Load 读取配置到 ReplayNodeConfig，NODE_ID 环境变量优先于文件中的 id
func Load(configFile string) error {
	cfg, err := Parse(configFile)
	if err != nil {
		return err
	}
	ReplayNodeConfig = cfg
	return nil
}

func Parse(configFile string) (ReplayConfiguration, error) {
	var cfg ReplayConfiguration
	v, err := newViper(configFile)
	if err != nil {
		return cfg, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if nodeID := os.Getenv("NODE_ID"); nodeID != "" {
		cfg.ID = nodeID
	}
	if cfg.ID == "" {
		return cfg, fmt.Errorf("node id is required: set id in %s or NODE_ID", configFile)
	}
	if cfg.ServerType != "" && cfg.ServerType != "replay" {
		return cfg, fmt.Errorf("unknown server type: %s", cfg.ServerType)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Watch 配置文件变化时重新解析并回调，目前只用于热更新日志级别
func Watch(configFile string, fn func(ReplayConfiguration)) error {
	v, err := newViper(configFile)
	if err != nil {
		return err
	}
	v.OnConfigChange(func(in fsnotify.Event) {
		if !in.Has(fsnotify.Write) && !in.Has(fsnotify.Create) {
			return
		}
		cfg, err := Parse(configFile)
		if err != nil {
			return
		}
		fn(cfg)
	})
	v.WatchConfig()
	return nil
}
