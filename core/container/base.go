package container

import (
	"shanten/common/config"
	"shanten/common/database"
	"shanten/common/log"
)

// BaseContainer 基础容器，管理数据库连接。redis 未配置时为 nil
type BaseContainer struct {
	mongo *database.MongoManager
	redis *database.RedisManager
}

// NewBase 按需初始化数据库，needMongo 为 false 时不连接 mongo
func NewBase(conf config.DatabaseConf, needMongo bool) (*BaseContainer, error) {
	c := &BaseContainer{}
	if needMongo {
		mongo, err := database.NewMongo(conf.MongoConf)
		if err != nil {
			return nil, err
		}
		c.mongo = mongo
	}
	if conf.RedisConf.Enabled() {
		redis, err := database.NewRedis(conf.RedisConf)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.redis = redis
		log.Info("redis 连接成功")
	}
	return c, nil
}

// GetMongo 获取 Mongo 管理器
func (c *BaseContainer) GetMongo() *database.MongoManager {
	return c.mongo
}

// GetRedis 获取 Redis 管理器
func (c *BaseContainer) GetRedis() *database.RedisManager {
	return c.redis
}

// Close 关闭所有资源
func (c *BaseContainer) Close() error {
	var e1, e2 error
	if c.mongo != nil {
		e1 = c.mongo.Close()
	}
	if c.redis != nil {
		e2 = c.redis.Close()
	}
	if e1 != nil {
		log.Error("mongo 关闭失败: %v", e1)
	}
	if e2 != nil {
		log.Error("redis 关闭失败: %v", e2)
	}
	if e1 != nil {
		return e1
	}
	return e2
}
