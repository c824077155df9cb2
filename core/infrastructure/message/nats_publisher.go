package message

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shanten/common/log"

	"github.com/nats-io/nats.go"
)

var ErrNotConnected = errors.New("未连接到 nats 服务")

// NatsPublisher 只发布不订阅，消息体为 JSON
type NatsPublisher struct {
	name string
	conn *nats.Conn
}

func NewNatsPublisher(name string) *NatsPublisher {
	return &NatsPublisher{name: name}
}

func (p *NatsPublisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

func (p *NatsPublisher) Run(url string) error {
	log.Info("nats 正在连接, url:%s", url)
	conn, err := nats.Connect(url,
		nats.Name(p.name),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats 连接断开: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats 重连成功, url:%s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		log.Error("nats 连接错误,err:%v", err)
		return err
	}
	p.conn = conn
	log.Info("nats 连接成功, url:%s", url)
	return nil
}

// Publish 以 JSON 编码 v 后发布到 subject
func (p *NatsPublisher) Publish(subject string, v any) error {
	if !p.IsConnected() {
		return ErrNotConnected
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	return p.conn.Publish(subject, data)
}

// Close 先 Drain 保证已发布的消息送达
func (p *NatsPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	err := p.conn.Drain()
	log.Info("NATS 连接已关闭")
	return err
}
