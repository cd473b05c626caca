// Package natspub 将通知消息发布到 NATS 主题
package natspub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"itemhub/logging"
	"itemhub/messaging"
)

// conn 仅声明用到的 nats.Conn 方法，便于测试替换
type conn interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// Config NATS 发布配置
type Config struct {
	URL           string
	Name          string
	SubjectPrefix string // 主题前缀，默认 "itemhub."
	Conn          *nats.Conn
	Logger        logging.Logger
}

// Publisher 基于核心 NATS 的发布器（至多一次投递）
type Publisher struct {
	conn     conn
	ownsConn bool
	prefix   string
	logger   logging.Logger

	mu     sync.RWMutex
	closed bool
}

var _ messaging.IPublisher = (*Publisher)(nil)

// NewPublisher 使用已有连接，或按 URL 建立新连接
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.Conn != nil {
		return newPublisher(cfg.Conn, false, cfg), nil
	}
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}
	name := cfg.Name
	if name == "" {
		name = "itemhub"
	}
	nc, err := nats.Connect(url, nats.Name(name))
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return newPublisher(nc, true, cfg), nil
}

func newPublisher(c conn, owns bool, cfg Config) *Publisher {
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "itemhub."
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.ComponentLogger("messaging.nats")
	}
	return &Publisher{conn: c, ownsConn: owns, prefix: cfg.SubjectPrefix, logger: cfg.Logger}
}

// Subject 消息类型对应的主题
func (p *Publisher) Subject(messageType string) string {
	return p.prefix + messageType
}

// Publish 发布并刷新连接，确保消息已写出
func (p *Publisher) Publish(ctx context.Context, msg messaging.IMessage) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return errors.New("nats publisher is closed")
	}

	data, err := messaging.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message %s: %w", msg.GetID(), err)
	}

	m := nats.NewMsg(p.Subject(msg.GetType()))
	m.Data = data
	m.Header.Set(nats.MsgIdHdr, msg.GetID())

	if err := p.conn.PublishMsg(m); err != nil {
		return fmt.Errorf("publish %s: %w", m.Subject, err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", m.Subject, err)
	}
	p.logger.Debug(ctx, "message published",
		logging.String("subject", m.Subject),
		logging.String("message_id", msg.GetID()))
	return nil
}

// Close 仅关闭自己建立的连接
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.ownsConn {
		p.conn.Close()
	}
	return nil
}
