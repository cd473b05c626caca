// Package memory 提供进程内的消息发布实现
package memory

import (
	"context"
	"fmt"
	"sync"

	"itemhub/logging"
	"itemhub/messaging"
)

// Handler 消息处理函数
type Handler func(ctx context.Context, msg messaging.IMessage) error

// Publisher 进程内发布器：按消息类型同步分发给订阅者
//
// 处理器错误与 panic 只记录日志，不影响发布方。
type Publisher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	closed   bool
	logger   logging.Logger
}

var _ messaging.IPublisher = (*Publisher)(nil)

// NewPublisher 创建进程内发布器
func NewPublisher() *Publisher {
	return &Publisher{
		handlers: make(map[string][]Handler),
		logger:   logging.ComponentLogger("messaging.memory"),
	}
}

// Subscribe 注册消息类型的处理器
func (p *Publisher) Subscribe(messageType string, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[messageType] = append(p.handlers[messageType], h)
}

// Publish 依次调用该类型的全部处理器
func (p *Publisher) Publish(ctx context.Context, msg messaging.IMessage) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("memory publisher is closed")
	}
	handlers := append([]Handler(nil), p.handlers[msg.GetType()]...)
	p.mu.RUnlock()

	for _, h := range handlers {
		p.dispatch(ctx, h, msg)
	}
	return nil
}

func (p *Publisher) dispatch(ctx context.Context, h Handler, msg messaging.IMessage) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(ctx, "message handler panicked",
				logging.String("message_id", msg.GetID()),
				logging.Any("panic", r))
		}
	}()
	if err := h(ctx, msg); err != nil {
		p.logger.Warn(ctx, "message handler failed",
			logging.String("message_id", msg.GetID()),
			logging.String("message_type", msg.GetType()),
			logging.Error(err))
	}
}

// Close 关闭后拒绝新的发布
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
