// Package messaging 定义领域通知的消息模型与发布接口
package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// IMessage 消息接口
type IMessage interface {
	GetID() string
	GetType() string
	GetTimestamp() time.Time
	GetPayload() any
	GetMetadata() map[string]any
}

// Message 消息基础实现
type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   any            `json:"payload"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewMessage 创建新消息，ID 为随机 UUID
func NewMessage(messageType string, payload any) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Type:      messageType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
		Metadata:  make(map[string]any),
	}
}

func (m *Message) GetID() string           { return m.ID }
func (m *Message) GetType() string         { return m.Type }
func (m *Message) GetTimestamp() time.Time { return m.Timestamp }
func (m *Message) GetPayload() any         { return m.Payload }

// GetMetadata 获取元数据
func (m *Message) GetMetadata() map[string]any {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	return m.Metadata
}

// SetMetadata 设置元数据，返回自身便于链式调用
func (m *Message) SetMetadata(key string, value any) *Message {
	m.GetMetadata()[key] = value
	return m
}

// Marshal 将任意 IMessage 编码为 JSON 信封
func Marshal(msg IMessage) ([]byte, error) {
	return json.Marshal(&Message{
		ID:        msg.GetID(),
		Type:      msg.GetType(),
		Timestamp: msg.GetTimestamp(),
		Payload:   msg.GetPayload(),
		Metadata:  msg.GetMetadata(),
	})
}

// Unmarshal 解码 JSON 信封，Payload 解为通用 JSON 值
func Unmarshal(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// IPublisher 消息发布接口
type IPublisher interface {
	Publish(ctx context.Context, msg IMessage) error
	Close() error
}

// NoopPublisher 丢弃全部消息
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, msg IMessage) error { return nil }
func (NoopPublisher) Close() error                                    { return nil }
