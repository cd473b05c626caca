package http

import (
	"context"

	"github.com/google/uuid"
)

// HeaderRequestID 请求标识头
const HeaderRequestID = "X-Request-ID"

type contextKey string

const (
	contextKeyRequestID     contextKey = "request_id"
	contextKeyCorrelationID contextKey = "correlation_id"
)

// WithRequestID 在 context 中设置 request_id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

// GetRequestID 从 context 中获取 request_id，不存在时返回空字符串
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

// WithCorrelationID 在 context 中设置 correlation_id
//
// correlation_id 标识整个业务流程，可由上游通过请求头传入；缺省时等于 request_id。
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyCorrelationID, id)
}

// GetCorrelationID 从 context 中获取 correlation_id
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKeyCorrelationID).(string)
	return id
}

// NewRequestID 生成新的请求标识
func NewRequestID() string {
	return uuid.NewString()
}
