package basic

import (
	"context"

	httpx "itemhub/http"
)

type RequestContext struct{ context.Context }

func NewRequestContext(ctx context.Context) httpx.IRequestContext {
	if ctx == nil {
		ctx = context.TODO()
	}
	return &RequestContext{Context: ctx}
}

func (r *RequestContext) GetRequestID() string     { return httpx.GetRequestID(r.Context) }
func (r *RequestContext) GetCorrelationID() string { return httpx.GetCorrelationID(r.Context) }

func (r *RequestContext) WithValue(key any, value any) httpx.IRequestContext {
	return &RequestContext{Context: context.WithValue(r.Context, key, value)}
}

// WithRequestIDs 返回携带 request_id 与 correlation_id 的新上下文
func WithRequestIDs(ctx httpx.IRequestContext, requestID, correlationID string) httpx.IRequestContext {
	c := httpx.WithRequestID(ctx, requestID)
	c = httpx.WithCorrelationID(c, correlationID)
	return &RequestContext{Context: c}
}
