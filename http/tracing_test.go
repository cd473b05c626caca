package http

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestWithRequestID 测试设置 request_id
func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Empty(t, GetCorrelationID(ctx))
}

// TestWithCorrelationID 测试设置 correlation_id
func TestWithCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "cor-123")
	assert.Equal(t, "cor-123", GetCorrelationID(ctx))
}

// TestGetIDs_NilContext 测试 nil context
func TestGetIDs_NilContext(t *testing.T) {
	//nolint:staticcheck // 显式验证 nil 容错
	assert.Empty(t, GetRequestID(nil))
	//nolint:staticcheck
	assert.Empty(t, GetCorrelationID(nil))
}

// TestNewRequestID 生成的 ID 是合法且唯一的 UUID
func TestNewRequestID(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

// TestErrorPayload 构造错误响应
func TestErrorPayload(t *testing.T) {
	p := NewErrorResponse("NOT_FOUND", "item not found", "id=3")
	assert.Equal(t, &ErrorPayload{Code: "NOT_FOUND", Message: "item not found", Details: "id=3"}, p)
}
