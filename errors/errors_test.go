package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemhub/domain/repository"
)

// TestWrapError_PreservesCause 包装后仍能通过 errors.Is 找到原始错误
func TestWrapError_PreservesCause(t *testing.T) {
	cause := stdErrors.New("disk full")
	wrapped := WrapError(cause, ErrCodeProcessing, "bulk run failed")

	require.NotNil(t, wrapped)
	assert.True(t, stdErrors.Is(wrapped, cause))
	assert.Equal(t, ErrCodeProcessing, wrapped.Code())
	assert.Equal(t, "bulk run failed", wrapped.Message())
	assert.Contains(t, wrapped.Error(), "disk full")
	assert.NotEmpty(t, wrapped.Stack())
}

func TestWrapError_Nil(t *testing.T) {
	assert.Nil(t, WrapError(nil, ErrCodeInternal, "noop"))
	assert.NoError(t, WrapWithLog(context.Background(), nil, ErrCodeInternal, "noop"))
}

// TestIs_ComparesByCode 同码 AppError 相等
func TestIs_ComparesByCode(t *testing.T) {
	err := NewError(ErrCodeNotFound, "item 7 not found")
	assert.True(t, stdErrors.Is(err, ErrNotFound))
	assert.False(t, stdErrors.Is(err, ErrValidation))

	// 外层错误码不同时，仍可沿 cause 匹配
	outer := WrapError(err, ErrCodeProcessing, "unit of work failed")
	assert.True(t, stdErrors.Is(outer, ErrNotFound))
	assert.True(t, IsErrorCode(outer, ErrCodeProcessing))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrorCode(""), GetErrorCode(nil))
	assert.Equal(t, ErrCodeInternal, GetErrorCode(stdErrors.New("plain")))
	assert.Equal(t, ErrCodeValidation, GetErrorCode(NewValidationError("bad email")))
	assert.Equal(t, ErrCodeTimeout, GetErrorCode(fmt.Errorf("ctx: %w", ErrTimeout)))
}

func TestWithContext_DoesNotMutateOriginal(t *testing.T) {
	base := NewError(ErrCodeInvalidInput, "bad id")
	withID := base.WithContext("id", "abc")

	assert.Equal(t, "abc", withID.Details()["id"])
	assert.NotContains(t, base.Details(), "id")
}

// TestNormalize 测试仓储与上下文错误的规范化
func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"not found", fmt.Errorf("load item 3: %w", repository.ErrEntityNotFound), ErrCodeNotFound},
		{"invalid id", repository.ErrInvalidID, ErrCodeInvalidInput},
		{"repository failed", repository.NewRepositoryError(repository.ErrRepositoryFailed, 9, stdErrors.New("conn reset")), ErrCodeDatabase},
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"already app error", NewValidationError("x"), ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorCode(Normalize(tt.err)))
		})
	}

	assert.Nil(t, Normalize(nil))
	plain := stdErrors.New("unknown")
	assert.Same(t, plain, Normalize(plain))
}

func TestWrapDatabaseError(t *testing.T) {
	ctx := context.Background()

	err := WrapDatabaseError(ctx, stdErrors.New("locked"), "save item")
	assert.True(t, IsErrorCode(err, ErrCodeDatabase))
	assert.Contains(t, err.Error(), "save item")

	failed := repository.NewRepositoryError(repository.ErrRepositoryFailed, 3, stdErrors.New("conn reset"))
	err = WrapDatabaseError(ctx, failed, "find item")
	assert.True(t, IsErrorCode(err, ErrCodeDatabase))
	assert.True(t, stdErrors.Is(err, repository.ErrRepositoryFailed))

	assert.True(t, IsNotFound(WrapDatabaseError(ctx, repository.NotFound(5), "find item")))
	assert.True(t, IsErrorCode(WrapDatabaseError(ctx, repository.ErrInvalidID, "save item"), ErrCodeInvalidInput))
	assert.True(t, IsErrorCode(WrapDatabaseError(ctx, context.DeadlineExceeded, "find items"), ErrCodeTimeout))

	nf := NewError(ErrCodeNotFound, "gone")
	assert.Same(t, nf, WrapDatabaseError(ctx, nf, "find item"))

	assert.NoError(t, WrapDatabaseError(ctx, nil, "noop"))
}
