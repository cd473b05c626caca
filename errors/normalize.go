package errors

import (
	"context"
	stdErrors "errors"

	"itemhub/domain/repository"
)

// Normalize 将仓储层/运行时错误规范化为 AppError。
//
// 注意：
//   - 如果传入的 err 已经是 IError，则原样返回；
//   - 未识别的错误保持原样，不强行包装，交由调用方决定是否 Wrap。
func Normalize(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := err.(IError); ok {
		return err
	}

	if stdErrors.Is(err, repository.ErrEntityNotFound) {
		return WrapError(err, ErrCodeNotFound, "entity not found")
	}
	if stdErrors.Is(err, repository.ErrInvalidID) {
		return WrapError(err, ErrCodeInvalidInput, "invalid entity id")
	}
	if stdErrors.Is(err, repository.ErrRepositoryFailed) {
		return WrapError(err, ErrCodeDatabase, "repository operation failed")
	}

	if stdErrors.Is(err, context.DeadlineExceeded) || stdErrors.Is(err, context.Canceled) {
		return WrapError(err, ErrCodeTimeout, "operation cancelled or timed out")
	}

	return err
}
