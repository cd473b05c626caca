package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"runtime"

	"itemhub/domain/repository"
	"itemhub/logging"
)

// WrapWithLog 包装错误并立即记录警告日志
func WrapWithLog(ctx context.Context, err error, code ErrorCode, msg string, fields ...logging.Field) error {
	if err == nil {
		return nil
	}

	_, file, line, _ := runtime.Caller(1)

	wrapped := WrapError(err, code, msg)

	allFields := append([]logging.Field{
		logging.Error(err),
		logging.String("error_code", string(code)),
		logging.String("location", fmt.Sprintf("%s:%d", file, line)),
	}, fields...)

	logging.GetLogger().Warn(ctx, msg, allFields...)

	return wrapped
}

// WrapDatabaseError 包装存储层错误
//
// 已是 AppError 的原样返回；仓储的未找到、非法 ID、取消/超时按 Normalize 映射；
// 其余（含 ErrRepositoryFailed 与未识别的驱动错误）记录日志并归为 DATABASE_ERROR
func WrapDatabaseError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(IError); ok {
		return err
	}
	if !stdErrors.Is(err, repository.ErrRepositoryFailed) {
		if n := Normalize(err); n != err {
			return n
		}
	}

	return WrapWithLog(ctx, err, ErrCodeDatabase,
		fmt.Sprintf("database operation failed: %s", operation),
		logging.String("operation", operation),
	)
}

// NewValidationError 创建新的验证错误
func NewValidationError(msg string) error {
	return NewError(ErrCodeValidation, msg)
}
