package repository

// 常见错误
var (
	ErrEntityNotFound   = &RepositoryError{Code: "ENTITY_NOT_FOUND", Message: "entity not found"}
	ErrInvalidID        = &RepositoryError{Code: "INVALID_ID", Message: "invalid entity id"}
	ErrRepositoryFailed = &RepositoryError{Code: "REPOSITORY_FAILED", Message: "repository operation failed"}
)

// RepositoryError 仓储错误
type RepositoryError struct {
	Code     string
	Message  string
	EntityID any
	Cause    error
}

// NewRepositoryError 基于哨兵错误创建携带实体 ID 与原因的错误
func NewRepositoryError(kind *RepositoryError, id any, cause error) *RepositoryError {
	return &RepositoryError{Code: kind.Code, Message: kind.Message, EntityID: id, Cause: cause}
}

func (e *RepositoryError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RepositoryError) Unwrap() error {
	return e.Cause
}

// Is 同 Code 的仓储错误视为同类，便于 errors.Is 匹配哨兵
func (e *RepositoryError) Is(target error) bool {
	t, ok := target.(*RepositoryError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NotFound 返回指定实体 ID 的未找到错误
func NotFound(id any) error {
	return NewRepositoryError(ErrEntityNotFound, id, nil)
}
