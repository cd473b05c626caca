package repository

import (
	"context"

	"itemhub/domain/entity"
)

// IRepository 记录型仓储接口
//
// 实现必须支持并发读写：批处理会从多个 worker 同时调用 FindByID 与 Save。
// 返回的实体应是副本，调用方修改不会影响存储内的状态。
type IRepository[T entity.IEntity[ID], ID comparable] interface {
	// FindAll 返回全部实体，按 ID 升序
	FindAll(ctx context.Context) ([]T, error)

	// FindAllIDs 返回当前全部实体的 ID 快照，按升序
	FindAllIDs(ctx context.Context) ([]ID, error)

	// FindByID 通过 ID 获取实体，不存在时返回 ErrEntityNotFound
	FindByID(ctx context.Context, id ID) (T, error)

	// Save 新实体分配 ID 后插入，已有实体按 ID 覆盖
	Save(ctx context.Context, e T) (T, error)

	// ExistsByID 检查实体是否存在
	ExistsByID(ctx context.Context, id ID) (bool, error)

	// DeleteByID 物理删除，不存在时为空操作
	DeleteByID(ctx context.Context, id ID) error
}

// IPinger 可选接口：存储可用性检查（用于健康检查）
type IPinger interface {
	Ping(ctx context.Context) error
}
