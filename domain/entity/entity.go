// Package entity 定义领域实体的核心接口体系
//
// 设计原则：
// 1. 接口最小化 - 每个接口只包含必需的方法
// 2. 泛型支持 - 提供类型安全的 ID 类型
package entity

// IObject 最基础的对象接口，所有实体的根接口
type IObject[T comparable] interface {
	// GetID 返回对象的唯一标识
	GetID() T
}

// IEntity 可持久化实体接口
//
// ID 由存储在首次保存时分配，之后不可变。
// IsNew 为 true 时存储执行插入并分配 ID，否则按 ID 原地更新。
type IEntity[T comparable] interface {
	IObject[T]

	// IsNew 返回实体是否尚未被存储分配 ID
	IsNew() bool
}

// IValidatable 可验证接口
// 实现此接口的实体可以验证自身状态的有效性
type IValidatable interface {
	// Validate 验证实体状态是否有效
	// 返回 error 表示验证失败，nil 表示验证成功
	Validate() error
}
