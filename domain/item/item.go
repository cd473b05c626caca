// Package item 定义 Item 实体及其存储契约。
package item

import (
	"context"

	"itemhub/domain/entity"
	"itemhub/domain/repository"
	"itemhub/validation"
)

// StatusProcessed 批处理成功后写入的状态值
const StatusProcessed = "PROCESSED"

const (
	maxNameLength        = 255
	maxDescriptionLength = 4096
)

// Item 唯一的领域实体
//
// ID 为 0 表示尚未持久化，由存储在首次保存时分配。
type Item struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Email       string `json:"email"`
}

var (
	_ entity.IEntity[int64] = (*Item)(nil)
	_ entity.IValidatable   = (*Item)(nil)
)

// GetID 实现 entity.IObject
func (i *Item) GetID() int64 { return i.ID }

// IsNew 实现 entity.IEntity
func (i *Item) IsNew() bool { return i.ID == 0 }

// Clone 返回值副本，存储层用它隔离调用方与内部状态
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// MarkProcessed 将状态置为 PROCESSED
func (i *Item) MarkProcessed() {
	i.Status = StatusProcessed
}

// Validate 校验字段格式；email 可为空，非空时必须格式正确
func (i *Item) Validate() error {
	if err := validation.ValidateStringLength(i.Name, "name", 0, maxNameLength); err != nil {
		return err
	}
	if err := validation.ValidateStringLength(i.Description, "description", 0, maxDescriptionLength); err != nil {
		return err
	}
	return validation.ValidateOptionalEmail(i.Email)
}

// Store Item 存储契约
type Store = repository.IRepository[*Item, int64]

// BatchSaver 可选接口：在一个原子单元内保存多个 Item
type BatchSaver interface {
	SaveAll(ctx context.Context, items []*Item) ([]*Item, error)
}
