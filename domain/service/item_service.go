// Package service 提供 Item 的应用服务：CRUD 委托给存储，批处理委托给处理器并发布通知
package service

import (
	"context"
	"fmt"

	"itemhub/domain/item"
	"itemhub/domain/repository"
	"itemhub/errors"
	"itemhub/logging"
	"itemhub/messaging"
	"itemhub/processing"
)

// EventItemsProcessed 批处理成功后发布的消息类型
const EventItemsProcessed = "items.processed"

// ItemsProcessed items.processed 消息负载
type ItemsProcessed struct {
	RunID      string  `json:"run_id"`
	Processed  int     `json:"processed"`
	Skipped    int     `json:"skipped"`
	ItemIDs    []int64 `json:"item_ids"`
	DurationMS int64   `json:"duration_ms"`
}

// IBulkRunner 批处理执行者，由 processing.BulkProcessor 实现
type IBulkRunner interface {
	ProcessAll(ctx context.Context) (*processing.Result, error)
}

// IItemService Item 应用服务
type IItemService interface {
	FindAll(ctx context.Context) ([]*item.Item, error)
	FindByID(ctx context.Context, id int64) (*item.Item, error)
	Create(ctx context.Context, it *item.Item) (*item.Item, error)
	Update(ctx context.Context, id int64, it *item.Item) (*item.Item, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ProcessAll(ctx context.Context) (*processing.Result, error)
	Seed(ctx context.Context, count int) ([]*item.Item, error)
	Health(ctx context.Context) error
}

// ItemService 默认实现
type ItemService struct {
	store     item.Store
	runner    IBulkRunner
	publisher messaging.IPublisher
	logger    logging.Logger
}

var _ IItemService = (*ItemService)(nil)

// NewItemService 创建服务；publisher 为 nil 时不发布通知
func NewItemService(store item.Store, runner IBulkRunner, publisher messaging.IPublisher) *ItemService {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &ItemService{
		store:     store,
		runner:    runner,
		publisher: publisher,
		logger:    logging.ComponentLogger("service.item"),
	}
}

func (s *ItemService) FindAll(ctx context.Context) ([]*item.Item, error) {
	items, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, errors.WrapDatabaseError(ctx, err, "find items")
	}
	return items, nil
}

func (s *ItemService) FindByID(ctx context.Context, id int64) (*item.Item, error) {
	if id <= 0 {
		return nil, errors.NewError(errors.ErrCodeInvalidInput, fmt.Sprintf("invalid item id: %d", id))
	}
	it, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, errors.WrapDatabaseError(ctx, err, "find item")
	}
	return it, nil
}

// Create 忽略调用方提供的 ID，由存储分配
func (s *ItemService) Create(ctx context.Context, it *item.Item) (*item.Item, error) {
	if it == nil {
		return nil, errors.NewValidationError("item body is required")
	}
	if err := it.Validate(); err != nil {
		return nil, err
	}

	toSave := it.Clone()
	toSave.ID = 0
	saved, err := s.store.Save(ctx, toSave)
	if err != nil {
		return nil, errors.WrapDatabaseError(ctx, err, "create item")
	}
	s.logger.Info(ctx, "item created", logging.Int64("item_id", saved.ID))
	return saved, nil
}

// Update 以路径中的 id 为准整体替换；目标不存在返回 NOT_FOUND
func (s *ItemService) Update(ctx context.Context, id int64, it *item.Item) (*item.Item, error) {
	if it == nil {
		return nil, errors.NewValidationError("item body is required")
	}
	if err := it.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.store.ExistsByID(ctx, id)
	if err != nil {
		return nil, errors.WrapDatabaseError(ctx, err, "check item")
	}
	if !exists {
		return nil, errors.Normalize(repository.NotFound(id))
	}

	toSave := it.Clone()
	toSave.ID = id
	saved, err := s.store.Save(ctx, toSave)
	if err != nil {
		return nil, errors.WrapDatabaseError(ctx, err, "update item")
	}
	return saved, nil
}

// Delete 返回是否删除了记录
func (s *ItemService) Delete(ctx context.Context, id int64) (bool, error) {
	exists, err := s.store.ExistsByID(ctx, id)
	if err != nil {
		return false, errors.WrapDatabaseError(ctx, err, "check item")
	}
	if !exists {
		return false, nil
	}
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return false, errors.WrapDatabaseError(ctx, err, "delete item")
	}
	s.logger.Info(ctx, "item deleted", logging.Int64("item_id", id))
	return true, nil
}

// ProcessAll 执行一次批处理，成功后发布 items.processed；发布失败只记录日志
func (s *ItemService) ProcessAll(ctx context.Context) (*processing.Result, error) {
	res, err := s.runner.ProcessAll(ctx)
	if err != nil {
		return nil, err
	}

	msg := messaging.NewMessage(EventItemsProcessed, ItemsProcessed{
		RunID:      res.RunID,
		Processed:  res.Processed(),
		Skipped:    res.Skipped,
		ItemIDs:    res.IDs(),
		DurationMS: res.Duration.Milliseconds(),
	}).SetMetadata("run_id", res.RunID)

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.Warn(ctx, "publish processed notification failed",
			logging.String("run_id", res.RunID),
			logging.Error(err))
	}
	return res, nil
}

// Seed 生成 count 个演示 Item；存储支持批量保存时在一个原子单元内完成
func (s *ItemService) Seed(ctx context.Context, count int) ([]*item.Item, error) {
	if count <= 0 {
		return nil, errors.NewValidationError("seed count must be positive")
	}

	items := make([]*item.Item, count)
	for i := range items {
		n := i + 1
		items[i] = &item.Item{
			Name:        fmt.Sprintf("Item %d", n),
			Description: fmt.Sprintf("Description %d", n),
			Status:      "NEW",
			Email:       fmt.Sprintf("item%d@example.com", n),
		}
	}

	if bs, ok := s.store.(item.BatchSaver); ok {
		saved, err := bs.SaveAll(ctx, items)
		if err != nil {
			return nil, errors.WrapDatabaseError(ctx, err, "seed items")
		}
		return saved, nil
	}

	saved := make([]*item.Item, 0, count)
	for _, it := range items {
		out, err := s.store.Save(ctx, it)
		if err != nil {
			return nil, errors.WrapDatabaseError(ctx, err, "seed items")
		}
		saved = append(saved, out)
	}
	return saved, nil
}

// Health 存储实现 IPinger 时检查其可用性
func (s *ItemService) Health(ctx context.Context) error {
	if p, ok := s.store.(repository.IPinger); ok {
		if err := p.Ping(ctx); err != nil {
			return errors.WrapError(err, errors.ErrCodeServiceUnavailable, "store unavailable")
		}
	}
	return nil
}
