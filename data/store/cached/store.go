// Package cached 为任意 item.Store 增加按 ID 的读穿缓存
package cached

import (
	"context"

	"itemhub/cache"
	"itemhub/domain/item"
	"itemhub/domain/repository"
	"itemhub/logging"
)

// Store 读穿缓存装饰器
//
// FindByID 先查缓存；Save 写穿并刷新缓存；DeleteByID 成功后失效缓存。
// 列表查询始终直达底层存储。缓存中的值与返回值都是副本。
type Store struct {
	inner  item.Store
	cache  *cache.Cache[int64, *item.Item]
	logger logging.Logger
}

var (
	_ item.Store         = (*Store)(nil)
	_ repository.IPinger = (*Store)(nil)
)

// New 用给定缓存包装底层存储
func New(inner item.Store, c *cache.Cache[int64, *item.Item]) *Store {
	return &Store{
		inner:  inner,
		cache:  c,
		logger: logging.ComponentLogger("store.cached"),
	}
}

func (s *Store) FindAll(ctx context.Context) ([]*item.Item, error) {
	return s.inner.FindAll(ctx)
}

func (s *Store) FindAllIDs(ctx context.Context) ([]int64, error) {
	return s.inner.FindAllIDs(ctx)
}

func (s *Store) FindByID(ctx context.Context, id int64) (*item.Item, error) {
	if it, ok := s.cache.Get(id); ok {
		return it.Clone(), nil
	}

	it, err := s.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// 与并发 DeleteByID 竞争时可能回填已删除的条目，最长陈旧至 TTL 到期
	s.cache.SetIfAbsent(id, it.Clone())
	return it, nil
}

func (s *Store) Save(ctx context.Context, it *item.Item) (*item.Item, error) {
	saved, err := s.inner.Save(ctx, it)
	if err != nil {
		// 写入结果未知，丢弃旧值
		if it != nil && !it.IsNew() {
			s.cache.Delete(it.ID)
		}
		return nil, err
	}
	s.cache.Set(saved.ID, saved.Clone())
	return saved, nil
}

func (s *Store) ExistsByID(ctx context.Context, id int64) (bool, error) {
	if _, ok := s.cache.Get(id); ok {
		return true, nil
	}
	return s.inner.ExistsByID(ctx, id)
}

func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	err := s.inner.DeleteByID(ctx, id)
	s.cache.Delete(id)
	if err != nil {
		return err
	}
	s.logger.Debug(ctx, "cache entry invalidated", logging.Int64("id", id))
	return nil
}

// Ping 透传给底层存储
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.inner.(repository.IPinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Stats 缓存统计
func (s *Store) Stats() cache.Stats {
	return s.cache.Stats()
}
