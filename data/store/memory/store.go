// Package memory 提供基于内存 map 的 Item 存储，适用于开发、测试与单机部署
package memory

import (
	"context"
	"sort"
	"sync"

	"itemhub/domain/item"
	"itemhub/domain/repository"
)

// Store 并发安全的内存 Item 存储
//
// 读写均以副本交换，调用方持有的 *item.Item 与存储内部状态互不影响。
type Store struct {
	mu     sync.RWMutex
	items  map[int64]*item.Item
	nextID int64
}

var _ item.Store = (*Store)(nil)

// NewStore 创建空的内存存储
func NewStore() *Store {
	return &Store{items: make(map[int64]*item.Item)}
}

func (s *Store) FindAll(ctx context.Context) ([]*item.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*item.Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) FindAllIDs(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (*item.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return nil, repository.NotFound(id)
	}
	return it.Clone(), nil
}

// Save 新实体分配递增 ID；带 ID 的实体按 ID 覆盖（不存在时以该 ID 插入）
func (s *Store) Save(ctx context.Context, it *item.Item) (*item.Item, error) {
	if it == nil {
		return nil, repository.ErrInvalidID
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if it.ID < 0 {
		return nil, repository.NewRepositoryError(repository.ErrInvalidID, it.ID, nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := it.Clone()
	if stored.IsNew() {
		s.nextID++
		stored.ID = s.nextID
	} else if stored.ID > s.nextID {
		s.nextID = stored.ID
	}
	s.items[stored.ID] = stored
	return stored.Clone(), nil
}

func (s *Store) ExistsByID(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[id]
	return ok, nil
}

func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// Ping 实现 repository.IPinger
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// Len 当前条目数
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
