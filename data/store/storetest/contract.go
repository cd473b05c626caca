// Package storetest 提供 item.Store 实现共用的契约测试
package storetest

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemhub/domain/item"
	"itemhub/domain/repository"
)

// Factory 为每个子测试创建一个空存储
type Factory func(t *testing.T) item.Store

// Run 执行全部契约测试
func Run(t *testing.T, newStore Factory) {
	t.Run("SaveAssignsIDOnce", func(t *testing.T) { testSaveAssignsID(t, newStore(t)) })
	t.Run("SaveUpdatesInPlace", func(t *testing.T) { testSaveUpdates(t, newStore(t)) })
	t.Run("FindByIDNotFound", func(t *testing.T) { testNotFound(t, newStore(t)) })
	t.Run("FindAllAndIDsSorted", func(t *testing.T) { testFindAll(t, newStore(t)) })
	t.Run("ExistsAndDelete", func(t *testing.T) { testExistsDelete(t, newStore(t)) })
	t.Run("ReturnsCopies", func(t *testing.T) { testReturnsCopies(t, newStore(t)) })
	t.Run("ConcurrentSaves", func(t *testing.T) { testConcurrentSaves(t, newStore(t)) })
}

// Seed 依次保存 n 个 Item，返回分配的 ID
func Seed(t *testing.T, s item.Store, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for i := 1; i <= n; i++ {
		saved, err := s.Save(context.Background(), &item.Item{
			Name:        fmt.Sprintf("Item %d", i),
			Description: fmt.Sprintf("Desc %d", i),
			Status:      "NEW",
			Email:       fmt.Sprintf("test%d@example.com", i),
		})
		require.NoError(t, err)
		ids = append(ids, saved.ID)
	}
	return ids
}

func testSaveAssignsID(t *testing.T, s item.Store) {
	ctx := context.Background()
	in := &item.Item{Name: "Item 1", Status: "Waiting", Email: "a@example.com"}

	saved, err := s.Save(ctx, in)
	require.NoError(t, err)
	assert.Positive(t, saved.ID)
	assert.Zero(t, in.ID, "调用方的实体不应被修改")

	second, err := s.Save(ctx, &item.Item{Name: "Item 2"})
	require.NoError(t, err)
	assert.NotEqual(t, saved.ID, second.ID)
}

func testSaveUpdates(t *testing.T, s item.Store) {
	ctx := context.Background()
	saved, err := s.Save(ctx, &item.Item{Name: "Item 1", Status: "NEW"})
	require.NoError(t, err)

	saved.MarkProcessed()
	updated, err := s.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)

	got, err := s.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, item.StatusProcessed, got.Status)
	assert.Equal(t, "Item 1", got.Name)

	ids, err := s.FindAllIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func testNotFound(t *testing.T, s item.Store) {
	_, err := s.FindByID(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, stdErrors.Is(err, repository.ErrEntityNotFound))
}

func testFindAll(t *testing.T, s item.Store) {
	ctx := context.Background()
	ids := Seed(t, s, 3)

	gotIDs, err := s.FindAllIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids, gotIDs)

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, it := range all {
		assert.Equal(t, ids[i], it.ID)
		assert.Equal(t, fmt.Sprintf("Item %d", i+1), it.Name)
		assert.Equal(t, fmt.Sprintf("test%d@example.com", i+1), it.Email)
	}
}

func testExistsDelete(t *testing.T, s item.Store) {
	ctx := context.Background()
	ids := Seed(t, s, 2)

	ok, err := s.ExistsByID(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.DeleteByID(ctx, ids[0]))
	ok, err = s.ExistsByID(ctx, ids[0])
	require.NoError(t, err)
	assert.False(t, ok)

	// 删除不存在的 ID 为空操作
	require.NoError(t, s.DeleteByID(ctx, 9999))

	remaining, err := s.FindAllIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids[1:], remaining)
}

func testReturnsCopies(t *testing.T, s item.Store) {
	ctx := context.Background()
	ids := Seed(t, s, 1)

	got, err := s.FindByID(ctx, ids[0])
	require.NoError(t, err)
	got.Status = "MUTATED"

	again, err := s.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "NEW", again.Status)
}

func testConcurrentSaves(t *testing.T, s item.Store) {
	ctx := context.Background()
	ids := Seed(t, s, 50)

	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			it, err := s.FindByID(ctx, id)
			if err != nil {
				errs <- err
				return
			}
			it.MarkProcessed()
			if _, err := s.Save(ctx, it); err != nil {
				errs <- err
			}
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(ids))
	for _, it := range all {
		assert.Equal(t, item.StatusProcessed, it.Status)
	}
}
