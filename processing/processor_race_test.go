package processing

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemhub/domain/item"
)

// 并发运行的结果应与单 worker 顺序运行一致；配合 -race 检查累加器
func TestProcessAll_ConcurrentMatchesSequential(t *testing.T) {
	const n = 150
	ctx := context.Background()

	seqStore, seqIDs := seededStore(t, n)
	seqRes, err := newProcessor(t, seqStore, 1, Config{}).ProcessAll(ctx)
	require.NoError(t, err)

	parStore, parIDs := seededStore(t, n)
	parRes, err := newProcessor(t, parStore, 4, Config{}).ProcessAll(ctx)
	require.NoError(t, err)

	require.Equal(t, seqIDs, parIDs)
	assert.Len(t, parRes.Items, n)
	assert.Equal(t, seqRes.IDs(), parRes.IDs())
	for i := range parRes.Items {
		assert.Equal(t, *seqRes.Items[i], *parRes.Items[i])
	}
}

// 多次运行共享同一个池
func TestProcessAll_ConcurrentRunsShareThePool(t *testing.T) {
	ctx := context.Background()
	store, ids := seededStore(t, 100)
	p := newProcessor(t, store, 4, Config{})

	var wg sync.WaitGroup
	results := make([]*Result, 3)
	errs := make([]error, 3)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = p.ProcessAll(ctx)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, ids, results[i].IDs())
	}
	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	for _, it := range all {
		assert.Equal(t, item.StatusProcessed, it.Status)
	}
}

// 处理期间并发删除：每个 ID 要么被处理，要么被跳过，不会报错
func TestProcessAll_ConcurrentDeletes(t *testing.T) {
	ctx := context.Background()
	store, ids := seededStore(t, 120)
	p := newProcessor(t, store, 4, Config{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < len(ids); i += 3 {
			_ = store.DeleteByID(ctx, ids[i])
		}
	}()

	res, err := p.ProcessAll(ctx)
	wg.Wait()
	require.NoError(t, err)
	assert.Equal(t, res.Requested, res.Processed()+res.Skipped)
}
