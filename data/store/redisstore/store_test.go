package redisstore

import (
	"context"
	stdErrors "errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemhub/data/store/storetest"
	"itemhub/domain/item"
	"itemhub/domain/repository"
	"itemhub/logging"
)

// fakeClient 以内存 map 模拟用到的 Redis 命令
type fakeClient struct {
	mu      sync.Mutex
	strings map[string]string
	zsets   map[string]map[string]float64
	counter map[string]int64
	failSet error
	closed  bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		strings: make(map[string]string),
		zsets:   make(map[string]map[string]float64),
		counter: make(map[string]int64),
	}
}

func (f *fakeClient) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.strings[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeClient) MGet(ctx context.Context, keys ...string) *redis.SliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]any, len(keys))
	for i, k := range keys {
		if v, ok := f.strings[k]; ok {
			out[i] = v
		}
	}
	return redis.NewSliceResult(out, nil)
}

func (f *fakeClient) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet != nil {
		return redis.NewStatusResult("", f.failSet)
	}
	switch v := value.(type) {
	case []byte:
		f.strings[key] = string(v)
	case string:
		f.strings[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.strings[k]; ok {
			delete(f.strings, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeClient) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.strings[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeClient) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter[key]++
	return redis.NewIntResult(f.counter[key], nil)
}

func (f *fakeClient) ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.zsets[key]
	if !ok {
		set = make(map[string]float64)
		f.zsets[key] = set
	}
	for _, m := range members {
		set[m.Member.(string)] = m.Score
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (f *fakeClient) ZRem(ctx context.Context, key string, members ...any) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range members {
		delete(f.zsets[key], m.(string))
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (f *fakeClient) ZRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := f.zsets[key]
	members := make([]string, 0, len(set))
	for m := range set {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool { return set[members[i]] < set[members[j]] })
	return redis.NewStringSliceResult(members, nil)
}

func (f *fakeClient) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) item.Store {
		return newStore(newFakeClient(), false, "test:", logging.NewNoopLogger())
	})
}

func TestStore_KeyLayout(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	s := newStore(fc, false, "", logging.NewNoopLogger())

	saved, err := s.Save(ctx, &item.Item{Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.ID)

	assert.Contains(t, fc.strings, "itemhub:item:1")
	assert.Contains(t, fc.zsets["itemhub:items"], "1")
	assert.Equal(t, int64(1), fc.counter["itemhub:items:seq"])
}

func TestStore_FindAllSkipsDanglingIndexEntries(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	s := newStore(fc, false, "", logging.NewNoopLogger())
	storetest.Seed(t, s, 2)

	fc.mu.Lock()
	delete(fc.strings, "itemhub:item:1")
	fc.mu.Unlock()

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(2), all[0].ID)
}

func TestStore_SaveFailureIsRepositoryFailed(t *testing.T) {
	fc := newFakeClient()
	fc.failSet = stdErrors.New("connection reset")
	s := newStore(fc, false, "", logging.NewNoopLogger())

	_, err := s.Save(context.Background(), &item.Item{Name: "a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrRepositoryFailed)
	assert.ErrorContains(t, err, "connection reset")
}

func TestStore_CloseOnlyOwnedClient(t *testing.T) {
	fc := newFakeClient()
	require.NoError(t, newStore(fc, false, "", nil).Close())
	assert.False(t, fc.closed)

	require.NoError(t, newStore(fc, true, "", nil).Close())
	assert.True(t, fc.closed)
}

func TestNewStore_RequiresAddrOrClient(t *testing.T) {
	_, err := NewStore(Config{})
	assert.Error(t, err)
}
