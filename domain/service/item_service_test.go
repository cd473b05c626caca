package service

import (
	"context"
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemhub/data/store/memory"
	"itemhub/data/store/storetest"
	"itemhub/domain/item"
	"itemhub/domain/repository"
	"itemhub/errors"
	"itemhub/logging"
	"itemhub/messaging"
	msgmemory "itemhub/messaging/memory"
	"itemhub/processing"
)

type stubRunner struct {
	res *processing.Result
	err error
}

func (s *stubRunner) ProcessAll(ctx context.Context) (*processing.Result, error) { return s.res, s.err }

type failingPublisher struct{ messaging.NoopPublisher }

func (failingPublisher) Publish(ctx context.Context, msg messaging.IMessage) error {
	return stdErrors.New("broker down")
}

type pingFailStore struct{ *memory.Store }

func (pingFailStore) Ping(ctx context.Context) error { return stdErrors.New("no route") }

// brokenStore 读写均返回仓储故障
type brokenStore struct{ *memory.Store }

func (brokenStore) FindAll(ctx context.Context) ([]*item.Item, error) {
	return nil, repository.NewRepositoryError(repository.ErrRepositoryFailed, nil, stdErrors.New("disk I/O error"))
}

func (brokenStore) Save(ctx context.Context, it *item.Item) (*item.Item, error) {
	return nil, stdErrors.New("database is locked")
}

func TestItemService_CreateAssignsID(t *testing.T) {
	svc := NewItemService(memory.NewStore(), &stubRunner{}, nil)

	saved, err := svc.Create(context.Background(), &item.Item{ID: 99, Name: "a", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.ID, "客户端提供的 ID 应被忽略")
}

func TestItemService_CreateValidates(t *testing.T) {
	svc := NewItemService(memory.NewStore(), &stubRunner{}, nil)

	_, err := svc.Create(context.Background(), &item.Item{Name: "a", Email: "not-an-email"})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	_, err = svc.Create(context.Background(), nil)
	assert.True(t, errors.IsValidation(err))
}

func TestItemService_FindByID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ids := storetest.Seed(t, store, 1)
	svc := NewItemService(store, &stubRunner{}, nil)

	got, err := svc.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Item 1", got.Name)

	_, err = svc.FindByID(ctx, 404)
	assert.True(t, errors.IsNotFound(err))

	_, err = svc.FindByID(ctx, 0)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetErrorCode(err))
}

func TestItemService_Update(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ids := storetest.Seed(t, store, 1)
	svc := NewItemService(store, &stubRunner{}, nil)

	updated, err := svc.Update(ctx, ids[0], &item.Item{ID: 12345, Name: "renamed", Status: "Waiting"})
	require.NoError(t, err)
	assert.Equal(t, ids[0], updated.ID)
	assert.Equal(t, "renamed", updated.Name)

	_, err = svc.Update(ctx, 404, &item.Item{Name: "x"})
	assert.True(t, errors.IsNotFound(err))

	n, err := store.FindAllIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, n, 1, "更新不存在的 ID 不应创建记录")
}

func TestItemService_Delete(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ids := storetest.Seed(t, store, 1)
	svc := NewItemService(store, &stubRunner{}, nil)

	deleted, err := svc.Delete(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(ctx, ids[0])
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestItemService_ProcessAllPublishes(t *testing.T) {
	ctx := context.Background()
	pub := msgmemory.NewPublisher()

	var got []messaging.IMessage
	pub.Subscribe(EventItemsProcessed, func(ctx context.Context, msg messaging.IMessage) error {
		got = append(got, msg)
		return nil
	})

	res := &processing.Result{
		RunID: "run-1",
		Items: []*item.Item{{ID: 1, Status: item.StatusProcessed}, {ID: 3, Status: item.StatusProcessed}},
	}
	svc := NewItemService(memory.NewStore(), &stubRunner{res: res}, pub)

	out, err := svc.ProcessAll(ctx)
	require.NoError(t, err)
	assert.Same(t, res, out)

	require.Len(t, got, 1)
	payload := got[0].GetPayload().(ItemsProcessed)
	assert.Equal(t, "run-1", payload.RunID)
	assert.Equal(t, 2, payload.Processed)
	assert.Equal(t, []int64{1, 3}, payload.ItemIDs)
	assert.Equal(t, "run-1", got[0].GetMetadata()["run_id"])
}

func TestItemService_ProcessAllFailureDoesNotPublish(t *testing.T) {
	pub := msgmemory.NewPublisher()
	published := false
	pub.Subscribe(EventItemsProcessed, func(ctx context.Context, msg messaging.IMessage) error {
		published = true
		return nil
	})

	cause := errors.NewError(errors.ErrCodeProcessing, "boom")
	svc := NewItemService(memory.NewStore(), &stubRunner{err: cause}, pub)

	res, err := svc.ProcessAll(context.Background())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, cause)
	assert.False(t, published)
}

func TestItemService_PublishFailureIsNotFatal(t *testing.T) {
	logging.SetLogger(logging.NewNoopLogger())
	svc := NewItemService(memory.NewStore(), &stubRunner{res: &processing.Result{RunID: "r"}}, failingPublisher{})

	res, err := svc.ProcessAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r", res.RunID)
}

func TestItemService_Seed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewItemService(store, &stubRunner{}, nil)

	saved, err := svc.Seed(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, saved, 5)
	assert.Equal(t, 5, store.Len())

	_, err = svc.Seed(ctx, 0)
	assert.True(t, errors.IsValidation(err))
}

func TestItemService_Health(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, NewItemService(memory.NewStore(), &stubRunner{}, nil).Health(ctx))

	err := NewItemService(pingFailStore{memory.NewStore()}, &stubRunner{}, nil).Health(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeServiceUnavailable, errors.GetErrorCode(err))
}

func TestItemService_StoreFailuresBecomeDatabaseErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewItemService(brokenStore{memory.NewStore()}, &stubRunner{}, nil)

	_, err := svc.FindAll(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDatabase, errors.GetErrorCode(err))
	assert.ErrorIs(t, err, repository.ErrRepositoryFailed)

	_, err = svc.Create(ctx, &item.Item{Name: "x", Status: "NEW"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDatabase, errors.GetErrorCode(err))
	assert.Contains(t, err.Error(), "create item")
	assert.Contains(t, err.Error(), "database is locked")

	_, err = svc.FindByID(ctx, 404)
	assert.True(t, errors.IsNotFound(err))
}
