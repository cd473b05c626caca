package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	core "itemhub/data/db"
	"itemhub/data/db/basic"
	"itemhub/data/store/storetest"
	"itemhub/domain/item"
	"itemhub/domain/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	db, err := basic.New(ctx, core.DBConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.ExecDDL(ctx, SchemaSQLite))
	return NewStore(db)
}

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) item.Store { return newTestStore(t) })
}

func TestStore_SaveWithExplicitIDUpserts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Save(ctx, &item.Item{ID: 42, Name: "imported", Status: "NEW"})
	require.NoError(t, err)

	_, err = s.Save(ctx, &item.Item{ID: 42, Name: "imported", Status: item.StatusProcessed})
	require.NoError(t, err)

	got, err := s.FindByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, item.StatusProcessed, got.Status)

	next, err := s.Save(ctx, &item.Item{Name: "fresh"})
	require.NoError(t, err)
	assert.Greater(t, next.ID, int64(42))
}

func TestStore_SaveAllIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	saved, err := s.SaveAll(ctx, []*item.Item{{Name: "a"}, {Name: "b"}})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.NotEqual(t, saved[0].ID, saved[1].ID)

	_, err = s.SaveAll(ctx, []*item.Item{{Name: "c"}, {ID: -1}})
	assert.ErrorIs(t, err, repository.ErrInvalidID)

	ids, err := s.FindAllIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 2, "失败的批次应整体回滚")
}

func TestStore_Ping(t *testing.T) {
	assert.NoError(t, newTestStore(t).Ping(context.Background()))
}

func TestStore_ErrorsWrapRepositoryFailed(t *testing.T) {
	ctx := context.Background()
	db, err := basic.New(ctx, core.DBConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	// 未建表
	_, err = NewStore(db).FindAllIDs(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrRepositoryFailed)
}
