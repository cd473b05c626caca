package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemhub/data/store/storetest"
	"itemhub/domain/item"
)

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) item.Store { return NewStore() })
}

func TestStore_SaveWithExplicitIDAdvancesSequence(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.Save(ctx, &item.Item{ID: 10, Name: "imported"})
	require.NoError(t, err)

	next, err := s.Save(ctx, &item.Item{Name: "fresh"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), next.ID)
	assert.Equal(t, 2, s.Len())
}

func TestStore_RejectsNegativeID(t *testing.T) {
	_, err := NewStore().Save(context.Background(), &item.Item{ID: -1})
	assert.Error(t, err)
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewStore()
	_, err := s.FindAllIDs(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Ping(ctx), context.Canceled)
}
