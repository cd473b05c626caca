package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemhub/config"
	"itemhub/data/store/cached"
	"itemhub/data/store/sqlstore"
	"itemhub/domain/item"
	"itemhub/logging"
	"itemhub/messaging"
	msgmem "itemhub/messaging/memory"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Processor.Delay = 0
	cfg.Processor.Workers = 4
	return cfg
}

func newApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, logging.NewNoopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.NoError(t, a.StartPool())
	return a
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(config.LoggingConfig{Format: "json", Level: "warn"}, &buf)
	l.Info(context.Background(), "hidden")
	l.Warn(context.Background(), "shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	assert.NotNil(t, NewLogger(config.LoggingConfig{Format: "console"}, &buf))
	assert.NotNil(t, NewLogger(config.LoggingConfig{Format: "std"}, nil))
}

func TestApp_SeedAndProcess(t *testing.T) {
	for _, driver := range []string{config.StoreMemory, config.StoreSQLite} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig()
			cfg.Store.Driver = driver
			cfg.Store.DSN = "file::memory:"
			a := newApp(t, cfg)

			seeded, err := a.Service.Seed(context.Background(), 5)
			require.NoError(t, err)
			require.Len(t, seeded, 5)

			res, err := a.Service.ProcessAll(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 5, res.Processed())
			for _, it := range res.Items {
				assert.Equal(t, item.StatusProcessed, it.Status)
			}
		})
	}
}

func TestApp_SQLiteStoreWired(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Driver = config.StoreSQLite
	cfg.Store.DSN = "file::memory:"
	a := newApp(t, cfg)
	_, ok := a.Store.(*sqlstore.Store)
	assert.True(t, ok)
	require.NoError(t, a.Service.Health(context.Background()))
}

func TestApp_CacheWrapsStore(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Cache.Enabled = true
	a := newApp(t, cfg)

	cs, ok := a.Store.(*cached.Store)
	require.True(t, ok)

	_, err := a.Service.Seed(context.Background(), 1)
	require.NoError(t, err)
	_, err = a.Service.FindByID(context.Background(), 1)
	require.NoError(t, err)
	_, err = a.Service.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cs.Stats().Hits, int64(1))
}

func TestApp_MemoryEvents(t *testing.T) {
	cfg := testConfig()
	cfg.Events.Driver = config.EventsMemory
	a := newApp(t, cfg)

	pub, ok := a.Publisher.(*msgmem.Publisher)
	require.True(t, ok)
	got := make(chan messaging.IMessage, 1)
	pub.Subscribe("items.processed", func(_ context.Context, msg messaging.IMessage) error {
		got <- msg
		return nil
	})

	_, err := a.Service.Seed(context.Background(), 2)
	require.NoError(t, err)
	_, err = a.Service.ProcessAll(context.Background())
	require.NoError(t, err)

	select {
	case msg := <-got:
		assert.Equal(t, "items.processed", msg.GetType())
	case <-time.After(time.Second):
		t.Fatal("no notification published")
	}
}

func TestApp_HTTPServer(t *testing.T) {
	a := newApp(t, testConfig())
	srv, err := a.HTTPServer()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	comps := a.Components(srv)
	require.NotEmpty(t, comps)
	assert.Equal(t, "http", comps[len(comps)-1].Name())
	assert.Equal(t, "worker-pool", comps[len(comps)-2].Name())
}

func TestApp_BuildErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Driver = "mongo"
	_, err := New(context.Background(), cfg, logging.NewNoopLogger())
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Events.Driver = config.EventsNATS
	cfg.Events.URL = "nats://127.0.0.1:1"
	_, err = New(context.Background(), cfg, logging.NewNoopLogger())
	assert.Error(t, err)
}
