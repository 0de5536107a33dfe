package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabtrack/internal/storage"
)

func setupTestDB(t *testing.T) (storage.Storage, string, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "test_tabtrack.db")
	store := NewSQLiteStore(dbPath)
	require.NoError(t, store.Init(context.Background()), "Failed to initialize test database")

	cleanup := func() {
		assert.NoError(t, store.Close(), "Failed to close test database")
	}
	return store, dbPath, cleanup
}

func TestSetAndGet(t *testing.T) {
	store, _, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := store.Set(ctx, map[string][]byte{
		"isTracking": []byte("true"),
		"todayTime":  []byte("1500"),
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, "isTracking", "todayTime", "missing")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "true", string(got["isTracking"]))
	assert.Equal(t, "1500", string(got["todayTime"]))
	_, ok := got["missing"]
	assert.False(t, ok)
}

func TestSetOverwrites(t *testing.T) {
	store, _, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, map[string][]byte{"todayTime": []byte("1")}))
	require.NoError(t, store.Set(ctx, map[string][]byte{"todayTime": []byte("2")}))

	got, err := store.Get(ctx, "todayTime")
	require.NoError(t, err)
	assert.Equal(t, "2", string(got["todayTime"]))
}

func TestGetNoKeys(t *testing.T) {
	store, _, cleanup := setupTestDB(t)
	defer cleanup()

	got, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSurvivesReopen(t *testing.T) {
	store, path, cleanup := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, map[string][]byte{"categories": []byte(`{"categories":[]}`)}))
	cleanup()

	reopened := NewSQLiteStore(path)
	require.NoError(t, reopened.Init(ctx))
	defer reopened.Close()

	got, err := reopened.Get(ctx, "categories")
	require.NoError(t, err)
	assert.Equal(t, `{"categories":[]}`, string(got["categories"]))
}

func TestCloseDB(t *testing.T) {
	store, _, cleanup := setupTestDB(t)
	cleanup()

	err := store.Set(context.Background(), map[string][]byte{"x": []byte("1")})
	assert.Error(t, err)
}

func TestSetWithCanceledContext(t *testing.T) {
	store, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := store.Set(ctx, map[string][]byte{"isTracking": []byte("true")})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "failed to begin state write")

	got, err := store.Get(context.Background(), "isTracking")
	require.NoError(t, err)
	assert.Empty(t, got)
}
