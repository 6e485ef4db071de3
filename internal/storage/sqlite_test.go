package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycast-app/skycast/internal/storage"
)

func TestSQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "skycast.db")

	kv, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	defer kv.Close()

	_, found, err := kv.Get(ctx, "@weather_settings")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set(ctx, "@weather_settings", `{"units":"metric"}`))
	got, found, err := kv.Get(ctx, "@weather_settings")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"units":"metric"}`, got)

	require.NoError(t, kv.Set(ctx, "@weather_settings", `{"units":"imperial"}`))
	got, _, _ = kv.Get(ctx, "@weather_settings")
	assert.Equal(t, `{"units":"imperial"}`, got, "upsert replaces the value")

	require.NoError(t, kv.Delete(ctx, "@weather_settings"))
	_, found, err = kv.Get(ctx, "@weather_settings")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "skycast.db")

	kv, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "@weather_favorites", `[]`))
	require.NoError(t, kv.Close())

	reopened, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, found, err := reopened.Get(ctx, "@weather_favorites")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, got)
}
