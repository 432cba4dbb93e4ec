//go:build cgo

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/handlevet/handlevet/internal/config"
)

func TestOpenMemoryStore(t *testing.T) {
	ctx := context.Background()
	cfg := config.StoreConfig{
		Driver: "libsql",
		Path:   ":memory:",
	}

	store, err := Open(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, store)
	require.Equal(t, "libsql", store.Driver())
	require.NoError(t, store.Close())
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{
		Driver: "postgres",
		Path:   ":memory:",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported store driver")
}

func TestMigrateStampsSchemaVersion(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	defer store.Close() // nolint:errcheck // test cleanup

	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx), "migration must be idempotent")

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, schemaVersion, version)
}
