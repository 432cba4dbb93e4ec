package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/handlevet/handlevet/internal/config"
)

func TestBuildLibsqlDSN(t *testing.T) {
	t.Run("URLUsesRawValue", func(t *testing.T) {
		cfg := config.StoreConfig{
			URL:       "libsql://example.turso.io",
			AuthToken: "token123",
		}

		dsn, err := buildLibsqlDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, "libsql://example.turso.io?authToken=token123", dsn)
	})

	t.Run("URLWithExistingQuery", func(t *testing.T) {
		cfg := config.StoreConfig{
			URL:       "libsql://example.turso.io?foo=bar",
			AuthToken: "token123",
		}

		dsn, err := buildLibsqlDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, "libsql://example.turso.io?authToken=token123&foo=bar", dsn)
	})

	t.Run("URLKeepsExistingToken", func(t *testing.T) {
		cfg := config.StoreConfig{
			URL:       "libsql://example.turso.io?authToken=original",
			AuthToken: "other",
		}

		dsn, err := buildLibsqlDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, "libsql://example.turso.io?authToken=original", dsn)
	})

	t.Run("PathWithFilePrefix", func(t *testing.T) {
		cfg := config.StoreConfig{Path: "file:./handlevet.db"}

		dsn, err := buildLibsqlDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, "file:./handlevet.db", dsn)
	})

	t.Run("PlainPathGainsFilePrefixAndDirectory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data", "handlevet.db")
		cfg := config.StoreConfig{Path: path}

		dsn, err := buildLibsqlDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, "file:"+filepath.Clean(path), dsn)

		info, err := os.Stat(filepath.Dir(path))
		require.NoError(t, err)
		require.True(t, info.IsDir())
	})

	t.Run("PathMissing", func(t *testing.T) {
		cfg := config.StoreConfig{}

		_, err := buildLibsqlDSN(cfg)
		require.Error(t, err)
	})

	t.Run("MemoryPath", func(t *testing.T) {
		cfg := config.StoreConfig{Path: ":memory:"}

		dsn, err := buildLibsqlDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, ":memory:", dsn)
	})
}

func TestIsLocalDSN(t *testing.T) {
	require.True(t, isLocalDSN(":memory:"))
	require.True(t, isLocalDSN("file:./handlevet.db"))
	require.False(t, isLocalDSN("libsql://example.turso.io"))
}

func TestNilStoreIsSafe(t *testing.T) {
	var s *Store

	require.NoError(t, s.Close())
	require.Empty(t, s.Driver())

	_, err := s.FindByNickname(context.Background(), "any-name")
	require.Error(t, err)
	_, err = s.GetProfile(context.Background(), "id")
	require.Error(t, err)
	require.Error(t, s.Migrate(context.Background()))
}
