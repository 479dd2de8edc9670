package cart

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/config"
)

func TestOpenRepository(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		cfg  config.CartStoreConfig
		want interface{}
	}{
		{"memory", config.CartStoreConfig{Driver: config.CartStoreMemory}, &MemoryRepository{}},
		{"sqlite", config.CartStoreConfig{Driver: config.CartStoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "carts.db")}, &SQLiteRepository{}},
		{"redis", config.CartStoreConfig{Driver: config.CartStoreRedis, RedisAddr: mr.Addr(), SessionTTL: DefaultSessionTTL}, &RedisRepository{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, closeFn, err := OpenRepository(context.Background(), tt.cfg)
			require.NoError(t, err)
			defer closeFn()

			assert.IsType(t, tt.want, repo)

			_, err = repo.Load(context.Background(), "nobody")
			assert.ErrorIs(t, err, ErrSnapshotNotFound)
		})
	}
}

func TestOpenRepository_Errors(t *testing.T) {
	_, _, err := OpenRepository(context.Background(), config.CartStoreConfig{Driver: "mongo"})
	assert.Error(t, err)

	_, _, err = OpenRepository(context.Background(), config.CartStoreConfig{Driver: config.CartStoreRedis, RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}
