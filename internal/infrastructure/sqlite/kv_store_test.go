package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-inventario/internal/infrastructure/sqlite"
)

func openMemory(t *testing.T) *sqlite.KVStore {
	t.Helper()
	s, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestKVStore_SetGet(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "agro_products")
	require.NoError(t, err)
	assert.False(t, ok, "clave inexistente")

	require.NoError(t, s.Set(ctx, "agro_products", []byte(`[1]`)))
	require.NoError(t, s.Set(ctx, "agro_products", []byte(`[1,2]`)))

	v, ok, err := s.Get(ctx, "agro_products")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, string(v), "gana la última escritura")
}

func TestKVStore_KeysDelete(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	for _, k := range []string{"b", "a", "c"} {
		require.NoError(t, s.Set(ctx, k, []byte("1")))
	}

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	require.NoError(t, s.Delete(ctx, "a", "c", "zz"))
	keys, err = s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)

	require.NoError(t, s.Delete(ctx))
}
