package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	_, err := kv.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound)

	value := []byte(`[]`)
	require.NoError(t, kv.Set(ctx, "cart", value))
	value[0] = 'x'

	got, err := kv.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got), "stored value must not alias the caller's slice")

	require.NoError(t, kv.Delete(ctx, "cart"))
	_, err = kv.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound)
}
