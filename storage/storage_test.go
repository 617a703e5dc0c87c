package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoucherKey(t *testing.T) {
	now := time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC)
	key := VoucherKey(42, "Transferencia.PDF", now)

	assert.True(t, strings.HasPrefix(key, "comprobantes/42/2025/03/"), key)
	assert.True(t, strings.HasSuffix(key, ".pdf"), key)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentType("JPG"))
	assert.Equal(t, "application/pdf", ContentType("pdf"))
	assert.Equal(t, "application/octet-stream", ContentType("exe"))
}

func TestKeyFromURL(t *testing.T) {
	assert.Equal(t, "comprobantes/1/a.png", KeyFromURL("https://b.s3.us-east-1.amazonaws.com/comprobantes/1/a.png"))
	assert.Equal(t, "", KeyFromURL("https://example.com/a.png"))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	url, err := store.Put(ctx, "comprobantes/1/x.png", []byte("data"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	body, ok := store.Get(url)
	require.True(t, ok)
	assert.Equal(t, "data", string(body))

	require.NoError(t, store.Delete(ctx, url))
	assert.Equal(t, 0, store.Len())
	assert.Error(t, store.Delete(ctx, url))
}
