package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) *RistrettoCache {
	t.Helper()

	c, err := NewRistrettoCache(&RistrettoConfig{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return c.(*RistrettoCache)
}

func TestRistrettoCache_SetAndGet(t *testing.T) {
	c := newTestCache(t)

	admitted := c.Set("basefee:mainnet:RARIBLE_V2", int64(250), time.Hour)
	require.True(t, admitted)
	c.Wait()

	value, found := c.Get("basefee:mainnet:RARIBLE_V2")
	require.True(t, found)
	assert.Equal(t, int64(250), value)
}

func TestRistrettoCache_MissingKey(t *testing.T) {
	c := newTestCache(t)

	_, found := c.Get("basefee:unknown:SEAPORT_V1")
	assert.False(t, found)
}

func TestRistrettoCache_Delete(t *testing.T) {
	c := newTestCache(t)

	c.Set("basefee:polygon:LOOKSRARE", int64(200), time.Hour)
	c.Wait()

	_, found := c.Get("basefee:polygon:LOOKSRARE")
	require.True(t, found)

	c.Delete("basefee:polygon:LOOKSRARE")

	_, found = c.Get("basefee:polygon:LOOKSRARE")
	assert.False(t, found)
}

func TestRistrettoCache_TTLExpiry(t *testing.T) {
	c := newTestCache(t)

	c.Set("basefee:mainnet:SEAPORT_V1", int64(250), 200*time.Millisecond)
	c.Wait()

	_, found := c.Get("basefee:mainnet:SEAPORT_V1")
	require.True(t, found)

	time.Sleep(300 * time.Millisecond)

	_, found = c.Get("basefee:mainnet:SEAPORT_V1")
	assert.False(t, found)
}

func TestRistrettoCache_Clear(t *testing.T) {
	c := newTestCache(t)

	c.Set("key-1", int64(1), time.Hour)
	c.Set("key-2", int64(2), time.Hour)
	c.Wait()

	_, found1 := c.Get("key-1")
	_, found2 := c.Get("key-2")
	if !found1 || !found2 {
		t.Skip("ristretto admission dropped a key")
	}

	c.Clear()

	_, found1 = c.Get("key-1")
	_, found2 = c.Get("key-2")
	assert.False(t, found1)
	assert.False(t, found2)
}
