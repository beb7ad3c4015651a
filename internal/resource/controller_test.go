package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	// Test with limit
	c := NewController(Config{MemoryLimitBytes: 100})

	// Acquire 50
	err := c.AcquireMemory(50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), c.MemoryUsage())

	// Acquire 40
	err = c.AcquireMemory(40)
	require.NoError(t, err)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Acquire 20 (should fail - limit exceeded)
	err = c.AcquireMemory(20)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Release 50
	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	// Now Acquire 20 should succeed
	err = c.AcquireMemory(20)
	require.NoError(t, err)
	assert.Equal(t, int64(60), c.MemoryUsage())
	assert.Equal(t, int64(100), c.MemoryLimit())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 0})

	err := c.AcquireMemory(1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
	assert.Equal(t, int64(0), c.MemoryLimit())
}

func TestController_NilChecks(t *testing.T) {
	var c *Controller
	assert.NoError(t, c.AcquireMemory(10))
	c.ReleaseMemory(10) // Should not panic
	assert.Equal(t, int64(0), c.MemoryUsage())
	assert.NoError(t, c.AcquireUpload(context.Background()))
	assert.True(t, c.TryAcquireUpload())
	c.ReleaseUpload()
	assert.NoError(t, c.AcquireIO(context.Background(), 1<<30))
}

func TestController_Uploads(t *testing.T) {
	c := NewController(Config{MaxConcurrentUploads: 2})

	require.NoError(t, c.AcquireUpload(t.Context()))
	require.NoError(t, c.AcquireUpload(t.Context()))

	assert.False(t, c.TryAcquireUpload())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireUpload(ctx))

	c.ReleaseUpload()
	assert.True(t, c.TryAcquireUpload())
}

func TestController_IO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1000}) // 1KB/s
	ctx := context.Background()

	// Small acquire
	err := c.AcquireIO(ctx, 100)
	assert.NoError(t, err)

	// Larger than the burst is split rather than rejected.
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
	defer cancel()
	err = c.AcquireIO(ctx2, 5000)
	assert.Error(t, err) // would need ~4s of tokens

	// Unlimited
	c2 := NewController(Config{})
	err = c2.AcquireIO(ctx, 1000000)
	assert.NoError(t, err)
}
