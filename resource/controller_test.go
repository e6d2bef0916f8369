package resource

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Workers(t *testing.T) {
	c := NewController(Config{MaxExportWorkers: 2})

	require.NoError(t, c.AcquireWorker(context.Background()))
	require.NoError(t, c.AcquireWorker(context.Background()))

	assert.False(t, c.TryAcquireWorker())

	// A blocked acquire honors context cancellation.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := c.AcquireWorker(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	c.ReleaseWorker()
	assert.True(t, c.TryAcquireWorker())
}

func TestController_DefaultsToOneWorker(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireWorker(context.Background()))
	assert.False(t, c.TryAcquireWorker())
}

func TestController_NilEnforcesNothing(t *testing.T) {
	var c *Controller

	require.NoError(t, c.AcquireWorker(context.Background()))
	assert.True(t, c.TryAcquireWorker())
	c.ReleaseWorker()
	require.NoError(t, c.AcquireIO(context.Background(), 1<<30))
}

func TestController_UnlimitedIO(t *testing.T) {
	c := NewController(Config{})
	require.NoError(t, c.AcquireIO(context.Background(), 1<<30))
}

func TestRateLimitedWriter(t *testing.T) {
	// A tiny limit with a large first burst: the first write passes, the
	// second blocks past the context deadline.
	c := NewController(Config{IOLimitBytesPerSec: 8})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	w := NewRateLimitedWriter(ctx, &buf, c)

	n, err := w.Write([]byte("12345678"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	_, err = w.Write([]byte("12345678"))
	require.Error(t, err)
	assert.Equal(t, "12345678", buf.String())
}

func TestRateLimitedReader(t *testing.T) {
	c := NewController(Config{})
	r := NewRateLimitedReader(context.Background(), bytes.NewReader([]byte("data")), c)

	p := make([]byte, 4)
	n, err := r.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte("data"), p)
}
