package closer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloser_LIFO(t *testing.T) {
	c := NewCloser(0)

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) Func {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	c.Add("postgres", record("postgres"))
	c.Add("redis", record("redis"))
	c.Add("http", record("http"))

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"http", "redis", "postgres"}, order)
}

func TestCloser_CollectsErrors(t *testing.T) {
	c := NewCloser(0)
	c.Add("redis", func(context.Context) error { return errors.New("conn reset") })
	c.Add("http", func(context.Context) error { return nil })

	err := c.Close(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis: conn reset")
}

func TestCloser_ForcedAfterTimeout(t *testing.T) {
	c := NewCloser(50 * time.Millisecond)

	var calls atomic.Int32
	c.Add("slow", func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			time.Sleep(100 * time.Millisecond)
			return nil
		}
		return errors.New("still busy")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown interrupted")
	assert.Contains(t, err.Error(), "[FORCED] slow: still busy")
}

func TestCloser_CloseOnce(t *testing.T) {
	c := NewCloser(0)
	calls := 0
	c.Add("once", func(context.Context) error { calls++; return nil })

	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, 1, calls)
}
