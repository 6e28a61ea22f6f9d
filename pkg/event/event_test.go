package event_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiffinbox/tiffin/pkg/event"
	"github.com/tiffinbox/tiffin/pkg/workerpool"
)

type ctxKey struct{}

func TestFireRunsListenersOnPool(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Shutdown()
	bus := event.NewBus(pool)

	var wg sync.WaitGroup
	wg.Add(2)
	got := make(chan any, 2)
	for i := 0; i < 2; i++ {
		bus.Listen("order.created", func(_ context.Context, p any) error {
			defer wg.Done()
			got <- p
			return nil
		})
	}

	bus.Fire(context.Background(), "order.created", uint64(42))
	wg.Wait()
	close(got)

	for p := range got {
		assert.Equal(t, uint64(42), p)
	}
}

func TestFireKeepsValuesButNotCancellation(t *testing.T) {
	bus := event.NewBus(nil)
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "req-1"))
	cancel()

	var seen any
	var ctxErr error
	bus.Listen("order.status_changed", func(ctx context.Context, _ any) error {
		seen = ctx.Value(ctxKey{})
		ctxErr = ctx.Err()
		return nil
	})
	bus.Fire(ctx, "order.status_changed", nil)

	assert.Equal(t, "req-1", seen)
	assert.NoError(t, ctxErr)
}

func TestFireSyncReturnsFirstError(t *testing.T) {
	bus := event.NewBus(nil)
	boom := errors.New("broker down")
	calls := 0
	bus.Listen("x", func(context.Context, any) error { calls++; return boom })
	bus.Listen("x", func(context.Context, any) error { calls++; return nil })

	err := bus.FireSync(context.Background(), "x", nil)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestFireAfterPoolShutdownDoesNotPanic(t *testing.T) {
	pool := workerpool.New(1)
	pool.Shutdown()
	bus := event.NewBus(pool)

	called := make(chan struct{}, 1)
	bus.Listen("x", func(context.Context, any) error { called <- struct{}{}; return nil })
	bus.Fire(context.Background(), "x", nil)

	select {
	case <-called:
		t.Fatal("listener ran on a closed pool")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestDefaultBusFlush(t *testing.T) {
	prev := event.Default()
	defer event.SetDefault(prev)
	event.SetDefault(event.NewBus(nil))

	n := 0
	event.Listen("y", func(context.Context, any) error { n++; return nil })
	event.Fire(context.Background(), "y", nil)
	event.Flush()
	event.Fire(context.Background(), "y", nil)
	assert.Equal(t, 1, n)
}
