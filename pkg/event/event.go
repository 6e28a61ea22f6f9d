// Package event is an in-process publish/subscribe bus for domain events
// such as "order.created". Listeners run on a bounded workerpool so the
// request that fired the event never waits on them.
package event

import (
	"context"
	"errors"
	"sync"

	"github.com/tiffinbox/tiffin/pkg/logger"
	"github.com/tiffinbox/tiffin/pkg/workerpool"
)

// Handler receives an event payload. A returned error is logged.
type Handler func(ctx context.Context, payload any) error

// Bus holds listeners by event name.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	pool     *workerpool.Pool
}

// NewBus returns a bus whose listeners run on pool. A nil pool runs them
// synchronously.
func NewBus(pool *workerpool.Pool) *Bus {
	return &Bus{handlers: map[string][]Handler{}, pool: pool}
}

// Listen registers h for name.
func (b *Bus) Listen(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Fire hands payload to every listener of name. The listeners get a context
// that keeps ctx's values but not its cancellation, since they usually
// outlive the request.
func (b *Bus) Fire(ctx context.Context, name string, payload any) {
	hs := b.listeners(name)
	if len(hs) == 0 {
		return
	}
	detached := context.WithoutCancel(ctx)

	for _, h := range hs {
		h := h
		task := func() { call(detached, name, h, payload) }
		if b.pool == nil {
			task()
			continue
		}
		err := b.pool.Submit(task)
		if errors.Is(err, workerpool.ErrPoolFull) {
			logger.WithCtx(ctx).Warn("event: pool full, running listener inline", "event", name)
			task()
		} else if err != nil {
			logger.WithCtx(ctx).Warn("event: dropped", "event", name, "error", err)
		}
	}
}

// FireSync runs every listener of name on the calling goroutine and returns
// the first error.
func (b *Bus) FireSync(ctx context.Context, name string, payload any) error {
	var first error
	for _, h := range b.listeners(name) {
		if err := h(ctx, payload); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Flush removes every listener.
func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string][]Handler{}
}

func (b *Bus) listeners(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Handler(nil), b.handlers[name]...)
}

func call(ctx context.Context, name string, h Handler, payload any) {
	if err := h(ctx, payload); err != nil {
		logger.WithCtx(ctx).Error("event listener failed", "event", name, "error", err)
	}
}

var (
	defaultMu  sync.RWMutex
	defaultBus = NewBus(nil)
)

// SetDefault replaces the process-wide bus used by Listen and Fire.
func SetDefault(b *Bus) {
	defaultMu.Lock()
	defaultBus = b
	defaultMu.Unlock()
}

// Default returns the process-wide bus.
func Default() *Bus {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultBus
}

func Listen(name string, h Handler) { Default().Listen(name, h) }

func Fire(ctx context.Context, name string, payload any) { Default().Fire(ctx, name, payload) }

func FireSync(ctx context.Context, name string, payload any) error {
	return Default().FireSync(ctx, name, payload)
}

func Flush() { Default().Flush() }
