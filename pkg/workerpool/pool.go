// Package workerpool provides a bounded goroutine pool with backpressure.
//
// Event listeners run here so a burst of orders cannot spawn an unbounded
// number of broker publishes or mail dispatches. When every worker is busy
// and the buffer is full, Submit returns ErrPoolFull immediately and the
// caller decides whether to wait, drop or run inline.
//
//	pool := workerpool.New(8)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(publish); errors.Is(err, workerpool.ErrPoolFull) {
//	    publish()
//	}
package workerpool

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/tiffinbox/tiffin/pkg/logger"
)

var ErrPoolFull = errors.New("workerpool: pool is full")

var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	size  int
	tasks chan func()
	wg    sync.WaitGroup

	// mu guards closed so a Submit racing Shutdown never sends on a closed
	// channel.
	mu     sync.RWMutex
	closed bool
}

// New starts size workers. The task buffer holds twice that many tasks.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		size:  size,
		tasks: make(chan func(), size*2),
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}

	return p
}

// Size is the number of workers.
func (p *Pool) Size() int { return p.size }

// Pending is the number of buffered tasks not yet picked up.
func (p *Pool) Pending() int { return len(p.tasks) }

// Submit enqueues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait blocks until a buffer slot is free.
func (p *Pool) SubmitWait(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}
	p.tasks <- task
	return nil
}

// Shutdown stops accepting tasks and waits for the buffered ones to finish.
// It is safe to call more than once.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		run(task)
	}
}

func run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	task()
}
