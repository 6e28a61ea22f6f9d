// Package services holds the business rules behind every endpoint. Services
// return plain errors; *apperr.Error values carry the status the client
// sees, anything else becomes a 500.
package services

import (
	"github.com/tiffinbox/tiffin/pkg/event"
	"github.com/tiffinbox/tiffin/pkg/queue"
)

// Dispatcher queues a background job. queue.Dispatch satisfies it.
type Dispatcher func(job queue.Job) error

func dispatcherOr(d Dispatcher) Dispatcher {
	if d == nil {
		return queue.Dispatch
	}
	return d
}

func busOr(b *event.Bus) *event.Bus {
	if b == nil {
		return event.Default()
	}
	return b
}
