package app

import (
	"context"
	"net/http"

	"github.com/tiffinbox/tiffin/config"
	"github.com/tiffinbox/tiffin/internal/server"
	"github.com/tiffinbox/tiffin/pkg/logger"
	"github.com/tiffinbox/tiffin/pkg/queue"
)

// Serve starts the queue workers and the scheduler, then serves handler
// until ctx is cancelled. Shutdown order: the HTTP server drains, then the
// scheduler and workers stop. The caller closes the Runtime afterwards.
func (rt *Runtime) Serve(ctx context.Context, handler http.Handler) error {
	bgCtx, stop := context.WithCancel(context.Background())
	waitWorkers := queue.StartWorkers(bgCtx, config.QueueWorkers())
	waitScheduler := rt.Scheduler.Start(bgCtx)
	for _, task := range rt.Scheduler.List() {
		logger.Info("schedule: registered", "task", task)
	}

	err := server.Start(ctx, ":"+config.AppPort(), handler)

	stop()
	waitScheduler()
	waitWorkers()
	return err
}
