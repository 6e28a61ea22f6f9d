package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tiffinbox/tiffin/app/providers"
	"github.com/tiffinbox/tiffin/config"
	"github.com/tiffinbox/tiffin/pkg/app"
	"github.com/tiffinbox/tiffin/pkg/event"
	"github.com/tiffinbox/tiffin/pkg/queue"
)

var queueWorkersFlag int

// tiffin queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process queued mail until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rt, err := app.Boot(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		workers := queueWorkersFlag
		if workers < 1 {
			workers = config.QueueWorkers()
		}
		wait := queue.StartWorkers(ctx, workers)
		<-ctx.Done()
		wait()
		return nil
	},
}

// tiffin schedule:run
var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Run the scheduler (order auto-cancel sweep) until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rt, err := app.Boot(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		c := providers.Build(providers.Deps{DB: rt.DB, Bus: rt.Bus, Publisher: rt.Publisher})
		c.Schedule(rt.Scheduler, config.OrderSweepInterval())
		for _, t := range rt.Scheduler.List() {
			fmt.Println("  •", t)
		}

		rt.Scheduler.Start(ctx)()
		return nil
	},
}

// tiffin orders:cancel-expired sends its status mail inline, since no
// worker may be running to drain the queue.
var cancelExpiredCmd = &cobra.Command{
	Use:   "orders:cancel-expired",
	Short: "Cancel every pending order past its deadline once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		rt, err := app.Boot(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		c := providers.Build(providers.Deps{
			DB:        rt.DB,
			Bus:       event.NewBus(nil),
			Publisher: rt.Publisher,
			Dispatch:  func(job queue.Job) error { return job.Handle(ctx) },
		})
		n, err := c.Canceller.Sweep(ctx, time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("Cancelled %d expired order(s).\n", n)
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 0, "Number of concurrent workers (default QUEUE_WORKERS)")
}
