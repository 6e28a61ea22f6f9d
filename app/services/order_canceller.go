package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tiffinbox/tiffin/app/events"
	"github.com/tiffinbox/tiffin/app/models"
	"github.com/tiffinbox/tiffin/app/repositories"
	"github.com/tiffinbox/tiffin/pkg/event"
	"github.com/tiffinbox/tiffin/pkg/logger"
	"github.com/tiffinbox/tiffin/pkg/metrics"
	"github.com/tiffinbox/tiffin/pkg/schedule"
	"gorm.io/gorm"
)

// SweepTaskName is the scheduler entry that runs the auto-cancel sweep.
const SweepTaskName = "orders:auto-cancel"

const sweepBatch = 500

// OrderCanceller owns the auto-cancel deadline. The deadline lives in
// orders.cancel_at, so it survives restarts and every instance may sweep.
type OrderCanceller struct {
	orders *repositories.OrderRepository
	bus    *event.Bus
}

func NewOrderCanceller(db *gorm.DB, bus *event.Bus) *OrderCanceller {
	return &OrderCanceller{orders: repositories.NewOrderRepository(db), bus: busOr(bus)}
}

// Sweep cancels every Pending order whose deadline is at or before now and
// returns how many it cancelled. Each order is cancelled by its own
// conditional update, and order.auto_cancelled fires only for the orders
// this sweep actually changed.
func (c *OrderCanceller) Sweep(ctx context.Context, now time.Time) (int64, error) {
	now = now.UTC()
	var total int64
	for {
		due, err := c.orders.DueForCancel(ctx, now, sweepBatch)
		if err != nil {
			return total, fmt.Errorf("find expired orders: %w", err)
		}

		var n int64
		for _, o := range due {
			ok, err := c.orders.CancelIfDue(ctx, o.ID, now)
			if err != nil {
				return total + n, fmt.Errorf("cancel order %d: %w", o.ID, err)
			}
			if !ok {
				continue
			}
			n++
			metrics.OrdersAutoCancelled.Inc()
			o.OrderStatus = models.StatusCancelled
			c.bus.Fire(ctx, events.OrderAutoCancelled, orderEvent(o, models.StatusPending))
		}
		total += n
		if n > 0 {
			logger.WithCtx(ctx).Info("orders auto-cancelled", "count", n)
		}
		if len(due) < sweepBatch {
			return total, nil
		}
	}
}

// Schedule registers the sweep on s to run every interval. Overlapping runs
// are skipped.
func (c *OrderCanceller) Schedule(s *schedule.Scheduler, interval time.Duration) {
	s.Duration(interval).WithoutOverlapping().Name(SweepTaskName).Run(func(ctx context.Context) error {
		_, err := c.Sweep(ctx, time.Now())
		return err
	})
}
