// Package listeners reacts to order events after their transaction commits:
// it forwards them to the message broker, counts them and mails customers.
package listeners

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tiffinbox/tiffin/app/events"
	"github.com/tiffinbox/tiffin/app/jobs"
	"github.com/tiffinbox/tiffin/app/repositories"
	"github.com/tiffinbox/tiffin/pkg/broker"
	"github.com/tiffinbox/tiffin/pkg/event"
	"github.com/tiffinbox/tiffin/pkg/logger"
	"github.com/tiffinbox/tiffin/pkg/metrics"
	"github.com/tiffinbox/tiffin/pkg/queue"
	"gorm.io/gorm"
)

// Orders holds what the order listeners need.
type Orders struct {
	publisher   broker.Publisher
	users       *repositories.UserRepository
	restaurants *repositories.RestaurantRepository
	dispatch    func(queue.Job) error
}

func NewOrders(db *gorm.DB, publisher broker.Publisher, dispatch func(queue.Job) error) *Orders {
	if publisher == nil {
		publisher = broker.Nop{}
	}
	if dispatch == nil {
		dispatch = queue.Dispatch
	}
	return &Orders{
		publisher:   publisher,
		users:       repositories.NewUserRepository(db),
		restaurants: repositories.NewRestaurantRepository(db),
		dispatch:    dispatch,
	}
}

// Register subscribes every order listener on bus.
func (l *Orders) Register(bus *event.Bus) {
	bus.Listen(events.OrderCreated, l.created)
	bus.Listen(events.OrderStatusChanged, l.statusChanged)
	bus.Listen(events.OrderAutoCancelled, l.autoCancelled)
}

func (l *Orders) created(ctx context.Context, payload any) error {
	o, err := orderPayload(payload)
	if err != nil {
		return err
	}
	metrics.OrdersCreated.Inc()
	return l.publish(ctx, events.OrderCreated, o)
}

func (l *Orders) statusChanged(ctx context.Context, payload any) error {
	o, err := orderPayload(payload)
	if err != nil {
		return err
	}
	metrics.OrderStatusChanges.WithLabelValues(o.Status).Inc()
	pubErr := l.publish(ctx, events.OrderStatusChanged, o)
	if err := l.notify(ctx, o); err != nil {
		return err
	}
	return pubErr
}

func (l *Orders) autoCancelled(ctx context.Context, payload any) error {
	o, err := orderPayload(payload)
	if err != nil {
		return err
	}
	metrics.OrderStatusChanges.WithLabelValues(o.Status).Inc()
	pubErr := l.publish(ctx, events.OrderAutoCancelled, o)
	if err := l.notify(ctx, o); err != nil {
		return err
	}
	return pubErr
}

func (l *Orders) publish(ctx context.Context, name string, o events.Order) error {
	if err := l.publisher.Publish(ctx, name, o); err != nil {
		return fmt.Errorf("publish %s for order %d: %w", name, o.OrderID, err)
	}
	return nil
}

// notify queues the status mail for the order's customer.
func (l *Orders) notify(ctx context.Context, o events.Order) error {
	user, err := l.users.FindByID(ctx, o.UserID)
	if err != nil {
		return fmt.Errorf("order %d customer: %w", o.OrderID, err)
	}
	restaurant := ""
	if rest, err := l.restaurants.FindByID(ctx, o.RestaurantID); err == nil {
		restaurant = rest.Name
	} else {
		logger.WithCtx(ctx).Warn("order mail without restaurant name", "order_id", o.OrderID, "error", err)
	}

	mail := jobs.OrderStatus(user.Email, user.Name, strconv.FormatUint(o.OrderID, 10), restaurant, o.Status, o.TotalAmount.StringFixed(2))
	if err := l.dispatch(mail); err != nil {
		return fmt.Errorf("queue order mail: %w", err)
	}
	return nil
}

func orderPayload(payload any) (events.Order, error) {
	switch o := payload.(type) {
	case events.Order:
		return o, nil
	case *events.Order:
		return *o, nil
	}
	return events.Order{}, fmt.Errorf("unexpected order event payload %T", payload)
}
