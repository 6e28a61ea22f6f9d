// Package providers builds the services, listeners and controllers from the
// runtime's shared resources and hands the route table to the router.
package providers

import (
	"time"

	"github.com/tiffinbox/tiffin/app/controllers"
	"github.com/tiffinbox/tiffin/app/listeners"
	"github.com/tiffinbox/tiffin/app/routes"
	"github.com/tiffinbox/tiffin/app/services"
	"github.com/tiffinbox/tiffin/pkg/broker"
	"github.com/tiffinbox/tiffin/pkg/event"
	"github.com/tiffinbox/tiffin/pkg/razorpay"
	"github.com/tiffinbox/tiffin/pkg/router"
	"github.com/tiffinbox/tiffin/pkg/schedule"
	"gorm.io/gorm"
)

// Deps are the resources Build wires in. Zero values fall back to the
// package defaults: event.Default, broker.Nop, queue.Dispatch and the
// configured gateway.
type Deps struct {
	DB        *gorm.DB
	Bus       *event.Bus
	Publisher broker.Publisher
	Gateway   razorpay.Gateway
	Secret    string
	Dispatch  services.Dispatcher
}

// Container holds every service the API and the CLI use.
type Container struct {
	Auth        *services.AuthService
	Restaurants *services.RestaurantService
	Menus       *services.MenuService
	Orders      *services.OrderService
	Canceller   *services.OrderCanceller
	Payments    *services.PaymentService
	Reviews     *services.ReviewService
	Analytics   *services.AnalyticsService
}

func Build(d Deps) *Container {
	if d.Bus == nil {
		d.Bus = event.Default()
	}
	if d.Gateway == nil {
		d.Gateway = razorpay.FromConfig()
	}

	restaurants := services.NewRestaurantService(d.DB)
	c := &Container{
		Auth:        services.NewAuthService(d.DB, d.Dispatch),
		Restaurants: restaurants,
		Menus:       services.NewMenuService(d.DB, restaurants),
		Orders:      services.NewOrderService(d.DB, d.Bus),
		Canceller:   services.NewOrderCanceller(d.DB, d.Bus),
		Payments:    services.NewPaymentService(d.DB, d.Gateway, d.Secret),
		Reviews:     services.NewReviewService(d.DB),
		Analytics:   services.NewAnalyticsService(d.DB),
	}

	listeners.NewOrders(d.DB, d.Publisher, d.Dispatch).Register(d.Bus)
	return c
}

// Schedule registers the background tasks on s.
func (c *Container) Schedule(s *schedule.Scheduler, sweepEvery time.Duration) {
	c.Canceller.Schedule(s, sweepEvery)
}

// Routes returns the callback that mounts the /api table.
func (c *Container) Routes() func(*router.Router) {
	h := routes.Handlers{
		Lookup:      c.Auth.Role,
		Auth:        controllers.NewAuthController(c.Auth),
		Restaurants: controllers.NewRestaurantController(c.Restaurants),
		Menus:       controllers.NewMenuController(c.Menus),
		Orders:      controllers.NewOrderController(c.Orders),
		Payments:    controllers.NewPaymentController(c.Payments),
		Reviews:     controllers.NewReviewController(c.Reviews),
		Analytics:   controllers.NewAnalyticsController(c.Analytics),
	}
	return func(r *router.Router) { routes.RegisterAPI(r, h) }
}
