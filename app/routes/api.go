// Package routes binds the controllers to the /api route table.
package routes

import (
	"github.com/tiffinbox/tiffin/app/controllers"
	"github.com/tiffinbox/tiffin/pkg/auth"
	"github.com/tiffinbox/tiffin/pkg/ctx"
	"github.com/tiffinbox/tiffin/pkg/middleware"
	"github.com/tiffinbox/tiffin/pkg/rbac"
	"github.com/tiffinbox/tiffin/pkg/router"
)

// Handlers is everything RegisterAPI mounts.
type Handlers struct {
	Lookup      middleware.UserLookup
	Auth        *controllers.AuthController
	Restaurants *controllers.RestaurantController
	Menus       *controllers.MenuController
	Orders      *controllers.OrderController
	Payments    *controllers.PaymentController
	Reviews     *controllers.ReviewController
	Analytics   *controllers.AnalyticsController
}

func RegisterAPI(r *router.Router, h Handlers) {
	w := ctx.Wrap

	api := r.Group("/api")
	user := api.Group("", middleware.Authenticate(h.Lookup))
	owner := user.Group("", rbac.HasRole(auth.RoleOwner, auth.RoleAdmin))
	admin := user.Group("", rbac.Admin)

	// accounts
	api.Post("/sign-up", "auth.signup", w(h.Auth.SignUp))
	api.Post("/activate-user", "auth.activate", w(h.Auth.Activate))
	api.Post("/sign-in", "auth.signin", w(h.Auth.SignIn))
	api.Get("/sign-out", "auth.signout", w(h.Auth.SignOut), middleware.OptionalAuthenticate(h.Lookup))
	api.Get("/refresh-token", "auth.refresh", w(h.Auth.Refresh))
	api.Post("/forget-password", "auth.forget", w(h.Auth.ForgetPassword))
	api.Post("/reset-password", "auth.reset", w(h.Auth.ResetPassword))
	user.Get("/user", "users.me", w(h.Auth.Me))
	user.Put("/update-password", "users.password", w(h.Auth.UpdatePassword))
	user.Put("/update-user", "users.update", w(h.Auth.UpdateUser))
	admin.Get("/all-users", "users.index", w(h.Auth.AllUsers))
	user.Post("/create-address", "addresses.store", w(h.Auth.CreateAddress))
	user.Get("/addresses", "addresses.index", w(h.Auth.Addresses))

	// restaurants
	user.Post("/create-restaurant", "restaurants.store", w(h.Restaurants.Create))
	api.Get("/restaurant/{restaurant_id}", "restaurants.show", w(h.Restaurants.Show))
	owner.Put("/restaurant/{restaurant_id}", "restaurants.update", w(h.Restaurants.Update))
	owner.Delete("/restaurant/{restaurant_id}", "restaurants.destroy", w(h.Restaurants.Delete))
	owner.Put("/address/{address_id}", "restaurants.address", w(h.Restaurants.UpdateAddress))
	api.Get("/restaurants", "restaurants.search", w(h.Restaurants.Search))
	admin.Get("/all-restaurants", "restaurants.index", w(h.Restaurants.All))

	// menus
	owner.Post("/{restaurant_id}/create-menu", "menus.store", w(h.Menus.Create))
	api.Get("/{restaurant_id}/menu", "menus.index", w(h.Menus.Index))
	owner.Put("/{menu_id}/menu", "menus.update", w(h.Menus.Update))
	owner.Delete("/{menu_id}/menu", "menus.destroy", w(h.Menus.Delete))
	owner.Post("/{menu_id}/add-item", "items.store", w(h.Menus.AddItem))
	api.Get("/menu-item/{menu_item_id}", "items.show", w(h.Menus.ShowItem))
	owner.Put("/menu-item/{menu_item_id}", "items.update", w(h.Menus.UpdateItem))
	owner.Delete("/menu-item/{menu_item_id}", "items.destroy", w(h.Menus.DeleteItem))

	// orders
	user.Post("/{restaurant_id}/create-order", "orders.store", w(h.Orders.Create))
	user.Post("/{order_id}/status", "orders.status", w(h.Orders.UpdateStatus))
	user.Get("/order/{order_id}", "orders.show", w(h.Orders.Show))
	user.Get("/orders", "orders.mine", w(h.Orders.Mine))
	owner.Get("/{restaurant_id}/orders", "orders.restaurant", w(h.Orders.ForRestaurant))

	// payments
	user.Post("/create-payment", "payments.store", w(h.Payments.Create))
	user.Post("/verify-payment", "payments.verify", w(h.Payments.Verify))

	// reviews
	user.Post("/create-review", "reviews.store", w(h.Reviews.Create))
	user.Put("/review", "reviews.update", w(h.Reviews.Update))
	user.Delete("/review", "reviews.destroy", w(h.Reviews.Delete))
	api.Get("/review", "reviews.index", w(h.Reviews.Index))

	// analytics
	admin.Get("/user-analytic", "analytics.users", w(h.Analytics.Users))
	owner.Get("/restaurant-order-analytic/{id}", "analytics.orders", w(h.Analytics.Orders))
	owner.Get("/restaurant-sale-analytic/{id}", "analytics.sales", w(h.Analytics.Sales))
	owner.Get("/restaurant-order-analytics-all/{id}", "analytics.summary", w(h.Analytics.Summary))
}
