package migrations

import (
	"github.com/tiffinbox/tiffin/app/models"
	"github.com/tiffinbox/tiffin/pkg/migration"
)

func init() {
	migration.Register("20260101000000_create_users_table", table{&models.User{}, "users"})
	migration.Register("20260101000100_create_addresses_table", table{&models.Address{}, "addresses"})
	migration.Register("20260101000200_create_restaurants_table", table{&models.Restaurant{}, "restaurants"})
	migration.Register("20260101000300_create_menus_table", table{&models.Menu{}, "menus"})
	migration.Register("20260101000400_create_menu_items_table", table{&models.MenuItem{}, "menu_items"})
	migration.Register("20260101000500_create_orders_table", table{&models.Order{}, "orders"})
	migration.Register("20260101000600_create_order_items_table", table{&models.OrderItem{}, "order_items"})
	migration.Register("20260101000700_create_payments_table", table{&models.Payment{}, "payments"})
	migration.Register("20260101000800_create_reviews_table", table{&models.Review{}, "reviews"})
}
