package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tiffinbox/tiffin/app/models"
	"github.com/tiffinbox/tiffin/app/requests"
	"github.com/tiffinbox/tiffin/app/services"
	_ "github.com/tiffinbox/tiffin/database/migrations"
	"github.com/tiffinbox/tiffin/pkg/apperr"
	"github.com/tiffinbox/tiffin/pkg/auth"
	"github.com/tiffinbox/tiffin/pkg/event"
	"github.com/tiffinbox/tiffin/pkg/queue"
	"github.com/tiffinbox/tiffin/pkg/testkit"
	"gorm.io/gorm"
)

// world is a restaurant with one menu of two items, its owner, a customer
// with a delivery address and a stranger.
type world struct {
	db         *gorm.DB
	bus        *event.Bus
	owner      models.User
	customer   models.User
	stranger   models.User
	restaurant models.Restaurant
	address    models.Address
	menu       models.Menu
	thali      models.MenuItem
	lassi      models.MenuItem
}

func newUser(t *testing.T, db *gorm.DB, name, email string) models.User {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	u := models.User{Name: name, Email: email, Password: hash, UserType: models.RoleCustomer}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	db := testkit.DB(t)
	w := &world{db: db, bus: event.NewBus(nil)}

	w.owner = newUser(t, db, "Asha", "asha@example.com")
	w.customer = newUser(t, db, "Ravi", "ravi@example.com")
	w.stranger = newUser(t, db, "Meera", "meera@example.com")

	restaurants := services.NewRestaurantService(db)
	rest, err := restaurants.Create(ctx, w.owner.ID, requests.CreateRestaurant{
		Name:         "Annapurna",
		Email:        "hello@annapurna.test",
		PhoneNumber:  "9800000000",
		OpeningHours: "09:00",
		ClosingHours: "22:00",
		Address:      requests.Address{Street: "12 MG Road", City: "Pune", State: "MH", PostalCode: "411001"},
	})
	require.NoError(t, err)
	w.restaurant = rest

	addr, err := services.NewAuthService(db, nopDispatch).CreateAddress(ctx, w.customer.ID, requests.Address{
		Street: "4 FC Road", City: "Pune", State: "MH", PostalCode: "411004",
	})
	require.NoError(t, err)
	w.address = addr

	menus := services.NewMenuService(db, restaurants)
	w.menu, err = menus.Create(ctx, rest.ID, w.owner.ID, requests.Menu{Name: "Lunch"})
	require.NoError(t, err)
	w.thali, err = menus.AddItem(ctx, w.menu.ID, w.owner.ID, requests.MenuItem{Name: "Thali", Price: decimal.NewFromInt(10)}, nil)
	require.NoError(t, err)
	w.lassi, err = menus.AddItem(ctx, w.menu.ID, w.owner.ID, requests.MenuItem{Name: "Lassi", Price: decimal.NewFromInt(5)}, nil)
	require.NoError(t, err)
	return w
}

// orderRequest asks for 3 thalis at 10 and 1 lassi at 5.
func (w *world) orderRequest() requests.CreateOrder {
	return requests.CreateOrder{
		TotalAmount:       decimal.NewFromInt(35),
		DeliveryAddressID: requests.ID(w.address.ID),
		OrderItems: []requests.OrderItem{
			{MenuItemID: requests.ID(w.thali.ID), Quantity: 3, Price: decimal.NewFromInt(10)},
			{MenuItemID: requests.ID(w.lassi.ID), Quantity: 1, Price: decimal.NewFromInt(5)},
		},
	}
}

func nopDispatch(queue.Job) error { return nil }

func statusOf(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return apperr.From(err).Status
}

func statusMessage(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return apperr.From(err).Message
}
