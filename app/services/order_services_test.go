package services_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiffinbox/tiffin/app/events"
	"github.com/tiffinbox/tiffin/app/models"
	"github.com/tiffinbox/tiffin/app/requests"
	"github.com/tiffinbox/tiffin/app/services"
	"github.com/tiffinbox/tiffin/config"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func clock(at time.Time) func() time.Time { return func() time.Time { return at } }

func (w *world) orders() *services.OrderService {
	return services.NewOrderService(w.db, w.bus).WithClock(clock(t0))
}

func (w *world) record(name string) *[]events.Order {
	var got []events.Order
	w.bus.Listen(name, func(_ context.Context, payload any) error {
		got = append(got, payload.(events.Order))
		return nil
	})
	return &got
}

func TestCreateOrderPricesEveryLine(t *testing.T) {
	w := newWorld(t)
	created := w.record(events.OrderCreated)

	order, err := w.orders().Create(context.Background(), w.customer.ID, w.restaurant.ID, w.orderRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, order.OrderStatus)
	assert.Equal(t, models.PaymentUnpaid, order.PaymentStatus)
	require.NotNil(t, order.CancelAt)
	assert.True(t, order.CancelAt.Equal(t0.Add(config.OrderAutoCancelAfter())))

	var stored []models.OrderItem
	require.NoError(t, w.db.Where("order_id = ?", order.ID).Order("order_item_id").Find(&stored).Error)
	require.Len(t, stored, 2)
	assert.True(t, stored[0].Total.Equal(decimal.NewFromInt(30)))
	assert.True(t, stored[1].Total.Equal(decimal.NewFromInt(5)))
	sum := stored[0].Total.Add(stored[1].Total)
	assert.True(t, sum.Equal(order.TotalAmount), "items sum %s, order total %s", sum, order.TotalAmount)

	require.Len(t, *created, 1)
	assert.Equal(t, order.ID, (*created)[0].OrderID)
	assert.Equal(t, w.restaurant.ID, (*created)[0].RestaurantID)
}

func TestCreateOrderRejectsUnknownReferences(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	_, err := w.orders().Create(ctx, w.customer.ID, w.restaurant.ID+100, w.orderRequest())
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	in := w.orderRequest()
	in.OrderItems[1].MenuItemID = 9999
	_, err = w.orders().Create(ctx, w.customer.ID, w.restaurant.ID, in)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	in = w.orderRequest()
	in.DeliveryAddressID = 9999
	_, err = w.orders().Create(ctx, w.customer.ID, w.restaurant.ID, in)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	var n int64
	require.NoError(t, w.db.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestLineItems(t *testing.T) {
	items := services.LineItems(7, []requests.OrderItem{
		{MenuItemID: 1, Quantity: 3, Price: decimal.RequireFromString("10.05")},
		{MenuItemID: 2, Quantity: 7, Price: decimal.RequireFromString("0.15")},
	})
	require.Len(t, items, 2)
	assert.Equal(t, uint64(7), items[0].OrderID)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("10.05")))
	assert.True(t, items[0].Total.Equal(decimal.RequireFromString("30.15")), "got %s", items[0].Total)
	assert.True(t, items[1].Total.Equal(decimal.RequireFromString("1.05")), "got %s", items[1].Total)
}

func TestCreateOrderNeedsOwnDeliveryAddress(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	theirs, err := services.NewAuthService(w.db, nopDispatch).CreateAddress(ctx, w.stranger.ID, requests.Address{
		Street: "9 JM Road", City: "Pune", State: "MH", PostalCode: "411005",
	})
	require.NoError(t, err)

	in := w.orderRequest()
	in.DeliveryAddressID = requests.ID(theirs.ID)
	_, err = w.orders().Create(ctx, w.customer.ID, w.restaurant.ID, in)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	in.DeliveryAddressID = requests.ID(w.restaurant.AddressID)
	_, err = w.orders().Create(ctx, w.customer.ID, w.restaurant.ID, in)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	var n int64
	require.NoError(t, w.db.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUpdateStatusAccess(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	order, err := w.orders().Create(ctx, w.customer.ID, w.restaurant.ID, w.orderRequest())
	require.NoError(t, err)

	_, err = w.orders().UpdateStatus(ctx, order.ID, w.stranger.ID, models.StatusConfirmed)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = w.orders().UpdateStatus(ctx, order.ID, w.owner.ID, "Lost")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = w.orders().UpdateStatus(ctx, order.ID+1, w.owner.ID, models.StatusConfirmed)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	changed := w.record(events.OrderStatusChanged)
	updated, err := w.orders().UpdateStatus(ctx, order.ID, w.owner.ID, models.StatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, updated.OrderStatus)
	require.Len(t, *changed, 1)
	assert.Equal(t, models.StatusPending, (*changed)[0].PreviousStatus)
	assert.Equal(t, models.StatusPreparing, (*changed)[0].Status)

	_, err = w.orders().Get(ctx, order.ID, w.stranger.ID)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	_, err = w.orders().Get(ctx, order.ID, w.customer.ID)
	assert.NoError(t, err)
}

func TestListForRestaurantIsOwnerOnly(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	_, err := w.orders().Create(ctx, w.customer.ID, w.restaurant.ID, w.orderRequest())
	require.NoError(t, err)

	_, err = w.orders().ListForRestaurant(ctx, w.restaurant.ID, w.customer.ID)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	list, err := w.orders().ListForRestaurant(ctx, w.restaurant.ID, w.owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].OrderItems, 2)

	mine, err := w.orders().ListForUser(ctx, w.customer.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
