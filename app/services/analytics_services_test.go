package services_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiffinbox/tiffin/app/repositories"
	"github.com/tiffinbox/tiffin/app/services"
	"github.com/tiffinbox/tiffin/pkg/auth"
)

func TestAnalyticsBuckets(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	now := time.Now().UTC()
	svc := services.NewAnalyticsService(w.db).WithClock(clock(now))

	first, err := w.orders().Create(ctx, w.customer.ID, w.restaurant.ID, w.orderRequest())
	require.NoError(t, err)
	_, err = w.orders().Create(ctx, w.customer.ID, w.restaurant.ID, w.orderRequest())
	require.NoError(t, err)
	_, err = repositories.NewOrderRepository(w.db).MarkPaid(ctx, first.ID)
	require.NoError(t, err)

	users, err := svc.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 12)
	assert.Equal(t, now.Format("Jan 2006"), users[11].Month)
	assert.Equal(t, now.AddDate(0, 0, 1-now.Day()).AddDate(0, -11, 0).Format("Jan 2006"), users[0].Month)
	assert.Equal(t, 3, users[11].Count)
	assert.Zero(t, users[0].Count)

	owner := auth.Identity{UserID: w.owner.ID, Role: auth.RoleOwner}
	orders, err := svc.Orders(ctx, owner, w.restaurant.ID)
	require.NoError(t, err)
	require.Len(t, orders, 12)
	assert.Equal(t, 1, orders[11].Count)

	sales, err := svc.Sales(ctx, owner, w.restaurant.ID)
	require.NoError(t, err)
	assert.Equal(t, "35.00", sales.TotalRevenue.StringFixed(2))
	assert.Equal(t, "35.00", sales.Months[11].Revenue.StringFixed(2))
	assert.True(t, sales.Months[0].Revenue.IsZero())

	summary, err := svc.Summary(ctx, owner, w.restaurant.ID)
	require.NoError(t, err)
	assert.Equal(t, services.OrderSummary{TotalOrders: 2, PaidOrders: 1, UnpaidOrders: 1}, summary)
}

func TestAnalyticsAccess(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	svc := services.NewAnalyticsService(w.db)

	_, err := svc.Sales(ctx, auth.Identity{UserID: w.customer.ID, Role: auth.RoleCustomer}, w.restaurant.ID)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = svc.Summary(ctx, auth.Identity{UserID: w.owner.ID, Role: auth.RoleOwner}, w.restaurant.ID+1)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	_, err = svc.Orders(ctx, auth.Identity{UserID: w.stranger.ID, Role: auth.RoleAdmin}, w.restaurant.ID)
	assert.NoError(t, err)
}
