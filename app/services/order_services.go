package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tiffinbox/tiffin/app/events"
	"github.com/tiffinbox/tiffin/app/models"
	"github.com/tiffinbox/tiffin/app/repositories"
	"github.com/tiffinbox/tiffin/app/requests"
	"github.com/tiffinbox/tiffin/config"
	"github.com/tiffinbox/tiffin/pkg/apperr"
	"github.com/tiffinbox/tiffin/pkg/collection"
	"github.com/tiffinbox/tiffin/pkg/event"
	"gorm.io/gorm"
)

// OrderService places orders and moves them through their statuses.
type OrderService struct {
	db          *gorm.DB
	orders      *repositories.OrderRepository
	restaurants *repositories.RestaurantRepository
	addresses   *repositories.AddressRepository
	menus       *repositories.MenuRepository
	bus         *event.Bus

	cancelAfter time.Duration
	now         func() time.Time
}

func NewOrderService(db *gorm.DB, bus *event.Bus) *OrderService {
	return &OrderService{
		db:          db,
		orders:      repositories.NewOrderRepository(db),
		restaurants: repositories.NewRestaurantRepository(db),
		addresses:   repositories.NewAddressRepository(db),
		menus:       repositories.NewMenuRepository(db),
		bus:         busOr(bus),
		cancelAfter: config.OrderAutoCancelAfter(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the service's clock.
func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	cp := *s
	cp.now = now
	return &cp
}

// Create persists an order with its items and arms the auto-cancel deadline,
// all in one transaction.
func (s *OrderService) Create(ctx context.Context, userID, restaurantID uint64, in requests.CreateOrder) (models.Order, error) {
	if ok, err := s.restaurants.Exists(ctx, restaurantID); err != nil {
		return models.Order{}, fmt.Errorf("restaurant lookup: %w", err)
	} else if !ok {
		return models.Order{}, apperr.NotFound("Restaurant not found")
	}
	// Another user's address is reported as missing.
	addr, err := s.addresses.FindByID(ctx, in.DeliveryAddressID.Uint64())
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, fmt.Errorf("address lookup: %w", err)
	}
	if err != nil || addr.UserID == nil || *addr.UserID != userID {
		return models.Order{}, apperr.NotFound("Delivery address not found")
	}

	ids := collection.Unique(collection.Map(in.OrderItems, func(it requests.OrderItem) uint64 { return it.MenuItemID.Uint64() }))
	found, err := s.menus.FindItems(ctx, ids)
	if err != nil {
		return models.Order{}, fmt.Errorf("menu item lookup: %w", err)
	}
	known := collection.KeyBy(found, func(m models.MenuItem) uint64 { return m.ID })
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return models.Order{}, apperr.NotFound(fmt.Sprintf("Menu item %d not found", id))
		}
	}

	now := s.now()
	deadline := now.Add(s.cancelAfter)
	order := models.Order{
		UserID:            userID,
		RestaurantID:      restaurantID,
		TotalAmount:       in.TotalAmount,
		DeliveryAddressID: in.DeliveryAddressID.Uint64(),
		OrderStatus:       models.StatusPending,
		PaymentStatus:     models.PaymentUnpaid,
		CancelAt:          &deadline,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		if err := repo.Create(ctx, &order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		order.OrderItems = LineItems(order.ID, in.OrderItems)
		if err := repo.CreateItems(ctx, order.OrderItems); err != nil {
			return fmt.Errorf("create order items: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	s.bus.Fire(ctx, events.OrderCreated, orderEvent(order, ""))
	return order, nil
}

// LineItems prices each requested item at its requested price:
// total = quantity × price, exactly. Prices are validated to two places
// before they get here.
func LineItems(orderID uint64, in []requests.OrderItem) []models.OrderItem {
	return collection.Map(in, func(it requests.OrderItem) models.OrderItem {
		return models.OrderItem{
			OrderID:    orderID,
			MenuItemID: it.MenuItemID.Uint64(),
			Quantity:   it.Quantity,
			Price:      it.Price,
			Total:      it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
		}
	})
}

// UpdateStatus sets a new status. Any status other than Pending revokes the
// pending auto-cancel; moving back to Pending does not re-arm it.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, userID uint64, status string) (models.Order, error) {
	if !collection.Includes(models.OrderStatuses, status) {
		return models.Order{}, apperr.BadRequest("Invalid order status")
	}
	order, err := s.accessible(ctx, orderID, userID)
	if err != nil {
		return models.Order{}, err
	}

	previous := order.OrderStatus
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.orders.WithTx(tx).SetStatus(ctx, orderID, status)
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("update order status: %w", err)
	}

	updated, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	s.bus.Fire(ctx, events.OrderStatusChanged, orderEvent(updated, previous))
	return updated, nil
}

// Get returns an order to its customer or the restaurant's owner.
func (s *OrderService) Get(ctx context.Context, orderID, userID uint64) (models.Order, error) {
	return s.accessible(ctx, orderID, userID)
}

func (s *OrderService) ListForUser(ctx context.Context, userID uint64) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListForRestaurant lists a restaurant's orders for its owner.
func (s *OrderService) ListForRestaurant(ctx context.Context, restaurantID, userID uint64) ([]models.Order, error) {
	rest, err := s.restaurants.FindByID(ctx, restaurantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Restaurant not found")
	}
	if err != nil {
		return nil, err
	}
	if rest.UserID != userID {
		return nil, apperr.Forbidden("You are not the owner of this restaurant")
	}
	return s.orders.ListByRestaurant(ctx, restaurantID)
}

func (s *OrderService) accessible(ctx context.Context, orderID, userID uint64) (models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, apperr.NotFound("Order not found")
	}
	if err != nil {
		return models.Order{}, err
	}
	if order.UserID == userID {
		return order, nil
	}
	rest, err := s.restaurants.FindByID(ctx, order.RestaurantID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, err
	}
	if err == nil && rest.UserID == userID {
		return order, nil
	}
	return models.Order{}, apperr.Forbidden("You are not allowed to access this order")
}

func orderEvent(o models.Order, previous string) events.Order {
	return events.Order{
		OrderID:        o.ID,
		UserID:         o.UserID,
		RestaurantID:   o.RestaurantID,
		Status:         o.OrderStatus,
		PreviousStatus: previous,
		PaymentStatus:  o.PaymentStatus,
		TotalAmount:    o.TotalAmount,
	}
}

// formatID renders an id the way the API serialises it.
func formatID(id uint64) string { return strconv.FormatUint(id, 10) }
