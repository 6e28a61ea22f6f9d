package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tiffinbox/tiffin/app/models"
	"github.com/tiffinbox/tiffin/app/repositories"
	"github.com/tiffinbox/tiffin/pkg/apperr"
	"github.com/tiffinbox/tiffin/pkg/auth"
	"github.com/tiffinbox/tiffin/pkg/collection"
	"gorm.io/gorm"
)

const analyticsMonths = 12

// MonthCount is one monthly bucket of a count report.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// MonthRevenue is one monthly bucket of a sales report.
type MonthRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SalesReport is the monthly revenue of paid orders.
type SalesReport struct {
	Months       []MonthRevenue  `json:"data"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// OrderSummary counts a restaurant's orders over the report window.
type OrderSummary struct {
	TotalOrders  int `json:"totalOrders"`
	PaidOrders   int `json:"paidOrders"`
	UnpaidOrders int `json:"unpaidOrders"`
}

// AnalyticsService builds twelve monthly buckets ending with the current
// month, oldest first.
type AnalyticsService struct {
	users       *repositories.UserRepository
	orders      *repositories.OrderRepository
	restaurants *repositories.RestaurantRepository
	now         func() time.Time
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{
		users:       repositories.NewUserRepository(db),
		orders:      repositories.NewOrderRepository(db),
		restaurants: repositories.NewRestaurantRepository(db),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the service's clock.
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	cp := *s
	cp.now = now
	return &cp
}

// window is the first instant of the oldest month in the report.
func (s *AnalyticsService) window() (time.Time, []time.Time) {
	now := s.now().UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	months := make([]time.Time, analyticsMonths)
	for i := range months {
		months[i] = current.AddDate(0, i-(analyticsMonths-1), 0)
	}
	return months[0], months
}

func monthKey(t time.Time) string { return t.UTC().Format("Jan 2006") }

// Users counts sign-ups per month.
func (s *AnalyticsService) Users(ctx context.Context) ([]MonthCount, error) {
	start, months := s.window()
	users, err := s.users.CreatedSince(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("user analytics: %w", err)
	}
	byMonth := collection.GroupBy(users, func(u models.User) string { return monthKey(u.CreatedAt) })
	return collection.Map(months, func(m time.Time) MonthCount {
		return MonthCount{Month: monthKey(m), Count: len(byMonth[monthKey(m)])}
	}), nil
}

// Orders counts a restaurant's paid orders per month.
func (s *AnalyticsService) Orders(ctx context.Context, caller auth.Identity, restaurantID uint64) ([]MonthCount, error) {
	paid, months, err := s.paidOrders(ctx, caller, restaurantID)
	if err != nil {
		return nil, err
	}
	byMonth := collection.GroupBy(paid, func(o models.Order) string { return monthKey(o.CreatedAt) })
	return collection.Map(months, func(m time.Time) MonthCount {
		return MonthCount{Month: monthKey(m), Count: len(byMonth[monthKey(m)])}
	}), nil
}

// Sales sums a restaurant's paid order totals per month.
func (s *AnalyticsService) Sales(ctx context.Context, caller auth.Identity, restaurantID uint64) (SalesReport, error) {
	paid, months, err := s.paidOrders(ctx, caller, restaurantID)
	if err != nil {
		return SalesReport{}, err
	}
	byMonth := collection.GroupBy(paid, func(o models.Order) string { return monthKey(o.CreatedAt) })
	sum := func(os []models.Order) decimal.Decimal {
		return collection.Reduce(os, decimal.Zero, func(acc decimal.Decimal, o models.Order) decimal.Decimal {
			return acc.Add(o.TotalAmount)
		})
	}

	report := SalesReport{TotalRevenue: sum(paid)}
	report.Months = collection.Map(months, func(m time.Time) MonthRevenue {
		return MonthRevenue{Month: monthKey(m), Revenue: sum(byMonth[monthKey(m)])}
	})
	return report, nil
}

// Summary counts all, paid and unpaid orders over the window.
func (s *AnalyticsService) Summary(ctx context.Context, caller auth.Identity, restaurantID uint64) (OrderSummary, error) {
	if err := s.authorize(ctx, caller, restaurantID); err != nil {
		return OrderSummary{}, err
	}
	start, _ := s.window()
	all, err := s.orders.CreatedSince(ctx, restaurantID, start)
	if err != nil {
		return OrderSummary{}, fmt.Errorf("order analytics: %w", err)
	}
	paid := collection.Count(all, isPaid)
	return OrderSummary{TotalOrders: len(all), PaidOrders: paid, UnpaidOrders: len(all) - paid}, nil
}

func (s *AnalyticsService) paidOrders(ctx context.Context, caller auth.Identity, restaurantID uint64) ([]models.Order, []time.Time, error) {
	if err := s.authorize(ctx, caller, restaurantID); err != nil {
		return nil, nil, err
	}
	start, months := s.window()
	all, err := s.orders.CreatedSince(ctx, restaurantID, start)
	if err != nil {
		return nil, nil, fmt.Errorf("order analytics: %w", err)
	}
	return collection.Filter(all, isPaid), months, nil
}

// authorize lets admins and the restaurant's owner through.
func (s *AnalyticsService) authorize(ctx context.Context, caller auth.Identity, restaurantID uint64) error {
	rest, err := s.restaurants.FindByID(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Restaurant not found")
		}
		return err
	}
	if caller.Role != auth.RoleAdmin && rest.UserID != caller.UserID {
		return apperr.Forbidden("You are not the owner of this restaurant")
	}
	return nil
}

func isPaid(o models.Order) bool { return o.PaymentStatus == models.PaymentPaid }
