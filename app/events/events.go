// Package events names the domain events services fire after a commit and
// the payload each one carries.
package events

import "github.com/shopspring/decimal"

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	OrderAutoCancelled = "order.auto_cancelled"
)

// Order is the payload of every order event.
type Order struct {
	OrderID        uint64          `json:"order_id,string"`
	UserID         uint64          `json:"user_id,string"`
	RestaurantID   uint64          `json:"restaurant_id,string"`
	Status         string          `json:"order_status"`
	PreviousStatus string          `json:"previous_status,omitempty"`
	PaymentStatus  string          `json:"payment_status"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}
