package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. Any status may follow any other.
const (
	StatusPending        = "Pending"
	StatusConfirmed      = "Confirmed"
	StatusPreparing      = "Preparing"
	StatusReadyForPickup = "Ready for Pickup"
	StatusOutForDelivery = "Out for Delivery"
	StatusDelivered      = "Delivered"
	StatusCancelled      = "Cancelled"
	StatusFailed         = "Failed"
)

// OrderStatuses lists every valid status.
var OrderStatuses = []string{
	StatusPending, StatusConfirmed, StatusPreparing, StatusReadyForPickup,
	StatusOutForDelivery, StatusDelivered, StatusCancelled, StatusFailed,
}

const (
	PaymentUnpaid = "Unpaid"
	PaymentPaid   = "Paid"
)

// Order is a customer's order at one restaurant. CancelAt is the
// auto-cancel deadline; it is set while the order is Pending and unpaid.
type Order struct {
	ID                uint64          `gorm:"column:order_id;primaryKey;autoIncrement" json:"order_id,string"`
	UserID            uint64          `gorm:"not null;index" json:"user_id,string"`
	RestaurantID      uint64          `gorm:"not null;index" json:"restaurant_id,string"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	DeliveryAddressID uint64          `gorm:"not null" json:"delivery_address_id,string"`
	OrderStatus       string          `gorm:"size:32;not null;default:Pending;index" json:"order_status"`
	PaymentStatus     string          `gorm:"size:16;not null;default:Unpaid" json:"payment_status"`
	CancelAt          *time.Time      `gorm:"index" json:"-"`
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	OrderItems []OrderItem `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
}

// OrderItem is immutable once written.
type OrderItem struct {
	ID         uint64          `gorm:"column:order_item_id;primaryKey;autoIncrement" json:"order_item_id,string"`
	OrderID    uint64          `gorm:"not null;index" json:"order_id,string"`
	MenuItemID uint64          `gorm:"not null;index" json:"menu_item_id,string"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
}

// PaymentCompleted is the status a verified payment is moved to.
const PaymentCompleted = "completed"

// Payment is keyed by the gateway's order id.
type Payment struct {
	ID            string          `gorm:"column:payment_id;primaryKey;size:64" json:"payment_id"`
	OrderID       uint64          `gorm:"not null;index" json:"order_id,string"`
	UserID        uint64          `gorm:"not null;index" json:"user_id,string"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,3);not null" json:"amount"`
	AmountMinor   int64           `gorm:"not null" json:"amount_minor"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	PaymentStatus string          `gorm:"size:32;not null" json:"payment_status"`
	PaymentMethod string          `gorm:"size:32" json:"payment_method"`
	PayerEmail    string          `gorm:"size:255" json:"payer_email"`
	TransactionID *string         `gorm:"size:64" json:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Review struct {
	ID           uint64    `gorm:"column:review_id;primaryKey;autoIncrement" json:"review_id,string"`
	RestaurantID uint64    `gorm:"not null;index" json:"restaurant_id,string"`
	UserID       uint64    `gorm:"not null;index" json:"user_id,string"`
	Rating       int       `gorm:"not null" json:"rating"`
	Comments     string    `gorm:"type:text" json:"comments"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
