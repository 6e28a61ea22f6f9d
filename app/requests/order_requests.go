package requests

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	MenuItemID ID              `json:"menu_item_id" validate:"required"`
	Quantity   int             `json:"quantity" validate:"required,min=1"`
	Price      decimal.Decimal `json:"price" validate:"required,gt=0,places=2"`
}

type CreateOrder struct {
	TotalAmount       decimal.Decimal `json:"total_amount" validate:"required,gt=0,places=2"`
	DeliveryAddressID ID              `json:"delivery_address_id" validate:"required"`
	OrderItems        []OrderItem     `json:"order_items" validate:"required,min=1,dive"`
}

type UpdateOrderStatus struct {
	Status string `json:"status" validate:"required,in=Pending,Confirmed,Preparing,Ready for Pickup,Out for Delivery,Delivered,Cancelled,Failed"`
}

// UnmarshalJSON also accepts the column name "order_status" for the status.
func (u *UpdateOrderStatus) UnmarshalJSON(b []byte) error {
	var raw struct {
		Status      string `json:"status"`
		OrderStatus string `json:"order_status"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	u.Status = raw.Status
	if u.Status == "" {
		u.Status = raw.OrderStatus
	}
	return nil
}

type CreatePayment struct {
	OrderID  ID              `json:"order_id" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"required,gt=0,places=3"`
	Currency string          `json:"currency" validate:"nullable,size=3,alpha"`
	Email    string          `json:"email" validate:"nullable,email"`
}

type VerifyPayment struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
	PaymentID         string `json:"payment_id" validate:"required"`
}

type CreateReview struct {
	RestaurantID ID     `json:"restaurant_id" validate:"required"`
	Rating       int    `json:"rating" validate:"between=0,5"`
	Comments     string `json:"comments"`
}

type UpdateReview struct {
	ReviewID ID     `json:"review_id" validate:"required"`
	Comments string `json:"comments" validate:"required"`
	Rating   *int   `json:"rating" validate:"nullable,between=0,5"`
}

type DeleteReview struct {
	ReviewRatingID ID `json:"review_rating_id" validate:"required"`
}
