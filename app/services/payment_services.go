package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/tiffinbox/tiffin/app/models"
	"github.com/tiffinbox/tiffin/app/repositories"
	"github.com/tiffinbox/tiffin/app/requests"
	"github.com/tiffinbox/tiffin/pkg/apperr"
	"github.com/tiffinbox/tiffin/pkg/logger"
	"github.com/tiffinbox/tiffin/pkg/metrics"
	"github.com/tiffinbox/tiffin/pkg/money"
	"github.com/tiffinbox/tiffin/pkg/razorpay"
	"gorm.io/gorm"
)

// DefaultCurrency applies when a payment request names none.
const DefaultCurrency = "INR"

var (
	// ErrVerificationFailed is returned when a payment signature does not check out.
	ErrVerificationFailed = apperr.BadRequest("Payment verification failed")
	ErrOrderCancelled     = apperr.Conflict("Order has been cancelled")
)

// PaymentService creates payment intents with the gateway and confirms
// them from the signed Checkout callback.
type PaymentService struct {
	db       *gorm.DB
	payments *repositories.PaymentRepository
	orders   *repositories.OrderRepository
	users    *repositories.UserRepository
	gateway  razorpay.Gateway
	secret   string
}

func NewPaymentService(db *gorm.DB, gateway razorpay.Gateway, secret string) *PaymentService {
	return &PaymentService{
		db:       db,
		payments: repositories.NewPaymentRepository(db),
		orders:   repositories.NewOrderRepository(db),
		users:    repositories.NewUserRepository(db),
		gateway:  gateway,
		secret:   secret,
	}
}

// Create asks the gateway for an order covering in.Amount and stores the
// payment under the gateway's order id.
func (s *PaymentService) Create(ctx context.Context, userID uint64, in requests.CreatePayment) (models.Payment, error) {
	currency := in.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	currency, err := money.Normalize(currency)
	if err != nil {
		return models.Payment{}, apperr.BadRequest("Currency must be a 3-letter ISO code")
	}

	order, err := s.orders.FindByID(ctx, in.OrderID.Uint64())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Payment{}, apperr.NotFound("Order not found")
	}
	if err != nil {
		return models.Payment{}, fmt.Errorf("order lookup: %w", err)
	}
	if order.UserID != userID {
		return models.Payment{}, apperr.Forbidden("You are not allowed to pay for this order")
	}
	if order.OrderStatus == models.StatusCancelled {
		return models.Payment{}, ErrOrderCancelled
	}
	if order.PaymentStatus == models.PaymentPaid {
		return models.Payment{}, apperr.Conflict("Order is already paid")
	}

	minor, err := money.ToMinor(in.Amount, currency)
	if err != nil {
		return models.Payment{}, apperr.BadRequest(fmt.Sprintf("Amount is not a valid %s amount", currency)).Wrap(err)
	}

	email := in.Email
	if email == "" {
		if u, err := s.users.FindByID(ctx, userID); err == nil {
			email = u.Email
		}
	}

	gw, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   minor,
		Currency: currency,
		Receipt:  "order_" + formatID(order.ID),
	})
	if err != nil {
		return models.Payment{}, apperr.BadGateway("Payment gateway error").Wrap(err)
	}

	if gw.Currency != "" {
		currency = gw.Currency
	}
	payment := models.Payment{
		ID:            gw.ID,
		OrderID:       order.ID,
		UserID:        userID,
		Amount:        money.FromMinor(minor, currency),
		AmountMinor:   minor,
		Currency:      currency,
		PaymentStatus: gw.Status,
		PaymentMethod: gw.Method,
		PayerEmail:    email,
	}
	if err := s.payments.Create(ctx, &payment); err != nil {
		return models.Payment{}, fmt.Errorf("store payment: %w", err)
	}
	return payment, nil
}

// Verify checks the Checkout signature and, if it matches, completes the
// payment and marks its order Paid in one transaction. A paid order is no
// longer subject to auto-cancel. A mismatch, or an order cancelled in the
// meantime, changes nothing.
func (s *PaymentService) Verify(ctx context.Context, userID uint64, in requests.VerifyPayment) (models.Payment, error) {
	if !razorpay.VerifySignature(s.secret, in.RazorpayOrderID, in.RazorpayPaymentID, in.RazorpaySignature) {
		metrics.PaymentsVerified.WithLabelValues("signature_mismatch").Inc()
		logger.WithCtx(ctx).Warn("payment signature mismatch", "payment_id", in.PaymentID)
		return models.Payment{}, ErrVerificationFailed
	}

	payment, err := s.verify(ctx, userID, in)
	if err != nil {
		result := "error"
		if errors.Is(err, ErrVerificationFailed) {
			result = "signature_mismatch"
		}
		metrics.PaymentsVerified.WithLabelValues(result).Inc()
		return models.Payment{}, err
	}
	metrics.PaymentsVerified.WithLabelValues("ok").Inc()
	return payment, nil
}

func (s *PaymentService) verify(ctx context.Context, userID uint64, in requests.VerifyPayment) (models.Payment, error) {
	payment, err := s.payments.FindByID(ctx, in.PaymentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Payment{}, apperr.NotFound("Payment not found")
	}
	if err != nil {
		return models.Payment{}, fmt.Errorf("payment lookup: %w", err)
	}
	// The signature covers the gateway order id, which is the payment's key.
	if payment.ID != in.RazorpayOrderID {
		return models.Payment{}, ErrVerificationFailed
	}
	if payment.UserID != userID {
		return models.Payment{}, apperr.Forbidden("You are not allowed to verify this payment")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.payments.WithTx(tx).Complete(ctx, payment.ID, in.RazorpayPaymentID); err != nil {
			return fmt.Errorf("complete payment: %w", err)
		}
		ok, err := s.orders.WithTx(tx).MarkPaid(ctx, payment.OrderID)
		if err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		if !ok {
			return ErrOrderCancelled
		}
		return nil
	})
	if err != nil {
		return models.Payment{}, err
	}

	txID := in.RazorpayPaymentID
	payment.PaymentStatus = models.PaymentCompleted
	payment.TransactionID = &txID
	return payment, nil
}
