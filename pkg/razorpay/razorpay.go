// Package razorpay talks to the Razorpay Orders API and checks the
// signature Checkout returns after a successful payment.
package razorpay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tiffinbox/tiffin/config"
	"github.com/tiffinbox/tiffin/pkg/crypt"
	"github.com/tiffinbox/tiffin/pkg/http"
	"github.com/tiffinbox/tiffin/pkg/logger"
)

// ErrGateway wraps every failure to obtain an order from the gateway.
var ErrGateway = errors.New("razorpay: gateway error")

// OrderRequest is the body of POST /v1/orders. Amount is in minor units.
type OrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
}

// Order is the gateway's view of a payment intent.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
	Method   string `json:"method,omitempty"`
}

// Gateway creates payment intents.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
}

// Client is the HTTP implementation of Gateway.
type Client struct {
	KeyID   string
	Secret  string
	BaseURL string
	Timeout time.Duration
	Retries int
}

// NewClient reads the RAZORPAY_* settings.
func NewClient() *Client {
	return &Client{
		KeyID:   config.RazorpayKeyID(),
		Secret:  config.RazorpaySecret(),
		BaseURL: strings.TrimRight(config.RazorpayBaseURL(), "/"),
		Timeout: config.RazorpayTimeout(),
		Retries: 3,
	}
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	resp, err := http.Post(c.BaseURL+"/v1/orders").
		WithContext(ctx).
		BasicAuth(c.KeyID, c.Secret).
		Body(req).
		Timeout(c.Timeout).
		Retry(c.Retries, 200*time.Millisecond).
		Send()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if !resp.OK() {
		var ae apiError
		_ = resp.JSON(&ae)
		return nil, fmt.Errorf("%w: status %d: %s %s", ErrGateway, resp.StatusCode, ae.Error.Code, ae.Error.Description)
	}

	var order Order
	if err := resp.JSON(&order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: response has no order id", ErrGateway)
	}
	return &order, nil
}

// FakeGateway mints orders locally. It is used when no key id is configured
// so development and tests never reach the real API.
type FakeGateway struct{}

func (FakeGateway) CreateOrder(_ context.Context, req OrderRequest) (*Order, error) {
	id := "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
	return &Order{
		ID:       id,
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

// FromConfig returns the HTTP client when RAZORPAY_KEY_ID is set and the
// fake gateway otherwise.
func FromConfig() Gateway {
	if config.RazorpayKeyID() == "" {
		logger.Warn("razorpay: RAZORPAY_KEY_ID not set, using fake gateway")
		return FakeGateway{}
	}
	return NewClient()
}

// Sign returns hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
func Sign(secret, orderID, paymentID string) string {
	return crypt.HMACSHA256Hex(secret, orderID+"|"+paymentID)
}

// VerifySignature compares signature with the expected value in constant
// time.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	return crypt.Equal(Sign(secret, orderID, paymentID), signature)
}
