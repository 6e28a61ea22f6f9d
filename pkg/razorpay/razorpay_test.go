package razorpay_test

import (
	"context"
	"encoding/json"
	gohttp "net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiffinbox/tiffin/pkg/razorpay"
)

func TestCreateOrderPostsMinorUnits(t *testing.T) {
	var got razorpay.OrderRequest
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "order_abc", "amount": got.Amount, "currency": got.Currency, "status": "created",
		})
	}))
	defer srv.Close()

	c := &razorpay.Client{KeyID: "rzp_test_key", Secret: "secret", BaseURL: srv.URL, Timeout: time.Second, Retries: 1}
	order, err := c.CreateOrder(context.Background(), razorpay.OrderRequest{Amount: 10000, Currency: "INR", Receipt: "order_7"})
	require.NoError(t, err)

	assert.Equal(t, int64(10000), got.Amount)
	assert.Equal(t, "order_7", got.Receipt)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, "created", order.Status)
}

func TestCreateOrderMapsErrors(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		w.WriteHeader(gohttp.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	}))
	defer srv.Close()

	c := &razorpay.Client{BaseURL: srv.URL, Timeout: time.Second, Retries: 1}
	_, err := c.CreateOrder(context.Background(), razorpay.OrderRequest{Amount: 1, Currency: "INR"})
	require.ErrorIs(t, err, razorpay.ErrGateway)
	assert.Contains(t, err.Error(), "amount too small")
}

func TestFakeGateway(t *testing.T) {
	order, err := razorpay.FakeGateway{}.CreateOrder(context.Background(), razorpay.OrderRequest{Amount: 500, Currency: "JPY"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(order.ID, "order_"))
	assert.Equal(t, int64(500), order.Amount)
}

func TestVerifySignature(t *testing.T) {
	const secret = "s3cr3t"
	const sig = "c4ba7785e595b717abd8b4847eaf30e97f23acbdbe1b8f5cbbf17d28d63b068f"
	require.Equal(t, sig, razorpay.Sign(secret, "order_1", "pay_1"))

	assert.True(t, razorpay.VerifySignature(secret, "order_1", "pay_1", sig))
	assert.False(t, razorpay.VerifySignature(secret, "order_1", "pay_2", sig))
	assert.False(t, razorpay.VerifySignature("other", "order_1", "pay_1", sig))

	mutated := []byte(sig)
	if mutated[0] == 'a' {
		mutated[0] = 'b'
	} else {
		mutated[0] = 'a'
	}
	assert.False(t, razorpay.VerifySignature(secret, "order_1", "pay_1", string(mutated)))
	assert.False(t, razorpay.VerifySignature(secret, "order_1", "pay_1", ""))
}

func TestCreateOrderTimeoutDoesNotDuplicate(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(_ gohttp.ResponseWriter, r *gohttp.Request) {
		hits.Add(1)
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := &razorpay.Client{BaseURL: srv.URL, Timeout: 20 * time.Millisecond, Retries: 3}
	_, err := c.CreateOrder(context.Background(), razorpay.OrderRequest{Amount: 100, Currency: "INR"})
	assert.ErrorIs(t, err, razorpay.ErrGateway)
	assert.Equal(t, int32(1), hits.Load())
}
