package http_test

import (
	"context"
	"encoding/json"
	"errors"
	gohttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiffinbox/tiffin/pkg/http"
)

func TestPostSendsJSONWithBasicAuth(t *testing.T) {
	var gotUser, gotPass, gotCT string
	var gotBody map[string]any
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		gotCT = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(gohttp.StatusOK)
		_, _ = w.Write([]byte(`{"id":"order_1"}`))
	}))
	defer srv.Close()

	resp, err := http.Post(srv.URL).
		BasicAuth("rzp_key", "rzp_secret").
		Body(map[string]any{"amount": 10000}).
		Send()
	require.NoError(t, err)
	require.True(t, resp.OK())

	var out struct{ ID string }
	require.NoError(t, resp.JSON(&out))
	assert.Equal(t, "order_1", out.ID)
	assert.Equal(t, "rzp_key", gotUser)
	assert.Equal(t, "rzp_secret", gotPass)
	assert.Equal(t, "application/json", gotCT)
	assert.EqualValues(t, 10000, gotBody["amount"])
}

type flaky struct {
	fails atomic.Int32
	calls atomic.Int32
	next  gohttp.RoundTripper
}

func (f *flaky) RoundTrip(r *gohttp.Request) (*gohttp.Response, error) {
	if f.calls.Add(1) <= f.fails.Load() {
		return nil, errors.New("connection reset by peer")
	}
	return f.next.RoundTrip(r)
}

func TestRetriesTransportErrors(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		w.WriteHeader(gohttp.StatusCreated)
	}))
	defer srv.Close()

	ft := &flaky{next: gohttp.DefaultTransport}
	ft.fails.Store(2)
	http.DefaultClient.Transport = ft
	defer http.ResetTransport()

	resp, err := http.Get(srv.URL).Retry(3, time.Millisecond).Send()
	require.NoError(t, err)
	assert.Equal(t, gohttp.StatusCreated, resp.StatusCode)
	assert.Equal(t, int32(3), ft.calls.Load())
}

func TestServerErrorsAreNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		hits.Add(1)
		w.WriteHeader(gohttp.StatusBadGateway)
	}))
	defer srv.Close()

	resp, err := http.Post(srv.URL).Retry(3, time.Millisecond).Send()
	require.NoError(t, err)
	assert.Error(t, resp.Throw())
	assert.Equal(t, int32(1), hits.Load())
}

func TestCancelledContextStopsRetrying(t *testing.T) {
	ft := &flaky{next: gohttp.DefaultTransport}
	ft.fails.Store(100)
	http.DefaultClient.Transport = ft
	defer http.ResetTransport()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := http.Get("http://gateway.invalid").WithContext(ctx).Retry(5, time.Second).Send()
	assert.Error(t, err)
	assert.LessOrEqual(t, ft.calls.Load(), int32(1))
}

func TestTimeoutPerAttempt(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	_, err := http.Get(srv.URL).Timeout(20 * time.Millisecond).Send()
	assert.Error(t, err)
}

func TestPostIsNotResentAfterTimeout(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		hits.Add(1)
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	_, err := http.Post(srv.URL + "/v1/orders").
		Body(map[string]any{"amount": 10000}).
		Timeout(20 * time.Millisecond).
		Retry(3, time.Millisecond).
		Send()
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestPostRetriesUnsentRequests(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		w.WriteHeader(gohttp.StatusOK)
	}))
	defer srv.Close()

	ft := &flaky{next: gohttp.DefaultTransport}
	ft.fails.Store(2)
	http.DefaultClient.Transport = ft
	defer http.ResetTransport()

	resp, err := http.Post(srv.URL).Body(map[string]any{"amount": 1}).Retry(3, time.Millisecond).Send()
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, int32(3), ft.calls.Load())
}
