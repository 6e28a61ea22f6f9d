package testkit

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	pkghttp "github.com/tiffinbox/tiffin/pkg/http"
)

// Call is one request seen by a MockTransport.
type Call struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

type mockStep struct {
	method string
	prefix string
	status int
	body   string
	calls  int
}

// MockTransport answers outgoing requests from scripted steps instead of
// the network. Unmatched requests fail with an error.
//
//	mt := testkit.NewMockTransport().
//	    On(http.MethodPost, "https://api.razorpay.com/v1/orders", 200, `{"id":"order_1"}`)
//	mt.Install(t)
type MockTransport struct {
	mu    sync.Mutex
	steps []*mockStep
	calls []Call
}

func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// On answers requests whose method matches and whose URL starts with prefix.
// An empty method matches any method.
func (mt *MockTransport) On(method, prefix string, status int, body string) *MockTransport {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.steps = append(mt.steps, &mockStep{method: method, prefix: prefix, status: status, body: body})
	return mt
}

// Install puts mt on pkg/http's DefaultClient for the rest of the test.
func (mt *MockTransport) Install(t testing.TB) *MockTransport {
	t.Helper()
	pkghttp.DefaultClient.Transport = mt
	t.Cleanup(pkghttp.ResetTransport)
	return mt
}

func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.calls = append(mt.calls, Call{Method: req.Method, URL: req.URL.String(), Header: req.Header.Clone(), Body: body})

	for _, s := range mt.steps {
		if s.method != "" && s.method != req.Method {
			continue
		}
		if !strings.HasPrefix(req.URL.String(), s.prefix) {
			continue
		}
		s.calls++
		header := make(http.Header)
		header.Set("Content-Type", "application/json")
		return &http.Response{
			StatusCode: s.status,
			Status:     fmt.Sprintf("%d %s", s.status, http.StatusText(s.status)),
			Header:     header,
			Body:       io.NopCloser(bytes.NewReader([]byte(s.body))),
			Request:    req,
		}, nil
	}

	return nil, fmt.Errorf("testkit: unexpected outgoing %s %s", req.Method, req.URL)
}

// Calls returns every request seen so far.
func (mt *MockTransport) Calls() []Call {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([]Call(nil), mt.calls...)
}

// AssertAllCalled fails t for every step that was never matched.
func (mt *MockTransport) AssertAllCalled(t testing.TB) {
	t.Helper()
	mt.mu.Lock()
	defer mt.mu.Unlock()
	for _, s := range mt.steps {
		if s.calls == 0 {
			t.Errorf("testkit: mock %s %s was never called", s.method, s.prefix)
		}
	}
}
