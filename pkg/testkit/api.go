package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Result is a decoded API response.
type Result struct {
	Code    int
	Body    map[string]any
	Raw     []byte
	Cookies []*http.Cookie
}

// Message returns the envelope's "message" field.
func (r *Result) Message() string {
	s, _ := r.Body["message"].(string)
	return s
}

// Object returns a nested JSON object from the envelope.
func (r *Result) Object(key string) map[string]any {
	m, _ := r.Body[key].(map[string]any)
	return m
}

// List returns a nested JSON array from the envelope.
func (r *Result) List(key string) []any {
	l, _ := r.Body[key].([]any)
	return l
}

// Cookie returns the value of a cookie set by the response.
func (r *Result) Cookie(name string) string {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Option adjusts a request before it is served.
type Option func(*http.Request)

// WithCookie attaches a cookie.
func WithCookie(name, value string) Option {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: name, Value: value}) }
}

// WithBearer sets an Authorization header.
func WithBearer(token string) Option {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

// WithHeader sets a request header.
func WithHeader(key, value string) Option {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

// Do serves one request against h. A non-nil body is sent as JSON unless it
// is already an io.Reader.
func Do(t testing.TB, h http.Handler, method, path string, body any, opts ...Option) *Result {
	t.Helper()

	var reader io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("testkit: marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := &Result{Code: rec.Code, Raw: rec.Body.Bytes(), Cookies: rec.Result().Cookies()}
	if len(res.Raw) > 0 {
		if err := json.Unmarshal(res.Raw, &res.Body); err != nil {
			t.Fatalf("testkit: decode %s %s response %q: %v", method, path, res.Raw, err)
		}
	}
	return res
}
