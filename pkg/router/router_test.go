package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/tiffinbox/tiffin/pkg/router"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestGroupMiddlewareOrder(t *testing.T) {
	r := router.New()
	var trail []string
	mw := func(tag string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				trail = append(trail, tag)
				next.ServeHTTP(w, req)
			})
		}
	}

	api := r.Group("/api", mw("group"))
	api.Get("/orders", "orders.index", ok, mw("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(trail) != 2 || trail[0] != "group" || trail[1] != "route" {
		t.Errorf("unexpected middleware order: %v", trail)
	}
}

func TestSameShapeDifferentParamPerMethod(t *testing.T) {
	r := router.New()
	api := r.Group("/api")

	var got string
	api.Get("/{restaurant_id}/menu", "menus.index", func(w http.ResponseWriter, req *http.Request) {
		got = "restaurant=" + chi.URLParam(req, "restaurant_id")
	})
	api.Put("/{menu_id}/menu", "menus.update", func(w http.ResponseWriter, req *http.Request) {
		got = "menu=" + chi.URLParam(req, "menu_id")
	})

	r.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/7/menu", nil))
	if got != "restaurant=7" {
		t.Errorf("GET: got %q", got)
	}
	r.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/api/9/menu", nil))
	if got != "menu=9" {
		t.Errorf("PUT: got %q", got)
	}
}

func TestURLAndRoutes(t *testing.T) {
	r := router.New()
	api := r.Group("api")
	api.Get("/order/{order_id}", "orders.show", ok)
	api.Delete("/review", "reviews.destroy", ok)

	url, err := r.URL("orders.show", map[string]string{"order_id": "42"})
	if err != nil || url != "/api/order/42" {
		t.Errorf("expected /api/order/42, got %q (%v)", url, err)
	}
	if _, err := r.URL("orders.show", nil); err == nil {
		t.Error("expected missing-parameter error")
	}

	routes := r.Routes()
	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(routes))
	}
	if routes[0].Path != "/api/order/{order_id}" || routes[1].Method != http.MethodDelete {
		t.Errorf("unexpected ordering: %+v", routes)
	}
}
