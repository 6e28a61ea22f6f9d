package app

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tiffinbox/tiffin/config"
	"github.com/tiffinbox/tiffin/pkg/metrics"
	"github.com/tiffinbox/tiffin/pkg/middleware"
	"github.com/tiffinbox/tiffin/pkg/reqid"
	"github.com/tiffinbox/tiffin/pkg/response"
	"github.com/tiffinbox/tiffin/pkg/router"
	"github.com/tiffinbox/tiffin/pkg/storage"
)

// NewRouter builds the router with the global middleware stack, the
// operational endpoints and the routes register adds.
func NewRouter(register func(*router.Router)) *router.Router {
	r := router.New()

	// Outermost first:
	//  1. metrics   total latency including everything below
	//  2. recovery  panics become a 500 envelope
	//  3. reqid     before anything logs
	//  4. logger    per-request logger tagged with request_id
	//  5. CORS
	//  6. rate limit
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.CORSFromConfig()))
	r.Use(middleware.RateLimit(config.RateLimitPerMinute(), time.Minute, config.TrustedProxies()...))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, response.Payload{"status": "ok"})
	})
	mountLocalStorage(r)

	if register != nil {
		register(r)
	}
	return r
}

// Handler is NewRouter(register).Handler().
func Handler(register func(*router.Router)) http.Handler {
	return NewRouter(register).Handler()
}

// mountLocalStorage serves the local disk under the path of its base URL so
// uploaded menu images resolve without a separate file server.
func mountLocalStorage(r *router.Router) {
	d, err := storage.Use("local")
	if err != nil {
		return
	}
	local, ok := d.(*storage.LocalDisk)
	if !ok {
		return
	}

	prefix := urlPath(local.BaseURL)
	if prefix == "" || prefix == "/" {
		return
	}
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(local.Root)))
	r.Get(prefix+"/*", "storage", files.ServeHTTP)
}

// urlPath returns the path part of base, without the trailing slash.
func urlPath(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return strings.TrimRight(u.Path, "/")
}
