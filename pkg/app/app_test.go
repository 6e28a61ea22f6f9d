package app_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "github.com/tiffinbox/tiffin/database/migrations"
	"github.com/tiffinbox/tiffin/pkg/app"
	"github.com/tiffinbox/tiffin/pkg/router"
	"github.com/tiffinbox/tiffin/pkg/storage"
	"github.com/tiffinbox/tiffin/pkg/testkit"
)

func TestHandlerServesHealthMetricsAndJSONFallbacks(t *testing.T) {
	h := app.Handler(func(r *router.Router) {
		r.Group("/api").Get("/ping", "ping", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	res := testkit.Do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "ok", res.Body["status"])

	res = testkit.Do(t, h, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "Route not found", res.Message())

	res = testkit.Do(t, h, http.MethodPost, "/api/ping", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, res.Code)
	assert.Equal(t, false, res.Body["success"])

	res = testkit.Do(t, h, http.MethodGet, "/api/ping", nil)
	assert.Equal(t, http.StatusNoContent, res.Code)
}

func TestHandlerServesLocalUploads(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "menu-items"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "menu-items", "thali.txt"), []byte("thali"), 0o644))
	storage.RegisterDisk("local", storage.NewLocalDisk(root, "http://localhost:8080/storage"))

	h := app.Handler(nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storage/menu-items/thali.txt", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "thali", rec.Body.String())
}

func TestRouteListAndMigrationStatusPrintTables(t *testing.T) {
	r := router.New()
	r.Group("/api").Get("/order/{order_id}", "orders.show", func(http.ResponseWriter, *http.Request) {})

	var out bytes.Buffer
	require.NoError(t, app.RouteList(&out, r))
	assert.Contains(t, out.String(), "/api/order/{order_id}")
	assert.Contains(t, out.String(), "orders.show")

	db := testkit.DB(t)
	out.Reset()
	require.NoError(t, app.MigrationStatus(&out, db))
	assert.Contains(t, out.String(), "Yes")

	out.Reset()
	require.NoError(t, app.Migrate(&out, db))
	assert.Contains(t, out.String(), "Nothing to migrate.")
}
