package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phamiz/ecommerce-backend/pkg/config"
	"github.com/phamiz/ecommerce-backend/pkg/logger"
)

func newTestRouter() http.Handler {
	return New(Dependencies{
		Config: &config.Config{
			CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
		},
		Logger: logger.New(logger.Options{ServiceName: "router-test"}),
	})
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/healthz", "/readyz"} {
		r := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, w.Code)
		}
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := newTestRouter()

	for _, tc := range []struct{ method, path string }{
		{"GET", "/api/cart"},
		{"POST", "/api/orders"},
		{"GET", "/api/admin/orders"},
	} {
		r := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s status = %d, want 401", tc.method, tc.path, w.Code)
		}
	}
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	router := newTestRouter()

	r := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected X-Request-Id on response")
	}
}
