package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/phamiz/ecommerce-backend/pkg/auth"
	"github.com/phamiz/ecommerce-backend/pkg/config"
	"github.com/phamiz/ecommerce-backend/pkg/enums"
)

type stubSessionChecker struct {
	live bool
	err  error
}

func (s stubSessionChecker) HasSession(context.Context, string) (bool, error) {
	return s.live, s.err
}

var authTestJWT = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "ecommerce-backend-test",
	ExpirationMinutes: 15,
}

func mintTestToken(t *testing.T, userID uuid.UUID, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(authTestJWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: userID,
		Email:  "user@example.com",
		Role:   role,
		JTI:    uuid.NewString(),
	})
	require.NoError(t, err)
	return token
}

func TestAuthSeedsIdentity(t *testing.T) {
	userID := uuid.New()
	token := mintTestToken(t, userID, enums.UserRoleUser)

	var seenUser uuid.UUID
	var seenRole string
	var seenAccess string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = UserIDFromContext(r.Context())
		seenRole = RoleFromContext(r.Context())
		seenAccess = AccessIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := Auth(authTestJWT, stubSessionChecker{live: true}, nil)(next)

	r := httptest.NewRequest("GET", "/api/cart", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, userID, seenUser)
	require.Equal(t, string(enums.UserRoleUser), seenRole)
	require.NotEmpty(t, seenAccess)
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	handler := Auth(authTestJWT, stubSessionChecker{live: true}, nil)(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("handler must not run")
		}))

	r := httptest.NewRequest("GET", "/api/cart", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	handler := Auth(authTestJWT, stubSessionChecker{live: true}, nil)(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("handler must not run")
		}))

	r := httptest.NewRequest("GET", "/api/cart", nil)
	r.Header.Set("Authorization", "Bearer not.a.jwt")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	token := mintTestToken(t, uuid.New(), enums.UserRoleUser)

	handler := Auth(authTestJWT, stubSessionChecker{live: false}, nil)(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("handler must not run")
		}))

	r := httptest.NewRequest("GET", "/api/cart", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	allow := RequireRole(nil, string(enums.UserRoleAdmin))

	handler := allow(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest("GET", "/api/admin/orders", nil)
	r = r.WithContext(WithRole(r.Context(), string(enums.UserRoleAdmin)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	r = httptest.NewRequest("GET", "/api/admin/orders", nil)
	r = r.WithContext(WithRole(r.Context(), string(enums.UserRoleUser)))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusForbidden, w.Code)
}
