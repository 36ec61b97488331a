package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	intconfig "rideshare/internal/config"
	"rideshare/internal/domain/models"
	h "rideshare/internal/http/handlers"
	"rideshare/internal/services"

	"github.com/gin-gonic/gin"
)

func testRouter(t *testing.T) (*gin.Engine, services.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth := services.AuthService{JWTSecret: []byte("router-test"), TokenTTL: time.Hour}
	r := NewRouter(intconfig.Env{}, h.Deps{Auth: auth})
	t.Cleanup(func() { h.Configure(h.Deps{}) })
	return r, auth
}

func TestHealth(t *testing.T) {
	r, _ := testRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestBookingRoutesRequireToken(t *testing.T) {
	r, _ := testRouter(t)
	for _, rt := range []struct{ method, path string }{
		{http.MethodGet, "/api/bookings/1"},
		{http.MethodPost, "/api/bookings/1/cancel"},
		{http.MethodPost, "/api/bookings/trips/1/bookings"},
		{http.MethodGet, "/api/auth/profile"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", rt.method, rt.path, w.Code)
		}
	}
}

func TestUserUpdateIsSelfOnly(t *testing.T) {
	r, auth := testRouter(t)
	token, err := auth.IssueToken(models.User{ID: 1, Email: "a@b.c"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/users/2", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	r, _ := testRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSearchValidationNeedsNoDatabase(t *testing.T) {
	r, _ := testRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/trips/search", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}
