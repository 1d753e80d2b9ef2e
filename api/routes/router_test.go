package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	authsvc "github.com/jvacosta/dailyfish-backend/internal/auth"
	"github.com/jvacosta/dailyfish-backend/internal/catalog"
	pkgauth "github.com/jvacosta/dailyfish-backend/pkg/auth"
	"github.com/jvacosta/dailyfish-backend/pkg/config"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
	"github.com/jvacosta/dailyfish-backend/pkg/logger"
)

type stubCatalogService struct {
	catalog.Service
	categories []catalog.CategoryDTO
}

func (s stubCatalogService) ListCategories(context.Context) ([]catalog.CategoryDTO, error) {
	return s.categories, nil
}

type stubRouterAuthService struct{}

func (stubRouterAuthService) Register(context.Context, authsvc.RegisterRequest) (*authsvc.RegisterResponse, error) {
	return &authsvc.RegisterResponse{}, nil
}

func (stubRouterAuthService) Login(context.Context, authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	return &authsvc.LoginResponse{AccessToken: "token"}, nil
}

func testRouterConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "dailyfish-test",
			ExpirationMinutes: 15,
		},
	}
}

func newTestRouter(t *testing.T, services Services) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	return NewRouter(testRouterConfig(), logg, nil, nil, nil, services)
}

func mintToken(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testRouterConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterHealthLive(t *testing.T) {
	router := newTestRouter(t, Services{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-DailyFish-Env") != "test" {
		t.Fatal("expected environment header")
	}
}

func TestRouterPublicCatalogNeedsNoAuth(t *testing.T) {
	router := newTestRouter(t, Services{Catalog: stubCatalogService{}})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/categories", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRouterProtectedRoutesRejectAnonymous(t *testing.T) {
	router := newTestRouter(t, Services{})

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/cart/"},
		{http.MethodGet, "/api/v1/orders/"},
		{http.MethodGet, "/api/v1/messages/"},
		{http.MethodGet, "/api/admin/v1/orders/"},
	}
	for _, tc := range paths {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(tc.method, tc.path, nil))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestRouterAdminRoutesRejectBuyers(t *testing.T) {
	router := newTestRouter(t, Services{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleBuyer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRouterLoginRouteWired(t *testing.T) {
	router := newTestRouter(t, Services{Auth: stubRouterAuthService{}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"identifier":"mila","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}
