package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jvacosta/dailyfish-backend/api/middleware"
	"github.com/jvacosta/dailyfish-backend/internal/catalog"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
)

type stubCatalogService struct {
	catalog.Service

	input catalog.ListProductsInput
}

func (s *stubCatalogService) ListProducts(_ context.Context, input catalog.ListProductsInput) (*catalog.ProductList, error) {
	s.input = input
	return &catalog.ProductList{Products: []catalog.ProductDTO{}}, nil
}

func TestListProductsAnonymousSeesAvailableOnly(t *testing.T) {
	svc := &stubCatalogService{}
	handler := ListProducts(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products?include_inactive=true", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !svc.input.Filters.AvailableOnly {
		t.Fatal("expected anonymous browse to be restricted to in-stock products")
	}
	if svc.input.Filters.IncludeInactive {
		t.Fatal("expected include_inactive to be denied without a staff role")
	}
}

func TestListProductsStaffSeesFullCatalog(t *testing.T) {
	svc := &stubCatalogService{}
	handler := ListProducts(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products?include_inactive=true", nil)
	req = req.WithContext(middleware.WithRole(req.Context(), string(enums.UserRoleAdmin)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.input.Filters.AvailableOnly {
		t.Fatal("expected staff to see out-of-stock products")
	}
	if !svc.input.Filters.IncludeInactive {
		t.Fatal("expected include_inactive to be honored for staff")
	}
}
