package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jvacosta/dailyfish-backend/pkg/auth"
	"github.com/jvacosta/dailyfish-backend/pkg/config"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "dailyfish", ExpirationMinutes: 60}

func authHeader(t *testing.T, role enums.UserRole, userID uuid.UUID) string {
	t.Helper()
	token, err := auth.MintAccessToken(testJWT, time.Now(), auth.AccessTokenPayload{UserID: userID, Role: role})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestAuthRejectsBadCredentials(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed token", "Bearer invalid"},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
	}

	mw := Auth(testJWT, nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reached := false
			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if reached {
				t.Fatal("handler must not run for unauthenticated requests")
			}
		})
	}
}

func TestAuthPopulatesIdentityContext(t *testing.T) {
	userID := uuid.New()

	var gotUser, gotRole string
	handler := Auth(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", authHeader(t, enums.UserRoleBuyer, userID))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUser != userID.String() {
		t.Fatalf("user in context = %s, want %s", gotUser, userID)
	}
	if gotRole != string(enums.UserRoleBuyer) {
		t.Fatalf("role in context = %s, want buyer", gotRole)
	}
}

func TestAuthOptionalPassesAnonymous(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"garbage token", "Bearer not-a-jwt"},
	}

	mw := AuthOptional(testJWT, nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotRole string
			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotRole = RoleFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if gotRole != "" {
				t.Fatalf("role in context = %q, want anonymous", gotRole)
			}
		})
	}
}

func TestAuthOptionalPopulatesIdentityContext(t *testing.T) {
	userID := uuid.New()

	var gotUser, gotRole string
	handler := AuthOptional(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", authHeader(t, enums.UserRoleSeller, userID))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if gotUser != userID.String() {
		t.Fatalf("user in context = %s, want %s", gotUser, userID)
	}
	if gotRole != string(enums.UserRoleSeller) {
		t.Fatalf("role in context = %s, want seller", gotRole)
	}
}

func TestRequireStaffByRole(t *testing.T) {
	cases := []struct {
		role enums.UserRole
		want int
	}{
		{enums.UserRoleBuyer, http.StatusForbidden},
		{enums.UserRoleSeller, http.StatusOK},
		{enums.UserRoleAdmin, http.StatusOK},
	}

	mw := RequireStaff(nil)
	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithRole(req.Context(), string(tc.role)))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("role %s: status = %d, want %d", tc.role, rec.Code, tc.want)
			}
		})
	}
}
