package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"server/internal/domain"
)

const testSecret = "test-secret"

func TestSignAndVerifyToken(t *testing.T) {
	token, err := SignToken(testSecret, "user-1", domain.UserRoleCaregiver)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	claims, err := VerifyToken(testSecret, token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("subject = %q, want user-1", claims.Subject)
	}
	if claims.Role != "caregiver" {
		t.Errorf("role = %q, want caregiver", claims.Role)
	}
	if claims.Issuer != "pawhaven" {
		t.Errorf("issuer = %q, want pawhaven", claims.Issuer)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := SignToken(testSecret, "user-1", domain.UserRoleUser)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	if _, err := VerifyToken("other-secret", token); err == nil {
		t.Error("expected verification to fail with a different secret")
	}
}

func TestAuthMiddleware(t *testing.T) {
	var gotUserID string
	var gotRole domain.UserRole
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotRole = UserRoleFromContext(r.Context())
	})
	handler := Auth(testSecret)(next)

	token, err := SignToken(testSecret, "user-42", domain.UserRoleAdmin)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUserID != "user-42" {
		t.Errorf("user id = %q, want user-42", gotUserID)
	}
	if gotRole != domain.UserRoleAdmin {
		t.Errorf("role = %q, want admin", gotRole)
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run")
	})
	handler := Auth(testSecret)(next)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := RequireRole(domain.UserRoleAdmin)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ContextWithUser(req.Context(), "u1", domain.UserRoleAdmin))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ContextWithUser(req.Context(), "u2", domain.UserRoleUser))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("user status = %d, want 403", rec.Code)
	}
}
