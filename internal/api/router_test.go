package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	apiContext "taskhub/internal/api/context"
	"taskhub/internal/platform/auth"
	"taskhub/internal/platform/models"
)

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		minRole  string
		role     string
		wantCode int
	}{
		{"Viewer Blocked From Admin Route", models.RoleAdmin, models.RoleViewer, http.StatusForbidden},
		{"Member Blocked From Admin Route", models.RoleAdmin, models.RoleMember, http.StatusForbidden},
		{"Admin Passes Admin Route", models.RoleAdmin, models.RoleAdmin, http.StatusOK},
		{"Owner Passes Member Route", models.RoleMember, models.RoleOwner, http.StatusOK},
		{"Viewer Blocked From Member Route", models.RoleMember, models.RoleViewer, http.StatusForbidden},
		{"Admin Blocked From Owner Route", models.RoleOwner, models.RoleAdmin, http.StatusForbidden},
		{"Unknown Role Blocked", models.RoleViewer, "intern", http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := requireRole(tc.minRole)(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req, _ := http.NewRequest("GET", "/", nil)
			claims := &auth.Claims{UserID: "u1", OrganizationID: "org1", Role: tc.role}
			req = req.WithContext(context.WithValue(req.Context(), apiContext.Claims, claims))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tc.wantCode {
				t.Errorf("Expected %d, got %d", tc.wantCode, rr.Code)
			}
		})
	}
}

func TestRequireRoleWithoutClaims(t *testing.T) {
	handler := requireRole(models.RoleViewer)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req, _ := http.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 without claims, got %d", rr.Code)
	}
}
