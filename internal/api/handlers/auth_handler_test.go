package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"taskhub/internal/pkg/errors"
	"taskhub/internal/platform/auth"
	"taskhub/internal/platform/config"
	"taskhub/internal/platform/database"
	"taskhub/internal/platform/repositories"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func newAuthHandler(db *sql.DB) *AuthHandler {
	tokenSvc := auth.NewTokenService(config.JWTConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	return NewAuthHandler(repositories.NewUserRepository(db), repositories.NewOrganizationRepository(db), tokenSvc)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errors.ErrorResponse {
	t.Helper()
	var resp errors.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp
}

func TestCreateOrganization_DuplicateUsernameConflicts(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	h := newAuthHandler(db)

	rec := postJSON(t, h.CreateOrganization, map[string]interface{}{
		"name": "Acme", "slug": "acme",
		"email": "owner@acme.test", "username": "owner", "password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Fresh slug and email, but the username is taken.
	rec = postJSON(t, h.CreateOrganization, map[string]interface{}{
		"name": "Beta", "slug": "beta",
		"email": "owner@beta.test", "username": "owner", "password": "password123",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp := decodeError(t, rec); resp.Code != errors.ErrCodeConflict {
		t.Errorf("Expected code %s, got %s", errors.ErrCodeConflict, resp.Code)
	}
}

func TestRegister_DuplicateFieldsConflict(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	h := newAuthHandler(db)

	rec := postJSON(t, h.CreateOrganization, map[string]interface{}{
		"name": "Acme", "slug": "acme",
		"email": "owner@acme.test", "username": "owner", "password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Organization struct {
			ID string `json:"id"`
		} `json:"organization"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("Failed to decode bootstrap response: %v", err)
	}
	orgID := created.Organization.ID

	t.Run("Duplicate Username", func(t *testing.T) {
		rec := postJSON(t, h.Register, map[string]interface{}{
			"organization_id": orgID,
			"email":           "second@acme.test", "username": "owner", "password": "password123",
		})
		if rec.Code != http.StatusConflict {
			t.Fatalf("Expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
		if resp := decodeError(t, rec); resp.Code != errors.ErrCodeConflict {
			t.Errorf("Expected code %s, got %s", errors.ErrCodeConflict, resp.Code)
		}
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		rec := postJSON(t, h.Register, map[string]interface{}{
			"organization_id": orgID,
			"email":           "owner@acme.test", "username": "newbie", "password": "password123",
		})
		if rec.Code != http.StatusConflict {
			t.Fatalf("Expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("Fresh User", func(t *testing.T) {
		rec := postJSON(t, h.Register, map[string]interface{}{
			"organization_id": orgID,
			"email":           "fresh@acme.test", "username": "fresh", "password": "password123",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}
