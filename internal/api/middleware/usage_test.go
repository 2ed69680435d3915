package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	apiContext "taskhub/internal/api/context"
	"taskhub/internal/platform/auth"
	"taskhub/internal/platform/repositories"
)

func TestUsageMiddleware(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	middleware := NewUsageMiddleware(repositories.NewUsageLogRepository(db))

	t.Run("Records Authenticated Request", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO usage_logs").
			WithArgs(sqlmock.AnyArg(), "org1", "/api/v1/items", "GET", http.StatusTeapot, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		req, _ := http.NewRequest("GET", "/api/v1/items", nil)
		claims := &auth.Claims{UserID: "u1", OrganizationID: "org1"}
		req = req.WithContext(context.WithValue(req.Context(), apiContext.Claims, claims))

		rr := httptest.NewRecorder()
		middleware.Handle(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}).ServeHTTP(rr, req)

		if rr.Code != http.StatusTeapot {
			t.Errorf("Middleware must not alter the response, got %d", rr.Code)
		}
	})

	t.Run("Skips Anonymous Request", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/health", nil)
		rr := httptest.NewRecorder()
		middleware.Handle(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}).ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rr.Code)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet sqlmock expectations: %v", err)
	}
}
