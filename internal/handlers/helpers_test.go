package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/colmward/hamper/internal/models"
	"github.com/colmward/hamper/internal/testutil"
)

func testUser() *models.User {
	now := time.Now()
	return &models.User{
		ID:          uuid.New(),
		Email:       "alice@test.com",
		DisplayName: "Alice",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// withUser attaches a signed-in user the way the auth middleware would.
func withUser(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(SetUserInContext(req.Context(), user))
}

func assertErrorResponse(t *testing.T, rr *httptest.ResponseRecorder, status int) {
	t.Helper()
	testutil.AssertStatus(t, rr, status)
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	if resp.Error == "" {
		t.Error("expected a non-empty error message")
	}
}
