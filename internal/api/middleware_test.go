package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func authTestHandler(t *testing.T, key string) http.Handler {
	t.Helper()
	return APIKeyAuth(key)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAPIKeyAuth(t *testing.T) {
	handler := authTestHandler(t, "secret-key")

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
	}{
		{"missing key", "", "", http.StatusUnauthorized},
		{"wrong key via header", "X-API-Key", "nope", http.StatusForbidden},
		{"wrong key via bearer", "Authorization", "Bearer nope", http.StatusForbidden},
		{"valid key via header", "X-API-Key", "secret-key", http.StatusOK},
		{"valid key via bearer", "Authorization", "Bearer secret-key", http.StatusOK},
		{"malformed authorization scheme", "Authorization", "Basic secret-key", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/renders", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK && !strings.Contains(rec.Body.String(), "error") {
				t.Errorf("error response missing error field: %s", rec.Body.String())
			}
		})
	}
}

func TestAPIKeyAuthHeaderTakesPrecedence(t *testing.T) {
	handler := authTestHandler(t, "secret-key")

	req := httptest.NewRequest(http.MethodPost, "/renders", nil)
	req.Header.Set("X-API-Key", "secret-key")
	req.Header.Set("Authorization", "Bearer stale-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("X-API-Key should win over Authorization, got %d", rec.Code)
	}
}
