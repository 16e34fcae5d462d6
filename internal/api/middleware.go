package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// requestAPIKey extracts the caller's key from X-API-Key, falling back to a
// bearer token. Returns "" when neither is present.
func requestAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// APIKeyAuth gates the render endpoints behind a shared key. Health stays
// open; the router decides which routes sit behind this.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	expected := []byte(apiKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := requestAPIKey(r)
			if key == "" {
				respondError(w, http.StatusUnauthorized, "missing API key: set X-API-Key or Authorization: Bearer <key>")
				return
			}

			// Constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(key), expected) != 1 {
				respondError(w, http.StatusForbidden, "API key not recognized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
