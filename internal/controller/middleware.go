package controller

import (
	"crypto/subtle"
	"net/http"
)

const apiKeyHeader = "X-API-Key"

// withAPIKey enforces the API-key header on every endpoint via constant-time
// comparison, per spec.md §4.7/§6.
func (s *Service) withAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(apiKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}
