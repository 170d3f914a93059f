package middleware

import (
	"net/http"

	"github.com/facilitair/site-server-go/internal/audit"
	"github.com/facilitair/site-server-go/internal/util"
)

// APIKeyMiddleware guards the subscriber admin endpoints with the static
// X-API-Key header. Comparison is constant time over the key hashes so
// length is not observable either.
type APIKeyMiddleware struct {
	apiKeyHash string
	configured bool
}

func NewAPIKeyMiddleware(apiKey string) *APIKeyMiddleware {
	return &APIKeyMiddleware{
		apiKeyHash: util.HashToken(apiKey),
		configured: apiKey != "",
	}
}

func (m *APIKeyMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if !m.configured || key == "" || !util.ConstantTimeEqual(util.HashToken(key), m.apiKeyHash) {
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventAuthFailure,
				Details: map[string]interface{}{"path": r.URL.Path},
			})
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Unauthorized",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
