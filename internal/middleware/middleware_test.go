package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/facilitair/site-server-go/internal/errors"
	"github.com/facilitair/site-server-go/internal/model"
	"github.com/facilitair/site-server-go/internal/ratelimit"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyMiddleware(t *testing.T) {
	t.Run("accepts the configured key", func(t *testing.T) {
		handler := NewAPIKeyMiddleware("secret-key").Handler(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		req.Header.Set("X-API-Key", "secret-key")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects a wrong key", func(t *testing.T) {
		handler := NewAPIKeyMiddleware("secret-key").Handler(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		req.Header.Set("X-API-Key", "guess")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a missing key", func(t *testing.T) {
		handler := NewAPIKeyMiddleware("secret-key").Handler(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects everything when no key configured", func(t *testing.T) {
		handler := NewAPIKeyMiddleware("").Handler(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		req.Header.Set("X-API-Key", "")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

type stubVerifier struct {
	session *model.AdminSession
	err     error
}

func (s *stubVerifier) VerifyAdminToken(ctx context.Context, token string) (*model.AdminSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func TestAdminAuthMiddleware(t *testing.T) {
	t.Run("accepts valid bearer token and sets context", func(t *testing.T) {
		session := &model.AdminSession{ID: 7, ExpiresAt: time.Now().Add(time.Hour)}
		verifier := &stubVerifier{session: session}

		var got *model.AdminSession
		handler := NewAdminAuthMiddleware(verifier).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = GetAdminSession(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/beta/passwords", nil)
		req.Header.Set("Authorization", "Bearer sometoken")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, int64(7), got.ID)
	})

	t.Run("rejects missing token", func(t *testing.T) {
		handler := NewAdminAuthMiddleware(&stubVerifier{}).Handler(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/api/beta/passwords", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects invalid token", func(t *testing.T) {
		verifier := &stubVerifier{err: apperrors.InvalidToken("Invalid admin session")}
		handler := NewAdminAuthMiddleware(verifier).Handler(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/api/beta/passwords", nil)
		req.Header.Set("Authorization", "Bearer expired")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("verification failure is a server error", func(t *testing.T) {
		verifier := &stubVerifier{err: apperrors.Database(assert.AnError)}
		handler := NewAdminAuthMiddleware(verifier).Handler(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/api/beta/passwords", nil)
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("allows under the limit and blocks over it", func(t *testing.T) {
		limiter := ratelimit.NewMemoryLimiter()
		handler := NewRateLimitMiddleware(limiter, "subscribe", 2, time.Minute).Handler(okHandler())

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/subscribe", nil)
			req.RemoteAddr = "1.2.3.4:1234"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/subscribe", nil)
		req.RemoteAddr = "1.2.3.4:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("different IPs are limited separately", func(t *testing.T) {
		limiter := ratelimit.NewMemoryLimiter()
		handler := NewRateLimitMiddleware(limiter, "login", 1, time.Minute).Handler(okHandler())

		first := httptest.NewRequest(http.MethodPost, "/api/beta/verify-password", nil)
		first.RemoteAddr = "1.1.1.1:1000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, first)
		assert.Equal(t, http.StatusOK, rec.Code)

		second := httptest.NewRequest(http.MethodPost, "/api/beta/verify-password", nil)
		second.RemoteAddr = "2.2.2.2:1000"
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, second)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestBodyLimitMiddleware(t *testing.T) {
	t.Run("rejects oversized declared bodies", func(t *testing.T) {
		handler := NewBodyLimitMiddleware(10).Handler(okHandler())

		req := httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(strings.Repeat("x", 100)))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("passes small bodies through", func(t *testing.T) {
		handler := NewBodyLimitMiddleware(1024).Handler(okHandler())

		req := httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader("tiny"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
