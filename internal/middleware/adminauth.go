package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "github.com/facilitair/site-server-go/internal/errors"
	"github.com/facilitair/site-server-go/internal/model"
)

type contextKey string

const AdminSessionContextKey contextKey = "admin_session"

func GetAdminSession(ctx context.Context) *model.AdminSession {
	if session, ok := ctx.Value(AdminSessionContextKey).(*model.AdminSession); ok {
		return session
	}
	return nil
}

// AdminTokenVerifier validates a bearer token and returns its session.
type AdminTokenVerifier interface {
	VerifyAdminToken(ctx context.Context, token string) (*model.AdminSession, error)
}

// AdminAuthMiddleware guards the beta admin endpoints with the session
// tokens issued at admin login.
type AdminAuthMiddleware struct {
	verifier AdminTokenVerifier
}

func NewAdminAuthMiddleware(verifier AdminTokenVerifier) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{verifier: verifier}
}

func (m *AdminAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing admin token",
			})
			return
		}

		session, err := m.verifier.VerifyAdminToken(r.Context(), token)
		if err != nil {
			if apperrors.GetCode(err) == apperrors.ErrCodeInvalidToken {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "Invalid or expired admin token",
				})
				return
			}
			log.Error().Err(err).Msg("admin auth middleware: verification error")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Authentication failed",
			})
			return
		}

		ctx := context.WithValue(r.Context(), AdminSessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
