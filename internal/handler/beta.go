package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/facilitair/site-server-go/internal/audit"
	apperrors "github.com/facilitair/site-server-go/internal/errors"
	"github.com/facilitair/site-server-go/internal/service"
)

// BetaHandler exposes the beta gate: password verification for visitors
// and the token-protected admin endpoints.
type BetaHandler struct {
	beta *service.BetaService
}

func NewBetaHandler(beta *service.BetaService) *BetaHandler {
	return &BetaHandler{beta: beta}
}

func clientMeta(r *http.Request) (*string, *string) {
	ip := audit.GetClientIP(r)
	var ipPtr *string
	if ip != "" {
		ipPtr = &ip
	}
	var uaPtr *string
	if ua := r.UserAgent(); ua != "" {
		uaPtr = &ua
	}
	return ipPtr, uaPtr
}

// VerifyPassword handles POST /api/beta/verify.
func (h *BetaHandler) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Password required",
		})
		return
	}

	ip, userAgent := clientMeta(r)
	token, session, err := h.beta.VerifyPassword(r.Context(), req.Password, ip, userAgent)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeUnauthorized {
			audit.LogFromRequest(r, audit.Event{Type: audit.EventBetaLoginFailure})
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false,
				"error":   "Invalid password",
			})
			return
		}
		log.Error().Err(err).Msg("beta verify failed")
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:       audit.EventBetaLoginSuccess,
		PasswordID: session.PasswordID,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"session_token": token,
		"expires_at":    session.ExpiresAt.Format(time.RFC3339),
	})
}

// VerifySession handles POST /api/beta/verify-session. Invalid tokens
// are a negative result, not an error status.
func (h *BetaHandler) VerifySession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionToken string `json:"session_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"valid": false,
			"error": "Token required",
		})
		return
	}

	session, err := h.beta.VerifySession(r.Context(), req.SessionToken)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeInvalidToken {
			writeJSON(w, http.StatusOK, map[string]any{"valid": false})
			return
		}
		log.Error().Err(err).Msg("beta session verify failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid":      true,
		"expires_at": session.ExpiresAt.Format(time.RFC3339),
	})
}

// AdminAuth handles POST /api/beta/admin/auth.
func (h *BetaHandler) AdminAuth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Password required",
		})
		return
	}

	token, session, err := h.beta.AuthenticateAdmin(r.Context(), req.Password)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeUnauthorized {
			audit.LogFromRequest(r, audit.Event{Type: audit.EventAdminLoginFailure})
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false,
				"error":   "Invalid password",
			})
			return
		}
		log.Error().Err(err).Msg("admin auth failed")
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventAdminLoginSuccess})
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"token":      token,
		"expires_at": session.ExpiresAt.Format(time.RFC3339),
	})
}

// GeneratePassword handles POST /api/beta/admin/generate.
func (h *BetaHandler) GeneratePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Label) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Label required",
		})
		return
	}

	record, plaintext, err := h.beta.CreatePassword(r.Context(), strings.TrimSpace(req.Label))
	if err != nil {
		log.Error().Err(err).Msg("password generation failed")
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:       audit.EventPasswordGenerate,
		PasswordID: record.ID,
		Label:      record.Label,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"id":       record.ID,
		"password": plaintext,
		"label":    record.Label,
	})
}

// ListPasswords handles GET /api/beta/admin/list.
func (h *BetaHandler) ListPasswords(w http.ResponseWriter, r *http.Request) {
	passwords, err := h.beta.ListPasswords(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("password list failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"passwords": passwords,
	})
}

// RevokePassword handles POST /api/beta/admin/revoke.
func (h *BetaHandler) RevokePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Password required",
		})
		return
	}

	sessionsDeleted, err := h.beta.RevokePassword(r.Context(), req.Password)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeNotFound {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"success": false,
				"error":   "Password not found",
			})
			return
		}
		log.Error().Err(err).Msg("password revoke failed")
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventPasswordRevoke,
		Details: map[string]interface{}{"sessions_deleted": sessionsDeleted},
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"sessions_deleted": sessionsDeleted,
	})
}

// Logout handles POST /api/beta/admin/logout.
func (h *BetaHandler) Logout(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if err := h.beta.Logout(r.Context(), token); err != nil {
		log.Error().Err(err).Msg("admin logout failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
