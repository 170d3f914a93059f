package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/facilitair/site-server-go/internal/analytics"
	"github.com/facilitair/site-server-go/internal/audit"
	apperrors "github.com/facilitair/site-server-go/internal/errors"
	"github.com/facilitair/site-server-go/internal/mail"
	"github.com/facilitair/site-server-go/internal/service"
)

// AdminHandler exposes the X-API-Key-protected subscriber admin surface:
// stats, listing, deletion, survey export, bulk mailings and the traffic
// analytics proxy.
type AdminHandler struct {
	subscribers *service.SubscriberService
	analytics   *analytics.Client
}

func NewAdminHandler(subscribers *service.SubscriberService, analyticsClient *analytics.Client) *AdminHandler {
	return &AdminHandler{
		subscribers: subscribers,
		analytics:   analyticsClient,
	}
}

// Stats handles GET /api/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.subscribers.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("stats query failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListSubscribers handles GET /api/subscribers.
func (h *AdminHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	page := ParsePagination(r)

	subscribers, total, err := h.subscribers.ListSubscribers(r.Context(), page.Limit, page.Offset)
	if err != nil {
		log.Error().Err(err).Msg("subscriber list failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":       len(subscribers),
		"total":       total,
		"limit":       page.Limit,
		"offset":      page.Offset,
		"subscribers": subscribers,
	})
}

// DeleteSubscriber handles DELETE /api/subscribers/{id}.
func (h *AdminHandler) DeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid subscriber id"})
		return
	}

	if err := h.subscribers.DeleteSubscriber(r.Context(), id); err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeNotFound {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "Subscriber not found"})
			return
		}
		log.Error().Err(err).Msg("subscriber delete failed")
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventSubscriberDelete,
		Details: map[string]interface{}{"subscriber_id": id},
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Subscriber deleted successfully",
	})
}

// SurveyResponses handles GET /api/survey-responses.
func (h *AdminHandler) SurveyResponses(w http.ResponseWriter, r *http.Request) {
	responses, err := h.subscribers.SurveyResponses(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("survey responses query failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(responses),
		"responses": responses,
	})
}

// SendAnnouncement handles POST /api/send-announcement. With an emails
// filter only those confirmed subscribers are mailed; without one the
// whole confirmed list is.
func (h *AdminHandler) SendAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		mail.Announcement
		Emails []string `json:"emails,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}

	report, err := h.subscribers.SendAnnouncement(r.Context(), req.Announcement, req.Emails)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeMissingRequired {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Subject required"})
			return
		}
		log.Error().Err(err).Msg("announcement send failed")
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type: audit.EventAnnouncementSend,
		Details: map[string]interface{}{
			"sent":   report.Sent,
			"failed": report.Failed,
		},
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"sent":      report.Sent,
		"failed":    report.Failed,
		"total":     report.Total,
		"requested": report.Requested,
		"errors":    report.Errors,
	})
}

// CloudflareAnalytics handles GET /api/cloudflare-analytics.
func (h *AdminHandler) CloudflareAnalytics(w http.ResponseWriter, r *http.Request) {
	if h.analytics == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":   "Cloudflare Analytics not configured",
			"message": "Set CLOUDFLARE_API_KEY, CLOUDFLARE_EMAIL, and CLOUDFLARE_ZONE_ID",
		})
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = "day"
	}

	report, err := h.analytics.FetchReport(r.Context(), period)
	if err != nil {
		log.Error().Err(err).Msg("analytics fetch failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
