package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/facilitair/site-server-go/internal/audit"
	apperrors "github.com/facilitair/site-server-go/internal/errors"
	"github.com/facilitair/site-server-go/internal/model"
	"github.com/facilitair/site-server-go/internal/service"
)

// SubscriberHandler exposes the public waitlist flow: subscribe,
// confirm, survey, unsubscribe. The confirm and unsubscribe links land
// in email clients, so those two render HTML instead of JSON.
type SubscriberHandler struct {
	subscribers *service.SubscriberService
}

func NewSubscriberHandler(subscribers *service.SubscriberService) *SubscriberHandler {
	return &SubscriberHandler{subscribers: subscribers}
}

// Subscribe handles POST /api/subscribe.
func (h *SubscriberHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Invalid email address",
		})
		return
	}

	ip, userAgent := clientMeta(r)
	already, err := h.subscribers.Subscribe(r.Context(), req.Email, ip, userAgent)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeValidation {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"message": "Invalid email address",
			})
			return
		}
		log.Error().Err(err).Msg("subscribe failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "Server error. Please try again later.",
		})
		return
	}

	message := "Successfully subscribed! Check your email for confirmation."
	if already {
		message = "This email is already subscribed!"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": message,
	})
}

// Confirm handles GET /api/confirm/{token} and renders an HTML page.
func (h *SubscriberHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	result, err := h.subscribers.Confirm(r.Context(), token)
	if err != nil {
		log.Error().Err(err).Msg("confirm failed")
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	switch result {
	case service.ConfirmSuccess:
		writePage(w, http.StatusOK, pageData{
			Title:     "Email Confirmed",
			Heading:   "Email Confirmed!",
			CheckMark: true,
			Lines: []string{
				"Welcome to the FACILITAIR beta waitlist!",
				"We've sent you a follow-up email with a quick survey. Your feedback will help us tailor the beta experience to your needs.",
			},
		})
	case service.ConfirmAlreadyConfirmed:
		writePage(w, http.StatusOK, pageData{
			Title:   "Already Confirmed",
			Heading: "Already Confirmed",
			Lines:   []string{"Your email has already been confirmed. You're all set!"},
		})
	default:
		writePage(w, http.StatusNotFound, pageData{
			Title:   "Invalid Confirmation Link",
			Heading: "Invalid Confirmation Link",
			Lines:   []string{"This confirmation link is invalid or has already been used."},
		})
	}
}

// SubmitSurvey handles POST /api/survey.
func (h *SubscriberHandler) SubmitSurvey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token            string  `json:"token"`
		PlannedUse       *string `json:"plannedUse"`
		AnticipatedUsage *string `json:"anticipatedUsage"`
		HowFound         *string `json:"howFound"`
		Background       *string `json:"background"`
		AdditionalInfo   *string `json:"additionalInfo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Survey token required",
		})
		return
	}

	already, err := h.subscribers.SubmitSurvey(r.Context(), req.Token, model.CreateSurveyParams{
		PlannedUse:       req.PlannedUse,
		AnticipatedUsage: req.AnticipatedUsage,
		HowFound:         req.HowFound,
		Background:       req.Background,
		AdditionalInfo:   req.AdditionalInfo,
	})
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeNotFound {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"success": false,
				"message": "Invalid survey link or email not confirmed",
			})
			return
		}
		log.Error().Err(err).Msg("survey submission failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "Server error. Please try again later.",
		})
		return
	}

	message := "Thank you for completing the survey!"
	if already {
		message = "Survey already completed. Thank you!"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": message,
	})
}

// Unsubscribe handles GET /api/unsubscribe/{token} and renders HTML.
func (h *SubscriberHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	removed, err := h.subscribers.Unsubscribe(r.Context(), token)
	if err != nil {
		log.Error().Err(err).Msg("unsubscribe failed")
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	if !removed {
		writePage(w, http.StatusNotFound, pageData{
			Title:   "Invalid Token",
			Heading: "Invalid Unsubscribe Link",
			Lines:   []string{"This unsubscribe link is invalid or has already been used."},
		})
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventSubscriberDelete})
	writePage(w, http.StatusOK, pageData{
		Title:   "Unsubscribed",
		Heading: "Successfully Unsubscribed",
		Lines:   []string{"You've been removed from the FACILITAIR beta email list."},
	})
}
