package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventBetaLoginSuccess  EventType = "beta_login_success"
	EventBetaLoginFailure  EventType = "beta_login_failure"
	EventAdminLoginSuccess EventType = "admin_login_success"
	EventAdminLoginFailure EventType = "admin_login_failure"
	EventPasswordGenerate  EventType = "password_generate"
	EventPasswordRevoke    EventType = "password_revoke"
	EventSessionCreate     EventType = "session_create"
	EventSessionDelete     EventType = "session_delete"
	EventSubscriberDelete  EventType = "subscriber_delete"
	EventAnnouncementSend  EventType = "announcement_send"
	EventRateLimitExceed   EventType = "rate_limit_exceeded"
	EventAuthFailure       EventType = "auth_failure"
)

type Event struct {
	Type       EventType
	PasswordID int64
	Label      string
	IP         string
	UserAgent  string
	Details    map[string]interface{}
}

func Log(ctx context.Context, event Event) {
	logger := log.With().
		Str("audit", "security").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.PasswordID != 0 {
		logger = logger.With().Int64("password_id", event.PasswordID).Logger()
	}
	if event.Label != "" {
		logger = logger.With().Str("label", event.Label).Logger()
	}
	if event.IP != "" {
		logger = logger.With().Str("ip", event.IP).Logger()
	}
	if event.UserAgent != "" {
		logger = logger.With().Str("user_agent", event.UserAgent).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("security audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}

func LogFromRequest(r *http.Request, event Event) {
	event.IP = GetClientIP(r)
	event.UserAgent = r.UserAgent()
	Log(r.Context(), event)
}

// GetClientIP resolves the caller address behind the reverse proxy.
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
