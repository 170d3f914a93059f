package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/facilitair/site-server-go/internal/errors"
)

const (
	resendEndpoint = "https://api.resend.com/emails"
	sendTimeout    = 10 * time.Second
)

// Announcement is the admin-supplied content of a bulk mailing. The
// unsubscribe footer is appended per recipient.
type Announcement struct {
	Subject  string `json:"subject"`
	Title    string `json:"title"`
	Intro    string `json:"intro"`
	Body     string `json:"body"`
	LinkURL  string `json:"linkUrl,omitempty"`
	LinkText string `json:"linkText,omitempty"`
}

// Mailer sends the transactional emails of the subscription flow.
type Mailer interface {
	SendConfirmation(ctx context.Context, email, confirmationToken string) error
	SendSurveyInvite(ctx context.Context, email, surveyToken string) error
	SendAnnouncement(ctx context.Context, email, unsubscribeToken string, a Announcement) error
}

// ResendMailer delivers mail through the Resend REST API.
type ResendMailer struct {
	apiKey   string
	from     string
	baseURL  string
	endpoint string
	client   *http.Client
}

func NewResendMailer(apiKey, from, baseURL string) *ResendMailer {
	return &ResendMailer{
		apiKey:   apiKey,
		from:     from,
		baseURL:  baseURL,
		endpoint: resendEndpoint,
		client:   &http.Client{Timeout: sendTimeout},
	}
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (m *ResendMailer) send(ctx context.Context, to, subject, html string) error {
	body, err := json.Marshal(sendRequest{
		From:    m.from,
		To:      to,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeExternal, "failed to encode email request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeExternal, "failed to build email request", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return apperrors.External("resend", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return apperrors.External("resend", fmt.Errorf("status %d: %s", resp.StatusCode, string(detail)))
	}

	return nil
}

func (m *ResendMailer) SendConfirmation(ctx context.Context, email, confirmationToken string) error {
	var html bytes.Buffer
	err := confirmationTmpl.Execute(&html, confirmationData{
		ConfirmURL: fmt.Sprintf("%s/api/confirm/%s", m.baseURL, confirmationToken),
		Email:      email,
	})
	if err != nil {
		return apperrors.Internal("failed to render confirmation email").WithCause(err)
	}
	return m.send(ctx, email, "Confirm Your FACILITAIR Beta Access", html.String())
}

func (m *ResendMailer) SendSurveyInvite(ctx context.Context, email, surveyToken string) error {
	var html bytes.Buffer
	err := surveyTmpl.Execute(&html, surveyData{
		SurveyURL: fmt.Sprintf("%s/survey.html?token=%s", m.baseURL, surveyToken),
		Email:     email,
	})
	if err != nil {
		return apperrors.Internal("failed to render survey email").WithCause(err)
	}
	return m.send(ctx, email, "Welcome to FACILITAIR - Share Your Story", html.String())
}

func (m *ResendMailer) SendAnnouncement(ctx context.Context, email, unsubscribeToken string, a Announcement) error {
	linkText := a.LinkText
	if a.LinkURL != "" && linkText == "" {
		linkText = "Read More"
	}

	var html bytes.Buffer
	err := announcementTmpl.Execute(&html, announcementData{
		Title:          a.Title,
		Intro:          a.Intro,
		Body:           a.Body,
		LinkURL:        a.LinkURL,
		LinkText:       linkText,
		Email:          email,
		UnsubscribeURL: fmt.Sprintf("%s/api/unsubscribe/%s", m.baseURL, unsubscribeToken),
	})
	if err != nil {
		return apperrors.Internal("failed to render announcement email").WithCause(err)
	}
	return m.send(ctx, email, a.Subject, html.String())
}

// DisabledMailer stands in when RESEND_API_KEY is not configured. Sends
// are logged and reported as failures so callers can surface the state.
type DisabledMailer struct{}

func (DisabledMailer) SendConfirmation(ctx context.Context, email, confirmationToken string) error {
	log.Warn().Str("email", email).Msg("email service not configured, confirmation not sent")
	return apperrors.New(apperrors.ErrCodeExternal, "email service not configured")
}

func (DisabledMailer) SendSurveyInvite(ctx context.Context, email, surveyToken string) error {
	log.Warn().Str("email", email).Msg("email service not configured, survey invite not sent")
	return apperrors.New(apperrors.ErrCodeExternal, "email service not configured")
}

func (DisabledMailer) SendAnnouncement(ctx context.Context, email, unsubscribeToken string, a Announcement) error {
	log.Warn().Str("email", email).Msg("email service not configured, announcement not sent")
	return apperrors.New(apperrors.ErrCodeExternal, "email service not configured")
}
