package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/facilitair/site-server-go/internal/config"
	apperrors "github.com/facilitair/site-server-go/internal/errors"
	"github.com/facilitair/site-server-go/internal/mail"
	"github.com/facilitair/site-server-go/internal/model"
	"github.com/facilitair/site-server-go/internal/repository"
	"github.com/facilitair/site-server-go/internal/util"
)

// SubscriberService owns the waitlist: double opt-in signups, the survey
// follow-up, unsubscribes, and the admin's bulk mailings.
type SubscriberService struct {
	subscribers repository.SubscriberRepository
	surveys     repository.SurveyRepository
	mailer      mail.Mailer
}

func NewSubscriberService(
	subscribers repository.SubscriberRepository,
	surveys repository.SurveyRepository,
	mailer mail.Mailer,
) *SubscriberService {
	return &SubscriberService{
		subscribers: subscribers,
		surveys:     surveys,
		mailer:      mailer,
	}
}

// Subscribe records a new signup and sends the confirmation email in the
// background. A duplicate email is reported as success so the endpoint
// does not leak who is already on the list.
func (s *SubscriberService) Subscribe(ctx context.Context, email string, ip, userAgent *string) (alreadySubscribed bool, err error) {
	if !util.IsValidEmail(email) {
		return false, apperrors.ValidationError("Invalid email address")
	}

	normalized := strings.ToLower(strings.TrimSpace(email))
	emailHash := util.HashSecret(normalized)

	existing, err := s.subscribers.FindByEmailHash(ctx, emailHash)
	if err != nil {
		return false, apperrors.Database(err)
	}
	if existing != nil {
		return true, nil
	}

	confirmationToken, err := util.GenerateToken()
	if err != nil {
		return false, apperrors.Internal("failed to generate confirmation token").WithCause(err)
	}
	unsubscribeToken, err := util.GenerateToken()
	if err != nil {
		return false, apperrors.Internal("failed to generate unsubscribe token").WithCause(err)
	}

	sub, err := s.subscribers.Create(ctx, model.CreateSubscriberParams{
		Email:             normalized,
		EmailHash:         emailHash,
		IPAddress:         ip,
		UserAgent:         userAgent,
		ConfirmationToken: confirmationToken,
		UnsubscribeToken:  unsubscribeToken,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return true, nil
		}
		return false, apperrors.Database(err)
	}

	log.Info().Int64("subscriber_id", sub.ID).Msg("subscriber created")

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.mailer.SendConfirmation(sendCtx, normalized, confirmationToken); err != nil {
			log.Error().Err(err).Int64("subscriber_id", sub.ID).Msg("failed to send confirmation email")
		}
	}()

	return false, nil
}

// ConfirmResult tells the handler which confirmation page to render.
type ConfirmResult int

const (
	ConfirmInvalid ConfirmResult = iota
	ConfirmAlreadyConfirmed
	ConfirmSuccess
)

// Confirm marks the subscriber behind a confirmation token as confirmed.
// The token is single-use; on success a survey invite goes out in the
// background, addressed by the permanent unsubscribe token.
func (s *SubscriberService) Confirm(ctx context.Context, token string) (ConfirmResult, error) {
	if token == "" {
		return ConfirmInvalid, nil
	}

	sub, err := s.subscribers.FindByConfirmationToken(ctx, token)
	if err != nil {
		return ConfirmInvalid, apperrors.Database(err)
	}
	if sub == nil {
		return ConfirmInvalid, nil
	}
	if sub.Confirmed {
		return ConfirmAlreadyConfirmed, nil
	}

	if err := s.subscribers.MarkConfirmed(ctx, sub.ID); err != nil {
		return ConfirmInvalid, apperrors.Database(err)
	}

	log.Info().Int64("subscriber_id", sub.ID).Msg("subscriber confirmed")

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.mailer.SendSurveyInvite(sendCtx, sub.Email, sub.UnsubscribeToken); err != nil {
			log.Error().Err(err).Int64("subscriber_id", sub.ID).Msg("failed to send survey invite")
		}
	}()

	return ConfirmSuccess, nil
}

// SubmitSurvey stores a survey response for the confirmed subscriber
// behind the token. Submitting twice is reported as already completed
// rather than an error.
func (s *SubscriberService) SubmitSurvey(ctx context.Context, token string, params model.CreateSurveyParams) (alreadyCompleted bool, err error) {
	sub, err := s.subscribers.FindByUnsubscribeToken(ctx, token)
	if err != nil {
		return false, apperrors.Database(err)
	}
	if sub == nil || !sub.Confirmed {
		return false, apperrors.NotFound("Survey link")
	}
	if sub.SurveyCompleted {
		return true, nil
	}

	params.SubscriberID = sub.ID
	if _, err := s.surveys.Create(ctx, params); err != nil {
		return false, apperrors.Database(err)
	}
	if err := s.subscribers.MarkSurveyCompleted(ctx, sub.ID); err != nil {
		return false, apperrors.Database(err)
	}

	log.Info().Int64("subscriber_id", sub.ID).Msg("survey submitted")
	return false, nil
}

// Unsubscribe deletes the subscriber behind the token. Reports whether
// a row was actually removed.
func (s *SubscriberService) Unsubscribe(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	deleted, err := s.subscribers.DeleteByUnsubscribeToken(ctx, token)
	if err != nil {
		return false, apperrors.Database(err)
	}
	if deleted > 0 {
		log.Info().Msg("subscriber unsubscribed")
	}
	return deleted > 0, nil
}

// Stats returns the waitlist counters for the admin dashboard.
func (s *SubscriberService) Stats(ctx context.Context) (*model.SubscriberStats, error) {
	stats, err := s.subscribers.Stats(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return stats, nil
}

// ListSubscribers returns a page of subscribers plus the total count.
func (s *SubscriberService) ListSubscribers(ctx context.Context, limit, offset int) ([]model.Subscriber, int, error) {
	subscribers, total, err := s.subscribers.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	return subscribers, total, nil
}

// DeleteSubscriber removes a subscriber by id. Survey rows go with it
// via the foreign key cascade.
func (s *SubscriberService) DeleteSubscriber(ctx context.Context, id int64) error {
	deleted, err := s.subscribers.Delete(ctx, id)
	if err != nil {
		return apperrors.Database(err)
	}
	if deleted == 0 {
		return apperrors.NotFound("Subscriber")
	}
	log.Info().Int64("subscriber_id", id).Msg("subscriber deleted")
	return nil
}

// SurveyResponses returns all survey rows joined with their subscriber.
func (s *SubscriberService) SurveyResponses(ctx context.Context) ([]model.SurveyResponse, error) {
	responses, err := s.surveys.FindResponses(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return responses, nil
}

// SendError records one failed recipient of a bulk mailing.
type SendError struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// SendReport summarizes a bulk mailing.
type SendReport struct {
	Sent      int         `json:"sent"`
	Failed    int         `json:"failed"`
	Total     int         `json:"total"`
	Requested int         `json:"requested,omitempty"`
	Errors    []SendError `json:"errors,omitempty"`
}

// SendAnnouncement mails every confirmed subscriber, or only those whose
// email appears in the emails filter when it is non-empty. Sends are
// paced to stay inside the provider's rate limit, and one failure never
// aborts the run.
func (s *SubscriberService) SendAnnouncement(ctx context.Context, announcement mail.Announcement, emails []string) (*SendReport, error) {
	if announcement.Subject == "" {
		return nil, apperrors.MissingRequired("subject")
	}

	confirmed, err := s.subscribers.FindConfirmed(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	recipients := confirmed
	report := &SendReport{}
	if len(emails) > 0 {
		report.Requested = len(emails)
		wanted := make(map[string]bool, len(emails))
		for _, email := range emails {
			wanted[strings.ToLower(strings.TrimSpace(email))] = true
		}
		recipients = recipients[:0:0]
		for _, sub := range confirmed {
			if wanted[sub.Email] {
				recipients = append(recipients, sub)
			}
		}
	}
	report.Total = len(recipients)

	for i, sub := range recipients {
		if err := ctx.Err(); err != nil {
			return report, apperrors.Internal("announcement aborted").WithCause(err)
		}

		if err := s.mailer.SendAnnouncement(ctx, sub.Email, sub.UnsubscribeToken, announcement); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, SendError{Email: sub.Email, Error: err.Error()})
			log.Warn().Err(err).Str("email", sub.Email).Msg("announcement send failed")
		} else {
			report.Sent++
		}

		if i < len(recipients)-1 {
			select {
			case <-time.After(config.BulkSendPause):
			case <-ctx.Done():
				return report, apperrors.Internal("announcement aborted").WithCause(ctx.Err())
			}
		}
	}

	log.Info().Int("sent", report.Sent).Int("failed", report.Failed).Msg("announcement run complete")
	return report, nil
}
