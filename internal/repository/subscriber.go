package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/facilitair/site-server-go/internal/model"
)

type SubscriberRepository interface {
	FindByEmailHash(ctx context.Context, emailHash string) (*model.Subscriber, error)
	FindByConfirmationToken(ctx context.Context, token string) (*model.Subscriber, error)
	FindByUnsubscribeToken(ctx context.Context, token string) (*model.Subscriber, error)
	FindAll(ctx context.Context, limit, offset int) ([]model.Subscriber, int, error)
	FindConfirmed(ctx context.Context) ([]model.Subscriber, error)
	Create(ctx context.Context, params model.CreateSubscriberParams) (*model.Subscriber, error)
	MarkConfirmed(ctx context.Context, id int64) error
	MarkSurveyCompleted(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) (int64, error)
	DeleteByUnsubscribeToken(ctx context.Context, token string) (int64, error)
	Stats(ctx context.Context) (*model.SubscriberStats, error)
}

type subscriberRepo struct {
	db *sqlx.DB
}

func NewSubscriberRepository(db *sqlx.DB) SubscriberRepository {
	return &subscriberRepo{db: db}
}

func (r *subscriberRepo) FindByEmailHash(ctx context.Context, emailHash string) (*model.Subscriber, error) {
	var sub model.Subscriber
	err := r.db.GetContext(ctx, &sub, `
		SELECT * FROM subscribers WHERE email_hash = $1
	`, emailHash)
	return HandleNotFound(&sub, err)
}

func (r *subscriberRepo) FindByConfirmationToken(ctx context.Context, token string) (*model.Subscriber, error) {
	var sub model.Subscriber
	err := r.db.GetContext(ctx, &sub, `
		SELECT * FROM subscribers WHERE confirmation_token = $1
	`, token)
	return HandleNotFound(&sub, err)
}

func (r *subscriberRepo) FindByUnsubscribeToken(ctx context.Context, token string) (*model.Subscriber, error) {
	var sub model.Subscriber
	err := r.db.GetContext(ctx, &sub, `
		SELECT * FROM subscribers WHERE unsubscribe_token = $1
	`, token)
	return HandleNotFound(&sub, err)
}

func (r *subscriberRepo) FindAll(ctx context.Context, limit, offset int) ([]model.Subscriber, int, error) {
	subscribers := []model.Subscriber{}
	err := r.db.SelectContext(ctx, &subscribers, `
		SELECT * FROM subscribers
		ORDER BY subscribed_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM subscribers`); err != nil {
		return nil, 0, err
	}

	return subscribers, total, nil
}

func (r *subscriberRepo) FindConfirmed(ctx context.Context) ([]model.Subscriber, error) {
	subscribers := []model.Subscriber{}
	err := r.db.SelectContext(ctx, &subscribers, `
		SELECT * FROM subscribers WHERE confirmed = TRUE
		ORDER BY subscribed_at ASC
	`)
	if err != nil {
		return nil, err
	}
	return subscribers, nil
}

func (r *subscriberRepo) Create(ctx context.Context, params model.CreateSubscriberParams) (*model.Subscriber, error) {
	var sub model.Subscriber
	err := r.db.GetContext(ctx, &sub, `
		INSERT INTO subscribers (email, email_hash, ip_address, user_agent, confirmation_token, unsubscribe_token)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.Email, params.EmailHash, params.IPAddress, params.UserAgent, params.ConfirmationToken, params.UnsubscribeToken)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// MarkConfirmed clears the confirmation token so the link is single-use.
func (r *subscriberRepo) MarkConfirmed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE subscribers SET
			confirmed = TRUE,
			confirmed_at = $2,
			confirmation_token = NULL
		WHERE id = $1
	`, id, time.Now())
	return err
}

func (r *subscriberRepo) MarkSurveyCompleted(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE subscribers SET survey_completed = TRUE WHERE id = $1
	`, id)
	return err
}

func (r *subscriberRepo) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subscribers WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *subscriberRepo) DeleteByUnsubscribeToken(ctx context.Context, token string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subscribers WHERE unsubscribe_token = $1`, token)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *subscriberRepo) Stats(ctx context.Context) (*model.SubscriberStats, error) {
	var stats model.SubscriberStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE confirmed) AS confirmed,
			COUNT(*) FILTER (WHERE subscribed_at > NOW() - INTERVAL '7 days') AS recent_week
		FROM subscribers
	`)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
