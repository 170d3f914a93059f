package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/facilitair/site-server-go/internal/database"
	"github.com/facilitair/site-server-go/internal/model"
)

type BetaSessionRepository interface {
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.BetaSessionWithPassword, error)
	Create(ctx context.Context, params model.CreateBetaSessionParams) (*model.BetaSession, error)
	TouchActivity(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	DeleteByPasswordID(ctx context.Context, passwordID int64) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) BetaSessionRepository
}

type betaSessionRepo struct {
	db database.DBTX
}

func NewBetaSessionRepository(db *sqlx.DB) BetaSessionRepository {
	return &betaSessionRepo{db: db}
}

func (r *betaSessionRepo) WithTx(tx *sqlx.Tx) BetaSessionRepository {
	return &betaSessionRepo{db: tx}
}

// FindByTokenHash joins the owning password so a single query answers both
// the expiry and the revocation check.
func (r *betaSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.BetaSessionWithPassword, error) {
	var session model.BetaSessionWithPassword
	err := r.db.GetContext(ctx, &session, `
		SELECT s.*, p.revoked AS password_revoked
		FROM beta_sessions s
		JOIN beta_passwords p ON p.id = s.password_id
		WHERE s.token_hash = $1
	`, tokenHash)
	return HandleNotFound(&session, err)
}

func (r *betaSessionRepo) Create(ctx context.Context, params model.CreateBetaSessionParams) (*model.BetaSession, error) {
	var session model.BetaSession
	err := r.db.GetContext(ctx, &session, `
		INSERT INTO beta_sessions (token_hash, password_id, ip_address, user_agent, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.TokenHash, params.PasswordID, params.IPAddress, params.UserAgent, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *betaSessionRepo) TouchActivity(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE beta_sessions SET last_activity_at = $2 WHERE id = $1
	`, id, time.Now())
	return err
}

func (r *betaSessionRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM beta_sessions WHERE id = $1`, id)
	return err
}

func (r *betaSessionRepo) DeleteByPasswordID(ctx context.Context, passwordID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM beta_sessions WHERE password_id = $1
	`, passwordID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *betaSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM beta_sessions WHERE expires_at < NOW()
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
