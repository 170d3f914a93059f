package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/facilitair/site-server-go/internal/database"
	"github.com/facilitair/site-server-go/internal/model"
)

type BetaPasswordRepository interface {
	FindByHash(ctx context.Context, passwordHash string) (*model.BetaPassword, error)
	FindAll(ctx context.Context) ([]model.BetaPassword, error)
	Create(ctx context.Context, params model.CreateBetaPasswordParams) (*model.BetaPassword, error)
	RecordUse(ctx context.Context, id int64) error
	Revoke(ctx context.Context, passwordHash string) (int64, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) BetaPasswordRepository
}

type betaPasswordRepo struct {
	db database.DBTX
}

func NewBetaPasswordRepository(db *sqlx.DB) BetaPasswordRepository {
	return &betaPasswordRepo{db: db}
}

func (r *betaPasswordRepo) WithTx(tx *sqlx.Tx) BetaPasswordRepository {
	return &betaPasswordRepo{db: tx}
}

func (r *betaPasswordRepo) FindByHash(ctx context.Context, passwordHash string) (*model.BetaPassword, error) {
	var password model.BetaPassword
	err := r.db.GetContext(ctx, &password, `
		SELECT * FROM beta_passwords WHERE password_hash = $1
	`, passwordHash)
	return HandleNotFound(&password, err)
}

func (r *betaPasswordRepo) FindAll(ctx context.Context) ([]model.BetaPassword, error) {
	passwords := []model.BetaPassword{}
	err := r.db.SelectContext(ctx, &passwords, `
		SELECT * FROM beta_passwords
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return passwords, nil
}

func (r *betaPasswordRepo) Create(ctx context.Context, params model.CreateBetaPasswordParams) (*model.BetaPassword, error) {
	var password model.BetaPassword
	err := r.db.GetContext(ctx, &password, `
		INSERT INTO beta_passwords (password_hash, label)
		VALUES ($1, $2)
		RETURNING *
	`, params.PasswordHash, params.Label)
	if err != nil {
		return nil, err
	}
	return &password, nil
}

func (r *betaPasswordRepo) RecordUse(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE beta_passwords SET
			last_used_at = $2,
			use_count = use_count + 1
		WHERE id = $1
	`, id, time.Now())
	return err
}

// Revoke marks the password revoked and returns the number of matched rows.
// Re-revoking an already revoked password is not an error; the original
// revoked_at is preserved.
func (r *betaPasswordRepo) Revoke(ctx context.Context, passwordHash string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE beta_passwords SET
			revoked = TRUE,
			revoked_at = COALESCE(revoked_at, $2)
		WHERE password_hash = $1
	`, passwordHash, time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
