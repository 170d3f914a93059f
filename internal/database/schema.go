package database

import (
	"context"
)

// Schema is applied on startup. Statements are idempotent so a restart
// against an already-migrated database is a no-op.
const Schema = `
CREATE TABLE IF NOT EXISTS subscribers (
	id BIGSERIAL PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	email_hash TEXT UNIQUE NOT NULL,
	subscribed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	ip_address TEXT,
	user_agent TEXT,
	confirmed BOOLEAN NOT NULL DEFAULT FALSE,
	confirmed_at TIMESTAMPTZ,
	confirmation_token TEXT UNIQUE,
	unsubscribe_token TEXT UNIQUE NOT NULL,
	survey_completed BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS user_surveys (
	id BIGSERIAL PRIMARY KEY,
	subscriber_id BIGINT NOT NULL REFERENCES subscribers(id) ON DELETE CASCADE,
	planned_use TEXT,
	anticipated_usage TEXT,
	how_found TEXT,
	background TEXT,
	additional_info TEXT,
	submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS beta_passwords (
	id BIGSERIAL PRIMARY KEY,
	password_hash TEXT UNIQUE NOT NULL,
	label TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_used_at TIMESTAMPTZ,
	revoked BOOLEAN NOT NULL DEFAULT FALSE,
	revoked_at TIMESTAMPTZ,
	use_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS beta_sessions (
	id BIGSERIAL PRIMARY KEY,
	token_hash TEXT UNIQUE NOT NULL,
	password_id BIGINT NOT NULL REFERENCES beta_passwords(id) ON DELETE CASCADE,
	ip_address TEXT,
	user_agent TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	expires_at TIMESTAMPTZ NOT NULL,
	last_activity_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS beta_admin_sessions (
	id BIGSERIAL PRIMARY KEY,
	token_hash TEXT UNIQUE NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	expires_at TIMESTAMPTZ NOT NULL,
	last_activity_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_subscribers_email_hash ON subscribers(email_hash);
CREATE INDEX IF NOT EXISTS idx_subscribers_subscribed_at ON subscribers(subscribed_at);
CREATE INDEX IF NOT EXISTS idx_subscribers_confirmation_token ON subscribers(confirmation_token);
CREATE INDEX IF NOT EXISTS idx_user_surveys_subscriber ON user_surveys(subscriber_id);
CREATE INDEX IF NOT EXISTS idx_beta_passwords_hash ON beta_passwords(password_hash);
CREATE INDEX IF NOT EXISTS idx_beta_sessions_token_hash ON beta_sessions(token_hash);
CREATE INDEX IF NOT EXISTS idx_beta_sessions_expires_at ON beta_sessions(expires_at);
CREATE INDEX IF NOT EXISTS idx_beta_admin_sessions_token_hash ON beta_admin_sessions(token_hash);
CREATE INDEX IF NOT EXISTS idx_beta_admin_sessions_expires_at ON beta_admin_sessions(expires_at);
`

func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}
