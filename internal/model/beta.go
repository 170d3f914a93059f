package model

import (
	"time"
)

// BetaPassword is an admin-issued shared credential gating beta access.
// Only the hash is persisted; the plaintext is returned once at creation.
type BetaPassword struct {
	ID           int64      `db:"id" json:"id"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Label        string     `db:"label" json:"label"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	LastUsedAt   *time.Time `db:"last_used_at" json:"lastUsedAt,omitempty"`
	Revoked      bool       `db:"revoked" json:"revoked"`
	RevokedAt    *time.Time `db:"revoked_at" json:"revokedAt,omitempty"`
	UseCount     int        `db:"use_count" json:"useCount"`
}

type CreateBetaPasswordParams struct {
	PasswordHash string
	Label        string
}

// BetaSession is owned by exactly one BetaPassword and carries a fixed
// 7-day lifetime stamped at creation.
type BetaSession struct {
	ID             int64     `db:"id" json:"id"`
	TokenHash      string    `db:"token_hash" json:"-"`
	PasswordID     int64     `db:"password_id" json:"passwordId"`
	IPAddress      *string   `db:"ip_address" json:"ipAddress,omitempty"`
	UserAgent      *string   `db:"user_agent" json:"userAgent,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	ExpiresAt      time.Time `db:"expires_at" json:"expiresAt"`
	LastActivityAt time.Time `db:"last_activity_at" json:"lastActivityAt"`
}

type CreateBetaSessionParams struct {
	TokenHash  string
	PasswordID int64
	IPAddress  *string
	UserAgent  *string
	ExpiresAt  time.Time
}

// BetaSessionWithPassword joins a session row with its owning password's
// revocation state for single-query validation.
type BetaSessionWithPassword struct {
	BetaSession
	PasswordRevoked bool `db:"password_revoked"`
}

// AdminSession is created on successful admin authentication, with a
// fixed 24-hour lifetime. The admin secret itself is never the token.
type AdminSession struct {
	ID             int64     `db:"id" json:"id"`
	TokenHash      string    `db:"token_hash" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	ExpiresAt      time.Time `db:"expires_at" json:"expiresAt"`
	LastActivityAt time.Time `db:"last_activity_at" json:"lastActivityAt"`
}

type CreateAdminSessionParams struct {
	TokenHash string
	ExpiresAt time.Time
}
