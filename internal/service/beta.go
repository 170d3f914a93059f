package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/facilitair/site-server-go/internal/config"
	"github.com/facilitair/site-server-go/internal/database"
	apperrors "github.com/facilitair/site-server-go/internal/errors"
	"github.com/facilitair/site-server-go/internal/model"
	"github.com/facilitair/site-server-go/internal/repository"
	"github.com/facilitair/site-server-go/internal/util"
)

// BetaService owns the beta access gate: shared passwords issued by the
// admin, visitor sessions minted against them, and the admin's own
// token-based sessions.
type BetaService struct {
	db            *database.DB
	passwords     repository.BetaPasswordRepository
	sessions      repository.BetaSessionRepository
	adminSessions repository.AdminSessionRepository
	adminSecret   string
}

func NewBetaService(
	db *database.DB,
	passwords repository.BetaPasswordRepository,
	sessions repository.BetaSessionRepository,
	adminSessions repository.AdminSessionRepository,
	adminSecret string,
) *BetaService {
	return &BetaService{
		db:            db,
		passwords:     passwords,
		sessions:      sessions,
		adminSessions: adminSessions,
		adminSecret:   adminSecret,
	}
}

// CreatePassword mints a new shared beta password under the given label.
// The plaintext is returned exactly once; only its hash is stored. Hash
// collisions on insert are retried a bounded number of times with fresh
// entropy.
func (s *BetaService) CreatePassword(ctx context.Context, label string) (*model.BetaPassword, string, error) {
	if label == "" {
		return nil, "", apperrors.MissingRequired("label")
	}

	var lastErr error
	for attempt := 0; attempt < config.PasswordCreateAttempts; attempt++ {
		plaintext, err := util.GeneratePassword()
		if err != nil {
			return nil, "", apperrors.Internal("failed to generate password").WithCause(err)
		}

		password, err := s.passwords.Create(ctx, model.CreateBetaPasswordParams{
			PasswordHash: util.HashSecret(plaintext),
			Label:        label,
		})
		if err != nil {
			if repository.IsUniqueViolation(err) {
				lastErr = err
				continue
			}
			return nil, "", apperrors.Database(err)
		}

		log.Info().Int64("password_id", password.ID).Str("label", label).Msg("beta password created")
		return password, plaintext, nil
	}

	return nil, "", apperrors.Internal("failed to generate a unique password").WithCause(lastErr)
}

// VerifyPassword checks a visitor-submitted beta password and, when it is
// valid and not revoked, mints a new session. Failure reasons are not
// distinguished for the caller.
func (s *BetaService) VerifyPassword(ctx context.Context, password string, ip, userAgent *string) (string, *model.BetaSession, error) {
	if password == "" {
		return "", nil, apperrors.MissingRequired("password")
	}

	record, err := s.passwords.FindByHash(ctx, util.HashSecret(password))
	if err != nil {
		return "", nil, apperrors.Database(err)
	}
	if record == nil || record.Revoked {
		return "", nil, apperrors.Unauthorized("Invalid password")
	}

	if err := s.passwords.RecordUse(ctx, record.ID); err != nil {
		log.Warn().Err(err).Int64("password_id", record.ID).Msg("failed to record password use")
	}

	token, err := util.GenerateToken()
	if err != nil {
		return "", nil, apperrors.Internal("failed to generate session token").WithCause(err)
	}

	session, err := s.sessions.Create(ctx, model.CreateBetaSessionParams{
		TokenHash:  util.HashToken(token),
		PasswordID: record.ID,
		IPAddress:  ip,
		UserAgent:  userAgent,
		ExpiresAt:  time.Now().Add(config.BetaSessionLifetime),
	})
	if err != nil {
		return "", nil, apperrors.Database(err)
	}

	log.Info().Int64("password_id", record.ID).Str("label", record.Label).Msg("beta session created")
	return token, session, nil
}

// VerifySession validates a visitor session token. Expired sessions and
// sessions whose password has since been revoked are deleted on sight.
// All failure modes look the same to the caller.
func (s *BetaService) VerifySession(ctx context.Context, token string) (*model.BetaSession, error) {
	if token == "" {
		return nil, apperrors.InvalidToken("Invalid session")
	}

	session, err := s.sessions.FindByTokenHash(ctx, util.HashToken(token))
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil {
		return nil, apperrors.InvalidToken("Invalid session")
	}

	if session.PasswordRevoked || time.Now().After(session.ExpiresAt) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			log.Warn().Err(err).Int64("session_id", session.ID).Msg("failed to delete stale session")
		}
		return nil, apperrors.InvalidToken("Invalid session")
	}

	if err := s.sessions.TouchActivity(ctx, session.ID); err != nil {
		log.Warn().Err(err).Int64("session_id", session.ID).Msg("failed to touch session activity")
	}

	return &session.BetaSession, nil
}

// RevokePassword revokes the password matching the submitted plaintext
// and deletes all of its sessions in the same transaction, so a revoked
// password can never leave live sessions behind.
func (s *BetaService) RevokePassword(ctx context.Context, password string) (int64, error) {
	if password == "" {
		return 0, apperrors.MissingRequired("password")
	}

	passwordHash := util.HashSecret(password)
	var sessionsDeleted int64

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		passwords := s.passwords.WithTx(tx)
		sessions := s.sessions.WithTx(tx)

		record, err := passwords.FindByHash(ctx, passwordHash)
		if err != nil {
			return apperrors.Database(err)
		}
		if record == nil {
			return apperrors.NotFound("Password")
		}

		if _, err := passwords.Revoke(ctx, passwordHash); err != nil {
			return apperrors.Database(err)
		}

		sessionsDeleted, err = sessions.DeleteByPasswordID(ctx, record.ID)
		if err != nil {
			return apperrors.Database(err)
		}

		log.Info().
			Int64("password_id", record.ID).
			Str("label", record.Label).
			Int64("sessions_deleted", sessionsDeleted).
			Msg("beta password revoked")
		return nil
	})
	if err != nil {
		return 0, err
	}

	return sessionsDeleted, nil
}

// ListPasswords returns all issued passwords, newest first. Hashes are
// never serialized; there is no way to recover a plaintext after issue.
func (s *BetaService) ListPasswords(ctx context.Context) ([]model.BetaPassword, error) {
	passwords, err := s.passwords.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return passwords, nil
}

// AuthenticateAdmin exchanges the configured admin secret for a fresh
// admin session token. The secret itself is never used as a token.
func (s *BetaService) AuthenticateAdmin(ctx context.Context, password string) (string, *model.AdminSession, error) {
	if s.adminSecret == "" {
		return "", nil, apperrors.Unauthorized("Admin access not configured")
	}
	if !util.ConstantTimeEqual(util.HashSecret(password), util.HashSecret(s.adminSecret)) {
		return "", nil, apperrors.Unauthorized("Invalid admin password")
	}

	token, err := util.GenerateToken()
	if err != nil {
		return "", nil, apperrors.Internal("failed to generate admin token").WithCause(err)
	}

	session, err := s.adminSessions.Create(ctx, model.CreateAdminSessionParams{
		TokenHash: util.HashToken(token),
		ExpiresAt: time.Now().Add(config.AdminSessionLifetime),
	})
	if err != nil {
		return "", nil, apperrors.Database(err)
	}

	log.Info().Int64("session_id", session.ID).Msg("admin session created")
	return token, session, nil
}

// VerifyAdminToken validates an admin session token, deleting expired
// sessions on sight.
func (s *BetaService) VerifyAdminToken(ctx context.Context, token string) (*model.AdminSession, error) {
	if token == "" {
		return nil, apperrors.InvalidToken("Invalid admin session")
	}

	session, err := s.adminSessions.FindByTokenHash(ctx, util.HashToken(token))
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil {
		return nil, apperrors.InvalidToken("Invalid admin session")
	}

	if time.Now().After(session.ExpiresAt) {
		if err := s.adminSessions.Delete(ctx, session.ID); err != nil {
			log.Warn().Err(err).Int64("session_id", session.ID).Msg("failed to delete expired admin session")
		}
		return nil, apperrors.InvalidToken("Invalid admin session")
	}

	if err := s.adminSessions.TouchActivity(ctx, session.ID); err != nil {
		log.Warn().Err(err).Int64("session_id", session.ID).Msg("failed to touch admin session activity")
	}

	return session, nil
}

// Logout deletes the admin session for the given token, if any.
func (s *BetaService) Logout(ctx context.Context, token string) error {
	session, err := s.adminSessions.FindByTokenHash(ctx, util.HashToken(token))
	if err != nil {
		return apperrors.Database(err)
	}
	if session == nil {
		return nil
	}
	return s.adminSessions.Delete(ctx, session.ID)
}
