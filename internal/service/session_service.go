package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"libris/api/internal/ids"
	"libris/api/internal/models"
	"libris/api/internal/repository"
	"libris/api/internal/security"
)

// SessionService issues and resolves bearer sessions. Only token hashes touch
// storage; the raw token exists in the cookie and in transient memory here.
type SessionService struct {
	sessions SessionRepo
	ttl      time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewSessionService(sessions SessionRepo, ttl time.Duration, log zerolog.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
	}
}

type IssuedSession struct {
	Token     string
	ExpiresAt time.Time
}

// Issue creates a session row for the user and returns the raw token for
// cookie-setting. A user may hold any number of concurrent sessions.
func (s *SessionService) Issue(ctx context.Context, userID string) (IssuedSession, error) {
	token, hash, err := security.GenerateSessionToken()
	if err != nil {
		return IssuedSession{}, err
	}

	expiresAt := s.now().Add(s.ttl)
	row := models.Session{
		ID:        ids.New(),
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Insert(ctx, row); err != nil {
		return IssuedSession{}, fmt.Errorf("persist session: %w", err)
	}

	return IssuedSession{Token: token, ExpiresAt: expiresAt}, nil
}

// Lookup resolves a raw token to its session and owning user. Expiry is
// enforced at read time: an expired row is deleted on discovery and reported
// as not found.
func (s *SessionService) Lookup(ctx context.Context, token string) (models.Session, models.User, error) {
	hash := security.HashSessionToken(token)
	sess, user, err := s.sessions.FindByTokenHash(ctx, hash)
	if err != nil {
		return models.Session{}, models.User{}, err
	}

	if sess.Expired(s.now()) {
		if err := s.sessions.DeleteByTokenHash(ctx, hash); err != nil {
			s.log.Error().Err(err).Str("session_id", sess.ID).Msg("delete expired session failed")
		}
		return models.Session{}, models.User{}, repository.ErrSessionNotFound
	}

	return sess, user, nil
}

// Revoke deletes the session matching the token. Revoking an unknown token is
// a no-op.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	if err := s.sessions.DeleteByTokenHash(ctx, security.HashSessionToken(token)); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeAllForUser force-logs-out every session a user holds. Called when an
// account is deactivated, suspended or deleted.
func (s *SessionService) RevokeAllForUser(ctx context.Context, userID string) error {
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions for user: %w", err)
	}
	return nil
}

// PurgeExpired removes rows already past expiry. Lookup-time lazy expiry is
// the enforcement mechanism; this keeps the table small.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

// IsNotFound reports whether an error means the session does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrSessionNotFound)
}
