package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"libris/api/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Insert(ctx context.Context, session models.Session) error {
	const query = `
		INSERT INTO sessions (id, user_id, token_hash, created_at, expires_at)
		VALUES ($1, $2, $3, NOW(), $4)
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.ExpiresAt,
	)
	return err
}

// FindByTokenHash resolves a session row together with its owning user in a
// single round trip. token_hash carries a unique index, so at most one row
// matches.
func (r *SessionRepository) FindByTokenHash(ctx context.Context, tokenHash []byte) (models.Session, models.User, error) {
	const query = `
		SELECT s.id, s.user_id, s.token_hash, s.created_at, s.expires_at,
		       u.id, u.email, u.password_hash, u.display_name, u.role, u.status, u.assigned_role, u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = $1
	`

	row := r.pool.QueryRow(ctx, query, tokenHash)
	var (
		session  models.Session
		user     models.User
		assigned []byte
	)
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.CreatedAt,
		&session.ExpiresAt,
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.Role,
		&user.Status,
		&assigned,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, models.User{}, ErrSessionNotFound
		}
		return models.Session{}, models.User{}, err
	}
	user.AssignedRole = models.ParseAssignedRole(assigned)
	return session, user, nil
}

// DeleteByTokenHash removes the matching row if any. Deleting an unknown
// token is a no-op, not an error.
func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash []byte) error {
	const query = `DELETE FROM sessions WHERE token_hash = $1`
	_, err := r.pool.Exec(ctx, query, tokenHash)
	return err
}

func (r *SessionRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM sessions WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

// DeleteExpired removes rows whose expiry has passed. Lazy expiry at lookup
// time remains the enforcement mechanism; this is nightly hygiene.
func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at <= $1`
	cmd, err := r.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
