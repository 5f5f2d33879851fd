package service

import (
	"context"
	"time"

	"libris/api/internal/models"
)

// UserRepo is the slice of the user directory the auth core consumes. The
// directory owns user CRUD; the gate only reads id, role and status.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// SessionRepo is the durable record of issued sessions, keyed by token hash.
type SessionRepo interface {
	Insert(ctx context.Context, session models.Session) error
	FindByTokenHash(ctx context.Context, tokenHash []byte) (models.Session, models.User, error)
	DeleteByTokenHash(ctx context.Context, tokenHash []byte) error
	DeleteAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
