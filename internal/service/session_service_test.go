package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"libris/api/internal/models"
	"libris/api/internal/security"
)

const testTTL = 14 * 24 * time.Hour

func newTestSessionService(db *memDB) *SessionService {
	return NewSessionService(&memSessionRepo{db: db}, testTTL, zerolog.Nop())
}

func TestSessionServiceIssueAndLookup(t *testing.T) {
	db := newMemDB()
	db.addUser(models.User{ID: "u1", Email: "a@example.com", Role: models.UserRoleStudent, Status: models.UserStatusActive})
	svc := newTestSessionService(db)

	issued, err := svc.Issue(context.Background(), "u1")
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	require.WithinDuration(t, time.Now().Add(testTTL), issued.ExpiresAt, time.Minute)

	// The raw token is never stored; only its hash is.
	require.False(t, db.hasSession([]byte(issued.Token)))
	require.True(t, db.hasSession(security.HashSessionToken(issued.Token)))

	sess, user, err := svc.Lookup(context.Background(), issued.Token)
	require.NoError(t, err)
	require.Equal(t, "u1", sess.UserID)
	require.Equal(t, "a@example.com", user.Email)
}

func TestSessionServiceLookupUnknownToken(t *testing.T) {
	svc := newTestSessionService(newMemDB())

	_, _, err := svc.Lookup(context.Background(), "no-such-token")
	require.True(t, IsNotFound(err))
}

func TestSessionServiceLazyExpiry(t *testing.T) {
	db := newMemDB()
	db.addUser(models.User{ID: "u1", Status: models.UserStatusActive})
	svc := newTestSessionService(db)

	issued, err := svc.Issue(context.Background(), "u1")
	require.NoError(t, err)

	// Jump past expiry: the row reads as absent and is deleted on discovery.
	svc.now = func() time.Time { return issued.ExpiresAt.Add(time.Second) }
	_, _, err = svc.Lookup(context.Background(), issued.Token)
	require.True(t, IsNotFound(err))
	require.Equal(t, 0, db.sessionCount())

	// Winding the clock back must not resurrect the row.
	svc.now = time.Now
	_, _, err = svc.Lookup(context.Background(), issued.Token)
	require.True(t, IsNotFound(err))
}

func TestSessionServiceRevokeIdempotent(t *testing.T) {
	db := newMemDB()
	db.addUser(models.User{ID: "u1", Status: models.UserStatusActive})
	svc := newTestSessionService(db)

	issued, err := svc.Issue(context.Background(), "u1")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), issued.Token))
	require.NoError(t, svc.Revoke(context.Background(), issued.Token))
	require.NoError(t, svc.Revoke(context.Background(), "never-existed"))
	require.Equal(t, 0, db.sessionCount())
}

func TestSessionServiceRevokeAllForUser(t *testing.T) {
	db := newMemDB()
	db.addUser(models.User{ID: "u1", Status: models.UserStatusActive})
	db.addUser(models.User{ID: "u2", Status: models.UserStatusActive})
	svc := newTestSessionService(db)

	_, err := svc.Issue(context.Background(), "u1")
	require.NoError(t, err)
	_, err = svc.Issue(context.Background(), "u1")
	require.NoError(t, err)
	other, err := svc.Issue(context.Background(), "u2")
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAllForUser(context.Background(), "u1"))

	require.Equal(t, 1, db.sessionCount())
	_, user, err := svc.Lookup(context.Background(), other.Token)
	require.NoError(t, err)
	require.Equal(t, "u2", user.ID)
}

func TestSessionServicePurgeExpired(t *testing.T) {
	db := newMemDB()
	db.addUser(models.User{ID: "u1", Status: models.UserStatusActive})
	svc := newTestSessionService(db)

	live, err := svc.Issue(context.Background(), "u1")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(-2 * testTTL) }
	_, err = svc.Issue(context.Background(), "u1")
	require.NoError(t, err)
	svc.now = time.Now

	removed, err := svc.PurgeExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, _, err = svc.Lookup(context.Background(), live.Token)
	require.NoError(t, err)
}
