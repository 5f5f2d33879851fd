package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"libris/api/internal/models"
	"libris/api/internal/repository"
	"libris/api/internal/security"
	"libris/api/internal/service"
	"libris/api/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubRepo serves a single user with a single live session.
type stubRepo struct {
	user models.User
	sess models.Session
}

func (s *stubRepo) GetByID(_ context.Context, id string) (models.User, error) {
	if id != s.user.ID {
		return models.User{}, repository.ErrUserNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByEmail(_ context.Context, email string) (models.User, error) {
	if email != s.user.Email {
		return models.User{}, repository.ErrUserNotFound
	}
	return s.user, nil
}

func (s *stubRepo) Insert(_ context.Context, _ models.Session) error { return nil }

func (s *stubRepo) FindByTokenHash(_ context.Context, hash []byte) (models.Session, models.User, error) {
	if string(hash) != string(s.sess.TokenHash) {
		return models.Session{}, models.User{}, repository.ErrSessionNotFound
	}
	return s.sess, s.user, nil
}

func (s *stubRepo) DeleteByTokenHash(_ context.Context, _ []byte) error { return nil }
func (s *stubRepo) DeleteAllForUser(_ context.Context, _ string) error  { return nil }
func (s *stubRepo) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type noopThrottle struct{}

func (noopThrottle) TooManyFailures(context.Context, string) (bool, error) { return false, nil }
func (noopThrottle) RecordFailure(context.Context, string) error           { return nil }
func (noopThrottle) Reset(context.Context, string) error                   { return nil }

const stubToken = "stub-raw-token"

func newGateRouter(t *testing.T, role models.UserRole, guard func(*service.AuthService) gin.HandlerFunc) *gin.Engine {
	t.Helper()
	repo := &stubRepo{
		user: models.User{ID: "u1", Email: "u1@example.edu", Role: role, Status: models.UserStatusActive},
		sess: models.Session{
			ID:        "s1",
			UserID:    "u1",
			TokenHash: security.HashSessionToken(stubToken),
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	cookies := session.NewCookies("libris_session", "libris_original_admin", false)
	sessions := service.NewSessionService(repo, time.Hour, zerolog.Nop())
	auth := service.NewAuthService(repo, sessions, cookies, noopThrottle{}, 0, zerolog.Nop())

	router := gin.New()
	router.GET("/guarded", guard(auth), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return router
}

func doRequest(router *gin.Engine, withCookie bool, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if withCookie {
		req.AddCookie(&http.Cookie{Name: "libris_session", Value: stubToken})
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuthPassesAuthenticated(t *testing.T) {
	router := newGateRouter(t, models.UserRoleStudent, func(a *service.AuthService) gin.HandlerFunc {
		return RequireAuth(a)
	})

	w := doRequest(router, true, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthAPIGets401(t *testing.T) {
	router := newGateRouter(t, models.UserRoleStudent, func(a *service.AuthService) gin.HandlerFunc {
		return RequireAuth(a)
	})

	w := doRequest(router, false, "application/json")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"message":"Unauthorized"}`, w.Body.String())
}

func TestRequireAuthPageLoadRedirectsToLogin(t *testing.T) {
	router := newGateRouter(t, models.UserRoleStudent, func(a *service.AuthService) gin.HandlerFunc {
		return RequireAuth(a)
	})

	w := doRequest(router, false, "text/html,application/xhtml+xml")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRequireRolesAllows(t *testing.T) {
	router := newGateRouter(t, models.UserRoleAdmin, func(a *service.AuthService) gin.HandlerFunc {
		return RequireRoles(a, models.UserRoleAdmin, models.UserRoleSuperAdmin)
	})

	w := doRequest(router, true, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesAPIGets403(t *testing.T) {
	router := newGateRouter(t, models.UserRoleStudent, func(a *service.AuthService) gin.HandlerFunc {
		return RequireRoles(a, models.UserRoleAdmin, models.UserRoleSuperAdmin)
	})

	w := doRequest(router, true, "application/json")
	require.Equal(t, http.StatusForbidden, w.Code)
	require.JSONEq(t, `{"message":"Forbidden"}`, w.Body.String())
}

func TestRequireRolesPageLoadRedirectsToOwnSurface(t *testing.T) {
	router := newGateRouter(t, models.UserRoleStudent, func(a *service.AuthService) gin.HandlerFunc {
		return RequireRoles(a, models.UserRoleAdmin, models.UserRoleSuperAdmin)
	})

	w := doRequest(router, true, "text/html")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/student", w.Header().Get("Location"))
}
