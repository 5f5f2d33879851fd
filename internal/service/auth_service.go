package service

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"libris/api/internal/models"
	"libris/api/internal/repository"
	"libris/api/internal/security"
	"libris/api/internal/session"
)

// authStateKey memoizes the resolved session in the gin context so repeated
// gate calls within one request hit storage once. Request-scoped by
// construction; never process-wide.
const authStateKey = "libris_auth_state"

// Auth is the per-request authentication state.
type Auth struct {
	Session models.Session
	User    models.User
	// Impersonating is true when an impersonation frame cookie accompanies
	// the request, i.e. the primary session belongs to an impersonated
	// identity shadowing a super admin's original one.
	Impersonating bool
}

type AuthService struct {
	users    UserRepo
	sessions *SessionService
	cookies  *session.Cookies
	throttle Throttle
	minDelay time.Duration
	log      zerolog.Logger
	decoy    []byte
	now      func() time.Time
}

func NewAuthService(
	users UserRepo,
	sessions *SessionService,
	cookies *session.Cookies,
	throttle Throttle,
	minDelay time.Duration,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		cookies:  cookies,
		throttle: throttle,
		minDelay: minDelay,
		log:      log,
		decoy:    security.DecoyHash(),
		now:      time.Now,
	}
}

// CurrentSession resolves the request's session from its cookie, enforcing
// expiry and account status. Returns ErrUnauthenticated when there is no
// usable session; anything else is a storage failure.
func (s *AuthService) CurrentSession(c *gin.Context) (Auth, error) {
	if v, exists := c.Get(authStateKey); exists {
		if auth, ok := v.(*Auth); ok && auth != nil {
			return *auth, nil
		}
		return Auth{}, ErrUnauthenticated
	}

	auth, err := s.resolve(c)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			c.Set(authStateKey, (*Auth)(nil))
		}
		return Auth{}, err
	}

	c.Set(authStateKey, &auth)
	return auth, nil
}

func (s *AuthService) resolve(c *gin.Context) (Auth, error) {
	token, ok := s.cookies.SessionToken(c)
	if !ok {
		return Auth{}, ErrUnauthenticated
	}

	ctx := c.Request.Context()
	sess, user, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		if IsNotFound(err) {
			s.cookies.ClearSession(c)
			return Auth{}, ErrUnauthenticated
		}
		return Auth{}, err
	}

	// Lookup already lazily expires; this guards the window between read and
	// use.
	if sess.Expired(s.now()) {
		if err := s.sessions.Revoke(ctx, token); err != nil {
			s.log.Error().Err(err).Str("session_id", sess.ID).Msg("revoke expired session failed")
		}
		s.cookies.ClearSession(c)
		return Auth{}, ErrUnauthenticated
	}

	_, framed := s.cookies.FrameToken(c)

	// A deactivated or suspended account is logged out on its very next
	// request. Skipped while an impersonation frame is present: the admin's
	// original authority is what matters then.
	if user.Status != models.UserStatusActive && !framed {
		if err := s.sessions.Revoke(ctx, token); err != nil {
			s.log.Error().Err(err).Str("session_id", sess.ID).Msg("revoke session of disabled account failed")
		}
		s.cookies.ClearSession(c)
		return Auth{}, ErrUnauthenticated
	}

	return Auth{Session: sess, User: user, Impersonating: framed}, nil
}

// RequireAuth is CurrentSession with no tolerance for anonymity.
func (s *AuthService) RequireAuth(c *gin.Context) (Auth, error) {
	return s.CurrentSession(c)
}

// RequireRole enforces membership in the allowed role set on top of
// authentication.
func (s *AuthService) RequireRole(c *gin.Context, roles ...models.UserRole) (Auth, error) {
	auth, err := s.CurrentSession(c)
	if err != nil {
		return Auth{}, err
	}
	for _, role := range roles {
		if auth.User.Role == role {
			return auth, nil
		}
	}
	return auth, ErrForbidden
}

type LoginInput struct {
	Email    string
	Password string
	ClientIP string
}

type LoginResult struct {
	Token       string
	ExpiresAt   time.Time
	User        models.User
	RedirectURL string
}

// Login verifies credentials and issues a session. Failures have a constant
// shape: unknown accounts burn a decoy hash verification and every failure
// pads to a minimum duration, so timing does not reveal whether the email
// exists.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	started := s.now()
	throttleKey := input.Email + "|" + input.ClientIP

	if blocked, err := s.throttle.TooManyFailures(ctx, throttleKey); err != nil {
		s.log.Warn().Err(err).Msg("login throttle unavailable")
	} else if blocked {
		return LoginResult{}, ErrTooManyAttempts
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_, _ = security.VerifyPassword(input.Password, s.decoy)
			return LoginResult{}, s.failLogin(ctx, throttleKey, started)
		}
		return LoginResult{}, err
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, s.failLogin(ctx, throttleKey, started)
	}

	if user.Status != models.UserStatusActive {
		return LoginResult{}, ErrAccountDisabled
	}

	issued, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.throttle.Reset(ctx, throttleKey); err != nil {
		s.log.Warn().Err(err).Msg("login throttle reset failed")
	}

	return LoginResult{
		Token:       issued.Token,
		ExpiresAt:   issued.ExpiresAt,
		User:        user,
		RedirectURL: user.Role.LandingRoute(),
	}, nil
}

func (s *AuthService) failLogin(ctx context.Context, throttleKey string, started time.Time) error {
	if err := s.throttle.RecordFailure(ctx, throttleKey); err != nil {
		s.log.Warn().Err(err).Msg("login throttle record failed")
	}
	if remaining := s.minDelay - s.now().Sub(started); remaining > 0 {
		time.Sleep(remaining)
	}
	return ErrInvalidCredentials
}

// Logout revokes the request's session and clears both cookies. Logging out
// mid-impersonation drops the frame too; the shelved original session row
// stays in storage until it expires.
func (s *AuthService) Logout(c *gin.Context) error {
	if token, ok := s.cookies.SessionToken(c); ok {
		if err := s.sessions.Revoke(c.Request.Context(), token); err != nil {
			return err
		}
	}
	s.cookies.ClearSession(c)
	s.cookies.ClearFrame(c)
	return nil
}
