package service

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"libris/api/internal/models"
	"libris/api/internal/session"
)

// ImpersonationService stacks a second session on top of a super admin's own.
// The original session row is never deleted during the stack: its raw token
// is shelved in the frame cookie and becomes the primary cookie again on
// exit. Single-level only; nesting is rejected.
type ImpersonationService struct {
	users    UserRepo
	auth     *AuthService
	sessions *SessionService
	cookies  *session.Cookies
	log      zerolog.Logger
}

func NewImpersonationService(
	users UserRepo,
	auth *AuthService,
	sessions *SessionService,
	cookies *session.Cookies,
	log zerolog.Logger,
) *ImpersonationService {
	return &ImpersonationService{
		users:   users,
		auth:    auth,
		sessions: sessions,
		cookies: cookies,
		log:     log,
	}
}

// Start begins impersonating the target user and returns the landing route
// for the target's role. Cookies are only mutated once every check and the
// new session issuance have succeeded.
func (s *ImpersonationService) Start(c *gin.Context, targetID string) (string, error) {
	auth, err := s.auth.RequireRole(c, models.UserRoleSuperAdmin)
	if err != nil {
		return "", err
	}

	if _, framed := s.cookies.FrameToken(c); framed {
		return "", ErrAlreadyImpersonating
	}

	if targetID == auth.User.ID {
		return "", ErrSelfImpersonation
	}

	target, err := s.users.GetByID(c.Request.Context(), targetID)
	if err != nil {
		return "", err
	}

	originalToken, ok := s.cookies.SessionToken(c)
	if !ok {
		// Authenticated above, so the cookie must be present.
		return "", ErrUnauthenticated
	}

	issued, err := s.sessions.Issue(c.Request.Context(), target.ID)
	if err != nil {
		return "", err
	}

	// Frame first, then overwrite the primary cookie. The frame never
	// outlives the original session row.
	s.cookies.SetFrame(c, originalToken, auth.Session.ExpiresAt)
	s.cookies.SetSession(c, issued.Token, issued.ExpiresAt)

	s.log.Info().
		Str("admin_id", auth.User.ID).
		Str("target_id", target.ID).
		Msg("impersonation started")

	return target.Role.LandingRoute(), nil
}

// Exit restores the shelved original session. No new row is created: the
// original was never deleted, only shadowed. The impersonated identity's row
// is abandoned and left to expire.
func (s *ImpersonationService) Exit(c *gin.Context) (string, error) {
	frameToken, ok := s.cookies.FrameToken(c)
	if !ok {
		return "", ErrNotImpersonating
	}

	sess, user, err := s.sessions.Lookup(c.Request.Context(), frameToken)
	if err != nil {
		if IsNotFound(err) {
			// Cannot silently restore an invalid session; force a fresh
			// login.
			s.cookies.ClearSession(c)
			s.cookies.ClearFrame(c)
			return "", ErrOriginalSessionExpired
		}
		return "", err
	}

	s.cookies.SetSession(c, frameToken, sess.ExpiresAt)
	s.cookies.ClearFrame(c)

	s.log.Info().
		Str("admin_id", user.ID).
		Msg("impersonation ended")

	return user.Role.LandingRoute(), nil
}

// Active is an advisory probe for rendering an exit affordance. True only
// when the frame cookie references a live, unexpired session owned by a super
// admin; every failure reads as "not impersonating". It never grants or
// revokes anything.
func (s *ImpersonationService) Active(c *gin.Context) bool {
	frameToken, ok := s.cookies.FrameToken(c)
	if !ok {
		return false
	}

	_, user, err := s.sessions.Lookup(c.Request.Context(), frameToken)
	if err != nil {
		return false
	}

	return user.Role == models.UserRoleSuperAdmin
}
