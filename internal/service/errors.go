package service

import "errors"

// Auth failure taxonomy. Gate functions return these instead of redirecting;
// the HTTP boundary decides between a redirect and a status code.
var (
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAccountDisabled        = errors.New("account disabled")
	ErrTooManyAttempts        = errors.New("too many login attempts")
	ErrSelfImpersonation      = errors.New("cannot impersonate yourself")
	ErrAlreadyImpersonating   = errors.New("already impersonating")
	ErrNotImpersonating       = errors.New("not impersonating")
	ErrOriginalSessionExpired = errors.New("original session expired")
	ErrInvalidTransition      = errors.New("invalid status transition")
)
