package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"libris/api/internal/models"
	"libris/api/internal/service"
)

const loginRoute = "/login"

// wantsHTML distinguishes page navigation from API calls: denied page loads
// get a redirect, denied API calls get a status code with a generic body.
func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

// RequireAuth aborts unauthenticated requests. The gate itself never
// redirects; this adapter translates its errors at the HTTP boundary.
func RequireAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := auth.CurrentSession(c); err != nil {
			abortAuthError(c, err, nil)
			return
		}
		c.Next()
	}
}

// RequireRoles aborts requests whose resolved role is outside the allowed
// set. Denied page loads land on the user's own default surface.
func RequireRoles(auth *service.AuthService, roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := auth.RequireRole(c, roles...)
		if err != nil {
			abortAuthError(c, err, &a)
			return
		}
		c.Next()
	}
}

func abortAuthError(c *gin.Context, err error, auth *service.Auth) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		if wantsHTML(c) {
			c.Redirect(http.StatusFound, loginRoute)
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
	case errors.Is(err, service.ErrForbidden):
		if wantsHTML(c) && auth != nil {
			c.Redirect(http.StatusFound, auth.User.Role.LandingRoute())
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
	}
}
