// Package session binds the auth core to HTTP transport. The cookie manager
// owns exactly two cookie names and holds no other state: the primary session
// cookie and the impersonation frame that shelves a super admin's original
// token while they act as someone else.
package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Cookies struct {
	sessionName string
	frameName   string
	secure      bool
}

func NewCookies(sessionName string, frameName string, secure bool) *Cookies {
	return &Cookies{
		sessionName: sessionName,
		frameName:   frameName,
		secure:      secure,
	}
}

func (m *Cookies) SessionName() string { return m.sessionName }
func (m *Cookies) FrameName() string   { return m.frameName }

// SetSession writes the raw token into the primary cookie, expiring exactly
// when the stored session row does.
func (m *Cookies) SetSession(c *gin.Context, token string, expiresAt time.Time) {
	m.set(c, m.sessionName, token, expiresAt)
}

func (m *Cookies) ClearSession(c *gin.Context) {
	m.clear(c, m.sessionName)
}

// SessionToken reads the raw token from the request, if any.
func (m *Cookies) SessionToken(c *gin.Context) (string, bool) {
	return m.get(c, m.sessionName)
}

// SetFrame shelves the original admin token for the duration of an
// impersonation. The frame never outlives the original session.
func (m *Cookies) SetFrame(c *gin.Context, token string, expiresAt time.Time) {
	m.set(c, m.frameName, token, expiresAt)
}

func (m *Cookies) ClearFrame(c *gin.Context) {
	m.clear(c, m.frameName)
}

func (m *Cookies) FrameToken(c *gin.Context) (string, bool) {
	return m.get(c, m.frameName)
}

func (m *Cookies) set(c *gin.Context, name string, token string, expiresAt time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Cookies) clear(c *gin.Context, name string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Cookies) get(c *gin.Context, name string) (string, bool) {
	value, err := c.Cookie(name)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}
