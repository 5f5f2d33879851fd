package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func findCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestSetSessionAttributes(t *testing.T) {
	m := NewCookies("libris_session", "libris_original_admin", false)
	c, w := testContext()
	expiresAt := time.Now().Add(14 * 24 * time.Hour)

	m.SetSession(c, "raw-token", expiresAt)

	ck := findCookie(t, w, "libris_session")
	require.Equal(t, "raw-token", ck.Value)
	require.Equal(t, "/", ck.Path)
	require.True(t, ck.HttpOnly)
	require.False(t, ck.Secure)
	require.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	// Cookie expiry is aligned exactly to the session row's expiry.
	require.WithinDuration(t, expiresAt, ck.Expires, time.Second)
}

func TestSecureOutsideDevelopment(t *testing.T) {
	m := NewCookies("libris_session", "libris_original_admin", true)
	c, w := testContext()

	m.SetSession(c, "raw-token", time.Now().Add(time.Hour))

	require.True(t, findCookie(t, w, "libris_session").Secure)
}

func TestClearSession(t *testing.T) {
	m := NewCookies("libris_session", "libris_original_admin", false)
	c, w := testContext()

	m.ClearSession(c)

	ck := findCookie(t, w, "libris_session")
	require.Empty(t, ck.Value)
	require.Negative(t, ck.MaxAge)
}

func TestFrameCookieIndependentOfSession(t *testing.T) {
	m := NewCookies("libris_session", "libris_original_admin", false)
	c, w := testContext()

	m.SetSession(c, "target-token", time.Now().Add(time.Hour))
	m.SetFrame(c, "original-token", time.Now().Add(30*time.Minute))

	require.Equal(t, "target-token", findCookie(t, w, "libris_session").Value)
	require.Equal(t, "original-token", findCookie(t, w, "libris_original_admin").Value)
}

func TestReadTokens(t *testing.T) {
	m := NewCookies("libris_session", "libris_original_admin", false)
	c, _ := testContext()
	c.Request.AddCookie(&http.Cookie{Name: "libris_session", Value: "abc"})

	token, ok := m.SessionToken(c)
	require.True(t, ok)
	require.Equal(t, "abc", token)

	_, ok = m.FrameToken(c)
	require.False(t, ok)
}
