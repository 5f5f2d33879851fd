package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"libris/api/internal/models"
	"libris/api/internal/repository"
)

// memDB backs the repo fakes with plain maps so service behavior can be
// exercised without postgres.
type memDB struct {
	mu       sync.Mutex
	users    map[string]models.User    // by id
	sessions map[string]models.Session // by token hash
}

func newMemDB() *memDB {
	return &memDB{
		users:    make(map[string]models.User),
		sessions: make(map[string]models.Session),
	}
}

func (db *memDB) addUser(u models.User) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users[u.ID] = u
}

func (db *memDB) sessionCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.sessions)
}

func (db *memDB) hasSession(tokenHash []byte) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, ok := db.sessions[string(tokenHash)]
	return ok
}

type memUserRepo struct{ db *memDB }

func (r *memUserRepo) GetByID(_ context.Context, id string) (models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	user, ok := r.db.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, user := range r.db.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

type memSessionRepo struct {
	db        *memDB
	insertErr error
	findErr   error
}

func (r *memSessionRepo) Insert(_ context.Context, s models.Session) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s.CreatedAt = time.Now()
	r.db.sessions[string(s.TokenHash)] = s
	return nil
}

func (r *memSessionRepo) FindByTokenHash(_ context.Context, tokenHash []byte) (models.Session, models.User, error) {
	if r.findErr != nil {
		return models.Session{}, models.User{}, r.findErr
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	sess, ok := r.db.sessions[string(tokenHash)]
	if !ok {
		return models.Session{}, models.User{}, repository.ErrSessionNotFound
	}
	user, ok := r.db.users[sess.UserID]
	if !ok {
		return models.Session{}, models.User{}, repository.ErrSessionNotFound
	}
	return sess, user, nil
}

func (r *memSessionRepo) DeleteByTokenHash(_ context.Context, tokenHash []byte) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, string(tokenHash))
	return nil
}

func (r *memSessionRepo) DeleteAllForUser(_ context.Context, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for key, sess := range r.db.sessions {
		if sess.UserID == userID {
			delete(r.db.sessions, key)
		}
	}
	return nil
}

func (r *memSessionRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var removed int64
	for key, sess := range r.db.sessions {
		if !before.Before(sess.ExpiresAt) {
			delete(r.db.sessions, key)
			removed++
		}
	}
	return removed, nil
}

type fakeThrottle struct {
	mu       sync.Mutex
	failures map[string]int
	max      int
}

func newFakeThrottle(max int) *fakeThrottle {
	return &fakeThrottle{failures: make(map[string]int), max: max}
}

func (t *fakeThrottle) TooManyFailures(_ context.Context, key string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures[key] >= t.max, nil
}

func (t *fakeThrottle) RecordFailure(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[key]++
	return nil
}

func (t *fakeThrottle) Reset(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, key)
	return nil
}

// browser simulates a cookie jar across sequential requests, since cookies
// written to one response only reach the server on the next request.
type browser struct {
	jar map[string]string
}

func newBrowser() *browser {
	return &browser{jar: make(map[string]string)}
}

func (b *browser) request() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	for name, value := range b.jar {
		c.Request.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return c, w
}

// absorb applies a response's Set-Cookie headers to the jar.
func (b *browser) absorb(w *httptest.ResponseRecorder) {
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(b.jar, ck.Name)
			continue
		}
		b.jar[ck.Name] = ck.Value
	}
}

func init() {
	gin.SetMode(gin.TestMode)
}
