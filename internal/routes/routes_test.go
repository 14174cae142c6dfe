package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindful-journal/journal-backend/internal/handlers"
	"github.com/mindful-journal/journal-backend/internal/models"
	"github.com/mindful-journal/journal-backend/internal/services"
	"github.com/mindful-journal/journal-backend/internal/store"
	"github.com/mindful-journal/journal-backend/pkg/utils"
)

const cookieName = "mj_session"

func newTestRouter(t *testing.T, staticDir string) http.Handler {
	h, _ := newTestRouterWithSessions(t, staticDir)
	return h
}

func newTestRouterWithSessions(t *testing.T, staticDir string) (http.Handler, *store.MemorySessionStore) {
	t.Helper()
	log, _ := test.NewNullLogger()

	userStore := store.NewMemoryUserStore()
	sessionStore := store.NewMemorySessionStore()
	journalStore := store.NewMemoryJournalStore()
	creds := services.NewCredentialService(userStore, utils.Argon2Params{Time: 1, Memory: 8 * 1024, Parallelism: 1})
	sessions := services.NewSessionService(sessionStore, userStore, time.Hour)
	journals := services.NewJournalService(journalStore, time.UTC)
	analytics := services.NewAnalyticsService(journalStore, time.UTC)

	d := Deps{
		Auth:       handlers.NewAuthHandler(creds, sessions, handlers.CookieConfig{Name: cookieName}, log),
		Journals:   handlers.NewJournalHandler(journals, log),
		Analytics:  handlers.NewAnalyticsHandler(analytics, log),
		Sessions:   sessions,
		CookieName: cookieName,
		Log:        log,
	}
	if staticDir != "" {
		d.Static = handlers.NewStatic(staticDir)
	}
	return New(d), sessionStore
}

type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookieName {
			if ck.MaxAge < 0 {
				c.cookie = nil
			} else {
				c.cookie = ck
			}
		}
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func register(t *testing.T, h http.Handler, username, email string) *client {
	t.Helper()
	c := &client{t: t, h: h}
	rec := c.do(http.MethodPost, "/api/register", map[string]string{
		"username": username, "email": email, "password": "pw-" + username,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, c.cookie)
	return c
}

func TestAuthFlow(t *testing.T) {
	h := newTestRouter(t, "")
	c := &client{t: t, h: h}

	rec := c.do(http.MethodPost, "/api/register", map[string]string{"username": "alice", "email": "a@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[handlers.AuthResponse](t, rec)
	assert.Equal(t, "Registration successful", resp.Message)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "a@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.User.ID)
	assert.NotContains(t, rec.Body.String(), "password")

	// registration logs the user in
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/journals", nil).Code)

	rec = c.do(http.MethodPost, "/api/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logout successful", decode[handlers.MessageResponse](t, rec).Message)
	assert.Nil(t, c.cookie)

	rec = c.do(http.MethodGet, "/api/journals", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", decode[handlers.ErrorResponse](t, rec).Error)

	rec = c.do(http.MethodPost, "/api/login", map[string]string{"email": "a@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login successful", decode[handlers.AuthResponse](t, rec).Message)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/journals", nil).Code)
}

func TestSessionForUnknownUserIsRejected(t *testing.T) {
	h, sessionStore := newTestRouterWithSessions(t, "")
	require.NoError(t, sessionStore.Save(context.Background(), "orphan", "no-such-user", time.Hour))

	c := &client{t: t, h: h, cookie: &http.Cookie{Name: cookieName, Value: "orphan"}}
	rec := c.do(http.MethodPost, "/api/journals", map[string]string{"content": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", decode[handlers.ErrorResponse](t, rec).Error)

	rec = c.do(http.MethodGet, "/api/journals", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister_SetsCookieLifetimeFromSessionTTL(t *testing.T) {
	h := newTestRouter(t, "")
	c := register(t, h, "alice", "a@example.com")
	assert.Equal(t, int(time.Hour.Seconds()), c.cookie.MaxAge)
	assert.True(t, c.cookie.HttpOnly)
}

func TestAuth_AcceptsFormPosts(t *testing.T) {
	h := newTestRouter(t, "")

	post := func(path string, form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := post("/api/register", url.Values{"username": {"alice"}, "email": {"a@example.com"}, "password": {"pw"}, "extra": {"ignored"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "alice", decode[handlers.AuthResponse](t, rec).User.Username)

	rec = post("/api/login", url.Values{"email": {"a@example.com"}, "password": {"pw"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Login successful", decode[handlers.AuthResponse](t, rec).Message)

	rec = post("/api/login", url.Values{"email": {"a@example.com"}, "password": {"bad"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credentials", decode[handlers.ErrorResponse](t, rec).Error)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h := newTestRouter(t, "")
	register(t, h, "alice", "a@example.com")

	c := &client{t: t, h: h}
	rec := c.do(http.MethodPost, "/api/register", map[string]string{"username": "other", "email": "a@example.com", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", decode[handlers.ErrorResponse](t, rec).Error)
	assert.Nil(t, c.cookie)
}

func TestLogin_FailuresLookIdentical(t *testing.T) {
	h := newTestRouter(t, "")
	register(t, h, "alice", "a@example.com")

	c := &client{t: t, h: h}
	wrong := c.do(http.MethodPost, "/api/login", map[string]string{"email": "a@example.com", "password": "nope"})
	unknown := c.do(http.MethodPost, "/api/login", map[string]string{"email": "x@example.com", "password": "nope"})

	assert.Equal(t, http.StatusBadRequest, wrong.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.Equal(t, "Invalid credentials", decode[handlers.ErrorResponse](t, wrong).Error)
}

func TestLogout_WithoutSession(t *testing.T) {
	h := newTestRouter(t, "")
	c := &client{t: t, h: h, cookie: &http.Cookie{Name: cookieName, Value: "stale"}}
	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/logout", nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/logout", nil).Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	h := newTestRouter(t, "")
	c := &client{t: t, h: h}
	for _, rt := range []struct{ method, path string }{
		{http.MethodGet, "/api/journals"},
		{http.MethodPost, "/api/journals"},
		{http.MethodGet, "/api/journals/x"},
		{http.MethodPut, "/api/journals/x"},
		{http.MethodDelete, "/api/journals/x"},
		{http.MethodGet, "/api/analytics"},
	} {
		rec := c.do(rt.method, rt.path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, rt.method+" "+rt.path)
	}
}

func TestJournalCRUD(t *testing.T) {
	h := newTestRouter(t, "")
	c := register(t, h, "alice", "a@example.com")

	rec := c.do(http.MethodPost, "/api/journals", map[string]interface{}{
		"content": "first day", "mood": "happy", "tags": []string{"start"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode[models.Journal](t, rec)
	assert.Contains(t, created.Title, "Journal Entry - ")
	assert.Equal(t, []string{"start"}, created.Tags)

	rec = c.do(http.MethodPost, "/api/journals", map[string]interface{}{"title": "Second", "content": "more"})
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[models.Journal](t, rec)
	assert.Equal(t, "neutral", second.Mood)
	assert.Contains(t, rec.Body.String(), `"tags":[]`)

	rec = c.do(http.MethodGet, "/api/journals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]models.Journal](t, rec)
	require.Len(t, list, 2)
	assert.False(t, list[0].CreatedAt.Before(list[1].CreatedAt))

	rec = c.do(http.MethodGet, "/api/journals/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "first day", decode[models.Journal](t, rec).Content)

	rec = c.do(http.MethodPut, "/api/journals/"+created.ID, map[string]interface{}{"content": "", "mood": "calm"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.Journal](t, rec)
	assert.Equal(t, "first day", updated.Content)
	assert.Equal(t, "calm", updated.Mood)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, []string{"start"}, updated.Tags)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	rec = c.do(http.MethodDelete, "/api/journals/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Journal deleted successfully", decode[handlers.MessageResponse](t, rec).Message)

	rec = c.do(http.MethodGet, "/api/journals/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Journal not found", decode[handlers.ErrorResponse](t, rec).Error)
}

func TestJournalIsolation(t *testing.T) {
	h := newTestRouter(t, "")
	alice := register(t, h, "alice", "a@example.com")
	bob := register(t, h, "bob", "b@example.com")

	rec := alice.do(http.MethodPost, "/api/journals", map[string]string{"content": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	entry := decode[models.Journal](t, rec)

	missing := bob.do(http.MethodGet, "/api/journals/does-not-exist", nil)
	for _, rec := range []*httptest.ResponseRecorder{
		bob.do(http.MethodGet, "/api/journals/"+entry.ID, nil),
		bob.do(http.MethodPut, "/api/journals/"+entry.ID, map[string]string{"content": "mine"}),
		bob.do(http.MethodDelete, "/api/journals/"+entry.ID, nil),
	} {
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, missing.Body.String(), rec.Body.String())
	}

	list := decode[[]models.Journal](t, bob.do(http.MethodGet, "/api/journals", nil))
	assert.Empty(t, list)

	got := decode[models.Journal](t, alice.do(http.MethodGet, "/api/journals/"+entry.ID, nil))
	assert.Equal(t, "secret", got.Content)
}

func TestCreateJournal_IgnoresBodyOwner(t *testing.T) {
	h := newTestRouter(t, "")
	alice := register(t, h, "alice", "a@example.com")

	rec := alice.do(http.MethodPost, "/api/journals", map[string]string{"content": "x", "userId": "someone-else"})
	require.Equal(t, http.StatusOK, rec.Code)
	entry := decode[models.Journal](t, rec)
	assert.NotEqual(t, "someone-else", entry.UserID)
}

func TestCreateJournal_BadBody(t *testing.T) {
	h := newTestRouter(t, "")
	alice := register(t, h, "alice", "a@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/journals", bytes.NewBufferString("{not json"))
	req.AddCookie(alice.cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalytics(t *testing.T) {
	h := newTestRouter(t, "")
	alice := register(t, h, "alice", "a@example.com")

	rec := alice.do(http.MethodGet, "/api/analytics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalEntries":0,"entriesThisMonth":0,"moodDistribution":{},"writingStreak":0,"averageWordsPerEntry":0}`, rec.Body.String())

	for _, e := range []map[string]string{
		{"content": "a b c", "mood": "happy"},
		{"content": "a b", "mood": "happy"},
		{"content": "x", "mood": "sad"},
	} {
		require.Equal(t, http.StatusOK, alice.do(http.MethodPost, "/api/journals", e).Code)
	}

	a := decode[models.Analytics](t, alice.do(http.MethodGet, "/api/analytics", nil))
	assert.Equal(t, 3, a.TotalEntries)
	assert.Equal(t, 3, a.EntriesThisMonth)
	assert.Equal(t, map[string]int{"happy": 2, "sad": 1}, a.MoodDistribution)
	assert.Equal(t, 1, a.WritingStreak)
	assert.Equal(t, 2, a.AverageWordsPerEntry)
}

func TestStaticFrontend(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>home</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dashboard.html"), []byte("<h1>dash</h1>"), 0o644))
	h := newTestRouter(t, dir)

	anon := &client{t: t, h: h}
	rec := anon.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "home")

	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodGet, "/dashboard", nil).Code)

	alice := register(t, h, "alice", "a@example.com")
	rec = alice.do(http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dash")
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, "")
	rec := (&client{t: t, h: h}).do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
