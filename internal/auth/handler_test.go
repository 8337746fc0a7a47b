package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsc-scorecard/scorecard/internal/auth"
	"github.com/bsc-scorecard/scorecard/internal/shared"
	"github.com/bsc-scorecard/scorecard/internal/view"
	_ "github.com/bsc-scorecard/scorecard/testing"
)

func newAuthHandler(t *testing.T) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })
	sessionManager := shared.NewSessionManager(shared.NewRedisStore(redisClient), "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	templates, err := view.NewEngine()
	require.NoError(t, err)
	repo, err := auth.NewStaticRepository(auth.Credentials{Username: "admin", Password: "admin"})
	require.NoError(t, err)
	handler := auth.NewHandler(nil, auth.NewService(repo), templates, sessionManager, csrfManager, 0)
	return handler, sessionManager
}

func serve(t *testing.T, sm *shared.SessionManager, h http.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)
	res := httptest.NewRecorder()
	h(res, req)
	require.NoError(t, sm.Commit(ctx, res, req, sess))
	return res, sess
}

func postLogin(username, password string, cookie *http.Cookie) *http.Request {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func TestLoginPage(t *testing.T) {
	handler, sessionManager := newAuthHandler(t)

	res, sess := serve(t, sessionManager, handler.ShowLoginForTest, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "<form")
	assert.NotEmpty(t, sess.Get(shared.CSRFSessionKey))
}

func TestLoginInvalidCredentials(t *testing.T) {
	handler, sessionManager := newAuthHandler(t)

	cases := map[string][2]string{
		"wrong password": {"admin", "nope"},
		"unknown user":   {"root", "admin"},
	}
	for name, creds := range cases {
		t.Run(name, func(t *testing.T) {
			res, sess := serve(t, sessionManager, handler.HandleLoginForTest, postLogin(creds[0], creds[1], nil))
			require.Equal(t, http.StatusBadRequest, res.Code)
			assert.Contains(t, res.Body.String(), auth.InvalidCredentialsMessage)
			assert.False(t, sess.Authenticated())
		})
	}
}

func TestLoginMalformedInputLooksLikeMismatch(t *testing.T) {
	cases := map[string][2]string{
		"empty":             {"", ""},
		"empty password":    {"admin", ""},
		"overlong username": {strings.Repeat("a", 65), "admin"},
		"overlong password": {"admin", strings.Repeat("p", 129)},
	}
	for name, creds := range cases {
		t.Run(name, func(t *testing.T) {
			handler, sessionManager := newAuthHandler(t)
			res, sess := serve(t, sessionManager, handler.HandleLoginForTest, postLogin(creds[0], creds[1], nil))
			require.Equal(t, http.StatusBadRequest, res.Code)
			body := res.Body.String()
			assert.Contains(t, body, auth.InvalidCredentialsMessage)
			assert.NotContains(t, body, "obligatori")
			assert.False(t, sess.Authenticated())
		})
	}
}

func TestLoginMalformedInputWaitsForDelay(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sessionManager := shared.NewSessionManager(shared.NewRedisStore(client), "test_session", "secret", time.Hour, false)
	templates, err := view.NewEngine()
	require.NoError(t, err)
	repo, err := auth.NewStaticRepository(auth.Credentials{Username: "admin", Password: "admin"})
	require.NoError(t, err)
	delay := 50 * time.Millisecond
	handler := auth.NewHandler(nil, auth.NewService(repo), templates, sessionManager, shared.NewCSRFManager("x"), delay)

	start := time.Now()
	res, _ := serve(t, sessionManager, handler.HandleLoginForTest, postLogin("", "", nil))
	assert.GreaterOrEqual(t, time.Since(start), delay)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestLoginSuccessRenewsSession(t *testing.T) {
	handler, sessionManager := newAuthHandler(t)

	_, anon := serve(t, sessionManager, handler.ShowLoginForTest, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	anonID := anon.ID

	res, sess := serve(t, sessionManager, handler.HandleLoginForTest, postLogin("admin", "admin", &http.Cookie{Name: sessionManager.CookieName(), Value: anonID}))
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/", res.Header().Get("Location"))
	assert.True(t, sess.Authenticated())
	assert.Equal(t, "admin", sess.User())
	assert.NotEqual(t, anonID, sess.ID)

	getReq := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	getReq.AddCookie(&http.Cookie{Name: sessionManager.CookieName(), Value: sess.ID})
	res, _ = serve(t, sessionManager, handler.ShowLoginForTest, getReq)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/scorecard", res.Header().Get("Location"))
}

func TestLogoutClearsAuthFlag(t *testing.T) {
	handler, sessionManager := newAuthHandler(t)

	_, sess := serve(t, sessionManager, handler.HandleLoginForTest, postLogin("admin", "admin", nil))
	require.True(t, sess.Authenticated())
	cookie := &http.Cookie{Name: sessionManager.CookieName(), Value: sess.ID}

	logoutReq := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	logoutReq.AddCookie(cookie)
	res, _ := serve(t, sessionManager, handler.HandleLogoutForTest, logoutReq)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/auth/login", res.Header().Get("Location"))

	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.AddCookie(cookie)
	loaded, err := sessionManager.Load(context.Background(), again)
	require.NoError(t, err)
	assert.False(t, loaded.Authenticated())
}

func TestLoginDelayHonoursCancellation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sessionManager := shared.NewSessionManager(shared.NewRedisStore(client), "test_session", "secret", time.Hour, false)
	templates, err := view.NewEngine()
	require.NoError(t, err)
	repo, err := auth.NewStaticRepository(auth.Credentials{Username: "admin", Password: "admin"})
	require.NoError(t, err)
	handler := auth.NewHandler(nil, auth.NewService(repo), templates, sessionManager, shared.NewCSRFManager("x"), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := postLogin("admin", "admin", nil).WithContext(ctx)
	sess, err := sessionManager.Load(context.Background(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(ctx, sess))

	done := make(chan struct{})
	go func() {
		handler.HandleLoginForTest(httptest.NewRecorder(), req)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("login did not return after cancellation")
	}
	assert.False(t, sess.Authenticated())
}
