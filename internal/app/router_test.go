package app_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsc-scorecard/scorecard/internal/app"
	"github.com/bsc-scorecard/scorecard/internal/auth"
	"github.com/bsc-scorecard/scorecard/internal/observability"
	"github.com/bsc-scorecard/scorecard/internal/scorecard"
	scorecardhttp "github.com/bsc-scorecard/scorecard/internal/scorecard/http"
	"github.com/bsc-scorecard/scorecard/internal/scorecard/svg"
	"github.com/bsc-scorecard/scorecard/internal/shared"
	"github.com/bsc-scorecard/scorecard/internal/upload"
	"github.com/bsc-scorecard/scorecard/internal/view"
	"github.com/bsc-scorecard/scorecard/jobs"
	_ "github.com/bsc-scorecard/scorecard/testing"
)

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &app.Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second, UploadMaxBytes: 64 << 10}
	sessions := shared.NewSessionManager(shared.NewMemoryStore(), "bsc_session", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrfsecret")
	templates, err := view.NewEngine()
	require.NoError(t, err)

	repo, err := auth.NewStaticRepository(auth.Credentials{Username: "admin", Password: "admin"})
	require.NoError(t, err)
	authHandler := auth.NewHandler(nil, auth.NewService(repo), templates, sessions, csrf, 0)

	ds, err := scorecard.LoadSeed()
	require.NoError(t, err)
	metrics := observability.NewMetrics()
	renderers := svg.Renderer{}
	scorecardHandler := scorecardhttp.NewHandler(scorecardhttp.HandlerConfig{
		Service:   scorecard.NewService(ds, nil, 24*time.Hour),
		Templates: templates,
		CSRF:      csrf,
		Line:      renderers,
		Bar:       renderers,
		Sparkline: renderers,
		Radar:     renderers,
		Uploads:   upload.NewParser(100),
		Metrics:   metrics,
	})

	return app.NewRouter(app.RouterParams{
		Config:           cfg,
		SessionManager:   sessions,
		CSRFManager:      csrf,
		AuthHandler:      authHandler,
		ScorecardHandler: scorecardHandler,
		JobHandler:       jobs.NewHandler(nil, nil),
		Metrics:          metrics,
	})
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(newRouter(t))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, c *http.Client, u string) (*http.Response, string) {
	t.Helper()
	res, err := c.Get(u)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func login(t *testing.T, c *http.Client, base string) {
	t.Helper()
	_, page := get(t, c, base+"/auth/login")
	match := csrfPattern.FindStringSubmatch(page)
	require.Len(t, match, 2)

	form := url.Values{"username": {"admin"}, "password": {"admin"}, "csrf_token": {match[1]}}
	res, err := c.PostForm(base+"/auth/login", form)
	require.NoError(t, err)
	_ = res.Body.Close()
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.Equal(t, "/", res.Header.Get("Location"))
}

func TestHealthAndRootRedirect(t *testing.T) {
	srv := newServer(t)
	c := newClient(t)

	res, body := get(t, c, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
	assert.Equal(t, "default-src 'self'", res.Header.Get("Content-Security-Policy"))

	res, _ = get(t, c, srv.URL+"/")
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/auth/login", res.Header.Get("Location"))
}

func TestLoginFlowReachesDashboard(t *testing.T) {
	srv := newServer(t)
	c := newClient(t)

	res, _ := get(t, c, srv.URL+"/scorecard")
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)

	login(t, c, srv.URL)

	res, _ = get(t, c, srv.URL+"/")
	assert.Equal(t, "/scorecard", res.Header.Get("Location"))

	res, body := get(t, c, srv.URL+"/scorecard")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Cuadro de Mando Integral")

	res, body = get(t, c, srv.URL+"/api/scorecard")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"analysis"`)

	res, body = get(t, c, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "scorecard_perspective_risk_score")
	assert.Contains(t, body, "scorecard_http_requests_total")
}

func TestLogoutClearsAccess(t *testing.T) {
	srv := newServer(t)
	c := newClient(t)
	login(t, c, srv.URL)

	_, page := get(t, c, srv.URL+"/scorecard")
	match := csrfPattern.FindStringSubmatch(page)
	require.Len(t, match, 2)
	res, err := c.PostForm(srv.URL+"/auth/logout", url.Values{"csrf_token": {match[1]}})
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)

	res, _ = get(t, c, srv.URL+"/scorecard")
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
}

func TestPostWithoutCSRFIsForbidden(t *testing.T) {
	srv := newServer(t)
	c := newClient(t)

	res, err := c.PostForm(srv.URL+"/auth/login", url.Values{"username": {"admin"}, "password": {"admin"}})
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestOversizedBodyIsRejected(t *testing.T) {
	router := newRouter(t)

	body := strings.NewReader("csrf_token=x&pad=" + strings.Repeat("a", 128<<10))
	req := httptest.NewRequest(http.MethodPost, "/scorecard/upload", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestUnauthenticatedAPIAndJobs(t *testing.T) {
	srv := newServer(t)
	c := newClient(t)

	res, _ := get(t, c, srv.URL+"/api/scorecard")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = get(t, c, srv.URL+"/jobs/health")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	login(t, c, srv.URL)
	res, body := get(t, c, srv.URL+"/jobs/health")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"queue":"default"`)
}

func TestStaticAssetsAreCached(t *testing.T) {
	srv := newServer(t)
	res, body := get(t, newClient(t), srv.URL+"/static/css/app.css")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "public, max-age=3600", res.Header.Get("Cache-Control"))
	assert.Contains(t, body, ".status-optimal")
}
