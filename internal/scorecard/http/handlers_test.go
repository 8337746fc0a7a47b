package scorecardhttp_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bsc-scorecard/scorecard/internal/scorecard"
	scorecardhttp "github.com/bsc-scorecard/scorecard/internal/scorecard/http"
	"github.com/bsc-scorecard/scorecard/internal/scorecard/svg"
	"github.com/bsc-scorecard/scorecard/internal/shared"
	"github.com/bsc-scorecard/scorecard/internal/upload"
	"github.com/bsc-scorecard/scorecard/internal/view"
	_ "github.com/bsc-scorecard/scorecard/testing"
)

type recorder struct {
	analyses int
	uploads  []string
}

func (r *recorder) ObserveAnalysis([]scorecard.PerspectiveAnalysis) { r.analyses++ }
func (r *recorder) ObserveUpload(status string)                     { r.uploads = append(r.uploads, status) }

type fixture struct {
	handler  *scorecardhttp.Handler
	sessions *shared.SessionManager
	metrics  *recorder
	cookie   *http.Cookie
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ds, err := scorecard.LoadSeed()
	require.NoError(t, err)
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	svc := scorecard.NewService(ds, nil, 24*time.Hour).WithNow(func() time.Time { return now })

	templates, err := view.NewEngine()
	require.NoError(t, err)

	metrics := &recorder{}
	renderers := svg.Renderer{}
	handler := scorecardhttp.NewHandler(scorecardhttp.HandlerConfig{
		Service:   svc,
		Templates: templates,
		CSRF:      shared.NewCSRFManager("csrfsecret"),
		Line:      renderers,
		Bar:       renderers,
		Sparkline: renderers,
		Radar:     renderers,
		Uploads:   upload.NewParser(100),
		Metrics:   metrics,
	})

	sm := shared.NewSessionManager(shared.NewMemoryStore(), "test_session", "secret", time.Hour, false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetUser("admin")
	sess.SetAuthenticated(true)
	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), rr, req, sess))
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)

	return &fixture{handler: handler, sessions: sm, metrics: metrics, cookie: cookies[0]}
}

func (f *fixture) serve(t *testing.T, h http.Handler, req *http.Request, authenticated bool) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	if authenticated {
		req.AddCookie(f.cookie)
	}
	sess, err := f.sessions.Load(context.Background(), req)
	require.NoError(t, err)
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	require.NoError(t, f.sessions.Commit(ctx, res, req, sess))
	return res, sess
}

func (f *fixture) router() chi.Router {
	r := chi.NewRouter()
	f.handler.MountRoutes(r)
	r.Route("/api", f.handler.MountAPI)
	return r
}

func TestDashboardRenders(t *testing.T) {
	f := newFixture(t)

	res, _ := f.serve(t, http.HandlerFunc(f.handler.HandleDashboardForTest), httptest.NewRequest(http.MethodGet, "/scorecard", nil), true)
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Cuadro de Mando Integral")
	assert.Contains(t, body, "Total de indicadores")
	assert.Contains(t, body, "Última actualización: 15 de octubre de 2026")
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "Hypergrowth")
	assert.Contains(t, body, `enctype="multipart/form-data"`)
	assert.NotContains(t, body, "style=")
	assert.Equal(t, 1, f.metrics.analyses)

	// three stat cards plus one per perspective
	assert.Equal(t, 7, strings.Count(body, `class="sparkline" role="img"`))
	assert.Contains(t, body, "<title>Tendencia ")
	assert.Contains(t, body, `accept="`+strings.Join(upload.SupportedExtensions(), ",")+`"`)
}

func TestDashboardFilterAndSelectedKPI(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/scorecard?perspective=financial&status=all&kpi=f1-main", nil)
	res, _ := f.serve(t, http.HandlerFunc(f.handler.HandleDashboardForTest), req, true)
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Riesgo de incumplir")
	assert.Regexp(t, `risk-(low|medium|high)`, body)
	assert.Regexp(t, `Baja Probabilidad|Riesgo Medio|Alta Probabilidad`, body)
	assert.Contains(t, body, "Actual vs Meta")
	assert.Contains(t, body, "/scorecard/export.csv?perspective=financial")
}

func TestDashboardRejectsUnknownFilter(t *testing.T) {
	f := newFixture(t)

	res, _ := f.serve(t, http.HandlerFunc(f.handler.HandleDashboardForTest), httptest.NewRequest(http.MethodGet, "/scorecard?perspective=sales", nil), true)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Parámetro no válido")
}

func TestDashboardUnknownKPI(t *testing.T) {
	f := newFixture(t)

	res, _ := f.serve(t, http.HandlerFunc(f.handler.HandleDashboardForTest), httptest.NewRequest(http.MethodGet, "/scorecard?kpi=nope", nil), true)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestDetailPages(t *testing.T) {
	f := newFixture(t)
	r := f.router()

	res, _ := f.serve(t, r, httptest.NewRequest(http.MethodGet, "/scorecard/kpis/f2-1", nil), true)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Historial de 13 meses")
	assert.Contains(t, res.Body.String(), "Actual vs Meta")

	res, _ = f.serve(t, r, httptest.NewRequest(http.MethodGet, "/scorecard/kpis/missing", nil), true)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res, _ = f.serve(t, r, httptest.NewRequest(http.MethodGet, "/scorecard/perspectives/learning", nil), true)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "KGIs")

	res, _ = f.serve(t, r, httptest.NewRequest(http.MethodGet, "/scorecard/perspectives/sales", nil), true)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestPagesRequireAuthentication(t *testing.T) {
	f := newFixture(t)
	r := f.router()

	res, _ := f.serve(t, r, httptest.NewRequest(http.MethodGet, "/scorecard", nil), false)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/auth/login", res.Header().Get("Location"))

	res, _ = f.serve(t, r, httptest.NewRequest(http.MethodGet, "/api/scorecard", nil), false)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))
}

func TestCSVExport(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/scorecard/export.csv?perspective=financial", nil)
	res, _ := f.serve(t, http.HandlerFunc(f.handler.HandleCSVForTest), req, true)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "text/csv; charset=utf-8", res.Header().Get("Content-Type"))
	assert.Contains(t, res.Header().Get("Content-Disposition"), "scorecard-financial-all.csv")

	records, err := csv.NewReader(res.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 13)

	res, _ = f.serve(t, http.HandlerFunc(f.handler.HandleCSVForTest), httptest.NewRequest(http.MethodGet, "/scorecard/export.csv?status=bad", nil), true)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestAPISnapshot(t *testing.T) {
	f := newFixture(t)
	r := f.router()

	res, _ := f.serve(t, r, httptest.NewRequest(http.MethodGet, "/api/scorecard", nil), true)
	require.Equal(t, http.StatusOK, res.Code)
	var snap scorecard.Snapshot
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &snap))
	assert.Len(t, snap.Analysis, 4)
	assert.Equal(t, 48.0, snap.Stats.TotalIndicators.Value)

	res, _ = f.serve(t, r, httptest.NewRequest(http.MethodGet, "/api/scorecard/kpis/missing", nil), true)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res, _ = f.serve(t, r, httptest.NewRequest(http.MethodGet, "/api/scorecard/table?status=bad", nil), true)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/scorecard/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadParsesWorkbook(t *testing.T) {
	f := newFixture(t)

	book := excelize.NewFile()
	t.Cleanup(func() { _ = book.Close() })
	require.NoError(t, book.SetSheetRow("Sheet1", "A1", &[]any{"KPI", "Meta", "Actual"}))
	require.NoError(t, book.SetSheetRow("Sheet1", "A2", &[]any{"NPS", 70, 65}))
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)

	res, sess := f.serve(t, http.HandlerFunc(f.handler.HandleUploadForTest), multipartUpload(t, "kpis.xlsx", buf.Bytes()), true)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/scorecard", res.Header().Get("Location"))
	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "success", flash.Kind)
	assert.Contains(t, flash.Message, "1 filas")
	assert.Equal(t, []string{"parsed"}, f.metrics.uploads)
}

func TestUploadRejectsUnsupportedFile(t *testing.T) {
	f := newFixture(t)

	res, sess := f.serve(t, http.HandlerFunc(f.handler.HandleUploadForTest), multipartUpload(t, "kpis.csv", []byte("a,b\n1,2\n")), true)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "error", flash.Kind)
	assert.True(t, strings.HasPrefix(flash.Message, "Formato no soportado"))
	assert.Equal(t, []string{"rejected"}, f.metrics.uploads)
}

func TestUploadWithoutFile(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/scorecard/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res, sess := f.serve(t, http.HandlerFunc(f.handler.HandleUploadForTest), req, true)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "No se recibió ningún archivo.", flash.Message)
}
