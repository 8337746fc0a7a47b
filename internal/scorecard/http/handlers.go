package scorecardhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/bsc-scorecard/scorecard/internal/platform/httpx"
	"github.com/bsc-scorecard/scorecard/internal/scorecard"
	"github.com/bsc-scorecard/scorecard/internal/scorecard/export"
	"github.com/bsc-scorecard/scorecard/internal/scorecard/svg"
	"github.com/bsc-scorecard/scorecard/internal/scorecard/ui"
	"github.com/bsc-scorecard/scorecard/internal/shared"
	"github.com/bsc-scorecard/scorecard/internal/upload"
	"github.com/bsc-scorecard/scorecard/internal/view"
)

const (
	requestTimeout = 2 * time.Second
	previewRows    = 3
	// perspective sparklines turn green above this score
	healthyPerspectiveScore = 80.0
	// DefaultMaxUpload bounds multipart parsing when no limit is configured.
	DefaultMaxUpload int64 = 10 << 20
)

// ScorecardService defines the dashboard data contract used by the handler.
type ScorecardService interface {
	Snapshot(ctx context.Context) (scorecard.Snapshot, error)
	Table(f scorecard.TableFilter) []scorecard.TableRow
	KPIDetail(id string) (scorecard.KPIDetail, error)
	PerspectiveDetail(ctx context.Context, p scorecard.Perspective) (scorecard.PerspectiveDetail, error)
	PerspectiveKGIs(p scorecard.Perspective) []scorecard.KGI
}

// Uploader parses a spreadsheet upload.
type Uploader interface {
	Parse(r io.Reader, filename string) (upload.Batch, error)
}

// MetricsRecorder receives dashboard side signals.
type MetricsRecorder interface {
	ObserveAnalysis(analysis []scorecard.PerspectiveAnalysis)
	ObserveUpload(status string)
}

// HandlerConfig collects the handler dependencies.
type HandlerConfig struct {
	Logger    *slog.Logger
	Service   ScorecardService
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Line      ui.LineRenderer
	Bar       ui.BarRenderer
	Sparkline ui.SparklineRenderer
	Radar     ui.RadarRenderer
	Uploads   Uploader
	Metrics   MetricsRecorder
	MaxUpload int64
}

// Handler coordinates HTTP requests for the scorecard dashboard.
type Handler struct {
	logger    *slog.Logger
	service   ScorecardService
	templates *view.Engine
	csrf      *shared.CSRFManager
	line      ui.LineRenderer
	bar       ui.BarRenderer
	spark     ui.SparklineRenderer
	radar     ui.RadarRenderer
	uploads   Uploader
	metrics   MetricsRecorder
	maxUpload int64
	csvPool   sync.Pool
}

// NewHandler constructs the scorecard HTTP handler.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		logger:    cfg.Logger,
		service:   cfg.Service,
		templates: cfg.Templates,
		csrf:      cfg.CSRF,
		line:      cfg.Line,
		bar:       cfg.Bar,
		spark:     cfg.Sparkline,
		radar:     cfg.Radar,
		uploads:   cfg.Uploads,
		metrics:   cfg.Metrics,
		maxUpload: cfg.MaxUpload,
	}
	if h.maxUpload <= 0 {
		h.maxUpload = DefaultMaxUpload
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	kpiID := strings.TrimSpace(r.URL.Query().Get("kpi"))

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data, err := h.loadDashboardData(ctx, filter, kpiID)
	if err != nil {
		if errors.Is(err, scorecard.ErrKPINotFound) {
			http.Error(w, "Indicador no encontrado", http.StatusNotFound)
			return
		}
		h.handleServerError(w, "load dashboard", err)
		return
	}

	vm, err := h.buildViewModel(filter, data)
	if err != nil {
		h.handleServerError(w, "render charts", err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveAnalysis(data.snapshot.Analysis)
	}
	h.render(w, r, "Cuadro de Mando Integral", "pages/dashboard.html", vm)
}

func (h *Handler) handleKPI(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.KPIDetail(chi.URLParam(r, "kpiID"))
	if err != nil {
		if errors.Is(err, scorecard.ErrKPINotFound) {
			http.Error(w, "Indicador no encontrado", http.StatusNotFound)
			return
		}
		h.handleServerError(w, "load kpi", err)
		return
	}
	vm, err := h.buildKPIView(detail)
	if err != nil {
		h.handleServerError(w, "render kpi charts", err)
		return
	}
	h.render(w, r, detail.KPI.Name, "pages/kpi_detail.html", vm)
}

func (h *Handler) handlePerspective(w http.ResponseWriter, r *http.Request) {
	p, err := scorecard.ParsePerspective(chi.URLParam(r, "perspective"))
	if err != nil {
		http.Error(w, "Perspectiva no encontrada", http.StatusNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	detail, err := h.service.PerspectiveDetail(ctx, p)
	if err != nil {
		if errors.Is(err, scorecard.ErrPerspectiveNotFound) || errors.Is(err, scorecard.ErrUnknownPerspective) {
			http.Error(w, "Perspectiva no encontrada", http.StatusNotFound)
			return
		}
		h.handleServerError(w, "load perspective", err)
		return
	}
	vm, err := h.buildPerspectiveView(detail)
	if err != nil {
		h.handleServerError(w, "render perspective charts", err)
		return
	}
	h.render(w, r, detail.Analysis.Name, "pages/perspective_detail.html", vm)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteTableCSV(buf, h.service.Table(filter)); err != nil {
		h.handleServerError(w, "write table csv", err)
		return
	}

	filename := fmt.Sprintf("scorecard-%s-%s.csv", filter.PerspectiveSlug(), filter.StatusSlug())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if h.uploads == nil {
		h.handleServerError(w, "upload parser", errors.New("upload parser not configured"))
		return
	}
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.uploadFailed(w, r, sess, "No se recibió ningún archivo.", err)
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.uploadFailed(w, r, sess, "No se recibió ningún archivo.", err)
		return
	}
	defer func() { _ = file.Close() }()

	batch, err := h.uploads.Parse(file, header.Filename)
	if err != nil {
		message := "No se pudo leer el archivo."
		if errors.Is(err, upload.ErrUnsupportedFormat) {
			message = "Formato no soportado. Use un archivo .xlsx."
		}
		h.uploadFailed(w, r, sess, message, err)
		return
	}

	// rows are logged and discarded; the dataset is never modified
	h.log().Info("spreadsheet parsed",
		slog.String("batch", batch.ID),
		slog.String("file", batch.Filename),
		slog.String("sheet", batch.Sheet),
		slog.Int("rows", len(batch.Rows)),
		slog.Any("headers", batch.Headers),
		slog.Any("preview", batch.Preview(previewRows)),
	)
	if h.metrics != nil {
		h.metrics.ObserveUpload("parsed")
	}
	if sess != nil {
		sess.AddFlash(shared.FlashMessage{
			Kind:    "success",
			Message: fmt.Sprintf("Archivo %s procesado: %d filas leídas (simulación, los datos no se modificaron).", batch.Filename, len(batch.Rows)),
		})
	}
	http.Redirect(w, r, "/scorecard", http.StatusSeeOther)
}

func (h *Handler) uploadFailed(w http.ResponseWriter, r *http.Request, sess *shared.Session, message string, err error) {
	h.log().Warn("upload rejected", slog.Any("error", err))
	if h.metrics != nil {
		h.metrics.ObserveUpload("rejected")
	}
	if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: message})
	}
	http.Redirect(w, r, "/scorecard", http.StatusSeeOther)
}

func (h *Handler) handleAPISnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	snap, err := h.service.Snapshot(ctx)
	if err != nil {
		h.logError("api snapshot", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}

func (h *Handler) handleAPIKPI(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.KPIDetail(chi.URLParam(r, "kpiID"))
	if err != nil {
		if errors.Is(err, scorecard.ErrKPINotFound) {
			httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrNotFound, err))
			return
		}
		h.logError("api kpi", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) handleAPITable(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.Table(filter))
}

func parseFilter(r *http.Request) (scorecard.TableFilter, error) {
	q := r.URL.Query()
	return scorecard.ParseTableFilter(q.Get("perspective"), q.Get("status"))
}

type dashboardData struct {
	snapshot scorecard.Snapshot
	rows     []scorecard.TableRow
	kpi      *scorecard.KPIDetail
	kgis     map[scorecard.Perspective][]scorecard.KGI
}

func (h *Handler) loadDashboardData(ctx context.Context, filter scorecard.TableFilter, kpiID string) (dashboardData, error) {
	var data dashboardData

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		snap, err := h.service.Snapshot(ctx)
		if err != nil {
			return err
		}
		data.snapshot = snap
		return nil
	})

	g.Go(func() error {
		data.rows = h.service.Table(filter)
		kgis := make(map[scorecard.Perspective][]scorecard.KGI, len(scorecard.Perspectives()))
		for _, p := range scorecard.Perspectives() {
			kgis[p] = h.service.PerspectiveKGIs(p)
		}
		data.kgis = kgis
		return nil
	})

	if kpiID != "" {
		g.Go(func() error {
			detail, err := h.service.KPIDetail(kpiID)
			if err != nil {
				return err
			}
			data.kpi = &detail
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return dashboardData{}, err
	}
	return data, nil
}

func (h *Handler) buildViewModel(filter scorecard.TableFilter, data dashboardData) (ui.DashboardViewModel, error) {
	if h.line == nil || h.bar == nil || h.spark == nil || h.radar == nil {
		return ui.DashboardViewModel{}, fmt.Errorf("svg renderer missing")
	}
	stats := data.snapshot.Stats
	vm := ui.DashboardViewModel{
		Table:        ui.NewTableView(filter, data.rows),
		LastUpdated:  stats.LastUpdated,
		Epoch:        data.snapshot.Epoch,
		UploadAccept: strings.Join(upload.SupportedExtensions(), ","),
	}

	cards := []struct {
		label    string
		metric   scorecard.StatMetric
		decimals int
	}{
		{"Total de indicadores", stats.TotalIndicators, 0},
		{"Cumplimiento global", stats.GlobalCompliance, 1},
		{"KPIs críticos", stats.CriticalCount, 0},
	}
	for _, c := range cards {
		card := ui.ToStatCard(c.label, c.metric, c.decimals)
		color := svg.ColorOptimal
		if !card.Improving {
			color = svg.ColorCritical
		}
		spark, err := h.spark.Sparkline(svg.DefaultSparkWidth, svg.DefaultSparkHeight, c.metric.TrendData, svg.SparkOpts{
			Title:       c.label,
			StrokeColor: color,
		})
		if err != nil {
			return ui.DashboardViewModel{}, err
		}
		card.Sparkline = spark
		vm.Stats = append(vm.Stats, card)
	}

	if priority, ok := data.snapshot.Priority(); ok {
		vm.Priority = &priority
	}

	labels := make([]string, 0, len(data.snapshot.Analysis))
	scores := make([]float64, 0, len(data.snapshot.Analysis))
	counts := map[scorecard.Status][]float64{}
	for _, a := range data.snapshot.Analysis {
		card := ui.ToPerspectiveCard(a, data.kgis[a.Perspective])
		color := svg.ColorCritical
		if a.Score > healthyPerspectiveScore {
			color = svg.ColorOptimal
		}
		spark, err := h.spark.Sparkline(svg.DefaultSparkWidth, svg.DefaultSparkHeight, a.History, svg.SparkOpts{
			Title:       "Tendencia " + a.Name,
			StrokeColor: color,
		})
		if err != nil {
			return ui.DashboardViewModel{}, err
		}
		card.Sparkline = spark
		vm.Perspectives = append(vm.Perspectives, card)
		labels = append(labels, a.Name)
		scores = append(scores, a.Score)
		for _, s := range scorecard.Statuses() {
			counts[s] = append(counts[s], float64(a.StatusCounts.Of(s)))
		}
	}

	radar, err := h.radar.Radar(svg.DefaultRadarSize, scores, labels, svg.RadarOpts{
		Title:       "Desempeño por perspectiva",
		Description: "Cumplimiento promedio de cada perspectiva",
		Max:         100,
	})
	if err != nil {
		return ui.DashboardViewModel{}, err
	}
	vm.RadarSVG = radar

	bars, err := h.bar.Bars(svg.DefaultWidth, svg.DefaultHeight, []svg.BarSeries{
		{Label: scorecard.StatusOptimal.String(), Color: svg.ColorOptimal, Values: counts[scorecard.StatusOptimal]},
		{Label: scorecard.StatusWarning.String(), Color: svg.ColorWarning, Values: counts[scorecard.StatusWarning]},
		{Label: scorecard.StatusCritical.String(), Color: svg.ColorCritical, Values: counts[scorecard.StatusCritical]},
	}, labels, svg.BarOpts{
		Title:       "Estado de KPIs por perspectiva",
		Description: "Cantidad de indicadores óptimos, en alerta y críticos",
	})
	if err != nil {
		return ui.DashboardViewModel{}, err
	}
	vm.StatusBarsSVG = bars

	if data.kpi != nil {
		kpiView, err := h.buildKPIView(*data.kpi)
		if err != nil {
			return ui.DashboardViewModel{}, err
		}
		vm.SelectedKPI = &kpiView
	}
	return vm, nil
}

func (h *Handler) buildKPIView(detail scorecard.KPIDetail) (ui.KPIDetailView, error) {
	if h.line == nil || h.bar == nil {
		return ui.KPIDetailView{}, fmt.Errorf("svg renderer missing")
	}
	vm := ui.NewKPIDetailView(detail)

	labels := make([]string, 0, len(detail.History))
	values := make([]float64, 0, len(detail.History))
	targets := make([]float64, 0, len(detail.History))
	for _, point := range detail.History {
		labels = append(labels, point.Label)
		values = append(values, point.Value)
		targets = append(targets, point.Target)
	}
	history, err := h.line.Line(svg.DefaultWidth, svg.DefaultHeight, values, labels, svg.LineOpts{
		Title:          detail.KPI.Name,
		Description:    "Evolución de los últimos seis meses frente a la meta",
		ShowDots:       true,
		Reference:      targets,
		ReferenceLabel: "Meta",
	})
	if err != nil {
		return ui.KPIDetailView{}, err
	}
	vm.HistorySVG = history

	yearLabels := make([]string, len(detail.Stats.History))
	for i := range yearLabels {
		yearLabels[i] = fmt.Sprintf("M-%d", len(yearLabels)-1-i)
	}
	if len(yearLabels) > 0 {
		yearLabels[len(yearLabels)-1] = "Actual"
	}
	year, err := h.line.Line(svg.DefaultWidth, svg.DefaultHeight, detail.Stats.History, yearLabels, svg.LineOpts{
		Title:       "Últimos 13 meses",
		Description: "Historial sintético usado para las comparaciones",
		StrokeColor: svg.ColorTarget,
	})
	if err != nil {
		return ui.KPIDetailView{}, err
	}
	vm.YearSVG = year

	comparison, err := h.bar.Bars(svg.DefaultWidth, svg.DefaultHeight, []svg.BarSeries{
		{Label: "Meta", Color: svg.ColorTarget, Values: []float64{detail.KPI.Target}},
		{Label: "Actual", Color: svg.ColorPrimary, Values: []float64{detail.KPI.Actual}},
	}, []string{detail.KPI.Name}, svg.BarOpts{
		Title:       "Actual vs Meta",
		Description: "Valor actual frente a la meta del indicador",
	})
	if err != nil {
		return ui.KPIDetailView{}, err
	}
	vm.ComparisonSVG = comparison
	return vm, nil
}

func (h *Handler) buildPerspectiveView(detail scorecard.PerspectiveDetail) (ui.PerspectiveDetailView, error) {
	if h.line == nil {
		return ui.PerspectiveDetailView{}, fmt.Errorf("svg renderer missing")
	}
	analysis := detail.Analysis
	vm := ui.PerspectiveDetailView{
		Card:      ui.ToPerspectiveCard(analysis, h.service.PerspectiveKGIs(analysis.Perspective)),
		Detail:    detail,
		RiskScore: fmt.Sprintf("%.2f", analysis.RiskScore),
		Rows:      detail.KGIs,
	}
	labels := make([]string, len(analysis.History))
	target := make([]float64, len(analysis.History))
	for i := range labels {
		labels[i] = fmt.Sprintf("M-%d", len(labels)-1-i)
		target[i] = analysis.Target
	}
	if len(labels) > 0 {
		labels[len(labels)-1] = "Actual"
	}
	history, err := h.line.Line(svg.DefaultWidth, svg.DefaultHeight, analysis.History, labels, svg.LineOpts{
		Title:          analysis.Name,
		Description:    "Tendencia del puntaje de la perspectiva",
		ShowDots:       true,
		Reference:      target,
		ReferenceLabel: "Meta",
	})
	if err != nil {
		return ui.PerspectiveDetailView{}, err
	}
	vm.HistorySVG = history
	return vm, nil
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, title, name string, data any) {
	sess := shared.SessionFromContext(r.Context())
	var flash *shared.FlashMessage
	csrfToken := ""
	if sess != nil {
		flash = sess.PopFlash()
		if h.csrf != nil {
			csrfToken, _ = h.csrf.EnsureToken(r.Context(), sess)
		}
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		User:        sess.User(),
		Data:        data,
	}
	if err := h.templates.Render(w, name, viewData); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

func (h *Handler) handleFilterError(w http.ResponseWriter, err error) {
	if errors.Is(err, scorecard.ErrUnknownPerspective) || errors.Is(err, scorecard.ErrUnknownStatus) {
		http.Error(w, "Parámetro no válido", http.StatusBadRequest)
		return
	}
	h.handleServerError(w, "parse filters", err)
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

func (h *Handler) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

// HandleDashboardForTest exposes the dashboard handler for tests.
func (h *Handler) HandleDashboardForTest(w http.ResponseWriter, r *http.Request) {
	h.handleDashboard(w, r)
}

// HandleCSVForTest exposes the CSV handler for tests.
func (h *Handler) HandleCSVForTest(w http.ResponseWriter, r *http.Request) { h.handleCSV(w, r) }

// HandleUploadForTest exposes the upload handler for tests.
func (h *Handler) HandleUploadForTest(w http.ResponseWriter, r *http.Request) { h.handleUpload(w, r) }
