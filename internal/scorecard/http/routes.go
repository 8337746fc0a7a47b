package scorecardhttp

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/bsc-scorecard/scorecard/internal/platform/httpx"
	"github.com/bsc-scorecard/scorecard/internal/shared"
)

// MountRoutes registers the dashboard pages behind the auth gate.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Group(func(gr chi.Router) {
		gr.Use(RequireAuth)
		gr.Get("/scorecard", h.handleDashboard)
		gr.Get("/scorecard/kpis/{kpiID}", h.handleKPI)
		gr.Get("/scorecard/perspectives/{perspective}", h.handlePerspective)
		gr.Group(func(lr chi.Router) {
			lr.Use(limiter)
			lr.Get("/scorecard/export.csv", h.handleCSV)
			lr.Post("/scorecard/upload", h.handleUpload)
		})
	})
}

// MountAPI registers the JSON endpoints, answering 401 problems when the
// session is not authenticated.
func (h *Handler) MountAPI(r chi.Router) {
	if h == nil {
		return
	}
	r.Group(func(gr chi.Router) {
		gr.Use(RequireAuthAPI)
		gr.Get("/scorecard", h.handleAPISnapshot)
		gr.Get("/scorecard/table", h.handleAPITable)
		gr.Get("/scorecard/kpis/{kpiID}", h.handleAPIKPI)
	})
}

// RequireAuth redirects unauthenticated browser requests to the login page.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !shared.SessionFromContext(r.Context()).Authenticated() {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuthAPI rejects unauthenticated API requests.
func RequireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !shared.SessionFromContext(r.Context()).Authenticated() {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if user := strings.TrimSpace(shared.AuthenticatedUser(r.Context())); user != "" {
		return "user:" + user, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
