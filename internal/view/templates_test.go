package view

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsc-scorecard/scorecard/internal/scorecard"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestLongDate(t *testing.T) {
	assert.Equal(t, "15 de octubre de 2026", LongDate(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1 de enero de 2025", LongDate(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Empty(t, LongDate(time.Time{}))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "status-warning", StatusClass(scorecard.StatusWarning))
	assert.Equal(t, "status-unknown", StatusClass(scorecard.Status(0)))
}

func TestRenderStatusRejectsUnknownTemplate(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = engine.RenderStatus(rr, http.StatusBadRequest, "pages/missing.html", TemplateData{})
	assert.Error(t, err)
	assert.Equal(t, http.StatusOK, rr.Code, "nothing is written on failure")
	assert.Empty(t, rr.Body.String())

	rr = httptest.NewRecorder()
	require.NoError(t, engine.RenderStatus(rr, http.StatusBadRequest, "pages/login.html", TemplateData{Title: "Iniciar sesión"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "<form")
}
