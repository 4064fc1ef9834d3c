package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	reg := Init()
	require.NotNil(t, reg)
	assert.Same(t, reg, Init(), "Init must be idempotent")
	assert.Same(t, reg, DefaultRegistry())

	assert.NotNil(t, RequestsTotal)
	assert.NotNil(t, RequestDuration)
	assert.NotNil(t, EngineCallsTotal)
	assert.NotNil(t, EngineCallDuration)
	assert.NotNil(t, ValidationFailuresTotal)
	assert.NotNil(t, BindingValid)
}

func TestReset(t *testing.T) {
	Init()
	Reset()

	assert.Nil(t, DefaultRegistry())
	assert.Nil(t, RequestsTotal)
	assert.Nil(t, EngineCallsTotal)
	assert.Nil(t, BindingValid)
}

func TestSetBindingValid(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	// no-op before Init
	SetBindingValid(true)

	Init()
	SetBindingValid(true)
	assert.Contains(t, scrape(t), "sudokud_engine_binding_valid 1")

	SetBindingValid(false)
	assert.Contains(t, scrape(t), "sudokud_engine_binding_valid 0")
}

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestHandler(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Init()
	RequestsTotal.WithLabelValues("GET", "moves", "200").Inc()
	EngineCallsTotal.WithLabelValues("moves", "no_solution").Add(2)

	body := scrape(t)
	assert.Contains(t, body, `sudokud_http_requests_total{method="GET",route="moves",status="200"} 1`)
	assert.Contains(t, body, `sudokud_engine_calls_total{operation="moves",result="no_solution"} 2`)
	assert.Contains(t, body, "go_goroutines")
}
