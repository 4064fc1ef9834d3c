package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cc-tools/sudokud/pkg/config"
	"github.com/cc-tools/sudokud/pkg/engine"
	"github.com/cc-tools/sudokud/pkg/engine/builtin"
	"github.com/cc-tools/sudokud/pkg/metrics"
	"github.com/cc-tools/sudokud/pkg/params"
	"github.com/cc-tools/sudokud/pkg/render"
)

const (
	testPuzzle = "530070000600195000098000060800060003400803001700020006060000280000419005000080079"
	movesPath  = "/sudoku/server/game/moves"
	solvePath  = "/sudoku/server/game/solution"
)

func TestMain(m *testing.M) {
	// Collectors are package globals; create them before parallel tests read them.
	metrics.Init()
	os.Exit(m.Run())
}

// stubEngine answers every computation with a fixed status and payload.
type stubEngine struct {
	status  int64
	payload string
	elapsed int
	calls   atomic.Int32
}

func (e *stubEngine) Name() string { return "stub" }

func (e *stubEngine) Capacity(context.Context) (int, error) { return 1024, nil }

func (e *stubEngine) AllocateBuffer(capacity int) (engine.Buffer, error) {
	return engine.NewMemoryBuffer("stub", capacity)
}

func (e *stubEngine) FreeBuffer(buf engine.Buffer) {
	if mb, err := engine.AsMemoryBuffer(buf, "stub"); err == nil {
		mb.Release()
	}
}

func (e *stubEngine) ReadItem(buf engine.Buffer, index int) int16 {
	mb, err := engine.AsMemoryBuffer(buf, "stub")
	if err != nil {
		return 0
	}
	return mb.Item(index)
}

func (e *stubEngine) ComputeMoves(ctx context.Context, position string, buf engine.Buffer) (int64, int, error) {
	return e.compute(buf)
}

func (e *stubEngine) ComputeSolution(ctx context.Context, position string, buf engine.Buffer) (int64, int, error) {
	return e.compute(buf)
}

func (e *stubEngine) compute(buf engine.Buffer) (int64, int, error) {
	e.calls.Add(1)
	if e.status == engine.StatusOK {
		mb, err := engine.AsMemoryBuffer(buf, "stub")
		if err != nil {
			return engine.StatusCallFailed, engine.NoElapsed, err
		}
		if err := mb.WriteString(e.payload); err != nil {
			return engine.StatusCallFailed, engine.NoElapsed, err
		}
	}
	return e.status, e.elapsed, nil
}

func testConfig() *config.ServerConfiguration {
	cfg := config.Default()
	cfg.Port = 0
	cfg.Metrics.Enabled = false
	return cfg
}

func newTestServer(t *testing.T, e engine.Engine) *Server {
	t.Helper()
	return New(testConfig(), engine.Bind(context.Background(), e))
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func gameURL(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

func TestMovesHTML(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, builtin.New())
	rec := get(t, srv.Handler(), gameURL(movesPath, url.Values{"position": {testPuzzle}}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, render.ContentTypeHTML, rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html><pre>5 3 0 0 7 0 0 0 0<br>6 0 0 1 9 5 0 0 0<br>"), body)
	assert.Contains(t, body, "0 0 0 0 8 0 0 7 9<br><br>2.1<br>2.2<br>2.4<br>")
	assert.Contains(t, body, "runtime: ")
	assert.True(t, strings.HasSuffix(body, "ms</pre>"), body)
}

func TestSolutionHTML(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, builtin.New())
	rec := get(t, srv.Handler(), gameURL(solvePath, url.Values{"position": {testPuzzle}}))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<br><br>5 3 4 6 7 8 9 1 2<br>6 7 2 1 9 5 3 4 8<br>")
	assert.Contains(t, body, "3 4 5 2 8 6 1 7 9<br><br>runtime: ")
}

func TestMovesPrettyXML(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, builtin.New())
	rec := get(t, srv.Handler(), gameURL(movesPath, url.Values{
		"position": {testPuzzle},
		"xml":      {"yes"},
		"pretty":   {"yes"},
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, render.ContentTypeXML, rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, `<?xml version="1.0" encoding="UTF-8"?>`), body)
	assert.Contains(t, body, "\n  <request>"+testPuzzle+"</request>")
	assert.Contains(t, body, "\n  <moves>\n    <m>")
	assert.Contains(t, body, "<diagnostic/>")
}

func TestCompactXML(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, builtin.New())
	rec := get(t, srv.Handler(), gameURL(solvePath, url.Values{
		"position": {testPuzzle},
		"xml":      {"TRUE"},
	}))

	assert.Equal(t, render.ContentTypeXML, rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<sudoku><request>"+testPuzzle+"</request><solution><m>"), body)
	assert.Contains(t, body, "</solution><diagnostic></diagnostic><runtime>")
	assert.True(t, strings.HasSuffix(body, "</runtime></sudoku>"), body)
}

func TestPositionRejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query url.Values
	}{
		{name: "missing", query: nil},
		{name: "empty", query: url.Values{"position": {""}}},
		{name: "comma separated", query: url.Values{"position": {"5,3,0"}}},
		{name: "letters", query: url.Values{"position": {"53x"}}},
		{name: "with flags", query: url.Values{"xml": {"yes"}, "pretty": {"yes"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stub := &stubEngine{}
			srv := newTestServer(t, stub)
			rec := get(t, srv.Handler(), gameURL(movesPath, tt.query))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, params.MessagePositionInvalid, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "runtime")
			assert.Zero(t, stub.calls.Load(), "engine must not be called")
		})
	}
}

func TestEngineFailureRendered(t *testing.T) {
	t.Parallel()

	stub := &stubEngine{status: engine.StatusNoSolution, elapsed: 7}
	srv := newTestServer(t, stub)
	query := url.Values{"position": {testPuzzle}}

	rec := get(t, srv.Handler(), gameURL(solvePath, query))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<br>no solution.<br><br>runtime: 7ms</pre>")

	query.Set("xml", "y")
	rec = get(t, srv.Handler(), gameURL(solvePath, query))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<diagnostic>no solution.</diagnostic><runtime>7</runtime>")

	assert.Equal(t, int32(2), stub.calls.Load())
}

func TestSolvedEarlyIsFailure(t *testing.T) {
	t.Parallel()

	stub := &stubEngine{status: engine.StatusSolvedEarly, payload: "<moves/>"}
	srv := newTestServer(t, stub)
	rec := get(t, srv.Handler(), gameURL(movesPath, url.Values{"position": {testPuzzle}}))

	assert.Contains(t, rec.Body.String(), "solved early. solved before end of setup.<br><br>runtime: ")
}

func TestInvalidFlagFallsBack(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubEngine{payload: "<moves/>"})
	rec := get(t, srv.Handler(), gameURL(movesPath, url.Values{
		"position": {testPuzzle},
		"xml":      {"maybe"},
	}))

	assert.Equal(t, render.ContentTypeHTML, rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<!DOCTYPE html><pre>"))
}

func TestUnknownPath(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubEngine{})
	for _, path := range []string{"/unknown", "/", "/sudoku/server/game", movesPath + "/", "/healthz/x"} {
		rec := get(t, srv.Handler(), path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "bad endpoint not in { /sudoku/server/game/moves,/sudoku/server/game/solution }", rec.Body.String(), path)
		assert.Equal(t, render.ContentTypeText, rec.Header().Get("Content-Type"))
	}
}

func TestPathMatchIgnoresCase(t *testing.T) {
	t.Parallel()

	stub := &stubEngine{payload: "<moves/>"}
	srv := newTestServer(t, stub)
	rec := get(t, srv.Handler(), gameURL("/SUDOKU/Server/Game/MOVES", url.Values{"position": {testPuzzle}}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubEngine{})
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, movesPath+"?position=1", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
		assert.Equal(t, MessageMethodNotAllowed, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodHead, movesPath+"?position="+testPuzzle, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInvalidBindingGatesEveryPath(t *testing.T) {
	t.Parallel()

	srv := New(testConfig(), engine.Bind(context.Background(), nil))
	require.False(t, srv.Binding().Valid())

	for _, target := range []string{
		gameURL(movesPath, url.Values{"position": {testPuzzle}}),
		solvePath,
		"/unknown",
		"/",
	} {
		rec := get(t, srv.Handler(), target)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
		assert.Equal(t, MessageBindingInvalid, rec.Body.String(), target)
	}

	req := httptest.NewRequest(http.MethodPost, movesPath, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	t.Run("bound", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, builtin.New(builtin.WithCapacity(4096)))
		rec := get(t, srv.Handler(), HealthPath)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.True(t, resp.Binding)
		assert.Equal(t, 4096, resp.Capacity)
		assert.Equal(t, builtin.Name, resp.Engine)
		assert.Empty(t, resp.Error)
	})

	t.Run("unbound", func(t *testing.T) {
		t.Parallel()

		srv := New(testConfig(), engine.Bind(context.Background(), builtin.New(builtin.WithCapacity(0))))
		rec := get(t, srv.Handler(), HealthPath)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "unhealthy", resp.Status)
		assert.False(t, resp.Binding)
		assert.Zero(t, resp.Capacity)
		assert.Equal(t, builtin.Name, resp.Engine)
		assert.NotEmpty(t, resp.Error)
	})
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubEngine{payload: "<moves/>"})

	rec := get(t, srv.Handler(), HealthPath)
	assert.Len(t, rec.Header().Get(HeaderRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, HealthPath, nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(HeaderRequestID))
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Metrics.Enabled = true
	srv := New(cfg, engine.Bind(context.Background(), &stubEngine{payload: "<moves/>"}))

	rec := get(t, srv.Handler(), gameURL(movesPath, url.Values{"position": {testPuzzle}}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, srv.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `sudokud_http_requests_total{method="GET",route="moves",status="200"}`)
	assert.Contains(t, body, `sudokud_engine_calls_total{operation="moves",result="ok"}`)
}

func TestMetricsDisabled(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubEngine{})
	rec := get(t, srv.Handler(), "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	mc := NewMiddlewareChain()
	h := mc.Wrap(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := get(t, h, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, MessageInternalError, rec.Body.String())
}

func TestRecoveryAfterWrite(t *testing.T) {
	t.Parallel()

	mc := NewMiddlewareChain()
	h := mc.Wrap(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		panic("late")
	}))

	rec := get(t, h, "/")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestStatusResponseWriter(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	sw := newStatusResponseWriter(rec)
	assert.Same(t, sw, newStatusResponseWriter(sw))

	sw.WriteHeader(http.StatusTeapot)
	sw.WriteHeader(http.StatusOK)
	assert.Equal(t, http.StatusTeapot, sw.statusCode)
	assert.True(t, sw.written)
}

func TestRouter(t *testing.T) {
	t.Parallel()

	noop := func(http.ResponseWriter, *http.Request) bool { return true }

	tests := []struct {
		base string
		path string
		op   engine.Operation
		ok   bool
	}{
		{base: "/sudoku/server/game", path: "/sudoku/server/game/moves", op: engine.OperationMoves, ok: true},
		{base: "/sudoku/server/game/", path: "/sudoku/server/game/solution", op: engine.OperationSolution, ok: true},
		{base: "/api", path: "/API/Solution", op: engine.OperationSolution, ok: true},
		{base: "/api", path: "/api/moves/", ok: false},
		{base: "/api", path: "/api/movesx", ok: false},
		{base: "/api", path: "/moves", ok: false},
	}

	for _, tt := range tests {
		rt := NewRouter(tt.base, noop, noop)
		op, ok := rt.Route(tt.path)
		assert.Equal(t, tt.ok, ok, "%s %s", tt.base, tt.path)
		assert.Equal(t, tt.op, op, "%s %s", tt.base, tt.path)
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		remoteAddr string
		want       string
	}{
		{remoteAddr: "192.0.2.1:1234", want: "192.0.2.1"},
		{remoteAddr: "[2001:db8::1]:80", want: "2001:db8::1"},
		{remoteAddr: "192.0.2.1", want: "192.0.2.1"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remoteAddr
		assert.Equal(t, tt.want, ClientIP(req))
	}
}

func TestServerStartStop(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MaxConnections = 4
	srv := New(cfg, engine.Bind(context.Background(), builtin.New()))

	assert.Empty(t, srv.Addr())
	require.NoError(t, srv.Start())
	assert.True(t, srv.IsRunning())
	assert.ErrorIs(t, srv.Start(), ErrAlreadyRunning)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(srv.URL() + movesPath + "?position=" + testPuzzle)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "runtime: ")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	assert.False(t, srv.IsRunning())
	assert.Zero(t, srv.Uptime())
	require.NoError(t, srv.Stop(ctx))

	_, open := <-srv.Errors()
	assert.False(t, open, "error channel closes after a clean stop")
}
