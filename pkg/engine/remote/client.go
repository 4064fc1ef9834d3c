// Package remote drives a Sudoku engine over HTTP and serves an engine over
// the same protocol.
//
// Wire protocol (JSON):
//
//	GET  /v1/capacity                          -> {"capacity":65536}
//	POST /v1/moves    {"position":"5 3 0 ..."} -> {"status":0,"payload":"<moves>...</moves>","elapsedMs":3}
//	POST /v1/solution {"position":"5 3 0 ..."} -> {"status":4,"elapsedMs":12}
//
// Engine statuses travel in the body with HTTP 200; a non-2xx response means
// the call itself failed.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cc-tools/sudokud/pkg/engine"
	"github.com/cc-tools/sudokud/pkg/logging"
)

// Name is the engine name reported to the binding gate.
const Name = "remote"

// DefaultTimeout bounds a single HTTP exchange with the engine.
const DefaultTimeout = 30 * time.Second

// Engine is an engine.Engine backed by a remote engine process.
type Engine struct {
	baseURL    string
	httpClient *http.Client
	token      string
	log        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		e.httpClient.Timeout = timeout
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(e *Engine) {
		e.token = token
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) {
		if c != nil {
			e.httpClient = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New creates a remote engine driver for baseURL.
func New(baseURL string, opts ...Option) *Engine {
	e := &Engine{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ engine.Engine = (*Engine)(nil)

// Name implements engine.Engine.
func (e *Engine) Name() string { return Name }

// BaseURL returns the engine URL.
func (e *Engine) BaseURL() string { return e.baseURL }

// Capacity implements engine.Engine by probing the remote engine.
func (e *Engine) Capacity(ctx context.Context) (int, error) {
	resp, err := e.get(ctx, PathCapacity)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, e.parseError(resp)
	}

	var result CapacityResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode capacity: %w", err)
	}
	return result.Capacity, nil
}

// AllocateBuffer implements engine.Engine.
func (e *Engine) AllocateBuffer(capacity int) (engine.Buffer, error) {
	return engine.NewMemoryBuffer(Name, capacity)
}

// FreeBuffer implements engine.Engine.
func (e *Engine) FreeBuffer(buf engine.Buffer) {
	if mb, err := engine.AsMemoryBuffer(buf, Name); err == nil {
		mb.Release()
	}
}

// ReadItem implements engine.Engine.
func (e *Engine) ReadItem(buf engine.Buffer, index int) int16 {
	mb, err := engine.AsMemoryBuffer(buf, Name)
	if err != nil {
		return 0
	}
	return mb.Item(index)
}

// ComputeMoves implements engine.Engine.
func (e *Engine) ComputeMoves(ctx context.Context, position string, buf engine.Buffer) (int64, int, error) {
	return e.compute(ctx, PathMoves, position, buf)
}

// ComputeSolution implements engine.Engine.
func (e *Engine) ComputeSolution(ctx context.Context, position string, buf engine.Buffer) (int64, int, error) {
	return e.compute(ctx, PathSolution, position, buf)
}

func (e *Engine) compute(ctx context.Context, path, position string, buf engine.Buffer) (int64, int, error) {
	mb, err := engine.AsMemoryBuffer(buf, Name)
	if err != nil {
		return engine.StatusCallFailed, engine.NoElapsed, err
	}

	resp, err := e.post(ctx, path, ComputeRequest{Position: position})
	if err != nil {
		return engine.StatusCallFailed, engine.NoElapsed, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return engine.StatusCallFailed, engine.NoElapsed, e.parseError(resp)
	}

	var result ComputeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return engine.StatusCallFailed, engine.NoElapsed, fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	if result.Status == engine.StatusOK {
		if len(result.Payload) >= mb.Capacity() {
			e.log.Warn("remote payload truncated to buffer", "path", path, "payload_len", len(result.Payload), "capacity", mb.Capacity())
		}
		if err := mb.WriteString(result.Payload); err != nil {
			return engine.StatusCallFailed, engine.NoElapsed, err
		}
	}
	return result.Status, result.ElapsedMS, nil
}

// HTTP helpers

func (e *Engine) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return e.do(req)
}

func (e *Engine) post(ctx context.Context, path string, body any) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func (e *Engine) do(req *http.Request) (*http.Response, error) {
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	return e.httpClient.Do(req)
}

func (e *Engine) parseError(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	body, _ := io.ReadAll(resp.Body)
	var errResp ErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
		return fmt.Errorf("%w: %s: %s", ErrUnexpectedStatus, errResp.Error, errResp.Message)
	}
	return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
}
