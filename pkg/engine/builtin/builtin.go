// Package builtin provides an in-process Sudoku solving engine.
//
// The engine parses a position of 81 digits (spaces ignored, 0 = empty),
// checks the givens for conflicts and runs a bitmask backtracking search
// with a minimum-remaining-values heuristic. Answers are written to an
// engine.MemoryBuffer as the XML payload the response encoder expects:
//
//	<moves><m><c>2</c><v>4</v></m>...</moves>
//	<solution><m><c>0</c><v>5</v></m>...</solution>
//
// Failures are reported as engine status codes, never as Go errors:
// malformed positions (1), conflicting givens (2), an already complete grid
// (3), unsolvable grids (4), solve timeouts (5), payloads larger than the
// buffer (6), calls after Shutdown (7) and calls beyond the concurrency
// limit (8).
package builtin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/cc-tools/sudokud/pkg/engine"
	"github.com/cc-tools/sudokud/pkg/logging"
)

// Name is the engine name reported to the binding gate.
const Name = "builtin"

// Defaults.
const (
	DefaultCapacity     = 65536
	DefaultSolveTimeout = 10 * time.Second
)

// DefaultMaxConcurrent is the default number of solves allowed in flight.
var DefaultMaxConcurrent = runtime.NumCPU() * 2

// Engine is the in-process solver. It is safe for concurrent use.
type Engine struct {
	capacity     int
	solveTimeout time.Duration
	slots        chan struct{}
	log          *slog.Logger
	closed       atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithCapacity sets the buffer capacity reported at bind time. Non-positive
// values are kept so the binding gate can reject them.
func WithCapacity(n int) Option {
	return func(e *Engine) { e.capacity = n }
}

// WithSolveTimeout bounds a single solve. Zero disables the bound; the
// caller's context still applies.
func WithSolveTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.solveTimeout = d
		}
	}
}

// WithMaxConcurrent limits the number of solves in flight. Calls beyond the
// limit return the busy status immediately. Zero means unlimited.
func WithMaxConcurrent(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.slots = newSlots(n)
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

// New creates a builtin engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		capacity:     DefaultCapacity,
		solveTimeout: DefaultSolveTimeout,
		slots:        newSlots(DefaultMaxConcurrent),
		log:          logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func newSlots(n int) chan struct{} {
	if n == 0 {
		return nil
	}
	return make(chan struct{}, n)
}

var _ engine.Engine = (*Engine)(nil)

// Name implements engine.Engine.
func (e *Engine) Name() string { return Name }

// Capacity implements engine.Engine.
func (e *Engine) Capacity(context.Context) (int, error) {
	return e.capacity, nil
}

// AllocateBuffer implements engine.Engine.
func (e *Engine) AllocateBuffer(capacity int) (engine.Buffer, error) {
	return engine.NewMemoryBuffer(Name, capacity)
}

// FreeBuffer implements engine.Engine.
func (e *Engine) FreeBuffer(buf engine.Buffer) {
	mb, err := engine.AsMemoryBuffer(buf, Name)
	if err != nil {
		e.log.Warn("free of foreign or released buffer", "error", err)
		return
	}
	mb.Release()
}

// ReadItem implements engine.Engine.
func (e *Engine) ReadItem(buf engine.Buffer, index int) int16 {
	mb, err := engine.AsMemoryBuffer(buf, Name)
	if err != nil {
		return 0
	}
	return mb.Item(index)
}

// ComputeMoves implements engine.Engine. The answer lists every candidate
// value of every empty cell of a solvable position.
func (e *Engine) ComputeMoves(ctx context.Context, position string, buf engine.Buffer) (int64, int, error) {
	return e.compute(ctx, engine.OperationMoves, position, buf)
}

// ComputeSolution implements engine.Engine. The answer lists all 81 cells
// of the solved grid.
func (e *Engine) ComputeSolution(ctx context.Context, position string, buf engine.Buffer) (int64, int, error) {
	return e.compute(ctx, engine.OperationSolution, position, buf)
}

// Shutdown makes every later call return the shutdown status.
func (e *Engine) Shutdown() {
	e.closed.Store(true)
}

func (e *Engine) compute(ctx context.Context, op engine.Operation, position string, buf engine.Buffer) (int64, int, error) {
	mb, err := engine.AsMemoryBuffer(buf, Name)
	if err != nil {
		return engine.StatusCallFailed, engine.NoElapsed, err
	}
	if e.closed.Load() {
		return engine.StatusShutdown, engine.NoElapsed, nil
	}
	if !e.acquire() {
		e.log.Warn("solver busy", "operation", op)
		return engine.StatusBusy, engine.NoElapsed, nil
	}
	defer e.release()

	if e.solveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.solveTimeout)
		defer cancel()
	}

	start := time.Now()
	payload, status := e.run(ctx, op, position)
	elapsed := int(time.Since(start).Milliseconds())
	if status != engine.StatusOK {
		return status, elapsed, nil
	}

	if len(payload) >= mb.Capacity() {
		e.log.Error("payload exceeds buffer", "operation", op, "payload_len", len(payload), "capacity", mb.Capacity())
		return engine.StatusInternal, elapsed, nil
	}
	if err := mb.WriteString(payload); err != nil {
		return engine.StatusCallFailed, engine.NoElapsed, err
	}
	return engine.StatusOK, elapsed, nil
}

func (e *Engine) run(ctx context.Context, op engine.Operation, position string) (string, int64) {
	g, err := parseGrid(position)
	switch {
	case errors.Is(err, errBadPosition):
		return "", engine.StatusBadParameter
	case errors.Is(err, errConflict):
		return "", engine.StatusSetupFailed
	case err != nil:
		return "", engine.StatusInternal
	}
	if g.empty() == 0 {
		return "", engine.StatusSolvedEarly
	}

	// Moves are only offered for positions that can still be completed.
	work := *g
	ok, err := solve(ctx, &work)
	if err != nil {
		e.log.Debug("solve aborted", "operation", op, "error", err)
		return "", engine.StatusTimeout
	}
	if !ok {
		return "", engine.StatusNoSolution
	}

	var payload string
	switch op {
	case engine.OperationMoves:
		payload, err = encodePayload(elemMoves, movesOf(g))
	case engine.OperationSolution:
		payload, err = encodePayload(elemSolution, solutionOf(&work))
	default:
		err = fmt.Errorf("%w: %q", engine.ErrUnknownOperation, op)
	}
	if err != nil {
		e.log.Error("encode payload", "operation", op, "error", err)
		return "", engine.StatusInternal
	}
	return payload, engine.StatusOK
}

func (e *Engine) acquire() bool {
	if e.slots == nil {
		return true
	}
	select {
	case e.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

func (e *Engine) release() {
	if e.slots != nil {
		<-e.slots
	}
}
