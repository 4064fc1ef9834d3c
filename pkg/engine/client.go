package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cc-tools/sudokud/pkg/logging"
	"github.com/cc-tools/sudokud/pkg/metrics"
)

// Outcome is the result of one engine invocation.
type Outcome struct {
	Operation Operation
	Position  string

	// Status is the raw engine status code; 0 means success.
	Status int64

	// Payload is the engine's XML answer, set only on success.
	Payload string

	// Diagnostic is the mapped status text, empty on success.
	Diagnostic string

	// ElapsedMS is the engine-reported runtime, or NoElapsed.
	ElapsedMS int

	// Err is set when the engine call could not be executed. It wraps
	// ErrNotBound, ErrBufferAllocation or ErrInvocation.
	Err error
}

// OK reports whether the engine ran and returned status 0.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Status == StatusOK
}

// Failed reports whether the engine ran and returned a nonzero status.
func (o Outcome) Failed() bool {
	return o.Err == nil && o.Status != StatusOK
}

// Client invokes the engine held by a Binding.
type Client struct {
	binding *Binding
	log     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a client for binding.
func NewClient(binding *Binding, opts ...ClientOption) *Client {
	c := &Client{
		binding: binding,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Binding returns the binding the client invokes.
func (c *Client) Binding() *Binding {
	return c.binding
}

// Moves asks the engine for the legal next moves of position.
func (c *Client) Moves(ctx context.Context, position string) Outcome {
	return c.Invoke(ctx, OperationMoves, position)
}

// Solution asks the engine for a full solution of position.
func (c *Client) Solution(ctx context.Context, position string) Outcome {
	return c.Invoke(ctx, OperationSolution, position)
}

// Invoke runs op against the bound engine. The output buffer is allocated for
// this call only and released before Invoke returns on every path.
func (c *Client) Invoke(ctx context.Context, op Operation, position string) Outcome {
	start := time.Now()
	out := c.invoke(ctx, op, position)
	observe(out, time.Since(start))

	switch {
	case out.Err != nil:
		c.log.Error("engine call failed", "operation", op, "error", out.Err)
	case out.Failed():
		c.log.Warn("engine returned failure", "operation", op, "status", out.Status, "diagnostic", out.Diagnostic)
	default:
		c.log.Debug("engine call ok", "operation", op, "elapsed_ms", out.ElapsedMS, "payload_len", len(out.Payload))
	}
	return out
}

func (c *Client) invoke(ctx context.Context, op Operation, position string) Outcome {
	out := Outcome{
		Operation: op,
		Position:  position,
		ElapsedMS: NoElapsed,
	}

	if !c.binding.Valid() {
		err := ErrNotBound
		if berr := c.binding.Err(); berr != nil && !errors.Is(berr, ErrNotBound) {
			err = fmt.Errorf("%w: %w", ErrNotBound, berr)
		}
		return out.callFailed(err)
	}
	e := c.binding.engine

	buf, err := e.AllocateBuffer(c.binding.capacity)
	if err != nil {
		return out.callFailed(fmt.Errorf("%w: %w", ErrBufferAllocation, err))
	}
	if buf == nil {
		return out.callFailed(ErrBufferAllocation)
	}
	defer e.FreeBuffer(buf)

	status, elapsed, err := call(ctx, e, op, position, buf)
	out.ElapsedMS = elapsed
	if err != nil {
		return out.callFailed(fmt.Errorf("%w: %s: %w", ErrInvocation, op, err))
	}

	out.Status = status
	if status != StatusOK {
		out.Diagnostic = Diagnostic(status)
		return out
	}

	out.Payload = readString(e, buf, c.binding.capacity)
	return out
}

func (o Outcome) callFailed(err error) Outcome {
	o.Status = StatusCallFailed
	o.Diagnostic = DiagnosticCallFailed
	o.Err = err
	return o
}

// call runs the engine operation, converting a driver panic into an error so
// the deferred buffer release in invoke still happens.
func call(ctx context.Context, e Engine, op Operation, position string, buf Buffer) (status int64, elapsed int, err error) {
	defer func() {
		if r := recover(); r != nil {
			status, elapsed, err = StatusCallFailed, NoElapsed, fmt.Errorf("engine panic: %v", r)
		}
	}()

	switch op {
	case OperationMoves:
		return e.ComputeMoves(ctx, position, buf)
	case OperationSolution:
		return e.ComputeSolution(ctx, position, buf)
	default:
		return StatusCallFailed, NoElapsed, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
}

// readString reads items until a zero item or the end of the buffer.
func readString(e Engine, buf Buffer, capacity int) string {
	var sb strings.Builder
	for i := 0; i < capacity; i++ {
		item := e.ReadItem(buf, i)
		if item == 0 {
			break
		}
		sb.WriteRune(rune(uint16(item)))
	}
	return sb.String()
}

func observe(out Outcome, d time.Duration) {
	result := StatusLabel(out.Status)
	if out.Err != nil {
		result = "error"
	}
	if metrics.EngineCallsTotal != nil {
		metrics.EngineCallsTotal.WithLabelValues(string(out.Operation), result).Inc()
	}
	if metrics.EngineCallDuration != nil {
		metrics.EngineCallDuration.WithLabelValues(string(out.Operation)).Observe(d.Seconds())
	}
}
