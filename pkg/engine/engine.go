package engine

import (
	"context"
	"errors"
)

// Common errors for engine binding and invocation.
var (
	ErrNoEngine          = errors.New("no engine configured")
	ErrBadCapacity       = errors.New("engine buffer capacity out of range")
	ErrNotBound          = errors.New("engine binding invalid")
	ErrBufferAllocation  = errors.New("engine buffer allocation failed")
	ErrInvocation        = errors.New("engine call failed")
	ErrUnknownOperation  = errors.New("unknown engine operation")
	ErrBufferReleased    = errors.New("engine buffer already released")
	ErrBufferWrongEngine = errors.New("engine buffer belongs to another engine")
)

// MaxCapacity bounds the buffer capacity an engine may report. Every call
// allocates a buffer of that size.
const MaxCapacity = 1 << 24

// NoElapsed is the elapsed-time sentinel for "not available".
const NoElapsed = -1

// Operation names one of the two solving operations.
type Operation string

const (
	OperationMoves    Operation = "moves"
	OperationSolution Operation = "solution"
)

// Buffer is an engine-owned output area of fixed capacity. The engine writes
// its answer as 16-bit items terminated by a zero item.
type Buffer interface {
	Capacity() int
}

// Engine is the solving-engine collaborator.
//
// Capacity is queried once at bind time. ComputeMoves and ComputeSolution
// write the answer into buf and return the engine status code (0 = success)
// together with the elapsed engine time in milliseconds, or NoElapsed. A
// non-nil error means the call itself could not be executed.
type Engine interface {
	Name() string
	Capacity(ctx context.Context) (int, error)
	AllocateBuffer(capacity int) (Buffer, error)
	FreeBuffer(buf Buffer)
	ReadItem(buf Buffer, index int) int16
	ComputeMoves(ctx context.Context, position string, buf Buffer) (status int64, elapsedMS int, err error)
	ComputeSolution(ctx context.Context, position string, buf Buffer) (status int64, elapsedMS int, err error)
}
