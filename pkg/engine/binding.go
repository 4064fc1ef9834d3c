package engine

import (
	"context"
	"fmt"
)

// Binding is the immutable result of the startup binding gate. It is built
// once by Bind and shared read-only by every request handler; its validity is
// never re-evaluated.
type Binding struct {
	engine   Engine
	name     string
	capacity int
	err      error
}

// Bind resolves e and its output buffer capacity. The returned Binding is
// valid only if an engine is present and reports a capacity in
// [1, MaxCapacity]. Bind
// never returns nil; inspect Valid and Err instead.
func Bind(ctx context.Context, e Engine) *Binding {
	if e == nil {
		return &Binding{err: ErrNoEngine}
	}
	b := &Binding{name: e.Name()}

	capacity, err := e.Capacity(ctx)
	if err != nil {
		b.err = fmt.Errorf("resolve %s capacity: %w", b.name, err)
		return b
	}
	if capacity <= 0 || capacity > MaxCapacity {
		b.err = fmt.Errorf("%w: %s reported %d", ErrBadCapacity, b.name, capacity)
		return b
	}

	b.engine = e
	b.capacity = capacity
	return b
}

// Valid reports whether the engine was bound successfully.
func (b *Binding) Valid() bool {
	return b != nil && b.err == nil && b.engine != nil
}

// Err returns the reason the binding failed, or nil.
func (b *Binding) Err() error {
	if b == nil {
		return ErrNotBound
	}
	return b.err
}

// Engine returns the bound engine, or nil for an invalid binding.
func (b *Binding) Engine() Engine {
	if !b.Valid() {
		return nil
	}
	return b.engine
}

// EngineName returns the name the engine reported at bind time.
func (b *Binding) EngineName() string {
	if b == nil {
		return ""
	}
	return b.name
}

// Capacity returns the bound output buffer capacity in items.
func (b *Binding) Capacity() int {
	if !b.Valid() {
		return 0
	}
	return b.capacity
}
