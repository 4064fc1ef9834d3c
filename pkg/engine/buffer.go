package engine

import (
	"fmt"
	"sync/atomic"
)

// MemoryBuffer is a Buffer backed by an in-process item slice. Drivers that
// receive their answer as a Go value use it to honour the buffer contract.
type MemoryBuffer struct {
	owner    string
	items    []int16
	released atomic.Bool
}

// NewMemoryBuffer allocates a zeroed buffer of the given capacity for owner.
func NewMemoryBuffer(owner string, capacity int) (*MemoryBuffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d", ErrBufferAllocation, capacity)
	}
	return &MemoryBuffer{owner: owner, items: make([]int16, capacity)}, nil
}

// Capacity returns the number of items the buffer holds.
func (b *MemoryBuffer) Capacity() int { return len(b.items) }

// Owner returns the name of the engine that allocated the buffer.
func (b *MemoryBuffer) Owner() string { return b.owner }

// Released reports whether Release has been called.
func (b *MemoryBuffer) Released() bool { return b.released.Load() }

// Release marks the buffer as freed and drops its storage.
// Releasing twice is a no-op.
func (b *MemoryBuffer) Release() {
	if b.released.CompareAndSwap(false, true) {
		b.items = nil
	}
}

// Item returns the item at index, or 0 when index is out of range or the
// buffer has been released.
func (b *MemoryBuffer) Item(index int) int16 {
	if b.released.Load() || index < 0 || index >= len(b.items) {
		return 0
	}
	return b.items[index]
}

// WriteString stores s as zero-terminated items. Text that does not fit is
// truncated so that the final item is always the terminator.
func (b *MemoryBuffer) WriteString(s string) error {
	if b.released.Load() {
		return ErrBufferReleased
	}
	n := 0
	for _, r := range s {
		if n >= len(b.items)-1 {
			break
		}
		b.items[n] = int16(uint16(r))
		n++
	}
	b.items[n] = 0
	return nil
}

// AsMemoryBuffer checks that buf is a live MemoryBuffer allocated by owner.
func AsMemoryBuffer(buf Buffer, owner string) (*MemoryBuffer, error) {
	mb, ok := buf.(*MemoryBuffer)
	if !ok || mb == nil {
		return nil, fmt.Errorf("%w: %T", ErrBufferWrongEngine, buf)
	}
	if mb.owner != owner {
		return nil, fmt.Errorf("%w: %s", ErrBufferWrongEngine, mb.owner)
	}
	if mb.Released() {
		return nil, ErrBufferReleased
	}
	return mb, nil
}
