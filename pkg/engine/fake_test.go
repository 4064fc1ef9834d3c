package engine

import (
	"context"
	"sync/atomic"
)

// fakeEngine is a scriptable Engine backed by MemoryBuffer.
type fakeEngine struct {
	capacity int
	capErr   error
	allocErr error
	nilBuf   bool

	payload string
	status  int64
	elapsed int
	callErr error
	panics  any

	lastPosition atomic.Value
	allocated    atomic.Int32
	freed        atomic.Int32
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Capacity(context.Context) (int, error) {
	return f.capacity, f.capErr
}

func (f *fakeEngine) AllocateBuffer(capacity int) (Buffer, error) {
	if f.allocErr != nil {
		return nil, f.allocErr
	}
	if f.nilBuf {
		return nil, nil
	}
	f.allocated.Add(1)
	return NewMemoryBuffer(f.Name(), capacity)
}

func (f *fakeEngine) FreeBuffer(buf Buffer) {
	if mb, err := AsMemoryBuffer(buf, f.Name()); err == nil {
		mb.Release()
		f.freed.Add(1)
	}
}

func (f *fakeEngine) ReadItem(buf Buffer, index int) int16 {
	mb, err := AsMemoryBuffer(buf, f.Name())
	if err != nil {
		return 0
	}
	return mb.Item(index)
}

func (f *fakeEngine) ComputeMoves(ctx context.Context, position string, buf Buffer) (int64, int, error) {
	return f.compute(position, buf)
}

func (f *fakeEngine) ComputeSolution(ctx context.Context, position string, buf Buffer) (int64, int, error) {
	return f.compute(position, buf)
}

func (f *fakeEngine) compute(position string, buf Buffer) (int64, int, error) {
	f.lastPosition.Store(position)
	if f.panics != nil {
		panic(f.panics)
	}
	if f.callErr != nil {
		return StatusCallFailed, NoElapsed, f.callErr
	}
	mb, err := AsMemoryBuffer(buf, f.Name())
	if err != nil {
		return StatusCallFailed, NoElapsed, err
	}
	if err := mb.WriteString(f.payload); err != nil {
		return StatusCallFailed, NoElapsed, err
	}
	return f.status, f.elapsed, nil
}
