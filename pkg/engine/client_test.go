package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const movesPayload = "<moves><m><c>2</c><v>4</v></m></moves>"

func newTestClient(t *testing.T, f *fakeEngine) *Client {
	t.Helper()
	b := Bind(context.Background(), f)
	require.True(t, b.Valid(), "bind: %v", b.Err())
	return NewClient(b)
}

func TestClientSuccess(t *testing.T) {
	t.Parallel()

	f := &fakeEngine{capacity: 256, payload: movesPayload, elapsed: 12}
	c := newTestClient(t, f)

	out := c.Moves(context.Background(), "5 3 0")
	assert.True(t, out.OK())
	assert.False(t, out.Failed())
	assert.NoError(t, out.Err)
	assert.Equal(t, OperationMoves, out.Operation)
	assert.Equal(t, "5 3 0", out.Position)
	assert.Equal(t, movesPayload, out.Payload)
	assert.Empty(t, out.Diagnostic)
	assert.Equal(t, 12, out.ElapsedMS)
	assert.Equal(t, "5 3 0", f.lastPosition.Load())

	assert.EqualValues(t, 1, f.allocated.Load())
	assert.EqualValues(t, 1, f.freed.Load())
}

func TestClientSolutionOperation(t *testing.T) {
	t.Parallel()

	f := &fakeEngine{capacity: 256, payload: "<solution/>", elapsed: 1}
	out := newTestClient(t, f).Solution(context.Background(), "1")
	assert.Equal(t, OperationSolution, out.Operation)
	assert.Equal(t, "<solution/>", out.Payload)
}

func TestClientStatusFailure(t *testing.T) {
	t.Parallel()

	for _, code := range []int64{StatusBadParameter, StatusSolvedEarly, StatusNoSolution, StatusBusy, 99} {
		f := &fakeEngine{capacity: 64, payload: "ignored", status: code, elapsed: 7}
		out := newTestClient(t, f).Solution(context.Background(), "1 2 3")

		assert.True(t, out.Failed(), "code %d", code)
		assert.False(t, out.OK())
		assert.NoError(t, out.Err)
		assert.Equal(t, code, out.Status)
		assert.Equal(t, Diagnostic(code), out.Diagnostic)
		assert.Empty(t, out.Payload)
		assert.Equal(t, 7, out.ElapsedMS)
		assert.EqualValues(t, 1, f.freed.Load())
	}
}

func TestClientTruncatedPayload(t *testing.T) {
	t.Parallel()

	f := &fakeEngine{capacity: 5, payload: movesPayload}
	out := newTestClient(t, f).Moves(context.Background(), "1")
	assert.True(t, out.OK())
	assert.Equal(t, "<mov", out.Payload)
}

func TestClientInvocationErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	tests := []struct {
		name    string
		engine  *fakeEngine
		wantErr error
		freed   int32
	}{
		{name: "call error", engine: &fakeEngine{capacity: 8, callErr: boom}, wantErr: ErrInvocation, freed: 1},
		{name: "panic", engine: &fakeEngine{capacity: 8, panics: "kaboom"}, wantErr: ErrInvocation, freed: 1},
		{name: "allocation error", engine: &fakeEngine{capacity: 8, allocErr: boom}, wantErr: ErrBufferAllocation},
		{name: "nil buffer", engine: &fakeEngine{capacity: 8, nilBuf: true}, wantErr: ErrBufferAllocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := newTestClient(t, tt.engine).Moves(context.Background(), "1")
			assert.ErrorIs(t, out.Err, tt.wantErr)
			assert.False(t, out.OK())
			assert.False(t, out.Failed())
			assert.Equal(t, StatusCallFailed, out.Status)
			assert.Equal(t, DiagnosticCallFailed, out.Diagnostic)
			assert.Equal(t, NoElapsed, out.ElapsedMS)
			assert.Equal(t, tt.freed, tt.engine.freed.Load())
		})
	}
}

func TestClientWrapsCallError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	out := newTestClient(t, &fakeEngine{capacity: 8, callErr: boom}).Solution(context.Background(), "1")
	assert.ErrorIs(t, out.Err, boom)
	assert.Contains(t, out.Err.Error(), "solution")
}

func TestClientInvalidBinding(t *testing.T) {
	t.Parallel()

	c := NewClient(Bind(context.Background(), &fakeEngine{capacity: 0}))
	out := c.Moves(context.Background(), "1")
	assert.ErrorIs(t, out.Err, ErrNotBound)
	assert.ErrorIs(t, out.Err, ErrBadCapacity)
	assert.Equal(t, DiagnosticCallFailed, out.Diagnostic)

	out = NewClient(nil).Moves(context.Background(), "1")
	assert.ErrorIs(t, out.Err, ErrNotBound)
}

func TestClientUnknownOperation(t *testing.T) {
	t.Parallel()

	f := &fakeEngine{capacity: 8}
	out := newTestClient(t, f).Invoke(context.Background(), Operation("hint"), "1")
	assert.ErrorIs(t, out.Err, ErrUnknownOperation)
	assert.EqualValues(t, 1, f.freed.Load())
}
