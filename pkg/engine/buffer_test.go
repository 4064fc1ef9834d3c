package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryBuffer(t *testing.T) {
	t.Parallel()

	_, err := NewMemoryBuffer("x", 0)
	assert.ErrorIs(t, err, ErrBufferAllocation)

	b, err := NewMemoryBuffer("x", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, b.Capacity())
	assert.Equal(t, "x", b.Owner())
	assert.False(t, b.Released())
}

func TestMemoryBufferWriteString(t *testing.T) {
	t.Parallel()

	t.Run("fits", func(t *testing.T) {
		t.Parallel()
		b, err := NewMemoryBuffer("x", 8)
		require.NoError(t, err)
		require.NoError(t, b.WriteString("<a/>"))
		assert.Equal(t, int16('<'), b.Item(0))
		assert.Equal(t, int16('>'), b.Item(3))
		assert.Zero(t, b.Item(4))
	})

	t.Run("truncates keeping terminator", func(t *testing.T) {
		t.Parallel()
		b, err := NewMemoryBuffer("x", 3)
		require.NoError(t, err)
		require.NoError(t, b.WriteString("abcdef"))
		assert.Equal(t, int16('a'), b.Item(0))
		assert.Equal(t, int16('b'), b.Item(1))
		assert.Zero(t, b.Item(2))
	})

	t.Run("out of range reads zero", func(t *testing.T) {
		t.Parallel()
		b, err := NewMemoryBuffer("x", 2)
		require.NoError(t, err)
		assert.Zero(t, b.Item(-1))
		assert.Zero(t, b.Item(2))
	})
}

func TestMemoryBufferRelease(t *testing.T) {
	t.Parallel()

	b, err := NewMemoryBuffer("x", 4)
	require.NoError(t, err)
	require.NoError(t, b.WriteString("ab"))

	b.Release()
	b.Release()
	assert.True(t, b.Released())
	assert.Zero(t, b.Item(0))
	assert.ErrorIs(t, b.WriteString("c"), ErrBufferReleased)
}

func TestAsMemoryBuffer(t *testing.T) {
	t.Parallel()

	b, err := NewMemoryBuffer("owner", 4)
	require.NoError(t, err)

	got, err := AsMemoryBuffer(b, "owner")
	require.NoError(t, err)
	assert.Same(t, b, got)

	_, err = AsMemoryBuffer(b, "other")
	assert.ErrorIs(t, err, ErrBufferWrongEngine)

	_, err = AsMemoryBuffer(foreignBuffer{}, "owner")
	assert.ErrorIs(t, err, ErrBufferWrongEngine)

	b.Release()
	_, err = AsMemoryBuffer(b, "owner")
	assert.ErrorIs(t, err, ErrBufferReleased)
}

type foreignBuffer struct{}

func (foreignBuffer) Capacity() int { return 1 }
