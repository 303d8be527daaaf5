package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(t *testing.T, b *Buffer, s string) {
	t.Helper()
	n := copy(b.Space(), s)
	require.Equal(t, len(s), n, "fixture must fit in buffer space")
	require.Equal(t, n, b.Fill(n))
}

func TestEmptyBuffer(t *testing.T) {
	b := New(16)
	assert.Equal(t, 16, b.Capacity())
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Data())
	assert.Len(t, b.Space(), 16)
}

func TestFillThenConsume(t *testing.T) {
	b := New(16)
	fill(t, b, "hello world")

	assert.Equal(t, []byte("hello world"), b.Data())
	assert.Len(t, b.Space(), 5)

	assert.Equal(t, 6, b.Consume(6))
	assert.Equal(t, []byte("world"), b.Data())
}

func TestConsumeClampsToAvailable(t *testing.T) {
	b := New(8)
	fill(t, b, "abc")
	assert.Equal(t, 3, b.Consume(100))
	assert.Equal(t, 0, b.Len())
}

func TestFillClampsToFree(t *testing.T) {
	b := New(4)
	copy(b.Space(), "abcd")
	assert.Equal(t, 4, b.Fill(10))
	assert.Len(t, b.Space(), 0)
}

func TestConsumeAllResetsToBase(t *testing.T) {
	b := New(8)
	fill(t, b, "abcdefgh")
	assert.Len(t, b.Space(), 0)

	b.Consume(8)
	// The whole capacity is writable again without an explicit Shift.
	assert.Len(t, b.Space(), 8)
}

func TestShiftReclaimsConsumedSpace(t *testing.T) {
	b := New(8)
	fill(t, b, "abcdefgh")
	b.Consume(5)
	assert.Len(t, b.Space(), 0)

	b.Shift()
	assert.Equal(t, []byte("fgh"), b.Data())
	assert.Len(t, b.Space(), 5)

	fill(t, b, "ijklm")
	assert.Equal(t, []byte("fghijklm"), b.Data())
}

func TestShiftOnAlignedBufferIsNoop(t *testing.T) {
	b := New(8)
	fill(t, b, "abc")
	b.Shift()
	assert.Equal(t, []byte("abc"), b.Data())
}

func TestRefillLoop(t *testing.T) {
	// Simulates the parser refill cycle: partial consume, shift, refill.
	b := New(8)
	fill(t, b, "A11\nfoo ")
	assert.Equal(t, 4, b.Consume(4))

	b.Shift()
	fill(t, b, "bar\n")
	assert.Equal(t, []byte("foo bar\n"), b.Data())
}
