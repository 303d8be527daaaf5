// Package ring implements the fixed-capacity byte buffer used to
// accumulate socket reads between parser invocations.
//
// The buffer exposes a contiguous filled region via Data and a contiguous
// free region at the tail via Space. Parsers inspect Data, report how many
// bytes they used, and the caller advances the buffer with Consume. When
// the tail region runs low, Shift re-aligns the filled region to the base
// so the next refill has the full remaining capacity to work with.
package ring

// Buffer is a fixed-capacity byte buffer with explicit consume/fill
// bookkeeping. The zero value is not usable; construct with New.
type Buffer struct {
	data []byte
	pos  int
	end  int
}

// New returns a Buffer with the given capacity in bytes.
func New(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

// Capacity returns the total capacity of the buffer.
func (b *Buffer) Capacity() int {
	return len(b.data)
}

// Len returns the number of filled bytes available to read.
func (b *Buffer) Len() int {
	return b.end - b.pos
}

// Data returns the contiguous filled region. The returned slice is only
// valid until the next call to Consume, Fill or Shift.
func (b *Buffer) Data() []byte {
	return b.data[b.pos:b.end]
}

// Consume marks the first n filled bytes as free and returns the number
// of bytes actually consumed.
func (b *Buffer) Consume(n int) int {
	if avail := b.Len(); n > avail {
		n = avail
	}
	b.pos += n
	if b.pos == b.end {
		// Nothing left unread; reset to the base for free.
		b.pos = 0
		b.end = 0
	}
	return n
}

// Space returns the contiguous free region at the tail. Bytes written
// there become readable after a matching Fill call.
func (b *Buffer) Space() []byte {
	return b.data[b.end:]
}

// Fill declares that n bytes were written into the region returned by
// Space and returns the number of bytes actually accepted.
func (b *Buffer) Fill(n int) int {
	if free := len(b.data) - b.end; n > free {
		n = free
	}
	b.end += n
	return n
}

// Shift moves the filled region to the base of the buffer, growing the
// tail region by the number of already-consumed bytes.
func (b *Buffer) Shift() {
	if b.pos == 0 {
		return
	}
	n := copy(b.data, b.data[b.pos:b.end])
	b.pos = 0
	b.end = n
}
