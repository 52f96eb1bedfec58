package console

// LineBuffer accumulates one input line. It holds at most Cap()-1 bytes,
// the last slot being reserved for the terminator.
type LineBuffer struct {
	buf []byte
}

// NewLineBuffer creates a LineBuffer of the given capacity (at least 2).
func NewLineBuffer(capacity int) *LineBuffer {
	if capacity < 2 {
		capacity = 2
	}
	return &LineBuffer{buf: make([]byte, 0, capacity)}
}

// Cap returns the capacity.
func (b *LineBuffer) Cap() int {
	return cap(b.buf)
}

// Len returns the number of buffered bytes.
func (b *LineBuffer) Len() int {
	return len(b.buf)
}

// Full reports whether Append would be rejected.
func (b *LineBuffer) Full() bool {
	return len(b.buf) >= cap(b.buf)-1
}

// Append adds c, returning false without writing when full.
func (b *LineBuffer) Append(c byte) bool {
	if b.Full() {
		return false
	}
	b.buf = append(b.buf, c)
	return true
}

// Line returns the buffered bytes. The slice is only valid until the next
// Append or Reset.
func (b *LineBuffer) Line() []byte {
	return b.buf
}

// Reset empties the buffer.
func (b *LineBuffer) Reset() {
	b.buf = b.buf[:0]
}
