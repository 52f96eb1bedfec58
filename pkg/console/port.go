package console

import (
	"io"
	"time"
)

// Port is the raw byte link the console runs on.
// HasData and ReadByte must never block.
type Port interface {
	// Open prepares the link, baud is ignored by links without one.
	Open(baud int) error
	// HasData reports whether ReadByte would return a byte.
	HasData() bool
	// ReadByte returns the next pending byte, or ErrNoData.
	io.ByteReader
	io.Writer
	io.ByteWriter
	io.StringWriter
}

// Timer is a non-blocking elapsed-time check.
type Timer interface {
	// Restart re-arms the timer.
	Restart()
	// Expired returns true once per elapsed interval, re-arming itself.
	Expired(interval time.Duration) bool
}
