package port

import (
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

const (
	ctrlC = 0x03
	ctrlD = 0x04
)

// Stdio creates a Stream over in and out named "stdio". When in is a
// terminal, it's switched to raw mode so keys arrive unechoed as they are
// typed, and restored when the Stream is closed or stops running. In raw
// mode Ctrl-C or Ctrl-D ends the stream with io.EOF.
// interactive reports whether in is a terminal.
func Stdio(in *os.File, out io.Writer) (s *Stream, interactive bool, err error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return FromReadWriter("stdio", in, out), false, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, true, err
	}
	var once sync.Once
	restore := func() (err error) {
		once.Do(func() { err = term.Restore(fd, state) })
		return
	}
	return fromDetached("stdio", &interruptReader{r: in}, out, restore), true, nil
}

// interruptReader ends with io.EOF at the first Ctrl-C or Ctrl-D.
type interruptReader struct {
	r   io.Reader
	eof bool
}

func (r *interruptReader) Read(p []byte) (int, error) {
	if r.eof {
		return 0, io.EOF
	}
	n, err := r.r.Read(p)
	for i, b := range p[:n] {
		if b == ctrlC || b == ctrlD {
			r.eof = true
			return i, io.EOF
		}
	}
	return n, err
}
