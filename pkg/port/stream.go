package port

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/dbgcon/pkg/console"
	fx "github.com/robotalks/dbgcon/pkg/framework"
)

// DefaultQueueSize is the number of received bytes buffered before the
// background reader blocks.
const DefaultQueueSize = 1024

var (
	// ErrNotOpen indicates the link is used before Open.
	ErrNotOpen = errors.New("port not open")
	// ErrAlreadyOpen indicates Open is called twice.
	ErrAlreadyOpen = errors.New("port already open")
)

// OpenFunc opens the underlying link.
type OpenFunc func(baud int) (io.ReadWriteCloser, error)

// Stream adapts a blocking byte stream into a console.Port.
// Received bytes are queued by Run so HasData and ReadByte never block.
type Stream struct {
	Name string

	open OpenFunc
	conn io.ReadWriteCloser
	rxCh chan byte
	lock sync.Mutex
}

// NewStream creates a Stream opening the link with open.
func NewStream(name string, open OpenFunc) *Stream {
	return &Stream{Name: name, open: open, rxCh: make(chan byte, DefaultQueueSize)}
}

// FromConn creates a Stream over an established connection.
// Open is a no-op for it.
func FromConn(name string, conn io.ReadWriteCloser) *Stream {
	s := NewStream(name, nil)
	s.conn = conn
	return s
}

// detachedConn is a link whose Close doesn't unblock a pending Read,
// e.g. stdin. Close runs the optional cleanup.
type detachedConn struct {
	io.ReadWriter
	cleanup func() error
}

func (c detachedConn) Close() error {
	if c.cleanup == nil {
		return nil
	}
	return c.cleanup()
}

func fromDetached(name string, r io.Reader, w io.Writer, cleanup func() error) *Stream {
	return FromConn(name, detachedConn{ReadWriter: struct {
		io.Reader
		io.Writer
	}{r, w}, cleanup: cleanup})
}

// FromReadWriter creates a Stream over r and w, e.g. stdin and stdout.
// Closing the Stream closes neither.
func FromReadWriter(name string, r io.Reader, w io.Writer) *Stream {
	return fromDetached(name, r, w, nil)
}

// Open implements console.Port.
func (s *Stream) Open(baud int) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.open == nil {
		return nil
	}
	if s.conn != nil {
		return ErrAlreadyOpen
	}
	conn, err := s.open(baud)
	if err != nil {
		return err
	}
	glog.V(1).Infof("%s opened at %d baud", s.Name, baud)
	s.conn = conn
	return nil
}

// HasData implements console.Port.
func (s *Stream) HasData() bool {
	return len(s.rxCh) > 0
}

// ReadByte implements console.Port.
func (s *Stream) ReadByte() (byte, error) {
	select {
	case b := <-s.rxCh:
		return b, nil
	default:
		return 0, console.ErrNoData
	}
}

// Write implements io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.conn == nil {
		return 0, ErrNotOpen
	}
	return s.conn.Write(p)
}

// WriteByte implements io.ByteWriter.
func (s *Stream) WriteByte(b byte) error {
	_, err := s.Write([]byte{b})
	return err
}

// WriteString implements io.StringWriter.
func (s *Stream) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// Close closes the link.
func (s *Stream) Close() error {
	s.lock.Lock()
	conn := s.conn
	s.lock.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// Run implements framework.Runnable. It reads the link until it fails or
// ctx is done, the link is closed when Run returns.
func (s *Stream) Run(ctx context.Context) error {
	s.lock.Lock()
	conn := s.conn
	s.lock.Unlock()
	if conn == nil {
		return ErrNotOpen
	}
	var err error
	if _, detached := conn.(detachedConn); detached {
		err = s.runDetached(ctx, conn)
		if closeErr := conn.Close(); closeErr != nil {
			glog.Warningf("%s close: %v", s.Name, closeErr)
		}
	} else {
		err = fx.RunWithContextCloser(ctx, conn, func() error {
			return s.readLoop(ctx, conn)
		})
	}
	if err != nil && err != context.Canceled {
		glog.Errorf("%s read stopped: %v", s.Name, err)
	}
	return err
}

// runDetached stops waiting on ctx without unblocking the reader, which
// can't be closed.
func (s *Stream) runDetached(ctx context.Context, r io.Reader) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.readLoop(ctx, r)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Stream) readLoop(ctx context.Context, r io.Reader) error {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			select {
			case s.rxCh <- b:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err != nil {
			return err
		}
	}
}
