package sh

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/robotalks/dbgcon/pkg/comm/mqtt"
	"github.com/robotalks/dbgcon/pkg/comm/websocket"
	"github.com/robotalks/dbgcon/pkg/console"
	"github.com/robotalks/dbgcon/pkg/env"
	"github.com/robotalks/dbgcon/pkg/port"
)

// ErrNoAck indicates the console didn't acknowledge a line in time.
var ErrNoAck = errors.New("no acknowledgement")

// Session is a connection to a console.
type Session struct {
	Name string

	conn    io.ReadWriteCloser
	ackCh   chan console.Ack
	doneCh  chan struct{}
	lock    sync.Mutex
	output  io.Writer
	outLock sync.Mutex
}

// NewSession starts reading conn.
func NewSession(name string, conn io.ReadWriteCloser) *Session {
	s := &Session{
		Name:   name,
		conn:   conn,
		ackCh:  make(chan console.Ack, 16),
		doneCh: make(chan struct{}),
	}
	go s.readLoop()
	return s
}

// Dial connects to a console with transport at addr. An empty addr is
// taken from conf.
func Dial(conf *env.Config, transport, addr string) (*Session, error) {
	var conn io.ReadWriteCloser
	var err error
	switch transport {
	case env.TransportSerial:
		if addr == "" {
			addr = conf.Device
		}
		conn, err = port.OpenSerial(addr, conf.Baud)
	case env.TransportTCP:
		if addr == "" {
			addr = conf.Listen
		}
		conn, err = net.Dial("tcp", addr)
	case env.TransportWebSocket:
		if addr == "" {
			addr = "ws://" + conf.Listen + "/"
		}
		conn, err = websocket.Dial(addr)
	case env.TransportMQTT:
		if addr == "" {
			addr = conf.ID
		}
		conn, err = dialMQTT(conf.MQTTURL, addr)
	default:
		return nil, fmt.Errorf("unknown transport: %q", transport)
	}
	if err != nil {
		return nil, err
	}
	return NewSession(transport+":"+addr, conn), nil
}

type mqttConn struct {
	*mqtt.Conn
	queue *mqtt.Queue
}

func (c *mqttConn) Close() error {
	err := c.Conn.Close()
	c.queue.Close()
	return err
}

func dialMQTT(brokerURL, id string) (io.ReadWriteCloser, error) {
	q, err := mqtt.NewQueueFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	if err = q.ConnectWait(5 * time.Second); err != nil {
		return nil, err
	}
	return &mqttConn{Conn: mqtt.ForClient(q, id), queue: q}, nil
}

// SetOutput sets the writer receiving everything the console prints,
// nil to discard.
func (s *Session) SetOutput(w io.Writer) {
	s.outLock.Lock()
	s.output = w
	s.outLock.Unlock()
}

func (s *Session) print(p []byte) {
	s.outLock.Lock()
	defer s.outLock.Unlock()
	if s.output != nil {
		s.output.Write(p)
	}
}

// Done is closed when the connection ends.
func (s *Session) Done() <-chan struct{} {
	return s.doneCh
}

// Close closes the connection.
func (s *Session) Close() error {
	return s.conn.Close()
}

// Write sends raw bytes.
func (s *Session) Write(p []byte) (int, error) {
	return s.conn.Write(p)
}

// Send submits a command line and waits for its acknowledgement.
func (s *Session) Send(timeout time.Duration, tokens ...string) (console.Ack, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.drainAcks()
	line := strings.Join(tokens, " ") + "\r"
	if _, err := io.WriteString(s.conn, line); err != nil {
		return console.Ack{}, err
	}
	select {
	case ack, ok := <-s.ackCh:
		if !ok {
			return console.Ack{}, io.EOF
		}
		return ack, nil
	case <-time.After(timeout):
		return console.Ack{}, ErrNoAck
	}
}

// Redraw asks the console to redraw the active menu.
func (s *Session) Redraw() error {
	_, err := s.Write([]byte{console.DefaultRedrawKey})
	return err
}

// Reset submits enough empty lines to reinitialize the console.
func (s *Session) Reset() error {
	_, err := io.WriteString(s.conn, strings.Repeat("\r", console.DefaultResetTrigger))
	return err
}

func (s *Session) drainAcks() {
	for {
		select {
		case _, ok := <-s.ackCh:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (s *Session) readLoop() {
	defer close(s.doneCh)
	defer close(s.ackCh)
	var dec console.AckDecoder
	buf := make([]byte, 256)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			s.print(buf[:n])
			for _, b := range buf[:n] {
				if ack := dec.Feed(b); ack != nil {
					select {
					case s.ackCh <- *ack:
					default:
					}
				}
			}
		}
		if err != nil {
			return
		}
	}
}
