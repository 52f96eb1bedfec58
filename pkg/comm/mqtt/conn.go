package mqtt

import (
	"errors"
	"io"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// PublishTimeout bounds the wait for a publish to complete.
var PublishTimeout = 5 * time.Second

// maxPendingPublishes is the number of publishes tracked for errors.
const maxPendingPublishes = 64

// ErrTimeout indicates the broker didn't complete an operation in time.
var ErrTimeout = errors.New("mqtt timeout")

// Conn carries a byte stream over a pair of topics: bytes published on
// RxTopic are read, writes are published on TxTopic.
type Conn struct {
	Queue   *Queue
	RxTopic string
	TxTopic string

	sub       *Subscription
	pr        *io.PipeReader
	pw        *io.PipeWriter
	pending   chan paho.Token
	closeCh   chan struct{}
	closeOnce sync.Once
}

// RxTopic is the topic carrying bytes to the console id.
func RxTopic(id string) string { return id + "/rx" }

// TxTopic is the topic carrying bytes from the console id.
func TxTopic(id string) string { return id + "/tx" }

// EventsTopic is the topic of the events of the console id.
func EventsTopic(id string) string { return id + "/events" }

// NewConn creates a Conn, subscribing rx.
func NewConn(q *Queue, rx, tx string) *Conn {
	c := &Conn{
		Queue:   q,
		RxTopic: rx,
		TxTopic: tx,
		pending: make(chan paho.Token, maxPendingPublishes),
		closeCh: make(chan struct{}),
	}
	c.pr, c.pw = io.Pipe()
	c.sub = q.Sub(rx, c.handleMsg)
	go c.watchPublishes()
	return c
}

// ForConsole creates the console side Conn of a console:
// reads id/rx, writes id/tx.
func ForConsole(q *Queue, id string) *Conn {
	return NewConn(q, RxTopic(id), TxTopic(id))
}

// ForClient creates the operator side Conn of a console:
// reads id/tx, writes id/rx.
func ForClient(q *Queue, id string) *Conn {
	return NewConn(q, TxTopic(id), RxTopic(id))
}

// Read implements io.Reader.
func (c *Conn) Read(p []byte) (int, error) {
	return c.pr.Read(p)
}

// Write implements io.Writer. Every call is a single message, published
// without waiting for completion. Failures are logged.
func (c *Conn) Write(p []byte) (int, error) {
	payload := append([]byte(nil), p...)
	token := c.Queue.Pub(c.TxTopic, payload)
	select {
	case c.pending <- token:
	default:
		glog.V(2).Infof("%s: publish backlog full", c.TxTopic)
	}
	return len(p), nil
}

func (c *Conn) watchPublishes() {
	for {
		select {
		case token := <-c.pending:
			if !token.WaitTimeout(PublishTimeout) {
				glog.Warningf("publish %s: %v", c.TxTopic, ErrTimeout)
			} else if err := token.Error(); err != nil {
				glog.Warningf("publish %s: %v", c.TxTopic, err)
			}
		case <-c.closeCh:
			return
		}
	}
}

// Close unsubscribes and unblocks pending reads with io.EOF.
func (c *Conn) Close() error {
	err := c.sub.Close()
	c.pw.Close()
	c.closeOnce.Do(func() { close(c.closeCh) })
	return err
}

func (c *Conn) handleMsg(_ string, payload []byte) {
	// fails only after Close.
	c.pw.Write(payload)
}
