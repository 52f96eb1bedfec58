package sh

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/dbgcon/pkg/console"
	"github.com/robotalks/dbgcon/pkg/env"
	"github.com/robotalks/dbgcon/pkg/menus"
	"github.com/robotalks/dbgcon/pkg/port"
	"github.com/robotalks/dbgcon/pkg/server"
)

func startConsole(t *testing.T) (*Session, func()) {
	client, remote := net.Pipe()
	srv := &server.Server{
		Config:   console.DefaultConfig(),
		Menus:    func() *console.Registry { return menus.New(menus.Info{}, nil) },
		Interval: time.Millisecond,
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Serve(ctx, port.TCP(remote))
		close(done)
	}()
	sess := NewSession("pipe", client)
	return sess, func() {
		cancel()
		<-done
		sess.Close()
	}
}

func TestSessionSend(t *testing.T) {
	sess, stop := startConsole(t)
	defer stop()

	ack, err := sess.Send(5*time.Second, "S1")
	require.NoError(t, err)
	require.Equal(t, console.SuccessAck(1, 1), ack)
	require.NoError(t, ack.Err())

	ack, err = sess.Send(5*time.Second, "S1", "U5", "F2.5")
	require.NoError(t, err)
	require.Equal(t, console.SuccessAck(1, 3), ack)

	ack, err = sess.Send(5*time.Second, "T", "x")
	require.NoError(t, err)
	require.Equal(t, console.ErrNotSelector, ack.Err())

	require.NoError(t, sess.Redraw())
	require.NoError(t, sess.Reset())
	ack, err = sess.Send(5*time.Second, "S9")
	require.NoError(t, err)
	require.Equal(t, console.SuccessAck(9, 1), ack)
}

func TestSessionEnds(t *testing.T) {
	sess, stop := startConsole(t)
	stop()
	select {
	case <-sess.Done():
	case <-time.After(5 * time.Second):
		require.FailNow(t, "session not ended")
	}
	_, err := sess.Send(time.Second, "S1")
	require.Error(t, err)
}

func TestDialUnknownTransport(t *testing.T) {
	_, err := Dial(&env.Config{}, "pigeon", "")
	require.EqualError(t, err, `unknown transport: "pigeon"`)
}
