// Package server hosts console sessions on streams, listeners and
// websocket connections.
package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/dbgcon/pkg/comm/websocket"
	"github.com/robotalks/dbgcon/pkg/console"
	fx "github.com/robotalks/dbgcon/pkg/framework"
	"github.com/robotalks/dbgcon/pkg/port"
)

// Server creates one console per session.
type Server struct {
	Config  console.Config
	Baud    int
	Menus   func() *console.Registry
	Handler console.EventHandler
	// Interval is the poll interval while the console is idle.
	Interval time.Duration
}

// NewConsole creates a console on p.
func (s *Server) NewConsole(p console.Port) *console.Console {
	var menus *console.Registry
	if s.Menus != nil {
		menus = s.Menus()
	}
	c := console.New(p, menus, s.Config)
	c.Handler = s.Handler
	return c
}

func (s *Server) newLoop() *fx.Loop {
	loop := fx.NewLoop()
	if s.Interval > 0 {
		loop.Interval = s.Interval
	}
	return loop
}

// Run runs a console on a port living as long as the process, e.g. a
// serial device or MQTT topics.
func (s *Server) Run(ctx context.Context, p *port.Stream) error {
	c := s.NewConsole(p)
	if err := c.Open(s.Baud); err != nil {
		return err
	}
	return s.newLoop().Add(c).Run(ctx)
}

// Serve runs a console session on stream until the link ends or ctx is
// done. The end of the link is not an error.
func (s *Server) Serve(ctx context.Context, stream *port.Stream) error {
	glog.Infof("%s session started", stream.Name)
	defer glog.Infof("%s session ended", stream.Name)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		errCh <- stream.Run(ctx)
		cancel()
	}()

	c := s.NewConsole(stream)
	err := c.Open(s.Baud)
	if err == nil {
		// the stream is run above, only the console is polled.
		s.newLoop().AddController(c).Run(ctx)
	}
	cancel()
	if runErr := <-errCh; err == nil && runErr != io.EOF && runErr != context.Canceled {
		err = runErr
	}
	return err
}

// ServeListener serves a console session on every accepted connection
// until ctx is done.
func (s *Server) ServeListener(ctx context.Context, l net.Listener) error {
	glog.Infof("listening on %s", l.Addr())
	return fx.RunWithContextCloser(ctx, l, func() error {
		for {
			conn, err := l.Accept()
			if err != nil {
				return err
			}
			go s.Serve(ctx, port.TCP(conn))
		}
	})
}

// WebSocketHandler serves a console session on every websocket
// connection.
func (s *Server) WebSocketHandler(ctx context.Context) http.Handler {
	return websocket.Handler(func(conn io.ReadWriteCloser) {
		s.Serve(ctx, port.WebSocket(conn))
	})
}

// ListenAndServeWebSocket serves websocket consoles on addr at path /
// until ctx is done.
func (s *Server) ListenAndServeWebSocket(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	glog.Infof("websocket listening on %s", l.Addr())
	srv := &http.Server{Handler: s.WebSocketHandler(ctx)}
	return fx.RunWithContextCloser(ctx, srv, func() error {
		return srv.Serve(l)
	})
}
