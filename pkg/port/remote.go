package port

import (
	"io"
	"net"

	"github.com/robotalks/dbgcon/pkg/comm/mqtt"
)

// MQTT creates a Stream exchanging console bytes on the topics of id.
// The Queue must be connected by the caller.
func MQTT(q *mqtt.Queue, id string) *Stream {
	return NewStream("mqtt:"+id, func(int) (io.ReadWriteCloser, error) {
		return mqtt.ForConsole(q, id), nil
	})
}

// TCP creates a Stream on an accepted connection.
func TCP(conn net.Conn) *Stream {
	return FromConn("tcp:"+conn.RemoteAddr().String(), conn)
}

// WebSocket creates a Stream on a websocket connection served by
// websocket.Handler.
func WebSocket(conn io.ReadWriteCloser) *Stream {
	return FromConn("websocket", conn)
}
