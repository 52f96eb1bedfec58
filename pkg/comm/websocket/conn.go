package websocket

import (
	"io"
	"net/url"

	"golang.org/x/net/websocket"
)

// Handler serves each websocket connection with serve as a binary byte
// stream. The connection is closed when serve returns.
func Handler(serve func(io.ReadWriteCloser)) websocket.Handler {
	return func(conn *websocket.Conn) {
		conn.PayloadType = websocket.BinaryFrame
		serve(conn)
	}
}

// Dial connects to a websocket console at rawurl (ws:// or wss://).
func Dial(rawurl string) (io.ReadWriteCloser, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, err
	}
	origin := &url.URL{Scheme: "http", Host: u.Host}
	if u.Scheme == "wss" {
		origin.Scheme = "https"
	}
	config, err := websocket.NewConfig(u.String(), origin.String())
	if err != nil {
		return nil, err
	}
	conn, err := websocket.DialConfig(config)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return conn, nil
}
