package websocket

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandlerAndDial(t *testing.T) {
	srv := httptest.NewServer(Handler(func(conn io.ReadWriteCloser) {
		buf := make([]byte, 16)
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		conn.Write([]byte(strings.ToUpper(string(buf[:n]))))
	}))
	defer srv.Close()

	conn, err := Dial("ws" + strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("s1\r"))
	require.NoError(t, err)
	buf := make([]byte, 16)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "S1\r", string(buf[:n]))
}
