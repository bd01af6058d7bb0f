package transport

import (
	"fmt"
	"io"
	"net"
	"time"
)

const dialTimeout = 10 * time.Second

// Dial opens a line transport over TCP, used when the remote peer is reached
// over the network instead of a local bridge module.
func Dial(hostname, port string) (LineTransport, error) {
	addr := net.JoinHostPort(hostname, port)
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("could not connect to %v: %w", addr, err)
	}
	return newStreamTransport(conn), nil
}

// FromStream wraps an existing connection in a line transport. Tests use
// this with net.Pipe.
func FromStream(rwc io.ReadWriteCloser) LineTransport {
	return newStreamTransport(rwc)
}
