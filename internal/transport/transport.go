// Package transport provides the line-oriented, half-duplex link to the
// remote peer. The underlying connection is either a serial port carrying a
// BLE bridge module or a plain TCP socket; both are framed into
// newline-terminated lines by a reader goroutine so callers poll without
// blocking.
package transport

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// ErrClosed is returned once the underlying connection has gone away.
var ErrClosed = fmt.Errorf("transport closed")

// LineTransport is the half-duplex line channel the session state machine
// and the reporting loop write to and poll from.
type LineTransport interface {
	// WriteLine transmits one line. The newline is appended by the
	// transport.
	WriteLine(line string) error
	// ReadLine returns the next pending inbound line, if any. It never
	// blocks; ok is false when nothing is pending.
	ReadLine() (line string, ok bool, err error)
	// Pending reports whether an inbound line is waiting.
	Pending() bool
	Close() error
}

// streamTransport frames any ReadWriteCloser into lines. A single reader
// goroutine pumps inbound lines into a buffered channel; writes go straight
// to the stream in program order.
type streamTransport struct {
	rwc   io.ReadWriteCloser
	lines chan string
	errc  chan error
}

const inboundBuffer = 64

func newStreamTransport(rwc io.ReadWriteCloser) *streamTransport {
	t := &streamTransport{
		rwc:   rwc,
		lines: make(chan string, inboundBuffer),
		errc:  make(chan error, 1),
	}
	go t.readLoop()
	return t
}

func (t *streamTransport) readLoop() {
	scanner := bufio.NewScanner(t.rwc)
	for scanner.Scan() {
		// BLE bridges terminate with CRLF; the scanner strips the LF.
		t.lines <- strings.TrimSuffix(scanner.Text(), "\r")
	}
	if err := scanner.Err(); err != nil {
		t.errc <- err
	} else {
		t.errc <- io.EOF
	}
	close(t.lines)
}

func (t *streamTransport) WriteLine(line string) error {
	_, err := t.rwc.Write([]byte(line + "\r\n"))
	return err
}

func (t *streamTransport) ReadLine() (string, bool, error) {
	select {
	case line, open := <-t.lines:
		if !open {
			return "", false, t.closedErr()
		}
		return line, true, nil
	default:
		return "", false, nil
	}
}

func (t *streamTransport) Pending() bool {
	return len(t.lines) > 0
}

func (t *streamTransport) closedErr() error {
	select {
	case err := <-t.errc:
		if err == io.EOF {
			return ErrClosed
		}
		return err
	default:
		return ErrClosed
	}
}

func (t *streamTransport) Close() error {
	return t.rwc.Close()
}

// WaitLine polls a transport until a line arrives or the timeout elapses.
// Used only for the startup handshake, where the bridge replies within a
// bounded time or is considered dead.
func WaitLine(t LineTransport, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	for {
		line, ok, err := t.ReadLine()
		if err != nil {
			return "", err
		}
		if ok {
			return line, nil
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("timed out after %v waiting for line", timeout)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
