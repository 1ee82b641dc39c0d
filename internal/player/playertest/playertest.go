// Package playertest provides an in-memory player connection for tests.
package playertest

import (
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

// Conn implements player.Conn. Tests act as the remote client through Type,
// Hangup and Expect.
type Conn struct {
	Addr string

	in       chan string
	out      chan string
	closed   chan struct{}
	once     sync.Once
	hangOnce sync.Once
}

func NewConn(addr string) *Conn {
	return &Conn{
		Addr:   addr,
		in:     make(chan string, 64),
		out:    make(chan string, 4096),
		closed: make(chan struct{}),
	}
}

func (c *Conn) ReadLine() (string, error) {
	select {
	case line, ok := <-c.in:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	case <-c.closed:
		return "", net.ErrClosed
	}
}

func (c *Conn) WriteLine(line string) error {
	select {
	case <-c.closed:
		return net.ErrClosed
	default:
	}
	select {
	case c.out <- line:
		return nil
	case <-c.closed:
		return net.ErrClosed
	}
}

func (c *Conn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *Conn) RemoteAddr() string {
	return c.Addr
}

// IsClosed reports whether the server side closed the connection.
func (c *Conn) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Type queues lines as if the client had typed them.
func (c *Conn) Type(lines ...string) {
	for _, line := range lines {
		c.in <- line
	}
}

// Hangup ends the client's side of the stream.
func (c *Conn) Hangup() {
	c.hangOnce.Do(func() { close(c.in) })
}

// Next returns the next line the server wrote.
func (c *Conn) Next(timeout time.Duration) (string, bool) {
	select {
	case line := <-c.out:
		return line, true
	case <-time.After(timeout):
		return "", false
	}
}

// Expect consumes server output until a line containing substr appears and
// returns everything read up to and including it.
func (c *Conn) Expect(t testing.TB, substr string) []string {
	t.Helper()
	var seen []string
	deadline := time.After(2 * time.Second)
	for {
		select {
		case line := <-c.out:
			seen = append(seen, line)
			if strings.Contains(line, substr) {
				return seen
			}
		case <-deadline:
			t.Fatalf("%s: timed out waiting for %q, saw %q", c.Addr, substr, seen)
			return seen
		}
	}
}
