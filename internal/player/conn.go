package player

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"time"
)

const writeTimeout = 10 * time.Second

// Conn is a line-oriented, bidirectional transport.
type Conn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
	RemoteAddr() string
}

// lineConn speaks newline-terminated text over a stream socket.
type lineConn struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
}

func NewLineConn(conn net.Conn) Conn {
	return &lineConn{
		conn: conn,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
	}
}

func (c *lineConn) ReadLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	// A final unterminated line is delivered; the error repeats on the next read.
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *lineConn) WriteLine(line string) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	if _, err := c.w.WriteString(line + "\n"); err != nil {
		return err
	}
	return c.w.Flush()
}

func (c *lineConn) Close() error {
	return c.conn.Close()
}

func (c *lineConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// MessageConn is the subset of a websocket connection the game needs. Both
// gorilla and fiber websocket connections satisfy it.
type MessageConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
	RemoteAddr() net.Addr
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// TextMessage matches the websocket text frame opcode used by both gorilla
// and fiber.
const TextMessage = 1

// messageConn maps one websocket text message to one protocol line.
type messageConn struct {
	conn MessageConn
	addr string
	mu   sync.Mutex
	// pending holds lines from a message that carried several of them.
	pending []string
}

func NewMessageConn(conn MessageConn) Conn {
	c := &messageConn{conn: conn}
	if addr := conn.RemoteAddr(); addr != nil {
		c.addr = addr.String()
	}
	return c
}

func (c *messageConn) ReadLine() (string, error) {
	for len(c.pending) == 0 {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		text := strings.TrimRight(string(data), "\r\n")
		c.pending = strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	}
	line := c.pending[0]
	c.pending = c.pending[1:]
	return line, nil
}

func (c *messageConn) WriteLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(TextMessage, []byte(line))
}

// Close also expires the read deadline. A hijacked fiber connection ignores
// Close, so the deadline is what wakes a reader blocked in ReadMessage.
func (c *messageConn) Close() error {
	c.conn.SetReadDeadline(time.Now())
	return c.conn.Close()
}

func (c *messageConn) RemoteAddr() string {
	return c.addr
}
