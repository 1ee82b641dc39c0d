package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// GridMarker opens a grid block; the first blank line closes it.
const GridMarker = "GRID"

var ErrDisconnected = errors.New("player disconnected")

// Player is one live connection. A pump goroutine reads lines as they
// arrive so a drop is noticed even while the player is only waiting.
type Player struct {
	ID       uuid.UUID
	Conn     Conn
	LastSeen time.Time
	mu       sync.Mutex
	writeMu  sync.Mutex

	lines     chan string
	done      chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
	err       error
}

func New(conn Conn) *Player {
	p := &Player{
		ID:       uuid.New(),
		Conn:     conn,
		LastSeen: time.Now(),
		lines:    make(chan string, 16),
		done:     make(chan struct{}),
		closed:   make(chan struct{}),
	}
	go p.pump()
	return p
}

func (p *Player) pump() {
	defer close(p.done)
	defer close(p.lines)

	for {
		line, err := p.Conn.ReadLine()
		if err != nil {
			p.mu.Lock()
			p.err = err
			p.mu.Unlock()
			return
		}
		select {
		case p.lines <- line:
		case <-p.closed:
			return
		}
	}
}

func (p *Player) String() string {
	return fmt.Sprintf("player-%s(%s)", p.ID.String()[:8], p.Conn.RemoteAddr())
}

func (p *Player) UpdateActivity() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.LastSeen = time.Now()
}

func (p *Player) IdleFor() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Since(p.LastSeen)
}

// Send writes each line in order, flushing after every line.
func (p *Player) Send(lines ...string) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	select {
	case <-p.closed:
		return ErrDisconnected
	default:
	}
	for _, line := range lines {
		if err := p.Conn.WriteLine(line); err != nil {
			return fmt.Errorf("%w: %v", ErrDisconnected, err)
		}
	}
	return nil
}

// SendGrid writes a GRID block made of the given rendered rows.
func (p *Player) SendGrid(rows []string) error {
	block := make([]string, 0, len(rows)+2)
	block = append(block, GridMarker)
	block = append(block, rows...)
	block = append(block, "")
	return p.Send(block...)
}

// ReadLine waits for the next line from the player. It returns
// ErrDisconnected once the stream has ended or the player was closed, and
// the context's error when ctx ends first.
func (p *Player) ReadLine(ctx context.Context) (string, error) {
	select {
	case line, ok := <-p.lines:
		if !ok {
			return "", ErrDisconnected
		}
		p.UpdateActivity()
		return line, nil
	case <-p.closed:
		return "", ErrDisconnected
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Discard drops lines typed while the player was not being prompted.
func (p *Player) Discard() int {
	n := 0
	for {
		select {
		case _, ok := <-p.lines:
			if !ok {
				return n
			}
			n++
		default:
			return n
		}
	}
}

// Done is closed when the read side of the connection has ended.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Closed is closed once Close has been called.
func (p *Player) Closed() <-chan struct{} {
	return p.closed
}

func (p *Player) Disconnected() bool {
	select {
	case <-p.done:
		return true
	case <-p.closed:
		return true
	default:
		return false
	}
}

// Err returns the read error that ended the connection, if any.
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Close is safe to call more than once. The transport is closed before
// Closed fires, and no Send touches it afterwards.
func (p *Player) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = p.Conn.Close()
		p.writeMu.Lock()
		close(p.closed)
		p.writeMu.Unlock()
	})
	return err
}
