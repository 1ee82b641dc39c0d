// Package hub is the matchmaking lobby. Waiting players are queued in
// arrival order; the oldest two are paired into a session whenever capacity
// allows.
package hub

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"battleship/internal/player"
	"battleship/internal/session"
)

var (
	ErrAlreadyQueued = errors.New("player already queued")
	ErrStopped       = errors.New("lobby stopped")
)

const (
	msgReturning    = "Returning to the lobby. Waiting for another player to join..."
	msgQueueTimeout = "No opponent found in time. Disconnecting."
	msgShutdown     = "The server is shutting down."
)

// Runner plays one paired session to completion.
type Runner interface {
	Run(ctx context.Context) session.Result
}

type Options struct {
	MaxSessions   int           // zero means unlimited
	ReturnToLobby bool          // re-queue players after their session
	QueueTimeout  time.Duration // zero disables eviction of idle waiters
	Session       session.Config
	// NewSession builds the runner for a freshly paired couple. Defaults to
	// session.New with the Session config.
	NewSession func(a, b *player.Player) Runner
}

type entry struct {
	p       *player.Player
	claimed chan struct{}
}

type Hub struct {
	mu        sync.Mutex
	queue     []*entry
	queued    map[uuid.UUID]*entry
	sessions  map[uuid.UUID]Runner
	completed int
	stopped   bool

	opts   Options
	notify chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHub(opts Options) *Hub {
	if opts.NewSession == nil {
		cfg := opts.Session
		opts.NewSession = func(a, b *player.Player) Runner {
			return session.New(a, b, cfg)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		queued:   make(map[uuid.UUID]*entry),
		sessions: make(map[uuid.UUID]Runner),
		opts:     opts,
		notify:   make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Enqueue appends p to the back of the queue.
func (h *Hub) Enqueue(p *player.Player) error {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return ErrStopped
	}
	if _, ok := h.queued[p.ID]; ok {
		h.mu.Unlock()
		return ErrAlreadyQueued
	}
	// The queue wait counts as idle time from here on.
	p.UpdateActivity()
	e := &entry{p: p, claimed: make(chan struct{})}
	h.queue = append(h.queue, e)
	h.queued[p.ID] = e
	waiting := len(h.queue)
	h.mu.Unlock()

	log.Printf("[lobby] %s queued (%d waiting)", p, waiting)
	go h.watch(e)
	h.wake()
	return nil
}

// watch drops a queued player whose connection ends before it is paired.
func (h *Hub) watch(e *entry) {
	select {
	case <-e.p.Done():
		if h.Remove(e.p) {
			log.Printf("[lobby] %s left the queue: %v", e.p, e.p.Err())
			e.p.Close()
		}
	case <-e.claimed:
	}
}

// Remove takes p out of the queue, keeping the order of everyone else.
func (h *Hub) Remove(p *player.Player) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.removeLocked(p.ID) != nil
}

func (h *Hub) removeLocked(id uuid.UUID) *entry {
	e, ok := h.queued[id]
	if !ok {
		return nil
	}
	for i, queued := range h.queue {
		if queued == e {
			h.queue = append(h.queue[:i], h.queue[i+1:]...)
			break
		}
	}
	delete(h.queued, id)
	close(e.claimed)
	return e
}

// TryStartMatch pairs the two oldest waiting players and starts their
// session. The check and both dequeues happen under one lock.
func (h *Hub) TryStartMatch() bool {
	h.mu.Lock()
	if h.stopped || len(h.queue) < 2 || h.atCapacityLocked() {
		h.mu.Unlock()
		return false
	}
	a := h.removeLocked(h.queue[0].p.ID)
	b := h.removeLocked(h.queue[0].p.ID)

	id := uuid.New()
	runner := h.opts.NewSession(a.p, b.p)
	h.sessions[id] = runner
	h.wg.Add(1)
	h.mu.Unlock()

	log.Printf("[lobby] paired %s with %s", a.p, b.p)
	go h.runSession(id, runner)
	return true
}

func (h *Hub) atCapacityLocked() bool {
	return h.opts.MaxSessions > 0 && len(h.sessions) >= h.opts.MaxSessions
}

func (h *Hub) runSession(id uuid.UUID, runner Runner) {
	defer h.wg.Done()
	res := runner.Run(h.ctx)

	h.mu.Lock()
	delete(h.sessions, id)
	h.completed++
	h.mu.Unlock()

	h.release(res)
	h.wake()
}

// release hands a finished session's players back: re-queued in
// return-to-lobby mode, closed otherwise.
func (h *Hub) release(res session.Result) {
	for i, p := range res.Players {
		if p == nil {
			continue
		}
		if res.Dropped[i] || p.Disconnected() || !h.opts.ReturnToLobby {
			p.Close()
			continue
		}
		if err := p.Send(msgReturning); err != nil {
			p.Close()
			continue
		}
		if err := h.Enqueue(p); err != nil {
			log.Printf("[lobby] could not re-queue %s: %v", p, err)
			p.Close()
		}
	}
}

func (h *Hub) wake() {
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

// Run pairs players until ctx ends or the hub is stopped. It sleeps between
// enqueues and session completions rather than polling.
func (h *Hub) Run(ctx context.Context) {
	for {
		for h.TryStartMatch() {
		}
		select {
		case <-h.notify:
		case <-ctx.Done():
			return
		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) MaintainQueue(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.CleanupIdlePlayers()
		case <-ctx.Done():
			return
		}
	}
}

// CleanupIdlePlayers evicts queued players who have been idle longer than
// the queue timeout.
func (h *Hub) CleanupIdlePlayers() int {
	if h.opts.QueueTimeout <= 0 {
		return 0
	}

	h.mu.Lock()
	var expired []*entry
	for _, e := range h.queue {
		if e.p.IdleFor() > h.opts.QueueTimeout {
			expired = append(expired, e)
		}
	}
	for _, e := range expired {
		h.removeLocked(e.p.ID)
	}
	h.mu.Unlock()

	for _, e := range expired {
		log.Printf("[lobby] %s waited too long", e.p)
		e.p.Send(msgQueueTimeout)
		e.p.Close()
	}
	return len(expired)
}

// Stop refuses new players, closes everyone still waiting, ends running
// sessions and waits for them to finish.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	waiting := h.queue
	h.queue = nil
	for _, e := range waiting {
		delete(h.queued, e.p.ID)
		close(e.claimed)
	}
	h.mu.Unlock()

	for _, e := range waiting {
		e.p.Send(msgShutdown)
		e.p.Close()
	}
	h.cancel()
	h.wg.Wait()
}

// Queued returns the waiting players' IDs, oldest first.
func (h *Hub) Queued() []uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]uuid.UUID, len(h.queue))
	for i, e := range h.queue {
		ids[i] = e.p.ID
	}
	return ids
}
