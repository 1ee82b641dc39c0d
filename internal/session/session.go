// Package session drives one paired match from fleet placement to a
// terminal outcome.
//
// A session moves through four states:
//
//	waiting_for_placement -> placing -> play -> terminal
//
// Placement runs one goroutine per player and joins them before play. If
// either player drops or times out while placing, the session goes straight
// to terminal. Play is a single goroutine that only ever reads from the
// player whose turn it is.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"battleship/internal/game"
	"battleship/internal/player"
)

type Session struct {
	ID      uuid.UUID
	Players [game.MAX_PLAYERS]*player.Player

	cfg    Config
	match  *game.Match
	state  atomic.Int32
	done   chan struct{}
	result Result
}

func New(a, b *player.Player, cfg Config) *Session {
	if len(cfg.Roster) == 0 {
		cfg.Roster = game.StandardRoster()
	}
	return &Session{
		ID:      uuid.New(),
		Players: [game.MAX_PLAYERS]*player.Player{a, b},
		cfg:     cfg,
		done:    make(chan struct{}),
	}
}

func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(state State) {
	s.state.Store(int32(state))
	log.Printf("[session %s] %s", s.shortID(), state)
}

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) shortID() string {
	return s.ID.String()[:8]
}

// Run plays the session to completion. Cancelling ctx ends the session with
// ReasonShutdown.
func (s *Session) Run(ctx context.Context) Result {
	defer close(s.done)

	s.setState(StateWaiting)
	s.match = game.NewMatch(s.cfg.Roster)
	for i, p := range s.Players {
		p.Discard()
		p.Send(msgGameStarting, fmt.Sprintf("You are Player %d.", i+1))
	}
	log.Printf("[session %s] %s vs %s", s.shortID(), s.Players[0], s.Players[1])

	var res Result
	s.setState(StatePlacing)
	if err := s.place(ctx); err != nil {
		res = s.abort(ctx, err)
	} else {
		s.setState(StatePlay)
		res = s.play(ctx)
	}

	s.finish(res)
	return s.result
}

// place runs both placement loops concurrently and waits for both. The first
// failure cancels the other loop. A player who has finished placing is still
// watched for a drop until the other player is done.
func (s *Session) place(ctx context.Context) error {
	var placed atomic.Int32
	allPlaced := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	for i := range s.Players {
		i := i
		g.Go(func() error {
			if err := s.placeFleet(gctx, i); err != nil {
				return err
			}
			if placed.Add(1) == game.MAX_PLAYERS {
				close(allPlaced)
				return nil
			}
			select {
			case <-allPlaced:
				return nil
			case <-gctx.Done():
				return nil
			case <-s.Players[i].Done():
				return s.playerErr(i, player.ErrDisconnected)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return s.match.Start()
}

func (s *Session) placeFleet(ctx context.Context, i int) error {
	if s.cfg.PlacementTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.PlacementTimeout)
		defer cancel()
	}

	p := s.Players[i]
	board := s.match.Board(i)
	if err := p.Send(msgPlaceFleet); err != nil {
		return s.playerErr(i, err)
	}

	for _, ship := range s.match.Roster() {
		for {
			if err := p.SendGrid(board.HiddenView()); err != nil {
				return s.playerErr(i, err)
			}
			coord, err := s.readCoordinate(ctx, i, placePrompt(ship))
			if err != nil {
				return err
			}
			orientation, err := s.readOrientation(ctx, i, ship)
			if err != nil {
				return err
			}

			_, err = s.match.PlaceShip(i, ship, coord.Row, coord.Col, orientation)
			if errors.Is(err, game.ErrPlacementRejected) {
				if err := p.Send(msgPlacementRejected); err != nil {
					return s.playerErr(i, err)
				}
				continue
			}
			if err != nil {
				return s.playerErr(i, err)
			}
			break
		}
	}

	s.match.MarkPlayerReady(i)
	if err := p.SendGrid(board.HiddenView()); err != nil {
		return s.playerErr(i, err)
	}
	if err := p.Send(msgFleetReady); err != nil {
		return s.playerErr(i, err)
	}
	return nil
}

func (s *Session) readCoordinate(ctx context.Context, i int, prompt string) (game.Coordinate, error) {
	p := s.Players[i]
	for {
		if err := p.Send(prompt); err != nil {
			return game.Coordinate{}, s.playerErr(i, err)
		}
		text, err := p.ReadLine(ctx)
		if err != nil {
			return game.Coordinate{}, s.playerErr(i, err)
		}
		coord, err := game.ParseCoordinate(text, game.BOARD_SIZE)
		if err == nil {
			return coord, nil
		}
		if err := p.Send(msgInvalidCoordinate); err != nil {
			return game.Coordinate{}, s.playerErr(i, err)
		}
	}
}

func (s *Session) readOrientation(ctx context.Context, i int, ship game.ShipSpec) (game.Orientation, error) {
	p := s.Players[i]
	for {
		if err := p.Send(orientationPrompt(ship)); err != nil {
			return game.Horizontal, s.playerErr(i, err)
		}
		text, err := p.ReadLine(ctx)
		if err != nil {
			return game.Horizontal, s.playerErr(i, err)
		}
		orientation, err := game.ParseOrientation(text)
		if err == nil {
			return orientation, nil
		}
		if err := p.Send(msgInvalidOrient); err != nil {
			return game.Horizontal, s.playerErr(i, err)
		}
	}
}

// play runs the turn loop until a fleet is sunk or a player forfeits.
func (s *Session) play(ctx context.Context) Result {
	s.broadcast(msgBattleBegins)

	for {
		shooter := s.match.CurrentPlayer()
		target := s.match.Opponent()

		if err := s.Players[target].Send(msgOpponentTurn); err != nil {
			return s.forfeit(ctx, s.playerErr(target, err))
		}
		if err := s.Players[shooter].SendGrid(s.match.VisibleBoardFor(shooter)); err != nil {
			return s.forfeit(ctx, s.playerErr(shooter, err))
		}

		shot, err := s.takeShot(ctx, shooter)
		if err != nil {
			return s.forfeit(ctx, err)
		}

		s.Players[shooter].Send(shooterMessage(shot))
		s.Players[target].Send(targetMessage(shot))
		log.Printf("[session %s] player %d fired at %s: %s", s.shortID(), shooter+1, shot.Target, shot.Kind)

		if shot.GameOver {
			return s.newResult(shot.Winner, ReasonFleetDestroyed)
		}
	}
}

// takeShot prompts the shooter until a shot resolves. Invalid coordinates
// are re-prompted without passing the turn.
func (s *Session) takeShot(ctx context.Context, shooter int) (game.Shot, error) {
	p := s.Players[shooter]
	for {
		if err := p.Send(msgYourTurn); err != nil {
			return game.Shot{}, s.playerErr(shooter, err)
		}
		text, err := s.readTurn(ctx, shooter)
		if err != nil {
			return game.Shot{}, err
		}
		if strings.EqualFold(strings.TrimSpace(text), quitCommand) {
			return game.Shot{}, &playerError{index: shooter, reason: ReasonQuit, err: errors.New("quit")}
		}

		shot, err := s.match.Fire(text)
		if errors.Is(err, game.ErrInvalidCoordinate) {
			if err := p.Send(msgInvalidCoordinate); err != nil {
				return game.Shot{}, s.playerErr(shooter, err)
			}
			continue
		}
		if err != nil {
			return game.Shot{}, s.playerErr(shooter, err)
		}
		return shot, nil
	}
}

// readTurn reads one line from the shooter. The read is abandoned if the
// turn times out or the waiting opponent drops.
func (s *Session) readTurn(ctx context.Context, shooter int) (string, error) {
	opponent := s.Players[1-shooter]

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if s.cfg.TurnTimeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, s.cfg.TurnTimeout)
		defer cancelTimeout()
	}
	go func() {
		select {
		case <-opponent.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	text, err := s.Players[shooter].ReadLine(ctx)
	if err == nil {
		return text, nil
	}
	if errors.Is(err, context.Canceled) && opponent.Disconnected() {
		return "", &playerError{index: 1 - shooter, reason: ReasonDisconnect, err: player.ErrDisconnected}
	}
	return "", s.playerErr(shooter, err)
}

// playerErr classifies err as a drop, timeout or shutdown of player i.
func (s *Session) playerErr(i int, err error) error {
	reason := ReasonDisconnect
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		reason = ReasonTimeout
	case errors.Is(err, context.Canceled):
		reason = ReasonShutdown
	}
	return &playerError{index: i, reason: reason, err: err}
}

// abort ends a session whose placement phase failed.
func (s *Session) abort(ctx context.Context, err error) Result {
	res := s.newResult(-1, ReasonAborted)

	culprit := -1
	reason := ReasonDisconnect
	var perr *playerError
	if errors.As(err, &perr) {
		culprit, reason = perr.index, perr.reason
	}
	if ctx.Err() != nil {
		culprit, reason = -1, ReasonShutdown
		res.Reason = ReasonShutdown
	}
	log.Printf("[session %s] placement failed: %v", s.shortID(), err)

	for i, p := range s.Players {
		if i == culprit {
			res.Dropped[i] = true
			if reason == ReasonDisconnect {
				continue
			}
		}
		p.Send(abortMessage(reason, i == culprit))
	}
	return res
}

// forfeit ends play in favour of the player who did not cause err.
func (s *Session) forfeit(ctx context.Context, err error) Result {
	var perr *playerError
	if ctx.Err() != nil || !errors.As(err, &perr) || perr.reason == ReasonShutdown {
		log.Printf("[session %s] play interrupted: %v", s.shortID(), err)
		s.broadcast(msgShutdown)
		return s.newResult(-1, ReasonShutdown)
	}

	loser, winner := perr.index, 1-perr.index
	s.match.Forfeit(loser)
	log.Printf("[session %s] player %d forfeits: %v", s.shortID(), loser+1, err)

	res := s.newResult(winner, perr.reason)
	res.Dropped[loser] = perr.reason != ReasonQuit

	winMsg, loseMsg := forfeitMessages(perr.reason)
	s.Players[winner].Send(winMsg)
	if loseMsg != "" {
		s.Players[loser].Send(loseMsg)
	}
	return res
}

func (s *Session) newResult(winner int, reason Reason) Result {
	return Result{
		Players: s.Players,
		Winner:  winner,
		Reason:  reason,
	}
}

// finish sends the closing notice, releases the match and records the
// result. The players are handed back to the caller untouched.
func (s *Session) finish(res Result) {
	s.setState(StateTerminal)
	for i, p := range s.Players {
		if !res.Dropped[i] {
			p.Send(msgGameOver)
		}
	}

	age := s.match.Age().Round(time.Second)
	switch {
	case res.Winner >= 0 && res.Reason.Forfeit():
		log.Printf("[session %s] player %d wins by forfeit (%s) after %s", s.shortID(), res.Winner+1, res.Reason, age)
	case res.Winner >= 0:
		log.Printf("[session %s] player %d wins (%s) after %s", s.shortID(), res.Winner+1, res.Reason, age)
	default:
		log.Printf("[session %s] ended without a winner (%s)", s.shortID(), res.Reason)
	}
	s.match = nil
	s.result = res
}

func (s *Session) broadcast(lines ...string) {
	for _, p := range s.Players {
		p.Send(lines...)
	}
}
