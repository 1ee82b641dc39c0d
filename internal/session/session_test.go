package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"battleship/internal/game"
	"battleship/internal/player"
	"battleship/internal/player/playertest"
)

type testSession struct {
	s       *Session
	clients [2]*playertest.Conn
	results chan Result
	cancel  context.CancelFunc
}

func startSession(t *testing.T, cfg Config) *testSession {
	t.Helper()
	c0, c1 := playertest.NewConn("p1"), playertest.NewConn("p2")
	p0, p1 := player.New(c0), player.New(c1)
	t.Cleanup(func() {
		p0.Close()
		p1.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ts := &testSession{
		s:       New(p0, p1, cfg),
		clients: [2]*playertest.Conn{c0, c1},
		results: make(chan Result, 1),
		cancel:  cancel,
	}
	go func() { ts.results <- ts.s.Run(ctx) }()

	for _, c := range ts.clients {
		c.Expect(t, msgGameStarting)
	}
	return ts
}

func (ts *testSession) result(t *testing.T) Result {
	t.Helper()
	select {
	case res := <-ts.results:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("Session did not finish")
		return Result{}
	}
}

// placeSingleShips places the test roster's only ship for both players.
func (ts *testSession) placeSingleShips(t *testing.T, first, second string) {
	t.Helper()
	ts.clients[0].Expect(t, "Start coordinate")
	ts.clients[0].Type(first, "H")
	ts.clients[1].Expect(t, "Start coordinate")
	ts.clients[1].Type(second, "h")
	for _, c := range ts.clients {
		c.Expect(t, msgBattleBegins)
	}
}

func contains(lines []string, substr string) bool {
	for _, line := range lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func TestSingleShotVictory(t *testing.T) {
	ts := startSession(t, Config{Roster: game.TestRoster()})
	ts.placeSingleShips(t, "A1", "B1")

	lines := ts.clients[0].Expect(t, msgYourTurn)
	if !contains(lines, player.GridMarker) {
		t.Error("Shooter should be shown the opponent's grid before the prompt")
	}
	ts.clients[1].Expect(t, msgOpponentTurn)
	ts.clients[0].Type("B1")

	win := ts.clients[0].Expect(t, "You win!")
	if !strings.Contains(win[len(win)-1], "You sank their TestShip!") {
		t.Errorf("Shooter should be told the TestShip sank, got %q", win[len(win)-1])
	}
	lose := ts.clients[1].Expect(t, "You lose.")
	if strings.Contains(lose[len(lose)-1], "win") {
		t.Errorf("Loser's message must not announce a win: %q", lose[len(lose)-1])
	}

	res := ts.result(t)
	if res.Winner != 0 || res.Reason != ReasonFleetDestroyed {
		t.Errorf("Player 1 should win by sinking the fleet, got winner %v reason %v", res.Winner, res.Reason)
	}
	if res.Dropped[0] || res.Dropped[1] {
		t.Error("Nobody should be dropped after a normal finish")
	}
	for _, c := range ts.clients {
		c.Expect(t, msgGameOver)
	}
	if ts.s.State() != StateTerminal {
		t.Errorf("Session should be terminal, is %v", ts.s.State())
	}
	select {
	case <-ts.s.Done():
	default:
		t.Error("Done should be closed once Run returns")
	}
}

func TestInvalidInputIsReprompted(t *testing.T) {
	ts := startSession(t, Config{Roster: game.Roster{{Name: "Cruiser", Length: 3}, {Name: "Destroyer", Length: 2}}})
	c0, c1 := ts.clients[0], ts.clients[1]

	c0.Expect(t, "Place your Cruiser")
	c0.Type("Z1")
	c0.Expect(t, msgInvalidCoordinate)
	c0.Type("A1", "X")
	c0.Expect(t, msgInvalidOrient)
	c0.Type("H")

	c0.Expect(t, "Place your Destroyer")
	c0.Type("A2", "V")
	c0.Expect(t, msgPlacementRejected)
	c0.Expect(t, "Place your Destroyer")
	c0.Type("C1", "V")
	c0.Expect(t, msgFleetReady)

	c1.Expect(t, "Place your Cruiser")
	c1.Type("J1", "H")
	c1.Expect(t, "Place your Destroyer")
	c1.Type("A10", "V")

	c0.Expect(t, msgYourTurn)
	c0.Type("K5")
	c0.Expect(t, msgInvalidCoordinate)
	c0.Type("e5")
	c0.Expect(t, "E5: MISS.")
	c1.Expect(t, "Your opponent fired at E5: MISS.")

	c1.Expect(t, msgYourTurn)
	c1.Type("A1")
	c1.Expect(t, "A1: HIT!")
	c0.Expect(t, "Your opponent fired at A1: HIT.")

	c0.Expect(t, msgYourTurn)
	c0.Type("QUIT")

	c0.Expect(t, "You forfeited.")
	c1.Expect(t, "Your opponent quit. You win!")

	res := ts.result(t)
	if res.Winner != 1 || res.Reason != ReasonQuit {
		t.Errorf("Player 2 should win by forfeit, got winner %v reason %v", res.Winner, res.Reason)
	}
	if res.Dropped[0] || res.Dropped[1] {
		t.Error("Quitting keeps the connection usable")
	}
}

func TestDisconnectDuringPlayIsForfeit(t *testing.T) {
	ts := startSession(t, Config{Roster: game.TestRoster()})
	ts.placeSingleShips(t, "A1", "B1")

	ts.clients[0].Expect(t, msgYourTurn)
	ts.clients[0].Hangup()

	lines := ts.clients[1].Expect(t, "Your opponent disconnected. You win!")
	if contains(lines, "Your opponent fired") {
		t.Error("No shot should be fired when the shooter drops")
	}

	res := ts.result(t)
	if res.Winner != 1 || res.Reason != ReasonDisconnect {
		t.Errorf("Player 2 should win by disconnect, got winner %v reason %v", res.Winner, res.Reason)
	}
	if !res.Dropped[0] || res.Dropped[1] {
		t.Errorf("Only player 1 should be dropped, got %v", res.Dropped)
	}
}

func TestWaitingPlayerDisconnect(t *testing.T) {
	ts := startSession(t, Config{Roster: game.TestRoster()})
	ts.placeSingleShips(t, "A1", "B1")

	ts.clients[1].Expect(t, msgOpponentTurn)
	ts.clients[1].Hangup()

	ts.clients[0].Expect(t, "Your opponent disconnected. You win!")
	res := ts.result(t)
	if res.Winner != 0 || !res.Dropped[1] {
		t.Errorf("Player 1 should win when player 2 drops, got %+v", res)
	}
}

func TestDisconnectDuringPlacementAborts(t *testing.T) {
	ts := startSession(t, Config{Roster: game.TestRoster()})

	ts.clients[0].Expect(t, "Start coordinate")
	ts.clients[0].Type("A1", "H")
	ts.clients[1].Expect(t, "Start coordinate")
	ts.clients[1].Hangup()

	lines := ts.clients[0].Expect(t, "Your opponent left during placement. Session aborted.")
	if contains(lines, msgBattleBegins) {
		t.Error("Play must not start after a placement drop")
	}
	ts.clients[0].Expect(t, msgGameOver)

	res := ts.result(t)
	if res.Winner != -1 || res.Reason != ReasonAborted {
		t.Errorf("Session should abort without a winner, got %+v", res)
	}
	if res.Dropped[0] || !res.Dropped[1] {
		t.Errorf("Only player 2 should be dropped, got %v", res.Dropped)
	}
}

func TestDisconnectAfterPlacingAborts(t *testing.T) {
	ts := startSession(t, Config{Roster: game.TestRoster()})

	ts.clients[0].Expect(t, "Start coordinate")
	ts.clients[0].Type("A1", "H")
	ts.clients[0].Expect(t, msgFleetReady)
	ts.clients[0].Hangup()

	ts.clients[1].Expect(t, "Your opponent left during placement. Session aborted.")
	res := ts.result(t)
	if res.Reason != ReasonAborted || !res.Dropped[0] || res.Dropped[1] {
		t.Errorf("Drop while waiting for placement should abort, got %+v", res)
	}
}

func TestTurnTimeout(t *testing.T) {
	ts := startSession(t, Config{Roster: game.TestRoster(), TurnTimeout: 50 * time.Millisecond})
	ts.placeSingleShips(t, "A1", "B1")

	ts.clients[0].Expect(t, "You ran out of time. You lose.")
	ts.clients[1].Expect(t, "Your opponent ran out of time. You win!")

	res := ts.result(t)
	if res.Winner != 1 || res.Reason != ReasonTimeout || !res.Dropped[0] {
		t.Errorf("Player 1 should lose on time, got %+v", res)
	}
}

func TestPlacementTimeout(t *testing.T) {
	ts := startSession(t, Config{Roster: game.TestRoster(), PlacementTimeout: 50 * time.Millisecond})

	for _, c := range ts.clients {
		c.Expect(t, "Session aborted.")
	}
	res := ts.result(t)
	if res.Reason != ReasonAborted || res.Winner != -1 {
		t.Errorf("Placement timeout should abort, got %+v", res)
	}
}

func TestShutdown(t *testing.T) {
	ts := startSession(t, Config{Roster: game.TestRoster()})
	ts.placeSingleShips(t, "A1", "B1")
	ts.clients[0].Expect(t, msgYourTurn)

	ts.cancel()
	for _, c := range ts.clients {
		c.Expect(t, msgShutdown)
	}
	res := ts.result(t)
	if res.Reason != ReasonShutdown || res.Winner != -1 {
		t.Errorf("Cancelled session should end with shutdown, got %+v", res)
	}
}

func TestShotMessages(t *testing.T) {
	final := game.Shot{
		Target:   game.Coordinate{Row: 1, Col: 0},
		Kind:     game.ShotHit,
		SunkShip: "TestShip",
		GameOver: true,
		Winner:   0,
	}
	if msg := shooterMessage(final); msg != "B1: HIT! You sank their TestShip! All enemy ships are sunk. You win!" {
		t.Errorf("Unexpected shooter message %q", msg)
	}
	if msg := targetMessage(final); msg != "Your opponent fired at B1: HIT. Your TestShip was sunk. Your whole fleet is sunk. You lose." {
		t.Errorf("Unexpected target message %q", msg)
	}

	repeat := game.Shot{Target: game.Coordinate{Row: 0, Col: 0}, Kind: game.ShotAlreadyTargeted}
	if msg := shooterMessage(repeat); !strings.Contains(msg, "already targeted") {
		t.Errorf("Repeated shot should say so, got %q", msg)
	}
}

func TestReasonForfeit(t *testing.T) {
	forfeits := map[Reason]bool{
		ReasonFleetDestroyed: false,
		ReasonQuit:           true,
		ReasonDisconnect:     true,
		ReasonTimeout:        true,
		ReasonAborted:        false,
		ReasonShutdown:       false,
	}
	for reason, want := range forfeits {
		if got := reason.Forfeit(); got != want {
			t.Errorf("%s.Forfeit() = %v, want %v", reason, got, want)
		}
	}
}
