package handler

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"battleship/internal/hub"
)

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("First two connections should be admitted")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("Third connection in the window should be refused")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("Another host has its own allowance")
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)

	if !rl.Allow("10.0.0.1") {
		t.Fatal("First connection should be admitted")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("Second connection in the window should be refused")
	}
	time.Sleep(30 * time.Millisecond)
	if !rl.Allow("10.0.0.1") {
		t.Error("A new window should admit the host again")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	for i := 0; i < 1000; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("A zero limit should admit everyone, refused connection %d", i+1)
		}
	}
}

func TestTCPAdmissionLimit(t *testing.T) {
	h := newHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	tcp := &TCPHandler{Hub: h, Limiter: NewRateLimiter(1, time.Minute)}
	go tcp.Serve(ctx, ln)

	first, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer first.Close()
	readUntil(t, bufio.NewReader(first), first, msgWelcome)

	second, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()
	r := bufio.NewReader(second)
	readUntil(t, r, second, msgTooManyConnections)
	if _, err := r.ReadString('\n'); err == nil {
		t.Error("A refused connection should be closed")
	}

	waitForStats(t, h, "the first connection to queue", func(s hub.Stats) bool { return s.Queued == 1 })
}
