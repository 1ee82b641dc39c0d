package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"github.com/gorilla/websocket"

	"battleship/internal/player"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:5001", "server TCP address")
	wsURL := flag.String("ws", "", "websocket URL, e.g. ws://127.0.0.1:8080/ws (overrides -addr)")
	flag.Parse()

	conn, err := dial(*addr, *wsURL)
	if err != nil {
		log.Fatalf("Connect failed: %v", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go receive(conn, done)

	input := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			input <- scanner.Text()
		}
		close(input)
	}()

	for {
		select {
		case <-done:
			return
		case line, ok := <-input:
			if !ok {
				return
			}
			if err := conn.WriteLine(line); err != nil {
				log.Printf("Send failed: %v", err)
				return
			}
			if strings.EqualFold(strings.TrimSpace(line), "quit") {
				fmt.Println("[INFO] You forfeited.")
				return
			}
		}
	}
}

func dial(addr, wsURL string) (player.Conn, error) {
	if wsURL != "" {
		ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			return nil, err
		}
		return player.NewMessageConn(ws), nil
	}
	c, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return player.NewLineConn(c), nil
}

// receive prints server lines until the connection ends. A GRID block is
// collected up to its blank terminator and printed as one board.
func receive(conn player.Conn, done chan struct{}) {
	defer close(done)
	for {
		line, err := conn.ReadLine()
		if err != nil {
			fmt.Println("[INFO] Server disconnected.")
			return
		}
		if line != player.GridMarker {
			fmt.Println(line)
			continue
		}

		fmt.Println("\n[Board]")
		for {
			row, err := conn.ReadLine()
			if err != nil {
				fmt.Println("[INFO] Server disconnected.")
				return
			}
			if strings.TrimSpace(row) == "" {
				break
			}
			fmt.Println(row)
		}
	}
}
