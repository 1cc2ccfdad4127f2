package main

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// Manual probe for a running backend's voice proxy: dials /ws/voice, prints
// every text frame it receives, and optionally injects one event.
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	endpoint := flag.String("url", "ws://localhost:8080/ws/voice", "WebSocket endpoint of the backend")
	agentID := flag.String("agent", "", "agent_id query parameter (empty uses the default model session)")
	message := flag.String("message", "", "optional JSON event to send after connecting")
	duration := flag.Duration("duration", 30*time.Second, "how long to listen before disconnecting")

	flag.Parse()

	target, err := url.Parse(*endpoint)
	if err != nil {
		log.Fatalf("invalid -url value: %v", err)
	}
	if *agentID != "" {
		query := target.Query()
		query.Set("agent_id", *agentID)
		target.RawQuery = query.Encode()
	}

	log.Printf("dialing %s", target)
	conn, _, err := websocket.DefaultDialer.Dial(target.String(), nil)
	if err != nil {
		log.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	if strings.TrimSpace(*message) != "" {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(*message)); err != nil {
			log.Fatalf("send failed: %v", err)
		}
		log.Printf("sent: %s", *message)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			msgType, payload, err := conn.ReadMessage()
			if err != nil {
				log.Printf("connection closed: %v", err)
				return
			}
			if msgType == websocket.TextMessage {
				fmt.Println(string(payload))
			} else {
				log.Printf("binary frame: %d bytes", len(payload))
			}
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
	case <-interrupt:
		log.Println("interrupted, closing connection")
	case <-time.After(*duration):
		log.Println("listen window elapsed, closing connection")
	}

	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
}
