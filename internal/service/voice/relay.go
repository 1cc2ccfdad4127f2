package voice

import (
	"log"

	"github.com/gorilla/websocket"
)

// logPreviewLimit caps how much of a forwarded text frame is logged.
const logPreviewLimit = 100

// Relay forwards frames in both directions until either side ends, then
// returns. The goroutine serving the surviving direction stays blocked in a
// read until the caller closes both connections, which it must do promptly
// after Relay returns.
func Relay(client, upstream Conn) {
	done := make(chan struct{}, 2)

	go func() {
		defer func() { done <- struct{}{} }()
		forward("client->upstream", client, upstream)
	}()
	go func() {
		defer func() { done <- struct{}{} }()
		forward("upstream->client", upstream, client)
	}()

	<-done
}

func forward(direction string, src, dst Conn) {
	// A misbehaving connection must end this direction, not the process.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[voice] %s relay panic: %v", direction, r)
		}
	}()

	for {
		messageType, data, err := src.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[voice] %s read ended: %v", direction, err)
			}
			return
		}

		if messageType == websocket.TextMessage {
			log.Printf("[voice] %s: %s", direction, preview(data))
		}

		if err := dst.WriteMessage(messageType, data); err != nil {
			log.Printf("[voice] %s write ended: %v", direction, err)
			return
		}
	}
}

func preview(data []byte) string {
	if len(data) > logPreviewLimit {
		return string(data[:logPreviewLimit])
	}
	return string(data)
}
