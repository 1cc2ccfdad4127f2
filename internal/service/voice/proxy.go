package voice

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gorilla/websocket"

	"github.com/sur153/Voice-Bot-Backend/internal/model/agent"
)

// UpstreamConnector opens a primed connection to the realtime voice API.
type UpstreamConnector interface {
	Connect(ctx context.Context, profile *agent.Profile) (Conn, error)
}

// Proxy bridges a browser WebSocket and the realtime voice API for the
// lifetime of one call.
type Proxy struct {
	connector UpstreamConnector
}

// NewProxy builds a proxy over the given connector.
func NewProxy(connector UpstreamConnector) *Proxy {
	return &Proxy{connector: connector}
}

type connectedFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorFrame struct {
	Type  string     `json:"type"`
	Error errorCause `json:"error"`
}

type errorCause struct {
	Message string `json:"message"`
}

// HandleSession runs one proxied voice call. It connects upstream, notifies
// the client, and relays traffic until either side ends. The upstream
// connection is always closed before returning; the client connection stays
// owned by the caller.
func (p *Proxy) HandleSession(ctx context.Context, client Conn, profile *agent.Profile) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[voice] session panic: %v", r)
			p.sendError(client, "Voice session failed unexpectedly")
		}
	}()

	upstream, err := p.connector.Connect(ctx, profile)
	if err != nil {
		log.Printf("[voice] upstream connect failed: %v", err)
		p.sendError(client, "Failed to connect to Azure Voice API")
		return
	}
	defer upstream.Close()

	p.send(client, connectedFrame{
		Type:    "proxy.connected",
		Message: "Connected to Azure Voice API",
	})

	Relay(client, upstream)
}

func (p *Proxy) send(client Conn, frame any) {
	payload, err := json.Marshal(frame)
	if err != nil {
		log.Printf("[voice] encode control frame failed: %v", err)
		return
	}
	if err := client.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Printf("[voice] write control frame failed: %v", err)
	}
}

func (p *Proxy) sendError(client Conn, message string) {
	p.send(client, errorFrame{Type: "error", Error: errorCause{Message: message}})
}
