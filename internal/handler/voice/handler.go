package voice

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/sur153/Voice-Bot-Backend/internal/model/agent"
	voiceservice "github.com/sur153/Voice-Bot-Backend/internal/service/voice"
)

// SessionProxy runs one proxied voice call over an upgraded connection.
type SessionProxy interface {
	HandleSession(ctx context.Context, client voiceservice.Conn, profile *agent.Profile)
}

// AgentSource resolves agent ids presented by the frontend.
type AgentSource interface {
	Get(id string) (agent.Profile, bool)
}

// Handler upgrades voice WebSocket connections and hands them to the proxy.
type Handler struct {
	proxy    SessionProxy
	agents   AgentSource
	upgrader websocket.Upgrader
}

// New creates the voice WebSocket handler.
func New(proxy SessionProxy, agents AgentSource) *Handler {
	return &Handler{
		proxy:  proxy,
		agents: agents,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the voice WebSocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/voice", h.handleVoice)
}

func (h *Handler) handleVoice(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[voice] upgrade failed: %v", err)
		return
	}

	client := voiceservice.NewWSConn(conn)
	defer client.Close()

	var profile *agent.Profile
	if id := r.URL.Query().Get("agent_id"); id != "" {
		if found, ok := h.agents.Get(id); ok {
			profile = &found
		} else {
			log.Printf("[voice] unknown agent_id %q, continuing without profile", id)
		}
	}

	log.Printf("[voice] new voice session remote=%s", r.RemoteAddr)
	h.proxy.HandleSession(r.Context(), client, profile)
}
