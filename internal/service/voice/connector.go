package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sur153/Voice-Bot-Backend/internal/config"
	"github.com/sur153/Voice-Bot-Backend/internal/model/agent"
)

var (
	// ErrConfigurationMissing marks connection failures caused by absent
	// local configuration rather than the upstream service.
	ErrConfigurationMissing = errors.New("voice upstream configuration missing")
	// ErrUpstreamUnavailable marks failures to reach or prime the realtime
	// endpoint.
	ErrUpstreamUnavailable = errors.New("voice upstream unavailable")
)

// Dialer establishes WebSocket client connections. *websocket.Dialer
// satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// Connector opens authenticated sessions against the realtime voice API and
// primes each one with the initial session configuration.
type Connector struct {
	cfg    config.AzureConfig
	cred   azcore.TokenCredential
	dialer Dialer
}

// NewConnector builds a connector for the configured Azure AI resource.
func NewConnector(cfg config.AzureConfig, cred azcore.TokenCredential) *Connector {
	return &Connector{
		cfg:  cfg,
		cred: cred,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 30 * time.Second,
		},
	}
}

// Connect dials the realtime endpoint for the given agent profile and sends
// the session.update frame. The returned connection is ready for relaying.
func (c *Connector) Connect(ctx context.Context, profile *agent.Profile) (Conn, error) {
	if c.cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: AZURE_OPENAI_API_KEY is not set", ErrConfigurationMissing)
	}

	token, err := bearerToken(ctx, c.cred)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	log.Printf("[voice] obtained agent access token")

	endpoint := c.endpointURL(profile)
	log.Printf("[voice] connecting to realtime endpoint %s", endpoint)

	header := http.Header{"Authorization": []string{"Bearer " + token}}
	rawConn, resp, err := c.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: dial realtime endpoint: %v (status %s)", ErrUpstreamUnavailable, err, resp.Status)
		}
		return nil, fmt.Errorf("%w: dial realtime endpoint: %v", ErrUpstreamUnavailable, err)
	}

	upstream := NewWSConn(rawConn)
	if err := c.sendInitialConfig(upstream, profile); err != nil {
		upstream.Close()
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	return upstream, nil
}

func (c *Connector) endpointURL(profile *agent.Profile) string {
	opts := EndpointOptions{
		ResourceName: c.cfg.ResourceName,
		ProjectName:  c.cfg.ProjectName,
	}

	switch {
	case profile != nil && profile.IsRemote:
		opts.AgentID = profile.ID
	case profile == nil && c.cfg.UseRemoteAgents && c.cfg.AgentID != "":
		opts.AgentID = c.cfg.AgentID
	default:
		opts.Model = c.cfg.ModelDeployment
		if profile != nil && profile.Model != "" {
			opts.Model = profile.Model
		}
	}

	return BuildEndpointURL(opts, uuid.New())
}

func (c *Connector) sendInitialConfig(upstream Conn, profile *agent.Profile) error {
	update := NewSessionUpdate(SessionOptions{
		VoiceName:    c.cfg.VoiceName,
		VoiceType:    c.cfg.VoiceType,
		DefaultModel: c.cfg.ModelDeployment,
		Agent:        profile,
	})

	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encode session config: %w", err)
	}

	if err := upstream.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("send session config: %w", err)
	}

	log.Printf("[voice] sent initial session configuration")
	return nil
}
