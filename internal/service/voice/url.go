package voice

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	apiVersion              = "2025-10-01"
	cognitiveServicesDomain = "cognitiveservices.azure.com"
	voiceAgentPath          = "voice-agent/realtime"
)

// EndpointOptions identifies the Azure AI resource and the agent or model a
// session should talk to.
type EndpointOptions struct {
	ResourceName string
	ProjectName  string
	AgentID      string
	Model        string
}

// BuildEndpointURL assembles the realtime WebSocket URL. Sessions bound to a
// hosted agent address it by id and project; otherwise the model deployment
// name selects the target. The request id ties proxy logs to Azure-side
// request tracing.
func BuildEndpointURL(opts EndpointOptions, requestID uuid.UUID) string {
	base := fmt.Sprintf(
		"wss://%s.%s/%s?api-version=%s&x-ms-client-request-id=%s",
		opts.ResourceName, cognitiveServicesDomain, voiceAgentPath, apiVersion, requestID,
	)

	if opts.AgentID != "" {
		return fmt.Sprintf("%s&agent-id=%s&agent-project-name=%s", base, opts.AgentID, opts.ProjectName)
	}
	return fmt.Sprintf("%s&model=%s", base, opts.Model)
}
