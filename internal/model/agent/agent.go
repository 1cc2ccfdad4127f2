package agent

import "time"

// Profile captures a provisioned conversation agent bound to a scenario.
// Remote profiles reference an agent hosted in an Azure AI project; local
// profiles carry their full instructions and are served by the voice proxy
// itself.
type Profile struct {
	ID           string    `json:"agent_id"`
	ScenarioID   string    `json:"scenario_id"`
	Instructions string    `json:"-"`
	Model        string    `json:"model,omitempty"`
	Temperature  *float64  `json:"temperature,omitempty"`
	MaxTokens    *int      `json:"max_tokens,omitempty"`
	IsRemote     bool      `json:"-"`
	CreatedAt    time.Time `json:"-"`
}
