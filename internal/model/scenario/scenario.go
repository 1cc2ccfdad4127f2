package scenario

// Scenario holds a sales role-play definition loaded from a prompt file,
// paired with the evaluation rubric used after the call.
type Scenario struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Model              string   `json:"model,omitempty"`
	Temperature        *float64 `json:"temperature,omitempty"`
	MaxTokens          *int     `json:"max_tokens,omitempty"`
	Instructions       string   `json:"instructions,omitempty"`
	EvaluationPrompt   string   `json:"-"`
	IsGraphScenario    bool     `json:"is_graph_scenario,omitempty"`
	GeneratedFromGraph bool     `json:"generated_from_graph,omitempty"`
}

// Summary is the listing shape exposed by the scenario index endpoint.
type Summary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	IsGraphScenario bool   `json:"is_graph_scenario,omitempty"`
}

// Summary projects the scenario into its listing shape.
func (s Scenario) Summary() Summary {
	return Summary{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		IsGraphScenario: s.IsGraphScenario,
	}
}
