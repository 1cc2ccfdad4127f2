package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sur153/Voice-Bot-Backend/internal/config"
	"github.com/sur153/Voice-Bot-Backend/internal/model/agent"
	"github.com/sur153/Voice-Bot-Backend/internal/model/scenario"
)

var (
	ErrScenarioRequired = errors.New("scenario id is required")
	ErrAgentNotFound    = errors.New("agent not found")
	ErrNoHostedAgent    = errors.New("no hosted agent is configured")
)

// baseInstructions is appended to every local agent so scenario prompts only
// describe the character, not voice call mechanics.
const baseInstructions = "You are on a live phone call with a salesperson who is practicing their pitch. " +
	"Stay in character for the whole conversation. Keep replies short and conversational, " +
	"one to three sentences, the way people actually speak on the phone. " +
	"Raise realistic objections and make the salesperson work for the close. " +
	"Never mention that you are an AI or that this is a practice exercise."

// Manager provisions conversation agents from scenarios and keeps them in
// memory for the lifetime of the process.
type Manager struct {
	mu     sync.RWMutex
	cfg    config.AzureConfig
	agents map[string]agent.Profile
	now    func() time.Time
}

// NewManager bootstraps the in-memory agent manager.
func NewManager(cfg config.AzureConfig) *Manager {
	return &Manager{
		cfg:    cfg,
		agents: make(map[string]agent.Profile),
		now:    time.Now,
	}
}

// Create provisions an agent for the scenario. When hosted agents are
// enabled the profile references the pre-provisioned agent from
// configuration; otherwise a local profile carries the full conversation
// settings for the voice session.
func (m *Manager) Create(_ context.Context, sc scenario.Scenario) (agent.Profile, error) {
	if sc.ID == "" {
		return agent.Profile{}, ErrScenarioRequired
	}

	if m.cfg.UseRemoteAgents {
		if m.cfg.AgentID == "" {
			return agent.Profile{}, ErrNoHostedAgent
		}
		profile := agent.Profile{
			ID:         m.cfg.AgentID,
			ScenarioID: sc.ID,
			IsRemote:   true,
			CreatedAt:  m.now().UTC(),
		}
		m.store(profile)
		return profile, nil
	}

	model := sc.Model
	if model == "" {
		model = m.cfg.ModelDeployment
	}

	profile := agent.Profile{
		ID:           fmt.Sprintf("local-agent-%s-%d", sc.ID, m.now().Unix()),
		ScenarioID:   sc.ID,
		Instructions: composeInstructions(sc.Instructions),
		Model:        model,
		Temperature:  sc.Temperature,
		MaxTokens:    sc.MaxTokens,
		CreatedAt:    m.now().UTC(),
	}
	m.store(profile)
	return profile, nil
}

// Get retrieves an agent by identifier.
func (m *Manager) Get(id string) (agent.Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	profile, ok := m.agents[id]
	return profile, ok
}

// Delete removes an agent. Deleting an unknown agent is a no-op.
func (m *Manager) Delete(_ context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.agents, id)
}

func (m *Manager) store(profile agent.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agents[profile.ID] = profile
}

func composeInstructions(scenarioInstructions string) string {
	trimmed := strings.TrimSpace(scenarioInstructions)
	if trimmed == "" {
		return baseInstructions
	}
	return trimmed + "\n\n" + baseInstructions
}
