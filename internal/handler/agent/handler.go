package agent

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sur153/Voice-Bot-Backend/internal/model/scenario"
	agentservice "github.com/sur153/Voice-Bot-Backend/internal/service/agent"
	scenarioservice "github.com/sur153/Voice-Bot-Backend/internal/service/scenario"
	"github.com/sur153/Voice-Bot-Backend/pkg/utils"
)

// Handler provisions and releases conversation agents.
type Handler struct {
	scenarios scenario.Store
	agents    *agentservice.Manager
	generator *scenarioservice.GraphGenerator
}

// New creates the agent handler.
func New(scenarios scenario.Store, agents *agentservice.Manager, generator *scenarioservice.GraphGenerator) *Handler {
	return &Handler{scenarios: scenarios, agents: agents, generator: generator}
}

// RegisterRoutes registers agent routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/agents/create", h.handleCreateAgent)
	r.Delete("/agents/{agentID}", h.handleDeleteAgent)
}

type createRequest struct {
	ScenarioID string          `json:"scenario_id"`
	GraphData  json.RawMessage `json:"graph_data,omitempty"`
}

type createResponse struct {
	AgentID    string `json:"agent_id"`
	ScenarioID string `json:"scenario_id"`
}

func (h *Handler) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ScenarioID == "" {
		utils.RespondError(w, http.StatusBadRequest, "scenario_id is required")
		return
	}

	sc, ok := h.resolveScenario(r, req)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "Scenario not found")
		return
	}

	profile, err := h.agents.Create(r.Context(), sc)
	if err != nil {
		log.Printf("[agent] create failed scenario=%s: %v", req.ScenarioID, err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, createResponse{
		AgentID:    profile.ID,
		ScenarioID: req.ScenarioID,
	})
}

func (h *Handler) resolveScenario(r *http.Request, req createRequest) (scenario.Scenario, bool) {
	if req.ScenarioID == scenarioservice.GraphScenarioID {
		if h.generator == nil {
			return scenario.Scenario{}, false
		}
		return h.generator.Generate(r.Context(), req.GraphData), true
	}
	return h.scenarios.FindByID(req.ScenarioID)
}

func (h *Handler) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")

	h.agents.Delete(r.Context(), agentID)
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
