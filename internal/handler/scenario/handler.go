package scenario

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sur153/Voice-Bot-Backend/internal/model/scenario"
	scenarioservice "github.com/sur153/Voice-Bot-Backend/internal/service/scenario"
	"github.com/sur153/Voice-Bot-Backend/pkg/utils"
)

// Handler serves the scenario catalog.
type Handler struct {
	scenarios scenario.Store
	generator *scenarioservice.GraphGenerator
}

// New creates the scenario handler.
func New(scenarios scenario.Store, generator *scenarioservice.GraphGenerator) *Handler {
	return &Handler{scenarios: scenarios, generator: generator}
}

// RegisterRoutes registers scenario routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/scenarios", h.handleListScenarios)
	r.Get("/scenarios/{scenarioID}", h.handleGetScenario)
	r.Post("/scenarios/graph", h.handleGenerateScenario)
}

// handleListScenarios lists the file-backed scenarios plus the calendar
// generation entry the frontend offers as "personalized scenario".
func (h *Handler) handleListScenarios(w http.ResponseWriter, _ *http.Request) {
	scenarios := h.scenarios.List()
	scenarios = append(scenarios, scenario.Summary{
		ID:              scenarioservice.GraphScenarioID,
		Name:            "Generate from Your Calendar",
		Description:     "Create a personalized scenario from your recent meetings",
		IsGraphScenario: true,
	})
	utils.RespondJSON(w, http.StatusOK, scenarios)
}

func (h *Handler) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "scenarioID")

	item, ok := h.scenarios.FindByID(id)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "Scenario not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, item)
}

type generateRequest struct {
	GraphData json.RawMessage `json:"graph_data"`
}

// handleGenerateScenario previews the scenario that would be built from the
// caller's calendar data, without creating an agent.
func (h *Handler) handleGenerateScenario(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if r.Body != nil {
		// An empty body is fine, generation falls back to the built-in scenario.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	item := h.generator.Generate(r.Context(), req.GraphData)
	utils.RespondJSON(w, http.StatusOK, item)
}
