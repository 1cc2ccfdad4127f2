package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sur153/Voice-Bot-Backend/internal/model/scenario"
	analysisservice "github.com/sur153/Voice-Bot-Backend/internal/service/analysis"
	"github.com/sur153/Voice-Bot-Backend/internal/service/pronunciation"
	"github.com/sur153/Voice-Bot-Backend/pkg/utils"
)

// Evaluator scores a finished call against the scenario rubric.
type Evaluator interface {
	Enabled() bool
	Analyze(ctx context.Context, sc scenario.Scenario, transcript string) (*analysisservice.Result, error)
}

// Assessor scores the user's recorded audio against a reference text.
type Assessor interface {
	Enabled() bool
	Assess(ctx context.Context, chunks []pronunciation.Chunk, referenceText string) (*pronunciation.Result, error)
}

// Handler serves post-call analysis.
type Handler struct {
	scenarios scenario.Store
	evaluator Evaluator
	assessor  Assessor
}

// New creates the analysis handler.
func New(scenarios scenario.Store, evaluator Evaluator, assessor Assessor) *Handler {
	return &Handler{scenarios: scenarios, evaluator: evaluator, assessor: assessor}
}

// RegisterRoutes registers analysis routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.handleAnalyze)
}

type analyzeRequest struct {
	ScenarioID    string                `json:"scenario_id"`
	Transcript    string                `json:"transcript"`
	ReferenceText string                `json:"reference_text,omitempty"`
	AudioData     []pronunciation.Chunk `json:"audio_data,omitempty"`
}

type analyzeResponse struct {
	Analysis      *analysisservice.Result `json:"analysis"`
	Pronunciation *pronunciation.Result   `json:"pronunciation,omitempty"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ScenarioID == "" || req.Transcript == "" {
		utils.RespondError(w, http.StatusBadRequest, "scenario_id and transcript are required")
		return
	}

	sc, ok := h.scenarios.FindByID(req.ScenarioID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "Scenario not found")
		return
	}

	result, err := h.evaluator.Analyze(r.Context(), sc, req.Transcript)
	if err != nil {
		if errors.Is(err, analysisservice.ErrNotConfigured) {
			utils.RespondError(w, http.StatusServiceUnavailable, "analysis unavailable")
			return
		}
		log.Printf("[analysis] evaluation failed scenario=%s: %v", req.ScenarioID, err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := analyzeResponse{Analysis: result}

	// Pronunciation is best effort; a failed assessment never sinks the
	// conversation evaluation.
	if h.assessor != nil && h.assessor.Enabled() && req.ReferenceText != "" && len(req.AudioData) > 0 {
		assessment, err := h.assessor.Assess(r.Context(), req.AudioData, req.ReferenceText)
		if err != nil {
			log.Printf("[analysis] pronunciation assessment failed: %v", err)
		} else {
			resp.Pronunciation = assessment
		}
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}
