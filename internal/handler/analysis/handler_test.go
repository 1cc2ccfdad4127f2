package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sur153/Voice-Bot-Backend/internal/model/scenario"
	analysisservice "github.com/sur153/Voice-Bot-Backend/internal/service/analysis"
	"github.com/sur153/Voice-Bot-Backend/internal/service/pronunciation"
)

type stubStore struct {
	items map[string]scenario.Scenario
}

func (s stubStore) List() []scenario.Summary { return nil }

func (s stubStore) FindByID(id string) (scenario.Scenario, bool) {
	item, ok := s.items[id]
	return item, ok
}

type stubEvaluator struct {
	result *analysisservice.Result
	err    error
}

func (e stubEvaluator) Enabled() bool { return true }

func (e stubEvaluator) Analyze(context.Context, scenario.Scenario, string) (*analysisservice.Result, error) {
	return e.result, e.err
}

type stubAssessor struct {
	enabled bool
	result  *pronunciation.Result
	err     error
	called  bool
}

func (a *stubAssessor) Enabled() bool { return a.enabled }

func (a *stubAssessor) Assess(context.Context, []pronunciation.Chunk, string) (*pronunciation.Result, error) {
	a.called = true
	return a.result, a.err
}

func evaluationResult() *analysisservice.Result {
	return &analysisservice.Result{
		SpeakingToneStyle:   analysisservice.ToneScores{ProfessionalTone: 8, ActiveListening: 7, EngagementQuality: 9, Total: 24},
		ConversationContent: analysisservice.ContentScores{NeedsAssessment: 20, ValueProposition: 18, ObjectionHandling: 15, Total: 53},
		OverallScore:        77,
	}
}

func setupRouter(evaluator Evaluator, assessor Assessor) *chi.Mux {
	store := stubStore{items: map[string]scenario.Scenario{
		"cold-call": {ID: "cold-call", EvaluationPrompt: "Judge the cold call."},
	}}

	r := chi.NewRouter()
	New(store, evaluator, assessor).RegisterRoutes(r)
	return r
}

func postAnalyze(r *chi.Mux, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestAnalyze(t *testing.T) {
	r := setupRouter(stubEvaluator{result: evaluationResult()}, &stubAssessor{})

	resp := postAnalyze(r, map[string]string{"scenario_id": "cold-call", "transcript": "seller: hi"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Analysis      *analysisservice.Result `json:"analysis"`
		Pronunciation *pronunciation.Result   `json:"pronunciation"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Analysis == nil || body.Analysis.OverallScore != 77 {
		t.Errorf("analysis = %+v", body.Analysis)
	}
	if body.Pronunciation != nil {
		t.Error("pronunciation present without audio data")
	}
}

func TestAnalyzeWithPronunciation(t *testing.T) {
	assessor := &stubAssessor{
		enabled: true,
		result:  &pronunciation.Result{AccuracyScore: 85, PronunciationScore: 88},
	}
	r := setupRouter(stubEvaluator{result: evaluationResult()}, assessor)

	resp := postAnalyze(r, map[string]any{
		"scenario_id":    "cold-call",
		"transcript":     "seller: hi",
		"reference_text": "hello world",
		"audio_data":     []pronunciation.Chunk{{Type: "user", Data: "cGNt"}},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !assessor.called {
		t.Error("assessor not invoked despite audio data")
	}

	var body struct {
		Pronunciation *pronunciation.Result `json:"pronunciation"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Pronunciation == nil || body.Pronunciation.PronunciationScore != 88 {
		t.Errorf("pronunciation = %+v", body.Pronunciation)
	}
}

func TestAnalyzePronunciationFailureIsNotFatal(t *testing.T) {
	assessor := &stubAssessor{enabled: true, err: errors.New("speech not recognized")}
	r := setupRouter(stubEvaluator{result: evaluationResult()}, assessor)

	resp := postAnalyze(r, map[string]any{
		"scenario_id":    "cold-call",
		"transcript":     "seller: hi",
		"reference_text": "hello",
		"audio_data":     []pronunciation.Chunk{{Type: "user", Data: "cGNt"}},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body map[string]json.RawMessage
	json.Unmarshal(resp.Body.Bytes(), &body)
	if _, present := body["pronunciation"]; present {
		t.Error("failed pronunciation assessment leaked into the response")
	}
}

func TestAnalyzeMissingFields(t *testing.T) {
	r := setupRouter(stubEvaluator{result: evaluationResult()}, &stubAssessor{})

	for _, body := range []map[string]string{
		{"transcript": "hello"},
		{"scenario_id": "cold-call"},
		{},
	} {
		resp := postAnalyze(r, body)
		if resp.Code != http.StatusBadRequest {
			t.Errorf("body %v: expected 400, got %d", body, resp.Code)
			continue
		}
		var parsed map[string]string
		json.Unmarshal(resp.Body.Bytes(), &parsed)
		if parsed["error"] != "scenario_id and transcript are required" {
			t.Errorf("error = %q", parsed["error"])
		}
	}
}

func TestAnalyzeScenarioNotFound(t *testing.T) {
	r := setupRouter(stubEvaluator{result: evaluationResult()}, &stubAssessor{})

	resp := postAnalyze(r, map[string]string{"scenario_id": "nonexistent", "transcript": "hi"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestAnalyzeUnavailable(t *testing.T) {
	r := setupRouter(stubEvaluator{err: analysisservice.ErrNotConfigured}, &stubAssessor{})

	resp := postAnalyze(r, map[string]string{"scenario_id": "cold-call", "transcript": "hi"})
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestAnalyzeEvaluatorFailure(t *testing.T) {
	r := setupRouter(stubEvaluator{err: errors.New("rate limited")}, &stubAssessor{})

	resp := postAnalyze(r, map[string]string{"scenario_id": "cold-call", "transcript": "hi"})
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}
