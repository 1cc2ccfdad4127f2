package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sur153/Voice-Bot-Backend/internal/config"
	"github.com/sur153/Voice-Bot-Backend/internal/model/agent"
	scenarioModel "github.com/sur153/Voice-Bot-Backend/internal/model/scenario"
	agentService "github.com/sur153/Voice-Bot-Backend/internal/service/agent"
	analysisService "github.com/sur153/Voice-Bot-Backend/internal/service/analysis"
	"github.com/sur153/Voice-Bot-Backend/internal/service/pronunciation"
	scenarioService "github.com/sur153/Voice-Bot-Backend/internal/service/scenario"
	voiceService "github.com/sur153/Voice-Bot-Backend/internal/service/voice"
)

type noopConnector struct{}

func (noopConnector) Connect(context.Context, *agent.Profile) (voiceService.Conn, error) {
	return nil, errors.New("not wired in tests")
}

func testDeps(t *testing.T, withProxy bool) Deps {
	t.Helper()

	scenarios, err := scenarioModel.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}

	generator, err := scenarioService.NewGraphGenerator(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewGraphGenerator() error: %v", err)
	}

	analyzer, err := analysisService.NewAnalyzer(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewAnalyzer() error: %v", err)
	}

	deps := Deps{
		Scenarios:      scenarios,
		Agents:         agentService.NewManager(config.AzureConfig{ModelDeployment: "gpt-4o"}),
		Generator:      generator,
		Analyzer:       analyzer,
		Assessor:       pronunciation.NewAssessor("", "", "en-US"),
		SpeechRegion:   "swedencentral",
		SpeechLanguage: "en-US",
	}
	if withProxy {
		deps.Proxy = voiceService.NewProxy(noopConnector{})
	}
	return deps
}

func TestConfigEndpointProxyDisabled(t *testing.T) {
	router := NewRouter(testDeps(t, false))

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		ProxyEnabled   bool   `json:"proxy_enabled"`
		WSEndpoint     string `json:"ws_endpoint"`
		SpeechRegion   string `json:"speech_region"`
		SpeechLanguage string `json:"speech_language"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.ProxyEnabled {
		t.Error("proxy_enabled = true without a proxy")
	}
	if body.WSEndpoint != "/ws/voice" {
		t.Errorf("ws_endpoint = %q", body.WSEndpoint)
	}
	if body.SpeechRegion != "swedencentral" || body.SpeechLanguage != "en-US" {
		t.Errorf("speech settings = %q/%q", body.SpeechRegion, body.SpeechLanguage)
	}
}

func TestConfigEndpointProxyEnabled(t *testing.T) {
	router := NewRouter(testDeps(t, true))

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var body struct {
		ProxyEnabled bool `json:"proxy_enabled"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !body.ProxyEnabled {
		t.Error("proxy_enabled = false with a proxy wired")
	}
}

func TestVoiceRouteRegistration(t *testing.T) {
	// Plain GET to the WebSocket route: a registered route rejects the
	// missing upgrade handshake, an unregistered one returns 404.
	router := NewRouter(testDeps(t, true))
	req := httptest.NewRequest(http.MethodGet, "/ws/voice", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code == http.StatusNotFound {
		t.Error("voice route missing with a proxy wired")
	}

	router = NewRouter(testDeps(t, false))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ws/voice", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a proxy, got %d", resp.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := NewRouter(testDeps(t, false))

	req := httptest.NewRequest(http.MethodOptions, "/api/scenarios", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", resp.Code)
	}
	if resp.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS allow origin header")
	}
}
