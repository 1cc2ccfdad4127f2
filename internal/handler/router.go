package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	agentHandler "github.com/sur153/Voice-Bot-Backend/internal/handler/agent"
	analysisHandler "github.com/sur153/Voice-Bot-Backend/internal/handler/analysis"
	scenarioHandler "github.com/sur153/Voice-Bot-Backend/internal/handler/scenario"
	voiceHandler "github.com/sur153/Voice-Bot-Backend/internal/handler/voice"
	middlewarePkg "github.com/sur153/Voice-Bot-Backend/internal/middleware"
	scenarioModel "github.com/sur153/Voice-Bot-Backend/internal/model/scenario"
	agentService "github.com/sur153/Voice-Bot-Backend/internal/service/agent"
	analysisService "github.com/sur153/Voice-Bot-Backend/internal/service/analysis"
	"github.com/sur153/Voice-Bot-Backend/internal/service/pronunciation"
	scenarioService "github.com/sur153/Voice-Bot-Backend/internal/service/scenario"
	voiceService "github.com/sur153/Voice-Bot-Backend/internal/service/voice"
	"github.com/sur153/Voice-Bot-Backend/pkg/utils"
)

const wsEndpoint = "/ws/voice"

// Deps carries the services the router wires to routes. Proxy may be nil
// when the Azure AI resource is not configured; the voice route then answers
// 503 and /api/config reports the proxy as disabled.
type Deps struct {
	Scenarios scenarioModel.Store
	Agents    *agentService.Manager
	Generator *scenarioService.GraphGenerator
	Analyzer  *analysisService.Analyzer
	Assessor  *pronunciation.Assessor
	Proxy     *voiceService.Proxy

	SpeechRegion   string
	SpeechLanguage string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		api.Get("/config", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"proxy_enabled":   deps.Proxy != nil,
				"ws_endpoint":     wsEndpoint,
				"speech_region":   deps.SpeechRegion,
				"speech_language": deps.SpeechLanguage,
			})
		})

		scenarioHandler.New(deps.Scenarios, deps.Generator).RegisterRoutes(api)
		agentHandler.New(deps.Scenarios, deps.Agents, deps.Generator).RegisterRoutes(api)
		analysisHandler.New(deps.Scenarios, deps.Analyzer, deps.Assessor).RegisterRoutes(api)
	})

	if deps.Proxy != nil {
		voiceHandler.New(deps.Proxy, deps.Agents).RegisterRoutes(r)
	} else {
		r.Get(wsEndpoint, func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondError(w, http.StatusServiceUnavailable, "Voice proxy is not configured")
		})
	}

	return r
}
