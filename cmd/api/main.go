package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"

	"github.com/sur153/Voice-Bot-Backend/internal/config"
	"github.com/sur153/Voice-Bot-Backend/internal/handler"
	scenarioModel "github.com/sur153/Voice-Bot-Backend/internal/model/scenario"
	agentservice "github.com/sur153/Voice-Bot-Backend/internal/service/agent"
	"github.com/sur153/Voice-Bot-Backend/internal/service/analysis"
	"github.com/sur153/Voice-Bot-Backend/internal/service/pronunciation"
	scenarioservice "github.com/sur153/Voice-Bot-Backend/internal/service/scenario"
	"github.com/sur153/Voice-Bot-Backend/internal/service/voice"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	scenarioDir := scenarioModel.ResolveDir(cfg.Scenario.Dir)
	scenarios, err := scenarioModel.NewFileStore(scenarioDir)
	if err != nil {
		log.Fatalf("failed to load scenarios from %s: %v", scenarioDir, err)
	}
	log.Printf("loaded %d scenarios from %s", len(scenarios.List()), scenarioDir)

	agents := agentservice.NewManager(cfg.Azure)

	// One chat model instance backs both post-call evaluation and calendar
	// scenario generation. Without credentials both run in fallback mode.
	var chatModel model.ChatModel
	if cfg.AI.Enabled() {
		chatModel, err = cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize chat model: %v", err)
			log.Println("continuing without conversation analysis")
		} else {
			log.Println("chat model initialized successfully")
		}
	} else {
		log.Println("chat model credentials not configured, analysis disabled")
	}

	analyzer, err := analysis.NewAnalyzer(ctx, chatModel)
	if err != nil {
		log.Fatalf("failed to initialize analyzer: %v", err)
	}

	generator, err := scenarioservice.NewGraphGenerator(ctx, chatModel)
	if err != nil {
		log.Fatalf("failed to initialize scenario generator: %v", err)
	}

	assessor := pronunciation.NewAssessor(cfg.Azure.SpeechKey, cfg.Azure.SpeechRegion, cfg.Azure.SpeechLanguage)
	if assessor.Enabled() {
		log.Println("pronunciation assessment enabled")
	} else {
		log.Println("speech credentials not configured, pronunciation assessment disabled")
	}

	var proxy *voice.Proxy
	if cfg.Azure.Enabled() {
		cred, err := voice.NewCredential(cfg.Azure.ClientID)
		if err != nil {
			log.Fatalf("failed to initialize Azure credential: %v", err)
		}
		proxy = voice.NewProxy(voice.NewConnector(cfg.Azure, cred))
		log.Printf("voice proxy enabled for resource %s", cfg.Azure.ResourceName)
	} else {
		log.Println("AZURE_AI_RESOURCE_NAME not set, voice proxy disabled")
	}

	router := handler.NewRouter(handler.Deps{
		Scenarios:      scenarios,
		Agents:         agents,
		Generator:      generator,
		Analyzer:       analyzer,
		Assessor:       assessor,
		Proxy:          proxy,
		SpeechRegion:   cfg.Azure.SpeechRegion,
		SpeechLanguage: cfg.Azure.SpeechLanguage,
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("voice bot backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
