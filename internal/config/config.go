package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every configuration area of the service.
type Config struct {
	Server   ServerConfig
	Azure    AzureConfig
	AI       AIConfig
	Scenario ScenarioConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	azure, err := loadAzureConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		Azure:    azure,
		AI:       ai,
		Scenario: loadScenarioConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AzureConfig describes the Azure AI resource the voice proxy talks to, the
// voice rendered by the realtime session, and the speech service used for
// pronunciation assessment.
type AzureConfig struct {
	ResourceName    string
	ProjectName     string
	Region          string
	AgentID         string
	UseRemoteAgents bool
	ModelDeployment string
	OpenAIEndpoint  string
	OpenAIAPIKey    string
	ClientID        string
	VoiceName       string
	VoiceType       string
	SpeechKey       string
	SpeechRegion    string
	SpeechLanguage  string
}

// Enabled reports whether the Azure AI resource required by the voice proxy
// is configured.
func (c AzureConfig) Enabled() bool {
	return c.ResourceName != ""
}

func loadAzureConfig() (AzureConfig, error) {
	useRemoteAgents, err := parseBoolEnv("USE_AZURE_AI_AGENTS", false)
	if err != nil {
		return AzureConfig{}, err
	}

	region := getEnvOrDefault("AZURE_AI_REGION", "swedencentral")

	return AzureConfig{
		ResourceName:    strings.TrimSpace(os.Getenv("AZURE_AI_RESOURCE_NAME")),
		ProjectName:     strings.TrimSpace(os.Getenv("AZURE_AI_PROJECT_NAME")),
		Region:          region,
		AgentID:         strings.TrimSpace(os.Getenv("AGENT_ID")),
		UseRemoteAgents: useRemoteAgents,
		ModelDeployment: getEnvOrDefault("MODEL_DEPLOYMENT_NAME", "gpt-4o"),
		OpenAIEndpoint:  strings.TrimSpace(os.Getenv("AZURE_OPENAI_ENDPOINT")),
		OpenAIAPIKey:    strings.TrimSpace(os.Getenv("AZURE_OPENAI_API_KEY")),
		ClientID:        strings.TrimSpace(os.Getenv("CLIENT_ID")),
		VoiceName:       getEnvOrDefault("AZURE_VOICE_NAME", "en-IN-AartiNeural"),
		VoiceType:       getEnvOrDefault("AZURE_VOICE_TYPE", "azure-standard"),
		SpeechKey:       strings.TrimSpace(os.Getenv("AZURE_SPEECH_KEY")),
		SpeechRegion:    getEnvOrDefault("AZURE_SPEECH_REGION", region),
		SpeechLanguage:  getEnvOrDefault("AZURE_SPEECH_LANGUAGE", "en-US"),
	}, nil
}

// AIConfig describes the chat model used for post-call evaluation.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required model credentials were provided.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates a chat model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("evaluator model credentials missing: provide ARK_API_KEY + ARK_MODEL or the AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// ScenarioConfig describes where role-play and evaluation prompt files live.
type ScenarioConfig struct {
	Dir string
}

func loadScenarioConfig() ScenarioConfig {
	return ScenarioConfig{Dir: strings.TrimSpace(os.Getenv("SCENARIO_DIR"))}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
