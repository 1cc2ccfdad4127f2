package voice

import (
	"encoding/json"
	"testing"

	"github.com/sur153/Voice-Bot-Backend/internal/model/agent"
)

func defaultSessionOptions() SessionOptions {
	return SessionOptions{
		VoiceName:    "en-IN-AartiNeural",
		VoiceType:    "azure-standard",
		DefaultModel: "gpt-4o",
	}
}

func marshalSession(t *testing.T, update SessionUpdate) map[string]any {
	t.Helper()
	payload, err := json.Marshal(update)
	if err != nil {
		t.Fatalf("marshal session update: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal session update: %v", err)
	}
	return decoded
}

func TestNewSessionUpdateDefaults(t *testing.T) {
	update := NewSessionUpdate(defaultSessionOptions())

	if update.Type != "session.update" {
		t.Errorf("Type = %q, want session.update", update.Type)
	}

	decoded := marshalSession(t, update)
	session, ok := decoded["session"].(map[string]any)
	if !ok {
		t.Fatalf("session payload missing: %v", decoded)
	}

	modalities, _ := session["modalities"].([]any)
	if len(modalities) != 2 || modalities[0] != "text" || modalities[1] != "audio" {
		t.Errorf("modalities = %v, want [text audio]", modalities)
	}

	turn, _ := session["turn_detection"].(map[string]any)
	if turn["type"] != "azure_semantic_vad" {
		t.Errorf("turn_detection.type = %v", turn["type"])
	}
	if turn["threshold"] != 0.5 || turn["prefix_padding_ms"] != float64(200) || turn["silence_duration_ms"] != float64(200) {
		t.Errorf("turn_detection tuning = %v", turn)
	}
	if turn["remove_filler_words"] != true {
		t.Error("remove_filler_words missing or false")
	}
	eou, _ := turn["end_of_utterance_detection"].(map[string]any)
	if eou["model"] != "semantic_detection_v1" || eou["threshold"] != 0.3 || eou["timeout"] != 1.2 {
		t.Errorf("end_of_utterance_detection = %v", eou)
	}

	if nr, _ := session["input_audio_noise_reduction"].(map[string]any); nr["type"] != "azure_deep_noise_suppression" {
		t.Errorf("input_audio_noise_reduction = %v", nr)
	}
	if ec, _ := session["input_audio_echo_cancellation"].(map[string]any); ec["type"] != "server_echo_cancellation" {
		t.Errorf("input_audio_echo_cancellation = %v", ec)
	}

	voice, _ := session["voice"].(map[string]any)
	if voice["name"] != "en-IN-AartiNeural" || voice["type"] != "azure-standard" {
		t.Errorf("voice = %v", voice)
	}
	temperature, present := voice["temperature"]
	if !present || temperature != float64(0) {
		t.Errorf("voice.temperature = %v (present=%v), want explicit 0", temperature, present)
	}

	for _, key := range []string{"model", "instructions", "temperature", "max_response_output_tokens"} {
		if _, present := session[key]; present {
			t.Errorf("session.%s present without a local agent", key)
		}
	}
}

func TestNewSessionUpdateLocalAgentOverlay(t *testing.T) {
	temperature := 0.8
	maxTokens := 1500
	opts := defaultSessionOptions()
	opts.Agent = &agent.Profile{
		ID:           "local-agent-cold-call-1",
		ScenarioID:   "cold-call",
		Instructions: "You are a skeptical IT director.",
		Model:        "gpt-4",
		Temperature:  &temperature,
		MaxTokens:    &maxTokens,
	}

	session := NewSessionUpdate(opts).Session
	if session.Model != "gpt-4" {
		t.Errorf("Model = %q, want agent model", session.Model)
	}
	if session.Instructions != "You are a skeptical IT director." {
		t.Errorf("Instructions = %q", session.Instructions)
	}
	if session.Temperature == nil || *session.Temperature != 0.8 {
		t.Errorf("Temperature = %v, want 0.8", session.Temperature)
	}
	if session.MaxResponseOutputTokens == nil || *session.MaxResponseOutputTokens != 1500 {
		t.Errorf("MaxResponseOutputTokens = %v, want 1500", session.MaxResponseOutputTokens)
	}
}

func TestNewSessionUpdateLocalAgentModelFallback(t *testing.T) {
	opts := defaultSessionOptions()
	opts.Agent = &agent.Profile{ID: "local-agent-demo-1", Instructions: "Sell me this pen."}

	if got := NewSessionUpdate(opts).Session.Model; got != "gpt-4o" {
		t.Errorf("Model = %q, want default deployment fallback", got)
	}
}

func TestNewSessionUpdateRemoteAgentSkipsOverlay(t *testing.T) {
	opts := defaultSessionOptions()
	opts.Agent = &agent.Profile{ID: "asst_abc", IsRemote: true, Instructions: "hosted"}

	session := NewSessionUpdate(opts).Session
	if session.Model != "" || session.Instructions != "" {
		t.Errorf("remote agent leaked into session payload: model=%q instructions=%q", session.Model, session.Instructions)
	}
}
