package voice

import (
	"github.com/sur153/Voice-Bot-Backend/internal/model/agent"
)

// Session configuration defaults sent to the realtime API before any client
// traffic is relayed.
const (
	sessionUpdateType = "session.update"

	turnDetectionType    = "azure_semantic_vad"
	noiseReductionType   = "azure_deep_noise_suppression"
	echoCancellationType = "server_echo_cancellation"

	endOfUtteranceModel = "semantic_detection_v1"
)

// SessionUpdate is the first frame sent on every upstream connection.
type SessionUpdate struct {
	Type    string  `json:"type"`
	Session Session `json:"session"`
}

// Session carries realtime session settings. The optional fields are filled
// only when a locally provisioned agent drives the conversation; remote
// agents are configured server side and addressed through the endpoint URL.
type Session struct {
	Modalities                 []string      `json:"modalities"`
	TurnDetection              TurnDetection `json:"turn_detection"`
	InputAudioNoiseReduction   AudioSetting  `json:"input_audio_noise_reduction"`
	InputAudioEchoCancellation AudioSetting  `json:"input_audio_echo_cancellation"`
	Voice                      Voice         `json:"voice"`
	Model                      string        `json:"model,omitempty"`
	Instructions               string        `json:"instructions,omitempty"`
	Temperature                *float64      `json:"temperature,omitempty"`
	MaxResponseOutputTokens    *int          `json:"max_response_output_tokens,omitempty"`
}

// TurnDetection tunes the server-side voice activity detector.
type TurnDetection struct {
	Type                    string                 `json:"type"`
	Threshold               float64                `json:"threshold"`
	PrefixPaddingMS         int                    `json:"prefix_padding_ms"`
	SilenceDurationMS       int                    `json:"silence_duration_ms"`
	RemoveFillerWords       bool                   `json:"remove_filler_words"`
	EndOfUtteranceDetection EndOfUtteranceSettings `json:"end_of_utterance_detection"`
}

// EndOfUtteranceSettings tunes the semantic end-of-utterance detector.
type EndOfUtteranceSettings struct {
	Model     string  `json:"model"`
	Threshold float64 `json:"threshold"`
	Timeout   float64 `json:"timeout"`
}

// AudioSetting selects a named audio processing mode.
type AudioSetting struct {
	Type string `json:"type"`
}

// Voice selects the synthesis voice. Temperature is always serialized, the
// realtime API rejects voice payloads without it.
type Voice struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Temperature float64 `json:"temperature"`
}

// SessionOptions selects the voice and, for local agents, the conversation
// settings layered onto the session defaults.
type SessionOptions struct {
	VoiceName    string
	VoiceType    string
	DefaultModel string
	Agent        *agent.Profile
}

// NewSessionUpdate builds the initial session.update frame.
func NewSessionUpdate(opts SessionOptions) SessionUpdate {
	session := Session{
		Modalities: []string{"text", "audio"},
		TurnDetection: TurnDetection{
			Type:              turnDetectionType,
			Threshold:         0.5,
			PrefixPaddingMS:   200,
			SilenceDurationMS: 200,
			RemoveFillerWords: true,
			EndOfUtteranceDetection: EndOfUtteranceSettings{
				Model:     endOfUtteranceModel,
				Threshold: 0.3,
				Timeout:   1.2,
			},
		},
		InputAudioNoiseReduction:   AudioSetting{Type: noiseReductionType},
		InputAudioEchoCancellation: AudioSetting{Type: echoCancellationType},
		Voice: Voice{
			Name: opts.VoiceName,
			Type: opts.VoiceType,
		},
	}

	if profile := opts.Agent; profile != nil && !profile.IsRemote {
		session.Model = profile.Model
		if session.Model == "" {
			session.Model = opts.DefaultModel
		}
		session.Instructions = profile.Instructions
		session.Temperature = profile.Temperature
		session.MaxResponseOutputTokens = profile.MaxTokens
	}

	return SessionUpdate{Type: sessionUpdateType, Session: session}
}
