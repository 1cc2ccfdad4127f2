package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/sur153/Voice-Bot-Backend/internal/model/scenario"
)

var (
	ErrNotConfigured      = errors.New("evaluation model is not configured")
	ErrTranscriptRequired = errors.New("transcript is required")
	ErrNoRubric           = errors.New("scenario has no evaluation rubric")
)

// Result is the structured evaluation returned to the frontend after a
// practice call.
type Result struct {
	SpeakingToneStyle   ToneScores    `json:"speaking_tone_style"`
	ConversationContent ContentScores `json:"conversation_content"`
	OverallScore        int           `json:"overall_score"`
	Strengths           []string      `json:"strengths"`
	Improvements        []string      `json:"improvements"`
	SpecificFeedback    string        `json:"specific_feedback"`
}

// ToneScores covers delivery: how the salesperson sounded.
type ToneScores struct {
	ProfessionalTone  int `json:"professional_tone"`
	ActiveListening   int `json:"active_listening"`
	EngagementQuality int `json:"engagement_quality"`
	Total             int `json:"total"`
}

// ContentScores covers substance: what the salesperson actually said.
type ContentScores struct {
	NeedsAssessment   int `json:"needs_assessment"`
	ValueProposition  int `json:"value_proposition"`
	ObjectionHandling int `json:"objection_handling"`
	Total             int `json:"total"`
}

// Analyzer scores a finished practice call against the scenario rubric.
type Analyzer struct {
	evaluator compose.Runnable[map[string]any, *schema.Message]
}

// NewAnalyzer compiles the evaluation chain. A nil chat model yields a
// disabled analyzer so the rest of the service can run without evaluation
// credentials.
func NewAnalyzer(ctx context.Context, chatModel model.ChatModel) (*Analyzer, error) {
	analyzer := &Analyzer{}
	if chatModel == nil {
		return analyzer, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(evaluatorSystemPrompt),
		schema.UserMessage("{evaluation_prompt}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile evaluation chain: %w", err)
	}

	analyzer.evaluator = runnable
	return analyzer, nil
}

// Enabled reports whether an evaluation model is wired in.
func (a *Analyzer) Enabled() bool {
	return a != nil && a.evaluator != nil
}

// Analyze scores the transcript with the scenario's evaluation rubric.
func (a *Analyzer) Analyze(ctx context.Context, sc scenario.Scenario, transcript string) (*Result, error) {
	if !a.Enabled() {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrTranscriptRequired
	}
	if strings.TrimSpace(sc.EvaluationPrompt) == "" {
		return nil, ErrNoRubric
	}

	input := map[string]any{
		"evaluation_prompt": buildEvaluationPrompt(sc.EvaluationPrompt, transcript),
	}

	msg, err := a.evaluator.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("evaluation invoke failed: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return nil, errors.New("evaluation model returned no content")
	}

	result, err := parseEvaluationOutput(msg.Content)
	if err != nil {
		return nil, fmt.Errorf("evaluation output parse failed: %w", err)
	}

	finalize(result)
	return result, nil
}

// parseEvaluationOutput tolerates models that wrap the JSON object in prose
// or code fences.
func parseEvaluationOutput(content string) (*Result, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, errors.New("missing json object")
	}

	result := &Result{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), result); err != nil {
		return nil, err
	}
	return result, nil
}

// finalize recomputes the section totals from their parts so a sloppy model
// cannot return inconsistent sums.
func finalize(result *Result) {
	tone := &result.SpeakingToneStyle
	tone.Total = tone.ProfessionalTone + tone.ActiveListening + tone.EngagementQuality

	content := &result.ConversationContent
	content.Total = content.NeedsAssessment + content.ValueProposition + content.ObjectionHandling

	if result.OverallScore == 0 {
		result.OverallScore = tone.Total + content.Total
	}
}

func buildEvaluationPrompt(rubric, transcript string) string {
	var builder strings.Builder
	builder.WriteString(strings.TrimSpace(rubric))
	builder.WriteString("\n\nEVALUATION CRITERIA\n\n")
	builder.WriteString("Score the call in two areas.\n\n")
	builder.WriteString("SPEAKING TONE & STYLE (30 points)\n")
	builder.WriteString("- professional_tone (0-10)\n")
	builder.WriteString("- active_listening (0-10)\n")
	builder.WriteString("- engagement_quality (0-10)\n\n")
	builder.WriteString("CONVERSATION CONTENT (70 points)\n")
	builder.WriteString("- needs_assessment (0-25)\n")
	builder.WriteString("- value_proposition (0-25)\n")
	builder.WriteString("- objection_handling (0-20)\n\n")
	builder.WriteString("Return one JSON object with the fields speaking_tone_style ")
	builder.WriteString("{professional_tone, active_listening, engagement_quality, total}, ")
	builder.WriteString("conversation_content {needs_assessment, value_proposition, objection_handling, total}, ")
	builder.WriteString("overall_score, strengths, improvements, specific_feedback. ")
	builder.WriteString("Do not output anything besides the JSON object.\n\n")
	builder.WriteString("CONVERSATION TRANSCRIPT\n\n")
	builder.WriteString(strings.TrimSpace(transcript))
	return builder.String()
}

const evaluatorSystemPrompt = "You are an expert sales conversation evaluator. " +
	"You review transcripts of practice sales calls and score the salesperson's performance " +
	"against the provided rubric. Be fair but demanding, and ground every score in what was " +
	"actually said on the call."
