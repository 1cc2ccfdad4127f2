package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/sur153/Voice-Bot-Backend/internal/model/scenario"
)

const (
	// GraphScenarioID is the pseudo scenario that triggers generation from
	// the user's calendar.
	GraphScenarioID = "graph-api"

	// GeneratedScenarioID identifies a scenario produced by the generator.
	GeneratedScenarioID = "graph-generated"

	generatedScenarioName = "Your Personalized Sales Scenario"

	maxMeetings          = 3
	maxAttendeesPerMeet  = 3
	descriptionCharLimit = 100
)

// GraphGenerator turns recent Microsoft Graph calendar events into a
// personalized role-play scenario. Without a chat model it falls back to a
// canned scenario, so the demo works with no evaluation credentials.
type GraphGenerator struct {
	generator compose.Runnable[map[string]any, *schema.Message]
}

// NewGraphGenerator compiles the generation chain. A nil chat model yields a
// fallback-only generator.
func NewGraphGenerator(ctx context.Context, chatModel model.ChatModel) (*GraphGenerator, error) {
	g := &GraphGenerator{}
	if chatModel == nil {
		return g, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(generatorSystemPrompt),
		schema.UserMessage("{generation_prompt}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile scenario generation chain: %w", err)
	}

	g.generator = runnable
	return g, nil
}

type meeting struct {
	Subject   string
	Attendees []string
}

// calendarPayload mirrors the Microsoft Graph calendar view response shape.
type calendarPayload struct {
	Value []struct {
		Subject   string `json:"subject"`
		Attendees []struct {
			EmailAddress struct {
				Name string `json:"name"`
			} `json:"emailAddress"`
		} `json:"attendees"`
	} `json:"value"`
}

// Generate builds a scenario from raw Graph calendar JSON. Malformed or
// empty payloads still produce a usable scenario from the fallback content.
func (g *GraphGenerator) Generate(ctx context.Context, graphData []byte) scenario.Scenario {
	meetings := parseMeetings(graphData)
	content := g.scenarioContent(ctx, meetings)

	return scenario.Scenario{
		ID:                 GeneratedScenarioID,
		Name:               generatedScenarioName,
		Description:        summarize(content),
		Instructions:       content,
		IsGraphScenario:    true,
		GeneratedFromGraph: true,
	}
}

func parseMeetings(graphData []byte) []meeting {
	if len(graphData) == 0 {
		return nil
	}

	var payload calendarPayload
	if err := json.Unmarshal(graphData, &payload); err != nil {
		log.Printf("[scenario] calendar payload parse failed: %v", err)
		return nil
	}

	meetings := make([]meeting, 0, maxMeetings)
	for _, event := range payload.Value {
		if len(meetings) == maxMeetings {
			break
		}
		m := meeting{Subject: event.Subject}
		for _, attendee := range event.Attendees {
			if name := strings.TrimSpace(attendee.EmailAddress.Name); name != "" {
				m.Attendees = append(m.Attendees, name)
			}
		}
		meetings = append(meetings, m)
	}
	return meetings
}

func (g *GraphGenerator) scenarioContent(ctx context.Context, meetings []meeting) string {
	if len(meetings) == 0 || g.generator == nil {
		return fallbackScenarioContent
	}

	input := map[string]any{
		"generation_prompt": buildGenerationPrompt(meetings),
	}

	msg, err := g.generator.Invoke(ctx, input)
	if err != nil {
		log.Printf("[scenario] generation invoke failed, using fallback: %v", err)
		return fallbackScenarioContent
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return fallbackScenarioContent
	}
	return msg.Content
}

func buildGenerationPrompt(meetings []meeting) string {
	var builder strings.Builder
	builder.WriteString("Create a sales role-play scenario grounded in the user's recent meetings.\n\n")
	builder.WriteString("Recent meetings:\n")
	builder.WriteString(formatMeetingList(meetings))
	builder.WriteString("\n\nWrite the system prompt for the buyer character. Include:\n")
	builder.WriteString("- Context: the company and situation, drawn from the meetings above\n")
	builder.WriteString("- Character: who the buyer is, their role and personality\n")
	builder.WriteString("- Concerns the buyer should raise during the call\n")
	builder.WriteString("Respond with the prompt text only.")
	return builder.String()
}

func formatMeetingList(meetings []meeting) string {
	lines := make([]string, 0, len(meetings))
	for _, m := range meetings {
		attendees := m.Attendees
		if len(attendees) > maxAttendeesPerMeet {
			attendees = attendees[:maxAttendeesPerMeet]
		}
		line := "- " + m.Subject
		if len(attendees) > 0 {
			line += " with " + strings.Join(attendees, ", ")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func summarize(content string) string {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) <= descriptionCharLimit {
		return trimmed
	}
	return trimmed[:descriptionCharLimit] + "..."
}

const generatorSystemPrompt = "You design realistic sales role-play scenarios. " +
	"Given a salesperson's recent calendar, you write the system prompt for an AI buyer " +
	"they can practice against. The buyer must feel like a real person from their world."

const fallbackScenarioContent = `You are Jordan Martinez, Director of Operations at TechCorp Solutions, a mid-sized logistics company. A salesperson has reached you by phone to pitch their product.

YOUR CHARACTER PROFILE
- You are busy, practical, and allergic to buzzwords.
- You have been burned before by a vendor that overpromised and underdelivered.
- You respect salespeople who ask good questions and listen.

KEY CONCERNS TO RAISE
- Total cost of ownership, not just the sticker price.
- How long implementation takes and who does the work.
- Whether the product integrates with the systems TechCorp already runs.

BEHAVIORAL GUIDELINES
- Open guarded but polite. Warm up only if the salesperson earns it.
- Give short answers until they ask about your actual problems.
- Raise one concern at a time and push back on vague claims.`
