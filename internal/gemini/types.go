package gemini

import (
	"encoding/json"
	"strings"
)

// Event is one item of a streamed response. The service sends a union of
// optional fields: any subset of Interaction, Thought and Content may be
// set, and an event with none of them carries no information.
type Event struct {
	Interaction *InteractionRef `json:"interaction,omitempty"`
	Thought     Thought         `json:"thought,omitempty"`
	Content     *Content        `json:"content,omitempty"`
}

// InteractionID returns the announced interaction id, if any.
func (e Event) InteractionID() string {
	if e.Interaction == nil {
		return ""
	}
	return e.Interaction.ID
}

// Fragments returns the non-empty text parts of the event in order.
func (e Event) Fragments() []string {
	if e.Content == nil {
		return nil
	}
	var out []string
	for _, p := range e.Content.Parts {
		if p.Text != "" {
			out = append(out, p.Text)
		}
	}
	return out
}

// InteractionRef announces the server-assigned interaction.
type InteractionRef struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
}

// Content holds report fragments.
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is a single piece of content.
type Part struct {
	Text    string `json:"text,omitempty"`
	Thought bool   `json:"thought,omitempty"`
}

// Thought is a progress summary. On the wire it is either a plain string or
// an object carrying the text under "text" or "summary".
type Thought string

// UnmarshalJSON accepts both thought encodings and ignores anything else.
func (t *Thought) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Thought(s)
		return nil
	}

	var obj struct {
		Text    string `json:"text"`
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		if obj.Text != "" {
			*t = Thought(obj.Text)
		} else {
			*t = Thought(obj.Summary)
		}
		return nil
	}

	*t = ""
	return nil
}

// Interaction is the status snapshot returned when fetching an
// interaction by id.
type Interaction struct {
	ID       string    `json:"id"`
	Status   string    `json:"status"`
	Outputs  []Output  `json:"outputs"`
	Response *Response `json:"response,omitempty"`
}

// NormalizedStatus returns the upper-cased status, or "UNKNOWN" if absent.
func (i *Interaction) NormalizedStatus() string {
	if i == nil || strings.TrimSpace(i.Status) == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(strings.TrimSpace(i.Status))
}

// Output is one output item of a finished interaction.
type Output struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text,omitempty"`
}

// Response is the legacy single-text result of an interaction.
type Response struct {
	Text string `json:"text,omitempty"`
}

// Tool types understood by the Interactions API.
const (
	ToolGoogleSearch = "google_search"
	ToolURLContext   = "url_context"
	ToolMCPServer    = "mcp_server"
)

// Tool describes a grounding capability attached to a request.
type Tool struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// AgentConfig configures an agent-backed interaction.
type AgentConfig struct {
	Type              string `json:"type"`
	ThinkingSummaries string `json:"thinking_summaries,omitempty"`
}

// InteractionRequest is the body of a create-interaction call.
type InteractionRequest struct {
	Agent                 string       `json:"agent"`
	Input                 string       `json:"input"`
	Background            bool         `json:"background"`
	Stream                bool         `json:"stream"`
	AgentConfig           *AgentConfig `json:"agent_config,omitempty"`
	Tools                 []Tool       `json:"tools,omitempty"`
	PreviousInteractionID string       `json:"previous_interaction_id,omitempty"`
}

// GenerateRequest is a streamed generate-content call with thought
// summaries enabled.
type GenerateRequest struct {
	Model  string
	Prompt string
	Tools  []Tool
}

// --- generate-content wire types ---

type apiGenerateRequest struct {
	Contents         []apiContent        `json:"contents"`
	GenerationConfig apiGenerationConfig `json:"generationConfig"`
	Tools            []map[string]any    `json:"tools,omitempty"`
}

type apiContent struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

type apiGenerationConfig struct {
	ThinkingConfig apiThinkingConfig `json:"thinkingConfig"`
}

type apiThinkingConfig struct {
	IncludeThoughts bool `json:"includeThoughts"`
}

type apiGenerateChunk struct {
	Candidates []json.RawMessage `json:"candidates"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
