package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strings"
)

// GenerateContentStream runs a streamed generation with thought summaries
// enabled. Each chunk is mapped onto Event: thought parts become the
// event's Thought, the remaining text parts its Content. No interaction is
// ever announced on this path.
func (c *Client) GenerateContentStream(
	ctx context.Context,
	req GenerateRequest,
) (iter.Seq2[Event, error], error) {
	body := apiGenerateRequest{
		Contents: []apiContent{{
			Role:  "user",
			Parts: []Part{{Text: req.Prompt}},
		}},
		GenerationConfig: apiGenerationConfig{
			ThinkingConfig: apiThinkingConfig{IncludeThoughts: true},
		},
		Tools: generateTools(req.Tools),
	}

	path := "models/" + url.PathEscape(req.Model) + ":streamGenerateContent"
	resp, err := c.do(ctx, http.MethodPost,
		c.endpoint(path, url.Values{"alt": {"sse"}}), body, true)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	return streamEvents(resp.Body, decodeGenerateChunk), nil
}

// decodeGenerateChunk maps one chunk onto Event. Malformed candidates or
// parts are skipped; the rest of the chunk still counts.
func decodeGenerateChunk(data []byte) (Event, bool, error) {
	var chunk apiGenerateChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return Event{}, false, nil
	}

	var (
		thoughts []string
		content  Content
	)
	for _, rawCand := range chunk.Candidates {
		var cand struct {
			Content json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(rawCand, &cand); err != nil || len(cand.Content) == 0 {
			continue
		}
		parsed := decodeContent(cand.Content)
		if parsed == nil {
			continue
		}
		for _, p := range parsed.Parts {
			if p.Text == "" {
				continue
			}
			if p.Thought {
				thoughts = append(thoughts, p.Text)
				continue
			}
			content.Parts = append(content.Parts, Part{Text: p.Text})
		}
	}

	ev := Event{Thought: Thought(strings.Join(thoughts, "\n"))}
	if len(content.Parts) > 0 {
		ev.Content = &content
	}
	return ev, true, nil
}

// generateTools converts interaction tool descriptors to the
// generate-content tool encoding. MCP servers have no equivalent there and
// are dropped.
func generateTools(tools []Tool) []map[string]any {
	var out []map[string]any
	for _, t := range tools {
		switch t.Type {
		case ToolGoogleSearch:
			out = append(out, map[string]any{"googleSearch": map[string]any{}})
		case ToolURLContext:
			out = append(out, map[string]any{"urlContext": map[string]any{}})
		}
	}
	return out
}
