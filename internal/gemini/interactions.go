package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
)

// CreateInteraction starts an interaction and returns its event stream.
// Stream is forced on. The returned sequence must be ranged over so the
// response body is released.
func (c *Client) CreateInteraction(
	ctx context.Context,
	req InteractionRequest,
) (iter.Seq2[Event, error], error) {
	req.Stream = true

	resp, err := c.do(ctx, http.MethodPost,
		c.endpoint("interactions", url.Values{"alt": {"sse"}}), req, true)
	if err != nil {
		return nil, fmt.Errorf("creating interaction: %w", err)
	}

	return streamEvents(resp.Body, decodeInteractionEvent), nil
}

// GetInteraction fetches the current state of an interaction.
func (c *Client) GetInteraction(ctx context.Context, id string) (*Interaction, error) {
	resp, err := c.do(ctx, http.MethodGet,
		c.endpoint("interactions/"+url.PathEscape(id), nil), nil, false)
	if err != nil {
		return nil, fmt.Errorf("getting interaction %s: %w", id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading interaction %s: %w", id, err)
	}

	var result Interaction
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding interaction %s: %w", id, err)
	}
	return &result, nil
}

// decodeInteractionEvent parses one event payload field by field. A
// malformed field carries no information but leaves its siblings intact.
// Payloads that are not JSON objects are skipped rather than failing the
// stream.
func decodeInteractionEvent(data []byte) (Event, bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return Event{}, false, nil
	}

	var ev Event
	if raw, ok := fields["interaction"]; ok {
		var ref InteractionRef
		if err := json.Unmarshal(raw, &ref); err == nil && ref.ID != "" {
			ev.Interaction = &ref
		}
	}
	if raw, ok := fields["thought"]; ok {
		_ = json.Unmarshal(raw, &ev.Thought)
	}
	if raw, ok := fields["content"]; ok {
		ev.Content = decodeContent(raw)
	}
	return ev, true, nil
}

// decodeContent keeps the well-formed parts of a content object and
// returns nil when none survive.
func decodeContent(raw json.RawMessage) *Content {
	var c struct {
		Parts []json.RawMessage `json:"parts"`
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil
	}

	var out Content
	for _, rp := range c.Parts {
		var p Part
		if err := json.Unmarshal(rp, &p); err != nil {
			continue
		}
		out.Parts = append(out.Parts, p)
	}
	if len(out.Parts) == 0 {
		return nil
	}
	return &out
}
