package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"bidwatch-engine/internal/domain"
)

// Qualifier is the second classification stage: a structured accept/reject
// verdict with a category and a rewritten description. It keeps its own
// thread so the two stages' histories never interleave.
type Qualifier struct {
	Client   *Client
	AgentID  string
	ThreadID string
}

func (q *Qualifier) Qualify(ctx context.Context, title, description string) *domain.Verdict {
	prompt := fmt.Sprintf(
		"Evaluate this bid for final qualification. Dont just put everything as 'high' category. Think critically from our companies perspective. Whats genuinely worth our time and related to our tech. Think from an ai/software startup's perspective. categorize it accordingly (low,medium,high). Refer to your system instructions:\n\nBid Title: %s\nBid Description: %s",
		title, description,
	)

	runID, err := q.Client.Submit(ctx, q.ThreadID, q.AgentID, prompt)
	if err != nil {
		log.Printf("[qualify] submit failed title=%q: %v", title, err)
		return nil
	}

	text, ok := q.Client.AwaitResult(ctx, q.ThreadID, runID)
	if !ok {
		return nil
	}

	var v domain.Verdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		log.Printf("[qualify] bad verdict payload title=%q: %v", title, err)
		return nil
	}
	return &v
}
