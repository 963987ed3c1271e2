package classify

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// RelevanceGate is the first classification stage: a yes/no verdict from the
// bid title alone. One gate owns one thread for the whole run.
type RelevanceGate struct {
	Client   *Client
	AgentID  string
	ThreadID string
	Keywords []string
}

func (g *RelevanceGate) Relevant(ctx context.Context, title string) bool {
	prompt := fmt.Sprintf(
		"Determine if the following bid title is relevant to our company's areas of interest: %s. Respond with only 'true' or 'false'.\n\nTitle: %s",
		strings.Join(g.Keywords, ", "), title,
	)

	runID, err := g.Client.Submit(ctx, g.ThreadID, g.AgentID, prompt)
	if err != nil {
		log.Printf("[relevance] submit failed title=%q: %v", title, err)
		return false
	}

	text, ok := g.Client.AwaitResult(ctx, g.ThreadID, runID)
	if !ok {
		return false
	}

	// The remote contract is a literal "true"; anything else is a no.
	return strings.ToLower(strings.TrimSpace(text)) == "true"
}
