package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Client talks to the remote assistant-thread API. A thread is a persistent
// conversation; a run is one asynchronous classification job against a named
// agent bound to that thread. Both gates share this client with different
// threads and agents.
type Client struct {
	BaseURL      string
	APIKey       string
	PollInterval time.Duration
	MaxAttempts  int

	hc *http.Client
}

func New(baseURL, apiKey string, pollInterval time.Duration, maxAttempts int) *Client {
	return &Client{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		PollInterval: pollInterval,
		MaxAttempts:  maxAttempts,
		hc:           &http.Client{Timeout: 30 * time.Second},
	}
}

type idResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type messageList struct {
	Data []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

// CreateThread opens a new conversation context. Threads are created once
// per run and reused across every candidate in that run.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var out idResponse
	if err := c.do(ctx, http.MethodPost, "/threads", map[string]any{}, &out); err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return out.ID, nil
}

// Submit appends a user message to the thread and starts a run against
// agentID. It returns the run id to poll.
func (c *Client) Submit(ctx context.Context, threadID, agentID, prompt string) (string, error) {
	msg := map[string]any{
		"role":    "user",
		"content": prompt,
	}
	var ignored idResponse
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/messages", msg, &ignored); err != nil {
		return "", fmt.Errorf("submit message: %w", err)
	}

	var run idResponse
	body := map[string]any{"assistant_id": agentID}
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs", body, &run); err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return run.ID, nil
}

// AwaitResult polls the run until it completes, fails, or the attempt budget
// runs out. On completion it returns the newest agent message's first text
// block. Failure, exhaustion and transport errors all come back as ok=false;
// callers treat them the same way.
func (c *Client) AwaitResult(ctx context.Context, threadID, runID string) (string, bool) {
	var result string

	st := waitFor(ctx, c.MaxAttempts, c.PollInterval, func(ctx context.Context) pollState {
		var run idResponse
		if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, &run); err != nil {
			log.Printf("[classify] poll error run=%s: %v", runID, err)
			return pollFailed
		}

		switch run.Status {
		case "completed":
			text, ok := c.latestAgentText(ctx, threadID)
			if !ok {
				// completed but no agent message yet; keep polling
				return pollAgain
			}
			result = text
			return pollDone
		case "failed":
			log.Printf("[classify] run failed run=%s", runID)
			return pollFailed
		default:
			return pollAgain
		}
	})

	if st != pollDone {
		return "", false
	}
	return result, true
}

func (c *Client) latestAgentText(ctx context.Context, threadID string) (string, bool) {
	var msgs messageList
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/messages", nil, &msgs); err != nil {
		log.Printf("[classify] list messages thread=%s: %v", threadID, err)
		return "", false
	}

	// newest first
	for _, m := range msgs.Data {
		if m.Role != "assistant" {
			continue
		}
		for _, block := range m.Content {
			if block.Type == "text" {
				return block.Text.Value, true
			}
		}
		return "", false
	}
	return "", false
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")

	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("%s %s status %d: %s", method, path, res.StatusCode, string(b))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
