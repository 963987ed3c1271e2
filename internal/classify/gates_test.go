package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func gateClient(t *testing.T, api *fakeThreadAPI) (*Client, func()) {
	t.Helper()
	return newTestClient(t, api, 5)
}

func TestRelevanceGateLiteralTrue(t *testing.T) {
	cases := []struct {
		reply string
		want  bool
	}{
		{"true", true},
		{" True \n", true},
		{"TRUE", true},
		{"false", false},
		{"yes", false},
		{"true.", false},
		{"the answer is true", false},
		{"", false},
	}

	for _, tc := range cases {
		api := &fakeThreadAPI{messages: []fakeMessage{{Role: "assistant", Text: tc.reply}}}
		c, done := gateClient(t, api)

		g := &RelevanceGate{Client: c, AgentID: "asst_rel", ThreadID: "thread_1", Keywords: []string{"AI", "drones"}}
		got := g.Relevant(context.Background(), "AI Monitoring System")
		require.Equal(t, tc.want, got, "reply %q", tc.reply)
		done()
	}
}

func TestRelevanceGatePromptCarriesKeywordsAndTitle(t *testing.T) {
	var prompt string
	api := &fakeThreadAPI{messages: []fakeMessage{{Role: "assistant", Text: "true"}}}

	// wrap the message endpoint to capture the prompt
	c, done := newCapturingClient(t, api, &prompt)
	defer done()

	g := &RelevanceGate{Client: c, AgentID: "asst_rel", ThreadID: "thread_1", Keywords: []string{"UTM", "ITS (traffic)"}}
	require.True(t, g.Relevant(context.Background(), "Drone Corridor Study"))

	require.Contains(t, prompt, "UTM, ITS (traffic)")
	require.Contains(t, prompt, "Title: Drone Corridor Study")
	require.Contains(t, prompt, "only 'true' or 'false'")
}

func TestRelevanceGateFailedRunIsFalse(t *testing.T) {
	api := &fakeThreadAPI{runStatus: "failed"}
	c, done := gateClient(t, api)
	defer done()

	g := &RelevanceGate{Client: c, AgentID: "asst_rel", ThreadID: "thread_1"}
	require.False(t, g.Relevant(context.Background(), "anything"))
}

func TestQualifierParsesVerdict(t *testing.T) {
	api := &fakeThreadAPI{messages: []fakeMessage{{
		Role: "assistant",
		Text: `{"relevance": true, "category": "high", "description": "AI surveillance platform for corrections"}`,
	}}}
	c, done := gateClient(t, api)
	defer done()

	q := &Qualifier{Client: c, AgentID: "asst_q", ThreadID: "thread_1"}
	v := q.Qualify(context.Background(), "AI Monitoring System", "long scraped text")
	require.NotNil(t, v)
	require.True(t, v.Relevance)
	require.Equal(t, "high", v.Category)
	require.Equal(t, "AI surveillance platform for corrections", v.Description)
}

func TestQualifierBadJSONIsNil(t *testing.T) {
	api := &fakeThreadAPI{messages: []fakeMessage{{Role: "assistant", Text: "sounds relevant to me!"}}}
	c, done := gateClient(t, api)
	defer done()

	q := &Qualifier{Client: c, AgentID: "asst_q", ThreadID: "thread_1"}
	require.Nil(t, q.Qualify(context.Background(), "t", "d"))
}

func TestQualifierTimeoutIsNil(t *testing.T) {
	api := &fakeThreadAPI{runStatus: "in_progress"}
	c, done := newTestClient(t, api, 3)
	defer done()

	q := &Qualifier{Client: c, AgentID: "asst_q", ThreadID: "thread_1"}
	require.Nil(t, q.Qualify(context.Background(), "t", "d"))
	require.Equal(t, 3, api.polls())
}

// newCapturingClient proxies the fake API but records the last submitted
// message body.
func newCapturingClient(t *testing.T, api *fakeThreadAPI, prompt *string) (*Client, func()) {
	t.Helper()
	inner := api.handler()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/messages") {
			b, _ := io.ReadAll(r.Body)
			var msg struct {
				Content string `json:"content"`
			}
			_ = json.Unmarshal(b, &msg)
			*prompt = msg.Content
			r.Body = io.NopCloser(bytes.NewReader(b))
		}
		inner.ServeHTTP(w, r)
	}))
	c := New(srv.URL, "k", time.Millisecond, 5)
	return c, srv.Close
}
