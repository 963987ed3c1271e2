package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"bidwatch-engine/internal/events"
	"bidwatch-engine/internal/pipeline"
	"bidwatch-engine/internal/runner"

	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	mux := NewMux(Deps{
		Hub:       events.NewHub(),
		RunStatus: func() runner.Status { return runner.Status{} },
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Equal(t, true, body["ok"])
}

func TestRunTrigger(t *testing.T) {
	var mu sync.Mutex
	runs := 0
	done := make(chan struct{})

	mux := NewMux(Deps{
		Hub:       events.NewHub(),
		RunStatus: func() runner.Status { return runner.Status{} },
		RunOnce: func(ctx context.Context) (pipeline.Stats, error) {
			mu.Lock()
			runs++
			mu.Unlock()
			close(done)
			return pipeline.Stats{}, nil
		},
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res, err := http.Post(srv.URL+"/run", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	<-done
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, runs)
}

func TestRunTriggerRefusedWhileRunning(t *testing.T) {
	mux := NewMux(Deps{
		Hub:       events.NewHub(),
		RunStatus: func() runner.Status { return runner.Status{Running: true} },
		RunOnce: func(ctx context.Context) (pipeline.Stats, error) {
			t.Error("should not start a second run")
			return pipeline.Stats{}, nil
		},
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res, err := http.Post(srv.URL+"/run", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Equal(t, false, body["ok"])
}

func TestMethodNotAllowed(t *testing.T) {
	mux := NewMux(Deps{
		Hub:       events.NewHub(),
		RunStatus: func() runner.Status { return runner.Status{} },
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/run")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}
