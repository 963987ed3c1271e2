package httpapi

import (
	"context"
	"log"
	"net/http"

	"bidwatch-engine/internal/pipeline"
	"bidwatch-engine/internal/runner"
)

type RunHandler struct {
	Status  func() runner.Status
	RunOnce func(ctx context.Context) (pipeline.Stats, error)
}

func (h RunHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Status())
}

// Trigger kicks off one pipeline pass in the background. The runner refuses
// overlapping passes, so a second trigger while one is in flight just
// reports busy.
func (h RunHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if h.Status().Running {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	go func() {
		if _, err := h.RunOnce(context.Background()); err != nil {
			log.Printf("[http] triggered run failed: %v", err)
		}
	}()

	writeJSON(w, map[string]any{"ok": true})
}
