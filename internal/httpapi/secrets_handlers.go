package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"bidwatch-engine/internal/secrets"
)

type SecretsHandler struct{}

// SetAPIKey stores the classification service key in the OS keychain so it
// never lands in the config file.
func (h SecretsHandler) SetAPIKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if strings.TrimSpace(body.APIKey) == "" {
		WriteError(w, http.StatusBadRequest, "empty_key", "api_key is required")
		return
	}

	if err := secrets.SetAPIKey(body.APIKey); err != nil {
		WriteError(w, http.StatusInternalServerError, "keyring_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}
