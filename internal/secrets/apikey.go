package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service groups the engine's secrets in the OS keychain.
	KeyringService = "bidwatch"

	keyringAccount = "bidwatch:classify:api_key"
)

// GetAPIKey returns the classification service key, preferring the OS
// keychain over the configured environment variable.
func GetAPIKey(envName string) (string, error) {
	pw, err := keyring.Get(KeyringService, keyringAccount)
	if err == nil && strings.TrimSpace(pw) != "" {
		return pw, nil
	}

	if envName != "" {
		if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
			return v, nil
		}
	}

	return "", errors.New("classification API key not found (set it in the keychain or via env)")
}

func SetAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, key)
}

func DeleteAPIKey() error {
	return keyring.Delete(KeyringService, keyringAccount)
}
