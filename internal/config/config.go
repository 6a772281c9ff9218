// Package config resolves the client's runtime configuration from the
// environment. Every endpoint and credential is env-driven so a
// deployment never needs a rebuild to point at a different backend.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full environment-driven configuration. Field tags name
// the exact environment variables.
type Config struct {
	// APIBaseURL is the EchoSoul backend base path, including /api.
	APIBaseURL string `envconfig:"ECHOSOUL_API_URL" default:"http://127.0.0.1:5000/api"`

	// Identity provider (Firebase-style identity toolkit REST surface).
	IdentityBaseURL string `envconfig:"ECHOSOUL_IDENTITY_URL" default:"https://identitytoolkit.googleapis.com/v1"`
	IdentityAPIKey  string `envconfig:"ECHOSOUL_IDENTITY_KEY"`

	// Azure Speech credentials for TTS. Both empty means speech output
	// is disabled and the client degrades to text only.
	AzureSpeechKey    string `envconfig:"AZURE_SPEECH_KEY"`
	AzureSpeechRegion string `envconfig:"AZURE_SPEECH_REGION"`

	// StateDir holds the persisted user record, logs, and audio cache.
	StateDir string `envconfig:"ECHOSOUL_STATE_DIR" default:".echosoul"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &c, nil
}

// UserStatePath is the file holding the serialized user record.
func (c *Config) UserStatePath() string {
	return filepath.Join(c.StateDir, "user.json")
}

// LogPath is the default log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.StateDir, "logs", "echosoul.log")
}

// CacheDir is the on-disk TTS audio cache directory.
func (c *Config) CacheDir() string {
	return filepath.Join(c.StateDir, "cache")
}

// EnsureStateDir creates the state directory if needed.
func (c *Config) EnsureStateDir() error {
	return os.MkdirAll(c.StateDir, 0o755)
}
