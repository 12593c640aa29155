// Package config resolves settings for the scanview binaries: a TOML file in
// the state directory for durable preferences, environment variables for
// overrides, so main stays lean.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the optional preferences file inside the state directory.
const ConfigFileName = "config.toml"

// DefaultAPIURL points at the hosted diagnostic service.
const DefaultAPIURL = "https://smart-diagnostic-tool.onrender.com"

// Client holds everything the terminal client needs to run.
type Client struct {
	// APIURL is the base address of the diagnostic backend.
	APIURL string `toml:"api_url"`

	// StateDir holds the durable session record and the preferences file.
	// Sessions are shared between processes pointing at the same directory
	// and never across directories.
	StateDir string `toml:"-"`
}

// DefaultStateDir places scanview state under the platform config directory.
func DefaultStateDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "scanview"), nil
}

// LoadClient resolves the client configuration. Precedence, lowest first:
// built-in defaults, config.toml in the state directory, then SCANVIEW_*
// environment variables.
func LoadClient() (Client, error) {
	stateDir := os.Getenv("SCANVIEW_STATE_DIR")
	if stateDir == "" {
		var err error
		stateDir, err = DefaultStateDir()
		if err != nil {
			return Client{}, err
		}
	}

	cfg := Client{APIURL: DefaultAPIURL, StateDir: stateDir}

	raw, err := os.ReadFile(filepath.Join(stateDir, ConfigFileName))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// no preferences file yet
	case err != nil:
		return Client{}, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return Client{}, fmt.Errorf("parse config file: %w", err)
		}
		if cfg.APIURL == "" {
			cfg.APIURL = DefaultAPIURL
		}
	}

	if url := os.Getenv("SCANVIEW_API_URL"); url != "" {
		cfg.APIURL = url
	}
	return cfg, nil
}

// Backend captures configuration for the local development backend.
type Backend struct {
	Addr          string
	JWTSigningKey string
}

// BackendFromEnv builds the backend config from environment variables.
func BackendFromEnv() Backend {
	addr := os.Getenv("SCANVIEW_BACKEND_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("SCANVIEW_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Backend{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
	}
}
