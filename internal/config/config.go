// Package config resolves runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

// Default Gemini model for label extraction. Flash is accurate enough for
// label OCR and keeps per-image cost low.
const DefaultModel = "gemini-2.5-flash"

// Config holds the settings shared by the web server and the processing pipeline.
type Config struct {
	// BaseFolderID is the Drive folder under which every run's master folder is created.
	BaseFolderID string

	// Model is the Gemini model ID used for extraction.
	Model string

	// CredentialsFile is the OAuth client secrets JSON (Google Cloud "Desktop app").
	CredentialsFile string

	// TokenFile stores the authorized user token produced by dme-authorize.
	TokenFile string

	// ItemDelay is the pause after each processed image, a throttle for the
	// Gemini and Docs API rate limits.
	ItemDelay time.Duration
}

// Load reads configuration from environment variables.
// DME_BASE_FOLDER_ID is required; everything else has a default.
func Load() (*Config, error) {
	cfg := &Config{
		BaseFolderID:    os.Getenv("DME_BASE_FOLDER_ID"),
		Model:           os.Getenv("GEMINI_MODEL"),
		CredentialsFile: os.Getenv("DME_OAUTH_CREDENTIALS"),
		TokenFile:       os.Getenv("DME_TOKEN_FILE"),
		ItemDelay:       500 * time.Millisecond,
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.CredentialsFile == "" {
		cfg.CredentialsFile = "oauth_credentials.json"
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = "token.json"
	}

	if cfg.BaseFolderID == "" {
		return nil, fmt.Errorf("DME_BASE_FOLDER_ID is required")
	}

	return cfg, nil
}
