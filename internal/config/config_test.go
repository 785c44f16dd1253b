package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DME_BASE_FOLDER_ID", "1exL34puBaxIj1DkBpykEgWzEOf9CdBXl")
	t.Setenv("GEMINI_MODEL", "gemini-3-flash-preview")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "1exL34puBaxIj1DkBpykEgWzEOf9CdBXl", cfg.BaseFolderID)
	assert.Equal(t, "gemini-3-flash-preview", cfg.Model)
	assert.Equal(t, 500*time.Millisecond, cfg.ItemDelay)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DME_BASE_FOLDER_ID", "base-folder")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("DME_OAUTH_CREDENTIALS", "")
	t.Setenv("DME_TOKEN_FILE", "")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, "oauth_credentials.json", cfg.CredentialsFile)
	assert.Equal(t, "token.json", cfg.TokenFile)
}

func TestLoad_MissingBaseFolder(t *testing.T) {
	t.Setenv("DME_BASE_FOLDER_ID", "")

	_, err := Load()
	assert.Error(t, err)
}
