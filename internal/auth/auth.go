// Package auth resolves the credentials for the two Google surfaces the app
// talks to: an API key for Gemini, and an OAuth 2.0 authorized-user token for
// the Drive and Docs APIs.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scopes required to create documents and manage Drive folders.
var Scopes = []string{
	"https://www.googleapis.com/auth/documents",
	"https://www.googleapis.com/auth/drive",
}

// GetAPIKey retrieves the Gemini API key from the GEMINI_API_KEY environment
// variable.
func GetAPIKey() (string, error) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		log.Debug().Msg("Using API key from environment variable")
		return key, nil
	}
	return "", fmt.Errorf("API key not found. Set GEMINI_API_KEY")
}

// OAuthConfig parses the OAuth client secrets file (Google Cloud "Desktop app"
// credentials JSON) into an oauth2.Config with the Drive/Docs scopes.
func OAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read OAuth credentials %s: %w", credentialsFile, err)
	}

	cfg, err := google.ConfigFromJSON(b, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse OAuth credentials: %w", err)
	}
	return cfg, nil
}

// LoadToken reads a previously saved authorized-user token from tokenFile.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	b, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read token %s (run dme-authorize first): %w", tokenFile, err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("parse token %s: %w", tokenFile, err)
	}
	return &tok, nil
}

// SaveToken writes the token to tokenFile with owner-only permissions.
func SaveToken(tokenFile string, tok *oauth2.Token) error {
	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(tokenFile, b, 0600); err != nil {
		return fmt.Errorf("write token %s: %w", tokenFile, err)
	}
	log.Info().Str("file", tokenFile).Msg("Token saved")
	return nil
}

// TokenSource returns a refreshing token source for the Drive/Docs clients.
// The token is refreshed transparently on expiry; persisting the refreshed
// token is not required because the refresh token itself does not rotate.
func TokenSource(ctx context.Context, credentialsFile, tokenFile string) (oauth2.TokenSource, error) {
	cfg, err := OAuthConfig(credentialsFile)
	if err != nil {
		return nil, err
	}

	tok, err := LoadToken(tokenFile)
	if err != nil {
		return nil, err
	}

	return cfg.TokenSource(ctx, tok), nil
}
