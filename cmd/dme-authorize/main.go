// Command dme-authorize performs the one-time OAuth 2.0 installed-app flow
// and saves the resulting authorized-user token for dme-web to pick up.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/el7oseni/dme-equipment-docs/internal/auth"
	"github.com/el7oseni/dme-equipment-docs/internal/logging"
)

var (
	credentialsFile string
	tokenFile       string
)

var rootCmd = &cobra.Command{
	Use:   "dme-authorize",
	Short: "Generate a Google Drive/Docs OAuth token",
	Long: `Runs the OAuth 2.0 installed-app flow against the client secrets file
downloaded from the Google Cloud console ("Desktop app" credentials) and
saves the authorized-user token. dme-web reads the saved token and refreshes
it automatically; this command only needs to run again if the token is
revoked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuthorize(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&credentialsFile, "credentials", "oauth_credentials.json", "OAuth client secrets file")
	rootCmd.Flags().StringVar(&tokenFile, "token", "token.json", "Where to save the authorized token")
}

func runAuthorize(ctx context.Context) error {
	cfg, err := auth.OAuthConfig(credentialsFile)
	if err != nil {
		return err
	}

	// Out-of-band style flow: the user pastes the code shown by Google after
	// granting access. Redirect goes to localhost so the code appears in the
	// browser address bar even without a listener.
	cfg.RedirectURL = "http://localhost"
	url := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	fmt.Println("Open this URL in your browser and grant access:")
	fmt.Println()
	fmt.Println("  " + url)
	fmt.Println()
	fmt.Print("Paste the authorization code (the 'code' parameter from the redirect URL): ")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("no authorization code entered")
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	if err := auth.SaveToken(tokenFile, tok); err != nil {
		return err
	}

	fmt.Printf("Token saved to %s. You can now start dme-web.\n", tokenFile)
	return nil
}

func main() {
	logging.Init()
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Authorization failed")
	}
}
