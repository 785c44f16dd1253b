package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/el7oseni/dme-equipment-docs/internal/auth"
	"github.com/el7oseni/dme-equipment-docs/internal/config"
	"github.com/el7oseni/dme-equipment-docs/internal/extract"
	"github.com/el7oseni/dme-equipment-docs/internal/gdocs"
	"github.com/el7oseni/dme-equipment-docs/internal/gdrive"
	"github.com/el7oseni/dme-equipment-docs/internal/logging"
	"github.com/el7oseni/dme-equipment-docs/internal/pipeline"
)

// CLI flags
var (
	portFlag       int
	modelFlag      string
	baseFolderFlag string
)

// Collaborators wired at startup and reused across runs.
var (
	cfg        *config.Config
	extractor  pipeline.Extractor
	docBuilder pipeline.ArtifactBuilder
	storage    pipeline.Storage
)

var rootCmd = &cobra.Command{
	Use:   "dme-web",
	Short: "Web UI for DME equipment label processing",
	Long: `DME Web starts a local web server for processing equipment label photos.
Upload images or a zip archive, start a run, and the extracted fields are
filed as Google Docs in Drive folders with CSV audit trails.

Examples:
  dme-web
  dme-web --port 9090
  dme-web --model gemini-2.5-flash`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 8080, "Port to listen on")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Gemini model to use (default from GEMINI_MODEL)")
	rootCmd.Flags().StringVar(&baseFolderFlag, "base-folder", "", "Drive folder ID for run output (default from DME_BASE_FOLDER_ID)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	if baseFolderFlag != "" {
		os.Setenv("DME_BASE_FOLDER_ID", baseFolderFlag)
	}
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuration error")
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}

	ctx := context.Background()

	apiKey, err := auth.GetAPIKey()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get API key")
	}
	geminiClient, err := extract.NewClient(ctx, apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	extractor = extract.NewGemini(geminiClient, cfg.Model)

	ts, err := auth.TokenSource(ctx, cfg.CredentialsFile, cfg.TokenFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load Google OAuth token")
	}
	storage, err = gdrive.NewService(ctx, ts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Drive client")
	}
	docBuilder, err = gdocs.NewBuilder(ctx, ts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Docs client")
	}

	log.Info().
		Str("model", cfg.Model).
		Str("base_folder", cfg.BaseFolderID).
		Msg("Collaborator clients initialized")

	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/api/uploads", handleUploads)
	mux.HandleFunc("/api/process/start", handleProcessStart)
	mux.HandleFunc("/api/process/", handleProcessRoutes)

	// Single-page UI
	mux.HandleFunc("/", handleIndex)

	handler := withLogging(withCORS(mux))

	addr := fmt.Sprintf(":%d", portFlag)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	log.Info().Int("port", portFlag).Msg("Starting web server")
	fmt.Printf("\n  DME Equipment Docs: http://localhost:%d\n\n", portFlag)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// --- Middleware ---

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if strings.HasPrefix(r.URL.Path, "/api/") {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Msg("API request")
		}
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only allow localhost origins
		origin := r.Header.Get("Origin")
		if origin != "" && (strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
