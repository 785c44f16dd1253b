// Package extract implements the vision-model collaborator: it sends one
// equipment label photo to Gemini and parses the structured fields out of the
// response.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/el7oseni/dme-equipment-docs/internal/jsonutil"
	"github.com/el7oseni/dme-equipment-docs/internal/metrics"
	"github.com/el7oseni/dme-equipment-docs/internal/pipeline"
)

// extractionPrompt instructs the model to read the four label fields and
// answer with bare JSON. Serial numbers are the common failure mode, hence
// the explicit character-confusion warnings.
const extractionPrompt = `
You are analyzing a DME (Durable Medical Equipment) label photo.

Extract these fields with HIGH ACCURACY:

1. Device/Equipment Type: What is this equipment?
2. Model Number: The model/reference number
3. Serial Number: The unique serial number (CAREFUL: A≠4, O≠0, I≠1, S≠5)
4. Manufacturer: Company name (if visible)

Return ONLY valid JSON:
{
  "device": "equipment type",
  "model": "model number",
  "serial": "serial number",
  "manufacturer": "manufacturer or n/a"
}
`

// NotApplicable is the sentinel value for a manufacturer the label does not show.
const NotApplicable = "n/a"

// NewClient creates a Gemini API client for the given API key.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return client, nil
}

// Gemini implements pipeline.Extractor on top of the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini wraps an existing client. model is the Gemini model ID.
func NewGemini(client *genai.Client, model string) *Gemini {
	return &Gemini{client: client, model: model}
}

// Extract sends the image inline to Gemini and parses the field JSON from the
// response. Device, model, and serial must all be present; a missing or empty
// manufacturer becomes the "n/a" sentinel.
func (g *Gemini) Extract(ctx context.Context, item pipeline.ImageItem) (pipeline.ExtractedFields, error) {
	log.Debug().
		Str("image", item.Name).
		Int("bytes", len(item.Data)).
		Str("model", g.model).
		Msg("Sending label photo to Gemini")

	parts := []*genai.Part{
		{InlineData: &genai.Blob{
			MIMEType: mimeTypeFor(item.Name),
			Data:     item.Data,
		}},
		{Text: extractionPrompt},
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	geminiStart := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	geminiElapsed := time.Since(geminiStart)

	m := metrics.New("DmeEquipmentDocs").
		Dimension("Operation", "extract").
		Metric("GeminiApiLatencyMs", float64(geminiElapsed.Milliseconds()), metrics.UnitMilliseconds).
		Count("GeminiApiCalls")
	if err != nil {
		m.Count("GeminiApiErrors")
	}
	if resp != nil && resp.UsageMetadata != nil {
		m.Metric("GeminiInputTokens", float64(resp.UsageMetadata.PromptTokenCount), metrics.UnitCount)
		m.Metric("GeminiOutputTokens", float64(resp.UsageMetadata.CandidatesTokenCount), metrics.UnitCount)
	}
	m.Flush()

	if err != nil {
		log.Error().Err(err).Str("image", item.Name).Dur("duration", geminiElapsed).Msg("Gemini extraction call failed")
		return pipeline.ExtractedFields{}, fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil || resp.Text() == "" {
		log.Warn().Str("image", item.Name).Msg("Received empty response from Gemini")
		return pipeline.ExtractedFields{}, fmt.Errorf("received empty response from Gemini API")
	}

	fields, err := ParseFields(resp.Text())
	if err != nil {
		log.Error().Err(err).Str("image", item.Name).Msg("Failed to parse extraction response")
		return pipeline.ExtractedFields{}, err
	}

	log.Debug().
		Str("image", item.Name).
		Str("device", fields.Device).
		Str("serial", fields.Serial).
		Dur("duration", geminiElapsed).
		Msg("Label fields extracted")

	return fields, nil
}

// ParseFields parses the model's JSON answer and validates the contract:
// device, model, and serial are required; manufacturer defaults to "n/a".
func ParseFields(response string) (pipeline.ExtractedFields, error) {
	fields, err := jsonutil.ParseJSON[pipeline.ExtractedFields](response)
	if err != nil {
		return pipeline.ExtractedFields{}, fmt.Errorf("extraction response: %w", err)
	}

	fields.Device = strings.TrimSpace(fields.Device)
	fields.Model = strings.TrimSpace(fields.Model)
	fields.Serial = strings.TrimSpace(fields.Serial)
	fields.Manufacturer = strings.TrimSpace(fields.Manufacturer)

	var missing []string
	if fields.Device == "" {
		missing = append(missing, "device")
	}
	if fields.Model == "" {
		missing = append(missing, "model")
	}
	if fields.Serial == "" {
		missing = append(missing, "serial")
	}
	if len(missing) > 0 {
		return pipeline.ExtractedFields{}, fmt.Errorf("extraction response missing fields: %s", strings.Join(missing, ", "))
	}

	if fields.Manufacturer == "" {
		fields.Manufacturer = NotApplicable
	}
	return fields, nil
}

// mimeTypeFor maps the image filename extension to its MIME type.
// Unknown extensions fall back to JPEG, the overwhelmingly common case for
// label photos.
func mimeTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
