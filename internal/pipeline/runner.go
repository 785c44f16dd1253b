package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// groupResultsName is the per-group CSV filename.
const groupResultsName = "batch_results.csv"

// Runner drives one group through extraction and document authoring.
// A failed item is recorded and never aborts the group; only the final
// CSV write can fail the group (and with it the run).
type Runner struct {
	Extractor Extractor
	Builder   ArtifactBuilder
	Storage   Storage

	// BatchSize feeds the global index computation. Zero means the default.
	BatchSize int

	// ItemDelay is the pause after each item, throttling the external APIs.
	// Zero disables the throttle.
	ItemDelay time.Duration

	// OnResult, when set, is invoked after each item completes.
	OnResult func(ProcessResult)
}

// RunGroup processes every item of the group in order, writes the group's
// batch_results.csv into folderID, and returns one result per item.
func (r *Runner) RunGroup(ctx context.Context, group Group, folderID string) ([]ProcessResult, error) {
	batchSize := r.BatchSize
	if batchSize <= 0 {
		batchSize = BatchSize
	}

	log.Info().
		Int("operation", group.Index).
		Int("images", len(group.Items)).
		Msg("Starting operation group")

	results := make([]ProcessResult, 0, len(group.Items))

	for pos, item := range group.Items {
		res := ProcessResult{
			Operation:   group.Index,
			GlobalIndex: (group.Index-1)*batchSize + pos + 1,
			Image:       item.Name,
		}

		fields, err := r.Extractor.Extract(ctx, item)
		if err == nil {
			var docURL string
			docURL, err = r.Builder.Build(ctx, fields, folderID)
			if err == nil {
				res.Status = StatusSuccess
				res.Fields = &fields
				res.DocURL = docURL
			}
		}
		if err != nil {
			// Extraction and authoring failures are absorbed identically:
			// the item is recorded as FAILED and the group continues.
			res.Status = StatusFailed
			res.Err = err.Error()
			log.Warn().
				Int("operation", group.Index).
				Str("image", item.Name).
				Str("error", res.Err).
				Msg("Image failed")
		} else {
			log.Info().
				Int("operation", group.Index).
				Int("position", pos+1).
				Str("image", item.Name).
				Str("doc_url", res.DocURL).
				Msg("Image processed")
		}

		results = append(results, res)
		if r.OnResult != nil {
			r.OnResult(res)
		}

		if r.ItemDelay > 0 {
			time.Sleep(r.ItemDelay)
		}
	}

	if _, err := r.Storage.WriteTabularArtifact(ctx, ResultRows(results), groupResultsName, folderID); err != nil {
		return nil, fmt.Errorf("write %s for operation %d: %w", groupResultsName, group.Index, err)
	}

	succeeded := 0
	for _, res := range results {
		if res.Status == StatusSuccess {
			succeeded++
		}
	}
	log.Info().
		Int("operation", group.Index).
		Int("success", succeeded).
		Int("total", len(results)).
		Msg("Operation group complete")

	return results, nil
}
