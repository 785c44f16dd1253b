package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Top-level artifact names.
const (
	masterResultsName  = "master_results.csv"
	masterFolderPrefix = "DME_Upload_"
	folderURLPrefix    = "https://drive.google.com/drive/folders/"
)

// Session is the top-level driver for one run: it flattens the uploads,
// creates the master folder, processes every group sequentially, and folds
// the results into the master CSV and the RunSummary.
type Session struct {
	Extractor Extractor
	Builder   ArtifactBuilder
	Storage   Storage

	// BaseFolderID is the parent of the run's master folder.
	BaseFolderID string

	// BatchSize overrides the group size; zero means the default (50).
	BatchSize int

	// ItemDelay is passed through to the Runner.
	ItemDelay time.Duration

	// Now supplies the master folder timestamp; nil means time.Now.
	Now func() time.Time

	// OnProgress, when set, is invoked after each image with the number of
	// images processed so far and the run total.
	OnProgress func(processed, total int)
}

// Run executes one complete run over the uploads.
//
// Per-item extraction/authoring failures are absorbed into FAILED results;
// any folder-creation or CSV-write failure is fatal and returned as-is.
// The returned summary always satisfies Success+Failed == Total.
func (s *Session) Run(ctx context.Context, uploads []Upload) (*RunSummary, error) {
	items, err := FlattenUploads(uploads)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	// Second-resolution timestamp keeps folder names unique across runs
	// started by the same process.
	masterName := masterFolderPrefix + now().Format("2006-01-02_15-04-05")
	masterID, err := s.Storage.CreateContainer(ctx, masterName, s.BaseFolderID)
	if err != nil {
		return nil, fmt.Errorf("create master folder %s: %w", masterName, err)
	}

	batchSize := s.BatchSize
	if batchSize <= 0 {
		batchSize = BatchSize
	}
	groups := SplitIntoGroups(items, batchSize)

	log.Info().
		Str("folder", masterName).
		Int("images", len(items)).
		Int("operations", len(groups)).
		Int("batch_size", batchSize).
		Msg("Processing run started")

	processed := 0
	runner := &Runner{
		Extractor: s.Extractor,
		Builder:   s.Builder,
		Storage:   s.Storage,
		BatchSize: batchSize,
		ItemDelay: s.ItemDelay,
		OnResult: func(ProcessResult) {
			processed++
			if s.OnProgress != nil {
				s.OnProgress(processed, len(items))
			}
		},
	}

	var all []ProcessResult
	for _, group := range groups {
		folderName := fmt.Sprintf("Operation_%03d", group.Index)
		folderID, err := s.Storage.CreateContainer(ctx, folderName, masterID)
		if err != nil {
			return nil, fmt.Errorf("create operation folder %s: %w", folderName, err)
		}

		results, err := runner.RunGroup(ctx, group, folderID)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}

	if _, err := s.Storage.WriteTabularArtifact(ctx, ResultRows(all), masterResultsName, masterID); err != nil {
		return nil, fmt.Errorf("write %s: %w", masterResultsName, err)
	}

	summary := &RunSummary{
		Total:           len(items),
		Groups:          len(groups),
		MasterFolderID:  masterID,
		MasterFolderURL: folderURLPrefix + masterID,
		Results:         all,
	}
	for _, res := range all {
		if res.Status == StatusSuccess {
			summary.Success++
		} else {
			summary.Failed++
		}
	}

	log.Info().
		Int("total", summary.Total).
		Int("success", summary.Success).
		Int("failed", summary.Failed).
		Int("operations", summary.Groups).
		Str("master_folder", summary.MasterFolderURL).
		Msg("Processing run complete")

	return summary, nil
}
