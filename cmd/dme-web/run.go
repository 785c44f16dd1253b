package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/el7oseni/dme-equipment-docs/internal/pipeline"
)

// runProcessingJob drives one complete run in the background. The pipeline
// itself is stateless; everything the operator sees afterwards lives on the
// job record.
func runProcessingJob(job *processJob, uploads []pipeline.Upload) {
	job.mu.Lock()
	job.status = "processing"
	job.mu.Unlock()

	session := &pipeline.Session{
		Extractor:    extractor,
		Builder:      docBuilder,
		Storage:      storage,
		BaseFolderID: cfg.BaseFolderID,
		ItemDelay:    cfg.ItemDelay,
		OnProgress: func(processed, total int) {
			job.mu.Lock()
			job.processed = processed
			job.total = total
			job.mu.Unlock()
		},
	}

	summary, err := session.Run(context.Background(), uploads)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoImages) {
			setJobError(job, "no images found")
		} else {
			setJobError(job, err.Error())
		}
		return
	}

	job.mu.Lock()
	job.summary = summary
	job.status = "complete"
	job.mu.Unlock()

	log.Info().
		Str("job", job.id).
		Int("success", summary.Success).
		Int("failed", summary.Failed).
		Msg("Processing job complete")
}
