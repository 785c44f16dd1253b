// Package gdrive implements the storage collaborator on Google Drive:
// output folders and CSV artifact uploads.
package gdrive

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	csvMimeType    = "text/csv"
)

// Service wraps the Drive API client behind the pipeline's Storage contract.
type Service struct {
	drive *drive.Service
}

// NewService builds a Drive client from the OAuth token source.
func NewService(ctx context.Context, ts oauth2.TokenSource) (*Service, error) {
	srv, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create Drive service: %w", err)
	}
	return &Service{drive: srv}, nil
}

// CreateContainer creates a Drive folder named name. parentID may be empty
// for a root-level folder. Returns the folder ID.
func (s *Service) CreateContainer(ctx context.Context, name, parentID string) (string, error) {
	meta := &drive.File{
		Name:     name,
		MimeType: folderMimeType,
	}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}

	folder, err := s.drive.Files.Create(meta).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create folder %s: %w", name, err)
	}

	log.Debug().
		Str("folder", name).
		Str("id", folder.Id).
		Str("parent", parentID).
		Msg("Drive folder created")

	return folder.Id, nil
}

// WriteTabularArtifact encodes rows as CSV and uploads the file into
// containerID. Returns the created file's ID.
func (s *Service) WriteTabularArtifact(ctx context.Context, rows [][]string, filename, containerID string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("encode %s: %w", filename, err)
	}

	meta := &drive.File{
		Name:     filename,
		MimeType: csvMimeType,
		Parents:  []string{containerID},
	}

	file, err := s.drive.Files.Create(meta).
		Media(bytes.NewReader(buf.Bytes()), googleapi.ContentType(csvMimeType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}

	log.Debug().
		Str("file", filename).
		Str("id", file.Id).
		Int("rows", len(rows)).
		Msg("CSV uploaded to Drive")

	return file.Id, nil
}
