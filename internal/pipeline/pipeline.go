// Package pipeline implements the batch-and-fold processing core: flattening
// uploaded files into a work list, partitioning it into bounded groups, running
// each group through extraction and document authoring with per-item failure
// isolation, and folding everything into per-group and master CSV artifacts.
//
// The pipeline is stateless across runs. The external collaborators — the
// field extractor, the document builder, and the folder/file storage — are
// injected as interfaces; their lifecycle belongs to the host application.
package pipeline

import "context"

// BatchSize is the maximum number of images per operation group. Each group
// gets its own output folder and its own batch_results.csv.
const BatchSize = 50

// Result status tags.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// Upload is a single uploaded entry: either a raw image or a zip archive.
type Upload struct {
	Name string
	Data []byte
}

// ImageItem is one image to process, produced by the flattener.
type ImageItem struct {
	Name string
	Data []byte
}

// ExtractedFields are the four label fields the extractor must produce.
// Manufacturer carries the sentinel "n/a" when the label does not show one.
type ExtractedFields struct {
	Device       string `json:"device"`
	Model        string `json:"model"`
	Serial       string `json:"serial"`
	Manufacturer string `json:"manufacturer"`
}

// ProcessResult records the outcome for one image. Fields and DocURL are set
// only on success; Err only on failure.
type ProcessResult struct {
	// Operation is the 1-based index of the owning group.
	Operation int `json:"operation"`
	// GlobalIndex is the 1-based position across the whole run:
	// (Operation-1)*batchSize + position within the group.
	GlobalIndex int              `json:"globalIndex"`
	Image       string           `json:"image"`
	Fields      *ExtractedFields `json:"fields,omitempty"`
	DocURL      string           `json:"docUrl,omitempty"`
	Err         string           `json:"error,omitempty"`
	Status      string           `json:"status"`
}

// Group is a bounded-size partition of the flattened image list.
type Group struct {
	Index int
	Items []ImageItem
}

// RunSummary is the aggregate outcome of one run. Success+Failed == Total.
type RunSummary struct {
	Total           int             `json:"total"`
	Groups          int             `json:"operations"`
	Success         int             `json:"success"`
	Failed          int             `json:"failed"`
	MasterFolderID  string          `json:"masterFolderId"`
	MasterFolderURL string          `json:"masterFolderUrl"`
	Results         []ProcessResult `json:"results"`
}

// Extractor translates one image into structured equipment fields.
type Extractor interface {
	Extract(ctx context.Context, item ImageItem) (ExtractedFields, error)
}

// ArtifactBuilder turns extracted fields into a persisted document inside the
// given folder and returns its URL.
type ArtifactBuilder interface {
	Build(ctx context.Context, fields ExtractedFields, folderID string) (string, error)
}

// Storage creates output folders and writes tabular (CSV) artifacts.
type Storage interface {
	CreateContainer(ctx context.Context, name, parentID string) (string, error)
	WriteTabularArtifact(ctx context.Context, rows [][]string, filename, containerID string) (string, error)
}
