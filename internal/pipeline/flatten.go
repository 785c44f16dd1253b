package pipeline

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// ErrNoImages is returned when flattening produces no usable images. The run
// aborts before any output folder is created.
var ErrNoImages = errors.New("no images found")

// zipMethodZstd is the ZIP compression method ID for Zstandard (APPNOTE 6.3.7).
// Archives produced with zstd entries are readable thanks to the decompressor
// registered in init().
const zipMethodZstd uint16 = 93

func init() {
	zip.RegisterDecompressor(zipMethodZstd, func(r io.Reader) io.ReadCloser {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return io.NopCloser(failReader{err})
		}
		return zr.IOReadCloser()
	})
}

// failReader surfaces a decoder construction error on first read.
type failReader struct{ err error }

func (f failReader) Read([]byte) (int, error) { return 0, f.err }

// imageExtensions are the archive-member extensions accepted by the flattener.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IsImageName reports whether name has a supported image extension
// (case-insensitive).
func IsImageName(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// FlattenUploads expands the uploaded entries into a flat ordered list of
// images. Zip archives are expanded in place in their internal listing order;
// members without a supported image extension are silently dropped. Non-archive
// entries pass through unchanged.
//
// Returns ErrNoImages when the result is empty. A malformed archive is an
// input error and aborts the whole run.
func FlattenUploads(uploads []Upload) ([]ImageItem, error) {
	var items []ImageItem

	for _, up := range uploads {
		if !strings.EqualFold(filepath.Ext(up.Name), ".zip") {
			items = append(items, ImageItem{Name: up.Name, Data: up.Data})
			continue
		}

		expanded, err := expandArchive(up)
		if err != nil {
			return nil, err
		}
		items = append(items, expanded...)
	}

	if len(items) == 0 {
		return nil, ErrNoImages
	}

	log.Info().
		Int("uploads", len(uploads)).
		Int("images", len(items)).
		Msg("Uploads flattened")

	return items, nil
}

// expandArchive reads every image member of a zip upload, preserving the
// archive's listing order.
func expandArchive(up Upload) ([]ImageItem, error) {
	zr, err := zip.NewReader(bytes.NewReader(up.Data), int64(len(up.Data)))
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", up.Name, err)
	}

	var items []ImageItem
	skipped := 0

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if !IsImageName(f.Name) {
			skipped++
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open archive member %s in %s: %w", f.Name, up.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read archive member %s in %s: %w", f.Name, up.Name, err)
		}

		items = append(items, ImageItem{Name: f.Name, Data: data})
	}

	log.Debug().
		Str("archive", up.Name).
		Int("images", len(items)).
		Int("skipped", skipped).
		Msg("Archive expanded")

	return items, nil
}
