package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// fakeExtractor returns canned fields, failing for any image whose name is in
// failOn.
type fakeExtractor struct {
	failOn map[string]bool
	calls  []string
}

func (f *fakeExtractor) Extract(_ context.Context, item ImageItem) (ExtractedFields, error) {
	f.calls = append(f.calls, item.Name)
	if f.failOn[item.Name] {
		return ExtractedFields{}, fmt.Errorf("unreadable label in %s", item.Name)
	}
	return ExtractedFields{
		Device:       "Hospital Bed",
		Model:        "HB-100",
		Serial:       "SN-" + item.Name,
		Manufacturer: "n/a",
	}, nil
}

// fakeBuilder returns deterministic doc URLs, failing for serials in failOn.
type fakeBuilder struct {
	failOn map[string]bool
	built  []string
}

func (f *fakeBuilder) Build(_ context.Context, fields ExtractedFields, folderID string) (string, error) {
	if f.failOn[fields.Serial] {
		return "", fmt.Errorf("docs API rejected %s", fields.Serial)
	}
	f.built = append(f.built, fields.Serial)
	return "https://docs.google.com/document/d/" + folderID + "-" + fields.Serial + "/edit", nil
}

// fakeStorage records folders and CSV writes in memory.
type fakeStorage struct {
	mu          sync.Mutex
	nextID      int
	folders     map[string]string // id -> "name under parent"
	csvs        map[string][][]string
	failFolders bool
	failCSV     string // filename whose write fails; empty means never
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		folders: make(map[string]string),
		csvs:    make(map[string][][]string),
	}
}

func (s *fakeStorage) CreateContainer(_ context.Context, name, parentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFolders {
		return "", fmt.Errorf("drive quota exceeded")
	}
	s.nextID++
	id := fmt.Sprintf("folder-%d", s.nextID)
	s.folders[id] = parentID + "/" + name
	return id, nil
}

func (s *fakeStorage) WriteTabularArtifact(_ context.Context, rows [][]string, filename, containerID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCSV == filename {
		return "", fmt.Errorf("upload of %s failed", filename)
	}
	key := containerID + "/" + filename
	s.csvs[key] = rows
	return "file-" + key, nil
}

// folderByName returns the id of the first folder whose path ends in name.
func (s *fakeStorage) folderByName(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, path := range s.folders {
		if strings.HasSuffix(path, "/"+name) {
			return id
		}
	}
	return ""
}
