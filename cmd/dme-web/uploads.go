package main

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/el7oseni/dme-equipment-docs/internal/pipeline"
)

// maxUploadBytes bounds one multipart request body. Label photos run a few
// MB; a 50-image zip stays well under this. Var so tests can lower it.
var maxUploadBytes int64 = 512 << 20 // 512 MiB

// uploadSession holds files staged for one run. Sessions are consumed when
// processing starts; a new upload begins a new session.
type uploadSession struct {
	mu      sync.Mutex
	id      string
	files   []pipeline.Upload
	created time.Time
}

var (
	sessionsMu sync.Mutex
	sessions   = make(map[string]*uploadSession)
)

func newSession() *uploadSession {
	sessionsMu.Lock()
	defer sessionsMu.Unlock()
	s := &uploadSession{
		id:      uuid.NewString(),
		created: time.Now(),
	}
	sessions[s.id] = s
	return s
}

func getSession(id string) *uploadSession {
	sessionsMu.Lock()
	defer sessionsMu.Unlock()
	return sessions[id]
}

// takeSession removes and returns the session, so one upload set is processed
// at most once.
func takeSession(id string) *uploadSession {
	sessionsMu.Lock()
	defer sessionsMu.Unlock()
	s := sessions[id]
	delete(sessions, id)
	return s
}

// allowedUploadExt matches the UI contract: individual photos or one archive.
func allowedUploadExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".zip":
		return true
	}
	return false
}

// POST /api/uploads
// Multipart form with "files" parts. An optional sessionId query appends to an
// existing session; otherwise a new session is created.
func handleUploads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		log.Warn().Err(err).Msg("Failed to parse multipart upload")
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpError(w, http.StatusRequestEntityTooLarge, "upload exceeds the size limit")
			return
		}
		httpError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		httpError(w, http.StatusBadRequest, "no files provided")
		return
	}

	session := getSession(r.URL.Query().Get("sessionId"))
	if session == nil {
		session = newSession()
	}

	type fileInfo struct {
		Name string `json:"name"`
		Size int64  `json:"size"`
	}
	var accepted []fileInfo

	session.mu.Lock()
	defer session.mu.Unlock()

	for _, part := range parts {
		name := filepath.Base(part.Filename)
		if !allowedUploadExt(name) {
			log.Warn().Str("file", name).Msg("Rejecting upload with unsupported extension")
			httpError(w, http.StatusBadRequest, "unsupported file type: "+name)
			return
		}

		f, err := part.Open()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "failed to read "+name)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "failed to read "+name)
			return
		}

		session.files = append(session.files, pipeline.Upload{Name: name, Data: data})
		accepted = append(accepted, fileInfo{Name: name, Size: int64(len(data))})
	}

	log.Info().
		Str("session", session.id).
		Int("files", len(accepted)).
		Int("total_staged", len(session.files)).
		Msg("Upload accepted")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": session.id,
		"files":     accepted,
		"staged":    len(session.files),
	})
}
