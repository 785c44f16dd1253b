package main

import (
	"bytes"
	"crypto/rand"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/el7oseni/dme-equipment-docs/internal/pipeline"
)

// --- Processing Job Management ---

type processJob struct {
	mu        sync.Mutex
	id        string
	status    string // "pending", "processing", "complete", "error"
	processed int
	total     int
	summary   *pipeline.RunSummary
	errMsg    string
	started   time.Time
}

var (
	jobsMu sync.Mutex
	jobs   = make(map[string]*processJob)
)

// newJobID generates a cryptographically random job ID to prevent
// sequential enumeration.
func newJobID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		log.Fatal().Err(err).Msg("Failed to generate random job ID")
	}
	return "run-" + hex.EncodeToString(b)
}

func newJob() *processJob {
	jobsMu.Lock()
	defer jobsMu.Unlock()
	j := &processJob{
		id:      newJobID(),
		status:  "pending",
		started: time.Now(),
	}
	jobs[j.id] = j
	return j
}

func getJob(id string) *processJob {
	jobsMu.Lock()
	defer jobsMu.Unlock()
	return jobs[id]
}

func setJobError(job *processJob, msg string) {
	job.mu.Lock()
	defer job.mu.Unlock()
	job.status = "error"
	job.errMsg = msg
	log.Error().Str("job", job.id).Str("error", msg).Msg("Processing job failed")
}

// --- HTTP Handlers ---

// POST /api/process/start
func handleProcessStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		httpError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	session := takeSession(req.SessionID)
	if session == nil {
		httpError(w, http.StatusNotFound, "upload session not found")
		return
	}
	session.mu.Lock()
	uploads := session.files
	session.mu.Unlock()
	if len(uploads) == 0 {
		httpError(w, http.StatusBadRequest, "upload session is empty")
		return
	}

	job := newJob()
	go runProcessingJob(job, uploads)

	respondJSON(w, http.StatusAccepted, map[string]string{"jobId": job.id})
}

// GET /api/process/{id}
// GET /api/process/{id}/csv
func handleProcessRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/process/")
	id, tail, _ := strings.Cut(rest, "/")

	job := getJob(id)
	if job == nil {
		httpError(w, http.StatusNotFound, "job not found")
		return
	}

	switch tail {
	case "":
		writeJobStatus(w, job)
	case "csv":
		writeJobCSV(w, job)
	default:
		httpError(w, http.StatusNotFound, "not found")
	}
}

func writeJobStatus(w http.ResponseWriter, job *processJob) {
	job.mu.Lock()
	defer job.mu.Unlock()

	resp := map[string]interface{}{
		"jobId":     job.id,
		"status":    job.status,
		"processed": job.processed,
		"total":     job.total,
	}
	if job.errMsg != "" {
		resp["error"] = job.errMsg
	}
	if job.summary != nil {
		resp["summary"] = job.summary
	}
	respondJSON(w, http.StatusOK, resp)
}

func writeJobCSV(w http.ResponseWriter, job *processJob) {
	job.mu.Lock()
	summary := job.summary
	job.mu.Unlock()

	if summary == nil {
		httpError(w, http.StatusConflict, "run has not completed")
		return
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(pipeline.ResultRows(summary.Results)); err != nil {
		httpError(w, http.StatusInternalServerError, "failed to encode CSV")
		return
	}

	filename := fmt.Sprintf("dme_results_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
