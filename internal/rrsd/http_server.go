package rrsd

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang/snappy"

	"github.com/KatjaLuckLab/DMI-predictor/internal/output"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/logger"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/models"
)

type HTTPServer struct {
	mux      *http.ServeMux
	store    *RunStore
	Executor *RunExecutor
}

func NewHTTPServer(store *RunStore, executor *RunExecutor) *HTTPServer {
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		store:    store,
		Executor: executor,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/groups", s.handleGroups)
	s.mux.HandleFunc("/v1/replicates", s.handleReplicates)
	s.mux.HandleFunc("/v1/replicates/", s.handleReplicateByID)
	if executor != nil && executor.dataset != nil && executor.dataset.Metrics != nil {
		s.mux.Handle("/metrics", executor.dataset.Metrics.Handler())
	}

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleGroups handles GET /v1/groups
func (s *HTTPServer) handleGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.Executor == nil || s.Executor.dataset == nil || s.Executor.dataset.Index == nil {
		s.writeError(w, http.StatusServiceUnavailable, ErrDatasetNotReady.Error())
		return
	}

	sizes := s.Executor.dataset.Index.Sizes()
	groups := make([]map[string]any, 0, len(sizes))
	for _, gs := range sizes {
		groups = append(groups, map[string]any{
			"dmi_type":   gs.DMIType,
			"name":       gs.Name,
			"motif":      gs.Motif,
			"interfaces": gs.Interfaces,
			"domains":    gs.DomainNames,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

// handleReplicates handles /v1/replicates
func (s *HTTPServer) handleReplicates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateReplicate(w, r)
	case http.MethodGet:
		s.handleListReplicates(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleReplicateByID handles /v1/replicates/{id}, {id}:stop and {id}/export
func (s *HTTPServer) handleReplicateByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/replicates/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	if runID, ok := strings.CutSuffix(path, ":stop"); ok {
		if r.Method == http.MethodPost {
			s.handleStopReplicate(w, r, runID)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if runID, ok := strings.CutSuffix(path, "/export"); ok {
		if r.Method == http.MethodGet {
			s.handleExportReplicate(w, r, runID)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if r.Method == http.MethodGet {
		s.handleGetReplicate(w, r, path)
	} else {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleCreateReplicate handles POST /v1/replicates
func (s *HTTPServer) handleCreateReplicate(w http.ResponseWriter, r *http.Request) {
	var req BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	rec, err := s.Executor.Submit(req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRequest):
			s.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrDatasetNotReady):
			s.writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("replicate build submitted (HTTP)", "run_id", rec.ID, "label", req.Label)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"run": convertRunToJSON(rec),
	})
}

// handleListReplicates handles GET /v1/replicates with pagination and filtering
func (s *HTTPServer) handleListReplicates(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = min(parsed, 1000)
		}
	}

	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	status := models.RunStatus(strings.ToLower(r.URL.Query().Get("status")))

	runs := s.store.List(limit, offset, status)
	runsJSON := make([]map[string]any, 0, len(runs))
	for _, rec := range runs {
		runsJSON = append(runsJSON, convertRunToJSON(rec))
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"runs": runsJSON,
		"pagination": map[string]any{
			"limit":  limit,
			"offset": offset,
			"count":  len(runs),
		},
	})
}

// handleGetReplicate handles GET /v1/replicates/{id}
func (s *HTTPServer) handleGetReplicate(w http.ResponseWriter, _ *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": convertRunToJSON(rec),
	})
}

// handleStopReplicate handles POST /v1/replicates/{id}:stop
func (s *HTTPServer) handleStopReplicate(w http.ResponseWriter, _ *http.Request, runID string) {
	updated, err := s.Executor.Stop(runID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRunNotFound):
			s.writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrRunIDMissing):
			s.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrRunTerminal):
			s.writeError(w, http.StatusConflict, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("replicate build cancelled (HTTP)", "run_id", runID)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": convertRunToJSON(updated),
	})
}

// handleExportReplicate handles GET /v1/replicates/{id}/export. The replicate
// is written as TSV; ?compress=true frames it with snappy.
func (s *HTTPServer) handleExportReplicate(w http.ResponseWriter, r *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if rec.Status != models.RunStatusCompleted || rec.Replicate == nil {
		s.writeError(w, http.StatusPreconditionFailed, "replicate not available: run is "+string(rec.Status))
		return
	}

	compress, _ := strconv.ParseBool(r.URL.Query().Get("compress"))

	var buf bytes.Buffer
	if compress {
		sw := snappy.NewBufferedWriter(&buf)
		if err := output.WriteTSV(sw, rec.Replicate, s.Executor.dataset.Index); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := sw.Close(); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/x-snappy-framed")
	} else {
		if err := output.WriteTSV(&buf, rec.Replicate, s.Executor.dataset.Index); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/tab-separated-values")
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+output.FileName(rec.Request.Label, compress)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error("failed to write export", "run_id", runID, "error", err)
	}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}

func convertRunToJSON(rec RunRecord) map[string]any {
	run := map[string]any{
		"id":                 rec.ID,
		"label":              rec.Request.Label,
		"status":             string(rec.Status),
		"seed":               rec.Seed,
		"created_at_unix_ms": rec.CreatedAtUnixMs,
		"started_at_unix_ms": rec.StartedAtUnixMs,
		"ended_at_unix_ms":   rec.EndedAtUnixMs,
		"error":              rec.Error,
	}
	if rec.Replicate != nil {
		run["instances"] = rec.Replicate.Len()
		run["instances_by_type"] = rec.Replicate.CountByType()
	}
	return run
}
