package rrsd

import (
	"fmt"
	"sync"
	"time"

	"github.com/KatjaLuckLab/DMI-predictor/pkg/models"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/utils"
)

// BuildRequest is the input of a replicate build
type BuildRequest struct {
	Label            string `json:"label"`
	InstancesPerType int    `json:"instances_per_type,omitempty"`
	Seed             int64  `json:"seed,omitempty"`
}

// RunRecord is the state of one replicate build. Records handed out by the
// store are snapshots; Replicate is shared and only read after completion.
type RunRecord struct {
	ID              string
	Request         BuildRequest
	Status          models.RunStatus
	Seed            int64 // effective seed, set when the build starts
	Error           string
	CreatedAtUnixMs int64
	StartedAtUnixMs int64
	EndedAtUnixMs   int64
	Replicate       *models.Replicate
}

// RunStore keeps replicate runs in memory, in creation order
type RunStore struct {
	mu    sync.RWMutex
	runs  map[string]*RunRecord
	order []string
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*RunRecord),
	}
}

func nowUnixMs() int64 {
	return time.Now().UTC().UnixMilli()
}

// Create registers a pending run
func (s *RunStore) Create(req BuildRequest) (RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID := utils.GenerateRunID()
	if _, exists := s.runs[runID]; exists {
		return RunRecord{}, fmt.Errorf("run already exists: %s", runID)
	}

	rec := &RunRecord{
		ID:              runID,
		Request:         req,
		Status:          models.RunStatusPending,
		CreatedAtUnixMs: nowUnixMs(),
	}
	s.runs[runID] = rec
	s.order = append(s.order, runID)
	return *rec, nil
}

func (s *RunStore) Get(runID string) (RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[runID]
	if !ok {
		return RunRecord{}, false
	}
	return *rec, true
}

// List returns up to limit runs after offset, oldest first. An empty status
// matches every run.
func (s *RunStore) List(limit, offset int, status models.RunStatus) []RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	out := make([]RunRecord, 0, min(limit, len(s.order)))
	skipped := 0
	for _, id := range s.order {
		rec := s.runs[id]
		if status != "" && rec.Status != status {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, *rec)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func (s *RunStore) SetStatus(runID string, status models.RunStatus, errMsg string) (RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	rec.Status = status
	if errMsg != "" {
		rec.Error = errMsg
	}

	switch {
	case status == models.RunStatusRunning:
		if rec.StartedAtUnixMs == 0 {
			rec.StartedAtUnixMs = nowUnixMs()
		}
	case status.IsTerminal():
		rec.EndedAtUnixMs = nowUnixMs()
	}
	return *rec, nil
}

// SetSeed records the effective seed of a run
func (s *RunStore) SetSeed(runID string, seed int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	rec.Seed = seed
	return nil
}

// Complete stores the replicate and marks the run completed, unless the run
// already reached a terminal state (for example cancelled)
func (s *RunStore) Complete(runID string, rep *models.Replicate) (RunRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return RunRecord{}, false, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if rec.Status.IsTerminal() {
		return *rec, false, nil
	}
	rec.Replicate = rep
	rec.Status = models.RunStatusCompleted
	rec.EndedAtUnixMs = nowUnixMs()
	return *rec, true, nil
}
