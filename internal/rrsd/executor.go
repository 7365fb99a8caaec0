package rrsd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/KatjaLuckLab/DMI-predictor/internal/matcher"
	"github.com/KatjaLuckLab/DMI-predictor/internal/metrics"
	"github.com/KatjaLuckLab/DMI-predictor/internal/replicate"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/config"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/logger"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/models"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/utils"
)

var (
	ErrRunNotFound     = errors.New("run not found")
	ErrRunTerminal     = errors.New("run is terminal")
	ErrRunIDMissing    = errors.New("run_id is required")
	ErrInvalidRequest  = errors.New("invalid build request")
	ErrDatasetNotReady = errors.New("dataset not loaded")
)

// Dataset is the loaded, read-only input shared by every run
type Dataset struct {
	Index   *replicate.Index
	Matcher matcher.Matcher
	Options replicate.Options
	Metrics *metrics.Registry
}

// RunExecutor manages asynchronous replicate builds and per-run cancellation.
type RunExecutor struct {
	store   *RunStore
	dataset *Dataset

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func NewRunExecutor(store *RunStore, dataset *Dataset) *RunExecutor {
	return &RunExecutor{
		store:   store,
		dataset: dataset,
		cancels: make(map[string]context.CancelFunc),
	}
}

// Submit validates a request, registers a run and starts building it.
// Returns the run state (RUNNING) or an error.
func (e *RunExecutor) Submit(req BuildRequest) (RunRecord, error) {
	if e.dataset == nil || e.dataset.Index == nil {
		return RunRecord{}, ErrDatasetNotReady
	}
	if err := config.ValidateReplicateLabels([]string{req.Label}); err != nil {
		return RunRecord{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.InstancesPerType < 0 {
		return RunRecord{}, fmt.Errorf("%w: instances_per_type must be at least 0", ErrInvalidRequest)
	}

	rec, err := e.store.Create(req)
	if err != nil {
		return RunRecord{}, err
	}
	return e.Start(rec.ID)
}

// Start begins executing a pending run asynchronously
func (e *RunExecutor) Start(runID string) (RunRecord, error) {
	if runID == "" {
		return RunRecord{}, ErrRunIDMissing
	}

	rec, ok := e.store.Get(runID)
	if !ok {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	switch {
	case rec.Status == models.RunStatusRunning:
		return rec, nil
	case rec.Status.IsTerminal():
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	updated, err := e.store.SetStatus(runID, models.RunStatusRunning, "")
	if err != nil {
		return RunRecord{}, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	if old, exists := e.cancels[runID]; exists {
		old()
	}
	e.cancels[runID] = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	go e.runBuild(ctx, runID, rec.Request)
	return updated, nil
}

// Stop requests cancellation for a run and marks it cancelled
func (e *RunExecutor) Stop(runID string) (RunRecord, error) {
	if runID == "" {
		return RunRecord{}, ErrRunIDMissing
	}

	rec, ok := e.store.Get(runID)
	if !ok {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if rec.Status.IsTerminal() {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	e.mu.Lock()
	cancel, ok := e.cancels[runID]
	e.mu.Unlock()
	if ok {
		cancel()
	}
	return e.store.SetStatus(runID, models.RunStatusCancelled, "")
}

// Wait blocks until every started build has returned
func (e *RunExecutor) Wait() {
	e.wg.Wait()
}

func (e *RunExecutor) cleanup(runID string) {
	e.mu.Lock()
	if cancel, ok := e.cancels[runID]; ok {
		cancel()
		delete(e.cancels, runID)
	}
	e.mu.Unlock()
}

func (e *RunExecutor) runBuild(ctx context.Context, runID string, req BuildRequest) {
	defer e.wg.Done()
	defer e.cleanup(runID)

	opts := e.dataset.Options
	if req.InstancesPerType > 0 {
		opts.InstancesPerType = req.InstancesPerType
	}
	rng := utils.NewRandSource(req.Seed)
	if err := e.store.SetSeed(runID, rng.Seed()); err != nil {
		logger.Error("failed to record seed", "run_id", runID, "error", err)
	}

	log := logger.ForReplicate(req.Label).With("run_id", runID)
	b := replicate.NewBuilder(e.dataset.Index, e.dataset.Matcher, rng, opts, e.dataset.Metrics, log)

	log.Info("starting replicate build", "seed", rng.Seed(), "instances_per_type", opts.InstancesPerType)
	rep, err := b.BuildReplicate(ctx, req.Label)
	if err != nil {
		if ctx.Err() != nil {
			log.Info("replicate build cancelled")
			return
		}
		log.Error("replicate build failed", "error", err)
		if _, setErr := e.store.SetStatus(runID, models.RunStatusFailed, err.Error()); setErr != nil {
			log.Error("failed to set failed status", "error", setErr)
		}
		return
	}

	if _, completed, err := e.store.Complete(runID, rep); err != nil {
		log.Error("failed to set completed status", "error", err)
	} else if completed {
		log.Info("run completed", "instances", rep.Len())
	}
}
