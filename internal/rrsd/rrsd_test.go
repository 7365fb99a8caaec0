package rrsd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/KatjaLuckLab/DMI-predictor/internal/entity"
	"github.com/KatjaLuckLab/DMI-predictor/internal/matcher"
	"github.com/KatjaLuckLab/DMI-predictor/internal/metrics"
	"github.com/KatjaLuckLab/DMI-predictor/internal/replicate"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/config"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/models"
)

func testDataset(t *testing.T) *Dataset {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := entity.Load(config.Inputs{
		ProteinDir:             "../../testdata/proteins",
		KnownPPIFile:           "../../testdata/known_ppis.tsv",
		SlimTypeFile:           "../../testdata/elm_classes.tsv",
		DMITypeFile:            "../../testdata/elm_interaction_domains.tsv",
		SmartDomainTypesFile:   "../../testdata/smart_domains.tsv",
		PfamDomainTypesFile:    "../../testdata/pfam_domains.tsv",
		SmartDomainMatchesFile: "../../testdata/smart_matches.json",
		PfamDomainMatchesFile:  "../../testdata/pfam_matches.json",
		NetworkDir:             "../../testdata/networks",
	}, log)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return &Dataset{
		Index:   replicate.NewIndex(s, log),
		Matcher: matcher.NewRegexMatcher(s),
		Options: replicate.Options{PairCap: 50, InstancesPerType: 4},
		Metrics: metrics.NewRegistry(),
	}
}

// blockingMatcher never returns before its context is cancelled
type blockingMatcher struct {
	entered chan struct{}
}

func (m *blockingMatcher) FindMatches(ctx context.Context, _ []models.ProteinPair, _ *models.DMIType) ([]models.PairMatches, error) {
	select {
	case m.entered <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

type failingMatcher struct{}

func (failingMatcher) FindMatches(context.Context, []models.ProteinPair, *models.DMIType) ([]models.PairMatches, error) {
	return nil, errors.New("matcher exploded")
}

func waitForStatus(t *testing.T, store *RunStore, runID string, want models.RunStatus) RunRecord {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec, ok := store.Get(runID)
		if !ok {
			t.Fatalf("run %s not found", runID)
		}
		if rec.Status == want {
			return rec
		}
		time.Sleep(5 * time.Millisecond)
	}
	rec, _ := store.Get(runID)
	t.Fatalf("run %s status = %s, want %s", runID, rec.Status, want)
	return RunRecord{}
}
