package replicate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/KatjaLuckLab/DMI-predictor/internal/entity"
	"github.com/KatjaLuckLab/DMI-predictor/internal/matcher"
	"github.com/KatjaLuckLab/DMI-predictor/internal/metrics"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/config"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/models"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/utils"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testdataStore(t *testing.T) *entity.Store {
	t.Helper()
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
	}, quietLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

// syntheticStore has one DMI type whose motif and domain groups each hold n
// proteins; every cross pair matches.
func syntheticStore(t *testing.T, n int) *entity.Store {
	t.Helper()
	s := entity.NewStore()
	dmiType := &models.DMIType{
		ID:         "ELM001",
		Name:       "LIG_SYN_1",
		Regex:      "P..P",
		Interfaces: []models.DomainInterface{{Domains: []string{"PF001"}}},
	}
	if err := s.AddDMIType(dmiType); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		d := models.NewProtein(fmt.Sprintf("D%03d", i))
		d.AddDomainMatch("PF001", models.DomainMatch{Start: 1, End: 50})
		m := models.NewProtein(fmt.Sprintf("M%03d", i))
		m.AddMotifMatch("ELM001", models.MotifMatch{Start: 5, End: 8, Pattern: "PAAP"})
		m.AddMotifMatch("ELM001", models.MotifMatch{Start: 20, End: 23, Pattern: "PLLP"})
		for _, p := range []*models.Protein{d, m} {
			if err := s.AddProtein(p); err != nil {
				t.Fatal(err)
			}
		}
	}
	return s
}

// twoInterfaceStore has one DMI type with the alternative interfaces {PFA} and
// {PFB}, 20 motif proteins and 20 domain proteins per interface. With shared
// set, the same 20 domain proteins carry both domains.
func twoInterfaceStore(t *testing.T, shared bool) *entity.Store {
	t.Helper()
	s := entity.NewStore()
	dmiType := &models.DMIType{
		ID:    "ELM002",
		Name:  "LIG_SYN_2",
		Regex: "P..P",
		Interfaces: []models.DomainInterface{
			{Domains: []string{"PFA"}},
			{Domains: []string{"PFB"}},
		},
	}
	if err := s.AddDMIType(dmiType); err != nil {
		t.Fatal(err)
	}
	add := func(p *models.Protein) {
		if err := s.AddProtein(p); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 20; i++ {
		m := models.NewProtein(fmt.Sprintf("M%02d", i))
		m.AddMotifMatch("ELM002", models.MotifMatch{Start: 5, End: 8, Pattern: "PAAP"})
		add(m)
		if shared {
			d := models.NewProtein(fmt.Sprintf("D%02d", i))
			d.AddDomainMatch("PFA", models.DomainMatch{Start: 1, End: 50})
			d.AddDomainMatch("PFB", models.DomainMatch{Start: 60, End: 110})
			add(d)
			continue
		}
		a := models.NewProtein(fmt.Sprintf("DA%02d", i))
		a.AddDomainMatch("PFA", models.DomainMatch{Start: 1, End: 50})
		add(a)
		b := models.NewProtein(fmt.Sprintf("DB%02d", i))
		b.AddDomainMatch("PFB", models.DomainMatch{Start: 1, End: 50})
		add(b)
	}
	return s
}

func TestBuildReplicateTestdata(t *testing.T) {
	s := testdataStore(t)
	idx := NewIndex(s, quietLogger())
	b := NewBuilder(idx, matcher.NewRegexMatcher(s), utils.NewRandSource(20210428),
		Options{PairCap: 50, InstancesPerType: 4}, metrics.NewRegistry(), quietLogger())

	rep, err := b.BuildReplicate(context.Background(), "RRSv3_1_20210428")
	if err != nil {
		t.Fatalf("BuildReplicate: %v", err)
	}
	if rep.Seed != 20210428 {
		t.Errorf("expected replicate seed 20210428, got %d", rep.Seed)
	}

	want := map[string]int{"ELME000001": 3, "ELME000002": 2}
	if got := rep.CountByType(); !reflect.DeepEqual(got, want) {
		t.Fatalf("CountByType() = %v, want %v", got, want)
	}
	for _, inst := range rep.GetInstances() {
		if inst.Match.Pair == models.NewProteinPair("P1", "P2") {
			t.Fatal("known interaction P1-P2 was used")
		}
		if inst.Replicate != "RRSv3_1_20210428" {
			t.Errorf("instance tagged with %q", inst.Replicate)
		}
	}
}

func TestBuildReplicateCapAndTarget(t *testing.T) {
	s := syntheticStore(t, 30)
	idx := NewIndex(s, quietLogger())
	reg := metrics.NewRegistry()
	b := NewBuilder(idx, matcher.NewRegexMatcher(s), utils.NewRandSource(1),
		Options{PairCap: 50, InstancesPerType: 4}, reg, quietLogger())

	rep, err := b.BuildReplicate(context.Background(), "r1")
	if err != nil {
		t.Fatalf("BuildReplicate: %v", err)
	}
	instances := rep.GetInstances()
	if len(instances) != 4 {
		t.Fatalf("expected exactly 4 instances, got %d", len(instances))
	}
	seen := make(map[models.ProteinPair]bool)
	for _, inst := range instances {
		if seen[inst.Match.Pair] {
			t.Fatalf("pair %s selected twice", inst.Match.Pair)
		}
		seen[inst.Match.Pair] = true
	}
}

func TestBuildReplicateSelectsPerInterface(t *testing.T) {
	s := twoInterfaceStore(t, false)
	reg := metrics.NewRegistry()
	b := NewBuilder(NewIndex(s, quietLogger()), matcher.NewRegexMatcher(s), utils.NewRandSource(3),
		Options{PairCap: 50, InstancesPerType: 4}, reg, quietLogger())

	rep, err := b.BuildReplicate(context.Background(), "r1")
	if err != nil {
		t.Fatalf("BuildReplicate: %v", err)
	}
	instances := rep.GetInstances()
	if len(instances) != 8 {
		t.Fatalf("expected 4 instances per interface (8), got %d", len(instances))
	}
	perInterface := make(map[string]int)
	seen := make(map[models.ProteinPair]bool)
	for _, inst := range instances {
		if seen[inst.Match.Pair] {
			t.Fatalf("pair %s selected twice", inst.Match.Pair)
		}
		seen[inst.Match.Pair] = true
		perInterface[inst.Match.Interface.String()]++
	}
	if perInterface["PFA"] != 4 || perInterface["PFB"] != 4 {
		t.Errorf("instances per interface = %v, want 4 each", perInterface)
	}
}

func TestBuildReplicateSkipsPairsDrawnForEarlierInterface(t *testing.T) {
	s := twoInterfaceStore(t, true)
	// The full product of 20 x 20 fits under the cap, so the second
	// interface draws exactly the pairs of the first one.
	b := NewBuilder(NewIndex(s, quietLogger()), matcher.NewRegexMatcher(s), utils.NewRandSource(3),
		Options{PairCap: 400, InstancesPerType: 4}, nil, quietLogger())

	rep, err := b.BuildReplicate(context.Background(), "r1")
	if err != nil {
		t.Fatalf("BuildReplicate: %v", err)
	}
	instances := rep.GetInstances()
	if len(instances) != 4 {
		t.Fatalf("expected 4 instances, got %d", len(instances))
	}
	seen := make(map[models.ProteinPair]bool)
	for _, inst := range instances {
		if seen[inst.Match.Pair] {
			t.Fatalf("pair %s selected twice", inst.Match.Pair)
		}
		seen[inst.Match.Pair] = true
	}
}

func TestBuildReplicateUnknownMotifGroup(t *testing.T) {
	s := syntheticStore(t, 3)
	idx := NewIndex(s, quietLogger())
	delete(idx.types, "ELM001")
	b := NewBuilder(idx, matcher.NewRegexMatcher(s), utils.NewRandSource(1),
		Options{PairCap: 50, InstancesPerType: 4}, nil, quietLogger())

	if _, err := b.BuildReplicate(context.Background(), "r1"); !errors.Is(err, entity.ErrUnknownDMIType) {
		t.Fatalf("expected ErrUnknownDMIType, got %v", err)
	}
}

func TestBuildAllIndependentReplicates(t *testing.T) {
	s := syntheticStore(t, 30)
	idx := NewIndex(s, quietLogger())
	before := idx.DomainGroups.Members(models.NewInterfaceKey("PF001"))
	beforeCopy := append([]string(nil), before...)

	b := NewBuilder(idx, matcher.NewRegexMatcher(s), utils.NewRandSource(99),
		Options{PairCap: 50, InstancesPerType: 4}, nil, quietLogger())
	reps, err := b.BuildAll(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(reps) != 3 {
		t.Fatalf("expected 3 replicates, got %d", len(reps))
	}
	for i, rep := range reps {
		if rep.Len() != 4 {
			t.Errorf("replicate %d has %d instances, want 4", i, rep.Len())
		}
		for _, inst := range rep.GetInstances() {
			if inst.Replicate != rep.Label {
				t.Errorf("instance of %s tagged %s", rep.Label, inst.Replicate)
			}
		}
	}

	// Shared groups are read-only
	if got := idx.DomainGroups.Members(models.NewInterfaceKey("PF001")); !reflect.DeepEqual(got, beforeCopy) {
		t.Fatal("domain group modified by replicate builds")
	}
	if idx.Known.Len() != 0 {
		t.Fatal("known PPI set modified by replicate builds")
	}
}

func TestBuildAllReproducible(t *testing.T) {
	s := syntheticStore(t, 30)
	idx := NewIndex(s, quietLogger())
	run := func() [][]models.RRSInstance {
		b := NewBuilder(idx, matcher.NewRegexMatcher(s), utils.NewRandSource(7),
			Options{PairCap: 50, InstancesPerType: 4}, nil, quietLogger())
		reps, err := b.BuildAll(context.Background(), []string{"a", "b"})
		if err != nil {
			t.Fatalf("BuildAll: %v", err)
		}
		out := make([][]models.RRSInstance, len(reps))
		for i, r := range reps {
			out[i] = r.GetInstances()
		}
		return out
	}
	if first, second := run(), run(); !reflect.DeepEqual(first, second) {
		t.Fatal("same seed produced different replicates")
	}
}

type failingMatcher struct{ err error }

func (f failingMatcher) FindMatches(context.Context, []models.ProteinPair, *models.DMIType) ([]models.PairMatches, error) {
	return nil, f.err
}

func TestBuildReplicateMatcherError(t *testing.T) {
	s := syntheticStore(t, 3)
	boom := errors.New("boom")
	b := NewBuilder(NewIndex(s, quietLogger()), failingMatcher{err: boom}, utils.NewRandSource(1),
		Options{PairCap: 50, InstancesPerType: 4}, metrics.NewRegistry(), quietLogger())

	_, err := b.BuildReplicate(context.Background(), "r1")
	if !errors.Is(err, boom) {
		t.Fatalf("expected matcher error to propagate, got %v", err)
	}
}

func TestBuildReplicateCancelled(t *testing.T) {
	s := syntheticStore(t, 3)
	b := NewBuilder(NewIndex(s, quietLogger()), matcher.NewRegexMatcher(s), utils.NewRandSource(1),
		Options{PairCap: 50, InstancesPerType: 4}, nil, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.BuildReplicate(ctx, "r1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIndexSizes(t *testing.T) {
	idx := NewIndex(testdataStore(t), quietLogger())
	sizes := idx.Sizes()
	if len(sizes) != 3 {
		t.Fatalf("expected 3 DMI types, got %d", len(sizes))
	}
	if sizes[0].DMIType != "ELME000001" || sizes[0].Motif != 2 || sizes[0].Interfaces["PF00018"] != 2 {
		t.Errorf("unexpected sizes for ELME000001: %+v", sizes[0])
	}
	if sizes[1].Interfaces["PF00001+PF00002"] != 1 {
		t.Errorf("unexpected sizes for ELME000002: %+v", sizes[1])
	}
	want := map[string]string{"PF00001": "R1", "PF00002": "R2"}
	if !reflect.DeepEqual(sizes[1].DomainNames, want) {
		t.Errorf("DomainNames = %v, want %v", sizes[1].DomainNames, want)
	}
	if len(NewIndex(syntheticStore(t, 2), quietLogger()).Sizes()[0].DomainNames) != 0 {
		t.Error("expected no domain names without a domain type catalog")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.Sampling{PairCap: 10, InstancesPerType: 2, ExcludeSelfPairs: true})
	if opts != (Options{PairCap: 10, InstancesPerType: 2, ExcludeSelfPairs: true}) {
		t.Errorf("unexpected options %+v", opts)
	}
}
