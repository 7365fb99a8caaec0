package replicate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KatjaLuckLab/DMI-predictor/internal/entity"
	"github.com/KatjaLuckLab/DMI-predictor/internal/matcher"
	"github.com/KatjaLuckLab/DMI-predictor/internal/metrics"
	"github.com/KatjaLuckLab/DMI-predictor/internal/sampling"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/config"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/models"
)

// Options controls candidate generation and selection
type Options struct {
	PairCap          int
	InstancesPerType int
	ExcludeSelfPairs bool
}

// OptionsFromConfig maps the sampling section of a configuration
func OptionsFromConfig(s config.Sampling) Options {
	return Options{
		PairCap:          s.PairCap,
		InstancesPerType: s.InstancesPerType,
		ExcludeSelfPairs: s.ExcludeSelfPairs,
	}
}

// TypeRound summarises one DMI type's round in a replicate
type TypeRound struct {
	DMIType      string
	Interfaces   int // interfaces that contributed new candidates
	Candidates   int
	MatchedPairs int
	Target       int // InstancesPerType per contributing interface
	Selected     int
}

// Builder builds replicates over a shared index. One Builder draws from a
// single random source; replicates built in sequence continue its stream.
type Builder struct {
	index   *Index
	matcher matcher.Matcher
	rng     sampling.Rand
	opts    Options
	metrics *metrics.Registry
	log     *slog.Logger
}

// NewBuilder creates a builder. A nil metrics registry disables metrics; a nil
// logger uses slog.Default.
func NewBuilder(index *Index, m matcher.Matcher, rng sampling.Rand, opts Options, reg *metrics.Registry, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{
		index:   index,
		matcher: m,
		rng:     rng,
		opts:    opts,
		metrics: reg,
		log:     log,
	}
}

// seeded is implemented by random sources that can report their seed
type seeded interface {
	Seed() int64
}

// BuildReplicate builds one replicate. DMI types are processed in motif group
// order. Each domain interface of a type is matched and selected from on its
// own, over the pairs it adds to the type's candidates; pairs drawn for an
// earlier interface of the same type are not drawn again. The context is
// checked between interfaces.
func (b *Builder) BuildReplicate(ctx context.Context, label string) (*models.Replicate, error) {
	var seed int64
	if s, ok := b.rng.(seeded); ok {
		seed = s.Seed()
	}
	rep := models.NewReplicate(label, seed)
	log := b.log.With("replicate", label)

	start := time.Now()
	b.metrics.ReplicateStarted()
	rounds, err := b.build(ctx, rep, log)
	status := models.RunStatusCompleted
	switch {
	case err == nil:
	case ctx.Err() != nil:
		status = models.RunStatusCancelled
	default:
		status = models.RunStatusFailed
	}
	b.metrics.ReplicateFinished(string(status), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("build replicate %s: %w", label, err)
	}

	short := 0
	for _, r := range rounds {
		if r.Selected < r.Target {
			short++
		}
	}
	log.Info("replicate built", "instances", rep.Len(), "dmi_types", len(rounds), "short_types", short, "duration", time.Since(start))
	return rep, nil
}

func (b *Builder) build(ctx context.Context, rep *models.Replicate, log *slog.Logger) ([]TypeRound, error) {
	gen := sampling.Generator{Cap: b.opts.PairCap, ExcludeSelfPairs: b.opts.ExcludeSelfPairs}
	rounds := make([]TypeRound, 0, b.index.MotifGroups.Len())

	for _, typeID := range b.index.MotifGroups.Keys() {
		t, ok := b.index.DMIType(typeID)
		if !ok {
			return rounds, fmt.Errorf("motif group %s: %w", typeID, entity.ErrUnknownDMIType)
		}

		motifProts := b.index.MotifGroups.Members(typeID)
		drawn := sampling.NewCandidateSet()
		round := TypeRound{DMIType: typeID}
		for _, iface := range t.Interfaces {
			if err := ctx.Err(); err != nil {
				return rounds, err
			}
			batch := sampling.NewCandidateSet()
			r := gen.Generate(b.rng, b.index.DomainGroups.Members(iface.Key()), motifProts, b.index.Known, batch)
			b.metrics.RecordGeneration(string(r.Regime), r.Drawn, r.KnownExcluded, r.SelfExcluded)

			pairs := make([]models.ProteinPair, 0, batch.Len())
			for _, p := range batch.Pairs() {
				if !drawn.Contains(p) {
					pairs = append(pairs, p)
				}
			}
			drawn.Merge(batch)
			if len(pairs) == 0 {
				continue
			}

			matchStart := time.Now()
			matched, err := b.matcher.FindMatches(ctx, pairs, t)
			if err != nil {
				return rounds, fmt.Errorf("match %s interface %s: %w", typeID, iface.Key(), err)
			}
			selected := sampling.SelectInstances(b.rng, matched, b.opts.InstancesPerType)
			rep.Append(typeID, selected)
			b.metrics.RecordSelection(len(pairs), len(matched), b.opts.InstancesPerType, len(selected), time.Since(matchStart))

			round.Interfaces++
			round.Candidates += len(pairs)
			round.MatchedPairs += len(matched)
			round.Target += b.opts.InstancesPerType
			round.Selected += len(selected)
		}
		rounds = append(rounds, round)
		log.Debug("DMI type round", "dmi_type", typeID, "name", t.Name, "interfaces", round.Interfaces,
			"candidates", round.Candidates, "matched_pairs", round.MatchedPairs, "selected", round.Selected)
	}
	return rounds, nil
}

// BuildAll builds one independent replicate per label, in order
func (b *Builder) BuildAll(ctx context.Context, labels []string) ([]*models.Replicate, error) {
	out := make([]*models.Replicate, 0, len(labels))
	for _, label := range labels {
		rep, err := b.BuildReplicate(ctx, label)
		if err != nil {
			return out, err
		}
		out = append(out, rep)
	}
	return out, nil
}
