package matcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/KatjaLuckLab/DMI-predictor/pkg/models"
)

// ErrUnknownProtein is returned when a candidate pair names a protein the
// matcher has no record of
var ErrUnknownProtein = errors.New("unknown protein")

// Matcher finds the DMI matches of one DMI type on candidate pairs.
// Only pairs with at least one match are returned, in input order.
type Matcher interface {
	FindMatches(ctx context.Context, pairs []models.ProteinPair, dmiType *models.DMIType) ([]models.PairMatches, error)
}

// ProteinLookup resolves protein records by ID. *entity.Store implements it.
type ProteinLookup interface {
	Protein(id string) (*models.Protein, bool)
}

// RegexMatcher matches pairs using the motif hits found by scanning each
// protein with the DMI type's regex and the domain hits loaded per protein.
type RegexMatcher struct {
	proteins ProteinLookup
}

// NewRegexMatcher creates a matcher over the given proteins
func NewRegexMatcher(proteins ProteinLookup) *RegexMatcher {
	return &RegexMatcher{proteins: proteins}
}

// FindMatches checks both orientations of every pair (one for self-pairs):
// each motif hit on the motif protein combined with each interface of the
// type fully carried by the domain protein is one match.
func (m *RegexMatcher) FindMatches(ctx context.Context, pairs []models.ProteinPair, dmiType *models.DMIType) ([]models.PairMatches, error) {
	if dmiType == nil {
		return nil, fmt.Errorf("find matches: nil DMI type")
	}

	var out []models.PairMatches
	for i, pair := range pairs {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		a, ok := m.proteins.Protein(pair.A)
		if !ok {
			return nil, fmt.Errorf("find matches for %s: %w: %s", dmiType.ID, ErrUnknownProtein, pair.A)
		}
		b, ok := m.proteins.Protein(pair.B)
		if !ok {
			return nil, fmt.Errorf("find matches for %s: %w: %s", dmiType.ID, ErrUnknownProtein, pair.B)
		}

		matches := matchOrientation(pair, a, b, dmiType)
		if !pair.IsSelf() {
			matches = append(matches, matchOrientation(pair, b, a, dmiType)...)
		}
		if len(matches) > 0 {
			out = append(out, models.PairMatches{Pair: pair, Matches: matches})
		}
	}
	return out, nil
}

func matchOrientation(pair models.ProteinPair, motifProt, domainProt *models.Protein, t *models.DMIType) []models.DMIMatch {
	hits := motifProt.Motifs[t.ID]
	if len(hits) == 0 {
		return nil
	}

	var out []models.DMIMatch
	for _, iface := range t.Interfaces {
		key := iface.Key()
		if !domainProt.Carries(key) {
			continue
		}
		domainHits := make([]models.DomainHit, 0, key.Size())
		for _, d := range key.Domains() {
			domainHits = append(domainHits, models.DomainHit{DomainID: d, Match: bestHit(domainProt.Domains[d])})
		}
		for _, hit := range hits {
			out = append(out, models.DMIMatch{
				DMIType:       t.ID,
				Pair:          pair,
				MotifProtein:  motifProt.ID,
				DomainProtein: domainProt.ID,
				Motif:         hit,
				Interface:     key,
				DomainHits:    domainHits,
			})
		}
	}
	return out
}

// bestHit returns the hit with the lowest e-value, the first one on ties
func bestHit(hits []models.DomainMatch) models.DomainMatch {
	best := hits[0]
	for _, h := range hits[1:] {
		if h.Evalue < best.Evalue {
			best = h
		}
	}
	return best
}
