package sampling

import (
	"github.com/KatjaLuckLab/DMI-predictor/pkg/models"
)

// Rand is the random source used for sampling. *utils.RandSource implements it.
type Rand interface {
	Intn(n int) int
}

// Regime describes how a round's candidate pairs were produced
type Regime string

const (
	// RegimeEmpty: one side of the product had no proteins
	RegimeEmpty Regime = "empty"
	// RegimeExhaustive: the full product fit under the cap
	RegimeExhaustive Regime = "exhaustive"
	// RegimeCapped: cap positions were sampled from the product
	RegimeCapped Regime = "capped"
)

// CandidateSet is an insertion-ordered set of canonical protein pairs
type CandidateSet struct {
	pairs []models.ProteinPair
	seen  map[models.ProteinPair]struct{}
}

// NewCandidateSet creates an empty set
func NewCandidateSet() *CandidateSet {
	return &CandidateSet{seen: make(map[models.ProteinPair]struct{})}
}

// Add inserts the canonical form of p. It reports whether p was new.
func (c *CandidateSet) Add(p models.ProteinPair) bool {
	p = models.NewProteinPair(p.A, p.B)
	if _, ok := c.seen[p]; ok {
		return false
	}
	c.seen[p] = struct{}{}
	c.pairs = append(c.pairs, p)
	return true
}

// Contains reports whether the pair is in the set
func (c *CandidateSet) Contains(p models.ProteinPair) bool {
	_, ok := c.seen[models.NewProteinPair(p.A, p.B)]
	return ok
}

// Merge adds every pair of other that is not yet present, keeping order
func (c *CandidateSet) Merge(other *CandidateSet) {
	if other == nil {
		return
	}
	for _, p := range other.pairs {
		c.Add(p)
	}
}

// Pairs returns the pairs in insertion order
func (c *CandidateSet) Pairs() []models.ProteinPair {
	out := make([]models.ProteinPair, len(c.pairs))
	copy(out, c.pairs)
	return out
}

// Len returns the number of pairs
func (c *CandidateSet) Len() int {
	return len(c.pairs)
}

// Round reports what one generator invocation did
type Round struct {
	Regime        Regime
	Drawn         int // product positions drawn
	KnownExcluded int
	SelfExcluded  int
	Added         int // new pairs after de-duplication
}

// Generator draws candidate pairs from a domain group and a motif group.
// A Cap of zero or less disables capping.
type Generator struct {
	Cap              int
	ExcludeSelfPairs bool
}

// Generate adds candidates for one domain interface to set. When the product
// of the two groups is at most Cap it is used in full, in domain-major order;
// otherwise exactly Cap distinct product positions are drawn uniformly.
// Known interactions are dropped after canonicalisation.
func (g Generator) Generate(rng Rand, domainProts, motifProts []string, known *models.KnownPPISet, set *CandidateSet) Round {
	var r Round
	nd, nm := len(domainProts), len(motifProts)
	if nd == 0 || nm == 0 {
		r.Regime = RegimeEmpty
		return r
	}

	total := nd * nm
	var positions []int
	if g.Cap <= 0 || total <= g.Cap {
		r.Regime = RegimeExhaustive
		positions = make([]int, total)
		for i := range positions {
			positions[i] = i
		}
	} else {
		r.Regime = RegimeCapped
		positions = samplePositions(rng, total, g.Cap)
	}
	r.Drawn = len(positions)

	for _, pos := range positions {
		pair := models.NewProteinPair(domainProts[pos/nm], motifProts[pos%nm])
		if known.Contains(pair) {
			r.KnownExcluded++
			continue
		}
		if g.ExcludeSelfPairs && pair.IsSelf() {
			r.SelfExcluded++
			continue
		}
		if set.Add(pair) {
			r.Added++
		}
	}
	return r
}

// GenerateCandidates returns the candidate set for one domain interface with
// self-pairs kept
func GenerateCandidates(rng Rand, domainProts, motifProts []string, pairCap int, known *models.KnownPPISet) *CandidateSet {
	set := NewCandidateSet()
	Generator{Cap: pairCap}.Generate(rng, domainProts, motifProts, known, set)
	return set
}

// samplePositions draws k distinct integers from [0, n) uniformly using
// Floyd's algorithm, without materialising the range. Requires 0 < k <= n.
func samplePositions(rng Rand, n, k int) []int {
	chosen := make(map[int]struct{}, k)
	out := make([]int, 0, k)
	for j := n - k; j < n; j++ {
		t := rng.Intn(j + 1)
		if _, taken := chosen[t]; taken {
			t = j
		}
		chosen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
