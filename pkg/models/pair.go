package models

// ProteinPair is an unordered protein pair stored in canonical order (A <= B).
// Construct it with NewProteinPair so that (x, y) and (y, x) compare equal.
type ProteinPair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// NewProteinPair returns the canonical pair of two protein IDs
func NewProteinPair(x, y string) ProteinPair {
	if y < x {
		x, y = y, x
	}
	return ProteinPair{A: x, B: y}
}

// IsSelf reports whether both members are the same protein
func (p ProteinPair) IsSelf() bool {
	return p.A == p.B
}

// Contains reports whether the protein is a member of the pair
func (p ProteinPair) Contains(id string) bool {
	return p.A == id || p.B == id
}

func (p ProteinPair) String() string {
	return p.A + "_" + p.B
}

// KnownPPISet holds documented protein-protein interactions.
// It is filled once during loading and only queried afterwards.
type KnownPPISet struct {
	pairs map[ProteinPair]struct{}
}

// NewKnownPPISet creates a set from the given pairs (canonicalised on insert)
func NewKnownPPISet(pairs ...ProteinPair) *KnownPPISet {
	s := &KnownPPISet{pairs: make(map[ProteinPair]struct{}, len(pairs))}
	for _, p := range pairs {
		s.Add(p.A, p.B)
	}
	return s
}

// Add records an interaction between two proteins
func (s *KnownPPISet) Add(x, y string) {
	s.pairs[NewProteinPair(x, y)] = struct{}{}
}

// Contains reports whether the pair is a known interaction.
// A nil set contains nothing.
func (s *KnownPPISet) Contains(p ProteinPair) bool {
	if s == nil {
		return false
	}
	_, ok := s.pairs[NewProteinPair(p.A, p.B)]
	return ok
}

// Len returns the number of known interactions
func (s *KnownPPISet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.pairs)
}
