package models

import "sync"

// RunStatus represents the status of a replicate build run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are expected
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// DomainHit is the domain side of a DMI match: one domain of the interface
// and the hit on the domain-carrying protein.
type DomainHit struct {
	DomainID string      `json:"domain_id"`
	Match    DomainMatch `json:"match"`
}

// DMIMatch is one concrete domain-motif match on a candidate pair
type DMIMatch struct {
	DMIType       string       `json:"dmi_type"`
	Pair          ProteinPair  `json:"pair"`
	MotifProtein  string       `json:"motif_protein"`
	DomainProtein string       `json:"domain_protein"`
	Motif         MotifMatch   `json:"motif"`
	Interface     InterfaceKey `json:"-"`
	DomainHits    []DomainHit  `json:"domain_hits"`
}

// PairMatches groups all matches of one DMI type found on one pair
type PairMatches struct {
	Pair    ProteinPair
	Matches []DMIMatch
}

// RRSInstance is a selected DMI match tagged with its DMI type and replicate
type RRSInstance struct {
	Replicate string   `json:"replicate"`
	DMIType   string   `json:"dmi_type"`
	Match     DMIMatch `json:"match"`
}

// Replicate is one independently sampled RRS instance collection.
// Instances are only ever appended.
type Replicate struct {
	Label     string        `json:"label"`
	Seed      int64         `json:"seed"`
	Instances []RRSInstance `json:"instances"`
	mu        sync.RWMutex
}

// NewReplicate creates an empty replicate collection
func NewReplicate(label string, seed int64) *Replicate {
	return &Replicate{
		Label:     label,
		Seed:      seed,
		Instances: make([]RRSInstance, 0),
	}
}

// Append tags the matches with the DMI type and replicate label and adds them
// in order (thread-safe)
func (r *Replicate) Append(dmiTypeID string, matches []DMIMatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range matches {
		r.Instances = append(r.Instances, RRSInstance{
			Replicate: r.Label,
			DMIType:   dmiTypeID,
			Match:     m,
		})
	}
}

// GetInstances returns a copy of the instances (thread-safe)
func (r *Replicate) GetInstances() []RRSInstance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RRSInstance, len(r.Instances))
	copy(out, r.Instances)
	return out
}

// Len returns the number of instances (thread-safe)
func (r *Replicate) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Instances)
}

// CountByType returns the number of instances per DMI type (thread-safe)
func (r *Replicate) CountByType() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int)
	for _, inst := range r.Instances {
		counts[inst.DMIType]++
	}
	return counts
}
