package models

import (
	"sort"
	"strings"
)

// DomainMatch is one hit of a domain on a protein sequence
type DomainMatch struct {
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Evalue float64 `json:"evalue"`
}

// MotifMatch is one hit of a SLiM pattern on a protein sequence (1-based, inclusive)
type MotifMatch struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Pattern string `json:"pattern"`
}

// Protein holds a sequence and its domain and motif annotations.
// It is populated during loading and treated as immutable afterwards.
type Protein struct {
	ID       string                   `json:"id"`
	Sequence string                   `json:"sequence"`
	Domains  map[string][]DomainMatch `json:"domains,omitempty"` // domain ID -> hits
	Motifs   map[string][]MotifMatch  `json:"motifs,omitempty"`  // DMI type ID -> hits
}

// NewProtein creates an empty protein record
func NewProtein(id string) *Protein {
	return &Protein{
		ID:      id,
		Domains: make(map[string][]DomainMatch),
		Motifs:  make(map[string][]MotifMatch),
	}
}

// AddDomainMatch records a domain hit
func (p *Protein) AddDomainMatch(domainID string, m DomainMatch) {
	p.Domains[domainID] = append(p.Domains[domainID], m)
}

// AddMotifMatch records a motif hit for a DMI type
func (p *Protein) AddMotifMatch(dmiTypeID string, m MotifMatch) {
	p.Motifs[dmiTypeID] = append(p.Motifs[dmiTypeID], m)
}

// HasDomain reports whether the protein carries the domain
func (p *Protein) HasDomain(domainID string) bool {
	return len(p.Domains[domainID]) > 0
}

// HasMotif reports whether the protein has at least one hit for the DMI type
func (p *Protein) HasMotif(dmiTypeID string) bool {
	return len(p.Motifs[dmiTypeID]) > 0
}

// Carries reports whether the protein carries every domain of the interface key
func (p *Protein) Carries(key InterfaceKey) bool {
	for _, d := range key.Domains() {
		if !p.HasDomain(d) {
			return false
		}
	}
	return true
}

// DomainIDs returns the protein's domain IDs in sorted order
func (p *Protein) DomainIDs() []string {
	ids := make([]string, 0, len(p.Domains))
	for id := range p.Domains {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// InterfaceKey is the canonical key of a domain interface: one or two
// domain IDs in sorted order. Second is empty for single-domain interfaces.
type InterfaceKey struct {
	First  string
	Second string
}

// NewInterfaceKey builds a canonical key from one or two domain IDs
func NewInterfaceKey(domains ...string) InterfaceKey {
	switch len(domains) {
	case 0:
		return InterfaceKey{}
	case 1:
		return InterfaceKey{First: domains[0]}
	}
	a, b := domains[0], domains[1]
	if b < a {
		a, b = b, a
	}
	return InterfaceKey{First: a, Second: b}
}

// Domains returns the domain IDs of the key
func (k InterfaceKey) Domains() []string {
	if k.Second == "" {
		return []string{k.First}
	}
	return []string{k.First, k.Second}
}

// Size returns the number of domains in the key
func (k InterfaceKey) Size() int {
	if k.Second == "" {
		return 1
	}
	return 2
}

func (k InterfaceKey) String() string {
	return strings.Join(k.Domains(), "+")
}

// DomainInterface is the set of one or two domains that bind a motif together
type DomainInterface struct {
	Domains []string `json:"domains"`
}

// Key returns the canonical key of the interface
func (d DomainInterface) Key() InterfaceKey {
	return NewInterfaceKey(d.Domains...)
}

// DMIType is a motif class together with the domain interfaces that bind it
type DMIType struct {
	ID          string            `json:"id"`   // ELM accession, e.g. ELME000012
	Name        string            `json:"name"` // ELM identifier, e.g. LIG_SH3_1
	Regex       string            `json:"regex"`
	Probability float64           `json:"probability"`
	Interfaces  []DomainInterface `json:"interfaces"`
}

// DomainType is an entry of a domain type catalog (SMART or Pfam)
type DomainType struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Frequency int    `json:"frequency"`
}
