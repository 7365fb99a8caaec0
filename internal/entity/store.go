package entity

import (
	"errors"
	"fmt"

	"github.com/KatjaLuckLab/DMI-predictor/pkg/models"
)

var (
	ErrDuplicateProtein = errors.New("duplicate protein")
	ErrDuplicateDMIType = errors.New("duplicate DMI type")
	ErrUnknownDMIType   = errors.New("unknown DMI type")
)

// Store holds proteins, the DMI type catalog, the domain type catalog and the
// known PPI set. It is filled during loading and read-only afterwards.
type Store struct {
	proteins []*models.Protein // load order
	byID     map[string]*models.Protein

	dmiTypes []*models.DMIType // catalog order
	typeByID map[string]*models.DMIType

	domainTypes map[string]models.DomainType
	knownPPIs   *models.KnownPPISet
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		byID:        make(map[string]*models.Protein),
		typeByID:    make(map[string]*models.DMIType),
		domainTypes: make(map[string]models.DomainType),
		knownPPIs:   models.NewKnownPPISet(),
	}
}

// AddProtein appends a protein, keeping load order
func (s *Store) AddProtein(p *models.Protein) error {
	if _, exists := s.byID[p.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProtein, p.ID)
	}
	s.proteins = append(s.proteins, p)
	s.byID[p.ID] = p
	return nil
}

// Protein returns a protein by ID
func (s *Store) Protein(id string) (*models.Protein, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// Proteins returns the proteins in load order
func (s *Store) Proteins() []*models.Protein {
	out := make([]*models.Protein, len(s.proteins))
	copy(out, s.proteins)
	return out
}

// ProteinCount returns the number of proteins
func (s *Store) ProteinCount() int {
	return len(s.proteins)
}

// AddDMIType appends a DMI type to the catalog
func (s *Store) AddDMIType(t *models.DMIType) error {
	if _, exists := s.typeByID[t.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateDMIType, t.ID)
	}
	s.dmiTypes = append(s.dmiTypes, t)
	s.typeByID[t.ID] = t
	return nil
}

// DMIType returns a DMI type by ID
func (s *Store) DMIType(id string) (*models.DMIType, bool) {
	t, ok := s.typeByID[id]
	return t, ok
}

// DMITypes returns the catalog in load order
func (s *Store) DMITypes() []*models.DMIType {
	out := make([]*models.DMIType, len(s.dmiTypes))
	copy(out, s.dmiTypes)
	return out
}

// AddDomainType records a domain type catalog entry
func (s *Store) AddDomainType(d models.DomainType) {
	s.domainTypes[d.ID] = d
}

// DomainType returns a domain type catalog entry
func (s *Store) DomainType(id string) (models.DomainType, bool) {
	d, ok := s.domainTypes[id]
	return d, ok
}

// DomainTypeCount returns the number of domain catalog entries
func (s *Store) DomainTypeCount() int {
	return len(s.domainTypes)
}

// SetKnownPPIs replaces the known PPI set
func (s *Store) SetKnownPPIs(set *models.KnownPPISet) {
	s.knownPPIs = set
}

// KnownPPIs returns the known PPI set
func (s *Store) KnownPPIs() *models.KnownPPISet {
	return s.knownPPIs
}

// Restrict returns a store that keeps only the proteins accepted by keep.
// Catalogs and the known PPI set are shared with the receiver; protein
// records are shared, not copied.
func (s *Store) Restrict(keep func(id string) bool) *Store {
	out := &Store{
		proteins:    make([]*models.Protein, 0, len(s.proteins)),
		byID:        make(map[string]*models.Protein, len(s.proteins)),
		dmiTypes:    s.dmiTypes,
		typeByID:    s.typeByID,
		domainTypes: s.domainTypes,
		knownPPIs:   s.knownPPIs,
	}
	for _, p := range s.proteins {
		if keep(p.ID) {
			out.proteins = append(out.proteins, p)
			out.byID[p.ID] = p
		}
	}
	return out
}
