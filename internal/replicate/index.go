package replicate

import (
	"log/slog"

	"github.com/KatjaLuckLab/DMI-predictor/internal/entity"
	"github.com/KatjaLuckLab/DMI-predictor/internal/grouping"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/models"
)

// Index is the read-only input shared by every replicate build: the group
// indexes, the DMI type catalog and the known interactions.
type Index struct {
	DomainGroups *grouping.DomainGroups
	MotifGroups  *grouping.MotifGroups
	Known        *models.KnownPPISet

	types       map[string]*models.DMIType
	domainNames map[string]string
}

// NewIndex builds the group indexes over the store
func NewIndex(s *entity.Store, log *slog.Logger) *Index {
	proteins := s.Proteins()
	types := s.DMITypes()

	idx := &Index{
		DomainGroups: grouping.BuildDomainGroups(proteins, types),
		MotifGroups:  grouping.BuildMotifGroups(proteins, types, log),
		Known:        s.KnownPPIs(),
		types:        make(map[string]*models.DMIType, len(types)),
		domainNames:  make(map[string]string),
	}
	for _, t := range types {
		idx.types[t.ID] = t
		for _, iface := range t.Interfaces {
			for _, d := range iface.Domains {
				if dt, ok := s.DomainType(d); ok && dt.Name != "" {
					idx.domainNames[d] = dt.Name
				}
			}
		}
	}
	return idx
}

// DMIType returns a catalog entry by ID
func (idx *Index) DMIType(id string) (*models.DMIType, bool) {
	t, ok := idx.types[id]
	return t, ok
}

// GroupSizes reports, per DMI type in processing order, the motif group size
// and the domain group size of each interface. DomainNames holds the catalog
// names of the interface domains found in the domain type catalogs.
type GroupSizes struct {
	DMIType     string
	Name        string
	Motif       int
	Interfaces  map[string]int // interface key -> domain group size
	DomainNames map[string]string
}

// Sizes returns the group sizes of every DMI type
func (idx *Index) Sizes() []GroupSizes {
	out := make([]GroupSizes, 0, idx.MotifGroups.Len())
	for _, id := range idx.MotifGroups.Keys() {
		t := idx.types[id]
		gs := GroupSizes{
			DMIType:     id,
			Name:        t.Name,
			Motif:       len(idx.MotifGroups.Members(id)),
			Interfaces:  make(map[string]int, len(t.Interfaces)),
			DomainNames: make(map[string]string),
		}
		for _, iface := range t.Interfaces {
			key := iface.Key()
			gs.Interfaces[key.String()] = len(idx.DomainGroups.Members(key))
			for _, d := range key.Domains() {
				if name, ok := idx.domainNames[d]; ok {
					gs.DomainNames[d] = name
				}
			}
		}
		out = append(out, gs)
	}
	return out
}
