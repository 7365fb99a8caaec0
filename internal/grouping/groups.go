package grouping

import (
	"log/slog"

	"github.com/KatjaLuckLab/DMI-predictor/pkg/models"
)

// DomainGroups maps interface keys to the proteins carrying every domain of
// the key. Keys keep registration order.
type DomainGroups struct {
	keys    []models.InterfaceKey
	members map[models.InterfaceKey][]string
}

func newDomainGroups() *DomainGroups {
	return &DomainGroups{members: make(map[models.InterfaceKey][]string)}
}

// register adds an empty group for key if it is not registered yet
func (g *DomainGroups) register(key models.InterfaceKey) bool {
	if _, ok := g.members[key]; ok {
		return false
	}
	g.keys = append(g.keys, key)
	g.members[key] = []string{}
	return true
}

// Keys returns the registered interface keys in registration order
func (g *DomainGroups) Keys() []models.InterfaceKey {
	out := make([]models.InterfaceKey, len(g.keys))
	copy(out, g.keys)
	return out
}

// Members returns the proteins of a group. Unregistered keys have no members.
func (g *DomainGroups) Members(key models.InterfaceKey) []string {
	return g.members[key]
}

// Has reports whether the key is registered
func (g *DomainGroups) Has(key models.InterfaceKey) bool {
	_, ok := g.members[key]
	return ok
}

// Len returns the number of registered keys
func (g *DomainGroups) Len() int {
	return len(g.keys)
}

// MotifGroups maps DMI type IDs to the proteins with a motif hit for the type.
// Keys keep catalog order.
type MotifGroups struct {
	keys    []string
	members map[string][]string
}

func newMotifGroups() *MotifGroups {
	return &MotifGroups{members: make(map[string][]string)}
}

// Keys returns the DMI type IDs in catalog order
func (g *MotifGroups) Keys() []string {
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

// Members returns the proteins of a DMI type's group
func (g *MotifGroups) Members(dmiTypeID string) []string {
	return g.members[dmiTypeID]
}

// Len returns the number of registered DMI types
func (g *MotifGroups) Len() int {
	return len(g.keys)
}

// BuildDomainGroups registers one key per distinct interface over all DMI
// types, then appends each protein to every group whose domains it carries.
// Two-domain interfaces only admit proteins that carry both domains.
func BuildDomainGroups(proteins []*models.Protein, dmiTypes []*models.DMIType) *DomainGroups {
	g := newDomainGroups()
	for _, t := range dmiTypes {
		for _, iface := range t.Interfaces {
			g.register(iface.Key())
		}
	}

	for _, p := range proteins {
		for _, key := range g.keys {
			if p.Carries(key) {
				g.members[key] = append(g.members[key], p.ID)
			}
		}
	}
	return g
}

// BuildMotifGroups registers one key per DMI type and appends each protein to
// every type it has a motif hit for. Hits for types outside the catalog are
// ignored.
func BuildMotifGroups(proteins []*models.Protein, dmiTypes []*models.DMIType, log *slog.Logger) *MotifGroups {
	g := newMotifGroups()
	for _, t := range dmiTypes {
		if _, ok := g.members[t.ID]; ok {
			continue
		}
		g.keys = append(g.keys, t.ID)
		g.members[t.ID] = []string{}
	}

	for _, p := range proteins {
		for typeID, hits := range p.Motifs {
			if len(hits) == 0 {
				continue
			}
			if _, ok := g.members[typeID]; !ok && log != nil {
				log.Debug("ignoring motif hits for unknown DMI type", "protein", p.ID, "dmi_type", typeID)
			}
		}
		for _, typeID := range g.keys {
			if p.HasMotif(typeID) {
				g.members[typeID] = append(g.members[typeID], p.ID)
			}
		}
	}
	return g
}
