// Package grouping builds the protein membership indexes that candidate pair
// generation draws from.
//
// Two indexes are built from the loaded proteins and the DMI type catalog:
//
//   - DomainGroups: for every domain interface of every DMI type, the proteins
//     carrying all of the interface's domains
//   - MotifGroups: for every DMI type, the proteins with at least one motif
//     hit for the type
//
// Both preserve insertion order: keys in registration order and members in
// protein load order. Neither is re-sorted, so the same input always yields
// the same index and the same downstream random draws.
//
// Usage:
//
//	domains := grouping.BuildDomainGroups(store.Proteins(), store.DMITypes())
//	motifs := grouping.BuildMotifGroups(store.Proteins(), store.DMITypes(), log)
//	for _, typeID := range motifs.Keys() {
//	    members := motifs.Members(typeID)
//	    // ...
//	}
package grouping
