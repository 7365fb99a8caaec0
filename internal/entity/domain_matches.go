package entity

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/mmap"

	"github.com/KatjaLuckLab/DMI-predictor/pkg/models"
)

// interProMatches mirrors the subset of an InterPro API export we read
type interProMatches struct {
	Results []struct {
		Metadata struct {
			Accession string `json:"accession"`
		} `json:"metadata"`
		Proteins []struct {
			Accession string `json:"accession"`
			Locations []struct {
				Fragments []struct {
					Start int `json:"start"`
					End   int `json:"end"`
				} `json:"fragments"`
				Score *float64 `json:"score"`
			} `json:"entry_protein_locations"`
		} `json:"proteins"`
	} `json:"results"`
}

// LoadDomainMatches reads an InterPro JSON export through a memory map and
// attaches the domain hits to proteins present in the store. Hits on unknown
// proteins are ignored. It returns the number of hits attached.
func LoadDomainMatches(s *Store, path string) (int, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to map domain match file %s: %w", path, err)
	}
	defer r.Close()

	var doc interProMatches
	dec := json.NewDecoder(io.NewSectionReader(r, 0, int64(r.Len())))
	if err := dec.Decode(&doc); err != nil {
		return 0, fmt.Errorf("failed to decode domain match file %s: %w", path, err)
	}

	attached := 0
	for _, res := range doc.Results {
		domainID := res.Metadata.Accession
		if domainID == "" {
			continue
		}
		for _, prot := range res.Proteins {
			p, ok := s.Protein(strings.ToUpper(prot.Accession))
			if !ok {
				continue
			}
			for _, loc := range prot.Locations {
				if len(loc.Fragments) == 0 {
					continue
				}
				m := models.DomainMatch{
					Start: loc.Fragments[0].Start,
					End:   loc.Fragments[len(loc.Fragments)-1].End,
				}
				if loc.Score != nil {
					m.Evalue = *loc.Score
				}
				p.AddDomainMatch(domainID, m)
				attached++
			}
		}
	}
	return attached, nil
}
