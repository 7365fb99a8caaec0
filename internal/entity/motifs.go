package entity

import (
	"log/slog"
	"regexp"

	"github.com/KatjaLuckLab/DMI-predictor/pkg/models"
)

// MotifScanner finds SLiM hits of a DMI type on a protein sequence
type MotifScanner struct {
	re       *regexp.Regexp
	anchored bool
}

// NewMotifScanner compiles a SLiM regex. Patterns RE2 cannot express
// (look-around, back-references) return an error.
func NewMotifScanner(pattern string) (*MotifScanner, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &MotifScanner{re: re, anchored: hasLineAnchor(pattern)}, nil
}

// hasLineAnchor reports whether the pattern uses '^' outside a character
// class. Such patterns only match at sequence start and are not rescanned.
func hasLineAnchor(pattern string) bool {
	inClass := false
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '[':
			if !inClass {
				inClass = true
				// "[^" and "[]" open the class literally
				if i+1 < len(pattern) && pattern[i+1] == '^' {
					i++
				}
				if i+1 < len(pattern) && pattern[i+1] == ']' {
					i++
				}
			}
		case ']':
			inClass = false
		case '^':
			if !inClass {
				return true
			}
		}
	}
	return false
}

// Scan returns all hits on seq, 1-based and inclusive. Unanchored patterns
// are scanned with overlap: after each hit the search resumes one residue
// after the hit's start.
func (m *MotifScanner) Scan(seq string) []models.MotifMatch {
	var out []models.MotifMatch
	if m.anchored {
		for _, loc := range m.re.FindAllStringIndex(seq, -1) {
			out = append(out, models.MotifMatch{Start: loc[0] + 1, End: loc[1], Pattern: seq[loc[0]:loc[1]]})
		}
		return out
	}
	for pos := 0; pos <= len(seq); {
		loc := m.re.FindStringIndex(seq[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if end > start {
			out = append(out, models.MotifMatch{Start: start + 1, End: end, Pattern: seq[start:end]})
		}
		pos = start + 1
	}
	return out
}

// ScanMotifs scans every protein in the store with the regex of every DMI
// type and records the hits. It returns the IDs of DMI types whose regex
// could not be compiled; those types get no motif hits.
func ScanMotifs(s *Store, log *slog.Logger) []string {
	var skipped []string
	for _, t := range s.DMITypes() {
		scanner, err := NewMotifScanner(t.Regex)
		if err != nil {
			log.Warn("skipping SLiM regex", "dmi_type", t.ID, "name", t.Name, "regex", t.Regex, "error", err)
			skipped = append(skipped, t.ID)
			continue
		}
		hits := 0
		for _, p := range s.proteins {
			for _, m := range scanner.Scan(p.Sequence) {
				p.AddMotifMatch(t.ID, m)
				hits++
			}
		}
		log.Debug("scanned SLiM regex", "dmi_type", t.ID, "hits", hits)
	}
	return skipped
}
