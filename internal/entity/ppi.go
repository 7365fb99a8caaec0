package entity

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/KatjaLuckLab/DMI-predictor/pkg/models"
)

// LoadKnownPPIs reads a two-column TSV of interacting proteins; extra columns
// are ignored. When isProtein is set, a first row naming no known protein in
// either column is taken as a header and skipped.
func LoadKnownPPIs(path string, isProtein func(id string) bool) (*models.KnownPPISet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open known PPI file %s: %w", path, err)
	}
	defer f.Close()

	set := models.NewKnownPPISet()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	first := true
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("known PPI file %s line %d: expected two protein columns", path, lineNo)
		}
		a, b := strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1])
		if first {
			first = false
			if isProtein != nil && !isProtein(a) && !isProtein(b) {
				continue
			}
		}
		if a == "" || b == "" {
			return nil, fmt.Errorf("known PPI file %s line %d: empty protein ID", path, lineNo)
		}
		set.Add(a, b)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read known PPI file %s: %w", path, err)
	}
	return set, nil
}
