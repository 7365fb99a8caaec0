package entity

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/KatjaLuckLab/DMI-predictor/pkg/models"
)

// ErrCatalog marks a malformed type catalog; it is fatal at load time.
var ErrCatalog = errors.New("invalid type catalog")

// SlimType is one ELM class row
type SlimType struct {
	Accession   string
	Identifier  string
	Regex       string
	Probability float64
}

// readTSV reads a tab-separated table, skipping blank lines and comment lines
// (those starting with '#', quoted or not). The first remaining row is the
// header; it is returned as a column index keyed by lowercased name.
func readTSV(r io.Reader) (map[string]int, [][]string, error) {
	var filtered strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSequenceLine)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, `"#`) {
			continue
		}
		filtered.WriteString(line)
		filtered.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}

	reader := csv.NewReader(strings.NewReader(filtered.String()))
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: missing header row", ErrCatalog)
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return header, rows[1:], nil
}

func column(row []string, header map[string]int, name string) string {
	i, ok := header[strings.ToLower(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func requireColumns(header map[string]int, names ...string) error {
	for _, name := range names {
		if _, ok := header[strings.ToLower(name)]; !ok {
			return fmt.Errorf("%w: missing column %q", ErrCatalog, name)
		}
	}
	return nil
}

// LoadSlimTypes reads an ELM classes TSV, keyed by ELM identifier
func LoadSlimTypes(path string) (map[string]SlimType, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open slim type file %s: %w", path, err)
	}
	defer f.Close()

	header, rows, err := readTSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read slim type file %s: %w", path, err)
	}
	if err := requireColumns(header, "Accession", "ELMIdentifier", "Regex", "Probability"); err != nil {
		return nil, fmt.Errorf("slim type file %s: %w", path, err)
	}

	out := make(map[string]SlimType, len(rows))
	for i, row := range rows {
		st := SlimType{
			Accession:  column(row, header, "Accession"),
			Identifier: column(row, header, "ELMIdentifier"),
			Regex:      column(row, header, "Regex"),
		}
		if st.Accession == "" || st.Identifier == "" {
			return nil, fmt.Errorf("slim type file %s row %d: %w: empty accession or identifier", path, i+2, ErrCatalog)
		}
		prob := column(row, header, "Probability")
		if prob != "" {
			st.Probability, err = strconv.ParseFloat(prob, 64)
			if err != nil {
				return nil, fmt.Errorf("slim type file %s row %d: %w: probability %q", path, i+2, ErrCatalog, prob)
			}
		}
		out[st.Identifier] = st
	}
	return out, nil
}

// LoadDMITypes reads an ELM interaction domains TSV and registers one DMI
// type per ELM identifier that has at least one interaction domain.
//
// Rows of the same ELM identifier that share a non-empty Interface value form
// one interface of at most two domains; other rows are single-domain
// alternatives.
func LoadDMITypes(s *Store, path string, slims map[string]SlimType) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open DMI type file %s: %w", path, err)
	}
	defer f.Close()

	header, rows, err := readTSV(f)
	if err != nil {
		return fmt.Errorf("failed to read DMI type file %s: %w", path, err)
	}
	if err := requireColumns(header, "ELM identifier", "Interaction Domain Id"); err != nil {
		return fmt.Errorf("DMI type file %s: %w", path, err)
	}

	type grouped struct {
		dmiType  *models.DMIType
		byLabel  map[string]int // interface label -> index in Interfaces
		seenDoms map[models.InterfaceKey]bool
	}
	order := make([]string, 0)
	types := make(map[string]*grouped)

	for i, row := range rows {
		name := column(row, header, "ELM identifier")
		domain := column(row, header, "Interaction Domain Id")
		label := column(row, header, "Interface")
		if name == "" || domain == "" {
			return fmt.Errorf("DMI type file %s row %d: %w: empty ELM identifier or domain", path, i+2, ErrCatalog)
		}
		slim, ok := slims[name]
		if !ok {
			return fmt.Errorf("DMI type file %s row %d: %w: ELM identifier %s not in slim types", path, i+2, ErrCatalog, name)
		}

		g, ok := types[name]
		if !ok {
			g = &grouped{
				dmiType: &models.DMIType{
					ID:          slim.Accession,
					Name:        slim.Identifier,
					Regex:       slim.Regex,
					Probability: slim.Probability,
				},
				byLabel:  make(map[string]int),
				seenDoms: make(map[models.InterfaceKey]bool),
			}
			types[name] = g
			order = append(order, name)
		}

		if label == "" {
			key := models.NewInterfaceKey(domain)
			if g.seenDoms[key] {
				continue
			}
			g.seenDoms[key] = true
			g.dmiType.Interfaces = append(g.dmiType.Interfaces, models.DomainInterface{Domains: []string{domain}})
			continue
		}

		idx, ok := g.byLabel[label]
		if !ok {
			g.byLabel[label] = len(g.dmiType.Interfaces)
			g.dmiType.Interfaces = append(g.dmiType.Interfaces, models.DomainInterface{Domains: []string{domain}})
			continue
		}
		iface := &g.dmiType.Interfaces[idx]
		if len(iface.Domains) >= 2 {
			return fmt.Errorf("DMI type file %s row %d: %w: interface %s of %s has more than two domains", path, i+2, ErrCatalog, label, name)
		}
		if iface.Domains[0] == domain {
			return fmt.Errorf("DMI type file %s row %d: %w: interface %s of %s repeats domain %s", path, i+2, ErrCatalog, label, name, domain)
		}
		iface.Domains = append(iface.Domains, domain)
	}

	for _, name := range order {
		g := types[name]
		// Drop duplicate multi-domain interfaces while keeping first occurrence
		kept := g.dmiType.Interfaces[:0]
		seen := make(map[models.InterfaceKey]bool)
		for _, iface := range g.dmiType.Interfaces {
			key := iface.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			kept = append(kept, iface)
		}
		g.dmiType.Interfaces = kept
		if err := s.AddDMIType(g.dmiType); err != nil {
			return fmt.Errorf("DMI type file %s: %w", path, err)
		}
	}
	return nil
}

// LoadDomainTypes reads a domain type catalog: domain ID, name, frequency.
// A first line whose frequency column is not numeric is treated as a header.
func LoadDomainTypes(s *Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open domain type file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	loaded := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		d := models.DomainType{ID: strings.TrimSpace(fields[0])}
		if len(fields) > 1 {
			d.Name = strings.TrimSpace(fields[1])
		}
		if len(fields) > 2 {
			freq, err := strconv.Atoi(strings.TrimSpace(fields[2]))
			if err != nil {
				if loaded == 0 {
					continue
				}
				return loaded, fmt.Errorf("domain type file %s line %d: invalid frequency %q", path, lineNo, fields[2])
			}
			d.Frequency = freq
		}
		s.AddDomainType(d)
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return loaded, fmt.Errorf("failed to read domain type file %s: %w", path, err)
	}
	return loaded, nil
}
