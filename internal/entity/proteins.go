package entity

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KatjaLuckLab/DMI-predictor/pkg/models"
)

const maxSequenceLine = 1 << 20

// LoadProteins reads every FASTA file in dir into the store. Files are read
// in lexical order so load order is deterministic.
func LoadProteins(s *Store, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read protein directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	loaded := 0
	for _, name := range names {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			return loaded, fmt.Errorf("failed to open protein file %s: %w", path, err)
		}
		proteins, err := ParseFASTA(f)
		f.Close()
		if err != nil {
			return loaded, fmt.Errorf("failed to parse protein file %s: %w", path, err)
		}
		for _, p := range proteins {
			if err := s.AddProtein(p); err != nil {
				return loaded, fmt.Errorf("protein file %s: %w", path, err)
			}
			loaded++
		}
	}
	return loaded, nil
}

// ParseFASTA parses FASTA records. The identifier is the header up to the
// first whitespace; sequence lines are concatenated.
func ParseFASTA(r io.Reader) ([]*models.Protein, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSequenceLine)

	var (
		out     []*models.Protein
		current *models.Protein
		seq     strings.Builder
		lineNo  int
	)
	flush := func() {
		if current != nil {
			current.Sequence = seq.String()
			out = append(out, current)
		}
		seq.Reset()
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line[0] == '>' {
			flush()
			header := strings.Fields(line[1:])
			if len(header) == 0 {
				return nil, fmt.Errorf("line %d: empty FASTA header", lineNo)
			}
			current = models.NewProtein(header[0])
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("line %d: sequence data before first header", lineNo)
		}
		seq.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return out, nil
}

// NetworkProteinIDs returns the IDs of proteins that have network
// information: the prefix before the first underscore of each file name in dir.
func NetworkProteinIDs(dir string) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read network directory %s: %w", dir, err)
	}
	ids := make(map[string]bool, len(entries))
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		id, _, _ := strings.Cut(name, "_")
		if id != "" {
			ids[id] = true
		}
	}
	return ids, nil
}
