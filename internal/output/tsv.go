package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang/snappy"

	"github.com/KatjaLuckLab/DMI-predictor/pkg/models"
)

// Header is the column layout of a replicate TSV. The first column is the
// unnamed row index.
var Header = []string{
	"", "Accession", "Elm", "Regex", "Pattern", "Probability",
	"interactorElm", "ElmMatch", "interactorDomain",
	"DomainID1", "DomainMatch1", "DomainMatchEvalue1",
	"DomainID2", "DomainMatch2", "DomainMatchEvalue2",
	"DMISource",
}

// TypeLookup resolves DMI types for the catalog columns
type TypeLookup interface {
	DMIType(id string) (*models.DMIType, bool)
}

// WriteTSV writes the instances of a replicate, one row per instance in
// collection order
func WriteTSV(w io.Writer, rep *models.Replicate, types TypeLookup) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(Header); err != nil {
		return err
	}
	for i, inst := range rep.GetInstances() {
		if err := cw.Write(row(i, inst, types)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(i int, inst models.RRSInstance, types TypeLookup) []string {
	m := inst.Match
	r := make([]string, 0, len(Header))
	r = append(r, strconv.Itoa(i), inst.DMIType)

	if t, ok := types.DMIType(inst.DMIType); ok {
		r = append(r, t.Name, t.Regex, m.Motif.Pattern, formatFloat(t.Probability))
	} else {
		r = append(r, "", "", m.Motif.Pattern, "")
	}
	r = append(r, m.MotifProtein, span(m.Motif.Start, m.Motif.End), m.DomainProtein)

	for slot := 0; slot < 2; slot++ {
		if slot < len(m.DomainHits) {
			h := m.DomainHits[slot]
			r = append(r, h.DomainID, span(h.Match.Start, h.Match.End), formatFloat(h.Match.Evalue))
		} else {
			r = append(r, "", "", "")
		}
	}
	return append(r, inst.Replicate)
}

func span(start, end int) string {
	return strconv.Itoa(start) + "-" + strconv.Itoa(end)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FileName returns the file name of a replicate's TSV
func FileName(label string, compress bool) string {
	if compress {
		return label + ".tsv.sz"
	}
	return label + ".tsv"
}

// WriteFile writes a replicate to dir, snappy-framed when compress is set.
// It returns the path written.
func WriteFile(dir string, rep *models.Replicate, types TypeLookup, compress bool) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName(rep.Label, compress))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	var w io.Writer = f
	var sw *snappy.Writer
	if compress {
		sw = snappy.NewBufferedWriter(f)
		w = sw
	}
	if err := WriteTSV(w, rep, types); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if sw != nil {
		if err := sw.Close(); err != nil {
			f.Close()
			return "", fmt.Errorf("failed to flush %s: %w", path, err)
		}
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}
