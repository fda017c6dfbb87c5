// Package input reads glycosylation site tables into observations.
package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/StinkyLord/glycoproteoform-builder/internal/model"
)

// Canonical column names expected by the generator.
const (
	ProteinColumn = "protein"
	SiteColumn    = "glycosylation_site"
	GlycanColumn  = "glycan"
)

// Columns names the header columns holding each field of an observation.
type Columns struct {
	Protein string
	Site    string
	Glycan  string
}

// DefaultColumns returns the canonical column names.
func DefaultColumns() Columns {
	return Columns{Protein: ProteinColumn, Site: SiteColumn, Glycan: GlycanColumn}
}

// Delimiter picks the field separator from the file extension:
// tab for .tsv and .tab, comma otherwise.
func Delimiter(path string) rune {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return '\t'
	}
	return ','
}

// ReadFile opens path and reads its observations.
func ReadFile(path string, cols Columns) ([]model.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open input %q: %w", path, err)
	}
	defer f.Close()

	obs, err := Read(f, cols, Delimiter(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return obs, nil
}

// Read parses a delimited table with a header row. A configured column that
// is absent from the header is a usage error. Rows shorter than the header
// yield empty fields, which the catalog builder reports per protein. Values
// are trimmed of surrounding whitespace; blank lines are skipped.
func Read(r io.Reader, cols Columns, delim rune) ([]model.Observation, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, model.Usagef("input has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	idx, err := columnIndex(header, cols)
	if err != nil {
		return nil, err
	}

	var out []model.Observation
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", row, err)
		}
		out = append(out, model.Observation{
			Row:       row,
			ProteinID: field(rec, idx[0]),
			SiteID:    field(rec, idx[1]),
			GlycanID:  field(rec, idx[2]),
		})
	}
	return out, nil
}

func columnIndex(header []string, cols Columns) ([3]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	var idx [3]int
	var missing []string
	for i, name := range []string{cols.Protein, cols.Site, cols.Glycan} {
		p, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		idx[i] = p
	}
	if len(missing) > 0 {
		return idx, model.Usagef("missing column(s) %s in header %v", strings.Join(missing, ", "), header)
	}
	return idx, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
