package input

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// LegacyColumns are the column names used by GlyGen/GPTwiki exports.
func LegacyColumns() Columns {
	return Columns{
		Protein: "uniprotkb_canonical_ac",
		Site:    "glycosylation_site_uniprotkb",
		Glycan:  "saccharide",
	}
}

// RenameColumns rewrites the table at path so that the columns named by from
// carry the canonical names. It reports false without touching the file when
// the canonical columns are already present. The file is replaced atomically.
func RenameColumns(path string, from Columns) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("cannot open %q: %w", path, err)
	}
	cr := csv.NewReader(f)
	cr.Comma = Delimiter(path)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	f.Close()
	if err != nil {
		return false, fmt.Errorf("reading %q: %w", path, err)
	}
	if len(records) == 0 {
		return false, fmt.Errorf("%q is empty", path)
	}

	header := records[0]
	canon := DefaultColumns()
	if slices.Contains(header, canon.Protein) && slices.Contains(header, canon.Site) && slices.Contains(header, canon.Glycan) {
		return false, nil
	}

	rename := map[string]string{
		from.Protein: canon.Protein,
		from.Site:    canon.Site,
		from.Glycan:  canon.Glycan,
	}
	for i, h := range header {
		if to, ok := rename[h]; ok {
			header[i] = to
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".rename-*")
	if err != nil {
		return false, err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	w.Comma = cr.Comma
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return false, fmt.Errorf("writing %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, fmt.Errorf("replacing %q: %w", path, err)
	}
	return true, nil
}
