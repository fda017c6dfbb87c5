// Package output provides proteoform serializers.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Layout names the files of one run. All files live in Dir, which is
// <root>/<input file name without extension>.
type Layout struct {
	Dir       string
	InputName string // base name of the input file, e.g. "sites.csv"
}

// NewLayout derives the output layout for an input file under root.
func NewLayout(root, inputPath string) Layout {
	name := filepath.Base(inputPath)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return Layout{Dir: filepath.Join(root, stem), InputName: name}
}

// Prepare creates the output directory.
func (l Layout) Prepare() error {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory %q: %w", l.Dir, err)
	}
	return nil
}

// ProteoformFile is the per-protein text file.
func (l Layout) ProteoformFile(proteinID string) string {
	return filepath.Join(l.Dir, safeName(proteinID)+"_proteoforms.txt")
}

// ProteoformFiles assigns every protein its own text file. Ids that map to
// the same file name, such as "sp/P1" and "sp_P1", keep the plain name for
// the first one and get a numeric suffix ("sp_P1_2") for the later ones.
// Names are compared case-insensitively.
func (l Layout) ProteoformFiles(proteinIDs []string) map[string]string {
	files := make(map[string]string, len(proteinIDs))
	used := make(map[string]bool, len(proteinIDs))
	for _, id := range proteinIDs {
		base := safeName(id)
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[strings.ToLower(name)] = true
		files[id] = filepath.Join(l.Dir, name+"_proteoforms.txt")
	}
	return files
}

// CountsFile is the per-protein counts table.
func (l Layout) CountsFile() string {
	return filepath.Join(l.Dir, "00_proteoform_counts_"+csvName(l.InputName))
}

// MergedFile is the table of all proteoforms, with ".gz" appended when
// compressed.
func (l Layout) MergedFile(compressed bool) string {
	p := filepath.Join(l.Dir, "01_merged_proteoforms_"+csvName(l.InputName))
	if compressed {
		p += ".gz"
	}
	return p
}

// SummaryFile is the JSON run summary.
func (l Layout) SummaryFile() string {
	return filepath.Join(l.Dir, "summary.json")
}

// csvName forces a .csv extension so TSV inputs still produce CSV tables.
func csvName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".csv"
}

// safeName replaces path separators so a protein id can never escape Dir.
func safeName(id string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(id)
}
