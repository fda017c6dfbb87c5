package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/StinkyLord/glycoproteoform-builder/internal/model"
	"github.com/StinkyLord/glycoproteoform-builder/internal/runner"
)

// FormatSites renders the site assignments of a proteoform as
// "<site>-<glycan>" pairs separated by single spaces, in catalog order.
func FormatSites(p model.ProteoformAssignment) string {
	var b strings.Builder
	for i, s := range p.Sites {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// WriteProteoform writes one proteoform line:
//
//	O00754-1_PF_1, 692-None 930-None
func WriteProteoform(w io.Writer, p model.ProteoformAssignment) error {
	_, err := fmt.Fprintf(w, "%s, %s\n", p.ID(), FormatSites(p))
	return err
}

// TextSink writes the proteoforms of each protein to its own
// <protein>_proteoforms.txt while they are enumerated.
type TextSink struct {
	files map[string]string
}

// NewTextSink assigns a file in l to every catalog. The layout directory must
// exist before the first Open.
func NewTextSink(l Layout, cats []*model.SiteCatalog) *TextSink {
	ids := make([]string, len(cats))
	for i, c := range cats {
		ids[i] = c.ProteinID
	}
	return &TextSink{files: l.ProteoformFiles(ids)}
}

// File returns the path assigned to a protein.
func (s *TextSink) File(proteinID string) (string, bool) {
	path, ok := s.files[proteinID]
	return path, ok
}

// Open creates the text file of c. It only reads the sink, so workers may
// call it concurrently.
func (s *TextSink) Open(c *model.SiteCatalog) (runner.ProteoformWriter, error) {
	path, ok := s.files[c.ProteinID]
	if !ok {
		return nil, fmt.Errorf("no output file assigned to protein %s", c.ProteinID)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &textWriter{f: f, bw: bufio.NewWriter(f)}, nil
}

type textWriter struct {
	f  *os.File
	bw *bufio.Writer
}

func (w *textWriter) Write(p model.ProteoformAssignment) error {
	return WriteProteoform(w.bw, p)
}

func (w *textWriter) Close() error {
	if err := w.bw.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// writeFile creates path and hands it to fn. If path is "-", fn writes to
// stdout.
func writeFile(path string, fn func(io.Writer) error) error {
	if path == "-" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
