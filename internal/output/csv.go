package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/klauspost/compress/gzip"

	"github.com/StinkyLord/glycoproteoform-builder/internal/model"
	"github.com/StinkyLord/glycoproteoform-builder/internal/runner"
)

var countsHeader = []string{
	"protein", "total_sites", "total_distinct_glycans",
	"total_combinations", "generated_proteoforms", "status", "error",
}

var mergedHeader = []string{"protein", "proteoform_id", "glycosylation_sites"}

// WriteCounts writes one row per protein: successful proteins first in
// catalog order, then every failure with its reason. Rows for input lines
// without a protein id carry an empty protein column.
func WriteCounts(w io.Writer, result *runner.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(countsHeader); err != nil {
		return err
	}
	for _, p := range result.Proteins {
		s := p.Summary
		if err := cw.Write([]string{
			s.ProteinID,
			strconv.Itoa(s.TotalSites),
			strconv.Itoa(s.TotalDistinctGlycans),
			s.TrueTotal.String(),
			strconv.Itoa(s.GeneratedCount),
			"ok",
			"",
		}); err != nil {
			return err
		}
	}
	for _, f := range result.Failures {
		if err := cw.Write([]string{f.ProteinID, "", "", "", "0", "failed", f.Reason}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMerged writes every proteoform of every protein into one table,
// streaming each protein's sequence again from its catalog.
func WriteMerged(w io.Writer, result *runner.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(mergedHeader); err != nil {
		return err
	}
	for _, p := range result.Proteins {
		err := p.Proteoforms(func(pf model.ProteoformAssignment) error {
			return cw.Write([]string{p.Summary.ProteinID, pf.ID(), FormatSites(pf)})
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCountsFile writes the counts table to path ("-" for stdout).
func WriteCountsFile(path string, result *runner.Result) error {
	if err := writeFile(path, func(w io.Writer) error { return WriteCounts(w, result) }); err != nil {
		return fmt.Errorf("failed to write counts %q: %w", path, err)
	}
	return nil
}

// WriteMergedFile writes the merged table to path ("-" for stdout),
// gzip-compressed when compress is set.
func WriteMergedFile(path string, result *runner.Result, compress bool) error {
	err := writeFile(path, func(w io.Writer) error {
		if !compress {
			return WriteMerged(w, result)
		}
		zw := gzip.NewWriter(w)
		if err := WriteMerged(zw, result); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	})
	if err != nil {
		return fmt.Errorf("failed to write merged proteoforms %q: %w", path, err)
	}
	return nil
}
