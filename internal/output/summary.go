package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/StinkyLord/glycoproteoform-builder/internal/runner"
)

// ---- run summary JSON types ----

type runSummary struct {
	RunID    string           `json:"runId"`
	Metadata summaryMetadata  `json:"metadata"`
	Totals   summaryTotals    `json:"totals"`
	Proteins []summaryProtein `json:"proteins"`
	Failures []summaryFailure `json:"failures"`
}

type summaryMetadata struct {
	Timestamp string      `json:"timestamp"`
	Tool      summaryTool `json:"tool"`
	Input     string      `json:"input"`
	Limit     int         `json:"limit"`
}

type summaryTool struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type summaryTotals struct {
	Proteins    int `json:"proteins"`
	Failed      int `json:"failed"`
	Proteoforms int `json:"proteoforms"`
}

// summaryProtein carries the exact total as a decimal string because it
// routinely exceeds the range of JSON numbers.
type summaryProtein struct {
	Protein              string   `json:"protein"`
	Sites                []string `json:"sites"`
	TotalSites           int      `json:"totalSites"`
	TotalDistinctGlycans int      `json:"totalDistinctGlycans"`
	TrueTotal            string   `json:"trueTotal"`
	Generated            int      `json:"generated"`
	Truncated            bool     `json:"truncated,omitempty"`
}

type summaryFailure struct {
	Protein string `json:"protein,omitempty"`
	Row     int    `json:"row,omitempty"`
	Reason  string `json:"reason"`
}

// RunInfo identifies one run in the serialized outputs.
type RunInfo struct {
	ID          uuid.UUID
	Started     time.Time
	Input       string
	ToolVersion string
}

// NewRunInfo stamps a new run with a random id and the current time.
func NewRunInfo(input, toolVersion string) RunInfo {
	return RunInfo{ID: uuid.New(), Started: time.Now().UTC(), Input: input, ToolVersion: toolVersion}
}

// WriteSummary serialises the run result as indented JSON and writes it to
// the given output path. If outputPath is "-", it writes to stdout.
func WriteSummary(result *runner.Result, info RunInfo, outputPath string) error {
	data, err := json.MarshalIndent(buildSummary(result, info), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run summary JSON: %w", err)
	}

	if outputPath == "-" {
		_, err = os.Stdout.Write(data)
		if err == nil {
			_, err = os.Stdout.WriteString("\n")
		}
		return err
	}

	return os.WriteFile(outputPath, append(data, '\n'), 0644)
}

func buildSummary(result *runner.Result, info RunInfo) runSummary {
	proteins := make([]summaryProtein, 0, len(result.Proteins))
	for _, p := range result.Proteins {
		s := p.Summary
		sites := make([]string, 0, len(p.Catalog.Sites))
		for _, site := range p.Catalog.Sites {
			sites = append(sites, site.SiteID)
		}
		proteins = append(proteins, summaryProtein{
			Protein:              s.ProteinID,
			Sites:                sites,
			TotalSites:           s.TotalSites,
			TotalDistinctGlycans: s.TotalDistinctGlycans,
			TrueTotal:            s.TrueTotal.String(),
			Generated:            s.GeneratedCount,
			Truncated:            s.Truncated(),
		})
	}

	failures := make([]summaryFailure, 0, len(result.Failures))
	for _, f := range result.Failures {
		failures = append(failures, summaryFailure{Protein: f.ProteinID, Row: f.Row, Reason: f.Reason})
	}

	return runSummary{
		RunID: "urn:uuid:" + info.ID.String(),
		Metadata: summaryMetadata{
			Timestamp: info.Started.Format(time.RFC3339),
			Tool: summaryTool{
				Name:    "glycoproteoform-builder",
				Version: info.ToolVersion,
			},
			Input: info.Input,
			Limit: result.Limit,
		},
		Totals: summaryTotals{
			Proteins:    len(result.Proteins),
			Failed:      len(result.Failures),
			Proteoforms: result.Generated(),
		},
		Proteins: proteins,
		Failures: failures,
	}
}
