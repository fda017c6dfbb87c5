package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/StinkyLord/glycoproteoform-builder/internal/model"
)

const sampleCSV = `protein,glycosylation_site,glycan
O00754-1,692,G28681TP
O00754-1,930,G41247ZX
X,10,G1
X,11,
P02749,162,GA
P02749,162,GB
P02749,253,GA
`

// resetFlags restores every subcommand flag to its default so one test's
// arguments never leak into the next.
func resetFlags(t *testing.T) {
	t.Helper()
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			if err := f.Value.Set(f.DefValue); err != nil {
				t.Fatalf("reset --%s: %v", f.Name, err)
			}
			f.Changed = false
		})
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, name := range []string{"PROTEOFORM_LIMIT", "PROTEOFORM_WORKERS", "PROTEOFORM_OUTPUT_DIR", "PROTEOFORM_LOG_LEVEL", "PROTEOFORM_LOG_FORMAT"} {
		t.Setenv(name, "")
	}
	resetFlags(t)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestGenerateEndToEnd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sites.csv")
	if err := os.WriteFile(in, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "data")

	out, err := execute(t, "generate",
		"--input", in,
		"--limit", "5",
		"--workers", "3",
		"--output-dir", outDir,
		"--env-file", filepath.Join(dir, "none.env"),
		"--gzip",
		"--sqlite", filepath.Join(dir, "runs.db"),
		"--metrics-file", filepath.Join(dir, "run.prom"),
		"--log-format", "json",
	)
	if err != nil {
		t.Fatalf("generate failed: %v\n%s", err, out)
	}

	if !strings.Contains(out, "FAILED X: protein X: row 4: missing glycan") {
		t.Errorf("failure for X not reported:\n%s", out)
	}
	if !strings.Contains(out, "Enumerated 2 protein(s), 1 failed, 9 proteoform(s) generated") {
		t.Errorf("unexpected report:\n%s", out)
	}

	runDir := filepath.Join(outDir, "sites")
	text, err := os.ReadFile(filepath.Join(runDir, "O00754-1_proteoforms.txt"))
	if err != nil {
		t.Fatal(err)
	}
	want := "O00754-1_PF_1, 692-None 930-None\n" +
		"O00754-1_PF_2, 692-None 930-G41247ZX\n" +
		"O00754-1_PF_3, 692-G28681TP 930-None\n" +
		"O00754-1_PF_4, 692-G28681TP 930-G41247ZX\n"
	if string(text) != want {
		t.Errorf("O00754-1 proteoforms:\n%s\nwant:\n%s", text, want)
	}

	counts, err := os.ReadFile(filepath.Join(runDir, "00_proteoform_counts_sites.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(counts), "P02749,2,2,6,5,ok,") {
		t.Errorf("counts missing P02749 row:\n%s", counts)
	}

	for _, name := range []string{"01_merged_proteoforms_sites.csv.gz", "summary.json"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	for _, name := range []string{"runs.db", "run.prom"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestGenerateFlagsDoNotCarryOver(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sites.csv")
	if err := os.WriteFile(in, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	noEnv := filepath.Join(dir, "none.env")

	first := filepath.Join(dir, "first")
	if out, err := execute(t, "generate", "-i", in, "-o", first, "--env-file", noEnv,
		"--limit", "1", "--gzip", "--metrics-file", filepath.Join(dir, "first.prom")); err != nil {
		t.Fatalf("first run: %v\n%s", err, out)
	}

	second := filepath.Join(dir, "second")
	out, err := execute(t, "generate", "-i", in, "-o", second, "--env-file", noEnv)
	if err != nil {
		t.Fatalf("second run: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(second, "sites", "01_merged_proteoforms_sites.csv")); err != nil {
		t.Errorf("second run should write a plain merged table: %v", err)
	}
	if _, err := os.Stat(filepath.Join(second, "sites", "01_merged_proteoforms_sites.csv.gz")); !os.IsNotExist(err) {
		t.Errorf("second run inherited --gzip")
	}
	// default limit 10 covers all 4 + 6 proteoforms of O00754-1 and P02749
	if !strings.Contains(out, "10 proteoform(s) generated") {
		t.Errorf("second run inherited --limit:\n%s", out)
	}
	if flagMetricsFile != "" {
		t.Errorf("--metrics-file carried over: %q", flagMetricsFile)
	}
}

func TestGenerateRejectsZeroLimit(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sites.csv")
	if err := os.WriteFile(in, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "generate", "--input", in, "--limit", "0",
		"--output-dir", filepath.Join(dir, "data"), "--env-file", "")
	var usage *model.UsageError
	if !errors.As(err, &usage) {
		t.Fatalf("err = %v, want UsageError", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "data")); !os.IsNotExist(statErr) {
		t.Errorf("output directory created despite usage error")
	}
}

func TestRenameColumnsCommand(t *testing.T) {
	in := filepath.Join(t.TempDir(), "gptwiki.csv")
	if err := os.WriteFile(in, []byte("uniprotkb_canonical_ac,glycosylation_site_uniprotkb,saccharide\nP,1,G\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "rename-columns", "--input", in)
	if err != nil {
		t.Fatalf("rename-columns: %v", err)
	}
	if !strings.Contains(out, "Columns have been renamed") {
		t.Errorf("output = %q", out)
	}

	out, err = execute(t, "rename-columns", "--input", in)
	if err != nil {
		t.Fatalf("rename-columns (second run): %v", err)
	}
	if !strings.Contains(out, "already been renamed") {
		t.Errorf("output = %q", out)
	}
}
