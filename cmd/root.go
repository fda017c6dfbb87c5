package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/StinkyLord/glycoproteoform-builder/internal/catalog"
	"github.com/StinkyLord/glycoproteoform-builder/internal/config"
	"github.com/StinkyLord/glycoproteoform-builder/internal/input"
	"github.com/StinkyLord/glycoproteoform-builder/internal/logging"
	"github.com/StinkyLord/glycoproteoform-builder/internal/metrics"
	"github.com/StinkyLord/glycoproteoform-builder/internal/output"
	"github.com/StinkyLord/glycoproteoform-builder/internal/runner"
	"github.com/StinkyLord/glycoproteoform-builder/internal/store"
)

const toolVersion = "1.0.0"

const defaultInput = "human_proteoform_glycosylation_sites_gptwiki.csv"

var (
	flagInput         string
	flagLimit         int
	flagWorkers       int
	flagOutputDir     string
	flagProteinColumn string
	flagSiteColumn    string
	flagGlycanColumn  string
	flagEnvFile       string
	flagGzip          bool
	flagSQLite        string
	flagMetricsFile   string
	flagVerbose       bool
	flagLogLevel      string
	flagLogFormat     string

	flagRenameInput   string
	flagRenameProtein string
	flagRenameSite    string
	flagRenameGlycan  string
)

var rootCmd = &cobra.Command{
	Use:   "glycoproteoform-builder",
	Short: "Glycoproteoform enumeration engine",
	Long: `glycoproteoform-builder reads a table of observed glycans per glycosylation
site and enumerates, for every protein, the possible glycoproteoforms: one
glycan (or none) at each site.

The number of combinations grows as the product of the per-site option counts
and easily reaches trillions, so only the first --limit proteoforms of each
protein are written while the exact total is still reported.`,
	SilenceUsage: true,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Enumerate proteoforms for every protein in an input table",
	Long: `Enumerate glycoproteoforms from a CSV/TSV table with protein,
glycosylation_site and glycan columns.

Output goes to <output-dir>/<input name>/:
  <protein>_proteoforms.txt           one line per proteoform
  00_proteoform_counts_<input>.csv    combination counts and failures
  01_merged_proteoforms_<input>.csv   all proteoforms in one table
  summary.json                        run summary

Examples:
  glycoproteoform-builder generate --input sites.csv --limit 100
  glycoproteoform-builder generate -i sites.tsv -p uniprotkb_canonical_ac -s glycosylation_site_uniprotkb -g saccharide
  glycoproteoform-builder generate -i sites.csv --gzip --sqlite runs.db --metrics-file proteoform.prom`,
	RunE: runGenerate,
}

var renameCmd = &cobra.Command{
	Use:   "rename-columns",
	Short: "Rename source columns of a CSV to protein, glycosylation_site and glycan",
	Long: `Rewrite a CSV in place so that its protein, site and glycan columns carry the
names expected by 'generate'. Files that already use those names are left alone.`,
	RunE: runRename,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "glycoproteoform-builder v%s\n", toolVersion)
	},
}

func init() {
	def := config.Default()
	f := generateCmd.Flags()
	f.StringVarP(&flagInput, "input", "i", defaultInput, "Path to the input CSV/TSV file")
	f.IntVarP(&flagLimit, "limit", "l", def.Limit, "Maximum number of proteoforms to generate per protein")
	f.IntVarP(&flagWorkers, "workers", "w", def.Workers, "Number of proteins enumerated concurrently")
	f.StringVarP(&flagOutputDir, "output-dir", "o", def.OutputDir, "Root directory for generated files")
	f.StringVarP(&flagProteinColumn, "protein-column", "p", def.Columns.Protein, "Column name for protein")
	f.StringVarP(&flagSiteColumn, "site-column", "s", def.Columns.Site, "Column name for glycosylation site")
	f.StringVarP(&flagGlycanColumn, "glycan-column", "g", def.Columns.Glycan, "Column name for glycan")
	f.StringVar(&flagEnvFile, "env-file", ".env", "Optional dotenv file with PROTEOFORM_* settings")
	f.BoolVar(&flagGzip, "gzip", false, "Gzip-compress the merged proteoforms table")
	f.StringVar(&flagSQLite, "sqlite", "", "Also store the run in this SQLite database")
	f.StringVar(&flagMetricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output")
	f.StringVar(&flagLogLevel, "log-level", def.LogLevel, "Log level: debug, info, warn, error")
	f.StringVar(&flagLogFormat, "log-format", def.LogFormat, "Log format: text, json")

	legacy := input.LegacyColumns()
	rf := renameCmd.Flags()
	rf.StringVarP(&flagRenameInput, "input", "i", defaultInput, "CSV file to rewrite")
	rf.StringVarP(&flagRenameProtein, "protein", "p", legacy.Protein, "Source column name for protein")
	rf.StringVarP(&flagRenameSite, "site", "s", legacy.Site, "Source column name for glycosylation site")
	rf.StringVarP(&flagRenameGlycan, "glycan", "g", legacy.Glycan, "Source column name for glycan")

	rootCmd.AddCommand(generateCmd, renameCmd, versionCmd)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// resolveConfig layers explicitly set flags over defaults, .env and the
// environment.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagEnvFile)
	if err != nil {
		return cfg, err
	}
	f := cmd.Flags()
	if f.Changed("limit") {
		cfg.Limit = flagLimit
	}
	if f.Changed("workers") {
		cfg.Workers = flagWorkers
	}
	if f.Changed("output-dir") {
		cfg.OutputDir = flagOutputDir
	}
	if f.Changed("protein-column") {
		cfg.Columns.Protein = flagProteinColumn
	}
	if f.Changed("site-column") {
		cfg.Columns.Site = flagSiteColumn
	}
	if f.Changed("glycan-column") {
		cfg.Columns.Glycan = flagGlycanColumn
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}
	if flagVerbose {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	stderr := cmd.ErrOrStderr()
	log := logging.Setup(stderr, cfg.LogLevel, cfg.LogFormat)

	info, err := os.Stat(flagInput)
	if err != nil {
		return fmt.Errorf("input %q does not exist: %w", flagInput, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%q is a directory", flagInput)
	}

	log.Info("glycoproteoform-builder", "version", toolVersion, "input", flagInput, "limit", cfg.Limit, "workers", cfg.Workers)

	observations, err := input.ReadFile(flagInput, cfg.Columns)
	if err != nil {
		return err
	}
	set := catalog.Build(observations)
	log.Info("catalog built", "rows", len(observations), "proteins", set.Len(), "rejected", len(set.Errors()))

	layout := output.NewLayout(cfg.OutputDir, flagInput)
	if err := layout.Prepare(); err != nil {
		return err
	}

	rec := metrics.New()
	r := &runner.Runner{
		Limit:   cfg.Limit,
		Workers: cfg.Workers,
		Logger:  log,
		Metrics: rec,
		Sink:    output.NewTextSink(layout, set.Catalogs()),
	}
	result, runErr := r.Run(cmd.Context(), set)
	if result == nil {
		return runErr
	}

	run := output.NewRunInfo(flagInput, toolVersion)
	if err := writeOutputs(layout, run, result); err != nil {
		return err
	}

	if flagSQLite != "" {
		db, err := store.NewStore(flagSQLite)
		if err != nil {
			return err
		}
		err = db.SaveRun(context.WithoutCancel(cmd.Context()), run, result)
		db.Close()
		if err != nil {
			return err
		}
		log.Info("run stored", "db", flagSQLite, "run_id", run.ID)
	}

	if flagMetricsFile != "" {
		if err := rec.WriteTextfile(flagMetricsFile); err != nil {
			return fmt.Errorf("failed to write metrics %q: %w", flagMetricsFile, err)
		}
	}

	printReport(stderr, result, flagVerbose)
	fmt.Fprintf(stderr, "Proteoforms written to: %s\n", layout.Dir)

	if runErr != nil {
		return fmt.Errorf("run interrupted: %w", runErr)
	}
	return nil
}

// writeOutputs writes the run-level tables; per-protein text files are
// written by the runner's sink.
func writeOutputs(l output.Layout, run output.RunInfo, result *runner.Result) error {
	if err := output.WriteCountsFile(l.CountsFile(), result); err != nil {
		return err
	}
	if err := output.WriteMergedFile(l.MergedFile(flagGzip), result, flagGzip); err != nil {
		return err
	}
	if err := output.WriteSummary(result, run, l.SummaryFile()); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}
	return nil
}

// printReport lists failures always and per-protein totals when verbose.
func printReport(w io.Writer, result *runner.Result, verbose bool) {
	if verbose {
		for _, p := range result.Proteins {
			s := p.Summary
			fmt.Fprintf(w, "%s: total combinations %s, generated %d\n", s.ProteinID, s.TrueTotal, s.GeneratedCount)
		}
	}
	for _, f := range result.Failures {
		id := f.ProteinID
		if id == "" {
			id = fmt.Sprintf("row %d", f.Row)
		}
		fmt.Fprintf(w, "FAILED %s: %s\n", id, f.Reason)
	}
	fmt.Fprintf(w, "Enumerated %d protein(s), %d failed, %d proteoform(s) generated\n",
		len(result.Proteins), len(result.Failures), result.Generated())
}

func runRename(cmd *cobra.Command, args []string) error {
	from := input.Columns{Protein: flagRenameProtein, Site: flagRenameSite, Glycan: flagRenameGlycan}
	renamed, err := input.RenameColumns(flagRenameInput, from)
	if err != nil {
		return err
	}
	if renamed {
		fmt.Fprintln(cmd.OutOrStdout(), "Columns have been renamed and the updated CSV has been saved.")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Columns have already been renamed.")
	}
	return nil
}
