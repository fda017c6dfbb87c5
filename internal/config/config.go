// Package config holds the run configuration of the proteoform generator.
//
// Values are resolved in increasing precedence: built-in defaults, a .env
// file in the working directory (if present), the process environment, and
// finally command-line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/StinkyLord/glycoproteoform-builder/internal/input"
	"github.com/StinkyLord/glycoproteoform-builder/internal/model"
)

// Environment variable names.
const (
	EnvLimit         = "PROTEOFORM_LIMIT"
	EnvWorkers       = "PROTEOFORM_WORKERS"
	EnvOutputDir     = "PROTEOFORM_OUTPUT_DIR"
	EnvLogLevel      = "PROTEOFORM_LOG_LEVEL"
	EnvLogFormat     = "PROTEOFORM_LOG_FORMAT"
	EnvProteinColumn = "PROTEOFORM_PROTEIN_COLUMN"
	EnvSiteColumn    = "PROTEOFORM_SITE_COLUMN"
	EnvGlycanColumn  = "PROTEOFORM_GLYCAN_COLUMN"
)

// DefaultLimit is the per-protein cap used when nothing else is configured.
const DefaultLimit = 10

// Config is the resolved run configuration.
type Config struct {
	Limit     int
	Workers   int
	OutputDir string
	LogLevel  string
	LogFormat string
	Columns   input.Columns
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Limit:     DefaultLimit,
		Workers:   runtime.NumCPU(),
		OutputDir: "data",
		LogLevel:  "info",
		LogFormat: "text",
		Columns:   input.DefaultColumns(),
	}
}

// Load returns the default configuration overlaid with a .env file named by
// envFile (skipped when it does not exist) and the process environment.
// Variables already set in the environment win over the .env file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: loading %s: %w", envFile, err)
		}
	}

	cfg := Default()
	var err error
	if cfg.Limit, err = envInt(EnvLimit, cfg.Limit); err != nil {
		return Config{}, err
	}
	if cfg.Workers, err = envInt(EnvWorkers, cfg.Workers); err != nil {
		return Config{}, err
	}
	envString(EnvOutputDir, &cfg.OutputDir)
	envString(EnvLogLevel, &cfg.LogLevel)
	envString(EnvLogFormat, &cfg.LogFormat)
	envString(EnvProteinColumn, &cfg.Columns.Protein)
	envString(EnvSiteColumn, &cfg.Columns.Site)
	envString(EnvGlycanColumn, &cfg.Columns.Glycan)
	return cfg, nil
}

// Validate reports configuration problems as usage errors.
func (c Config) Validate() error {
	switch {
	case c.Limit < 1:
		return model.Usagef("limit must be a positive integer, got %d", c.Limit)
	case c.Workers < 1:
		return model.Usagef("workers must be a positive integer, got %d", c.Workers)
	case c.OutputDir == "":
		return model.Usagef("output directory must not be empty")
	case c.Columns.Protein == "" || c.Columns.Site == "" || c.Columns.Glycan == "":
		return model.Usagef("column names must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return model.Usagef("unknown log level %q (supported: debug, info, warn, error)", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return model.Usagef("unknown log format %q (supported: text, json)", c.LogFormat)
	}
	return nil
}

func envInt(name string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, model.Usagef("invalid value for %s=%q: not an integer", name, v)
	}
	return n, nil
}

func envString(name string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}
