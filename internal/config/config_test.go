package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/StinkyLord/glycoproteoform-builder/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	for _, name := range []string{EnvLimit, EnvWorkers, EnvOutputDir, EnvLogLevel, EnvLogFormat, EnvProteinColumn} {
		t.Setenv(name, "")
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Limit != DefaultLimit {
		t.Errorf("Limit = %d, want %d", cfg.Limit, DefaultLimit)
	}
	if cfg.Columns.Protein != "protein" || cfg.Columns.Site != "glycosylation_site" || cfg.Columns.Glycan != "glycan" {
		t.Errorf("Columns = %+v", cfg.Columns)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadEnvironmentOverridesDotEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := EnvLimit + "=25\n" + EnvProteinColumn + "=uniprotkb_canonical_ac\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvLimit, "7")
	t.Setenv(EnvProteinColumn, "")
	os.Unsetenv(EnvProteinColumn)

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Limit != 7 {
		t.Errorf("Limit = %d, want 7 from the environment", cfg.Limit)
	}
	if cfg.Columns.Protein != "uniprotkb_canonical_ac" {
		t.Errorf("Protein column = %q, want value from .env", cfg.Columns.Protein)
	}
}

func TestValidateAcceptsLogLevels(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "warning", "error"} {
		cfg := Default()
		cfg.LogLevel = level
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() with level %q = %v", level, err)
		}
	}
}

func TestLoadMissingDotEnvIsFine(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("Load with missing .env: %v", err)
	}
}

func TestLoadRejectsNonInteger(t *testing.T) {
	t.Setenv(EnvLimit, "ten")
	_, err := Load("")
	var usage *model.UsageError
	if !errors.As(err, &usage) {
		t.Fatalf("err = %v, want UsageError", err)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"zero limit":     func(c *Config) { c.Limit = 0 },
		"negative limit": func(c *Config) { c.Limit = -1 },
		"zero workers":   func(c *Config) { c.Workers = 0 },
		"no output dir":  func(c *Config) { c.OutputDir = "" },
		"empty column":   func(c *Config) { c.Columns.Glycan = "" },
		"bad log format": func(c *Config) { c.LogFormat = "xml" },
		"bad log level":  func(c *Config) { c.LogLevel = "verbose" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			var usage *model.UsageError
			if err := cfg.Validate(); !errors.As(err, &usage) {
				t.Errorf("Validate() = %v, want UsageError", err)
			}
		})
	}
}
