package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Tiliavir/attendance-time-calculator/internal/attendance"
	"github.com/Tiliavir/attendance-time-calculator/internal/config"
)

func TestLoadWritesTemplateOnFirstRun(t *testing.T) {
	base := t.TempDir()
	cfg, err := config.Load(base)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Rules != attendance.DefaultConfig() {
		t.Errorf("Rules = %+v, want defaults", cfg.Rules)
	}
	if _, err := os.Stat(config.FilePath(base)); err != nil {
		t.Fatalf("template not written: %v", err)
	}

	// The template itself must parse back to the defaults.
	again, err := config.Load(base)
	if err != nil {
		t.Fatalf("Load template: %v", err)
	}
	if again != config.Default() {
		t.Errorf("template config = %+v, want %+v", again, config.Default())
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	base := t.TempDir()
	if err := os.WriteFile(filepath.Join(base, "config.yaml"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return base
}

func TestLoadPartialFile(t *testing.T) {
	base := writeConfig(t, `
rules:
  standard_work_hours: 7.5
  lunch_start: "12:00"
  lunch_end: "13:00"
  lunch_duration: 0
policy:
  exclude_holidays: true
storage:
  backend: sqlite
`)
	cfg, err := config.Load(base)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Rules.StandardWorkHours != 7.5 {
		t.Errorf("StandardWorkHours = %v, want 7.5", cfg.Rules.StandardWorkHours)
	}
	if cfg.Rules.LunchDuration != 1 {
		t.Errorf("LunchDuration = %v, want derived 1", cfg.Rules.LunchDuration)
	}
	if cfg.Rules.FlexibleEndEarly != "18:00" {
		t.Errorf("FlexibleEndEarly = %q, want default", cfg.Rules.FlexibleEndEarly)
	}
	if !cfg.Policy.ClampEarlyCheckIn || !cfg.Policy.ExcludeHolidays {
		t.Errorf("Policy = %+v", cfg.Policy)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Storage.RetentionDays != 30 {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	base := writeConfig(t, "locale: en\n")
	t.Setenv("ATC_LOCALE", "zh")
	t.Setenv("ATC_LOG_LEVEL", "debug")
	cfg, err := config.Load(base)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Locale != "zh" || cfg.LogLevel != "debug" {
		t.Errorf("Locale/LogLevel = %q/%q, want zh/debug", cfg.Locale, cfg.LogLevel)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("ATC_STORAGE=sqlite\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ATC_STORAGE", "")
	os.Unsetenv("ATC_STORAGE")
	if err := config.LoadEnv(envFile); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv("ATC_STORAGE"); got != "sqlite" {
		t.Errorf("ATC_STORAGE = %q, want sqlite", got)
	}
	if err := config.LoadEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("LoadEnv(missing) = %v, want nil", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"rules", "rules:\n  lunch_end: \"11:00\"\n  lunch_duration: 1\n", "lunch_end"},
		{"backend", "storage:\n  backend: mongo\n", "storage.backend"},
		{"retention", "storage:\n  retention_days: -5\n", "storage.retention_days"},
		{"schedule", "holidays:\n  sync_schedule: \"every day\"\n", "holidays.sync_schedule"},
		{"locale", "locale: fr\n", "locale"},
		{"log level", "log_level: loud\n", "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			var ve *attendance.ValidationError
			if !errors.As(err, &ve) || ve.Clause != attendance.ClauseConfig {
				t.Fatalf("Load = %v, want config validation error", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	if _, err := config.Load(writeConfig(t, "rules: [unclosed\n")); err == nil {
		t.Error("expected parse error")
	}
}
