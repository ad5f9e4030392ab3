package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/attendance-time-calculator/internal/attendance"
)

// Config is the root configuration for atc, stored in ~/.atc/config.yaml.
type Config struct {
	Rules    attendance.Config `yaml:"rules"`
	Policy   PolicyConfig      `yaml:"policy"`
	Storage  StorageConfig     `yaml:"storage"`
	Holidays HolidaysConfig    `yaml:"holidays"`
	Outlook  OutlookConfig     `yaml:"outlook"`
	Locale   string            `yaml:"locale"`
	LogLevel string            `yaml:"log_level"`
}

// PolicyConfig switches the input rules applied on top of the calculations.
type PolicyConfig struct {
	// ClampEarlyCheckIn moves a check-in before flexible_start_early up to it.
	ClampEarlyCheckIn bool `yaml:"clamp_early_check_in"`
	// EnforceFlexibleEnd rejects a check-out before flexible_end_early while a full day is owed.
	EnforceFlexibleEnd bool `yaml:"enforce_flexible_end"`
	// ExcludeHolidays removes holidays and days off from the required day count.
	ExcludeHolidays bool `yaml:"exclude_holidays"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend       string `yaml:"backend"`
	SQLitePath    string `yaml:"sqlite_path"`
	RetentionDays int    `yaml:"retention_days"`
}

// HolidaysConfig holds the holiday API and the daemon schedules.
type HolidaysConfig struct {
	APIURL          string `yaml:"api_url"`
	SyncSchedule    string `yaml:"sync_schedule"`
	CleanupSchedule string `yaml:"cleanup_schedule"`
}

// OutlookConfig holds Microsoft Graph / Outlook calendar sync settings.
type OutlookConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `yaml:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `yaml:"client_id"`
	// Timezone is the IANA timezone for event times (e.g. "Asia/Shanghai"). Empty = UTC.
	Timezone string `yaml:"timezone"`
}

const (
	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID.
	// It supports device code flow without a client secret and requires no
	// app registration.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"

	DefaultBackend         = "files"
	DefaultRetentionDays   = 30
	DefaultAPIURL          = "https://timor.tech/api/holiday"
	DefaultSyncSchedule    = "0 3 1 * *"
	DefaultCleanupSchedule = "30 3 * * *"
	DefaultLocale          = "en"
	DefaultLogLevel        = "info"
)

// Default returns a Config pre-filled with the built-in defaults.
func Default() Config {
	return Config{
		Rules: attendance.DefaultConfig(),
		Policy: PolicyConfig{
			ClampEarlyCheckIn:  true,
			EnforceFlexibleEnd: true,
			ExcludeHolidays:    false,
		},
		Storage: StorageConfig{
			Backend:       DefaultBackend,
			RetentionDays: DefaultRetentionDays,
		},
		Holidays: HolidaysConfig{
			APIURL:          DefaultAPIURL,
			SyncSchedule:    DefaultSyncSchedule,
			CleanupSchedule: DefaultCleanupSchedule,
		},
		Outlook: OutlookConfig{
			TenantID: DefaultTenantID,
			ClientID: DefaultClientID,
		},
		Locale:   DefaultLocale,
		LogLevel: DefaultLogLevel,
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# atc configuration - ~/.atc/config.yaml
#
# All settings are optional; omitted values fall back to the defaults shown
# below. Environment variables ATC_HOME, ATC_LOCALE, ATC_STORAGE and
# ATC_LOG_LEVEL (also read from ./.env) override this file.

# Attendance rules. All times are same-day HH:mm values.
rules:
  standard_work_hours: 8
  # Arrival before flexible_start_early earns no credit.
  flexible_start_early: "08:00"
  flexible_start_late: "09:30"
  # Earliest leave time while a full standard day is still owed.
  flexible_end_early: "18:00"
  flexible_end_late: "19:30"
  # Unpaid lunch break. lunch_duration must match the interval.
  lunch_start: "12:00"
  lunch_end: "14:00"
  lunch_duration: 2

policy:
  # Record a check-in before flexible_start_early as flexible_start_early.
  clamp_early_check_in: true
  # Reject a check-out before flexible_end_early while a full day is owed.
  enforce_flexible_end: true
  # Do not require hours on public holidays and personal days off.
  exclude_holidays: false

storage:
  # "files" (one JSON file per day) or "sqlite".
  backend: files
  # Defaults to ~/.atc/atc.db.
  sqlite_path: ""
  # "atc cleanup" and the daemon delete days older than this.
  retention_days: 30

holidays:
  api_url: https://timor.tech/api/holiday
  # Cron schedules used by "atc daemon".
  sync_schedule: "0 3 1 * *"
  cleanup_schedule: "30 3 * * *"

# Microsoft Graph / Outlook import of out-of-office days.
outlook:
  # "common" for personal Microsoft accounts and any organisation, or your tenant GUID.
  tenant_id: common
  # The built-in value is the public Azure CLI app; no app registration needed.
  client_id: 04b07795-8542-4c4a-95af-30b2c573d5ab
  # IANA timezone for event times, e.g. "Asia/Shanghai". Empty = UTC.
  timezone: ""

# Message language: en or zh.
locale: en
# trace, debug, info, warn, error.
log_level: info
`

// FilePath returns the config file path below base.
func FilePath(base string) string {
	return filepath.Join(base, "config.yaml")
}

// LoadEnv loads envFile (or ./.env when empty) into the process environment.
// A missing file is not an error.
func LoadEnv(envFile string) error {
	if envFile == "" {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed loading env file %s: %w", envFile, err)
	}
	return nil
}

// Load reads base/config.yaml, creating it with annotated defaults on first
// run, and applies environment overrides. The result is validated.
func Load(base string) (Config, error) {
	path := FilePath(base)
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	case err != nil:
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	default:
		// Keys absent from the file keep their default values.
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	cfg.applyEnv()
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Locale = getenvWithDefault("ATC_LOCALE", c.Locale)
	c.Storage.Backend = getenvWithDefault("ATC_STORAGE", c.Storage.Backend)
	c.LogLevel = getenvWithDefault("ATC_LOG_LEVEL", c.LogLevel)
}

// withDefaults fills values the user explicitly left empty.
func (c Config) withDefaults() Config {
	def := Default()
	c.Rules = c.Rules.WithDefaults()
	if c.Storage.Backend == "" {
		c.Storage.Backend = def.Storage.Backend
	}
	if c.Storage.RetentionDays == 0 {
		c.Storage.RetentionDays = def.Storage.RetentionDays
	}
	if c.Holidays.APIURL == "" {
		c.Holidays.APIURL = def.Holidays.APIURL
	}
	if c.Holidays.SyncSchedule == "" {
		c.Holidays.SyncSchedule = def.Holidays.SyncSchedule
	}
	if c.Holidays.CleanupSchedule == "" {
		c.Holidays.CleanupSchedule = def.Holidays.CleanupSchedule
	}
	if c.Outlook.TenantID == "" {
		c.Outlook.TenantID = DefaultTenantID
	}
	if c.Outlook.ClientID == "" {
		c.Outlook.ClientID = DefaultClientID
	}
	if c.Locale == "" {
		c.Locale = def.Locale
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	return c
}

// Validate checks every section, starting with the attendance rules.
func (c Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return err
	}
	switch c.Storage.Backend {
	case "files", "sqlite":
	default:
		return invalid("storage.backend", fmt.Sprintf("must be files or sqlite, got %q", c.Storage.Backend))
	}
	if c.Storage.RetentionDays < 1 {
		return invalid("storage.retention_days", "must be at least 1")
	}
	for field, spec := range map[string]string{
		"holidays.sync_schedule":    c.Holidays.SyncSchedule,
		"holidays.cleanup_schedule": c.Holidays.CleanupSchedule,
	} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return invalid(field, err.Error())
		}
	}
	switch c.Locale {
	case "en", "zh":
	default:
		return invalid("locale", fmt.Sprintf("must be en or zh, got %q", c.Locale))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return invalid("log_level", err.Error())
	}
	return nil
}

func invalid(field, msg string) error {
	return &attendance.ValidationError{Clause: attendance.ClauseConfig, Field: field, Message: field + " " + msg}
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
