package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/attendance-time-calculator/internal/attendance"
	"github.com/Tiliavir/attendance-time-calculator/internal/config"
	"github.com/Tiliavir/attendance-time-calculator/internal/holiday"
	"github.com/Tiliavir/attendance-time-calculator/internal/i18n"
	"github.com/Tiliavir/attendance-time-calculator/internal/storage"
	"github.com/Tiliavir/attendance-time-calculator/internal/timecalc"
	"github.com/Tiliavir/attendance-time-calculator/internal/tracker"
)

var envFile string

// timeNow is the clock used for default dates and times.
var timeNow = time.Now

var rootCmd = &cobra.Command{
	Use:   "atc",
	Short: "Attendance time calculator – weekly work hours and today's leave time",
	Long: `atc records daily check-in and check-out times for a range of up to seven days,
computes effective hours against the required hours and projects when you may
leave today. Data is stored in ~/.atc/ (override with ATC_HOME).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadEnv(envFile)
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment overrides from this file (default ./.env)")

	rootCmd.AddCommand(rangeCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(inCmd)
	rootCmd.AddCommand(outCmd)
	rootCmd.AddCommand(overtimeCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(holidaysCmd)
	rootCmd.AddCommand(outlookCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(configCmd)
}

// app bundles the loaded configuration and the services a command needs.
type app struct {
	ctx      context.Context
	base     string
	cfg      config.Config
	logger   zerolog.Logger
	store    storage.Store
	holidays *holiday.Service
	tracker  *tracker.Tracker
}

// openApp loads configuration, storage and the active range. It exits the
// process on failure, like every command does.
func openApp() *app {
	base, err := storage.BaseDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(base)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	if err := i18n.Init(cfg.Locale); err != nil {
		logger.Warn().Err(err).Msg("messages are not localized")
	}
	ctx := i18n.WithLocale(context.Background(), cfg.Locale)

	store, err := storage.Open(cfg.Storage.Backend, base, cfg.Storage.SQLitePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	holidays := holiday.NewService(holiday.NewClient(cfg.Holidays.APIURL), base, logger)
	tr := tracker.New(store, tracker.Options{
		Rules:    cfg.Rules,
		Policy:   cfg.Policy,
		Calendar: holidays,
		Now:      timeNow,
		Logger:   logger,
	})
	if err := tr.Load(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	return &app{
		ctx:      ctx,
		base:     base,
		cfg:      cfg,
		logger:   logger,
		store:    store,
		holidays: holidays,
		tracker:  tr,
	}
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("closing store")
	}
}

// fail prints err in the configured language and exits with its code.
func (a *app) fail(err error) {
	fmt.Fprintln(os.Stderr, describeError(a.ctx, err))
	a.close()
	os.Exit(exitCode(err))
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(lvl).
		With().Timestamp().Logger()
}

// exitCode is 1 for rejected input and 2 for storage or network failures.
func exitCode(err error) int {
	var (
		ve *attendance.ValidationError
		fe *timecalc.FormatError
		nr *tracker.NotInRangeError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &fe), errors.As(err, &nr), errors.Is(err, tracker.ErrNoRange):
		return 1
	default:
		return 2
	}
}

func describeError(ctx context.Context, err error) string {
	var nr *tracker.NotInRangeError
	switch {
	case errors.Is(err, tracker.ErrNoRange):
		return i18n.T(ctx, "error.no_range")
	case errors.As(err, &nr):
		return i18n.T(ctx, "error.not_in_range", map[string]any{"Date": nr.Date, "Start": nr.Start, "End": nr.End})
	default:
		return i18n.Error(ctx, err)
	}
}

// dateOrToday returns flag when set, else today's date.
func (a *app) dateOrToday(flag string) string {
	if flag != "" {
		return flag
	}
	return a.tracker.Today()
}
