package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/attendance-time-calculator/internal/tracker"
)

var importFormat string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import records from an export bundle",
	Long: `Reads a bundle written by "atc export". Derived hours are recomputed with
the current rules. Nothing is saved if any record is invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFormat, "format", "", "Input format: json or yaml (default from the file extension)")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	format := importFormat
	if format == "" {
		format = formatFromPath(path)
	}

	a := openApp()
	defer a.close()

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		a.close()
		os.Exit(1)
	}
	defer f.Close()

	bundle, err := tracker.ReadBundle(f, format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		a.close()
		os.Exit(1)
	}
	n, err := a.tracker.Import(bundle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %s\n", describeError(a.ctx, err))
		a.close()
		os.Exit(1)
	}

	fmt.Printf("✓ Imported %d records from %s\n", n, path)
	return nil
}

// formatFromPath picks yaml for .yaml/.yml files and json otherwise.
func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}
