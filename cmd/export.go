package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/attendance-time-calculator/internal/model"
	"github.com/Tiliavir/attendance-time-calculator/internal/tracker"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all stored records",
	Long: `Writes every stored record. json and yaml produce a bundle that
"atc import" can read back; csv is a flat table for spreadsheets.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json, yaml, csv")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	a := openApp()
	defer a.close()

	bundle, err := a.tracker.Export()
	if err != nil {
		a.fail(err)
	}

	var w io.Writer = os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			a.fail(fmt.Errorf("creating %s: %w", exportOutput, err))
		}
		defer f.Close()
		w = f
	}

	switch exportFormat {
	case "csv":
		printCSV(w, bundle.Records)
	case "json", "yaml":
		if err := tracker.WriteBundle(w, bundle, exportFormat); err != nil {
			a.fail(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q (use json, yaml or csv)\n", exportFormat)
		a.close()
		os.Exit(1)
	}

	if exportOutput != "" {
		fmt.Fprintf(os.Stderr, "Exported %d records to %s\n", len(bundle.Records), exportOutput)
	}
	return nil
}

func printCSV(w io.Writer, records []model.Record) {
	fmt.Fprintln(w, "date,check_in,check_out,applied_overtime,effective_hours,overtime,notes")
	for _, r := range records {
		out := ""
		if r.CheckOutTime != nil {
			out = *r.CheckOutTime
		}
		fmt.Fprintf(w, "%s,%s,%s,%s,%s,%s,%s\n",
			csvEscape(r.Date),
			csvEscape(r.CheckInTime),
			csvEscape(out),
			hoursCell(r.AppliedOvertime),
			hoursCell(r.EffectiveHours),
			hoursCell(r.Overtime),
			csvEscape(r.Notes),
		)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
