package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/claude-usage/internal/sheets"
	"github.com/emiliopalmerini/claude-usage/internal/util"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export daily summaries to CSV",
	Long: `Export a date range of daily summaries as CSV.

Examples:
  claude-usage export --start 2025-06-01 --end 2025-06-30
  claude-usage export --start 2025-06-01 --end 2025-06-30 --output june.csv`,
	RunE: runExport,
}

var (
	exportStart  string
	exportEnd    string
	exportOutput string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportStart, "start", "", "Range start (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportEnd, "end", "", "Range end (YYYY-MM-DD)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
	exportCmd.MarkFlagRequired("start")
	exportCmd.MarkFlagRequired("end")
}

func runExport(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	start, err := util.ParseDay(exportStart)
	if err != nil {
		return err
	}
	end, err := util.ParseDay(exportEnd)
	if err != nil {
		return err
	}
	if err := util.ValidateRange(start, end, d.cfg.MaxRangeDays); err != nil {
		return err
	}

	result, err := d.aggregator.Range(context.Background(), start, end)
	if err != nil {
		return err
	}
	if result.DaysWithData == 0 {
		return fmt.Errorf("no data available between %s and %s", result.PeriodStart, result.PeriodEnd)
	}

	var out io.Writer = os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOutput, err)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	if err := w.Write(sheets.Headers); err != nil {
		return err
	}
	for _, day := range result.Daily {
		if err := w.Write(sheets.MarshalRow(day)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
