package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/claude-usage/internal/util"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Aggregate one day's usage and upload it to the summary store",
	Long: `Aggregate one day of telemetry into a daily summary row.

The summary is printed as JSON, then appended to the configured summary
store (Turso or a local CSV sheet) unless --dry-run is given. The local
aggregation always happens first; an upload failure exits nonzero but
never affects the computed summary.

Examples:
  claude-usage aggregate                     # today
  claude-usage aggregate --date 2025-06-01
  claude-usage aggregate --dry-run`,
	RunE: runAggregate,
}

var (
	aggregateDate   string
	aggregateDryRun bool
)

func init() {
	rootCmd.AddCommand(aggregateCmd)

	aggregateCmd.Flags().StringVar(&aggregateDate, "date", "", "Target date (YYYY-MM-DD), defaults to today")
	aggregateCmd.Flags().BoolVar(&aggregateDryRun, "dry-run", false, "Print the summary without uploading")
}

func runAggregate(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	day := time.Now().UTC()
	if aggregateDate != "" {
		day, err = util.ParseDay(aggregateDate)
		if err != nil {
			return err
		}
	}

	summary, err := d.aggregator.Daily(day)
	if err != nil {
		return err
	}
	if summary == nil {
		log.Printf("no data to aggregate for %s", day.Format("2006-01-02"))
		return nil
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))

	if aggregateDryRun {
		return nil
	}
	if d.sheet == nil {
		log.Printf("no summary store configured, skipping upload")
		return nil
	}
	if err := d.sheet.Append(context.Background(), *summary); err != nil {
		log.Printf("failed to upload summary: %v", err)
		return fmt.Errorf("upload summary for %s: %w", summary.Date, err)
	}
	log.Printf("uploaded summary for %s", summary.Date)
	return nil
}
