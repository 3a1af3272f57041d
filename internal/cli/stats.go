package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/claude-usage/internal/util"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show usage statistics",
	Long: `Show aggregated usage statistics as JSON.

Examples:
  claude-usage stats                         # today
  claude-usage stats --period daily --date 2025-06-01
  claude-usage stats --period hourly --date 2025-06-01
  claude-usage stats --period weekly --date 2025-06-02
  claude-usage stats --period monthly --month 2025-06
  claude-usage stats --period range --start 2025-06-01 --end 2025-06-15`,
	RunE: runStats,
}

var (
	statsPeriod string
	statsDate   string
	statsMonth  string
	statsStart  string
	statsEnd    string
)

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVarP(&statsPeriod, "period", "p", "daily", "Period: daily, hourly, weekly, monthly, range")
	statsCmd.Flags().StringVar(&statsDate, "date", "", "Target date (YYYY-MM-DD); for weekly, the week start (defaults to this week's Monday)")
	statsCmd.Flags().StringVar(&statsMonth, "month", "", "Target month (YYYY-MM), defaults to the current month")
	statsCmd.Flags().StringVar(&statsStart, "start", "", "Range start (YYYY-MM-DD)")
	statsCmd.Flags().StringVar(&statsEnd, "end", "", "Range end (YYYY-MM-DD)")
}

func runStats(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	ctx := context.Background()
	now := time.Now().UTC()

	day := now
	if statsDate != "" {
		day, err = util.ParseDay(statsDate)
		if err != nil {
			return err
		}
	}

	var result any
	switch statsPeriod {
	case "daily":
		summary, err := d.aggregator.Daily(day)
		if err != nil {
			return err
		}
		if summary == nil {
			return fmt.Errorf("no data available for %s", day.Format("2006-01-02"))
		}
		result = summary

	case "hourly":
		result, err = d.aggregator.Hourly(day)
		if err != nil {
			return err
		}

	case "weekly":
		start := util.WeekStart(day)
		if statsDate != "" {
			start = day
		}
		result, err = d.aggregator.Week(ctx, start)
		if err != nil {
			return err
		}

	case "monthly":
		year, month := now.Year(), int(now.Month())
		if statsMonth != "" {
			year, month, err = util.ParseMonth(statsMonth)
			if err != nil {
				return err
			}
		}
		result, err = d.aggregator.Month(ctx, year, month)
		if err != nil {
			return err
		}

	case "range":
		if statsStart == "" || statsEnd == "" {
			return fmt.Errorf("--start and --end are required for period range")
		}
		start, err := util.ParseDay(statsStart)
		if err != nil {
			return err
		}
		end, err := util.ParseDay(statsEnd)
		if err != nil {
			return err
		}
		if err := util.ValidateRange(start, end, d.cfg.MaxRangeDays); err != nil {
			return err
		}
		result, err = d.aggregator.Range(ctx, start, end)
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown period %q", statsPeriod)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
