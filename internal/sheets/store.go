// Package sheets is the external store of daily summary rows: a flat
// table keyed by date with the fixed 21-column header. Appends refuse
// duplicate dates; a month read feeds the monthly aggregation fallback.
package sheets

import (
	"context"
	"fmt"
	"strconv"

	"github.com/emiliopalmerini/claude-usage/internal/stats"
)

// Headers is the exact column set and order of one summary row. Order is
// load-bearing: historical spreadsheet data depends on it.
var Headers = []string{
	"Date",
	"Sessions",
	"Active Time (hrs)",
	"User Prompts",
	"API Calls",
	"Total Cost ($)",
	"Input Tokens",
	"Output Tokens",
	"Cache Read Tokens",
	"Cache Creation Tokens",
	"Total Tokens",
	"Lines Added",
	"Lines Removed",
	"Commits",
	"Pull Requests",
	"Tool Calls",
	"Tool Success Rate (%)",
	"Top Tools",
	"API Errors",
	"Avg API Duration (ms)",
	"Model Breakdown",
}

// RowStore is a date-keyed table of daily summaries.
type RowStore interface {
	// Append inserts one row. A duplicate date is a warned no-op, not an
	// error.
	Append(ctx context.Context, row stats.DailySummary) error
	// ReadMonth returns the month's rows keyed by ISO date.
	ReadMonth(ctx context.Context, year, month int) (map[string]stats.DailySummary, error)
}

// MarshalRow renders a summary as one 21-column row.
func MarshalRow(s stats.DailySummary) []string {
	return []string{
		s.Date,
		strconv.Itoa(s.Sessions),
		formatFloat(s.ActiveTimeHours),
		strconv.Itoa(s.UserPrompts),
		strconv.Itoa(s.APICalls),
		formatFloat(s.TotalCostUSD),
		strconv.FormatInt(s.InputTokens, 10),
		strconv.FormatInt(s.OutputTokens, 10),
		strconv.FormatInt(s.CacheReadTokens, 10),
		strconv.FormatInt(s.CacheCreationTokens, 10),
		strconv.FormatInt(s.TotalTokens, 10),
		strconv.Itoa(s.LinesAdded),
		strconv.Itoa(s.LinesRemoved),
		strconv.Itoa(s.Commits),
		strconv.Itoa(s.PullRequests),
		strconv.Itoa(s.ToolCalls),
		formatFloat(s.ToolSuccessRatePct),
		s.TopTools,
		strconv.Itoa(s.APIErrors),
		formatFloat(s.AvgAPIDurationMS),
		s.ModelBreakdown,
	}
}

// UnmarshalRow parses one row back into a summary. Numeric cells may
// carry currency or percent formatting from a round-trip through an
// external spreadsheet; unparsable cells coerce to zero. The structured
// per-model detail does not survive the flat form, so the returned
// summary carries only the rendered breakdown string.
func UnmarshalRow(row []string) (stats.DailySummary, error) {
	if len(row) < len(Headers) {
		return stats.DailySummary{}, fmt.Errorf("row has %d columns, want %d", len(row), len(Headers))
	}
	return stats.DailySummary{
		Date:                row[0],
		Sessions:            int(stats.FlexFloat(row[1])),
		ActiveTimeHours:     stats.FlexFloat(row[2]),
		UserPrompts:         int(stats.FlexFloat(row[3])),
		APICalls:            int(stats.FlexFloat(row[4])),
		TotalCostUSD:        stats.FlexFloat(row[5]),
		InputTokens:         int64(stats.FlexFloat(row[6])),
		OutputTokens:        int64(stats.FlexFloat(row[7])),
		CacheReadTokens:     int64(stats.FlexFloat(row[8])),
		CacheCreationTokens: int64(stats.FlexFloat(row[9])),
		TotalTokens:         int64(stats.FlexFloat(row[10])),
		LinesAdded:          int(stats.FlexFloat(row[11])),
		LinesRemoved:        int(stats.FlexFloat(row[12])),
		Commits:             int(stats.FlexFloat(row[13])),
		PullRequests:        int(stats.FlexFloat(row[14])),
		ToolCalls:           int(stats.FlexFloat(row[15])),
		ToolSuccessRatePct:  stats.FlexFloat(row[16]),
		TopTools:            row[17],
		APIErrors:           int(stats.FlexFloat(row[18])),
		AvgAPIDurationMS:    stats.FlexFloat(row[19]),
		ModelBreakdown:      row[20],
	}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func monthPrefix(year, month int) string {
	return fmt.Sprintf("%04d-%02d-", year, month)
}
