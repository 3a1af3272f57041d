// Package stats is the aggregation core: it folds one day's event records
// into a fixed-shape daily summary and composes daily summaries into
// week, month, and arbitrary-range aggregates.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ModelUsage is the per-model slice of a summary.
type ModelUsage struct {
	InputTokens         int64   `json:"input_tokens"`
	OutputTokens        int64   `json:"output_tokens"`
	CacheReadTokens     int64   `json:"cache_read_tokens"`
	CacheCreationTokens int64   `json:"cache_creation_tokens"`
	CostUSD             float64 `json:"cost_usd"`
}

// DailySummary is the canonical per-day aggregation output, and the shape
// of one row of the spreadsheet store. TopTools and ModelBreakdown are
// rendered strings because the spreadsheet store is flat text; PerModel
// carries the structured form and is preferred when composing.
type DailySummary struct {
	Date                string                `json:"date"`
	Sessions            int                   `json:"sessions"`
	ActiveTimeHours     float64               `json:"active_time_hours"`
	UserPrompts         int                   `json:"user_prompts"`
	APICalls            int                   `json:"api_calls"`
	TotalCostUSD        float64               `json:"total_cost_usd"`
	InputTokens         int64                 `json:"input_tokens"`
	OutputTokens        int64                 `json:"output_tokens"`
	CacheReadTokens     int64                 `json:"cache_read_tokens"`
	CacheCreationTokens int64                 `json:"cache_creation_tokens"`
	TotalTokens         int64                 `json:"total_tokens"`
	LinesAdded          int                   `json:"lines_added"`
	LinesRemoved        int                   `json:"lines_removed"`
	Commits             int                   `json:"commits"`
	PullRequests        int                   `json:"pull_requests"`
	ToolCalls           int                   `json:"tool_calls"`
	ToolSuccessRatePct  float64               `json:"tool_success_rate_pct"`
	TopTools            string                `json:"top_tools"`
	APIErrors           int                   `json:"api_errors"`
	AvgAPIDurationMS    float64               `json:"avg_api_duration_ms"`
	ModelBreakdown      string                `json:"model_breakdown"`
	PerModel            map[string]ModelUsage `json:"per_model_detail,omitempty"`
}

// PeriodSummary is a DailySummary-shaped aggregate over multiple days.
// Date carries a "<start> to <end>" label.
type PeriodSummary struct {
	DailySummary
	AvgActiveTimePerDayHours float64 `json:"avg_active_time_per_day_hours"`
}

// RangeResult is the output of the period composer.
type RangeResult struct {
	PeriodStart  string         `json:"period_start"`
	PeriodEnd    string         `json:"period_end"`
	DaysCount    int            `json:"days_count"`
	DaysWithData int            `json:"days_with_data"`
	PeriodType   string         `json:"period_type,omitempty"`
	Month        string         `json:"month,omitempty"`
	Aggregate    *PeriodSummary `json:"aggregate"`
	Daily        []DailySummary `json:"daily"`
}

// HourBucket is one hour slice of a day.
type HourBucket struct {
	Hour                int     `json:"hour"`
	TimeRange           string  `json:"time_range"`
	APICalls            int     `json:"api_calls"`
	InputTokens         int64   `json:"input_tokens"`
	OutputTokens        int64   `json:"output_tokens"`
	CacheReadTokens     int64   `json:"cache_read_tokens"`
	CacheCreationTokens int64   `json:"cache_creation_tokens"`
	TotalTokens         int64   `json:"total_tokens"`
	TotalCost           float64 `json:"total_cost"`
	ToolCalls           int     `json:"tool_calls"`
	AvgDurationMS       float64 `json:"avg_duration_ms"`
}

// HourlySeries covers one day in 24 fixed hour buckets.
type HourlySeries struct {
	Date        string       `json:"date"`
	Granularity string       `json:"granularity"`
	Timezone    string       `json:"timezone"`
	Hourly      []HourBucket `json:"hourly"`
}

func round(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}

// FlexFloat parses a number that may carry currency or percent
// formatting ("$1,234.56", "45.6%"). Unparsable values coerce to 0.
func FlexFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("$", "", ",", "", "%", "").Replace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// RenderModelBreakdown renders per-model costs as the flat
// "<model>: $<cost 2dp>" form, comma separated, sorted by model name.
func RenderModelBreakdown(models map[string]ModelUsage) string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: $%.2f", name, models[name].CostUSD))
	}
	return strings.Join(parts, ", ")
}

// ParseModelBreakdown re-parses a rendered breakdown string into
// per-model costs. Entries that do not match "<model>: $<cost>" are
// skipped. String parsing loses token-level detail; composing prefers
// the structured per-model map when one is present.
func ParseModelBreakdown(s string) map[string]float64 {
	costs := make(map[string]float64)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		model, costStr, ok := strings.Cut(part, ": $")
		if !ok {
			continue
		}
		cost, err := strconv.ParseFloat(strings.TrimSpace(costStr), 64)
		if err != nil {
			continue
		}
		costs[strings.TrimSpace(model)] += cost
	}
	return costs
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// tally counts names while remembering first-seen order, so that ranking
// ties break stably.
type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(name string, n int) {
	if _, seen := t.counts[name]; !seen {
		t.order = append(t.order, name)
	}
	t.counts[name] += n
}

// top returns the n most frequent names, ties broken by first-seen order,
// joined with ", ".
func (t *tally) top(n int) string {
	ranked := make([]string, len(t.order))
	copy(ranked, t.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return t.counts[ranked[i]] > t.counts[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return strings.Join(ranked, ", ")
}
