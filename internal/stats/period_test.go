package stats

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/emiliopalmerini/claude-usage/internal/event"
	"github.com/emiliopalmerini/claude-usage/internal/store"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(store.DayFormat, s)
	if err != nil {
		t.Fatalf("parse day %q: %v", s, err)
	}
	return d
}

// writeDay writes one api_request log line for the given date into dir.
func writeDay(t *testing.T, dir, date, model string, input, output int) {
	t.Helper()
	line := fmt.Sprintf(
		`{"ts":"%sT10:00:00Z","type":"log","event":"api_request","data":{"attributes":{"model":"%s","input_tokens":%d,"output_tokens":%d,"duration_ms":200}}}`,
		date, model, input, output,
	)
	path := filepath.Join(dir, date+".jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, line); err != nil {
		t.Fatal(err)
	}
}

func TestComputeAggregateSingleDay(t *testing.T) {
	d := aggregateDay("2025-06-01", []event.Record{
		apiRequest("claude-sonnet-4-5-20250929", 1000, 500),
		logRec("tool_result", map[string]any{"tool_name": "Read", "success": true}),
	})
	agg := computeAggregate([]DailySummary{d}, day(t, "2025-06-01"), day(t, "2025-06-01"))

	if agg.InputTokens != d.InputTokens || agg.APICalls != d.APICalls {
		t.Errorf("sums differ from the single source day")
	}
	if agg.ToolSuccessRatePct != d.ToolSuccessRatePct {
		t.Errorf("success rate = %v, want %v", agg.ToolSuccessRatePct, d.ToolSuccessRatePct)
	}
	if agg.AvgAPIDurationMS != d.AvgAPIDurationMS {
		t.Errorf("avg duration = %v, want %v", agg.AvgAPIDurationMS, d.AvgAPIDurationMS)
	}
	if agg.TotalCostUSD != d.TotalCostUSD {
		t.Errorf("cost = %v, want %v", agg.TotalCostUSD, d.TotalCostUSD)
	}
	if agg.Date != "2025-06-01 to 2025-06-01" {
		t.Errorf("date label = %q", agg.Date)
	}
}

func TestComputeAggregateWeightedAverages(t *testing.T) {
	// Day one: 100 calls at 90% success; day two: 300 calls at 50%.
	// Weighted: (90*100 + 50*300) / 400 = 60.
	daily := []DailySummary{
		{Date: "2025-06-01", ToolCalls: 100, ToolSuccessRatePct: 90, APICalls: 100, AvgAPIDurationMS: 100},
		{Date: "2025-06-02", ToolCalls: 300, ToolSuccessRatePct: 50, APICalls: 300, AvgAPIDurationMS: 300},
	}
	agg := computeAggregate(daily, day(t, "2025-06-01"), day(t, "2025-06-02"))

	if agg.ToolSuccessRatePct != 60.0 {
		t.Errorf("weighted success rate = %v, want 60.0", agg.ToolSuccessRatePct)
	}
	if agg.AvgAPIDurationMS != 250.0 {
		t.Errorf("weighted duration = %v, want 250.0", agg.AvgAPIDurationMS)
	}
}

func TestComputeAggregateUniformRate(t *testing.T) {
	var daily []DailySummary
	for i := 1; i <= 7; i++ {
		daily = append(daily, DailySummary{
			Date: fmt.Sprintf("2025-06-%02d", i), ToolCalls: 10 * i, ToolSuccessRatePct: 83.3,
		})
	}
	agg := computeAggregate(daily, day(t, "2025-06-01"), day(t, "2025-06-07"))
	if agg.ToolSuccessRatePct != 83.3 {
		t.Errorf("uniform rate = %v, want 83.3 unchanged", agg.ToolSuccessRatePct)
	}
}

func TestComputeAggregateModelMerge(t *testing.T) {
	daily := []DailySummary{
		// Structured detail present: the string is ignored even when it disagrees.
		{
			Date:           "2025-06-01",
			PerModel:       map[string]ModelUsage{"claude-sonnet-4-5": {InputTokens: 1000, CostUSD: 0.01}},
			ModelBreakdown: "claude-opus-4-1: $9.99",
		},
		// String only: cost is recovered, token detail is gone.
		{
			Date:           "2025-06-02",
			ModelBreakdown: "claude-sonnet-4-5: $0.02, claude-haiku-4-5: $0.05",
		},
	}
	agg := computeAggregate(daily, day(t, "2025-06-01"), day(t, "2025-06-02"))

	sonnet := agg.PerModel["claude-sonnet-4-5"]
	if sonnet.CostUSD != 0.03 || sonnet.InputTokens != 1000 {
		t.Errorf("sonnet merge = %+v, want cost 0.03 tokens 1000", sonnet)
	}
	if _, ok := agg.PerModel["claude-opus-4-1"]; ok {
		t.Error("string breakdown must not contribute when structured detail exists")
	}
	if agg.PerModel["claude-haiku-4-5"].CostUSD != 0.05 {
		t.Errorf("haiku cost = %v, want 0.05", agg.PerModel["claude-haiku-4-5"].CostUSD)
	}
	if agg.ModelBreakdown != "claude-haiku-4-5: $0.05, claude-sonnet-4-5: $0.03" {
		t.Errorf("rendered breakdown = %q", agg.ModelBreakdown)
	}
}

func TestComputeAggregateTopTools(t *testing.T) {
	daily := []DailySummary{
		{Date: "2025-06-01", TopTools: "Read, Bash"},
		{Date: "2025-06-02", TopTools: "Bash, Edit"},
		{Date: "2025-06-03", TopTools: "Bash"},
	}
	agg := computeAggregate(daily, day(t, "2025-06-01"), day(t, "2025-06-03"))
	if agg.TopTools != "Bash, Read, Edit" {
		t.Errorf("top tools = %q, want %q", agg.TopTools, "Bash, Read, Edit")
	}
}

func TestRangeEmpty(t *testing.T) {
	a := New(store.New(t.TempDir()))
	res, err := a.Range(context.Background(), day(t, "2025-06-01"), day(t, "2025-06-03"))
	if err != nil {
		t.Fatal(err)
	}
	if res.DaysCount != 3 || res.DaysWithData != 0 {
		t.Errorf("days = %d/%d, want 3/0", res.DaysCount, res.DaysWithData)
	}
	if res.Aggregate != nil {
		t.Error("aggregate must be nil for an empty range")
	}
	if res.Daily == nil || len(res.Daily) != 0 {
		t.Errorf("daily must be an empty non-nil slice, got %#v", res.Daily)
	}
}

func TestWeek(t *testing.T) {
	dir := t.TempDir()
	writeDay(t, dir, "2025-06-02", "claude-sonnet-4-5", 1000, 500)
	writeDay(t, dir, "2025-06-05", "claude-sonnet-4-5", 2000, 1000)

	a := New(store.New(dir))
	res, err := a.Week(context.Background(), day(t, "2025-06-02"))
	if err != nil {
		t.Fatal(err)
	}
	if res.PeriodType != "week" {
		t.Errorf("period type = %q, want week", res.PeriodType)
	}
	if res.PeriodStart != "2025-06-02" || res.PeriodEnd != "2025-06-08" {
		t.Errorf("bounds = %s..%s", res.PeriodStart, res.PeriodEnd)
	}
	if res.DaysCount != 7 || res.DaysWithData != 2 {
		t.Errorf("days = %d/%d, want 7/2", res.DaysCount, res.DaysWithData)
	}
	if res.Aggregate == nil || res.Aggregate.InputTokens != 3000 {
		t.Errorf("aggregate input tokens, got %+v", res.Aggregate)
	}
}

type fakeSheet struct {
	rows map[string]DailySummary
	err  error
}

func (f *fakeSheet) ReadMonth(ctx context.Context, year, month int) (map[string]DailySummary, error) {
	return f.rows, f.err
}

func TestMonth(t *testing.T) {
	dir := t.TempDir()
	writeDay(t, dir, "2025-06-10", "claude-sonnet-4-5", 1000, 500)

	sheet := &fakeSheet{rows: map[string]DailySummary{
		"2025-06-05": {Date: "2025-06-05", APICalls: 4, TotalCostUSD: 0.5, ToolCalls: 10, ToolSuccessRatePct: 80},
		// Local data for the 10th must win over this row.
		"2025-06-10": {Date: "2025-06-10", APICalls: 99, TotalCostUSD: 9.9},
	}}
	a := New(store.New(dir)).WithSummarySource(sheet)

	res, err := a.Month(context.Background(), 2025, 6)
	if err != nil {
		t.Fatal(err)
	}
	if res.PeriodType != "month" || res.Month != "2025-06" {
		t.Errorf("period = %q %q", res.PeriodType, res.Month)
	}
	if len(res.Daily) != 30 {
		t.Fatalf("daily entries = %d, want 30", len(res.Daily))
	}
	if res.Daily[0].Date != "2025-06-01" || res.Daily[29].Date != "2025-06-30" {
		t.Errorf("series bounds = %s..%s", res.Daily[0].Date, res.Daily[29].Date)
	}
	if res.Daily[4].APICalls != 4 {
		t.Errorf("fallback day api_calls = %d, want 4", res.Daily[4].APICalls)
	}
	if res.Daily[9].APICalls != 1 {
		t.Errorf("local day api_calls = %d, want 1 (local wins)", res.Daily[9].APICalls)
	}
	if res.Daily[0].APICalls != 0 || res.Daily[0].Date == "" {
		t.Errorf("zero-fill day = %+v", res.Daily[0])
	}
	if res.DaysWithData != 2 {
		t.Errorf("days with data = %d, want 2", res.DaysWithData)
	}
	// Zero placeholders must not dilute the weighted success rate:
	// (80*10 + 100*0) / 10 = 80 stays 80 only if the 28 empty days are
	// excluded from the aggregate.
	if res.Aggregate.ToolSuccessRatePct != 80.0 {
		t.Errorf("success rate = %v, want 80.0", res.Aggregate.ToolSuccessRatePct)
	}
	if res.Aggregate.APICalls != 5 {
		t.Errorf("aggregate api_calls = %d, want 5", res.Aggregate.APICalls)
	}
}

func TestMonthSheetError(t *testing.T) {
	dir := t.TempDir()
	writeDay(t, dir, "2025-06-10", "claude-sonnet-4-5", 1000, 500)

	a := New(store.New(dir)).WithSummarySource(&fakeSheet{err: errors.New("network down")})
	res, err := a.Month(context.Background(), 2025, 6)
	if err != nil {
		t.Fatalf("sheet errors must not fail local aggregation: %v", err)
	}
	if res.DaysWithData != 1 || len(res.Daily) != 30 {
		t.Errorf("days = %d/%d, want 1/30", res.DaysWithData, len(res.Daily))
	}
}

func TestMonthNoSheet(t *testing.T) {
	a := New(store.New(t.TempDir()))
	res, err := a.Month(context.Background(), 2025, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Daily) != 28 {
		t.Errorf("daily entries = %d, want 28", len(res.Daily))
	}
	if res.Aggregate != nil {
		t.Error("aggregate must stay nil for a month with no data anywhere")
	}
}
