package stats

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/emiliopalmerini/claude-usage/internal/store"
)

// Range aggregates a date range: one daily summary per day with data,
// plus a composed aggregate. A range with no data at all returns a result
// with a nil aggregate and an empty daily list, not an error.
func (a *Aggregator) Range(ctx context.Context, start, end time.Time) (*RangeResult, error) {
	var daily []DailySummary
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days++
		s, err := a.Daily(d)
		if err != nil {
			return nil, err
		}
		if s != nil {
			daily = append(daily, *s)
		}
	}

	result := &RangeResult{
		PeriodStart:  start.Format(store.DayFormat),
		PeriodEnd:    end.Format(store.DayFormat),
		DaysCount:    days,
		DaysWithData: len(daily),
		Daily:        daily,
	}
	if len(daily) == 0 {
		result.Daily = []DailySummary{}
		return result, nil
	}
	result.Aggregate = computeAggregate(daily, start, end)
	return result, nil
}

// Week aggregates the 7-day week starting at start.
func (a *Aggregator) Week(ctx context.Context, start time.Time) (*RangeResult, error) {
	result, err := a.Range(ctx, start, start.AddDate(0, 0, 6))
	if err != nil {
		return nil, err
	}
	result.PeriodType = "week"
	return result, nil
}

// Month aggregates a calendar month. Days missing from local data fall
// back to the spreadsheet store; days found in neither source get an
// explicit zero row, so the daily series always has exactly
// days-in-month entries. The aggregate is recomputed from days with a
// nonzero cost or call count only, so zero placeholders cannot dilute
// the weighted averages.
func (a *Aggregator) Month(ctx context.Context, year, month int) (*RangeResult, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	result, err := a.Range(ctx, start, end)
	if err != nil {
		return nil, err
	}

	local := make(map[string]DailySummary, len(result.Daily))
	for _, d := range result.Daily {
		local[d.Date] = d
	}

	var fallback map[string]DailySummary
	if a.sheet != nil {
		fallback, err = a.sheet.ReadMonth(ctx, year, month)
		if err != nil {
			// Local aggregation must not be blocked by the external store.
			log.Printf("sheet fallback unavailable for %04d-%02d: %v", year, month, err)
			fallback = nil
		}
	}

	full := make([]DailySummary, 0, end.Day())
	for day := 1; day <= end.Day(); day++ {
		date := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		switch {
		case hasKey(local, date):
			full = append(full, local[date])
		case hasKey(fallback, date):
			full = append(full, fallback[date])
		default:
			full = append(full, DailySummary{Date: date})
		}
	}

	var dataDays []DailySummary
	for _, d := range full {
		if d.TotalCostUSD > 0 || d.APICalls > 0 {
			dataDays = append(dataDays, d)
		}
	}
	if len(dataDays) > 0 {
		result.Aggregate = computeAggregate(dataDays, start, end)
		result.DaysWithData = len(dataDays)
	}

	result.Daily = full
	result.PeriodType = "month"
	result.Month = fmt.Sprintf("%04d-%02d", year, month)
	return result, nil
}

func hasKey(m map[string]DailySummary, k string) bool {
	_, ok := m[k]
	return ok
}

// computeAggregate composes N daily summaries into one period summary.
// Sums are plain; success rate and API duration are weighted by call
// volume; top tools and the model breakdown are rebuilt from each day's
// structured detail when present, or its rendered strings otherwise.
func computeAggregate(daily []DailySummary, start, end time.Time) *PeriodSummary {
	var p PeriodSummary
	p.Date = fmt.Sprintf("%s to %s", start.Format(store.DayFormat), end.Format(store.DayFormat))

	var totalCost, totalActive float64
	var successWeighted, durationWeighted float64
	tools := newTally()
	merged := make(map[string]ModelUsage)

	for _, d := range daily {
		p.Sessions += d.Sessions
		p.UserPrompts += d.UserPrompts
		p.APICalls += d.APICalls
		p.InputTokens += d.InputTokens
		p.OutputTokens += d.OutputTokens
		p.CacheReadTokens += d.CacheReadTokens
		p.CacheCreationTokens += d.CacheCreationTokens
		p.TotalTokens += d.TotalTokens
		p.LinesAdded += d.LinesAdded
		p.LinesRemoved += d.LinesRemoved
		p.Commits += d.Commits
		p.PullRequests += d.PullRequests
		p.ToolCalls += d.ToolCalls
		p.APIErrors += d.APIErrors
		totalCost += d.TotalCostUSD
		totalActive += d.ActiveTimeHours

		successWeighted += d.ToolSuccessRatePct * float64(d.ToolCalls)
		durationWeighted += d.AvgAPIDurationMS * float64(d.APICalls)

		// One appearance per tool per day it made that day's top three.
		// Coarser than call counts, which the string form does not keep.
		for _, tool := range splitList(d.TopTools) {
			tools.add(tool, 1)
		}

		// Structured per-model detail beats re-parsing the lossy string.
		if len(d.PerModel) > 0 {
			for model, mu := range d.PerModel {
				m := merged[model]
				m.InputTokens += mu.InputTokens
				m.OutputTokens += mu.OutputTokens
				m.CacheReadTokens += mu.CacheReadTokens
				m.CacheCreationTokens += mu.CacheCreationTokens
				m.CostUSD += mu.CostUSD
				merged[model] = m
			}
		} else if d.ModelBreakdown != "" {
			for model, cost := range ParseModelBreakdown(d.ModelBreakdown) {
				m := merged[model]
				m.CostUSD += cost
				merged[model] = m
			}
		}
	}
	for model, mu := range merged {
		mu.CostUSD = round(mu.CostUSD, 6)
		merged[model] = mu
	}

	p.ActiveTimeHours = round(totalActive, 2)
	p.AvgActiveTimePerDayHours = round(totalActive/float64(len(daily)), 2)
	p.TotalCostUSD = round(totalCost, 4)
	if p.ToolCalls > 0 {
		p.ToolSuccessRatePct = round(successWeighted/float64(p.ToolCalls), 1)
	}
	if p.APICalls > 0 {
		p.AvgAPIDurationMS = round(durationWeighted/float64(p.APICalls), 1)
	}
	p.TopTools = tools.top(3)
	p.ModelBreakdown = RenderModelBreakdown(merged)
	p.PerModel = merged
	return &p
}

func splitList(s string) []string {
	var out []string
	for _, part := range splitTrim(s, ",") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
