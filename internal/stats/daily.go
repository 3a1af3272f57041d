package stats

import (
	"context"
	"time"

	"github.com/emiliopalmerini/claude-usage/internal/event"
	"github.com/emiliopalmerini/claude-usage/internal/pricing"
	"github.com/emiliopalmerini/claude-usage/internal/store"
)

// SummarySource provides daily summary rows keyed by date, used as the
// fallback data source for monthly aggregation.
type SummarySource interface {
	ReadMonth(ctx context.Context, year, month int) (map[string]DailySummary, error)
}

// Aggregator computes daily, hourly and multi-day usage statistics from
// the event store. Every computation is a pure function of the day's
// records; no state is shared between calls.
type Aggregator struct {
	store *store.Store
	sheet SummarySource // optional, monthly fallback only
}

func New(st *store.Store) *Aggregator {
	return &Aggregator{store: st}
}

// WithSummarySource sets the fallback source consulted by Month for days
// without local data.
func (a *Aggregator) WithSummarySource(src SummarySource) *Aggregator {
	a.sheet = src
	return a
}

// Daily aggregates one day's records into a summary. A day with no data
// returns nil, which is distinct from an all-zero summary.
func (a *Aggregator) Daily(day time.Time) (*DailySummary, error) {
	records, err := a.store.Load(day)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	s := aggregateDay(day.Format(store.DayFormat), records)
	return &s, nil
}

func aggregateDay(date string, records []event.Record) DailySummary {
	// Token sums across api_request records of either kind, attributes
	// first, body as fallback.
	inputTokens := sumAttr(records, "api_request", "input_tokens")
	outputTokens := sumAttr(records, "api_request", "output_tokens")
	cacheRead := sumAttr(records, "api_request", "cache_read_tokens")
	cacheCreation := sumAttr(records, "api_request", "cache_creation_tokens")
	totalTokens := inputTokens + outputTokens + cacheRead + cacheCreation

	// Tool stats. A tool_result without a success signal counts as a
	// success; the lenient default materially shapes the rate metric and
	// is kept on purpose.
	tools := newTally()
	toolCalls, toolSuccesses := 0, 0
	for _, r := range records {
		if !r.Is(event.KindLog, "tool_result") {
			continue
		}
		name := r.AttrString("tool_name", "tool")
		if name == "" {
			name = "unknown"
		}
		tools.add(name, 1)
		toolCalls++
		if r.AttrBool(true, "success", "is_success") {
			toolSuccesses++
		}
	}
	successRate := 0.0
	if toolCalls > 0 {
		successRate = float64(toolSuccesses) / float64(toolCalls) * 100
	}

	// Per-model breakdown: tokens accumulate as running sums, cost
	// accumulates record by record through the pricing table.
	models := make(map[string]ModelUsage)
	for _, r := range records {
		if r.Event != "api_request" {
			continue
		}
		model := r.AttrString("model")
		if model == "" {
			model = "unknown"
		}
		in, _ := r.AttrFloat("input_tokens")
		out, _ := r.AttrFloat("output_tokens")
		cr, _ := r.AttrFloat("cache_read_tokens")
		cc, _ := r.AttrFloat("cache_creation_tokens")

		mu := models[model]
		mu.InputTokens += int64(in)
		mu.OutputTokens += int64(out)
		mu.CacheReadTokens += int64(cr)
		mu.CacheCreationTokens += int64(cc)
		mu.CostUSD += pricing.Cost(model, in, out, cr, cc)
		models[model] = mu
	}
	totalCost := 0.0
	for model, mu := range models {
		mu.CostUSD = round(mu.CostUSD, 6)
		models[model] = mu
		totalCost += mu.CostUSD
	}

	// Unique sessions: an explicit session.count metric wins; otherwise
	// distinct session ids, and a day with any data implies at least one.
	sessionIDs := make(map[string]struct{})
	for _, r := range records {
		if sid := r.ResourceString("session.id", "service.instance.id"); sid != "" {
			sessionIDs[sid] = struct{}{}
		}
	}
	sessions := int(metricSum(records, "session.count", nil))
	if sessions == 0 {
		sessions = len(sessionIDs)
	}
	if sessions == 0 {
		sessions = 1
	}

	return DailySummary{
		Date:                date,
		Sessions:            sessions,
		ActiveTimeHours:     round(metricSum(records, "active_time.total", nil)/3600, 2),
		UserPrompts:         countLog(records, "user_prompt"),
		APICalls:            countLog(records, "api_request"),
		TotalCostUSD:        round(totalCost, 4),
		InputTokens:         int64(inputTokens),
		OutputTokens:        int64(outputTokens),
		CacheReadTokens:     int64(cacheRead),
		CacheCreationTokens: int64(cacheCreation),
		TotalTokens:         int64(totalTokens),
		LinesAdded:          int(metricSum(records, "lines_of_code.count", map[string]string{"type": "added"})),
		LinesRemoved:        int(metricSum(records, "lines_of_code.count", map[string]string{"type": "removed"})),
		Commits:             int(metricSum(records, "commit.count", nil)),
		PullRequests:        int(metricSum(records, "pull_request.count", nil)),
		ToolCalls:           toolCalls,
		ToolSuccessRatePct:  round(successRate, 1),
		TopTools:            tools.top(3),
		APIErrors:           countLog(records, "api_error"),
		AvgAPIDurationMS:    round(avgAttr(records, "api_request", "duration_ms"), 1),
		ModelBreakdown:      RenderModelBreakdown(models),
		PerModel:            models,
	}
}

// sumAttr sums a numeric attribute over every record with the given event
// name, regardless of kind.
func sumAttr(records []event.Record, name, key string) float64 {
	total := 0.0
	for _, r := range records {
		if r.Event != name {
			continue
		}
		if v, ok := r.AttrFloat(key); ok {
			total += v
		}
	}
	return total
}

// avgAttr averages a numeric attribute over log records with the given
// event name; records lacking the attribute do not dilute the mean.
func avgAttr(records []event.Record, name, key string) float64 {
	sum, n := 0.0, 0
	for _, r := range records {
		if !r.Is(event.KindLog, name) {
			continue
		}
		if v, ok := r.AttrFloat(key); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// metricSum sums metric values matching the event name and an optional
// attribute filter.
func metricSum(records []event.Record, name string, attrFilter map[string]string) float64 {
	total := 0.0
	for _, r := range records {
		if !r.Is(event.KindMetric, name) {
			continue
		}
		if !matchAttrs(r, attrFilter) {
			continue
		}
		if v, ok := r.Value(); ok {
			total += v
		}
	}
	return total
}

func matchAttrs(r event.Record, filter map[string]string) bool {
	for k, want := range filter {
		if event.String(r.Data.Attributes[k]) != want {
			return false
		}
	}
	return true
}

func countLog(records []event.Record, name string) int {
	n := 0
	for _, r := range records {
		if r.Is(event.KindLog, name) {
			n++
		}
	}
	return n
}
