package stats

import (
	"fmt"
	"time"

	"github.com/emiliopalmerini/claude-usage/internal/event"
	"github.com/emiliopalmerini/claude-usage/internal/store"
)

// Hourly partitions one day's records into 24 fixed hour buckets by each
// record's own timestamp. Records without a parseable timestamp are
// dropped from the hourly view only; the daily aggregator still counts
// them. All 24 buckets are always present, zero-filled when empty.
//
// Bucket cost sums a cost_usd attribute directly rather than going
// through the pricing table; the daily aggregator does the opposite.
func (a *Aggregator) Hourly(day time.Time) (*HourlySeries, error) {
	records, err := a.store.Load(day)
	if err != nil {
		return nil, err
	}

	buckets := make([][]event.Record, 24)
	for _, r := range records {
		t, ok := r.Time()
		if !ok {
			continue
		}
		buckets[t.Hour()] = append(buckets[t.Hour()], r)
	}

	series := &HourlySeries{
		Date:        day.Format(store.DayFormat),
		Granularity: "1h",
		Timezone:    "UTC",
		Hourly:      make([]HourBucket, 0, 24),
	}
	for hour := 0; hour < 24; hour++ {
		hr := buckets[hour]

		input := sumAttr(hr, "api_request", "input_tokens")
		output := sumAttr(hr, "api_request", "output_tokens")
		cacheRead := sumAttr(hr, "api_request", "cache_read_tokens")
		cacheCreation := sumAttr(hr, "api_request", "cache_creation_tokens")

		series.Hourly = append(series.Hourly, HourBucket{
			Hour:                hour,
			TimeRange:           fmt.Sprintf("%02d:00-%02d:00", hour, hour+1),
			APICalls:            countLog(hr, "api_request"),
			InputTokens:         int64(input),
			OutputTokens:        int64(output),
			CacheReadTokens:     int64(cacheRead),
			CacheCreationTokens: int64(cacheCreation),
			TotalTokens:         int64(input + output + cacheRead + cacheCreation),
			TotalCost:           round(sumAttr(hr, "api_request", "cost_usd"), 4),
			ToolCalls:           countLog(hr, "tool_result"),
			AvgDurationMS:       round(avgAttr(hr, "api_request", "duration_ms"), 1),
		})
	}
	return series, nil
}
