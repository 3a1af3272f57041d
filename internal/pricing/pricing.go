// Package pricing holds the Anthropic API pricing table and cost math.
//
// Pricing source: https://docs.anthropic.com/en/docs/about-claude/pricing
// Rates are USD per million tokens (MTok).
package pricing

import (
	"sort"
	"strings"
)

// Rates are per-MTok billing rates for one model class.
type Rates struct {
	Input      float64
	Output     float64
	CacheRead  float64
	CacheWrite float64
}

var table = map[string]Rates{
	"claude-opus-4-6":   {Input: 5.00, Output: 25.00, CacheRead: 0.50, CacheWrite: 6.25},
	"claude-opus-4-5":   {Input: 5.00, Output: 25.00, CacheRead: 0.50, CacheWrite: 6.25},
	"claude-opus-4-1":   {Input: 15.00, Output: 75.00, CacheRead: 1.50, CacheWrite: 18.75},
	"claude-opus-4-":    {Input: 15.00, Output: 75.00, CacheRead: 1.50, CacheWrite: 18.75},
	"claude-sonnet-4-5": {Input: 3.00, Output: 15.00, CacheRead: 0.30, CacheWrite: 3.75},
	"claude-sonnet-4-":  {Input: 3.00, Output: 15.00, CacheRead: 0.30, CacheWrite: 3.75},
	"claude-sonnet-3-7": {Input: 3.00, Output: 15.00, CacheRead: 0.30, CacheWrite: 3.75},
	"claude-haiku-4-5":  {Input: 1.00, Output: 5.00, CacheRead: 0.10, CacheWrite: 1.25},
	"claude-haiku-3-5":  {Input: 0.80, Output: 4.00, CacheRead: 0.08, CacheWrite: 1.00},
	"claude-haiku-3":    {Input: 0.25, Output: 1.25, CacheRead: 0.03, CacheWrite: 0.30},
}

// fallback is Sonnet-class pricing for unknown models.
var fallback = Rates{Input: 3.00, Output: 15.00, CacheRead: 0.30, CacheWrite: 3.75}

// prefixes sorted longest-first so overlapping entries resolve to the
// most specific one.
var prefixes = func() []string {
	ps := make([]string, 0, len(table))
	for p := range table {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool {
		if len(ps[i]) != len(ps[j]) {
			return len(ps[i]) > len(ps[j])
		}
		return ps[i] < ps[j]
	})
	return ps
}()

// Resolve returns per-MTok rates for a model via longest-prefix match,
// falling back to Sonnet-class rates for unknown models.
func Resolve(model string) Rates {
	for _, p := range prefixes {
		if strings.HasPrefix(model, p) {
			return table[p]
		}
	}
	return fallback
}

// Cost returns the USD cost of the given token counts under the model's
// resolved rates. No rounding happens here; callers round at the
// aggregate level.
func Cost(model string, inputTokens, outputTokens, cacheReadTokens, cacheCreationTokens float64) float64 {
	r := Resolve(model)
	return inputTokens*r.Input/1_000_000 +
		outputTokens*r.Output/1_000_000 +
		cacheReadTokens*r.CacheRead/1_000_000 +
		cacheCreationTokens*r.CacheWrite/1_000_000
}
