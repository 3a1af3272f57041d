package pricing

import (
	"math"
	"testing"
)

func TestResolveLongestPrefix(t *testing.T) {
	tests := []struct {
		name      string
		model     string
		wantInput float64
	}{
		{"opus 4-1 dated id", "claude-opus-4-1-20250805", 15.00},
		{"opus 4-1 beats opus 4-", "claude-opus-4-12345", 15.00},
		{"opus 4- generic", "claude-opus-4-x", 15.00},
		{"opus 4-5", "claude-opus-4-5-20251101", 5.00},
		{"sonnet 4-5 dated id", "claude-sonnet-4-5-20250929", 3.00},
		{"haiku 3-5", "claude-haiku-3-5-20241022", 0.80},
		{"haiku 3 bare", "claude-haiku-3-20240307", 0.25},
		{"unknown model falls back to sonnet class", "some-future-model-x", 3.00},
		{"empty model falls back", "", 3.00},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.model); got.Input != tt.wantInput {
				t.Errorf("Resolve(%q).Input = %v, want %v", tt.model, got.Input, tt.wantInput)
			}
		})
	}
}

func TestResolveFallbackRates(t *testing.T) {
	got := Resolve("some-future-model-x")
	want := Rates{Input: 3.00, Output: 15.00, CacheRead: 0.30, CacheWrite: 3.75}
	if got != want {
		t.Errorf("fallback rates = %+v, want %+v", got, want)
	}
}

func TestCost(t *testing.T) {
	const model = "claude-sonnet-4-5-20250929"

	if got := Cost(model, 0, 0, 0, 0); got != 0 {
		t.Errorf("zero tokens cost = %v, want 0", got)
	}

	// (3000*3.00 + 1500*15.00) / 1e6
	got := Cost(model, 3000, 1500, 0, 0)
	if math.Abs(got-0.0315) > 1e-12 {
		t.Errorf("cost = %v, want 0.0315", got)
	}

	// Linear in each argument independently.
	base := Cost(model, 100, 200, 300, 400)
	double := Cost(model, 200, 200, 300, 400)
	if math.Abs((double-base)-Cost(model, 100, 0, 0, 0)) > 1e-12 {
		t.Errorf("cost not linear in input tokens: base=%v double=%v", base, double)
	}
}
