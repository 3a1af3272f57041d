package stats

import "testing"

func TestFlexFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.5", 1.5},
		{"$1,234.56", 1234.56},
		{"45.6%", 45.6},
		{" 7 ", 7},
		{"", 0},
		{"n/a", 0},
		{"$", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FlexFloat(tt.in); got != tt.want {
				t.Errorf("FlexFloat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestModelBreakdownRoundTrip(t *testing.T) {
	models := map[string]ModelUsage{
		"claude-sonnet-4-5": {CostUSD: 0.0315},
		"claude-opus-4-1":   {CostUSD: 1.2},
	}
	s := RenderModelBreakdown(models)
	if s != "claude-opus-4-1: $1.20, claude-sonnet-4-5: $0.03" {
		t.Fatalf("rendered = %q", s)
	}

	parsed := ParseModelBreakdown(s)
	if parsed["claude-opus-4-1"] != 1.20 || parsed["claude-sonnet-4-5"] != 0.03 {
		t.Errorf("parsed = %v", parsed)
	}
}

func TestParseModelBreakdownSkipsGarbage(t *testing.T) {
	parsed := ParseModelBreakdown("not a breakdown, claude-haiku-4-5: $0.10, bad: $x")
	if len(parsed) != 1 || parsed["claude-haiku-4-5"] != 0.10 {
		t.Errorf("parsed = %v", parsed)
	}
}

func TestRound(t *testing.T) {
	if got := round(175.25, 1); got != 175.3 {
		t.Errorf("round(175.25, 1) = %v", got)
	}
	if got := round(0.03149, 4); got != 0.0315 {
		t.Errorf("round(0.03149, 4) = %v", got)
	}
	if got := round(2.0, 2); got != 2.0 {
		t.Errorf("round(2.0, 2) = %v", got)
	}
}

func TestTallyTop(t *testing.T) {
	ta := newTally()
	ta.add("Read", 1)
	ta.add("Bash", 1)
	ta.add("Bash", 1)
	ta.add("Edit", 1)
	ta.add("Grep", 1)

	if got := ta.top(3); got != "Bash, Read, Edit" {
		t.Errorf("top(3) = %q", got)
	}
	if got := ta.top(10); got != "Bash, Read, Edit, Grep" {
		t.Errorf("top(10) = %q", got)
	}
}
