package otel

import (
	"strings"
	"testing"
	"time"

	"github.com/emiliopalmerini/claude-usage/internal/event"
	"github.com/emiliopalmerini/claude-usage/internal/store"
)

func loadToday(t *testing.T, st *store.Store) []event.Record {
	t.Helper()
	records, err := st.Load(time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func TestHandleLogs(t *testing.T) {
	payload := `{
		"resourceLogs": [{
			"resource": {"attributes": [{"key": "session.id", "value": {"stringValue": "sess-1"}}]},
			"scopeLogs": [{
				"scope": {"name": "com.anthropic.claude_code.events"},
				"logRecords": [{
					"timeUnixNano": "1748772000000000000",
					"severityText": "INFO",
					"body": {"stringValue": "API request"},
					"attributes": [
						{"key": "event.name", "value": {"stringValue": "api_request"}},
						{"key": "model", "value": {"stringValue": "claude-sonnet-4-5-20250929"}},
						{"key": "input_tokens", "value": {"intValue": "1000"}},
						{"key": "duration_ms", "value": {"doubleValue": 421.5}}
					]
				}]
			}]
		}]
	}`

	st := store.New(t.TempDir())
	r := NewReceiver(st)
	if err := r.HandleLogs(strings.NewReader(payload), "application/json"); err != nil {
		t.Fatal(err)
	}

	records := loadToday(t, st)
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	rec := records[0]
	if rec.Kind != event.KindLog || rec.Event != "api_request" {
		t.Errorf("record = %s/%s", rec.Kind, rec.Event)
	}
	if rec.ID == "" {
		t.Error("record has no id")
	}
	if rec.TS != "2025-06-01T10:00:00Z" {
		t.Errorf("ts = %q", rec.TS)
	}
	if _, ok := rec.Data.Attributes["event.name"]; ok {
		t.Error("event.name must be removed from stored attributes")
	}
	if got := rec.AttrString("model"); got != "claude-sonnet-4-5-20250929" {
		t.Errorf("model = %q", got)
	}
	if v, ok := rec.AttrFloat("input_tokens"); !ok || v != 1000 {
		t.Errorf("input_tokens = %v/%v", v, ok)
	}
	if got := rec.ResourceString("session.id"); got != "sess-1" {
		t.Errorf("session.id = %q", got)
	}
	if rec.Data.Scope != "com.anthropic.claude_code.events" || rec.Data.SeverityText != "INFO" {
		t.Errorf("scope/severity = %q/%q", rec.Data.Scope, rec.Data.SeverityText)
	}
}

func TestHandleLogsBodyNameFallback(t *testing.T) {
	payload := `{
		"resourceLogs": [{
			"scopeLogs": [{
				"logRecords": [{
					"body": {"stringValue": "user_prompt"},
					"attributes": [{"key": "prompt_length", "value": {"intValue": "42"}}]
				}]
			}]
		}]
	}`

	st := store.New(t.TempDir())
	if err := NewReceiver(st).HandleLogs(strings.NewReader(payload), "application/json"); err != nil {
		t.Fatal(err)
	}

	records := loadToday(t, st)
	if len(records) != 1 || records[0].Event != "user_prompt" {
		t.Fatalf("records = %+v", records)
	}
	// No timestamp in the export: the receiver stamps arrival time.
	if _, ok := records[0].Time(); !ok {
		t.Error("record has no parseable timestamp")
	}
}

func TestHandleMetrics(t *testing.T) {
	payload := `{
		"resourceMetrics": [{
			"resource": {"attributes": [{"key": "service.name", "value": {"stringValue": "claude-code"}}]},
			"scopeMetrics": [{
				"scope": {"name": "com.anthropic.claude_code"},
				"metrics": [
					{
						"name": "active_time.total",
						"sum": {"dataPoints": [
							{"timeUnixNano": "1748772000000000000", "asInt": "3600"},
							{"timeUnixNano": "1748775600000000000", "asInt": "1800"}
						]}
					},
					{
						"name": "cpu.usage",
						"gauge": {"dataPoints": [{"asDouble": 0.75}]}
					},
					{
						"name": "request.duration",
						"histogram": {"dataPoints": [{"sum": 12.5, "count": "4"}]}
					}
				]
			}]
		}]
	}`

	st := store.New(t.TempDir())
	if err := NewReceiver(st).HandleMetrics(strings.NewReader(payload), "application/json"); err != nil {
		t.Fatal(err)
	}

	records := loadToday(t, st)
	if len(records) != 4 {
		t.Fatalf("records = %d, want 4", len(records))
	}

	var total float64
	for _, rec := range records {
		if rec.Kind != event.KindMetric {
			t.Errorf("kind = %s, want metric", rec.Kind)
		}
		if !rec.Is(event.KindMetric, "active_time.total") {
			continue
		}
		if rec.Data.Aggregation != "sum" {
			t.Errorf("aggregation = %q", rec.Data.Aggregation)
		}
		if got := rec.ResourceString("service.name"); got != "claude-code" {
			t.Errorf("service.name = %q", got)
		}
		if v, ok := rec.Value(); ok {
			total += v
		}
	}
	if total != 5400 {
		t.Errorf("summed active time = %v, want 5400", total)
	}

	byName := make(map[string]event.Record)
	for _, rec := range records {
		byName[rec.Event] = rec
	}
	if v, _ := byName["cpu.usage"].Value(); v != 0.75 {
		t.Errorf("gauge value = %v, want 0.75", v)
	}
	if byName["cpu.usage"].Data.Aggregation != "gauge" {
		t.Errorf("gauge aggregation = %q", byName["cpu.usage"].Data.Aggregation)
	}
	if v, _ := byName["request.duration"].Value(); v != 12.5 {
		t.Errorf("histogram value = %v, want 12.5", v)
	}
}

func TestHandleBadPayload(t *testing.T) {
	st := store.New(t.TempDir())
	r := NewReceiver(st)

	if err := r.HandleLogs(strings.NewReader("{not json"), "application/json"); err == nil {
		t.Error("malformed JSON accepted")
	}
	if err := r.HandleMetrics(strings.NewReader("\x01\x02garbage"), "application/x-protobuf"); err == nil {
		t.Error("malformed protobuf accepted")
	}
	if records := loadToday(t, st); len(records) != 0 {
		t.Errorf("bad payloads left %d records behind", len(records))
	}
}
