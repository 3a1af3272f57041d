package event

import (
	"time"
)

// Record kinds as written by the receiver.
const (
	KindMetric = "metric"
	KindLog    = "log"
)

// Record is one ingested telemetry item, one JSONL line in the event store.
// Kind and Event are always present; everything inside Data is best-effort
// and consumers must treat every field as optionally absent.
type Record struct {
	ID    string  `json:"id,omitempty"`
	TS    string  `json:"ts"`
	Kind  string  `json:"type"`
	Event string  `json:"event"`
	Data  Payload `json:"data"`
}

// Payload is the loosely structured bag carried by a Record.
type Payload struct {
	Value        any            `json:"value,omitempty"`
	Body         any            `json:"body,omitempty"`
	Attributes   map[string]any `json:"attributes,omitempty"`
	Resource     map[string]any `json:"resource,omitempty"`
	Scope        string         `json:"scope,omitempty"`
	Aggregation  string         `json:"aggregation,omitempty"`
	SeverityText string         `json:"severityText,omitempty"`
}

// Is reports whether the record has the given kind and event name.
func (r Record) Is(kind, name string) bool {
	return r.Kind == kind && r.Event == name
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999", // no zone: UTC assumed
	"2006-01-02T15:04:05",
}

// Time parses the record timestamp. Timestamps without a zone are taken
// as UTC.
func (r Record) Time() (time.Time, bool) {
	if r.TS == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, r.TS, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Value returns the metric value, if present and numeric.
func (r Record) Value() (float64, bool) {
	if r.Data.Value == nil {
		return 0, false
	}
	return Float(r.Data.Value)
}

// bodyMap returns the log body as a map when it is one.
func (r Record) bodyMap() map[string]any {
	m, _ := r.Data.Body.(map[string]any)
	return m
}

// Attr looks up the first of the given keys present in the record
// attributes, falling back to the nested body map when attributes lack
// them all. The fallback chain probes every key against attributes before
// touching the body.
func (r Record) Attr(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r.Data.Attributes[k]; ok {
			return v, true
		}
	}
	if body := r.bodyMap(); body != nil {
		for _, k := range keys {
			if v, ok := body[k]; ok {
				return v, true
			}
		}
	}
	return nil, false
}

// AttrFloat resolves an attribute through Attr and coerces it to float64.
// Malformed values count as absent.
func (r Record) AttrFloat(keys ...string) (float64, bool) {
	v, ok := r.Attr(keys...)
	if !ok {
		return 0, false
	}
	return Float(v)
}

// AttrString resolves an attribute through Attr as a non-empty string.
func (r Record) AttrString(keys ...string) string {
	v, ok := r.Attr(keys...)
	if !ok {
		return ""
	}
	return String(v)
}

// AttrBool resolves an attribute through Attr as a bool, returning def
// when no key is present or the value cannot be read as a bool.
func (r Record) AttrBool(def bool, keys ...string) bool {
	v, ok := r.Attr(keys...)
	if !ok {
		return def
	}
	return Bool(v, def)
}

// ResourceString returns the first non-empty resource attribute among keys.
func (r Record) ResourceString(keys ...string) string {
	for _, k := range keys {
		if s := String(r.Data.Resource[k]); s != "" {
			return s
		}
	}
	return ""
}
