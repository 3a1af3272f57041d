// Package otel receives OTLP telemetry over HTTP and flattens it into
// event records on the per-day JSONL log. Metrics and logs are kept;
// traces are accepted and discarded so exporters do not error.
package otel

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	collectorlogs "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	collectormetrics "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	commonv1 "go.opentelemetry.io/proto/otlp/common/v1"
	metricsv1 "go.opentelemetry.io/proto/otlp/metrics/v1"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/emiliopalmerini/claude-usage/internal/event"
	"github.com/emiliopalmerini/claude-usage/internal/store"
)

type Receiver struct {
	store *store.Store
}

func NewReceiver(st *store.Store) *Receiver {
	return &Receiver{store: st}
}

func unmarshal(body io.Reader, contentType string, msg proto.Message) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	if contentType == "application/json" {
		if err := protojson.Unmarshal(data, msg); err != nil {
			return fmt.Errorf("parse JSON payload: %w", err)
		}
		return nil
	}
	if err := proto.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("parse protobuf payload: %w", err)
	}
	return nil
}

// HandleMetrics flattens an OTLP metrics export into one record per
// data point and appends them to the event store.
func (r *Receiver) HandleMetrics(body io.Reader, contentType string) error {
	var req collectormetrics.ExportMetricsServiceRequest
	if err := unmarshal(body, contentType, &req); err != nil {
		return err
	}

	var records []event.Record
	for _, rm := range req.GetResourceMetrics() {
		resource := attrsToMap(rm.GetResource().GetAttributes())
		for _, sm := range rm.GetScopeMetrics() {
			scope := sm.GetScope().GetName()
			for _, metric := range sm.GetMetrics() {
				name := metric.GetName()

				if sum := metric.GetSum(); sum != nil {
					for _, dp := range sum.GetDataPoints() {
						records = append(records, metricRecord(name, "sum",
							numberValue(dp), dp.GetTimeUnixNano(),
							attrsToMap(dp.GetAttributes()), scope, resource))
					}
				}
				if gauge := metric.GetGauge(); gauge != nil {
					for _, dp := range gauge.GetDataPoints() {
						records = append(records, metricRecord(name, "gauge",
							numberValue(dp), dp.GetTimeUnixNano(),
							attrsToMap(dp.GetAttributes()), scope, resource))
					}
				}
				if hist := metric.GetHistogram(); hist != nil {
					for _, dp := range hist.GetDataPoints() {
						records = append(records, metricRecord(name, "histogram",
							dp.GetSum(), dp.GetTimeUnixNano(),
							attrsToMap(dp.GetAttributes()), scope, resource))
					}
				}
			}
		}
	}
	return r.store.Append(records)
}

// HandleLogs flattens an OTLP logs export into one record per log entry.
// The event name comes from the event.name attribute, which is removed
// from the stored attributes; a plain string body is the fallback name.
func (r *Receiver) HandleLogs(body io.Reader, contentType string) error {
	var req collectorlogs.ExportLogsServiceRequest
	if err := unmarshal(body, contentType, &req); err != nil {
		return err
	}

	var records []event.Record
	for _, rl := range req.GetResourceLogs() {
		resource := attrsToMap(rl.GetResource().GetAttributes())
		for _, sl := range rl.GetScopeLogs() {
			scope := sl.GetScope().GetName()
			for _, lr := range sl.GetLogRecords() {
				logBody := anyValue(lr.GetBody())
				attrs := attrsToMap(lr.GetAttributes())

				eventName := event.String(attrs["event.name"])
				delete(attrs, "event.name")
				if eventName == "" {
					if s, ok := logBody.(string); ok {
						eventName = s
					}
				}

				records = append(records, event.Record{
					ID:    uuid.NewString(),
					TS:    timestamp(lr.GetTimeUnixNano()),
					Kind:  event.KindLog,
					Event: eventName,
					Data: event.Payload{
						Body:         logBody,
						Attributes:   attrs,
						Scope:        scope,
						Resource:     resource,
						SeverityText: lr.GetSeverityText(),
					},
				})
			}
		}
	}
	return r.store.Append(records)
}

func metricRecord(name, aggregation string, value float64, nano uint64, attrs map[string]any, scope string, resource map[string]any) event.Record {
	return event.Record{
		ID:    uuid.NewString(),
		TS:    timestamp(nano),
		Kind:  event.KindMetric,
		Event: name,
		Data: event.Payload{
			Value:       value,
			Attributes:  attrs,
			Scope:       scope,
			Resource:    resource,
			Aggregation: aggregation,
		},
	}
}

func timestamp(nano uint64) string {
	if nano == 0 {
		return time.Now().UTC().Format(time.RFC3339Nano)
	}
	return time.Unix(0, int64(nano)).UTC().Format(time.RFC3339Nano)
}

func numberValue(dp *metricsv1.NumberDataPoint) float64 {
	switch v := dp.GetValue().(type) {
	case *metricsv1.NumberDataPoint_AsDouble:
		return v.AsDouble
	case *metricsv1.NumberDataPoint_AsInt:
		return float64(v.AsInt)
	default:
		return 0
	}
}

func attrsToMap(attrs []*commonv1.KeyValue) map[string]any {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		if v := anyValue(kv.GetValue()); v != nil {
			out[kv.GetKey()] = v
		}
	}
	return out
}

// anyValue converts an OTLP AnyValue into plain Go values, recursing
// into kvlists and arrays the way log bodies nest.
func anyValue(v *commonv1.AnyValue) any {
	if v == nil {
		return nil
	}
	switch val := v.GetValue().(type) {
	case *commonv1.AnyValue_StringValue:
		return val.StringValue
	case *commonv1.AnyValue_IntValue:
		return val.IntValue
	case *commonv1.AnyValue_DoubleValue:
		return val.DoubleValue
	case *commonv1.AnyValue_BoolValue:
		return val.BoolValue
	case *commonv1.AnyValue_KvlistValue:
		out := make(map[string]any, len(val.KvlistValue.GetValues()))
		for _, kv := range val.KvlistValue.GetValues() {
			out[kv.GetKey()] = anyValue(kv.GetValue())
		}
		return out
	case *commonv1.AnyValue_ArrayValue:
		out := make([]any, 0, len(val.ArrayValue.GetValues()))
		for _, item := range val.ArrayValue.GetValues() {
			out = append(out, anyValue(item))
		}
		return out
	default:
		return nil
	}
}
