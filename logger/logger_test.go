package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func jsonLogger(buf *bytes.Buffer) *Logger {
	return NewWithWriter(buf, &Config{Level: "debug", Format: "json"}, "seqkit")
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid json log line %q: %v", buf.String(), err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l := New(&Config{Level: "invalid-level", Format: "json"}, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf).Info("hello", Fields(FieldOperator, "Where"))

	m := decodeLine(t, &buf)
	if m["message"] != "hello" {
		t.Errorf("message = %v", m["message"])
	}
	if m["service"] != "seqkit" {
		t.Errorf("service = %v", m["service"])
	}
	if m[FieldOperator] != "Where" {
		t.Errorf("operator = %v", m[FieldOperator])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, &Config{Level: "warn", Format: "json"}, "seqkit")
	l.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn level, got %q", buf.String())
	}
	l.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("expected warn line, got %q", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf).WithComponent("pipeline").Debug("x")

	if m := decodeLine(t, &buf); m[FieldComponent] != "pipeline" {
		t.Errorf("component = %v", m[FieldComponent])
	}
}

func TestWithContextSpan(t *testing.T) {
	var buf bytes.Buffer
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01},
		SpanID:     trace.SpanID{0x02},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	jsonLogger(&buf).WithContext(ctx).Info("traced")

	m := decodeLine(t, &buf)
	if m[FieldTraceID] != sc.TraceID().String() {
		t.Errorf("trace_id = %v, want %s", m[FieldTraceID], sc.TraceID())
	}
	if m[FieldSpanID] != sc.SpanID().String() {
		t.Errorf("span_id = %v, want %s", m[FieldSpanID], sc.SpanID())
	}
}

func TestWithContextNoSpan(t *testing.T) {
	l := NewDefault("test")
	if got := l.WithContext(context.Background()); got != l {
		t.Error("expected receiver when ctx carries no span")
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf).
		WithFields(map[string]interface{}{FieldEpoch: 3}).
		WithError(fmt.Errorf("boom")).
		Error("failed")

	m := decodeLine(t, &buf)
	if m[FieldEpoch] != float64(3) {
		t.Errorf("epoch = %v", m[FieldEpoch])
	}
	if m[FieldError] != "boom" {
		t.Errorf("error = %v", m[FieldError])
	}
}

func TestGlobalLogger(t *testing.T) {
	prev := globalLogger
	t.Cleanup(func() { globalLogger = prev })

	globalLogger = nil
	def := GetGlobalLogger()
	if def == nil {
		t.Fatal("expected default global logger to be created")
	}
	if GetGlobalLogger() != def {
		t.Error("expected the default global logger to be reused")
	}

	Init(Config{Level: "info", Format: "json"})
	if GetGlobalLogger() == def {
		t.Error("expected Init to replace the global logger")
	}
	Info("info msg")
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected output 'stderr', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"valid console", Config{Level: "debug", Format: "console"}, false},
		{"valid pretty", Config{Level: "warn", Format: "pretty"}, false},
		{"invalid level", Config{Level: "bad", Format: "json"}, true},
		{"invalid format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestConsoleLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, &Config{Level: "info", Format: "console", NoColor: true}, "seqkit")
	l.Info("ready", Fields(FieldOperator, "Merge"))

	out := buf.String()
	for _, want := range []string{"[SEQ]", "[INF]", "ready", "operator:Merge"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestRegisterAndGet(t *testing.T) {
	l := NewDefault("custom-component")
	Register("my-component", l)

	if Get("my-component") != l {
		t.Error("expected Get to return the registered logger")
	}
	if Get("unregistered-component") == nil {
		t.Fatal("expected non-nil logger for unregistered component")
	}
}

func TestInitResetsRegistry(t *testing.T) {
	l := NewDefault("stale")
	Register("pipeline", l)
	Init(Config{Level: "info", Format: "json"})
	if Get("pipeline") == l {
		t.Error("expected Init to drop loggers registered before it")
	}
}

func TestRegisterDefaults(t *testing.T) {
	Init(Config{Level: "info", Format: "json"})
	RegisterDefaults("pipeline", "cli")

	for _, name := range []string{"pipeline", "cli"} {
		if Get(name) == nil {
			t.Errorf("expected non-nil logger for %q", name)
		}
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		name     string
		input    []interface{}
		expected map[string]interface{}
	}{
		{"key-value pairs", []interface{}{"op", "save", "id", 42}, map[string]interface{}{"op": "save", "id": 42}},
		{"odd number of args", []interface{}{"op", "save", "trailing"}, map[string]interface{}{"op": "save"}},
		{"empty", []interface{}{}, map[string]interface{}{}},
		{"non-string key skipped", []interface{}{123, "value", "key", "val"}, map[string]interface{}{"key": "val"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Fields(tc.input...)
			if len(result) != len(tc.expected) {
				t.Errorf("len = %d, want %d", len(result), len(tc.expected))
			}
			for k, v := range tc.expected {
				if result[k] != v {
					t.Errorf("Fields[%q] = %v, expected %v", k, result[k], v)
				}
			}
		})
	}
}

func TestErrorFields(t *testing.T) {
	fields := ErrorFields("countby", fmt.Errorf("something broke"))

	if fields[FieldOperation] != "countby" {
		t.Errorf("expected operation 'countby', got %v", fields[FieldOperation])
	}
	if fields[FieldError] != "something broke" {
		t.Errorf("expected error 'something broke', got %v", fields[FieldError])
	}
}

func TestDurationFields(t *testing.T) {
	fields := DurationFields("sort", 150*time.Millisecond)

	if fields[FieldOperation] != "sort" {
		t.Errorf("expected operation 'sort', got %v", fields[FieldOperation])
	}
	if fields[FieldDuration] != int64(150) {
		t.Errorf("expected duration 150, got %v", fields[FieldDuration])
	}
}

func TestMergeWithError(t *testing.T) {
	err := fmt.Errorf("test error")

	result := MergeWithError(map[string]interface{}{"op": "save"}, err)
	if result[FieldError] != "test error" {
		t.Errorf("expected error field, got %v", result[FieldError])
	}
	if result["op"] != "save" {
		t.Error("expected existing fields to be preserved")
	}

	if got := MergeWithError(nil, err); got[FieldError] != "test error" {
		t.Errorf("expected error field from nil map, got %v", got[FieldError])
	}
}

func TestMergeWithDuration(t *testing.T) {
	d := 200 * time.Millisecond

	result := MergeWithDuration(map[string]interface{}{"op": "query"}, d)
	if result[FieldDuration] != int64(200) {
		t.Errorf("expected duration 200, got %v", result[FieldDuration])
	}
	if result["op"] != "query" {
		t.Error("expected existing fields to be preserved")
	}

	if got := MergeWithDuration(nil, d); got[FieldDuration] != int64(200) {
		t.Errorf("expected duration from nil map, got %v", got[FieldDuration])
	}
}
