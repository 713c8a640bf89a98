package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func TestToolMeta_SpanName(t *testing.T) {
	tests := []struct {
		name string
		meta ToolMeta
		want string
	}{
		{"with namespace", ToolMeta{Namespace: "context7", Name: "query_docs"}, "tool.exec.context7.query_docs"},
		{"without namespace", ToolMeta{Name: "clear_cache"}, "tool.exec.clear_cache"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.meta.SpanName(); got != tc.want {
				t.Errorf("SpanName() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTracer_SpanAttributes(t *testing.T) {
	tracer, rec := newRecordingTracer()

	_, span := tracer.StartSpan(context.Background(), ToolMeta{Namespace: "context7", Name: "resolve_library_id"})
	tracer.EndSpan(span, false, nil)

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if got := attrs["tool.name"].AsString(); got != "resolve_library_id" {
		t.Errorf("tool.name = %q", got)
	}
	if got := attrs["tool.namespace"].AsString(); got != "context7" {
		t.Errorf("tool.namespace = %q", got)
	}
	if v, ok := attrs["cache.hit"]; !ok || v.AsBool() {
		t.Errorf("cache.hit = %v (present %v), want false", v.AsBool(), ok)
	}
}

func TestTracer_OmitsEmptyNamespace(t *testing.T) {
	tracer, rec := newRecordingTracer()

	_, span := tracer.StartSpan(context.Background(), ToolMeta{Name: "clear_cache"})
	tracer.EndSpan(span, false, nil)

	for _, kv := range rec.Ended()[0].Attributes() {
		if kv.Key == "tool.namespace" {
			t.Fatalf("unexpected tool.namespace attribute %q", kv.Value.AsString())
		}
	}
}

func TestTracer_RecordsError(t *testing.T) {
	tracer, rec := newRecordingTracer()

	_, span := tracer.StartSpan(context.Background(), ToolMeta{Name: "query_docs"})
	tracer.EndSpan(span, false, errors.New("upstream unavailable"))

	ended := rec.Ended()[0]
	if ended.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", ended.Status().Code)
	}
	if ended.Status().Description != "upstream unavailable" {
		t.Errorf("description = %q", ended.Status().Description)
	}
	if len(ended.Events()) == 0 {
		t.Error("expected an exception event")
	}
}

func TestNopTracer(t *testing.T) {
	tracer := NopTracer()
	ctx, span := tracer.StartSpan(context.Background(), ToolMeta{Name: "query_docs"})
	if ctx == nil || span == nil {
		t.Fatal("NopTracer returned nil")
	}
	tracer.EndSpan(span, true, nil)
}
