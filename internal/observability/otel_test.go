package observability

import (
	"context"
	"errors"
	"testing"
)

func TestOtelSampleRatio(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"", 1},
		{"0.25", 0.25},
		{"-3", 0},
		{"7", 1},
		{"nope", 1},
	}
	for _, tc := range cases {
		t.Setenv("OTEL_SAMPLER_RATIO", tc.raw)
		if got := otelSampleRatio(); got != tc.want {
			t.Fatalf("ratio(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestOtelHeaders(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "a=1, b = 2 ,broken,=x")
	h := otelHeaders()
	if len(h) != 2 || h["a"] != "1" || h["b"] != "2" {
		t.Fatalf("unexpected headers: %v", h)
	}
}

func TestStartSpanWithoutProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test.span")
	EndSpan(span, errors.New("boom"))
	if TraceID(ctx) != "" {
		t.Fatalf("noop provider should not yield a trace id")
	}
}
