package servertiming_test

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	servertiming "github.com/EmpoweredVote/server-timing"
)

// durValue extracts the dur parameter from a rendered segment as a float.
func durValue(t *testing.T, segment string) float64 {
	t.Helper()

	idx := strings.LastIndex(segment, ";dur=")
	if idx < 0 {
		t.Fatalf("segment %q has no dur parameter", segment)
	}
	v, err := strconv.ParseFloat(segment[idx+len(";dur="):], 64)
	if err != nil {
		t.Fatalf("segment %q has unparseable dur: %v", segment, err)
	}
	return v
}

// TestSegment_Rendering verifies the rendered wire format for metrics with
// and without a description, including rounding to one fractional digit
// half away from zero.
func TestSegment_Rendering(t *testing.T) {
	cases := []struct {
		name     string
		metric   servertiming.Metric
		expected string
	}{
		{
			name:     "plain name",
			metric:   servertiming.Metric{Name: "HelloService", Duration: 102 * time.Millisecond},
			expected: "HelloService;dur=102.0",
		},
		{
			name: "with description",
			metric: servertiming.Metric{
				Name:        "HelloService",
				Description: "whatever",
				Duration:    102 * time.Millisecond,
			},
			expected: `HelloService;desc="whatever";dur=102.0`,
		},
		{
			name:     "zero duration",
			metric:   servertiming.Metric{Name: "db", Duration: 0},
			expected: "db;dur=0.0",
		},
		{
			name:     "sub-millisecond",
			metric:   servertiming.Metric{Name: "db", Duration: 250 * time.Microsecond},
			expected: "db;dur=0.3",
		},
		{
			name:     "rounds down below midpoint",
			metric:   servertiming.Metric{Name: "db", Duration: 249 * time.Microsecond},
			expected: "db;dur=0.2",
		},
		{
			name:     "rounds up above midpoint",
			metric:   servertiming.Metric{Name: "db", Duration: 12_366 * time.Microsecond},
			expected: "db;dur=12.4",
		},
		{
			name:     "midpoint rounds away from zero",
			metric:   servertiming.Metric{Name: "db", Duration: 12_350 * time.Microsecond},
			expected: "db;dur=12.4",
		},
		{
			name:     "long duration",
			metric:   servertiming.Metric{Name: "batch", Duration: 90 * time.Second},
			expected: "batch;dur=90000.0",
		},
		{
			name:     "largest representable duration",
			metric:   servertiming.Metric{Name: "cap", Duration: math.MaxInt64},
			expected: "cap;dur=9223372036854.8",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.metric.Segment()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

// TestSegment_InvalidName verifies that a metric whose name would break the
// header structure is rejected instead of rendered.
func TestSegment_InvalidName(t *testing.T) {
	m := servertiming.Metric{Name: "bad name", Duration: time.Millisecond}
	if _, err := m.Segment(); !errors.Is(err, servertiming.ErrReservedCharacter) {
		t.Errorf("expected ErrReservedCharacter, got %v", err)
	}

	m = servertiming.Metric{Name: "", Duration: time.Millisecond}
	if _, err := m.Segment(); !errors.Is(err, servertiming.ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
}

// TestSegment_NegativeDuration verifies that a negative duration returns
// ErrInvalidDuration rather than producing malformed output.
func TestSegment_NegativeDuration(t *testing.T) {
	m := servertiming.Metric{Name: "db", Duration: -time.Millisecond}
	if _, err := m.Segment(); !errors.Is(err, servertiming.ErrInvalidDuration) {
		t.Errorf("expected ErrInvalidDuration, got %v", err)
	}
}

// TestSegment_Monotonic verifies that a longer duration never renders as a
// smaller dur value, stepping through durations in 50µs increments.
func TestSegment_Monotonic(t *testing.T) {
	prev := -1.0
	for d := time.Duration(0); d <= 5*time.Millisecond; d += 50 * time.Microsecond {
		segment, err := servertiming.Metric{Name: "sweep", Duration: d}.Segment()
		if err != nil {
			t.Fatalf("unexpected error at %s: %v", d, err)
		}
		got := durValue(t, segment)
		if got < prev {
			t.Fatalf("dur decreased at %s: %v after %v", d, got, prev)
		}
		prev = got
	}
}

// TestSegment_RoundTrip verifies that parsing a rendered segment yields the
// same name and description, and a duration that re-renders identically.
func TestSegment_RoundTrip(t *testing.T) {
	metrics := []servertiming.Metric{
		{Name: "HelloService", Duration: 102 * time.Millisecond},
		{Name: "db", Description: "primary read", Duration: 250 * time.Microsecond},
		{Name: "wait", Duration: 1234567 * time.Nanosecond},
	}

	for _, m := range metrics {
		segment, err := m.Segment()
		if err != nil {
			t.Fatalf("render %v: %v", m, err)
		}

		parsed, err := servertiming.ParseHeader(segment)
		if err != nil {
			t.Fatalf("parse %q: %v", segment, err)
		}
		if len(parsed) != 1 {
			t.Fatalf("expected 1 metric from %q, got %d", segment, len(parsed))
		}
		if parsed[0].Name != m.Name {
			t.Errorf("expected name %q, got %q", m.Name, parsed[0].Name)
		}
		if parsed[0].Description != m.Description {
			t.Errorf("expected description %q, got %q", m.Description, parsed[0].Description)
		}

		again, err := parsed[0].Segment()
		if err != nil {
			t.Fatalf("re-render %v: %v", parsed[0], err)
		}
		if again != segment {
			t.Errorf("round trip changed segment: %q became %q", segment, again)
		}
	}
}
