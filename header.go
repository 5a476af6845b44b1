package servertiming

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// AppendSegment merges one rendered segment into h's Server-Timing header.
// An existing value is kept in front, in order, and the new segment goes
// after it, comma separated. Multiple existing occurrences of the header
// are collapsed into a single value first, which means the same thing on
// the wire.
func AppendSegment(h http.Header, segment string) {
	if existing := h.Values(HeaderName); len(existing) > 0 {
		h.Set(HeaderName, strings.Join(existing, ", ")+", "+segment)
		return
	}
	h.Set(HeaderName, segment)
}

// AppendMetric formats m and merges it into h's Server-Timing header.
// Handlers use it to contribute their own named segments (a DB read, an
// upstream wait) alongside the segments interceptors append around them.
func AppendMetric(h http.Header, m Metric) error {
	segment, err := m.Segment()
	if err != nil {
		return err
	}
	AppendSegment(h, segment)
	return nil
}

// ParseHeader parses a Server-Timing header value into metrics. It is the
// inverse of Metric.Segment for values this package produces and accepts
// the wider header grammar loosely: whitespace around separators is
// skipped, desc may be a quoted string or a bare token, and parameters
// other than desc and dur are ignored. Quotes are stripped from desc but
// nothing is unescaped, mirroring Segment, which escapes nothing.
func ParseHeader(value string) ([]Metric, error) {
	var metrics []Metric
	for _, entry := range splitOutsideQuotes(value, ',') {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := splitOutsideQuotes(entry, ';')
		name := strings.TrimSpace(parts[0])
		if err := ValidateName(name); err != nil {
			return nil, err
		}

		m := Metric{Name: name}
		for _, param := range parts[1:] {
			key, val, _ := strings.Cut(strings.TrimSpace(param), "=")
			switch strings.ToLower(strings.TrimSpace(key)) {
			case "desc":
				m.Description = strings.Trim(strings.TrimSpace(val), `"`)
			case "dur":
				ms, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
				if err != nil || math.IsNaN(ms) || math.IsInf(ms, 0) {
					return nil, fmt.Errorf("parse %s: bad dur value %q", HeaderName, val)
				}
				// Round to the nearest nanosecond so decimal values like
				// 2.4 come back as exact durations.
				ns := math.Round(ms * float64(time.Millisecond))
				// float64 holds no exact MaxInt64, so >= catches the
				// rounded-up bound before the conversion can overflow.
				if ns < 0 || ns >= math.MaxInt64 {
					return nil, fmt.Errorf("parse %s: dur value %q out of range", HeaderName, val)
				}
				m.Duration = time.Duration(ns)
			}
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}

// splitOutsideQuotes splits s on sep, ignoring separators inside
// double-quoted sections.
func splitOutsideQuotes(s string, sep byte) []string {
	var parts []string
	start := 0
	inQuotes := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case sep:
			if !inQuotes {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
