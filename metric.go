package servertiming

import (
	"fmt"
	"strings"
	"time"
)

// Metric is one Server-Timing entry: a name, an optional human-readable
// description, and an elapsed duration.
type Metric struct {
	Name        string
	Description string
	Duration    time.Duration
}

// Segment renders the metric as a single Server-Timing header segment:
//
//	db;dur=12.3
//	db;desc="primary read";dur=12.3
//
// The duration is written in milliseconds with exactly one fractional
// digit, rounded half away from zero. The name must pass ValidateName and
// the duration must not be negative; the description is written verbatim
// between the quotes, so it must not contain double quotes itself.
func (m Metric) Segment() (string, error) {
	if err := ValidateName(m.Name); err != nil {
		return "", err
	}
	if m.Duration < 0 {
		return "", fmt.Errorf("%w: %s", ErrInvalidDuration, m.Duration)
	}

	var b strings.Builder
	b.WriteString(m.Name)
	if m.Description != "" {
		b.WriteString(`;desc="`)
		b.WriteString(m.Description)
		b.WriteString(`"`)
	}
	b.WriteString(";dur=")
	b.WriteString(formatDuration(m.Duration))
	return b.String(), nil
}

// formatDuration renders a non-negative duration as milliseconds with one
// fractional digit. It works in integer tenths of a millisecond, rounding
// on the remainder rather than adding a bias that could overflow near the
// top of the range, so the result is exact for every duration the type
// can hold and longer durations never render smaller.
func formatDuration(d time.Duration) string {
	tenths := d / (100 * time.Microsecond)
	if d%(100*time.Microsecond) >= 50*time.Microsecond {
		tenths++
	}
	return fmt.Sprintf("%d.%d", tenths/10, tenths%10)
}
