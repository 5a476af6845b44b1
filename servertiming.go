// Package servertiming measures how long the stage of request handling it
// wraps takes and reports the elapsed time in the standard Server-Timing
// response header, so browser dev tools and upstream proxies can see where
// a request spent its time.
//
// An Interceptor is configured once at startup with the metric name it
// reports under and is shared read-only across requests. It attaches to a
// stack as net/http middleware (Middleware), as a client-side transport
// (RoundTripper), or through a framework adapter. Segments from nested
// interceptors and from handlers themselves merge into a single header
// value, innermost first.
package servertiming

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// HeaderName is the response header this package reads and writes.
const HeaderName = "Server-Timing"

// reservedNameChars would break the header's name;key=value structure if
// they appeared inside a metric name.
const reservedNameChars = " ,;=\""

// Common errors
var (
	ErrEmptyName         = errors.New("metric name must not be empty")
	ErrReservedCharacter = errors.New("metric name contains a reserved character")
	ErrInvalidDuration   = errors.New("metric duration must not be negative")
)

// ValidateName reports whether name is usable as a Server-Timing metric
// name: non-empty and free of spaces, commas, semicolons, equals signs,
// and double quotes.
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if strings.ContainsAny(name, reservedNameChars) {
		return fmt.Errorf("%w: %q", ErrReservedCharacter, name)
	}
	return nil
}

// Interceptor times the stage it wraps and appends the result to the
// response's Server-Timing header. Construct one per named stage at wiring
// time; all methods leave the receiver unchanged, so a single instance is
// safe to share across concurrent requests.
type Interceptor struct {
	name        string
	description string
	clock       Clock
}

// New returns an Interceptor reporting under the given metric name.
// The name is validated here so a bad one fails at wiring time, never
// during a request.
func New(name string) (*Interceptor, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return &Interceptor{name: name, clock: systemClock{}}, nil
}

// MustNew is like New but panics on an invalid name. Intended for static
// route tables where the name is a literal.
func MustNew(name string) *Interceptor {
	in, err := New(name)
	if err != nil {
		panic(err)
	}
	return in
}

// Name returns the metric name segments are reported under.
func (in *Interceptor) Name() string { return in.name }

// Description returns the optional human-readable description.
func (in *Interceptor) Description() string { return in.description }

// WithDescription returns a copy of the interceptor whose segments carry
// desc="...". The description is written verbatim between the quotes, so
// it must not contain double quotes itself.
func (in *Interceptor) WithDescription(desc string) *Interceptor {
	out := *in
	out.description = desc
	return &out
}

// WithClock returns a copy of the interceptor that reads time from clock.
// Tests use this to produce exact rendered durations without sleeping.
func (in *Interceptor) WithClock(clock Clock) *Interceptor {
	out := *in
	out.clock = clock
	return &out
}

// Start begins a measurement on the interceptor's clock. The returned
// Measurement belongs to a single request and is not safe for concurrent
// use.
func (in *Interceptor) Start() *Measurement {
	return &Measurement{in: in, startedAt: in.clock.Now()}
}

// Measurement is one in-flight timing started by an Interceptor.
type Measurement struct {
	in        *Interceptor
	startedAt time.Time
}

// StartedAt returns the instant the measurement began.
func (m *Measurement) StartedAt() time.Time { return m.startedAt }

// Elapsed returns the time passed since the measurement began, read from
// the interceptor's clock at call time.
func (m *Measurement) Elapsed() time.Duration {
	return m.in.clock.Since(m.startedAt)
}

// Metric snapshots the measurement into a formattable Metric carrying the
// interceptor's name and description.
func (m *Measurement) Metric() Metric {
	return Metric{Name: m.in.name, Description: m.in.description, Duration: m.Elapsed()}
}
