package servertiming

import "time"

// Clock abstracts the interceptor's time source so tests can control the
// durations that end up in the header.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Since returns the time elapsed since t.
	Since(t time.Time) time.Duration
}

// systemClock reads the runtime clock. Values from time.Now carry a
// monotonic reading, so Since measures real elapsed time even across wall
// clock adjustments.
type systemClock struct{}

func (systemClock) Now() time.Time                  { return time.Now() }
func (systemClock) Since(t time.Time) time.Duration { return time.Since(t) }
