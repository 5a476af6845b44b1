// Package echotiming binds servertiming interceptors to the Echo web
// framework.
package echotiming

import (
	"net/http"

	servertiming "github.com/EmpoweredVote/server-timing"
	"github.com/labstack/echo/v4"
)

// Middleware returns Echo middleware that appends in's segment to every
// response the wrapped handlers produce, merged after any Server-Timing
// value already present. A handler that returns nil without writing gets
// the segment too, since the server still sends a head for it. A handler
// error passes through to Echo's error handler untouched, and the response
// synthesized for it carries no segment.
func Middleware(in *servertiming.Interceptor) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := c.Response()
			tw := &timingWriter{ResponseWriter: res.Writer, m: in.Start()}
			res.Writer = tw

			if err := next(c); err != nil {
				tw.disabled = true
				return err
			}

			// A handler that never wrote still gets a head from the server,
			// so the segment goes in now unless the request died first.
			// Marking the head written keeps a later write from appending
			// it twice.
			if !tw.wroteHeader && c.Request().Context().Err() == nil {
				tw.wroteHeader = true
				tw.appendSegment()
			}
			return nil
		}
	}
}

// timingWriter appends the segment when the response head commits, unless
// the handler chain failed first. Stacked instances commit innermost
// first, which keeps nested segments in that order.
type timingWriter struct {
	http.ResponseWriter
	m           *servertiming.Measurement
	wroteHeader bool
	disabled    bool
}

func (tw *timingWriter) WriteHeader(status int) {
	if !tw.wroteHeader {
		tw.wroteHeader = true
		if !tw.disabled {
			tw.appendSegment()
		}
	}
	tw.ResponseWriter.WriteHeader(status)
}

func (tw *timingWriter) Write(p []byte) (int, error) {
	if !tw.wroteHeader {
		tw.WriteHeader(http.StatusOK)
	}
	return tw.ResponseWriter.Write(p)
}

// Flush commits the head, so the segment has to be merged first.
func (tw *timingWriter) Flush() {
	if !tw.wroteHeader {
		tw.WriteHeader(http.StatusOK)
	}
	if f, ok := tw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (tw *timingWriter) Unwrap() http.ResponseWriter { return tw.ResponseWriter }

func (tw *timingWriter) appendSegment() {
	segment, err := tw.m.Metric().Segment()
	if err != nil {
		// Only a clock that ran backwards lands here; the segment is
		// dropped rather than written malformed.
		return
	}
	servertiming.AppendSegment(tw.Header(), segment)
}
