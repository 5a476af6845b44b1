package servertiming

import "net/http"

// Middleware wraps next so every response it produces carries this
// interceptor's segment. The measurement starts when the request enters
// and stops the moment the response head is committed, which in net/http
// is the last point response headers can still change. The segment is
// appended after any Server-Timing value already present, so with nested
// interceptors the innermost segment comes first.
//
// Failures pass through untouched: a panic in next unwinds without any
// header being attached, and a request whose context was cancelled before
// a response was produced is left unmodified. Status, body, and all other
// headers are forwarded as is.
func (in *Interceptor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tw := &timingWriter{ResponseWriter: w, m: in.Start()}
		next.ServeHTTP(tw, r)

		// A handler that never wrote still gets a head from the server,
		// so the segment goes in now unless the request died first.
		if !tw.wroteHeader && r.Context().Err() == nil {
			tw.appendSegment()
		}
	})
}

// timingWriter delays the header append until the response head is
// committed. Inner interceptors commit before outer ones, which is what
// puts nested segments in innermost-first order.
type timingWriter struct {
	http.ResponseWriter
	m           *Measurement
	wroteHeader bool
}

func (tw *timingWriter) WriteHeader(status int) {
	if !tw.wroteHeader {
		tw.appendSegment()
		tw.wroteHeader = true
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
		// The name was validated at construction, so this only happens
		// when a clock runs backwards; the segment is dropped rather
		// than written malformed.
		return
	}
	AppendSegment(tw.Header(), segment)
}
