package servertiming

import "net/http"

// RoundTripper returns an http.RoundTripper that measures base.RoundTrip
// and appends this interceptor's segment to the response's Server-Timing
// header, after anything the upstream already sent. A nil base uses
// http.DefaultTransport. Transport errors are returned unchanged and no
// header is attached to anything.
//
// This is the client-side counterpart of Middleware; a reverse proxy uses
// it to stamp its own segment onto proxied responses.
func (in *Interceptor) RoundTripper(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &timingTransport{in: in, base: base}
}

type timingTransport struct {
	in   *Interceptor
	base http.RoundTripper
}

func (t *timingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m := t.in.Start()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if segment, serr := m.Metric().Segment(); serr == nil {
		AppendSegment(resp.Header, segment)
	}
	return resp, nil
}
