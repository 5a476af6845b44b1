package demo

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	servertiming "github.com/EmpoweredVote/server-timing"
	"github.com/go-chi/chi/v5"
)

// NewRouter assembles the demo server. Every response carries the
// service-wide segment, each simulated route nests its own under it, and
// the bookmarks API and reverse proxy are mounted when configured.
func NewRouter(cfg Config, h *Handlers) (*chi.Mux, error) {
	service, err := servertiming.New(cfg.Routes.Service)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(CORSMiddleware)
	if cfg.Routes.RatePerSec > 0 {
		r.Use(ThrottleMiddleware(cfg.Routes.RatePerSec, cfg.Routes.RateBurst))
	}
	r.Use(service.Middleware)

	r.Get("/", RootHandler)

	for _, route := range cfg.Routes.Routes {
		in, err := servertiming.New(route.Segment)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", route.Path, err)
		}
		if route.Description != "" {
			in = in.WithDescription(route.Description)
		}
		r.With(in.Middleware).Get(route.Path, SimulatedHandler(route))
	}

	if h != nil && h.DB != nil {
		api := servertiming.MustNew("api")
		r.Route("/bookmarks", func(r chi.Router) {
			r.Use(api.Middleware)
			r.Get("/", h.ListBookmarks)
			r.Post("/", h.CreateBookmark)
		})
	}

	if cfg.UpstreamURL != "" {
		proxy, err := NewProxy(cfg.UpstreamURL)
		if err != nil {
			return nil, err
		}
		r.Handle("/proxy/*", http.StripPrefix("/proxy", proxy))
	}

	return r, nil
}

// NewProxy builds a reverse proxy whose transport stamps a gateway segment
// onto upstream responses, after anything the upstream reported itself.
func NewProxy(upstream string) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("parse upstream URL: %w", err)
	}

	gateway, err := servertiming.New("gateway")
	if err != nil {
		return nil, err
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.Transport = gateway.RoundTripper(nil)
	return proxy, nil
}
