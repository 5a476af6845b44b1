package demo

import (
	"fmt"
	"os"

	servertiming "github.com/EmpoweredVote/server-timing"
	"github.com/goccy/go-yaml"
)

// Config drives the demo server. LoadFromEnv reads:
//
//	PORT         - listen port (default "5050")
//	DEMO_CONFIG  - optional path to a YAML routes file
//	DATABASE_URL - enables the bookmarks API when set
//	UPSTREAM_URL - enables the timed reverse proxy when set
type Config struct {
	Port        string
	DatabaseURL string
	UpstreamURL string
	Routes      RoutesFile
}

// RoutesFile is the YAML document DEMO_CONFIG points at.
type RoutesFile struct {
	Service    string           `yaml:"service"`
	RatePerSec float64          `yaml:"rate_per_sec"`
	RateBurst  int              `yaml:"rate_burst"`
	Routes     []SimulatedRoute `yaml:"routes"`
}

// SimulatedRoute is one artificial endpoint with a fixed latency, there to
// make per-route segments and nesting order visible in a browser.
type SimulatedRoute struct {
	Path        string `yaml:"path"`
	Segment     string `yaml:"segment"`
	Description string `yaml:"description"`
	LatencyMS   int    `yaml:"latency_ms"`
}

// LoadFromEnv builds a Config from the environment, falling back to the
// built-in routes when DEMO_CONFIG is unset.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		Port:        os.Getenv("PORT"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		UpstreamURL: os.Getenv("UPSTREAM_URL"),
		Routes:      DefaultRoutes(),
	}
	if cfg.Port == "" {
		cfg.Port = "5050"
	}

	if path := os.Getenv("DEMO_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
		var rf RoutesFile
		if err := yaml.Unmarshal(data, &rf); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.Routes = rf
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every metric name in the config so a bad route fails at
// startup, never mid-request.
func (c Config) Validate() error {
	if err := servertiming.ValidateName(c.Routes.Service); err != nil {
		return fmt.Errorf("service name: %w", err)
	}
	for _, route := range c.Routes.Routes {
		if route.Path == "" {
			return fmt.Errorf("route %q: path must not be empty", route.Segment)
		}
		if err := servertiming.ValidateName(route.Segment); err != nil {
			return fmt.Errorf("route %s: %w", route.Path, err)
		}
		if route.LatencyMS < 0 {
			return fmt.Errorf("route %s: latency_ms must not be negative", route.Path)
		}
	}
	return nil
}

// DefaultRoutes returns the routes served when no DEMO_CONFIG is given.
func DefaultRoutes() RoutesFile {
	return RoutesFile{
		Service:    "demo",
		RatePerSec: 50,
		RateBurst:  100,
		Routes: []SimulatedRoute{
			{Path: "/fast", Segment: "fast", Description: "in-memory lookup", LatencyMS: 2},
			{Path: "/slow", Segment: "slow", Description: "simulated upstream", LatencyMS: 100},
		},
	}
}
