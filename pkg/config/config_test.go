package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shikc/wotan/pkg/analysis/estimate"
	"github.com/shikc/wotan/pkg/errors"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse(`
[graph]
path = "graph.json"

[analysis]
mode = "cutline"
workers = 4
max_conn_length = 3
core_offset = 2
demand_multiplier = 0.25

[cache]
backend = "redis"
addr = "localhost:6379"
ttl = "1h"
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Graph.Path != "graph.json" {
		t.Errorf("Graph.Path = %q", cfg.Graph.Path)
	}
	set, err := cfg.Settings()
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if set.Probability.Mode != estimate.Cutline {
		t.Errorf("Mode = %s, want cutline", set.Probability.Mode)
	}
	if set.Workers != 4 || set.MaxConnLength != 3 || set.CoreOffset != 2 {
		t.Errorf("settings = %+v", set)
	}
	if set.DemandMultiplier != 0.25 {
		t.Errorf("DemandMultiplier = %v, want 0.25", set.DemandMultiplier)
	}
	// Untouched fields keep their defaults.
	if set.PathFlexibility != 1.3 {
		t.Errorf("PathFlexibility = %v, want default 1.3", set.PathFlexibility)
	}
	if cfg.Cache.TTL.Std() != time.Hour {
		t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL.Std())
	}
}

func TestParseRejectsUnknownMode(t *testing.T) {
	_, err := Parse(`
[analysis]
mode = "guesswork"
`)
	if errors.GetCode(err) != errors.ErrCodeInvalidStrategy {
		t.Errorf("Parse = %v, want invalid strategy error", err)
	}
}

func TestParseRejectsMalformedTOML(t *testing.T) {
	if _, err := Parse("[analysis\nworkers = 2\n"); errors.GetCode(err) != errors.ErrCodeInvalidConfig {
		t.Errorf("Parse = %v, want invalid config error", err)
	}
}

func TestValidateCacheBackend(t *testing.T) {
	if _, err := Parse("[cache]\nbackend = \"memcached\"\n"); errors.GetCode(err) != errors.ErrCodeInvalidConfig {
		t.Errorf("unknown backend = %v, want invalid config error", err)
	}
	if _, err := Parse("[cache]\nbackend = \"redis\"\n"); errors.GetCode(err) != errors.ErrCodeInvalidConfig {
		t.Errorf("redis without addr = %v, want invalid config error", err)
	}
}

func TestRoutingNodeDemandFlag(t *testing.T) {
	cfg, err := Parse(`
[analysis]
mode = "reliability-polynomial"
routing_node_demand = 0.3
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	set, err := cfg.Settings()
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if !set.Probability.RoutingNodeDemandSet || set.Probability.RoutingNodeDemand != 0.3 {
		t.Errorf("Probability = %+v, want routing demand 0.3 set", set.Probability)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wotan.toml")
	if err := os.WriteFile(path, []byte("[graph]\npath = \"g.json\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Graph.Path != "g.json" {
		t.Errorf("Graph.Path = %q", cfg.Graph.Path)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); errors.GetCode(err) != errors.ErrCodeInvalidConfig {
		t.Errorf("Load(missing) = %v, want invalid config error", err)
	}
}
