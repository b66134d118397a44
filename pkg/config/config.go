// Package config loads and validates the TOML run configuration.
package config

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shikc/wotan/pkg/analysis"
	"github.com/shikc/wotan/pkg/analysis/estimate"
	"github.com/shikc/wotan/pkg/errors"
)

// Duration is a time.Duration that decodes from TOML strings like "24h".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full tool configuration.
type Config struct {
	Graph    GraphConfig    `toml:"graph"`
	Analysis AnalysisConfig `toml:"analysis"`
	Cache    CacheConfig    `toml:"cache"`
	API      APIConfig      `toml:"api"`
}

// GraphConfig locates the resource graph and device description.
type GraphConfig struct {
	// Path of the graph JSON file.
	Path string `toml:"path"`

	// Fabric is the path of the device description JSON file. Required
	// unless Simple is set.
	Fabric string `toml:"fabric"`

	// Simple selects simple-graph mode: the graph's single SOURCE and
	// SINK are analyzed as one connection, without tile geometry.
	Simple bool `toml:"simple"`
}

// AnalysisConfig maps onto analysis.Settings.
type AnalysisConfig struct {
	Mode              string   `toml:"mode"`
	Workers           int      `toml:"workers"`
	MaxConnLength     int      `toml:"max_conn_length"`
	CoreOffset        *int     `toml:"core_offset"`
	PathFlexibility   float64  `toml:"path_flexibility"`
	DemandMultiplier  float64  `toml:"demand_multiplier"`
	WorstPercentile   float64  `toml:"worst_percentile"`
	DemandPercentile  float64  `toml:"demand_percentile"`
	RoutingNodeDemand *float64 `toml:"routing_node_demand"`
}

// CacheConfig selects and parameterizes the result cache.
type CacheConfig struct {
	// Backend is one of "none", "file" or "redis".
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	TTL      Duration `toml:"ttl"`
}

// APIConfig configures the HTTP API server.
type APIConfig struct {
	Listen string `toml:"listen"`
}

// Default returns the configuration used when a field is absent.
func Default() Config {
	set := analysis.DefaultSettings()
	return Config{
		Analysis: AnalysisConfig{
			Mode:             estimate.Propagate.String(),
			MaxConnLength:    set.MaxConnLength,
			PathFlexibility:  set.PathFlexibility,
			DemandMultiplier: set.DemandMultiplier,
			WorstPercentile:  set.WorstPercentile,
			DemandPercentile: set.DemandPercentile,
		},
		Cache: CacheConfig{
			Backend: "none",
			TTL:     Duration(24 * time.Hour),
		},
		API: APIConfig{
			Listen: ":8080",
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints not covered by Settings.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "none", "file", "redis":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "redis cache backend requires an address")
	}
	if _, err := c.Settings(); err != nil {
		return err
	}
	return nil
}

// Settings converts the analysis section into run settings.
func (c *Config) Settings() (analysis.Settings, error) {
	set := analysis.DefaultSettings()
	a := c.Analysis

	if a.Mode != "" {
		mode, err := estimate.ParseMode(a.Mode)
		if err != nil {
			return set, err
		}
		set.Probability.Mode = mode
	}
	if a.RoutingNodeDemand != nil {
		set.Probability.RoutingNodeDemand = *a.RoutingNodeDemand
		set.Probability.RoutingNodeDemandSet = true
	}
	set.Workers = a.Workers
	if a.MaxConnLength != 0 {
		set.MaxConnLength = a.MaxConnLength
	}
	if a.CoreOffset != nil {
		set.CoreOffset = *a.CoreOffset
	}
	if a.PathFlexibility != 0 {
		set.PathFlexibility = a.PathFlexibility
	}
	if a.DemandMultiplier != 0 {
		set.DemandMultiplier = a.DemandMultiplier
	}
	if a.WorstPercentile != 0 {
		set.WorstPercentile = a.WorstPercentile
	}
	if a.DemandPercentile != 0 {
		set.DemandPercentile = a.DemandPercentile
	}
	return set, nil
}
