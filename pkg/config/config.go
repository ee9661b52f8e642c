// Package config loads tiergraph.toml.
//
// A config file only needs the keys it changes; everything else keeps the
// values of [Default]. Unknown keys are rejected so that typos surface
// instead of being silently ignored.
//
//	[canvas]
//	width = 1600
//
//	[force]
//	profile = "precise"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tiergraph/pkg/build"
	"github.com/matzehuels/tiergraph/pkg/errors"
	"github.com/matzehuels/tiergraph/pkg/layout"
	"github.com/matzehuels/tiergraph/pkg/layout/force"
	"github.com/matzehuels/tiergraph/pkg/layout/selector"
	"github.com/matzehuels/tiergraph/pkg/layout/sugiyama"
)

// FileName is the config file looked up in the working directory.
const FileName = "tiergraph.toml"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Quota policy names.
const (
	QuotaDeterministic = "deterministic"
	QuotaRandom        = "random"
)

// Duration is a time.Duration written as a string such as "90s" or "24h".
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full configuration file.
type Config struct {
	Canvas   Canvas   `toml:"canvas"`
	Builder  Builder  `toml:"builder"`
	Sugiyama Sugiyama `toml:"sugiyama"`
	Force    Force    `toml:"force"`
	Selector Selector `toml:"selector"`
	Cache    Cache    `toml:"cache"`
	Server   Server   `toml:"server"`
}

// Canvas is the drawing area.
type Canvas struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// Builder holds graph construction limits.
type Builder struct {
	MaxNodes int    `toml:"max_nodes"`
	MinNodes int    `toml:"min_nodes"`
	Quota    string `toml:"quota"`
	Seed     uint64 `toml:"seed"`
}

// Sugiyama tunes the layered engine. Zero values keep engine defaults.
type Sugiyama struct {
	MarginX      float64 `toml:"margin_x" json:"margin_x,omitempty"`
	FocusY       float64 `toml:"focus_y" json:"focus_y,omitempty"`
	FocusOffset  float64 `toml:"focus_offset" json:"focus_offset,omitempty"`
	LevelSpacing float64 `toml:"level_spacing" json:"level_spacing,omitempty"`
	Font         string  `toml:"font" json:"font,omitempty"`
}

// Force tunes the force-directed engine. Zero values keep the profile's
// settings.
type Force struct {
	Profile       string  `toml:"profile" json:"profile,omitempty"`
	Seed          uint64  `toml:"seed" json:"seed,omitempty"`
	Iterations    int     `toml:"iterations" json:"iterations,omitempty"`
	Cooling       float64 `toml:"cooling" json:"cooling,omitempty"`
	Repulsion     float64 `toml:"repulsion" json:"repulsion,omitempty"`
	Attraction    float64 `toml:"attraction" json:"attraction,omitempty"`
	IdealDistance float64 `toml:"ideal_distance" json:"ideal_distance,omitempty"`
	Margin        float64 `toml:"margin" json:"margin,omitempty"`
}

// Selector picks the layout engine.
type Selector struct {
	Engine string `toml:"engine"`
}

// Cache selects and configures the result cache.
type Cache struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	Prefix   string   `toml:"prefix"`
	TTL      Duration `toml:"ttl"`
}

// Server configures `tiergraph serve`.
type Server struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Canvas: Canvas{Width: layout.DefaultWidth, Height: layout.DefaultHeight},
		Builder: Builder{
			MaxNodes: build.MaxNodesTriples,
			MinNodes: build.DefaultMinNodes,
			Quota:    QuotaDeterministic,
		},
		Force:    Force{Profile: string(force.ProfileDefault)},
		Selector: Selector{Engine: selector.EngineAuto},
		Cache: Cache{
			Backend: BackendFile,
			Dir:     DefaultCacheDir(),
			TTL:     Duration{24 * time.Hour},
		},
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  Duration{10 * time.Second},
			WriteTimeout: Duration{30 * time.Second},
			MaxBodyBytes: 1 << 20,
		},
	}
}

// DefaultCacheDir returns the per-user cache directory, falling back to the
// system temp dir.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "tiergraph")
	}
	return filepath.Join(os.TempDir(), "tiergraph-cache")
}

// Load decodes path over [Default] and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeNotFound, err, "config %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOrDefault loads path when it exists. An empty path tries [FileName]
// in the working directory.
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		if _, err := os.Stat(FileName); err != nil {
			return Default(), nil
		}
		path = FileName
	}
	return Load(path)
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidConfig, format, args...)
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return invalid("canvas dimensions must be positive, got %vx%v", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Builder.MaxNodes < 1 {
		return invalid("builder.max_nodes must be positive, got %d", c.Builder.MaxNodes)
	}
	if c.Builder.MinNodes < 0 || c.Builder.MinNodes > c.Builder.MaxNodes {
		return invalid("builder.min_nodes must be in [0, %d], got %d", c.Builder.MaxNodes, c.Builder.MinNodes)
	}
	if !slices.Contains([]string{QuotaDeterministic, QuotaRandom}, c.Builder.Quota) {
		return invalid("builder.quota must be %q or %q, got %q", QuotaDeterministic, QuotaRandom, c.Builder.Quota)
	}
	if _, err := force.ParseProfile(c.Force.Profile); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "force.profile")
	}
	if c.Force.Cooling < 0 || c.Force.Cooling >= 1 {
		return invalid("force.cooling must be in (0, 1), got %v", c.Force.Cooling)
	}
	if _, err := selector.ParseEngine(c.Selector.Engine); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "selector.engine")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return invalid("cache.redis_url is required for the redis backend")
		}
	default:
		return invalid("cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return invalid("cache.ttl must not be negative")
	}
	return nil
}

// ParseQuota maps a quota name to the builder policy.
func ParseQuota(name string) (build.QuotaPolicy, error) {
	switch name {
	case "", QuotaDeterministic:
		return build.QuotaDeterministic, nil
	case QuotaRandom:
		return build.QuotaRandom, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidInput, "unknown quota policy %q", name)
	}
}

// Apply copies non-zero tuning values onto an engine configuration.
func (s Sugiyama) Apply(cfg *sugiyama.Config) {
	setIf(&cfg.MarginX, s.MarginX)
	setIf(&cfg.FocusY, s.FocusY)
	setIf(&cfg.FocusOffset, s.FocusOffset)
	setIf(&cfg.LevelSpacing, s.LevelSpacing)
	if s.Font != "" {
		cfg.Font = s.Font
	}
}

// Engine returns the force configuration for the profile with the tuning
// values applied.
func (f Force) Engine() (force.Config, error) {
	p, err := force.ParseProfile(f.Profile)
	if err != nil {
		return force.Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "force profile")
	}
	cfg := force.ProfileConfig(p)
	cfg.Seed = f.Seed
	if f.Iterations > 0 {
		cfg.Iterations = f.Iterations
	}
	setIf(&cfg.Cooling, f.Cooling)
	setIf(&cfg.Repulsion, f.Repulsion)
	setIf(&cfg.Attraction, f.Attraction)
	setIf(&cfg.IdealDistance, f.IdealDistance)
	setIf(&cfg.Margin, f.Margin)
	return cfg, nil
}

func setIf(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}
