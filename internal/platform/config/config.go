// Package config holds the tunable parameters of a match run: match
// settings, the game, the deterministic cache and the worker pool.
package config

import (
	"os"
	"runtime"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/MRamiBalles/ipd/internal/domain/game"
	"github.com/MRamiBalles/ipd/internal/engine"
	"github.com/MRamiBalles/ipd/internal/infra/cache"
)

// ErrInvalidConfig is returned by Validate and Load.
var ErrInvalidConfig = errors.New("invalid configuration")

// Game holds the payoffs of a symmetric game.
type Game struct {
	R float64 `yaml:"r"`
	S float64 `yaml:"s"`
	T float64 `yaml:"t"`
	P float64 `yaml:"p"`
}

// Config holds the parameters of a run.
type Config struct {
	// Match settings
	Turns   int     `yaml:"turns"`
	ProbEnd float64 `yaml:"prob_end"`
	Noise   float64 `yaml:"noise"`
	Seed    *uint32 `yaml:"seed,omitempty"`
	Game    Game    `yaml:"game"`

	// Deterministic cache
	CacheSize   int    `yaml:"cache_size"`
	CacheDBPath string `yaml:"cache_db_path,omitempty"`

	// Worker pool
	Workers int `yaml:"workers"`
}

// DefaultConfig returns sensible defaults for production.
func DefaultConfig() *Config {
	return &Config{
		Turns:     engine.DefaultTurns,
		Game:      Game{R: 3, S: 0, T: 5, P: 1},
		CacheSize: cache.DefaultSize,
		Workers:   runtime.NumCPU(),
	}
}

// StressTestConfig returns aggressive settings for long runs.
func StressTestConfig() *Config {
	c := DefaultConfig()
	c.Turns = 1000
	c.CacheSize = cache.DefaultSize * 4
	c.Workers = runtime.NumCPU() * 4
	return c
}

// LowResourceConfig returns minimal settings for development.
func LowResourceConfig() *Config {
	c := DefaultConfig()
	c.CacheSize = 64
	c.Workers = 2
	return c
}

// Profile returns the named configuration profile.
func Profile(name string) (*Config, error) {
	switch name {
	case "", "default":
		return DefaultConfig(), nil
	case "stress":
		return StressTestConfig(), nil
	case "low":
		return LowResourceConfig(), nil
	}
	return nil, errors.Wrapf(ErrInvalidConfig, "unknown profile %q", name)
}

// Load reads a YAML file over the defaults, applies IPD_* environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	c := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config")
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, errors.Wrapf(ErrInvalidConfig, "failed to parse %s: %v", path, err)
		}
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyEnv overrides fields from IPD_TURNS, IPD_PROB_END, IPD_NOISE,
// IPD_SEED, IPD_CACHE_SIZE, IPD_CACHE_DB and IPD_WORKERS.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	ints := map[string]*int{
		"IPD_TURNS":      &c.Turns,
		"IPD_CACHE_SIZE": &c.CacheSize,
		"IPD_WORKERS":    &c.Workers,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrapf(ErrInvalidConfig, "%s=%q", key, v)
			}
			*dst = n
		}
	}
	floats := map[string]*float64{
		"IPD_PROB_END": &c.ProbEnd,
		"IPD_NOISE":    &c.Noise,
	}
	for key, dst := range floats {
		if v, ok := lookup(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return errors.Wrapf(ErrInvalidConfig, "%s=%q", key, v)
			}
			*dst = f
		}
	}
	if v, ok := lookup("IPD_SEED"); ok {
		s, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return errors.Wrapf(ErrInvalidConfig, "IPD_SEED=%q", v)
		}
		seed := uint32(s)
		c.Seed = &seed
	}
	if v, ok := lookup("IPD_CACHE_DB"); ok {
		c.CacheDBPath = v
	}
	return nil
}

// Validate rejects out-of-range values.
func (c *Config) Validate() error {
	switch {
	case c.Turns < 1:
		return errors.Wrapf(ErrInvalidConfig, "turns=%d", c.Turns)
	case c.ProbEnd < 0 || c.ProbEnd > 1:
		return errors.Wrapf(ErrInvalidConfig, "prob_end=%v", c.ProbEnd)
	case c.Noise < 0 || c.Noise > 1:
		return errors.Wrapf(ErrInvalidConfig, "noise=%v", c.Noise)
	case c.CacheSize < 0:
		return errors.Wrapf(ErrInvalidConfig, "cache_size=%d", c.CacheSize)
	case c.Workers < 1:
		return errors.Wrapf(ErrInvalidConfig, "workers=%d", c.Workers)
	}
	if _, err := c.NewGame(); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "game: %v", err)
	}
	return nil
}

// NewGame builds the configured game.
func (c *Config) NewGame() (*game.Game, error) {
	return game.New(c.Game.R, c.Game.S, c.Game.T, c.Game.P)
}

// MatchOptions converts the match settings to engine options. The config
// must be valid.
func (c *Config) MatchOptions() ([]engine.Option, error) {
	g, err := c.NewGame()
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "game: %v", err)
	}
	opts := []engine.Option{
		engine.WithTurns(c.Turns),
		engine.WithNoise(c.Noise),
		engine.WithGame(g),
	}
	if c.ProbEnd > 0 {
		opts = append(opts, engine.WithProbEnd(c.ProbEnd))
	}
	if c.Seed != nil {
		opts = append(opts, engine.WithSeed(*c.Seed))
	}
	return opts, nil
}
