package engine

import (
	"context"
	"slices"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/MRamiBalles/ipd/internal/events"
	"github.com/MRamiBalles/ipd/internal/infra/cache"
	"github.com/MRamiBalles/ipd/internal/platform/logger"
	"github.com/MRamiBalles/ipd/internal/platform/metrics"
	"github.com/MRamiBalles/ipd/internal/player"
	"github.com/MRamiBalles/ipd/internal/random"
)

// Engine is the central orchestrator that wires matches to the event log,
// the shared deterministic cache and the metrics collector.
type Engine struct {
	eventLog *events.EventLog
	logger   *logger.Logger
	cache    *cache.DeterministicCache
	metrics  *metrics.Collector
	workers  int
}

// NewEngine initializes an engine. A nil event log disables recording and a
// nil logger discards output.
func NewEngine(eventLog *events.EventLog, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{
		eventLog: eventLog,
		logger:   log,
	}
}

// SetCache shares c between every match the engine creates.
func (e *Engine) SetCache(c *cache.DeterministicCache) *Engine {
	e.cache = c
	return e
}

func (e *Engine) SetMetrics(c *metrics.Collector) *Engine {
	e.metrics = c
	return e
}

// SetWorkers bounds the number of matches PlayAll runs at once.
func (e *Engine) SetWorkers(n int) *Engine {
	e.workers = n
	return e
}

// GetEventLog exposes the event log for replay.
func (e *Engine) GetEventLog() *events.EventLog {
	return e.eventLog
}

// GetCache exposes the shared cache.
func (e *Engine) GetCache() *cache.DeterministicCache {
	return e.cache
}

// NewMatch creates a match wired to the engine's subsystems. opts are applied
// after the engine's own and may override them.
func (e *Engine) NewMatch(p1, p2 *player.Player, opts ...Option) (*Match, error) {
	base := []Option{WithLogger(e.logger), WithMetrics(e.metrics)}
	if e.eventLog != nil {
		base = append(base, WithRecorder(e.eventLog))
	}
	if e.cache != nil {
		base = append(base, WithCache(e.cache))
	}
	return NewMatch(p1, p2, append(base, opts...)...)
}

// NewMatches creates one match per pair, each seeded independently from
// seed so that the whole set is reproducible when played concurrently.
func (e *Engine) NewMatches(seed uint32, pairs [][2]*player.Player, opts ...Option) ([]*Match, error) {
	seeds := random.SeedSequence(seed, len(pairs))
	matches := make([]*Match, len(pairs))
	for i, pair := range pairs {
		m, err := e.NewMatch(pair[0], pair[1], append(slices.Clip(opts), WithSeed(seeds[i]))...)
		if err != nil {
			return nil, err
		}
		matches[i] = m
	}
	return matches, nil
}

// PlayAll plays matches with the engine's worker limit.
func (e *Engine) PlayAll(ctx context.Context, matches []*Match) error {
	e.logger.Info("playing " + humanize.Comma(int64(len(matches))) + " matches", zap.Int("workers", e.workers))
	err := PlayAll(ctx, matches, e.workers)
	if err != nil {
		e.logger.Error("matches stopped", zap.Error(err))
	}
	return err
}
