package engine

import (
	"context"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/game"
	"github.com/MRamiBalles/ipd/internal/events"
	"github.com/MRamiBalles/ipd/internal/infra/cache"
	"github.com/MRamiBalles/ipd/internal/platform/logger"
	"github.com/MRamiBalles/ipd/internal/platform/metrics"
	"github.com/MRamiBalles/ipd/internal/player"
	"github.com/MRamiBalles/ipd/internal/random"
)

// DefaultTurns is the match length when neither turns nor a stopping
// probability is given.
const DefaultTurns = 200

// ErrInvalidMatch is returned for match settings out of range.
var ErrInvalidMatch = errors.New("invalid match settings")

// Option configures a Match.
type Option func(*Match)

// WithTurns sets the number of turns, or the cap on the sampled length when
// a stopping probability is set.
func WithTurns(n int) Option {
	return func(m *Match) {
		m.turns = n
		m.turnsSet = true
	}
}

// WithProbEnd ends the match after each turn with probability p.
func WithProbEnd(p float64) Option {
	return func(m *Match) { m.probEnd = p }
}

// WithNoise flips each intended action with probability p.
func WithNoise(p float64) Option {
	return func(m *Match) { m.noise = p }
}

func WithGame(g *game.Game) Option {
	return func(m *Match) { m.game = g }
}

// WithSeed makes the match reproducible.
func WithSeed(seed uint32) Option {
	return func(m *Match) { m.rng = random.New(seed) }
}

// WithKnownLength overrides the length the players are told; -1 hides it.
func WithKnownLength(n int) Option {
	return func(m *Match) {
		m.knownLength = n
		m.knownLengthSet = true
	}
}

// WithCache replays and stores deterministic results in c.
func WithCache(c *cache.DeterministicCache) Option {
	return func(m *Match) { m.cache = c }
}

// WithRecorder appends every round to log.
func WithRecorder(log *events.EventLog) Option {
	return func(m *Match) { m.recorder = log }
}

func WithLogger(log *logger.Logger) Option {
	return func(m *Match) { m.logger = log }
}

func WithMetrics(c *metrics.Collector) Option {
	return func(m *Match) { m.metrics = c }
}

// Match is one run of paired rounds between two players.
type Match struct {
	id      string
	players [2]*player.Player

	turns          int
	turnsSet       bool
	probEnd        float64
	noise          float64
	game           *game.Game
	knownLength    int
	knownLengthSet bool
	rng            *random.Generator

	cache    *cache.DeterministicCache
	recorder *events.EventLog
	logger   *logger.Logger
	metrics  *metrics.Collector

	result   []action.Pair
	replayed bool
}

// NewMatch validates the settings and installs the match attributes on both
// players. The players belong to the match until it has been played.
func NewMatch(p1, p2 *player.Player, opts ...Option) (*Match, error) {
	m := &Match{
		id:      uuid.NewString(),
		players: [2]*player.Player{p1, p2},
		turns:   DefaultTurns,
		game:    game.Default(),
		logger:  logger.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.probEnd > 0 && !m.turnsSet {
		m.turns = math.MaxInt
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	if m.rng == nil {
		m.rng = random.NewEntropy()
	}
	if m.logger == nil {
		m.logger = logger.NewNop()
	}
	m.logger = m.logger.With(zap.String("match", m.id))

	attrs := player.MatchAttributes{Game: m.game, Length: m.attributeLength(), Noise: m.noise}
	for _, p := range m.players {
		if err := p.SetMatchAttributes(attrs); err != nil {
			return nil, errors.Wrapf(err, "failed to set match attributes for %s", p.Name())
		}
	}
	return m, nil
}

func (m *Match) validate() error {
	switch {
	case m.players[0] == nil || m.players[1] == nil:
		return errors.Wrap(ErrInvalidMatch, "two players are required")
	case m.players[0] == m.players[1]:
		return errors.Wrap(ErrInvalidMatch, "a player cannot play itself; clone it")
	case m.turns < 1:
		return errors.Wrapf(ErrInvalidMatch, "turns=%d", m.turns)
	case m.probEnd < 0 || m.probEnd > 1 || math.IsNaN(m.probEnd):
		return errors.Wrapf(ErrInvalidMatch, "prob_end=%v", m.probEnd)
	case m.noise < 0 || m.noise > 1 || math.IsNaN(m.noise):
		return errors.Wrapf(ErrInvalidMatch, "noise=%v", m.noise)
	case m.game == nil:
		return errors.Wrap(ErrInvalidMatch, "no game")
	case m.knownLengthSet && m.knownLength < 1 && m.knownLength != -1:
		return errors.Wrapf(ErrInvalidMatch, "known length=%d", m.knownLength)
	}
	return nil
}

func (m *Match) attributeLength() int {
	if m.knownLengthSet {
		return m.knownLength
	}
	if m.probEnd > 0 {
		return -1
	}
	return m.turns
}

// ID identifies the match in logs and recorded events.
func (m *Match) ID() string { return m.id }

// Players returns the two players, row player first.
func (m *Match) Players() [2]*player.Player { return m.players }

func (m *Match) Game() *game.Game { return m.game }

// Turns returns the configured number of turns; with a stopping probability
// and no explicit cap it is math.MaxInt.
func (m *Match) Turns() int { return m.turns }

// Seed returns the seed of the match's random source.
func (m *Match) Seed() uint32 { return m.rng.Seed() }

// Stochastic reports whether two plays of this match may differ.
func (m *Match) Stochastic() bool {
	return m.noise > 0 ||
		m.players[0].Classifier().Stochastic ||
		m.players[1].Classifier().Stochastic
}

// Replayed reports whether the last Play was served from the cache.
func (m *Match) Replayed() bool { return m.replayed }

// cacheKey identifies the pairing by strategy identity, game and the length
// the players were told. Players that read the length may play a prefix
// differently under another length, so entries are never shared across
// lengths.
func (m *Match) cacheKey() cache.Key {
	return cache.Key{
		Player1: m.players[0].Identity(),
		Player2: m.players[1].Identity(),
		Game:    m.game.String(),
		Length:  m.attributeLength(),
	}
}

// sampleLength draws the number of turns of a match with a stopping
// probability, capped at the configured turns.
func (m *Match) sampleLength() int {
	if m.probEnd == 0 {
		return m.turns
	}
	if m.probEnd == 1 {
		return 1
	}
	r := m.rng.Random()
	n := math.Ceil(math.Log(1-r) / math.Log(1-m.probEnd))
	if n < 1 {
		n = 1
	}
	if n >= float64(m.turns) {
		return m.turns
	}
	return int(n)
}

// Play runs the match and returns the action pairs, one per turn, from the
// first player's point of view. A deterministic pairing with enough cached
// turns is replayed from the cache without touching the players.
func (m *Match) Play(ctx context.Context) ([]action.Pair, error) {
	start := time.Now()
	turns := m.sampleLength()
	key := m.cacheKey()
	stochastic := m.Stochastic()

	if !stochastic && m.cache != nil {
		cached, ok := m.cache.Get(key)
		hit := ok && len(cached) >= turns
		m.metrics.RecordCacheLookup(hit)
		if hit {
			m.result = cached[:turns]
			m.replayed = true
			m.logger.Event(string(events.EventTypeCacheReplay), key.String(), humanize.Comma(int64(turns))+" turns replayed")
			m.record(ctx, events.MatchEvent{Type: events.EventTypeCacheReplay, Details: key.String()})
			m.metrics.RecordMatch(true, time.Since(start))
			return m.Result(), nil
		}
	}

	m.replayed = false
	names := m.players[0].Name() + " v " + m.players[1].Name()
	m.logger.Info("match started",
		zap.String("players", names),
		zap.String("turns", humanize.Comma(int64(turns))),
		zap.Float64("noise", m.noise),
	)
	m.record(ctx, events.MatchEvent{Type: events.EventTypeMatchStart, Details: names})

	for _, p := range m.players {
		p.Reset()
		p.SetSeed(m.rng.RandomSeedInt())
	}

	p1, p2 := m.players[0], m.players[1]
	result := make([]action.Pair, 0, min(turns, 1<<16))
	for turn := 1; turn <= turns; turn++ {
		if err := ctx.Err(); err != nil {
			m.result = result
			return m.Result(), errors.Wrapf(err, "match %s stopped after %d turns", m.id, turn-1)
		}
		r := p1.Play(p2, m.noise)
		result = append(result, r.Played)
		m.metrics.RecordRound(r.Flips())
		if m.recorder != nil {
			m.recordRound(ctx, turn, r)
		}
	}
	m.result = result

	if !stochastic && m.cache != nil {
		if _, err := m.cache.Put(ctx, key, result); err != nil {
			m.logger.Warn("failed to persist cache entry", zap.Error(err))
		}
	}

	s := m.FinalScore()
	m.record(ctx, events.MatchEvent{Type: events.EventTypeMatchEnd, Scores: s})
	m.metrics.RecordMatch(false, time.Since(start))
	m.logger.Info("match finished",
		zap.String("turns", humanize.Comma(int64(len(result)))),
		zap.Float64s("scores", s[:]),
		zap.String("elapsed", humanize.SIWithDigits(time.Since(start).Seconds(), 2, "s")),
	)
	return m.Result(), nil
}

func (m *Match) recordRound(ctx context.Context, turn int, r player.Round) {
	if r.Flips() > 0 {
		m.record(ctx, events.MatchEvent{Type: events.EventTypeNoiseFlip, Turn: turn, Intended: r.Intended, Played: r.Played})
	}
	s1, s2 := m.game.Score(r.Played)
	m.record(ctx, events.MatchEvent{
		Type:     events.EventTypeRound,
		Turn:     turn,
		Intended: r.Intended,
		Played:   r.Played,
		Scores:   [2]float64{s1, s2},
	})
}

// record appends e to the recorder. Recording failures never stop a match.
func (m *Match) record(ctx context.Context, e events.MatchEvent) {
	if m.recorder == nil {
		return
	}
	e.MatchID = m.id
	if err := m.recorder.Append(ctx, e); err != nil {
		m.logger.Error("failed to record event", zap.String("type", string(e.Type)), zap.Int("turn", e.Turn), zap.Error(err))
	}
}
