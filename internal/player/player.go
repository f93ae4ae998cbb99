package player

import (
	"reflect"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/classifier"
	"github.com/MRamiBalles/ipd/internal/domain/history"
	"github.com/MRamiBalles/ipd/internal/random"
)

// Player runs a Strategy and owns the state of the current match.
type Player struct {
	strategy Strategy
	forced   Strategy // installed by a source-manipulating opponent
	history  *history.History
	attrs    MatchAttributes
	rng      *random.Generator
}

// New wraps s in a player with an empty history, default match attributes
// and an unseeded random source. A Match seeds it before play.
func New(s Strategy) *Player {
	return &Player{
		strategy: s,
		history:  history.New(),
		attrs:    DefaultMatchAttributes(),
		rng:      random.NewEntropy(),
	}
}

func (p *Player) Name() string { return p.strategy.Name() }

func (p *Player) String() string { return p.Name() }

// Identity names the configured strategy together with its parameters.
// Matches use it to key cached results.
func (p *Player) Identity() string { return IdentityOf(p.strategy) }

// Strategy returns the configured strategy, ignoring any override.
func (p *Player) Strategy() Strategy { return p.strategy }

// Classifier returns the classifier of the configured strategy.
func (p *Player) Classifier() classifier.Classifier { return p.strategy.Classifier() }

// History returns a read-only view of the current match.
func (p *Player) History() history.View { return p.history }

// Random returns the player's random source.
func (p *Player) Random() *random.Generator { return p.rng }

// Seed returns the seed the random source was last started from.
func (p *Player) Seed() uint32 { return p.rng.Seed() }

func (p *Player) MatchAttributes() MatchAttributes { return p.attrs }

// SetMatchAttributes installs the match context and lets the strategy
// re-derive any parameters that depend on it.
func (p *Player) SetMatchAttributes(attrs MatchAttributes) error {
	if attrs.Game == nil {
		attrs.Game = DefaultMatchAttributes().Game
	}
	if r, ok := p.strategy.(AttributeReceiver); ok {
		if err := r.ReceiveMatchAttributes(attrs); err != nil {
			return err
		}
	}
	p.attrs = attrs
	return nil
}

// SetSeed restarts the random source, and those of any owned players.
func (p *Player) SetSeed(seed uint32) {
	p.rng.Reseed(seed)
	if s, ok := p.strategy.(Seeder); ok {
		s.SeedFrom(p.rng)
	}
}

// Decide asks the active strategy for the next action against opponent.
func (p *Player) Decide(opponent *Player) action.Action {
	if p.forced != nil {
		return p.forced.Decide(p, opponent)
	}
	return p.strategy.Decide(p, opponent)
}

// Override replaces the player's decisions with s until the next Reset.
// Protected strategies refuse and false is returned.
func (p *Player) Override(s Strategy) bool {
	if pr, ok := p.strategy.(Protected); ok && pr.Protected() {
		return false
	}
	p.forced = s
	return true
}

// ForceOverride replaces the player's decisions with s even if its strategy
// is protected.
func (p *Player) ForceOverride(s Strategy) {
	p.forced = s
}

// Overridden reports whether an opponent has replaced this player's strategy.
func (p *Player) Overridden() bool { return p.forced != nil }

// UpdateHistory records a round and notifies the strategy.
func (p *Player) UpdateHistory(own, opp action.Action) {
	p.history.Append(own, opp)
	if o, ok := p.strategy.(RoundObserver); ok {
		o.ObserveRound(p, own, opp)
	}
}

// WithHistory returns a view of p that shares its strategy, match attributes
// and random source but reads h as its history. Recording a round on the
// view does not touch p's history.
func (p *Player) WithHistory(h *history.History) *Player {
	v := *p
	v.history = h
	return &v
}

// Round is the outcome of one call to Play.
type Round struct {
	Intended action.Pair
	Played   action.Pair
}

// Flips counts the actions changed by noise.
func (r Round) Flips() int {
	n := 0
	for i := range r.Played {
		if r.Played[i] != r.Intended[i] {
			n++
		}
	}
	return n
}

// Play runs one simultaneous round against opponent. Both strategies decide,
// noise is applied to each action from its owner's random source in that
// order, and both histories are updated.
func (p *Player) Play(opponent *Player, noise float64) Round {
	s1 := p.Decide(opponent)
	s2 := opponent.Decide(p)
	r := Round{Intended: action.Pair{s1, s2}}
	if noise > 0 {
		s1 = p.rng.RandomFlip(s1, noise)
		s2 = opponent.rng.RandomFlip(s2, noise)
	}
	p.UpdateHistory(s1, s2)
	opponent.UpdateHistory(s2, s1)
	r.Played = action.Pair{s1, s2}
	return r
}

// Clone returns a freshly constructed player with the same parameters and
// match attributes, an empty history and an independent random source.
func (p *Player) Clone() *Player {
	c := New(p.strategy.Clone())
	// the attributes were accepted by p, so they are valid for the clone
	_ = c.SetMatchAttributes(p.attrs)
	return c
}

// IsolatedClone is Clone for simulations: state the strategy shares with
// other instances is copied rather than shared.
func (p *Player) IsolatedClone() *Player {
	c := New(IsolatedCloneOf(p.strategy))
	_ = c.SetMatchAttributes(p.attrs)
	return c
}

// Reset returns the player to its post-construction state, keeping its
// configuration and match attributes.
func (p *Player) Reset() {
	p.history.Reset()
	p.strategy.Reset()
	p.forced = nil
}

// Equal reports whether two players have the same classifier, match
// attributes, history and strategy state. The random source is excluded: a
// match reseeds it before every play.
func (p *Player) Equal(other *Player) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.Name() != other.Name() ||
		!p.Classifier().Equal(other.Classifier()) ||
		!p.attrs.Equal(other.attrs) ||
		!p.history.Equal(other.history) ||
		(p.forced == nil) != (other.forced == nil) {
		return false
	}
	return EqualStrategies(p.strategy, other.strategy)
}

// EqualStrategies compares strategy state, deferring to Equaler when a
// implements it.
func EqualStrategies(a, b Strategy) bool {
	if e, ok := a.(Equaler); ok {
		return e.EqualStrategy(b)
	}
	return reflect.DeepEqual(a, b)
}
