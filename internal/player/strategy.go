// Package player defines the strategy contract and the Player that runs it.
//
// A Strategy decides; a Player owns everything a strategy needs to decide:
// the history of the current match, the match attributes and a random source.
package player

import (
	"github.com/pkg/errors"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/classifier"
	"github.com/MRamiBalles/ipd/internal/domain/game"
	"github.com/MRamiBalles/ipd/internal/random"
)

// ErrNotImplemented is the panic value of Base.Decide.
var ErrNotImplemented = errors.New("strategy not implemented")

// Strategy is the decision procedure plugged into a Player.
//
// Decide is called once per round. It may read both players' histories and
// match attributes and its own internal state. It must not mutate opponent
// unless its classifier declares ManipulatesSource.
type Strategy interface {
	Name() string
	Classifier() classifier.Classifier
	Decide(self, opponent *Player) action.Action
	// Reset returns internal state to the post-construction state.
	Reset()
	// Clone constructs a fresh strategy with the same parameters.
	Clone() Strategy
}

// MatchAttributes is the match context exposed to strategies.
type MatchAttributes struct {
	Game *game.Game
	// Length is the number of turns, or -1 when unknown.
	Length int
	Noise  float64
}

// DefaultMatchAttributes is what a player sees outside of a match.
func DefaultMatchAttributes() MatchAttributes {
	return MatchAttributes{Game: game.Default(), Length: -1}
}

// Equal compares attributes by value.
func (m MatchAttributes) Equal(other MatchAttributes) bool {
	return m.Game.Equal(other.Game) && m.Length == other.Length && m.Noise == other.Noise
}

// AttributeReceiver is implemented by strategies that derive parameters from
// the match attributes, e.g. from the game's payoffs.
type AttributeReceiver interface {
	ReceiveMatchAttributes(attrs MatchAttributes) error
}

// RoundObserver is notified after every recorded round.
type RoundObserver interface {
	ObserveRound(self *Player, own, opp action.Action)
}

// Seeder is implemented by strategies that own players of their own and
// seed them from their owner's generator.
type Seeder interface {
	SeedFrom(rng *random.Generator)
}

// Foiler answers inspection attempts with a fixed action.
type Foiler interface {
	FoilInspection() action.Action
}

// Protected strategies ignore source manipulation by their opponent.
type Protected interface {
	Protected() bool
}

// Equaler lets a strategy define equality of its internal state. Strategies
// that do not implement it are compared field by field.
type Equaler interface {
	EqualStrategy(other Strategy) bool
}

// Identifier is implemented by strategies whose name does not capture every
// parameter that affects their play. Two strategies with equal identities
// must play identically from a reset.
type Identifier interface {
	Identity() string
}

// IdentityOf returns s's identity, or its name when it has no parameters
// beyond those the name carries.
func IdentityOf(s Strategy) string {
	if i, ok := s.(Identifier); ok {
		return i.Identity()
	}
	return s.Name()
}

// Isolator is implemented by strategies that share state with other
// instances, such as a record carried across matches. IsolatedClone returns
// a fresh strategy holding a private copy of that state, so simulations can
// run it without touching the real one.
type Isolator interface {
	IsolatedClone() Strategy
}

// IsolatedCloneOf returns s.IsolatedClone when s is an Isolator and
// s.Clone otherwise.
func IsolatedCloneOf(s Strategy) Strategy {
	if i, ok := s.(Isolator); ok {
		return i.IsolatedClone()
	}
	return s.Clone()
}

// Base is the abstract strategy. Embed it to inherit the default classifier
// and a no-op Reset.
type Base struct{}

func (Base) Name() string { return "Player" }

func (Base) Classifier() classifier.Classifier { return classifier.Default() }

// Decide panics: Base has no strategy of its own.
func (Base) Decide(_, _ *Player) action.Action {
	panic(ErrNotImplemented)
}

func (Base) Reset() {}

func (Base) Clone() Strategy { return Base{} }
