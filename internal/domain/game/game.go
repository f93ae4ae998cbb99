// Package game holds the payoff matrices that score each round.
package game

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/MRamiBalles/ipd/internal/domain/action"
)

// ErrInvalidMatrix is returned for payoff values that are not finite numbers.
var ErrInvalidMatrix = errors.New("invalid payoff matrix")

// Matrix is a 2x2 payoff table indexed by [own action][opponent action].
type Matrix [2][2]float64

// Game is an immutable pair of payoff matrices: A for the row player, B for
// the column player.
type Game struct {
	a, b      Matrix
	symmetric bool
	scores    map[action.Pair][2]float64
}

// New builds the symmetric game with reward r, sucker s, temptation t and
// punishment p.
func New(r, s, t, p float64) (*Game, error) {
	a := Matrix{
		action.C: {action.C: r, action.D: s},
		action.D: {action.C: t, action.D: p},
	}
	return NewAsymmetric(a, transpose(a))
}

// NewAsymmetric builds a game from explicit row and column player matrices.
// Both are indexed by [row action][column action].
func NewAsymmetric(a, b Matrix) (*Game, error) {
	for _, m := range []Matrix{a, b} {
		for _, row := range m {
			for _, v := range row {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return nil, errors.Wrapf(ErrInvalidMatrix, "payoff %v", v)
				}
			}
		}
	}
	g := &Game{a: a, b: b, scores: make(map[action.Pair][2]float64, 4)}
	for _, pair := range action.Pairs {
		g.scores[pair] = [2]float64{g.a[pair[0]][pair[1]], g.b[pair[0]][pair[1]]}
	}
	g.symmetric = b == transpose(a)
	return g, nil
}

// MustNew is New for payoffs known to be valid.
func MustNew(r, s, t, p float64) *Game {
	g, err := New(r, s, t, p)
	if err != nil {
		panic(err)
	}
	return g
}

var defaultGame = MustNew(3, 0, 5, 1)

// Default returns the conventional game R=3, S=0, T=5, P=1.
func Default() *Game {
	return defaultGame
}

// Score returns the payoffs of the row and column player for a round.
func (g *Game) Score(pair action.Pair) (float64, float64) {
	s := g.scores[pair]
	return s[0], s[1]
}

// RPST returns the reward, punishment, sucker and temptation payoffs of the
// row player. ok is false for asymmetric games.
func (g *Game) RPST() (r, p, s, t float64, ok bool) {
	return g.a[action.C][action.C], g.a[action.D][action.D],
		g.a[action.C][action.D], g.a[action.D][action.C], g.symmetric
}

// Symmetric reports whether both players face the same matrix.
func (g *Game) Symmetric() bool {
	return g.symmetric
}

// Equal compares payoffs.
func (g *Game) Equal(other *Game) bool {
	if g == nil || other == nil {
		return g == other
	}
	return g.a == other.a && g.b == other.b
}

func (g *Game) String() string {
	if g.symmetric {
		r, p, s, t, _ := g.RPST()
		return fmt.Sprintf("Game(R=%g, P=%g, S=%g, T=%g)", r, p, s, t)
	}
	return fmt.Sprintf("Game(A=%v, B=%v)", g.a, g.b)
}

func transpose(m Matrix) Matrix {
	return Matrix{
		{m[0][0], m[1][0]},
		{m[0][1], m[1][1]},
	}
}
