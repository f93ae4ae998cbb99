// Package memoryone implements players whose next move depends only on the
// previous round, parametrised by a four-vector of cooperation
// probabilities.
package memoryone

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/classifier"
	"github.com/MRamiBalles/ipd/internal/player"
)

// ErrInvalidVector is returned for probabilities outside [0, 1].
var ErrInvalidVector = errors.New("invalid four-vector")

// Vector holds P(C) after each joint outcome, ordered CC, CD, DC, DD from
// the player's own point of view.
type Vector [4]float64

// At returns the probability for the given previous round.
func (v Vector) At(last action.Pair) float64 {
	return v[int(last[0])*2+int(last[1])]
}

// Stochastic reports whether some entry is strictly between 0 and 1.
func (v Vector) Stochastic() bool {
	for _, p := range v {
		if p > 0 && p < 1 {
			return true
		}
	}
	return false
}

// Validate fails if some entry lies outside [0, 1].
func (v Vector) Validate() error {
	for i, p := range v {
		if p < 0 || p > 1 || p != p {
			return errors.Wrapf(ErrInvalidVector, "entry %d is %v", i, p)
		}
	}
	return nil
}

// MemoryOne plays its initial action, then cooperates with the probability
// its vector assigns to the previous round.
type MemoryOne struct {
	player.Base
	name    string
	vector  Vector
	initial action.Action
	uses    []classifier.Attribute
}

// New builds a memory-one player. WSLS is (1, 0, 0, 1) with initial C.
func New(vector Vector, initial action.Action) (*MemoryOne, error) {
	if err := vector.Validate(); err != nil {
		return nil, err
	}
	return &MemoryOne{name: "Generic Memory One Player", vector: vector, initial: initial}, nil
}

func named(name string, vector Vector, initial action.Action) *MemoryOne {
	m, err := New(vector, initial)
	if err != nil {
		panic(err)
	}
	m.name = name
	return m
}

func (m *MemoryOne) Name() string { return m.name }

// Vector returns the current four-vector.
func (m *MemoryOne) Vector() Vector { return m.vector }

func (m *MemoryOne) Classifier() classifier.Classifier {
	return classifier.Classifier{
		MemoryDepth: 1,
		Stochastic:  m.vector.Stochastic(),
		MakesUseOf:  classifier.Uses(m.uses...),
	}
}

func (m *MemoryOne) Clone() player.Strategy {
	c := *m
	c.uses = append([]classifier.Attribute(nil), m.uses...)
	return &c
}

func (m *MemoryOne) Decide(self, opponent *player.Player) action.Action {
	if opponent.History().Len() == 0 {
		return m.initial
	}
	last, _ := self.History().Last()
	return self.Random().RandomChoice(m.vector.At(last))
}

// Identity adds the vector and opening move to the name.
func (m *MemoryOne) Identity() string {
	return fmt.Sprintf("%s%v/%s", m.name, [4]float64(m.vector), m.initial)
}

func (m *MemoryOne) String() string {
	return fmt.Sprintf("%s%v", m.name, [4]float64(m.vector))
}

// WinStayLoseShift repeats its move after R or T and switches after S or P.
func WinStayLoseShift() *MemoryOne {
	return named("Win-Stay Lose-Shift", Vector{1, 0, 0, 1}, action.C)
}

// WinShiftLoseStay is the mirror image of WinStayLoseShift.
func WinShiftLoseStay() *MemoryOne {
	return named("Win-Shift Lose-Stay", Vector{0, 1, 1, 0}, action.D)
}

// FirmButFair cooperates after mutual defection with probability 2/3.
func FirmButFair() *MemoryOne {
	return named("Firm But Fair", Vector{1, 0, 1, 2.0 / 3}, action.C)
}

// StochasticCooperator is the vector found by Adami and Hintze.
func StochasticCooperator() *MemoryOne {
	return named("Stochastic Cooperator", Vector{0.935, 0.229, 0.266, 0.42}, action.C)
}

// StochasticWSLS is WSLS that errs with probability ep.
func StochasticWSLS(ep float64) (*MemoryOne, error) {
	m, err := New(Vector{1 - ep, ep, ep, 1 - ep}, action.C)
	if err != nil {
		return nil, err
	}
	m.name = fmt.Sprintf("Stochastic WSLS: %g", ep)
	return m, nil
}

// SoftJoss is Tit For Tat that forgives a defection with probability 1-q.
func SoftJoss(q float64) (*MemoryOne, error) {
	m, err := New(Vector{1, 1 - q, 1, 1 - q}, action.C)
	if err != nil {
		return nil, err
	}
	m.name = fmt.Sprintf("Soft Joss: %g", q)
	return m, nil
}

// Reactive cooperates with probability p after an opponent cooperation and
// q after a defection.
func Reactive(p, q float64) (*MemoryOne, error) {
	m, err := New(Vector{p, q, p, q}, action.C)
	if err != nil {
		return nil, err
	}
	m.name = fmt.Sprintf("Reactive Player: %g, %g", p, q)
	return m, nil
}

// Joss is Tit For Tat that defects instead of cooperating 10% of the time.
func Joss() *MemoryOne {
	return named("First by Joss", Vector{0.9, 0, 0.9, 0}, action.C)
}

// Grofman cooperates after matching moves and with probability 2/7 otherwise.
func Grofman() *MemoryOne {
	return named("First by Grofman", Vector{1, 2.0 / 7, 2.0 / 7, 1}, action.C)
}
