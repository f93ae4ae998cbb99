// Package action defines the two moves of the prisoner's dilemma.
// This package is PURE and must NOT import any infrastructure packages.
package action

import (
	"strings"

	"github.com/pkg/errors"
)

// Action is a single round's choice.
type Action uint8

const (
	C Action = iota // Cooperate
	D               // Defect
)

// ErrUnknownAction is returned when parsing anything other than 'C' or 'D'.
var ErrUnknownAction = errors.New("unknown action")

// Flip returns the opposite action. Flip(Flip(a)) == a.
func (a Action) Flip() Action {
	if a == C {
		return D
	}
	return C
}

func (a Action) String() string {
	if a == C {
		return "C"
	}
	return "D"
}

// FromRune converts 'C' or 'D' into an Action.
func FromRune(r rune) (Action, error) {
	switch r {
	case 'C':
		return C, nil
	case 'D':
		return D, nil
	}
	return C, errors.Wrapf(ErrUnknownAction, "%q", r)
}

// ParseSequence converts a string such as "CCD" into actions.
func ParseSequence(s string) ([]Action, error) {
	out := make([]Action, 0, len(s))
	for _, r := range s {
		a, err := FromRune(r)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// MustParse is ParseSequence for literals known at compile time.
func MustParse(s string) []Action {
	out, err := ParseSequence(s)
	if err != nil {
		panic(err)
	}
	return out
}

// Format renders a sequence as a string of 'C' and 'D'.
func Format(actions []Action) string {
	var b strings.Builder
	b.Grow(len(actions))
	for _, a := range actions {
		b.WriteString(a.String())
	}
	return b.String()
}

// Pair is the joint outcome of a round, ordered (own, opponent).
type Pair [2]Action

// Swap returns the pair from the other player's point of view.
func (p Pair) Swap() Pair {
	return Pair{p[1], p[0]}
}

func (p Pair) String() string {
	return "(" + p[0].String() + ", " + p[1].String() + ")"
}

// Pairs lists every joint outcome in the canonical CC, CD, DC, DD order.
var Pairs = [4]Pair{{C, C}, {C, D}, {D, C}, {D, D}}
