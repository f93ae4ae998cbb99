// Package fsm implements players driven by a finite state machine that
// transitions on the opponent's last move.
package fsm

import (
	"fmt"
	"slices"

	"github.com/pkg/errors"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/classifier"
	"github.com/MRamiBalles/ipd/internal/player"
)

var (
	// ErrMissingTransition is returned when a state lacks a C or D row.
	ErrMissingTransition = errors.New("state does not have transitions for both C and D")
	// ErrUnknownState is returned when moving to a state the table does not declare.
	ErrUnknownState = errors.New("unknown state")
)

// Transition reads: in State, if the opponent played Opp, move to Next and
// play Action.
type Transition struct {
	State  int
	Opp    action.Action
	Next   int
	Action action.Action
}

type key struct {
	state int
	opp   action.Action
}

type outcome struct {
	next int
	move action.Action
}

// Machine is a validated transition table and its current state.
type Machine struct {
	transitions []Transition
	table       map[key]outcome
	state       int
}

// NewMachine validates the table: the initial state and every state the
// table declares or can reach must have both a C and a D transition.
func NewMachine(transitions []Transition, initial int) (*Machine, error) {
	m := &Machine{
		transitions: slices.Clone(transitions),
		table:       make(map[key]outcome, len(transitions)),
	}
	for _, t := range transitions {
		m.table[key{t.State, t.Opp}] = outcome{t.Next, t.Action}
	}
	for _, t := range transitions {
		for _, s := range []int{t.State, t.Next} {
			if err := m.checkState(s); err != nil {
				return nil, err
			}
		}
	}
	if err := m.SetState(initial); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Machine) checkState(s int) error {
	_, okC := m.table[key{s, action.C}]
	_, okD := m.table[key{s, action.D}]
	if !okC || !okD {
		return errors.Wrapf(ErrMissingTransition, "state %d", s)
	}
	return nil
}

// State returns the current state.
func (m *Machine) State() int { return m.state }

// SetState moves the machine to s, which must be declared with both rows.
func (m *Machine) SetState(s int) error {
	if err := m.checkState(s); err != nil {
		return errors.Wrapf(ErrUnknownState, "%v", err)
	}
	m.state = s
	return nil
}

// Move transitions on the opponent's action and returns the paired action.
func (m *Machine) Move(opp action.Action) action.Action {
	o := m.table[key{m.state, opp}]
	m.state = o.next
	return o.move
}

// Transitions returns a copy of the table in declaration order.
func (m *Machine) Transitions() []Transition {
	return slices.Clone(m.transitions)
}

// Equal compares current state and table contents.
func (m *Machine) Equal(other *Machine) bool {
	if m.state != other.state || len(m.table) != len(other.table) {
		return false
	}
	for k, v := range m.table {
		if other.table[k] != v {
			return false
		}
	}
	return true
}

// Player plays InitialAction in the first round and lets the machine decide
// from then on.
type Player struct {
	player.Base
	name          string
	machine       *Machine
	initialState  int
	initialAction action.Action
	memoryDepth   int
}

// NewPlayer builds an FSM player.
func NewPlayer(transitions []Transition, initialState int, initialAction action.Action) (*Player, error) {
	m, err := NewMachine(transitions, initialState)
	if err != nil {
		return nil, err
	}
	return &Player{
		name:          "FSM Player",
		machine:       m,
		initialState:  initialState,
		initialAction: initialAction,
		memoryDepth:   1,
	}, nil
}

func named(name string, transitions []Transition, initialState int, initialAction action.Action) *Player {
	p, err := NewPlayer(transitions, initialState, initialAction)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	p.name = name
	p.memoryDepth = classifier.Infinite
	return p
}

func (p *Player) Name() string { return p.name }

// Identity adds the transition table, initial state and opening move to the
// name.
func (p *Player) Identity() string {
	return fmt.Sprintf("%s%v/%d/%s", p.name, p.machine.transitions, p.initialState, p.initialAction)
}

// Machine exposes the underlying state machine.
func (p *Player) Machine() *Machine { return p.machine }

func (p *Player) Classifier() classifier.Classifier {
	return classifier.Classifier{MemoryDepth: p.memoryDepth, MakesUseOf: classifier.Uses()}
}

func (p *Player) Reset() {
	p.machine.state = p.initialState
}

func (p *Player) Clone() player.Strategy {
	m, _ := NewMachine(p.machine.transitions, p.initialState)
	c := *p
	c.machine = m
	return &c
}

func (p *Player) Decide(self, opponent *player.Player) action.Action {
	last, ok := opponent.History().Last()
	if self.History().Len() == 0 || !ok {
		return p.initialAction
	}
	return p.machine.Move(last[0])
}

func (p *Player) EqualStrategy(other player.Strategy) bool {
	o, ok := other.(*Player)
	return ok && p.name == o.name && p.initialState == o.initialState &&
		p.initialAction == o.initialAction && p.machine.Equal(o.machine)
}
