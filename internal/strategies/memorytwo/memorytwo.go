// Package memorytwo implements players whose next move depends on the two
// previous rounds.
package memorytwo

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/classifier"
	"github.com/MRamiBalles/ipd/internal/player"
	"github.com/MRamiBalles/ipd/internal/strategies/basic"
)

// ErrInvalidVector is returned for probabilities outside [0, 1].
var ErrInvalidVector = errors.New("invalid sixteen-vector")

// Vector holds P(C) for each state (own[-2], own[-1], opp[-2], opp[-1]),
// enumerated with C before D in that order of significance.
type Vector [16]float64

// Index returns the position of a state in a Vector.
func Index(own2, own1, opp2, opp1 action.Action) int {
	return int(own2)<<3 | int(own1)<<2 | int(opp2)<<1 | int(opp1)
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

// Stochastic reports whether some entry is strictly between 0 and 1.
func (v Vector) Stochastic() bool {
	for _, p := range v {
		if p > 0 && p < 1 {
			return true
		}
	}
	return false
}

// ComputeMemoryDepth is 0 for a constant vector, 1 when the older round
// never matters and 2 otherwise.
func ComputeMemoryDepth(v Vector) int {
	allZero, allOne := true, true
	for _, p := range v {
		allZero = allZero && p == 0
		allOne = allOne && p == 1
	}
	if allZero || allOne {
		return 0
	}
	for own1 := action.C; own1 <= action.D; own1++ {
		for opp1 := action.C; opp1 <= action.D; opp1++ {
			ref := v[Index(action.C, own1, action.C, opp1)]
			for own2 := action.C; own2 <= action.D; own2++ {
				for opp2 := action.C; opp2 <= action.D; opp2++ {
					if v[Index(own2, own1, opp2, opp1)] != ref {
						return 2
					}
				}
			}
		}
	}
	return 1
}

// MemoryTwo plays its two initial moves, then cooperates with the
// probability its vector assigns to the last two rounds.
type MemoryTwo struct {
	player.Base
	name    string
	vector  Vector
	initial [2]action.Action
}

// New builds a memory-two player.
func New(vector Vector, initial [2]action.Action) (*MemoryTwo, error) {
	if err := vector.Validate(); err != nil {
		return nil, err
	}
	return &MemoryTwo{name: "Generic Memory Two Player", vector: vector, initial: initial}, nil
}

// Default cooperates unconditionally.
func Default() *MemoryTwo {
	var v Vector
	for i := range v {
		v[i] = 1
	}
	m, _ := New(v, [2]action.Action{action.C, action.C})
	return m
}

func named(name string, vector Vector) *MemoryTwo {
	m, err := New(vector, [2]action.Action{action.C, action.C})
	if err != nil {
		panic(err)
	}
	m.name = name
	return m
}

func (m *MemoryTwo) Name() string { return m.name }

// Identity adds the vector and opening moves to the name.
func (m *MemoryTwo) Identity() string {
	return fmt.Sprintf("%s%v/%s%s", m.name, [16]float64(m.vector), m.initial[0], m.initial[1])
}

func (m *MemoryTwo) Vector() Vector { return m.vector }

func (m *MemoryTwo) Classifier() classifier.Classifier {
	return classifier.Classifier{
		MemoryDepth: ComputeMemoryDepth(m.vector),
		Stochastic:  m.vector.Stochastic(),
		MakesUseOf:  classifier.Uses(),
	}
}

func (m *MemoryTwo) Clone() player.Strategy {
	c := *m
	return &c
}

func (m *MemoryTwo) Decide(self, opponent *player.Player) action.Action {
	turn := self.History().Len()
	if turn <= 1 {
		return m.initial[turn]
	}
	own, opp := self.History().Plays(), opponent.History().Plays()
	p := m.vector[Index(own[turn-2], own[turn-1], opp[turn-2], opp[turn-1])]
	return self.Random().RandomChoice(p)
}

// AON2 cooperates when both players' last two moves agree.
func AON2() *MemoryTwo {
	return named("AON2", Vector{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1})
}

// DelayedAON1 cooperates when the players agreed two rounds ago.
func DelayedAON1() *MemoryTwo {
	return named("Delayed AON1", Vector{1, 0, 0, 0, 0, 1, 0, 1, 0, 0, 1, 0, 0, 1, 0, 1})
}

type mode uint8

const (
	asTFT mode = iota
	asTFTT
	asALLD
)

// MEM2 switches every two rounds between Tit For Tat, Tit For Two Tats and
// Always Defect according to the last two rounds, and settles on Always
// Defect once it has chosen it twice.
type MEM2 struct {
	player.Base
	playAs       mode
	shiftCounter int
	alldCounter  int
}

func NewMEM2() *MEM2 { return &MEM2{shiftCounter: 3} }

func (*MEM2) Name() string { return "MEM2" }

func (*MEM2) Classifier() classifier.Classifier {
	return classifier.Classifier{MemoryDepth: classifier.Infinite, MakesUseOf: classifier.Uses()}
}

func (*MEM2) Clone() player.Strategy { return NewMEM2() }

func (m *MEM2) Reset() { *m = MEM2{shiftCounter: 3} }

func (m *MEM2) Decide(self, opponent *player.Player) action.Action {
	m.shiftCounter--
	if m.shiftCounter == 0 && m.alldCounter < 2 {
		m.shiftCounter = 2
		own, opp := self.History().Plays(), opponent.History().Plays()
		n := len(own)
		seen := map[action.Pair]bool{}
		for i := max(0, n-2); i < n; i++ {
			seen[action.Pair{own[i], opp[i]}] = true
		}
		switch {
		case len(seen) == 1 && seen[action.Pair{action.C, action.C}]:
			m.playAs = asTFT
		case len(seen) == 2 && seen[action.Pair{action.C, action.D}] && seen[action.Pair{action.D, action.C}]:
			m.playAs = asTFTT
		default:
			m.playAs = asALLD
			m.alldCounter++
		}
	}
	switch m.playAs {
	case asTFTT:
		return basic.TitFor2Tats{}.Decide(self, opponent)
	case asALLD:
		return action.D
	}
	return basic.TitForTat{}.Decide(self, opponent)
}
