package cheaters

import (
	"slices"
	"sync"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/classifier"
	"github.com/MRamiBalles/ipd/internal/player"
)

// Genome is the record of favourable responses per round that Darwin players
// share. It survives player resets, matches and clones.
type Genome struct {
	mu    sync.Mutex
	moves []action.Action
}

func NewGenome() *Genome {
	return &Genome{moves: []action.Action{action.C}}
}

// Moves returns a copy of the current record.
func (g *Genome) Moves() []action.Action {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.moves)
}

// ResetAll forgets everything learned.
func (g *Genome) ResetAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.moves = []action.Action{action.C}
}

func (g *Genome) first() action.Action {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.moves[0]
}

// Darwin plays the genome's move for the current round. After a round that
// scored below 3 it records the opposite of what the genome said, and past
// the end of the genome it echoes the opponent and extends the record.
type Darwin struct {
	player.Base
	genome   *Genome
	response action.Action
}

// NewDarwin builds a Darwin bound to g.
func NewDarwin(g *Genome) *Darwin {
	return &Darwin{genome: g, response: g.first()}
}

func (*Darwin) Name() string { return "Darwin" }

func (*Darwin) Classifier() classifier.Classifier {
	return classifier.Classifier{
		MemoryDepth:      classifier.Infinite,
		MakesUseOf:       classifier.Uses(),
		InspectsSource:   true,
		ManipulatesState: true,
	}
}

func (*Darwin) FoilInspection() action.Action { return action.C }

// Genome returns the shared record.
func (d *Darwin) Genome() *Genome { return d.genome }

func (d *Darwin) Clone() player.Strategy { return NewDarwin(d.genome) }

// IsolatedClone binds a fresh Darwin to a copy of the genome.
func (d *Darwin) IsolatedClone() player.Strategy {
	return NewDarwin(&Genome{moves: d.genome.Moves()})
}

// Reset only restores the first move of the shared genome.
func (d *Darwin) Reset() {
	d.genome.mu.Lock()
	d.genome.moves[0] = action.C
	d.genome.mu.Unlock()
	d.response = action.C
}

func (d *Darwin) Decide(self, opponent *player.Player) action.Action {
	g := d.genome
	g.mu.Lock()
	defer g.mu.Unlock()

	trial := self.History().Len()
	if trial > 0 && len(g.moves) >= trial {
		last, _ := self.History().Last()
		own, _ := self.MatchAttributes().Game.Score(last)
		if own < 3 {
			d.response = g.moves[trial-1].Flip()
		}
		g.moves[trial-1] = d.response
	}
	if trial < len(g.moves) {
		return g.moves[trial]
	}
	last, _ := opponent.History().Last()
	g.moves = append(g.moves, last[0])
	return last[0]
}

func (d *Darwin) EqualStrategy(other player.Strategy) bool {
	o, ok := other.(*Darwin)
	return ok && d.genome == o.genome && d.response == o.response
}
