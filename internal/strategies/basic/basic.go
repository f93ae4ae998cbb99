// Package basic contains the classic strategies that other strategies and
// transformers are built from.
package basic

import (
	"math/bits"
	"strconv"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/classifier"
	"github.com/MRamiBalles/ipd/internal/player"
)

func depth(n int) classifier.Classifier {
	return classifier.Classifier{MemoryDepth: n, MakesUseOf: classifier.Uses()}
}

// Cooperator always cooperates.
type Cooperator struct{ player.Base }

func (Cooperator) Name() string                           { return "Cooperator" }
func (Cooperator) Classifier() classifier.Classifier      { return depth(0) }
func (Cooperator) Decide(_, _ *player.Player) action.Action { return action.C }
func (Cooperator) Clone() player.Strategy                 { return Cooperator{} }

// Defector always defects.
type Defector struct{ player.Base }

func (Defector) Name() string                           { return "Defector" }
func (Defector) Classifier() classifier.Classifier      { return depth(0) }
func (Defector) Decide(_, _ *player.Player) action.Action { return action.D }
func (Defector) Clone() player.Strategy                 { return Defector{} }

// Alternator cooperates, then plays the opposite of its last move.
type Alternator struct{ player.Base }

func (Alternator) Name() string                      { return "Alternator" }
func (Alternator) Classifier() classifier.Classifier { return depth(1) }
func (Alternator) Clone() player.Strategy            { return Alternator{} }

func (Alternator) Decide(self, _ *player.Player) action.Action {
	last, ok := self.History().Last()
	if !ok {
		return action.C
	}
	return last[0].Flip()
}

// TitForTat cooperates, then copies the opponent's last move.
type TitForTat struct{ player.Base }

func (TitForTat) Name() string                      { return "Tit For Tat" }
func (TitForTat) Classifier() classifier.Classifier { return depth(1) }
func (TitForTat) Clone() player.Strategy            { return TitForTat{} }

func (TitForTat) Decide(_, opponent *player.Player) action.Action {
	last, ok := opponent.History().Last()
	if !ok {
		return action.C
	}
	return last[0]
}

// TitFor2Tats defects only after two consecutive opponent defections.
type TitFor2Tats struct{ player.Base }

func (TitFor2Tats) Name() string                      { return "Tit For 2 Tats" }
func (TitFor2Tats) Classifier() classifier.Classifier { return depth(2) }
func (TitFor2Tats) Clone() player.Strategy            { return TitFor2Tats{} }

func (TitFor2Tats) Decide(_, opponent *player.Player) action.Action {
	plays := opponent.History().Plays()
	n := len(plays)
	if n >= 2 && plays[n-1] == action.D && plays[n-2] == action.D {
		return action.D
	}
	return action.C
}

// Grudger cooperates until the opponent defects once, then always defects.
type Grudger struct{ player.Base }

func (Grudger) Name() string                      { return "Grudger" }
func (Grudger) Classifier() classifier.Classifier { return depth(classifier.Infinite) }
func (Grudger) Clone() player.Strategy            { return Grudger{} }

func (Grudger) Decide(_, opponent *player.Player) action.Action {
	if opponent.History().Defections() > 0 {
		return action.D
	}
	return action.C
}

// Aggravater defects for three rounds, then plays as Grudger.
type Aggravater struct{ player.Base }

func (Aggravater) Name() string                      { return "Aggravater" }
func (Aggravater) Classifier() classifier.Classifier { return depth(classifier.Infinite) }
func (Aggravater) Clone() player.Strategy            { return Aggravater{} }

func (Aggravater) Decide(_, opponent *player.Player) action.Action {
	h := opponent.History()
	if h.Len() < 3 || h.Defections() > 0 {
		return action.D
	}
	return action.C
}

// ForgetfulGrudger holds a grudge for a fixed number of rounds.
type ForgetfulGrudger struct {
	player.Base
	memLength   int
	grudged     bool
	grudgeCount int
}

// NewForgetfulGrudger returns a grudger that forgives after 10 rounds.
func NewForgetfulGrudger() *ForgetfulGrudger {
	return &ForgetfulGrudger{memLength: 10}
}

func (*ForgetfulGrudger) Name() string                        { return "Forgetful Grudger" }
func (g *ForgetfulGrudger) Classifier() classifier.Classifier { return depth(g.memLength) }
func (*ForgetfulGrudger) Clone() player.Strategy              { return NewForgetfulGrudger() }

func (g *ForgetfulGrudger) Reset() {
	g.grudged = false
	g.grudgeCount = 0
}

func (g *ForgetfulGrudger) Decide(_, opponent *player.Player) action.Action {
	if g.grudgeCount == g.memLength {
		g.grudgeCount = 0
		g.grudged = false
	}
	if last, ok := opponent.History().Last(); ok && last[0] == action.D {
		g.grudged = true
	}
	if g.grudged {
		g.grudgeCount++
		return action.D
	}
	return action.C
}

// Random cooperates with a fixed probability.
type Random struct {
	player.Base
	p float64
}

// NewRandom returns a player cooperating with probability p.
func NewRandom(p float64) *Random {
	return &Random{p: p}
}

func (r *Random) Name() string {
	return "Random: " + strconv.FormatFloat(r.p, 'g', -1, 64)
}

func (r *Random) Classifier() classifier.Classifier {
	c := depth(0)
	c.Stochastic = r.p != 0 && r.p != 1
	return c
}

func (r *Random) Clone() player.Strategy { return NewRandom(r.p) }

func (r *Random) Decide(self, _ *player.Player) action.Action {
	return self.Random().RandomChoice(r.p)
}

// Cycler repeats a fixed cycle of moves.
type Cycler struct {
	player.Base
	cycle []action.Action
}

// NewCycler parses a cycle such as "CCD".
func NewCycler(cycle string) (*Cycler, error) {
	seq, err := action.ParseSequence(cycle)
	if err != nil {
		return nil, err
	}
	if len(seq) == 0 {
		return nil, action.ErrUnknownAction
	}
	return &Cycler{cycle: seq}, nil
}

func mustCycler(cycle string) *Cycler {
	c, err := NewCycler(cycle)
	if err != nil {
		panic(err)
	}
	return c
}

// CyclerCCD, CyclerCCCD and CyclerCCCCCD are the named cycles.
func CyclerCCD() *Cycler    { return mustCycler("CCD") }
func CyclerCCCD() *Cycler   { return mustCycler("CCCD") }
func CyclerCCCCCD() *Cycler { return mustCycler("CCCCCD") }

func (c *Cycler) Name() string                      { return "Cycler " + action.Format(c.cycle) }
func (c *Cycler) Classifier() classifier.Classifier { return depth(len(c.cycle) - 1) }
func (c *Cycler) Clone() player.Strategy            { return &Cycler{cycle: c.cycle} }

func (c *Cycler) Decide(self, _ *player.Player) action.Action {
	return c.cycle[self.History().Len()%len(c.cycle)]
}

// CycleHunter defects for the rest of the match once the opponent is seen
// to play a non-trivial cycle.
type CycleHunter struct {
	player.Base
	cycle []action.Action
}

func NewCycleHunter() *CycleHunter { return &CycleHunter{} }

func (*CycleHunter) Name() string                      { return "Cycle Hunter" }
func (*CycleHunter) Classifier() classifier.Classifier { return depth(classifier.Infinite) }
func (*CycleHunter) Clone() player.Strategy            { return NewCycleHunter() }
func (h *CycleHunter) Reset()                          { h.cycle = nil }

func (h *CycleHunter) Decide(_, opponent *player.Player) action.Action {
	if h.cycle != nil {
		return action.D
	}
	cycle, ok := DetectCycle(opponent.History().Plays(), 3, 12, 0)
	if ok && !uniform(cycle) {
		h.cycle = cycle
		return action.D
	}
	return action.C
}

func uniform(seq []action.Action) bool {
	for _, a := range seq {
		if a != seq[0] {
			return false
		}
	}
	return true
}

// ThueMorse plays the Thue-Morse sequence, defecting on 0 and cooperating
// on 1.
type ThueMorse struct {
	player.Base
	n uint
}

func NewThueMorse() *ThueMorse { return &ThueMorse{} }

func (*ThueMorse) Name() string                      { return "ThueMorse" }
func (*ThueMorse) Classifier() classifier.Classifier { return depth(classifier.Infinite) }
func (*ThueMorse) Clone() player.Strategy            { return NewThueMorse() }
func (t *ThueMorse) Reset()                          { t.n = 0 }

func (t *ThueMorse) Decide(_, _ *player.Player) action.Action {
	v := bits.OnesCount(t.n) % 2
	t.n++
	if v == 0 {
		return action.D
	}
	return action.C
}

// DetectCycle looks for the shortest cycle of length in [minSize, maxSize]
// that the whole of history[offset:] repeats. A cycle must repeat at least
// twice to count.
func DetectCycle(history []action.Action, minSize, maxSize, offset int) ([]action.Action, bool) {
	if offset > len(history) {
		return nil, false
	}
	tail := history[offset:]
	upper := min(len(tail)/2, maxSize)
	for size := minSize; size <= upper; size++ {
		cycle := tail[:size]
		found := true
		for j, a := range tail {
			if a != cycle[j%size] {
				found = false
				break
			}
		}
		if found {
			return append([]action.Action(nil), cycle...), true
		}
	}
	return nil, false
}
