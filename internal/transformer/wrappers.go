package transformer

import (
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/classifier"
	"github.com/MRamiBalles/ipd/internal/domain/history"
	"github.com/MRamiBalles/ipd/internal/player"
)

// wrapper is one layer of behaviour around an inner strategy. Layers that
// keep state return a fresh copy from fresh.
type wrapper interface {
	prefix() string
	decide(inner player.Strategy, self, opponent *player.Player) action.Action
	reclassify(c classifier.Classifier) classifier.Classifier
	fresh() wrapper
}

// stateless provides fresh and reclassify for layers that need neither.
type stateless struct{}

func (stateless) reclassify(c classifier.Classifier) classifier.Classifier { return c }

type identity struct{ stateless }

func (identity) prefix() string   { return "" }
func (w identity) fresh() wrapper { return w }
func (identity) decide(inner player.Strategy, self, opponent *player.Player) action.Action {
	return inner.Decide(self, opponent)
}

type flip struct{ stateless }

func (flip) prefix() string   { return "Flipped" }
func (w flip) fresh() wrapper { return w }
func (flip) decide(inner player.Strategy, self, opponent *player.Player) action.Action {
	return inner.Decide(self, opponent).Flip()
}

func stochasticUnlessCertain(c classifier.Classifier, p float64) classifier.Classifier {
	if p != 0 && p != 1 {
		c.Stochastic = true
	}
	return c
}

type noisy struct{ noise float64 }

func (noisy) prefix() string   { return "Noisy" }
func (w noisy) fresh() wrapper { return w }
func (w noisy) reclassify(c classifier.Classifier) classifier.Classifier {
	return stochasticUnlessCertain(c, w.noise)
}
func (w noisy) decide(inner player.Strategy, self, opponent *player.Player) action.Action {
	return self.Random().RandomFlip(inner.Decide(self, opponent), w.noise)
}

type forgiver struct{ p float64 }

func (forgiver) prefix() string   { return "Forgiving" }
func (w forgiver) fresh() wrapper { return w }
func (w forgiver) reclassify(c classifier.Classifier) classifier.Classifier {
	return stochasticUnlessCertain(c, w.p)
}
func (w forgiver) decide(inner player.Strategy, self, opponent *player.Player) action.Action {
	if inner.Decide(self, opponent) == action.D {
		return self.Random().RandomChoice(w.p)
	}
	return action.C
}

type initial struct{ seq []action.Action }

func (initial) prefix() string   { return "Initial" }
func (w initial) fresh() wrapper { return w }
func (w initial) reclassify(c classifier.Classifier) classifier.Classifier {
	c.MemoryDepth = classifier.MaxDepth(c.MemoryDepth, len(w.seq))
	return c
}
func (w initial) decide(inner player.Strategy, self, opponent *player.Player) action.Action {
	a := inner.Decide(self, opponent)
	if n := self.History().Len(); n < len(w.seq) {
		return w.seq[n]
	}
	return a
}

// final plays seq over the last len(seq) rounds of a match of known length.
type final struct{ seq []action.Action }

func (final) prefix() string   { return "Final" }
func (w final) fresh() wrapper { return w }
func (w final) reclassify(c classifier.Classifier) classifier.Classifier {
	c = c.WithUse(classifier.Length)
	c.MemoryDepth = classifier.MaxDepth(c.MemoryDepth, len(w.seq))
	return c
}
func (w final) decide(inner player.Strategy, self, opponent *player.Player) action.Action {
	a := inner.Decide(self, opponent)
	length := self.MatchAttributes().Length
	if length < 0 {
		return a
	}
	if left := length - self.History().Len(); left >= 1 && left <= len(w.seq) {
		return w.seq[len(w.seq)-left]
	}
	return a
}

// tracker records every action it lets through.
type tracker struct {
	stateless
	recorded []action.Action
}

func (*tracker) prefix() string   { return "HistoryTracking" }
func (*tracker) fresh() wrapper   { return &tracker{} }
func (w *tracker) decide(inner player.Strategy, self, opponent *player.Player) action.Action {
	a := inner.Decide(self, opponent)
	w.recorded = append(w.recorded, a)
	return a
}

type deadlockBreaking struct{ stateless }

func (deadlockBreaking) prefix() string   { return "DeadlockBreaking" }
func (w deadlockBreaking) fresh() wrapper { return w }

// decide cooperates to break a CD, DC or DC, CD alternation.
func (deadlockBreaking) decide(inner player.Strategy, self, opponent *player.Player) action.Action {
	a := inner.Decide(self, opponent)
	own, opp := self.History().Plays(), opponent.History().Plays()
	n := len(own)
	if n < 2 {
		return a
	}
	prev, last := action.Pair{own[n-2], opp[n-2]}, action.Pair{own[n-1], opp[n-1]}
	cd, dc := action.Pair{action.C, action.D}, action.Pair{action.D, action.C}
	if (prev == cd && last == dc) || (prev == dc && last == cd) {
		return action.C
	}
	return a
}

type grudge struct {
	stateless
	grudges int
}

func (grudge) prefix() string   { return "Grudging" }
func (w grudge) fresh() wrapper { return w }
func (w grudge) decide(inner player.Strategy, self, opponent *player.Player) action.Action {
	a := inner.Decide(self, opponent)
	if opponent.History().Defections() > w.grudges {
		return action.D
	}
	return a
}

// apology cooperates when the last rounds match a given pair of sequences.
type apology struct {
	stateless
	own, opp []action.Action
}

func (apology) prefix() string   { return "Apologizing" }
func (w apology) fresh() wrapper { return w }
func (w apology) decide(inner player.Strategy, self, opponent *player.Player) action.Action {
	a := inner.Decide(self, opponent)
	own, opp := self.History().Plays(), opponent.History().Plays()
	n := len(w.own)
	if len(own) < n {
		return a
	}
	if slices.Equal(own[len(own)-n:], w.own) && slices.Equal(opp[len(opp)-n:], w.opp) {
		return action.C
	}
	return a
}

// mixed hands the decision to one of a set of strategies with the given
// probabilities, otherwise it keeps the inner decision.
type mixed struct {
	probabilities []float64
	strategies    []player.Strategy
}

func (mixed) prefix() string   { return "Mutated" }
func (w mixed) fresh() wrapper { return w }

func (w mixed) reclassify(c classifier.Classifier) classifier.Classifier {
	if floats.Sum(w.probabilities) == 0 {
		return c
	}
	if i := slices.Index(w.probabilities, 1); i >= 0 {
		c.Stochastic = w.strategies[i].Classifier().Stochastic
		return c
	}
	c.Stochastic = true
	return c
}

func (w mixed) decide(inner player.Strategy, self, opponent *player.Player) action.Action {
	a := inner.Decide(self, opponent)
	total := floats.Sum(w.probabilities)
	if total == 0 {
		return a
	}
	if self.Random().Random() < total {
		// validated at construction
		i, _ := self.Random().Choice(w.probabilities)
		return w.strategies[i].Clone().Decide(self, opponent)
	}
	return a
}

// retaliation answers each defection with a run of defections.
type retaliation struct {
	stateless
	retaliations int
	count        int
}

func (*retaliation) prefix() string   { return "Retaliating" }
func (w *retaliation) fresh() wrapper { return &retaliation{retaliations: w.retaliations} }
func (w *retaliation) decide(inner player.Strategy, self, opponent *player.Player) action.Action {
	a := inner.Decide(self, opponent)
	last, ok := opponent.History().Last()
	if !ok {
		w.count = 0
		return a
	}
	if last[0] == action.D {
		w.count += w.retaliations - 1
		return action.D
	}
	if w.count > 0 {
		w.count--
		return action.D
	}
	return a
}

// untilApology defects after a defection until the opponent cooperates.
type untilApology struct {
	stateless
	retaliating bool
}

func (*untilApology) prefix() string   { return "RUA" }
func (*untilApology) fresh() wrapper   { return &untilApology{} }
func (w *untilApology) decide(inner player.Strategy, self, opponent *player.Player) action.Action {
	a := inner.Decide(self, opponent)
	last, ok := opponent.History().Last()
	if !ok {
		w.retaliating = false
		return a
	}
	if last[0] == action.D {
		w.retaliating = true
	}
	if w.retaliating {
		if last[0] == action.C {
			w.retaliating = false
			return action.C
		}
		return action.D
	}
	return a
}

// jossAnn cooperates with probability pc, defects with probability pd and
// otherwise keeps the inner decision.
type jossAnn struct{ pc, pd float64 }

func (jossAnn) prefix() string   { return "JossAnn" }
func (w jossAnn) fresh() wrapper { return w }

func (w jossAnn) weights() []float64 {
	pc, pd := w.pc, w.pd
	if sum := pc + pd; sum > 1 {
		pc, pd = pc/sum, pd/sum
	}
	return []float64{pc, pd, max(0, 1-pc-pd)}
}

func (w jossAnn) reclassify(c classifier.Classifier) classifier.Classifier {
	if (w.pc == 1 && w.pd == 0) || (w.pc == 0 && w.pd == 1) {
		c.Stochastic = false
		c.MemoryDepth = 0
		return c
	}
	if w.pc != 0 || w.pd != 0 {
		c.Stochastic = true
	}
	return c
}

func (w jossAnn) decide(inner player.Strategy, self, opponent *player.Player) action.Action {
	a := inner.Decide(self, opponent)
	i, err := self.Random().Choice(w.weights())
	if err != nil {
		return a
	}
	return [3]action.Action{action.C, action.D, a}[i]
}

// dual plays the opposite of what the inner strategy would play had each of
// its own past moves been flipped.
type dual struct{ stateless }

func (dual) prefix() string   { return "Dual" }
func (w dual) fresh() wrapper { return w }
func (dual) decide(inner player.Strategy, self, opponent *player.Player) action.Action {
	plays := slices.Clone(self.History().Plays())
	for i := range plays {
		plays[i] = plays[i].Flip()
	}
	// both sequences have the same length
	h, _ := history.FromActions(plays, self.History().Coplays())
	return inner.Decide(self.WithHistory(h), opponent).Flip()
}
