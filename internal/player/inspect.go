package player

import (
	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/game"
)

// DefaultLookAheadRounds is how far LookAhead simulates each continuation.
const DefaultLookAheadRounds = 10

// scripted plays a fixed sequence of moves, then repeats a final move.
type scripted struct {
	Base
	moves []action.Action
	then  action.Action
}

func (s scripted) Decide(self, _ *Player) action.Action {
	if n := self.history.Len(); n < len(s.moves) {
		return s.moves[n]
	}
	return s.then
}

func (s scripted) Clone() Strategy { return s }

// proxy stands in for a real player during simulation.
func proxy(attrs MatchAttributes, moves []action.Action, then action.Action) *Player {
	p := New(scripted{moves: append([]action.Action(nil), moves...), then: then})
	p.attrs = attrs
	return p
}

// Sandbox returns an independent copy of p whose strategy state is rebuilt
// by replaying p's history, and whose random source continues from p's. The
// copy shares nothing with p: deciding with it leaves p untouched.
func (p *Player) Sandbox() *Player {
	s := p.IsolatedClone()
	s.SetSeed(p.Seed())
	if p.forced != nil {
		s.forced = IsolatedCloneOf(p.forced)
	}
	plays, coplays := p.history.Plays(), p.history.Coplays()
	other := proxy(p.attrs, coplays, action.C)
	for i := range plays {
		s.Decide(other)
		s.UpdateHistory(plays[i], coplays[i])
		other.UpdateHistory(coplays[i], plays[i])
	}
	s.rng = p.rng.Clone()
	return s
}

// Inspect predicts what opponent will play against inspector this round.
// Opponents that foil inspection answer for themselves; otherwise a sandbox
// of the opponent decides against a stand-in carrying the inspector's
// history. Neither real player is modified.
func Inspect(inspector, opponent *Player) action.Action {
	if f, ok := opponent.strategy.(Foiler); ok {
		return f.FoilInspection()
	}
	view := proxy(inspector.attrs, nil, action.C)
	view.history = inspector.history.Clone()
	return opponent.Sandbox().Decide(view)
}

// SimulateMatch replays prefix as hypothetical moves against an isolated
// clone of opponent, then plays move for the given number of rounds. Opponents that
// foil inspection answer with their foil move throughout. It returns the
// proxy that made the moves and the sandboxed opponent; opponent itself is
// not modified.
func SimulateMatch(opponent *Player, prefix []action.Action, move action.Action, rounds int) (*Player, *Player) {
	sandbox := opponent.IsolatedClone()
	sandbox.SetSeed(opponent.Seed())
	mover := proxy(opponent.attrs, prefix, move)
	for _, own := range prefix {
		simulateRound(mover, sandbox, own)
	}
	for i := 0; i < rounds; i++ {
		simulateRound(mover, sandbox, move)
	}
	return mover, sandbox
}

func simulateRound(mover, sandbox *Player, own action.Action) {
	var opp action.Action
	if f, ok := sandbox.strategy.(Foiler); ok {
		opp = f.FoilInspection()
	} else {
		opp = sandbox.Decide(mover)
	}
	mover.UpdateHistory(own, opp)
	sandbox.UpdateHistory(opp, own)
}

// TotalScores sums the payoffs of two players over their common history.
func TotalScores(p1, p2 *Player, g *game.Game) (float64, float64) {
	var s1, s2 float64
	plays, coplays := p1.history.Plays(), p2.history.Plays()
	for i := range plays {
		a, b := g.Score(action.Pair{plays[i], coplays[i]})
		s1 += a
		s2 += b
	}
	return s1, s2
}

// LookAhead simulates always cooperating and always defecting against a
// clone of opponent that has seen self's history, and returns the move whose
// continuation scores better. Ties on own score are broken by the
// opponent's score; a full tie defects.
func LookAhead(self, opponent *Player, g *game.Game, rounds int) action.Action {
	var results [2][2]float64
	for _, move := range []action.Action{action.C, action.D} {
		mover, sandbox := SimulateMatch(opponent, self.history.Plays(), move, rounds)
		own, opp := TotalScores(mover, sandbox, g)
		results[move] = [2]float64{own, opp}
	}
	c, d := results[action.C], results[action.D]
	if c[0] > d[0] || (c[0] == d[0] && c[1] > d[1]) {
		return action.C
	}
	return action.D
}
