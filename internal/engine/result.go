package engine

import (
	"slices"
	"strings"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/player"
)

// Default sparkline symbols.
const (
	SparkC = "█"
	SparkD = " "
)

// Result returns a copy of the action pairs of the last play.
func (m *Match) Result() []action.Pair {
	return slices.Clone(m.result)
}

// Scores returns the payoffs of every turn.
func (m *Match) Scores() [][2]float64 {
	scores := make([][2]float64, len(m.result))
	for i, p := range m.result {
		s1, s2 := m.game.Score(p)
		scores[i] = [2]float64{s1, s2}
	}
	return scores
}

// FinalScore returns the total payoff of each player.
func (m *Match) FinalScore() [2]float64 {
	var total [2]float64
	for _, s := range m.Scores() {
		total[0] += s[0]
		total[1] += s[1]
	}
	return total
}

// FinalScorePerTurn returns the mean payoff of each player, or zeros for an
// unplayed match.
func (m *Match) FinalScorePerTurn() [2]float64 {
	n := len(m.result)
	if n == 0 {
		return [2]float64{}
	}
	total := m.FinalScore()
	return [2]float64{total[0] / float64(n), total[1] / float64(n)}
}

// Winner returns the player with the higher total payoff. It returns false on
// a tie or before the match is played.
func (m *Match) Winner() (*player.Player, bool) {
	if len(m.result) == 0 {
		return nil, false
	}
	s := m.FinalScore()
	switch {
	case s[0] > s[1]:
		return m.players[0], true
	case s[1] > s[0]:
		return m.players[1], true
	}
	return nil, false
}

// Cooperation counts each player's cooperations.
func (m *Match) Cooperation() [2]int {
	var coop [2]int
	for _, p := range m.result {
		for i, a := range p {
			if a == action.C {
				coop[i]++
			}
		}
	}
	return coop
}

// NormalisedCooperation is Cooperation divided by the number of turns.
func (m *Match) NormalisedCooperation() [2]float64 {
	n := len(m.result)
	if n == 0 {
		return [2]float64{}
	}
	c := m.Cooperation()
	return [2]float64{float64(c[0]) / float64(n), float64(c[1]) / float64(n)}
}

// StateDistribution counts the action pairs of the result.
func (m *Match) StateDistribution() map[action.Pair]int {
	dist := make(map[action.Pair]int)
	for _, p := range m.result {
		dist[p]++
	}
	return dist
}

// Sparklines renders each player's actions on its own line, cSymbol for C
// and dSymbol for D. Empty symbols fall back to SparkC and SparkD.
func (m *Match) Sparklines(cSymbol, dSymbol string) string {
	if cSymbol == "" {
		cSymbol = SparkC
	}
	if dSymbol == "" {
		dSymbol = SparkD
	}
	var lines [2]strings.Builder
	for _, p := range m.result {
		for i, a := range p {
			if a == action.C {
				lines[i].WriteString(cSymbol)
			} else {
				lines[i].WriteString(dSymbol)
			}
		}
	}
	return lines[0].String() + "\n" + lines[1].String()
}
