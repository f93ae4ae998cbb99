// Package cheaters implements players that break the rules of the game:
// they inspect their opponent's source, rewrite it, or carry state across
// matches.
package cheaters

import (
	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/classifier"
	"github.com/MRamiBalles/ipd/internal/player"
)

func inspecting() classifier.Classifier {
	return classifier.Classifier{
		MemoryDepth:    classifier.Infinite,
		MakesUseOf:     classifier.Uses(classifier.Game),
		InspectsSource: true,
	}
}

// MindReader simulates the rest of the match against a copy of its opponent
// for each candidate move and plays the one that scores better.
type MindReader struct{ player.Base }

func (MindReader) Name() string                      { return "Mind Reader" }
func (MindReader) Classifier() classifier.Classifier { return inspecting() }
func (MindReader) Clone() player.Strategy            { return MindReader{} }
func (MindReader) FoilInspection() action.Action     { return action.D }

func (MindReader) Decide(self, opponent *player.Player) action.Action {
	return player.LookAhead(self, opponent, self.MatchAttributes().Game, player.DefaultLookAheadRounds)
}

// ProtectedMindReader is a MindReader whose own decisions cannot be
// overridden.
type ProtectedMindReader struct{ MindReader }

func (ProtectedMindReader) Name() string           { return "Protected Mind Reader" }
func (ProtectedMindReader) Clone() player.Strategy { return ProtectedMindReader{} }
func (ProtectedMindReader) Protected() bool        { return true }

// MirrorMindReader plays whatever its opponent is about to play against it.
// Like ProtectedMindReader its decisions cannot be overridden.
type MirrorMindReader struct{ player.Base }

func (MirrorMindReader) Name() string { return "Mirror Mind Reader" }

func (MirrorMindReader) Classifier() classifier.Classifier {
	c := inspecting()
	c.MakesUseOf = classifier.Uses()
	return c
}

func (MirrorMindReader) Clone() player.Strategy        { return MirrorMindReader{} }
func (MirrorMindReader) FoilInspection() action.Action { return action.C }
func (MirrorMindReader) Protected() bool               { return true }

func (MirrorMindReader) Decide(self, opponent *player.Player) action.Action {
	return player.Inspect(self, opponent)
}
