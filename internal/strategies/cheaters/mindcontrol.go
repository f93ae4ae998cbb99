package cheaters

import (
	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/classifier"
	"github.com/MRamiBalles/ipd/internal/player"
	"github.com/MRamiBalles/ipd/internal/strategies/basic"
)

func manipulating() classifier.Classifier {
	return classifier.Classifier{
		MemoryDepth:       classifier.Infinite,
		MakesUseOf:        classifier.Uses(),
		ManipulatesSource: true,
	}
}

// MindController rewrites its opponent into a Cooperator and defects.
type MindController struct{ player.Base }

func (MindController) Name() string                      { return "Mind Controller" }
func (MindController) Classifier() classifier.Classifier { return manipulating() }
func (MindController) Clone() player.Strategy            { return MindController{} }

func (MindController) Decide(_, opponent *player.Player) action.Action {
	opponent.Override(basic.Cooperator{})
	return action.D
}

// MindWarper is a MindController that cannot be rewritten itself.
type MindWarper struct{ MindController }

func (MindWarper) Name() string           { return "Mind Warper" }
func (MindWarper) Clone() player.Strategy { return MindWarper{} }
func (MindWarper) Protected() bool        { return true }

// MindBender rewrites its opponent even through protection, and cannot be
// rewritten itself.
type MindBender struct{ player.Base }

func (MindBender) Name() string                      { return "Mind Bender" }
func (MindBender) Classifier() classifier.Classifier { return manipulating() }
func (MindBender) Clone() player.Strategy            { return MindBender{} }
func (MindBender) Protected() bool                   { return true }

func (MindBender) Decide(_, opponent *player.Player) action.Action {
	opponent.ForceOverride(basic.Cooperator{})
	return action.D
}
