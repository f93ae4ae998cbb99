package memoryone

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/classifier"
	"github.com/MRamiBalles/ipd/internal/domain/game"
	"github.com/MRamiBalles/ipd/internal/player"
)

// GTFT is Generous Tit For Tat: it forgives a defection with probability p.
// Without an explicit p it uses the largest forgiveness that still keeps
// cooperation stable for the match's game.
type GTFT struct {
	*MemoryOne
	p *float64
}

// NewGTFT builds a GTFT. A nil p is derived from the game.
func NewGTFT(p *float64) (*GTFT, error) {
	g := &GTFT{MemoryOne: &MemoryOne{name: "GTFT", initial: action.C, uses: []classifier.Attribute{classifier.Game}}}
	if p != nil {
		v := *p
		g.p = &v
	}
	if err := g.configure(game.Default()); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *GTFT) configure(gm *game.Game) error {
	p, err := g.forgiveness(gm)
	if err != nil {
		return err
	}
	v := Vector{1, p, 1, p}
	if err := v.Validate(); err != nil {
		return err
	}
	g.vector = v
	return nil
}

func (g *GTFT) forgiveness(gm *game.Game) (float64, error) {
	if g.p != nil {
		return *g.p, nil
	}
	r, p, s, t, ok := gm.RPST()
	if !ok {
		return 0, errors.Wrap(ErrInvalidVector, "generosity needs a symmetric game")
	}
	return min(1-(t-r)/(r-s), (r-p)/(t-p)), nil
}

func (g *GTFT) Name() string {
	return fmt.Sprintf("GTFT: %.2f", g.vector[1])
}

func (g *GTFT) ReceiveMatchAttributes(attrs player.MatchAttributes) error {
	return g.configure(attrs.Game)
}

func (g *GTFT) Clone() player.Strategy {
	c, _ := NewGTFT(g.p)
	return c
}

// ALLCorALLD picks a move at random in the first round and repeats it.
type ALLCorALLD struct{ player.Base }

func (ALLCorALLD) Name() string { return "ALLCorALLD" }

func (ALLCorALLD) Classifier() classifier.Classifier {
	return classifier.Classifier{MemoryDepth: 1, Stochastic: true, MakesUseOf: classifier.Uses()}
}

func (ALLCorALLD) Clone() player.Strategy { return ALLCorALLD{} }

func (ALLCorALLD) Decide(self, _ *player.Player) action.Action {
	last, ok := self.History().Last()
	if !ok {
		return self.Random().RandomChoice(0.6)
	}
	return last[0]
}
