package memoryone

import (
	"github.com/pkg/errors"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/classifier"
	"github.com/MRamiBalles/ipd/internal/domain/game"
	"github.com/MRamiBalles/ipd/internal/player"
)

// ErrInvalidZD is returned when the slope or baseline of a linear-relation
// strategy falls outside the bounds the game allows.
var ErrInvalidZD = errors.New("invalid zero-determinant parameters")

// BaselineSource says where the baseline score l comes from.
type BaselineSource uint8

const (
	FixedBaseline BaselineSource = iota
	PunishmentBaseline
	RewardBaseline
)

// Baseline is the score l the strategy enforces a linear relation around.
type Baseline struct {
	Source BaselineSource
	Value  float64
}

// Fixed returns a constant baseline.
func Fixed(l float64) Baseline { return Baseline{Source: FixedBaseline, Value: l} }

func (b Baseline) resolve(r, p float64) float64 {
	switch b.Source {
	case PunishmentBaseline:
		return p
	case RewardBaseline:
		return r
	}
	return b.Value
}

// LR enforces s_opp - l = s * (s_own - l) between long-run scores, with
// phi scaling how quickly it does so. The zero-determinant strategies are
// particular parameter choices.
type LR struct {
	*MemoryOne
	phi, s   float64
	baseline Baseline
}

// NewLR validates the parameters against the default game.
func NewLR(phi, s float64, l Baseline) (*LR, error) {
	return newLR("LinearRelation", phi, s, l)
}

func newLR(name string, phi, s float64, l Baseline) (*LR, error) {
	z := &LR{
		MemoryOne: &MemoryOne{name: name, initial: action.C, uses: []classifier.Attribute{classifier.Game}},
		phi:       phi,
		s:         s,
		baseline:  l,
	}
	if err := z.configure(game.Default()); err != nil {
		return nil, err
	}
	return z, nil
}

func mustLR(name string, phi, s float64, l Baseline) *LR {
	z, err := newLR(name, phi, s, l)
	if err != nil {
		panic(err)
	}
	return z
}

// FourVector derives the vector for a game. It fails when the baseline lies
// outside [P, R] or the slope outside [s_min, 1].
func FourVector(g *game.Game, phi, s float64, baseline Baseline) (Vector, error) {
	r, p, sucker, t, ok := g.RPST()
	if !ok {
		return Vector{}, errors.Wrap(ErrInvalidZD, "linear relations need a symmetric game")
	}
	l := baseline.resolve(r, p)
	sMin := -min((t-l)/(l-sucker), (l-sucker)/(t-l))
	if l < p || l > r || s > 1 || s < sMin {
		return Vector{}, errors.Wrapf(ErrInvalidZD, "l=%v must be in [%v, %v] and s=%v in [%v, 1]", l, p, r, s, sMin)
	}
	v := Vector{
		1 - phi*(1-s)*(r-l),
		1 - phi*(s*(l-sucker)+(t-l)),
		phi * ((l - sucker) + s*(t-l)),
		phi * (1 - s) * (l - p),
	}
	if err := v.Validate(); err != nil {
		return Vector{}, errors.Wrapf(ErrInvalidZD, "phi=%v gives %v", phi, [4]float64(v))
	}
	return v, nil
}

func (z *LR) configure(g *game.Game) error {
	v, err := FourVector(g, z.phi, z.s, z.baseline)
	if err != nil {
		return err
	}
	z.vector = v
	return nil
}

func (z *LR) ReceiveMatchAttributes(attrs player.MatchAttributes) error {
	return z.configure(attrs.Game)
}

func (z *LR) Clone() player.Strategy {
	c, _ := newLR(z.name, z.phi, z.s, z.baseline)
	return c
}

// The zero-determinant family, parametrised by (phi, s, l).

func ZDExtortion() *LR { return mustLR("ZD-Extortion", 0.2, 0.1, Fixed(1)) }

func ZDExtort2() *LR {
	return mustLR("ZD-Extort-2", 1.0/9, 0.5, Baseline{Source: PunishmentBaseline})
}

func ZDExtort2v2() *LR { return mustLR("ZD-Extort-2 v2", 1.0/8, 0.5, Fixed(1)) }

func ZDExtort3() *LR { return mustLR("ZD-Extort3", 3.0/26, 1.0/3, Fixed(1)) }

func ZDExtort4() *LR { return mustLR("ZD-Extort-4", 4.0/17, 0.25, Fixed(1)) }

func ZDGen2() *LR { return mustLR("ZD-GEN-2", 1.0/8, 0.5, Fixed(3)) }

func ZDGTFT2() *LR {
	return mustLR("ZD-GTFT-2", 0.25, 0.5, Baseline{Source: RewardBaseline})
}

func ZDMischief() *LR { return mustLR("ZD-Mischief", 0.1, 0.0, Fixed(1)) }

func ZDSet2() *LR { return mustLR("ZD-SET-2", 0.25, 0.0, Fixed(2)) }
