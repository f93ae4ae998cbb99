// Package transformer wraps strategies in layers that alter their decisions
// and classification: flipping, noise, forgiveness, fixed openings and
// endings, retaliation and mixing with other strategies.
//
// Transformations are described by plain Spec values so that a transformed
// strategy can be written to a configuration file and rebuilt from it.
package transformer

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/pkg/errors"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/classifier"
	"github.com/MRamiBalles/ipd/internal/player"
	"github.com/MRamiBalles/ipd/internal/random"
	"github.com/MRamiBalles/ipd/internal/strategies"
)

var defaultRegistry = sync.OnceValue(strategies.Default)

// Transformed is a strategy wrapped in one layer. Layers nest: the inner
// strategy may itself be a Transformed.
type Transformed struct {
	inner player.Strategy
	spec  Spec
	w     wrapper
}

// Apply wraps base in each spec in turn, so the last spec is outermost.
// Strategies named by a Mixed spec are resolved in the default registry.
func Apply(base player.Strategy, specs ...Spec) (*Transformed, error) {
	return ApplyWith(defaultRegistry(), base, specs...)
}

// ApplyWith is Apply resolving strategy names in reg.
func ApplyWith(reg *strategies.Registry, base player.Strategy, specs ...Spec) (*Transformed, error) {
	if len(specs) == 0 {
		specs = []Spec{IdentitySpec()}
	}
	s := base
	var t *Transformed
	for _, spec := range specs {
		w, err := build(reg, spec)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to apply %s", spec.Kind)
		}
		t = &Transformed{inner: s, spec: spec, w: w}
		s = t
	}
	return t, nil
}

// Rebuild constructs the registered strategy name and applies specs to it.
func Rebuild(reg *strategies.Registry, name string, params strategies.Params, specs []Spec) (*Transformed, error) {
	base, err := reg.New(name, params)
	if err != nil {
		return nil, err
	}
	return ApplyWith(reg, base, specs...)
}

// MustApply is Apply for specs known to be valid.
func MustApply(base player.Strategy, specs ...Spec) *Transformed {
	t, err := Apply(base, specs...)
	if err != nil {
		panic(err)
	}
	return t
}

func build(reg *strategies.Registry, s Spec) (wrapper, error) {
	p := s.Params
	switch s.Kind {
	case Identity:
		return identity{}, nil
	case Flip:
		return flip{}, nil
	case Noisy:
		if err := probability("noise", p.Noise); err != nil {
			return nil, err
		}
		return noisy{noise: p.Noise}, nil
	case Forgiver:
		if err := probability("p", p.P); err != nil {
			return nil, err
		}
		return forgiver{p: p.P}, nil
	case Initial:
		seq, err := sequence(p.Sequence, "DDD")
		if err != nil {
			return nil, err
		}
		return initial{seq: seq}, nil
	case Final:
		seq, err := sequence(p.Sequence, "DDD")
		if err != nil {
			return nil, err
		}
		return final{seq: seq}, nil
	case TrackHistory:
		return &tracker{}, nil
	case DeadlockBreaking:
		return deadlockBreaking{}, nil
	case Grudge:
		if p.Count < 0 {
			return nil, errors.Wrapf(ErrInvalidParams, "grudges=%d", p.Count)
		}
		return grudge{grudges: p.Count}, nil
	case Apology:
		own, err := sequence(p.Sequence, "D")
		if err != nil {
			return nil, err
		}
		opp, err := sequence(p.OpponentSeq, "C")
		if err != nil {
			return nil, err
		}
		if len(own) != len(opp) {
			return nil, errors.Wrapf(ErrInvalidParams, "apology sequences %q and %q differ in length", p.Sequence, p.OpponentSeq)
		}
		return apology{own: own, opp: opp}, nil
	case Mixed:
		if len(p.Strategies) == 0 {
			return nil, errors.Wrap(ErrInvalidDistribution, "no strategies to mix in")
		}
		if err := distribution(p.Probabilities, len(p.Strategies)); err != nil {
			return nil, err
		}
		m := mixed{probabilities: slices.Clone(p.Probabilities), strategies: make([]player.Strategy, len(p.Strategies))}
		for i, name := range p.Strategies {
			st, err := reg.New(name, nil)
			if err != nil {
				return nil, err
			}
			m.strategies[i] = st
		}
		return m, nil
	case Retaliation:
		if p.Count < 1 {
			return nil, errors.Wrapf(ErrInvalidParams, "retaliations=%d", p.Count)
		}
		return &retaliation{retaliations: p.Count}, nil
	case RetaliateUntilApology:
		return &untilApology{}, nil
	case JossAnn:
		if p.PC < 0 || p.PD < 0 {
			return nil, errors.Wrapf(ErrInvalidParams, "p_c=%v p_d=%v", p.PC, p.PD)
		}
		return jossAnn{pc: p.PC, pd: p.PD}, nil
	case Dual:
		return dual{}, nil
	}
	return nil, errors.Wrapf(ErrUnknownKind, "%q", s.Kind)
}

// Base returns the innermost, untransformed strategy.
func (t *Transformed) Base() player.Strategy {
	if inner, ok := t.inner.(*Transformed); ok {
		return inner.Base()
	}
	return t.inner
}

// Specs returns the applied specs, innermost first.
func (t *Transformed) Specs() []Spec {
	var specs []Spec
	if inner, ok := t.inner.(*Transformed); ok {
		specs = inner.Specs()
	}
	return append(specs, t.spec)
}

// Recorded returns the actions seen by the outermost TrackHistory layer.
func (t *Transformed) Recorded() ([]action.Action, bool) {
	if tr, ok := t.w.(*tracker); ok {
		return slices.Clone(tr.recorded), true
	}
	if inner, ok := t.inner.(*Transformed); ok {
		return inner.Recorded()
	}
	return nil, false
}

func (t *Transformed) Name() string {
	if prefix := t.w.prefix(); prefix != "" {
		return prefix + " " + t.inner.Name()
	}
	return t.inner.Name()
}

func (t *Transformed) Classifier() classifier.Classifier {
	return t.w.reclassify(t.inner.Classifier().Clone())
}

func (t *Transformed) Decide(self, opponent *player.Player) action.Action {
	return t.w.decide(t.inner, self, opponent)
}

func (t *Transformed) Reset() {
	t.inner.Reset()
	t.w = t.w.fresh()
}

func (t *Transformed) Clone() player.Strategy {
	return &Transformed{inner: t.inner.Clone(), spec: t.spec, w: t.w.fresh()}
}

// IsolatedClone is Clone with any shared state of the inner strategy copied.
func (t *Transformed) IsolatedClone() player.Strategy {
	return &Transformed{inner: player.IsolatedCloneOf(t.inner), spec: t.spec, w: t.w.fresh()}
}

// Identity carries the spec parameters of every layer, which Name omits.
func (t *Transformed) Identity() string {
	return fmt.Sprintf("%s%+v(%s)", t.spec.Kind, t.spec.Params, player.IdentityOf(t.inner))
}

func (t *Transformed) ReceiveMatchAttributes(attrs player.MatchAttributes) error {
	if r, ok := t.inner.(player.AttributeReceiver); ok {
		return r.ReceiveMatchAttributes(attrs)
	}
	return nil
}

func (t *Transformed) ObserveRound(self *player.Player, own, opp action.Action) {
	if o, ok := t.inner.(player.RoundObserver); ok {
		o.ObserveRound(self, own, opp)
	}
}

func (t *Transformed) SeedFrom(rng *random.Generator) {
	if s, ok := t.inner.(player.Seeder); ok {
		s.SeedFrom(rng)
	}
}

func (t *Transformed) Protected() bool {
	p, ok := t.inner.(player.Protected)
	return ok && p.Protected()
}

func (t *Transformed) EqualStrategy(other player.Strategy) bool {
	o, ok := other.(*Transformed)
	return ok && t.spec.Kind == o.spec.Kind &&
		reflect.DeepEqual(t.w, o.w) && player.EqualStrategies(t.inner, o.inner)
}
