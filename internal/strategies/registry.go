// Package strategies maps strategy names to constructors so that players can
// be described by name and parameters, e.g. in configuration files or when
// rebuilding transformed strategies.
package strategies

import (
	"fmt"
	"slices"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/player"
	"github.com/MRamiBalles/ipd/internal/strategies/basic"
	"github.com/MRamiBalles/ipd/internal/strategies/cheaters"
	"github.com/MRamiBalles/ipd/internal/strategies/fsm"
	"github.com/MRamiBalles/ipd/internal/strategies/memoryone"
	"github.com/MRamiBalles/ipd/internal/strategies/memorytwo"
	"github.com/MRamiBalles/ipd/internal/strategies/meta"
)

var (
	ErrUnknownStrategy  = errors.New("unknown strategy")
	ErrUnexpectedParams = errors.New("unexpected parameters")
	ErrInvalidParam     = errors.New("invalid parameter")
)

// Params are the keyword parameters of a constructor.
type Params map[string]any

// Float reads a numeric parameter, falling back to def when absent.
func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	}
	return 0, errors.Wrapf(ErrInvalidParam, "%s must be a number, got %T", key, v)
}

// OptionalFloat is like Float but reports absence as nil.
func (p Params) OptionalFloat(key string) (*float64, error) {
	if _, ok := p[key]; !ok {
		return nil, nil
	}
	f, err := p.Float(key, 0)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Floats reads a list of numbers.
func (p Params) Floats(key string) ([]float64, error) {
	v, ok := p[key]
	if !ok {
		return nil, nil
	}
	switch l := v.(type) {
	case []float64:
		return l, nil
	case []any:
		out := make([]float64, len(l))
		for i, x := range l {
			f, err := Params{key: x}.Float(key, 0)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrInvalidParam, "%s must be a list of numbers, got %T", key, v)
}

// String reads a string parameter.
func (p Params) String(key, def string) (string, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Wrapf(ErrInvalidParam, "%s must be a string, got %T", key, v)
	}
	return s, nil
}

// Strings reads a list of strings.
func (p Params) Strings(key string) ([]string, error) {
	v, ok := p[key]
	if !ok {
		return nil, nil
	}
	switch l := v.(type) {
	case []string:
		return l, nil
	case []any:
		out := make([]string, len(l))
		for i, x := range l {
			s, ok := x.(string)
			if !ok {
				return nil, errors.Wrapf(ErrInvalidParam, "%s[%d] must be a string, got %T", key, i, x)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrInvalidParam, "%s must be a list of strings, got %T", key, v)
}

// Constructor builds a strategy from validated parameters.
type Constructor func(r *Registry, p Params) (player.Strategy, error)

type entry struct {
	params []string
	build  Constructor
}

// Registry is a name to constructor table. A registry owns the genome its
// Darwin players share.
type Registry struct {
	entries map[string]entry
	genome  *cheaters.Genome
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: map[string]entry{}, genome: cheaters.NewGenome()}
}

// Register adds a constructor accepting the named parameters.
func (r *Registry) Register(name string, build Constructor, params ...string) {
	r.entries[name] = entry{params: params, build: build}
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := maps.Keys(r.entries)
	slices.Sort(names)
	return names
}

// Genome returns the genome shared by this registry's Darwin players.
func (r *Registry) Genome() *cheaters.Genome { return r.genome }

// New builds the strategy registered as name.
func (r *Registry) New(name string, p Params) (player.Strategy, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownStrategy, "%q", name)
	}
	for k := range p {
		if !slices.Contains(e.params, k) {
			return nil, errors.Wrapf(ErrUnexpectedParams, "%s does not take %q", name, k)
		}
	}
	s, err := e.build(r, p)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s", name)
	}
	return s, nil
}

// MustNew is New for names and parameters known to be valid.
func (r *Registry) MustNew(name string, p Params) player.Strategy {
	s, err := r.New(name, p)
	if err != nil {
		panic(err)
	}
	return s
}

func fixed(s func() player.Strategy) Constructor {
	return func(*Registry, Params) (player.Strategy, error) { return s(), nil }
}

func team(r *Registry, p Params) ([]player.Strategy, error) {
	names, err := p.Strings("team")
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{"Cooperator", "Defector", "Tit For Tat"}
	}
	out := make([]player.Strategy, len(names))
	for i, n := range names {
		if out[i], err = r.New(n, nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Default returns a registry holding every strategy in this module.
func Default() *Registry {
	r := New()

	for _, s := range []player.Strategy{
		basic.Cooperator{}, basic.Defector{}, basic.Alternator{}, basic.TitForTat{},
		basic.TitFor2Tats{}, basic.Grudger{}, basic.Aggravater{},
		memoryone.ALLCorALLD{},
		cheaters.MindReader{}, cheaters.ProtectedMindReader{}, cheaters.MirrorMindReader{},
		cheaters.MindController{}, cheaters.MindWarper{}, cheaters.MindBender{},
	} {
		r.Register(s.Name(), fixed(s.Clone))
	}

	for _, f := range []func() player.Strategy{
		func() player.Strategy { return basic.NewForgetfulGrudger() },
		func() player.Strategy { return basic.NewCycleHunter() },
		func() player.Strategy { return basic.NewThueMorse() },
		func() player.Strategy { return basic.CyclerCCD() },
		func() player.Strategy { return basic.CyclerCCCD() },
		func() player.Strategy { return basic.CyclerCCCCCD() },
		func() player.Strategy { return memoryone.WinStayLoseShift() },
		func() player.Strategy { return memoryone.WinShiftLoseStay() },
		func() player.Strategy { return memoryone.FirmButFair() },
		func() player.Strategy { return memoryone.StochasticCooperator() },
		func() player.Strategy { return memoryone.Joss() },
		func() player.Strategy { return memoryone.Grofman() },
		func() player.Strategy { return memoryone.ZDExtortion() },
		func() player.Strategy { return memoryone.ZDExtort2() },
		func() player.Strategy { return memoryone.ZDExtort2v2() },
		func() player.Strategy { return memoryone.ZDExtort3() },
		func() player.Strategy { return memoryone.ZDExtort4() },
		func() player.Strategy { return memoryone.ZDGen2() },
		func() player.Strategy { return memoryone.ZDGTFT2() },
		func() player.Strategy { return memoryone.ZDMischief() },
		func() player.Strategy { return memoryone.ZDSet2() },
		func() player.Strategy { return memorytwo.AON2() },
		func() player.Strategy { return memorytwo.DelayedAON1() },
		func() player.Strategy { return memorytwo.NewMEM2() },
		func() player.Strategy { return fsm.Fortress3() },
		func() player.Strategy { return fsm.Fortress4() },
		func() player.Strategy { return fsm.Predator() },
		func() player.Strategy { return fsm.Raider() },
		func() player.Strategy { return fsm.Ripoff() },
		func() player.Strategy { return fsm.SolutionB1() },
		func() player.Strategy { return fsm.SolutionB5() },
		func() player.Strategy { return fsm.Thumper() },
	} {
		r.Register(f().Name(), fixed(f))
	}

	r.Register("Random", func(_ *Registry, p Params) (player.Strategy, error) {
		prob, err := p.Float("p", 0.5)
		if err != nil {
			return nil, err
		}
		if prob < 0 || prob > 1 {
			return nil, errors.Wrapf(ErrInvalidParam, "p=%v", prob)
		}
		return basic.NewRandom(prob), nil
	}, "p")

	r.Register("Cycler", func(_ *Registry, p Params) (player.Strategy, error) {
		cycle, err := p.String("cycle", "CCD")
		if err != nil {
			return nil, err
		}
		return basic.NewCycler(cycle)
	}, "cycle")

	r.Register("GTFT", func(_ *Registry, p Params) (player.Strategy, error) {
		prob, err := p.OptionalFloat("p")
		if err != nil {
			return nil, err
		}
		return memoryone.NewGTFT(prob)
	}, "p")

	r.Register("Stochastic WSLS", func(_ *Registry, p Params) (player.Strategy, error) {
		ep, err := p.Float("ep", 0.05)
		if err != nil {
			return nil, err
		}
		return memoryone.StochasticWSLS(ep)
	}, "ep")

	r.Register("Soft Joss", func(_ *Registry, p Params) (player.Strategy, error) {
		q, err := p.Float("q", 0.9)
		if err != nil {
			return nil, err
		}
		return memoryone.SoftJoss(q)
	}, "q")

	r.Register("Reactive", func(_ *Registry, p Params) (player.Strategy, error) {
		pc, err := p.Float("p", 1)
		if err != nil {
			return nil, err
		}
		q, err := p.Float("q", 0)
		if err != nil {
			return nil, err
		}
		return memoryone.Reactive(pc, q)
	}, "p", "q")

	r.Register("Generic Memory One Player", func(_ *Registry, p Params) (player.Strategy, error) {
		v, err := p.Floats("vector")
		if err != nil {
			return nil, err
		}
		if v == nil {
			v = []float64{1, 0, 0, 1}
		}
		if len(v) != 4 {
			return nil, errors.Wrapf(memoryone.ErrInvalidVector, "%d entries", len(v))
		}
		initial, err := initialAction(p)
		if err != nil {
			return nil, err
		}
		return memoryone.New(memoryone.Vector(v), initial)
	}, "vector", "initial")

	r.Register("LinearRelation", func(_ *Registry, p Params) (player.Strategy, error) {
		phi, err := p.Float("phi", 0.2)
		if err != nil {
			return nil, err
		}
		s, err := p.Float("s", 0.1)
		if err != nil {
			return nil, err
		}
		l, err := p.OptionalFloat("l")
		if err != nil {
			return nil, err
		}
		baseline := memoryone.Baseline{Source: memoryone.PunishmentBaseline}
		if l != nil {
			baseline = memoryone.Fixed(*l)
		}
		return memoryone.NewLR(phi, s, baseline)
	}, "phi", "s", "l")

	r.Register("Generic Memory Two Player", func(_ *Registry, p Params) (player.Strategy, error) {
		v, err := p.Floats("vector")
		if err != nil {
			return nil, err
		}
		if v == nil {
			return memorytwo.Default(), nil
		}
		if len(v) != 16 {
			return nil, errors.Wrapf(memorytwo.ErrInvalidVector, "%d entries", len(v))
		}
		return memorytwo.New(memorytwo.Vector(v), [2]action.Action{action.C, action.C})
	}, "vector")

	r.Register("Darwin", func(r *Registry, _ Params) (player.Strategy, error) {
		return cheaters.NewDarwin(r.genome), nil
	})

	for _, rule := range []meta.Rule{meta.Majority, meta.Minority, meta.Winner} {
		r.Register(fmt.Sprintf("Meta %s", rule), func(r *Registry, p Params) (player.Strategy, error) {
			members, err := team(r, p)
			if err != nil {
				return nil, err
			}
			switch rule {
			case meta.Majority:
				return meta.NewMajority(members...)
			case meta.Minority:
				return meta.NewMinority(members...)
			}
			return meta.NewWinner(members...)
		}, "team")
	}
	r.Register("Meta Mixer", func(r *Registry, p Params) (player.Strategy, error) {
		members, err := team(r, p)
		if err != nil {
			return nil, err
		}
		dist, err := p.Floats("distribution")
		if err != nil {
			return nil, err
		}
		return meta.NewMixer(dist, members...)
	}, "team", "distribution")

	return r
}

func initialAction(p Params) (action.Action, error) {
	s, err := p.String("initial", "C")
	if err != nil {
		return action.C, err
	}
	seq, err := action.ParseSequence(s)
	if err != nil {
		return action.C, err
	}
	if len(seq) != 1 {
		return action.C, errors.Wrapf(ErrInvalidParam, "initial=%q", s)
	}
	return seq[0], nil
}
