package transformer

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/MRamiBalles/ipd/internal/domain/action"
)

var (
	ErrUnknownKind         = errors.New("unknown transformer kind")
	ErrInvalidDistribution = errors.New("invalid mixing distribution")
	ErrInvalidParams       = errors.New("invalid transformer parameters")
)

// Kind names a transformation.
type Kind string

const (
	Identity              Kind = "Identity"
	Flip                  Kind = "Flip"
	Noisy                 Kind = "Noisy"
	Forgiver              Kind = "Forgiver"
	Initial               Kind = "Initial"
	Final                 Kind = "Final"
	TrackHistory          Kind = "TrackHistory"
	DeadlockBreaking      Kind = "DeadlockBreaking"
	Grudge                Kind = "Grudge"
	Apology               Kind = "Apology"
	Mixed                 Kind = "Mixed"
	Retaliation           Kind = "Retaliation"
	RetaliateUntilApology Kind = "RetaliateUntilApology"
	JossAnn               Kind = "JossAnn"
	Dual                  Kind = "Dual"
)

// Params holds the parameters of every kind; each kind reads its own.
// Action sequences are written as strings such as "DDC".
type Params struct {
	Noise         float64   `yaml:"noise,omitempty" json:"noise,omitempty"`
	P             float64   `yaml:"p,omitempty" json:"p,omitempty"`
	Sequence      string    `yaml:"sequence,omitempty" json:"sequence,omitempty"`
	OpponentSeq   string    `yaml:"opponent_sequence,omitempty" json:"opponent_sequence,omitempty"`
	Count         int       `yaml:"count,omitempty" json:"count,omitempty"`
	Probabilities []float64 `yaml:"probabilities,omitempty" json:"probabilities,omitempty"`
	Strategies    []string  `yaml:"strategies,omitempty" json:"strategies,omitempty"`
	PC            float64   `yaml:"p_c,omitempty" json:"p_c,omitempty"`
	PD            float64   `yaml:"p_d,omitempty" json:"p_d,omitempty"`
}

// Spec is one transformation. A list of specs is applied innermost first.
type Spec struct {
	Kind   Kind   `yaml:"kind" json:"kind"`
	Params Params `yaml:",inline" json:"params"`
}

func (s Spec) String() string { return string(s.Kind) }

func IdentitySpec() Spec                 { return Spec{Kind: Identity} }
func FlipSpec() Spec                     { return Spec{Kind: Flip} }
func NoisySpec(noise float64) Spec       { return Spec{Kind: Noisy, Params: Params{Noise: noise}} }
func ForgiverSpec(p float64) Spec        { return Spec{Kind: Forgiver, Params: Params{P: p}} }
func TrackHistorySpec() Spec             { return Spec{Kind: TrackHistory} }
func DeadlockBreakingSpec() Spec         { return Spec{Kind: DeadlockBreaking} }
func GrudgeSpec(grudges int) Spec        { return Spec{Kind: Grudge, Params: Params{Count: grudges}} }
func RetaliationSpec(n int) Spec         { return Spec{Kind: Retaliation, Params: Params{Count: n}} }
func RetaliateUntilApologySpec() Spec    { return Spec{Kind: RetaliateUntilApology} }
func JossAnnSpec(pc, pd float64) Spec    { return Spec{Kind: JossAnn, Params: Params{PC: pc, PD: pd}} }
func DualSpec() Spec                     { return Spec{Kind: Dual} }
func InitialSpec(seq string) Spec        { return Spec{Kind: Initial, Params: Params{Sequence: seq}} }
func FinalSpec(seq string) Spec          { return Spec{Kind: Final, Params: Params{Sequence: seq}} }
func ApologySpec(own, opp string) Spec   { return Spec{Kind: Apology, Params: Params{Sequence: own, OpponentSeq: opp}} }

// MixedSpec mutates into the named strategies with the given probabilities.
func MixedSpec(probabilities []float64, strategies ...string) Spec {
	return Spec{Kind: Mixed, Params: Params{Probabilities: probabilities, Strategies: strategies}}
}

func probability(name string, p float64) error {
	if p < 0 || p > 1 || p != p {
		return errors.Wrapf(ErrInvalidParams, "%s=%v", name, p)
	}
	return nil
}

func sequence(s, def string) ([]action.Action, error) {
	if s == "" {
		s = def
	}
	seq, err := action.ParseSequence(s)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidParams, "%v", err)
	}
	return seq, nil
}

func distribution(probs []float64, n int) error {
	if len(probs) != n {
		return errors.Wrapf(ErrInvalidDistribution, "%d probabilities for %d strategies", len(probs), n)
	}
	for _, p := range probs {
		if p < 0 || p != p {
			return errors.Wrapf(ErrInvalidDistribution, "negative probability %v", p)
		}
	}
	if sum := floats.Sum(probs); sum > 1+1e-12 {
		return errors.Wrapf(ErrInvalidDistribution, "probabilities sum to %v", sum)
	}
	return nil
}
