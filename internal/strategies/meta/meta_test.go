package meta

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/classifier"
	"github.com/MRamiBalles/ipd/internal/player"
	"github.com/MRamiBalles/ipd/internal/strategies/basic"
)

func play(t *testing.T, m *Meta, opp player.Strategy, turns int) *player.Player {
	t.Helper()
	p1, p2 := player.New(m), player.New(opp)
	p1.SetSeed(7)
	p2.SetSeed(8)
	for i := 0; i < turns; i++ {
		p1.Play(p2, 0)
	}
	return p1
}

func must(t *testing.T, m *Meta, err error) *Meta {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return m
}

func TestRules(t *testing.T) {
	cases := []struct {
		name string
		meta func() (*Meta, error)
		opp  player.Strategy
		want string
	}{
		{"majority", func() (*Meta, error) {
			return NewMajority(basic.Cooperator{}, basic.Defector{}, basic.TitForTat{})
		}, basic.Defector{}, "CDDD"},
		{"minority", func() (*Meta, error) {
			return NewMinority(basic.Cooperator{}, basic.Cooperator{}, basic.Defector{})
		}, basic.Cooperator{}, "DDD"},
		{"winner", func() (*Meta, error) {
			return NewWinner(basic.Cooperator{}, basic.Defector{})
		}, basic.Cooperator{}, "CDDD"},
		{"mixer", func() (*Meta, error) {
			return NewMixer([]float64{0, 1}, basic.Cooperator{}, basic.Defector{})
		}, basic.Cooperator{}, "DDDD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := tc.meta()
			p := play(t, must(t, m, err), tc.opp, len(tc.want))
			if got := action.Format(p.History().Plays()); got != tc.want {
				t.Errorf("Expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestTeamRecordsProposals(t *testing.T) {
	m, err := NewMajority(basic.Cooperator{}, basic.Defector{})
	m = must(t, m, err)
	play(t, m, basic.Cooperator{}, 3)

	defector := m.Team()[1].History()
	if got := action.Format(defector.Plays()); got != "DDD" {
		t.Errorf("Expected the defector member to record DDD, got %s", got)
	}
	if got := action.Format(defector.Coplays()); got != "CCC" {
		t.Errorf("Expected the opponent's moves CCC, got %s", got)
	}
}

func TestClassifierUnion(t *testing.T) {
	m, err := NewMajority(basic.Cooperator{}, basic.TitForTat{})
	c := must(t, m, err).Classifier()
	if c.Stochastic {
		t.Error("Expected a deterministic team to be deterministic")
	}
	if c.MemoryDepth != 1 {
		t.Errorf("Expected depth 1, got %d", c.MemoryDepth)
	}

	m, err = NewMajority(basic.Cooperator{}, basic.NewRandom(0.5), basic.Grudger{})
	c = must(t, m, err).Classifier()
	if !c.Stochastic {
		t.Error("Expected one stochastic member to make the team stochastic")
	}
	if c.MemoryDepth != classifier.Infinite {
		t.Errorf("Expected infinite depth, got %d", c.MemoryDepth)
	}

	m, err = NewMixer(nil, basic.Cooperator{}, basic.Defector{})
	if !must(t, m, err).Classifier().Stochastic {
		t.Error("Expected a mixer to be stochastic")
	}
}

func TestInvalidConstruction(t *testing.T) {
	if _, err := NewWinner(); !errors.Is(err, ErrEmptyTeam) {
		t.Errorf("Expected ErrEmptyTeam, got %v", err)
	}
	if _, err := NewMixer([]float64{1}, basic.Cooperator{}, basic.Defector{}); !errors.Is(err, ErrInvalidDistribution) {
		t.Errorf("Expected ErrInvalidDistribution for a short distribution, got %v", err)
	}
	if _, err := NewMixer([]float64{-1, 2}, basic.Cooperator{}, basic.Defector{}); !errors.Is(err, ErrInvalidDistribution) {
		t.Errorf("Expected ErrInvalidDistribution for a negative weight, got %v", err)
	}
}

func TestResetAndClone(t *testing.T) {
	m, err := NewWinner(basic.TitForTat{}, basic.Grudger{}, basic.NewForgetfulGrudger())
	m = must(t, m, err)
	fresh := player.New(m.Clone())

	p := play(t, m, basic.Alternator{}, 6)
	if p.Equal(fresh) {
		t.Error("Expected a played meta player to differ from a fresh clone")
	}
	p.Reset()
	if !p.Equal(fresh) {
		t.Error("Expected reset to clear team histories and scores")
	}
}

func TestIdentityListsTeam(t *testing.T) {
	a, err := NewMajority(basic.TitForTat{}, basic.Cooperator{})
	a = must(t, a, err)
	b, err := NewMajority(basic.TitForTat{}, basic.Defector{})
	b = must(t, b, err)
	if a.Name() != b.Name() {
		t.Fatalf("Expected equal names, got %s and %s", a.Name(), b.Name())
	}
	if a.Identity() == b.Identity() {
		t.Errorf("Expected different identities, both %s", a.Identity())
	}
	if want := "Meta Majority [Tit For Tat, Cooperator]"; a.Identity() != want {
		t.Errorf("Expected %s, got %s", want, a.Identity())
	}
}
