package strategies

import (
	"slices"
	"testing"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/MRamiBalles/ipd/internal/player"
	"github.com/MRamiBalles/ipd/internal/strategies/cheaters"
	"github.com/MRamiBalles/ipd/internal/strategies/memoryone"
)

func TestEveryRegisteredStrategyBuilds(t *testing.T) {
	r := Default()
	for _, name := range r.Names() {
		s, err := r.New(name, nil)
		if err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
			continue
		}
		// constructors with parameters may derive a more specific name
		if s.Name() == "" {
			t.Errorf("%s: expected a name", name)
		}
		c := player.New(s).Clone()
		if c.Name() != s.Name() {
			t.Errorf("%s: expected the clone to be named %s, got %s", name, s.Name(), c.Name())
		}
	}
}

func TestNamesSorted(t *testing.T) {
	names := Default().Names()
	if len(names) == 0 {
		t.Fatal("Expected registered strategies")
	}
	if !slices.IsSorted(names) {
		t.Errorf("Expected sorted names, got %v", names)
	}
}

func TestUnexpectedParams(t *testing.T) {
	r := Default()
	if _, err := r.New("Cooperator", Params{"p": 0.5}); !errors.Is(err, ErrUnexpectedParams) {
		t.Errorf("Expected ErrUnexpectedParams, got %v", err)
	}
	if _, err := r.New("Random", Params{"q": 0.5}); !errors.Is(err, ErrUnexpectedParams) {
		t.Errorf("Expected ErrUnexpectedParams, got %v", err)
	}
	if _, err := r.New("Nobody", nil); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("Expected ErrUnknownStrategy, got %v", err)
	}
}

func TestParamsFromYAML(t *testing.T) {
	var p Params
	src := "vector: [1, 0.5, 0, 1]\ninitial: D\n"
	if err := yaml.Unmarshal([]byte(src), &p); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	s, err := Default().New("Generic Memory One Player", p)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	m := s.(*memoryone.MemoryOne)
	if want := (memoryone.Vector{1, 0.5, 0, 1}); m.Vector() != want {
		t.Errorf("Expected %v, got %v", want, m.Vector())
	}
	if !m.Classifier().Stochastic {
		t.Error("Expected a stochastic vector")
	}
}

func TestInvalidParamsAreWrapped(t *testing.T) {
	r := Default()
	if _, err := r.New("Generic Memory One Player", Params{"vector": []any{1, 2, 0, 1}}); !errors.Is(err, memoryone.ErrInvalidVector) {
		t.Errorf("Expected ErrInvalidVector, got %v", err)
	}
	if _, err := r.New("LinearRelation", Params{"s": 2}); !errors.Is(err, memoryone.ErrInvalidZD) {
		t.Errorf("Expected ErrInvalidZD, got %v", err)
	}
	if _, err := r.New("Random", Params{"p": "half"}); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("Expected ErrInvalidParam, got %v", err)
	}
}

func TestDarwinsShareTheRegistryGenome(t *testing.T) {
	r := Default()
	a := r.MustNew("Darwin", nil).(*cheaters.Darwin)
	b := r.MustNew("Darwin", nil).(*cheaters.Darwin)
	if a.Genome() != b.Genome() || a.Genome() != r.Genome() {
		t.Error("Expected Darwin players from one registry to share a genome")
	}
	if Default().Genome() == r.Genome() {
		t.Error("Expected separate registries to own separate genomes")
	}
}

func TestMetaTeamsByName(t *testing.T) {
	s, err := Default().New("Meta Majority", Params{"team": []any{"Cooperator", "Random"}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !s.Classifier().Stochastic {
		t.Error("Expected a team with Random to be stochastic")
	}
	if _, err := Default().New("Meta Winner", Params{"team": []any{"Nobody"}}); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("Expected ErrUnknownStrategy, got %v", err)
	}
}
