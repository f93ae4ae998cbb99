package player_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/game"
	"github.com/MRamiBalles/ipd/internal/player"
	"github.com/MRamiBalles/ipd/internal/strategies/basic"
)

func playRounds(p1, p2 *player.Player, n int, noise float64) []player.Round {
	rounds := make([]player.Round, n)
	for i := range rounds {
		rounds[i] = p1.Play(p2, noise)
	}
	return rounds
}

func TestPlayUpdatesBothHistories(t *testing.T) {
	tft := player.New(basic.TitForTat{})
	def := player.New(basic.Defector{})
	playRounds(tft, def, 3, 0)

	if got := action.Format(tft.History().Plays()); got != "CDD" {
		t.Errorf("Expected CDD, got %s", got)
	}
	if got := action.Format(def.History().Coplays()); got != "CDD" {
		t.Errorf("Expected the opponent to see CDD, got %s", got)
	}
	if c, d := tft.History().Cooperations(), tft.History().Defections(); c != 1 || d != 2 {
		t.Errorf("Expected 1 cooperation and 2 defections, got %d and %d", c, d)
	}
	total := 0
	for _, n := range tft.History().StateDistribution() {
		total += n
	}
	if total != tft.History().Len() {
		t.Errorf("Expected the distribution to sum to %d, got %d", tft.History().Len(), total)
	}
}

func TestCloneIsDeterministicAndIndependent(t *testing.T) {
	p := player.New(basic.NewRandom(0.5))
	c := p.Clone()
	p.SetSeed(11)
	c.SetSeed(11)

	playRounds(p, player.New(basic.TitForTat{}), 20, 0)
	if c.History().Len() != 0 {
		t.Fatalf("Expected the clone to be untouched, got %d rounds", c.History().Len())
	}
	playRounds(c, player.New(basic.TitForTat{}), 20, 0)

	if diff := cmp.Diff(p.History().Plays(), c.History().Plays()); diff != "" {
		t.Errorf("Expected identical plays (-original +clone):\n%s", diff)
	}
	if c.Name() != p.Name() || !c.Classifier().Equal(p.Classifier()) {
		t.Errorf("Expected the clone to keep name and classifier, got %s", c.Name())
	}
}

func TestResetRestoresFreshState(t *testing.T) {
	p := player.New(basic.NewForgetfulGrudger())
	fresh := p.Clone()
	playRounds(p, player.New(basic.Alternator{}), 5, 0)
	if p.Equal(fresh) {
		t.Fatal("Expected a played player to differ from a fresh one")
	}
	p.Reset()
	if !p.Equal(fresh) {
		t.Error("Expected reset to restore the post-construction state")
	}
	if p.History().Len() != 0 || p.History().Cooperations() != 0 {
		t.Error("Expected reset to clear the history and counts")
	}
}

func TestNoiseBoundaries(t *testing.T) {
	for _, r := range playRounds(player.New(basic.Cooperator{}), player.New(basic.Defector{}), 10, 0) {
		if r.Flips() != 0 || r.Played != r.Intended {
			t.Errorf("Expected no flips without noise, got %+v", r)
		}
	}
	for _, r := range playRounds(player.New(basic.Cooperator{}), player.New(basic.Defector{}), 10, 1) {
		if r.Flips() != 2 || r.Played != (action.Pair{action.D, action.C}) {
			t.Errorf("Expected both actions flipped, got %+v", r)
		}
	}
}

func TestBaseDecidePanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, player.ErrNotImplemented) {
			t.Errorf("Expected a panic with ErrNotImplemented, got %v", r)
		}
	}()
	player.New(player.Base{}).Play(player.New(basic.Cooperator{}), 0)
}

func TestMatchAttributesDefaultGame(t *testing.T) {
	p := player.New(basic.Cooperator{})
	if err := p.SetMatchAttributes(player.MatchAttributes{Length: 12}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	attrs := p.MatchAttributes()
	if !attrs.Game.Equal(game.Default()) || attrs.Length != 12 {
		t.Errorf("Unexpected attributes %+v", attrs)
	}
	if c := p.Clone(); c.MatchAttributes().Length != 12 {
		t.Errorf("Expected the clone to keep the match length, got %d", c.MatchAttributes().Length)
	}
}

func TestSandboxPredictsNextDecision(t *testing.T) {
	self := player.New(basic.TitForTat{})
	opp := player.New(basic.NewRandom(0.5))
	opp.SetSeed(3)
	playRounds(self, opp, 6, 0)

	before := opp.History().Plays()
	predicted := opp.Sandbox().Decide(self)
	if diff := cmp.Diff(before, opp.History().Plays()); diff != "" {
		t.Errorf("Expected the sandbox to leave the history alone (-before +after):\n%s", diff)
	}
	if actual := opp.Decide(self); actual != predicted {
		t.Errorf("Expected the sandbox to predict %s, got %s", actual, predicted)
	}
}

func TestInspectAndLookAhead(t *testing.T) {
	self := player.New(basic.Defector{})
	tft := player.New(basic.TitForTat{})
	playRounds(self, tft, 2, 0)

	if got := player.Inspect(self, tft); got != action.D {
		t.Errorf("Expected TFT to answer a defection with D, got %s", got)
	}
	if n := tft.History().Len(); n != 2 {
		t.Errorf("Expected inspection not to add rounds, got %d", n)
	}

	g := game.Default()
	fresh := player.New(basic.Cooperator{})
	if got := player.LookAhead(fresh, player.New(basic.TitForTat{}), g, player.DefaultLookAheadRounds); got != action.C {
		t.Errorf("Expected to cooperate with TFT, got %s", got)
	}
	if got := player.LookAhead(fresh, player.New(basic.Cooperator{}), g, player.DefaultLookAheadRounds); got != action.D {
		t.Errorf("Expected to exploit a cooperator, got %s", got)
	}
}

func TestOverride(t *testing.T) {
	p := player.New(basic.Cooperator{})
	opp := player.New(basic.Cooperator{})
	if !p.Override(basic.Defector{}) || !p.Overridden() {
		t.Fatal("Expected the override to be installed")
	}
	if got := p.Decide(opp); got != action.D {
		t.Errorf("Expected the override to decide, got %s", got)
	}
	if p.Strategy().Name() != "Cooperator" {
		t.Errorf("Expected the configured strategy to be kept, got %s", p.Strategy().Name())
	}
	p.Reset()
	if p.Overridden() || p.Decide(opp) != action.C {
		t.Error("Expected reset to clear the override")
	}
}

func TestTotalScores(t *testing.T) {
	a, b := player.New(basic.Cooperator{}), player.New(basic.Defector{})
	playRounds(a, b, 4, 0)
	s1, s2 := player.TotalScores(a, b, game.Default())
	if s1 != 0 || s2 != 20 {
		t.Errorf("Expected 0 and 20, got %v and %v", s1, s2)
	}
}
