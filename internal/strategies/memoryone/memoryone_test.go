package memoryone

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/game"
	"github.com/MRamiBalles/ipd/internal/player"
	"github.com/MRamiBalles/ipd/internal/strategies/basic"
)

func rounds(p1, p2 *player.Player, turns int) []action.Pair {
	out := make([]action.Pair, 0, turns)
	for i := 0; i < turns; i++ {
		out = append(out, p1.Play(p2, 0).Played)
	}
	return out
}

func TestGenericMemoryOneMatchesWSLS(t *testing.T) {
	m, err := New(Vector{1, 0, 0, 1}, action.C)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got := rounds(player.New(m), player.New(basic.Alternator{}), 5)
	want := []action.Pair{
		{action.C, action.C},
		{action.C, action.D},
		{action.D, action.C},
		{action.D, action.D},
		{action.C, action.C},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Unexpected rounds (-want +got):\n%s", diff)
	}

	wsls := rounds(player.New(WinStayLoseShift()), player.New(basic.Alternator{}), 5)
	if diff := cmp.Diff(want, wsls); diff != "" {
		t.Errorf("Expected the named WSLS to match (-want +got):\n%s", diff)
	}
}

func TestInvalidVector(t *testing.T) {
	for _, v := range []Vector{{1.1, 0, 0, 1}, {1, -0.1, 0, 1}} {
		if _, err := New(v, action.C); !errors.Is(err, ErrInvalidVector) {
			t.Errorf("Expected ErrInvalidVector for %v, got %v", v, err)
		}
	}
}

func TestStochasticClassifier(t *testing.T) {
	if WinStayLoseShift().Classifier().Stochastic {
		t.Error("Expected WSLS to be deterministic")
	}
	if !FirmButFair().Classifier().Stochastic {
		t.Error("Expected Firm But Fair to be stochastic")
	}
	if d := Joss().Classifier().MemoryDepth; d != 1 {
		t.Errorf("Expected memory depth 1, got %d", d)
	}
}

func TestGTFTDerivesForgivenessFromGame(t *testing.T) {
	g, err := NewGTFT(nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p := g.Vector()[1]; math.Abs(p-1.0/3) > 1e-12 {
		t.Errorf("Expected p=1/3 for the default game, got %v", p)
	}

	pl := player.New(g)
	if err := pl.SetMatchAttributes(player.MatchAttributes{Game: game.MustNew(3, 0, 4, 1), Length: -1}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// min(1 - 1/3, 2/3)
	if p := g.Vector()[1]; math.Abs(p-2.0/3) > 1e-12 {
		t.Errorf("Expected p=2/3 after a game change, got %v", p)
	}
	if !g.Classifier().UsesAttribute("game") {
		t.Error("Expected GTFT to use the game")
	}
}

func TestZDVectors(t *testing.T) {
	approx := cmpopts.EquateApprox(0, 1e-12)
	cases := []struct {
		s    *LR
		want Vector
	}{
		{ZDExtortion(), Vector{0.64, 0.18, 0.28, 0}},
		{ZDExtort2(), Vector{8.0 / 9, 0.5, 1.0 / 3, 0}},
		{ZDGTFT2(), Vector{1, 0.125, 1, 0.25}},
		{ZDGen2(), Vector{1, 0.5625, 0.5, 0.125}},
		{ZDSet2(), Vector{0.75, 0.25, 0.5, 0.25}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, tc.s.Vector(), approx); diff != "" {
			t.Errorf("%s: unexpected vector (-want +got):\n%s", tc.s.Name(), diff)
		}
	}
}

func TestZDInvalidParameters(t *testing.T) {
	if _, err := NewLR(0.1, 0.5, Fixed(4)); !errors.Is(err, ErrInvalidZD) {
		t.Errorf("Expected ErrInvalidZD for l > R, got %v", err)
	}
	if _, err := NewLR(0.1, -0.9, Fixed(1)); !errors.Is(err, ErrInvalidZD) {
		t.Errorf("Expected ErrInvalidZD for s < s_min, got %v", err)
	}

	// a valid strategy rejects a game whose bounds exclude its baseline
	pl := player.New(ZDGen2())
	err := pl.SetMatchAttributes(player.MatchAttributes{Game: game.MustNew(2, 0, 5, 1), Length: -1})
	if !errors.Is(err, ErrInvalidZD) {
		t.Errorf("Expected ErrInvalidZD for the new game, got %v", err)
	}
}

func TestALLCorALLDRepeatsFirstMove(t *testing.T) {
	p := player.New(ALLCorALLD{})
	p.SetSeed(4)
	opp := player.New(basic.Defector{})
	rs := rounds(p, opp, 6)
	for _, r := range rs {
		if r[0] != rs[0][0] {
			t.Fatalf("Expected the first move to repeat, got %v", rs)
		}
	}
}

func TestCloneKeepsParameters(t *testing.T) {
	z := ZDExtort2()
	c := z.Clone().(*LR)
	if c.Name() != z.Name() || c.Vector() != z.Vector() {
		t.Errorf("Expected clone %s%v to match %s%v", c.Name(), c.Vector(), z.Name(), z.Vector())
	}
}
