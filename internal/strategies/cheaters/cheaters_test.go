package cheaters

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/player"
	"github.com/MRamiBalles/ipd/internal/strategies/basic"
)

func match(a, b player.Strategy, turns int) (*player.Player, *player.Player) {
	p1, p2 := player.New(a), player.New(b)
	p1.SetSeed(3)
	p2.SetSeed(4)
	for i := 0; i < turns; i++ {
		p1.Play(p2, 0)
	}
	return p1, p2
}

func plays(p *player.Player) string { return action.Format(p.History().Plays()) }

func TestMindReader(t *testing.T) {
	cases := []struct {
		opp  player.Strategy
		want string
	}{
		{basic.Cooperator{}, "DDDD"},
		{basic.Defector{}, "DDDD"},
		{basic.TitForTat{}, "CCCC"},
		{basic.Grudger{}, "CCCC"},
		{MindReader{}, "DDDD"},
	}
	for _, tc := range cases {
		p1, _ := match(MindReader{}, tc.opp, len(tc.want))
		if got := plays(p1); got != tc.want {
			t.Errorf("Against %s: expected %s, got %s", tc.opp.Name(), tc.want, got)
		}
	}
}

func TestMirrorMindReader(t *testing.T) {
	p1, _ := match(MirrorMindReader{}, basic.Defector{}, 3)
	if got := plays(p1); got != "DDD" {
		t.Errorf("Expected DDD, got %s", got)
	}
	p1, _ = match(MirrorMindReader{}, basic.TitForTat{}, 3)
	if got := plays(p1); got != "CCC" {
		t.Errorf("Expected CCC, got %s", got)
	}
	p1, _ = match(MirrorMindReader{}, MindReader{}, 3)
	if got := plays(p1); got != "DDD" {
		t.Errorf("Expected the mind reader's foil move DDD, got %s", got)
	}
}

func TestMirrorMindReaderIsProtected(t *testing.T) {
	_, mirror := match(MindController{}, MirrorMindReader{}, 3)
	if mirror.Overridden() {
		t.Error("Expected the mirror mind reader to resist")
	}
	if p := player.New(MirrorMindReader{}); p.Override(basic.Defector{}) {
		t.Error("Expected Override to be refused")
	}
}

func TestInspectionLeavesOpponentUntouched(t *testing.T) {
	reader := player.New(MindReader{})
	opp := player.New(basic.NewRandom(0.5))
	opp.SetSeed(11)
	for i := 0; i < 3; i++ {
		opp.UpdateHistory(action.D, action.C)
		reader.UpdateHistory(action.C, action.D)
	}
	before := opp.Random().Clone()
	plays := opp.History().Plays()

	player.LookAhead(reader, opp, reader.MatchAttributes().Game, player.DefaultLookAheadRounds)
	player.Inspect(reader, opp)

	if !opp.Random().Equal(before) {
		t.Error("Expected the opponent's random source to be untouched")
	}
	if diff := cmp.Diff(plays, opp.History().Plays()); diff != "" {
		t.Errorf("Expected the opponent's history to be untouched (-want +got):\n%s", diff)
	}
}

func TestMindControl(t *testing.T) {
	controller, tft := match(MindController{}, basic.TitForTat{}, 3)
	if plays(controller) != "DDD" || plays(tft) != "CCC" {
		t.Errorf("Expected DDD against CCC, got %s against %s", plays(controller), plays(tft))
	}
	if !tft.Overridden() {
		t.Error("Expected the opponent to be overridden")
	}
	tft.Reset()
	if tft.Overridden() {
		t.Error("Expected reset to clear the override")
	}

	controller, warper := match(MindController{}, MindWarper{}, 3)
	if plays(controller) != "DCC" || plays(warper) != "DDD" {
		t.Errorf("Expected DCC against DDD, got %s against %s", plays(controller), plays(warper))
	}

	warper, bender := match(MindWarper{}, MindBender{}, 3)
	if plays(warper) != "DCC" || plays(bender) != "DDD" {
		t.Errorf("Expected DCC against DDD, got %s against %s", plays(warper), plays(bender))
	}

	controller, reader := match(MindController{}, ProtectedMindReader{}, 3)
	if reader.Overridden() {
		t.Error("Expected the protected mind reader to resist")
	}
	if plays(controller) != "DDD" {
		t.Errorf("Expected DDD, got %s", plays(controller))
	}
}

func TestDarwinSharesGenome(t *testing.T) {
	g := NewGenome()
	d, _ := match(NewDarwin(g), basic.Defector{}, 4)
	if got := plays(d); got != "CDDD" {
		t.Errorf("Expected CDDD, got %s", got)
	}
	if diff := cmp.Diff(action.MustParse("DCCD"), g.Moves()); diff != "" {
		t.Errorf("Unexpected genome (-want +got):\n%s", diff)
	}

	// a reset restores only the first move
	d.Reset()
	if diff := cmp.Diff(action.MustParse("CCCD"), g.Moves()); diff != "" {
		t.Errorf("Unexpected genome after reset (-want +got):\n%s", diff)
	}
	for i := 0; i < 4; i++ {
		d.Play(player.New(basic.Defector{}), 0)
	}
	if got := plays(d); got != "CCCD" {
		t.Errorf("Expected the learned sequence CCCD, got %s", got)
	}

	g.ResetAll()
	if diff := cmp.Diff(action.MustParse("C"), g.Moves()); diff != "" {
		t.Errorf("Unexpected genome after ResetAll (-want +got):\n%s", diff)
	}
}

func TestSandboxCopiesGenome(t *testing.T) {
	g := NewGenome()
	d, opp := match(NewDarwin(g), basic.Defector{}, 3)
	before := g.Moves()

	sandbox := d.Sandbox()
	sandbox.Decide(opp)
	sandbox.UpdateHistory(action.D, action.D)
	sandbox.Decide(opp)

	if diff := cmp.Diff(before, g.Moves()); diff != "" {
		t.Errorf("Expected the shared genome to be untouched (-want +got):\n%s", diff)
	}
	isolated := d.Strategy().(*Darwin).IsolatedClone().(*Darwin)
	if isolated.Genome() == g {
		t.Error("Expected an isolated clone to own its genome")
	}
	if diff := cmp.Diff(before, isolated.Genome().Moves()); diff != "" {
		t.Errorf("Expected the copy to start from the shared record (-want +got):\n%s", diff)
	}
}

func TestClassifiers(t *testing.T) {
	if !(MindReader{}).Classifier().InspectsSource {
		t.Error("Expected MindReader to inspect source")
	}
	if !(MindBender{}).Classifier().ManipulatesSource {
		t.Error("Expected MindBender to manipulate source")
	}
	c := NewDarwin(NewGenome()).Classifier()
	if !c.ManipulatesState || c.ObeysAxelrod() {
		t.Errorf("Expected Darwin to manipulate state and break the rules, got %v", c)
	}
}
