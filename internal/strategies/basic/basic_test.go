package basic

import (
	"testing"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/player"
)

// playAgainst plays turns rounds and returns both move strings.
func playAgainst(a, b player.Strategy, turns int) (string, string) {
	p1, p2 := player.New(a), player.New(b)
	p1.SetSeed(1)
	p2.SetSeed(2)
	for i := 0; i < turns; i++ {
		p1.Play(p2, 0)
	}
	return action.Format(p1.History().Plays()), action.Format(p2.History().Plays())
}

func TestFixedStrategies(t *testing.T) {
	cases := []struct {
		name     string
		s, opp   player.Strategy
		turns    int
		wantSelf string
	}{
		{"cooperator", Cooperator{}, Defector{}, 4, "CCCC"},
		{"defector", Defector{}, Cooperator{}, 4, "DDDD"},
		{"alternator", Alternator{}, Cooperator{}, 5, "CDCDC"},
		{"tit for tat", TitForTat{}, Alternator{}, 5, "CCDCD"},
		{"tit for 2 tats", TitFor2Tats{}, Defector{}, 4, "CCDD"},
		{"grudger", Grudger{}, mustCycler("CD"), 4, "CCDD"},
		{"aggravater", Aggravater{}, Cooperator{}, 5, "DDDCC"},
		{"cycler", CyclerCCD(), Cooperator{}, 6, "CCDCCD"},
		{"thue morse", NewThueMorse(), Cooperator{}, 8, "DCCDCDDC"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := playAgainst(tc.s, tc.opp, tc.turns)
			if got != tc.wantSelf {
				t.Errorf("Expected %s, got %s", tc.wantSelf, got)
			}
		})
	}
}

func TestForgetfulGrudgerForgives(t *testing.T) {
	// one defection, then cooperation forever
	opp := mustCycler("DCCCCCCCCCCCCCCCCCCC")
	got, _ := playAgainst(NewForgetfulGrudger(), opp, 13)
	if got != "CDDDDDDDDDDCC" {
		t.Errorf("Expected CDDDDDDDDDDCC, got %s", got)
	}
}

func TestCycleHunterDefectsAgainstCycles(t *testing.T) {
	got, _ := playAgainst(NewCycleHunter(), CyclerCCD(), 8)
	if got != "CCCCCCDD" {
		t.Errorf("Expected CCCCCCDD, got %s", got)
	}
	got, _ = playAgainst(NewCycleHunter(), Cooperator{}, 8)
	if got != "CCCCCCCC" {
		t.Errorf("Expected full cooperation against a uniform opponent, got %s", got)
	}
}

func TestRandomClassifier(t *testing.T) {
	if NewRandom(0.5).Classifier().Stochastic != true {
		t.Error("Expected Random(0.5) to be stochastic")
	}
	if NewRandom(1).Classifier().Stochastic {
		t.Error("Expected Random(1) to be deterministic")
	}
	got, _ := playAgainst(NewRandom(0), Cooperator{}, 3)
	if got != "DDD" {
		t.Errorf("Expected DDD, got %s", got)
	}
}

func TestDetectCycle(t *testing.T) {
	cycle, ok := DetectCycle(action.MustParse("CCDCCDCCD"), 1, 12, 0)
	if !ok || action.Format(cycle) != "CCD" {
		t.Errorf("Expected cycle CCD, got %s (%t)", action.Format(cycle), ok)
	}
	if _, ok := DetectCycle(action.MustParse("CDDC"), 1, 12, 0); ok {
		t.Error("Expected no cycle in CDDC")
	}
	cycle, ok = DetectCycle(action.MustParse("DDCDCD"), 1, 12, 2)
	if !ok || action.Format(cycle) != "CD" {
		t.Errorf("Expected cycle CD after offset, got %s", action.Format(cycle))
	}
}

func TestResetClearsState(t *testing.T) {
	tm := NewThueMorse()
	p := player.New(tm)
	opp := player.New(Cooperator{})
	for i := 0; i < 5; i++ {
		p.Play(opp, 0)
	}
	p.Reset()
	if !p.Equal(player.New(NewThueMorse())) {
		t.Error("Expected a reset ThueMorse to equal a fresh one")
	}
}
