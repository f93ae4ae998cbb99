package action

import (
	"testing"

	"github.com/pkg/errors"
)

func TestFlipIsInvolution(t *testing.T) {
	for _, a := range []Action{C, D} {
		if a.Flip() == a {
			t.Errorf("Expected %s to flip to the other action", a)
		}
		if a.Flip().Flip() != a {
			t.Errorf("Expected flip(flip(%s)) == %s, got %s", a, a, a.Flip().Flip())
		}
	}
}

func TestParseSequence(t *testing.T) {
	got, err := ParseSequence("CCDDC")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if Format(got) != "CCDDC" {
		t.Errorf("Expected CCDDC, got %s", Format(got))
	}

	_, err = ParseSequence("CX")
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Expected ErrUnknownAction, got %v", err)
	}
}

func TestPairSwap(t *testing.T) {
	p := Pair{C, D}
	if p.Swap() != (Pair{D, C}) {
		t.Errorf("Expected (D, C), got %s", p.Swap())
	}
	if p.String() != "(C, D)" {
		t.Errorf("Expected (C, D), got %s", p.String())
	}
}
