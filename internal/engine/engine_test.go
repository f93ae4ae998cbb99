package engine

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/events"
	"github.com/MRamiBalles/ipd/internal/infra/cache"
	"github.com/MRamiBalles/ipd/internal/platform/logger"
	"github.com/MRamiBalles/ipd/internal/player"
	"github.com/MRamiBalles/ipd/internal/strategies/basic"
)

func TestPlayAll(t *testing.T) {
	var matches []*Match
	for i := 0; i < 8; i++ {
		matches = append(matches, newMatch(t, basic.NewRandom(0.3), basic.TitForTat{}, WithTurns(10), WithSeed(uint32(i))))
	}
	if err := PlayAll(context.Background(), matches, 3); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i, m := range matches {
		if n := len(m.Result()); n != 10 {
			t.Errorf("Match %d: expected 10 turns, got %d", i, n)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := PlayAll(ctx, matches, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestEngineWiring(t *testing.T) {
	// Setup
	el := events.NewEventLog(nil)
	c, _ := cache.New(8)
	e := NewEngine(el, logger.NewNop()).SetCache(c).SetWorkers(2)

	// Act
	var matches []*Match
	for i := 0; i < 2; i++ {
		m, err := e.NewMatch(player.New(basic.Grudger{}), player.New(basic.Alternator{}), WithTurns(5))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		matches = append(matches, m)
	}
	if err := e.PlayAll(context.Background(), matches[:1]); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := e.PlayAll(context.Background(), matches[1:]); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Assert
	if e.GetCache().Len() != 1 {
		t.Errorf("Expected one cached pairing, got %d", e.GetCache().Len())
	}
	if !matches[1].Replayed() {
		t.Error("Expected the second match to be replayed")
	}
	if n := len(e.GetEventLog().GetByMatch(matches[0].ID())); n != 7 {
		t.Errorf("Expected 7 events for the played match, got %d", n)
	}
	if n := len(e.GetEventLog().GetByType(events.EventTypeCacheReplay)); n != 1 {
		t.Errorf("Expected 1 replay event, got %d", n)
	}
}

func TestNewMatchesAreReproducible(t *testing.T) {
	run := func() [][]action.Pair {
		e := NewEngine(nil, nil)
		pairs := [][2]*player.Player{
			{player.New(basic.NewRandom(0.5)), player.New(basic.TitForTat{})},
			{player.New(basic.Cooperator{}), player.New(basic.Defector{})},
			{player.New(basic.NewRandom(0.2)), player.New(basic.NewRandom(0.8))},
		}
		matches, err := e.NewMatches(21, pairs, WithTurns(15), WithNoise(0.1))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if err := e.SetWorkers(3).PlayAll(context.Background(), matches); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		var results [][]action.Pair
		for _, m := range matches {
			results = append(results, m.Result())
		}
		return results
	}
	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("Expected equal seeds to give equal results (-first +second):\n%s", diff)
	}
}
