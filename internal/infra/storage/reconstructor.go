package storage

import (
	"context"
	"fmt"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/events"
)

// Reconstructor rebuilds match results from the stored transcript.
// state = f(events): the transcript is the source of truth, not the cache.
type Reconstructor struct {
	eventRepo EventRepository
}

// NewReconstructor creates a new match reconstructor.
func NewReconstructor(eventRepo EventRepository) *Reconstructor {
	return &Reconstructor{eventRepo: eventRepo}
}

// RebuiltMatch holds a match reconstructed from its events.
type RebuiltMatch struct {
	MatchID  string
	Result   []action.Pair
	Intended []action.Pair
	Totals   [2]float64
	Flips    int
	Replayed bool // served from the deterministic cache
}

// RecapEvent is a one-line description of a round.
type RecapEvent struct {
	Turn    int    `json:"turn"`
	Played  string `json:"played"`
	Summary string `json:"summary"`
	Outcome string `json:"outcome"` // "MUTUAL_COOPERATION", "MUTUAL_DEFECTION", "BETRAYAL", "BETRAYED"
}

// RebuildMatch reconstructs a match's result, scores and noise flips.
func (r *Reconstructor) RebuildMatch(ctx context.Context, matchID string) (*RebuiltMatch, error) {
	evts, err := r.eventRepo.GetByMatchID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events for match: %w", err)
	}
	if len(evts) == 0 {
		return nil, fmt.Errorf("no events for match %s", matchID)
	}

	m := &RebuiltMatch{MatchID: matchID}
	for _, e := range evts {
		switch e.Type {
		case events.EventTypeRound:
			m.Result = append(m.Result, e.Played)
			m.Intended = append(m.Intended, e.Intended)
			m.Totals[0] += e.Scores[0]
			m.Totals[1] += e.Scores[1]
		case events.EventTypeNoiseFlip:
			for i := range e.Played {
				if e.Played[i] != e.Intended[i] {
					m.Flips++
				}
			}
		case events.EventTypeCacheReplay:
			m.Replayed = true
		}
	}
	return m, nil
}

// GenerateRecap describes every round of a match from player 1's side.
func (r *Reconstructor) GenerateRecap(ctx context.Context, matchID string) ([]RecapEvent, error) {
	evts, err := r.eventRepo.GetByMatchID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	var recap []RecapEvent
	for _, e := range evts {
		if e.Type != events.EventTypeRound {
			continue
		}
		recap = append(recap, RecapEvent{
			Turn:    e.Turn,
			Played:  e.Played.String(),
			Summary: summarizeRound(e),
			Outcome: outcome(e.Played),
		})
	}
	return recap, nil
}

func summarizeRound(e events.MatchEvent) string {
	s := fmt.Sprintf("turn %d: %s scoring %g and %g", e.Turn, e.Played, e.Scores[0], e.Scores[1])
	if e.Played != e.Intended {
		s += fmt.Sprintf(" (intended %s)", e.Intended)
	}
	return s
}

func outcome(p action.Pair) string {
	switch p {
	case action.Pair{action.C, action.C}:
		return "MUTUAL_COOPERATION"
	case action.Pair{action.D, action.D}:
		return "MUTUAL_DEFECTION"
	case action.Pair{action.D, action.C}:
		return "BETRAYAL"
	default:
		return "BETRAYED"
	}
}
