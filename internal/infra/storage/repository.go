// Package storage provides the persistence layer for match results.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"fmt"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/events"
	"github.com/MRamiBalles/ipd/internal/infra/cache"
)

// EventRepository defines the interface for match transcript persistence.
// It satisfies events.EventPersister so an EventLog can write through to it.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event events.MatchEvent) error

	// GetByMatchID retrieves all events for a specific match (for replay).
	GetByMatchID(ctx context.Context, matchID string) ([]events.MatchEvent, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, eventType events.EventType) ([]events.MatchEvent, error)

	// MatchIDs lists every match with a recorded event.
	MatchIDs(ctx context.Context) ([]string, error)
}

// CacheRepository stores deterministic match results across runs.
// It satisfies cache.Store.
type CacheRepository interface {
	Put(ctx context.Context, key cache.Key, result []action.Pair) error
	Get(ctx context.Context, key cache.Key) ([]action.Pair, error)
	All(ctx context.Context) (map[cache.Key][]action.Pair, error)
}

// encodePairs splits a result into the two players' action strings.
func encodePairs(result []action.Pair) (string, string) {
	p1 := make([]action.Action, len(result))
	p2 := make([]action.Action, len(result))
	for i, p := range result {
		p1[i], p2[i] = p[0], p[1]
	}
	return action.Format(p1), action.Format(p2)
}

func decodePairs(p1, p2 string) ([]action.Pair, error) {
	a, err := action.ParseSequence(p1)
	if err != nil {
		return nil, err
	}
	b, err := action.ParseSequence(p2)
	if err != nil {
		return nil, err
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("stored sequences differ in length: %d and %d", len(a), len(b))
	}
	result := make([]action.Pair, len(a))
	for i := range a {
		result[i] = action.Pair{a[i], b[i]}
	}
	return result, nil
}

func decodePair(s string) (action.Pair, error) {
	seq, err := action.ParseSequence(s)
	if err != nil {
		return action.Pair{}, err
	}
	if len(seq) != 2 {
		return action.Pair{}, fmt.Errorf("malformed pair %q", s)
	}
	return action.Pair{seq[0], seq[1]}, nil
}

func encodePair(p action.Pair) string {
	return p[0].String() + p[1].String()
}
