// Package events provides the append-only record of what happened in a match.
// Every round, noise flip and cache replay is logged here and can be replayed
// or written through to durable storage.
package events

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MRamiBalles/ipd/internal/domain/action"
)

// EventType defines the category of a match event.
type EventType string

const (
	EventTypeMatchStart  EventType = "MATCH_START"
	EventTypeRound       EventType = "ROUND"
	EventTypeNoiseFlip   EventType = "NOISE_FLIP"
	EventTypeCacheReplay EventType = "CACHE_REPLAY"
	EventTypeMatchEnd    EventType = "MATCH_END"
)

// MatchEvent is an immutable record of one step of a match.
type MatchEvent struct {
	ID        string      `json:"id"`
	MatchID   string      `json:"match_id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	Turn      int         `json:"turn"` // 1-based; 0 for match-level events
	Intended  action.Pair `json:"intended"`
	Played    action.Pair `json:"played"`
	Scores    [2]float64  `json:"scores"`
	Details   string      `json:"details,omitempty"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(ctx context.Context, event MatchEvent) error
}

// EventLog is the in-memory append-only log of match events.
type EventLog struct {
	mu        sync.RWMutex
	events    []MatchEvent
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]MatchEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log and writes it through to the persister.
// The event is kept in memory even when persisting fails.
func (el *EventLog) Append(ctx context.Context, event MatchEvent) error {
	if event.ID == "" {
		event.ID = GenerateEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	el.mu.Lock()
	el.events = append(el.events, event)
	el.mu.Unlock()

	if el.persister != nil {
		return el.persister.Append(ctx, event)
	}
	return nil
}

// GetByMatch returns all events recorded for one match, in order.
func (el *EventLog) GetByMatch(matchID string) []MatchEvent {
	return el.filter(func(e MatchEvent) bool { return e.MatchID == matchID })
}

// GetByType returns all events of one type.
func (el *EventLog) GetByType(eventType EventType) []MatchEvent {
	return el.filter(func(e MatchEvent) bool { return e.Type == eventType })
}

func (el *EventLog) filter(keep func(MatchEvent) bool) []MatchEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []MatchEvent
	for _, e := range el.events {
		if keep(e) {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns a copy of the full log.
func (el *EventLog) Replay() []MatchEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return slices.Clone(el.events)
}

// Len returns the number of recorded events.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// Transcript rebuilds the played action pairs of a match from its round
// events.
func Transcript(evts []MatchEvent) []action.Pair {
	var pairs []action.Pair
	for _, e := range evts {
		if e.Type == EventTypeRound {
			pairs = append(pairs, e.Played)
		}
	}
	return pairs
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
