// Package history records the rounds a player has taken part in.
package history

import (
	"github.com/pkg/errors"

	"github.com/MRamiBalles/ipd/internal/domain/action"
)

// ErrLengthMismatch is returned when own and opponent sequences differ in length.
var ErrLengthMismatch = errors.New("history length mismatch")

// View is the read-only surface strategies see.
type View interface {
	Len() int
	Plays() []action.Action
	Coplays() []action.Action
	Last() (action.Pair, bool)
	Cooperations() int
	Defections() int
	StateDistribution() map[action.Pair]int
}

// History is an append-only record of own plays and observed opponent plays.
// Counts and the state distribution are maintained incrementally.
type History struct {
	plays        []action.Action
	coplays      []action.Action
	cooperations int
	defections   int
	dist         map[action.Pair]int
}

// New returns an empty history.
func New() *History {
	return &History{dist: make(map[action.Pair]int)}
}

// FromActions builds a history from two parallel sequences.
func FromActions(plays, coplays []action.Action) (*History, error) {
	if len(plays) != len(coplays) {
		return nil, errors.Wrapf(ErrLengthMismatch, "%d plays, %d coplays", len(plays), len(coplays))
	}
	h := New()
	for i := range plays {
		h.Append(plays[i], coplays[i])
	}
	return h, nil
}

// Append records one round.
func (h *History) Append(play, coplay action.Action) {
	h.plays = append(h.plays, play)
	h.coplays = append(h.coplays, coplay)
	if play == action.C {
		h.cooperations++
	} else {
		h.defections++
	}
	h.dist[action.Pair{play, coplay}]++
}

// Len is the number of rounds recorded.
func (h *History) Len() int {
	return len(h.plays)
}

// Plays returns own actions. The slice must not be modified.
func (h *History) Plays() []action.Action {
	return h.plays
}

// Coplays returns the opponent's actions. The slice must not be modified.
func (h *History) Coplays() []action.Action {
	return h.coplays
}

// Last returns the most recent round.
func (h *History) Last() (action.Pair, bool) {
	n := len(h.plays)
	if n == 0 {
		return action.Pair{}, false
	}
	return action.Pair{h.plays[n-1], h.coplays[n-1]}, true
}

func (h *History) Cooperations() int { return h.cooperations }

func (h *History) Defections() int { return h.defections }

// StateDistribution returns a copy of the (own, opponent) occurrence counts.
func (h *History) StateDistribution() map[action.Pair]int {
	out := make(map[action.Pair]int, len(h.dist))
	for k, v := range h.dist {
		out[k] = v
	}
	return out
}

// Reset empties the history.
func (h *History) Reset() {
	h.plays = nil
	h.coplays = nil
	h.cooperations = 0
	h.defections = 0
	h.dist = make(map[action.Pair]int)
}

// Clone returns an independent copy.
func (h *History) Clone() *History {
	c := &History{
		plays:        append([]action.Action(nil), h.plays...),
		coplays:      append([]action.Action(nil), h.coplays...),
		cooperations: h.cooperations,
		defections:   h.defections,
		dist:         h.StateDistribution(),
	}
	return c
}

// Flipped returns the same rounds seen from the opponent's side.
func (h *History) Flipped() *History {
	f, _ := FromActions(h.coplays, h.plays)
	return f
}

// Equal compares the recorded rounds.
func (h *History) Equal(other *History) bool {
	if h.Len() != other.Len() {
		return false
	}
	for i := range h.plays {
		if h.plays[i] != other.plays[i] || h.coplays[i] != other.coplays[i] {
			return false
		}
	}
	return true
}
