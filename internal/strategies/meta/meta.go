// Package meta implements players that run a team of strategies and combine
// their proposals into a single move.
package meta

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/domain/classifier"
	"github.com/MRamiBalles/ipd/internal/player"
	"github.com/MRamiBalles/ipd/internal/random"
)

var (
	// ErrEmptyTeam is returned when a meta player is built without members.
	ErrEmptyTeam = errors.New("meta player needs at least one team member")
	// ErrInvalidDistribution is returned for mixer weights that do not match
	// the team or are not a probability distribution.
	ErrInvalidDistribution = errors.New("invalid mixing distribution")
)

// Rule names how proposals are combined.
type Rule string

const (
	Majority Rule = "Majority"
	Minority Rule = "Minority"
	Winner   Rule = "Winner"
	Mixer    Rule = "Mixer"
)

// Meta asks every team member for a move each round and combines the
// proposals according to its rule. Members keep a history of their own
// proposals against the opponent's actual moves.
type Meta struct {
	player.Base
	rule         Rule
	team         []*player.Player
	distribution []float64
	scores       []float64
	proposals    []action.Action
}

func newMeta(rule Rule, team []player.Strategy) (*Meta, error) {
	if len(team) == 0 {
		return nil, ErrEmptyTeam
	}
	m := &Meta{rule: rule, team: make([]*player.Player, len(team)), scores: make([]float64, len(team))}
	for i, s := range team {
		m.team[i] = player.New(s)
	}
	return m, nil
}

// NewMajority cooperates unless more members propose D than C.
func NewMajority(team ...player.Strategy) (*Meta, error) { return newMeta(Majority, team) }

// NewMinority defects only when fewer members propose D than C.
func NewMinority(team ...player.Strategy) (*Meta, error) { return newMeta(Minority, team) }

// NewWinner follows the members whose proposals would have scored best so
// far, cooperating if any of them proposes C.
func NewWinner(team ...player.Strategy) (*Meta, error) { return newMeta(Winner, team) }

// NewMixer draws one proposal with the given probabilities. A nil
// distribution weights members equally.
func NewMixer(distribution []float64, team ...player.Strategy) (*Meta, error) {
	m, err := newMeta(Mixer, team)
	if err != nil {
		return nil, err
	}
	if distribution == nil {
		distribution = make([]float64, len(team))
		for i := range distribution {
			distribution[i] = 1 / float64(len(team))
		}
	}
	if len(distribution) != len(team) {
		return nil, errors.Wrapf(ErrInvalidDistribution, "%d weights for %d members", len(distribution), len(team))
	}
	for _, w := range distribution {
		if w < 0 {
			return nil, errors.Wrapf(ErrInvalidDistribution, "negative weight %v", w)
		}
	}
	if floats.Sum(distribution) <= 0 {
		return nil, errors.Wrap(ErrInvalidDistribution, "weights sum to zero")
	}
	m.distribution = append([]float64(nil), distribution...)
	return m, nil
}

func (m *Meta) Name() string { return fmt.Sprintf("Meta %s", m.rule) }

// Team returns the member players.
func (m *Meta) Team() []*player.Player { return m.team }

func (m *Meta) Classifier() classifier.Classifier {
	classifiers := make([]classifier.Classifier, len(m.team))
	for i, p := range m.team {
		classifiers[i] = p.Classifier()
	}
	c := classifier.Union(classifiers...)
	if m.rule == Mixer {
		c.Stochastic = true
	}
	return c
}

func (m *Meta) Decide(self, opponent *player.Player) action.Action {
	m.proposals = make([]action.Action, len(m.team))
	for i, p := range m.team {
		m.proposals[i] = p.Decide(opponent)
	}
	return m.combine(self)
}

func (m *Meta) combine(self *player.Player) action.Action {
	var cs, ds int
	for _, a := range m.proposals {
		if a == action.C {
			cs++
		} else {
			ds++
		}
	}
	switch m.rule {
	case Majority:
		if ds > cs {
			return action.D
		}
	case Minority:
		if ds < cs {
			return action.D
		}
	case Winner:
		best := m.scores[0]
		for _, s := range m.scores[1:] {
			best = max(best, s)
		}
		for i, s := range m.scores {
			if s == best && m.proposals[i] == action.C {
				return action.C
			}
		}
		return action.D
	case Mixer:
		// the distribution was validated at construction
		i, _ := self.Random().Choice(m.distribution)
		return m.proposals[i]
	}
	return action.C
}

// ObserveRound records each member's proposal against the opponent's actual
// move and, for the Winner rule, scores it.
func (m *Meta) ObserveRound(self *player.Player, own, opp action.Action) {
	g := self.MatchAttributes().Game
	for i, p := range m.team {
		proposal := own
		if len(m.proposals) == len(m.team) {
			proposal = m.proposals[i]
		}
		p.UpdateHistory(proposal, opp)
		if m.rule == Winner {
			s, _ := g.Score(action.Pair{proposal, opp})
			m.scores[i] += s
		}
	}
	m.proposals = nil
}

// SeedFrom gives each member a seed drawn from the owner's generator.
func (m *Meta) SeedFrom(rng *random.Generator) {
	for _, p := range m.team {
		p.SetSeed(rng.RandomSeedInt())
	}
}

func (m *Meta) ReceiveMatchAttributes(attrs player.MatchAttributes) error {
	for _, p := range m.team {
		if err := p.SetMatchAttributes(attrs); err != nil {
			return errors.Wrapf(err, "team member %s", p.Name())
		}
	}
	return nil
}

func (m *Meta) Reset() {
	for _, p := range m.team {
		p.Reset()
	}
	clear(m.scores)
	m.proposals = nil
}

func (m *Meta) Clone() player.Strategy {
	return m.clone((*player.Player).Clone)
}

// IsolatedClone gives every member a private copy of any shared state.
func (m *Meta) IsolatedClone() player.Strategy {
	return m.clone((*player.Player).IsolatedClone)
}

func (m *Meta) clone(member func(*player.Player) *player.Player) *Meta {
	c := &Meta{
		rule:         m.rule,
		team:         make([]*player.Player, len(m.team)),
		distribution: m.distribution,
		scores:       make([]float64, len(m.team)),
	}
	for i, p := range m.team {
		c.team[i] = member(p)
	}
	return c
}

// Identity lists the members' identities after the rule.
func (m *Meta) Identity() string {
	ids := make([]string, len(m.team))
	for i, p := range m.team {
		ids[i] = p.Identity()
	}
	if m.rule == Mixer {
		return fmt.Sprintf("%s %v [%s]", m.Name(), m.distribution, strings.Join(ids, ", "))
	}
	return fmt.Sprintf("%s [%s]", m.Name(), strings.Join(ids, ", "))
}

func (m *Meta) EqualStrategy(other player.Strategy) bool {
	o, ok := other.(*Meta)
	if !ok || m.rule != o.rule || len(m.team) != len(o.team) || !floats.Equal(m.scores, o.scores) {
		return false
	}
	for i := range m.team {
		if !m.team[i].Equal(o.team[i]) {
			return false
		}
	}
	return true
}
