// Package classifier describes what a strategy does and what it needs.
// Meta strategies and transformers use it to compose strategies safely.
package classifier

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/exp/maps"
)

// Infinite marks a strategy that may depend on the whole history.
const Infinite = -1

// Attribute names a match attribute a strategy reads.
type Attribute string

const (
	Game   Attribute = "game"
	Length Attribute = "length"
)

// Classifier is the declarative metadata of a strategy.
type Classifier struct {
	MemoryDepth       int
	Stochastic        bool
	MakesUseOf        map[Attribute]struct{}
	LongRunTime       bool
	InspectsSource    bool
	ManipulatesSource bool
	ManipulatesState  bool
}

// Default is the classifier of a strategy that declares nothing.
func Default() Classifier {
	return Classifier{MemoryDepth: Infinite, MakesUseOf: map[Attribute]struct{}{}}
}

// Uses builds a MakesUseOf set.
func Uses(attrs ...Attribute) map[Attribute]struct{} {
	out := make(map[Attribute]struct{}, len(attrs))
	for _, a := range attrs {
		out[a] = struct{}{}
	}
	return out
}

// Clone returns a copy with its own MakesUseOf set.
func (c Classifier) Clone() Classifier {
	out := c
	out.MakesUseOf = make(map[Attribute]struct{}, len(c.MakesUseOf))
	for a := range c.MakesUseOf {
		out.MakesUseOf[a] = struct{}{}
	}
	return out
}

// UsesAttribute reports whether attr is in MakesUseOf.
func (c Classifier) UsesAttribute(attr Attribute) bool {
	_, ok := c.MakesUseOf[attr]
	return ok
}

// WithUse returns a copy that also reads attr.
func (c Classifier) WithUse(attr Attribute) Classifier {
	out := c.Clone()
	out.MakesUseOf[attr] = struct{}{}
	return out
}

// Attributes returns MakesUseOf in sorted order.
func (c Classifier) Attributes() []Attribute {
	attrs := maps.Keys(c.MakesUseOf)
	slices.Sort(attrs)
	return attrs
}

// ObeysAxelrod reports whether the strategy leaves its opponent alone.
func (c Classifier) ObeysAxelrod() bool {
	return !c.InspectsSource && !c.ManipulatesSource && !c.ManipulatesState
}

// IsBasic reports whether the strategy is deterministic, well behaved and
// remembers at most one round.
func (c Classifier) IsBasic() bool {
	return !c.Stochastic && c.ObeysAxelrod() && c.MemoryDepth >= 0 && c.MemoryDepth <= 1
}

// Equal compares every key.
func (c Classifier) Equal(other Classifier) bool {
	return c.MemoryDepth == other.MemoryDepth &&
		c.Stochastic == other.Stochastic &&
		c.LongRunTime == other.LongRunTime &&
		c.InspectsSource == other.InspectsSource &&
		c.ManipulatesSource == other.ManipulatesSource &&
		c.ManipulatesState == other.ManipulatesState &&
		slices.Equal(c.Attributes(), other.Attributes())
}

// MaxDepth combines two memory depths, treating Infinite as the largest.
func MaxDepth(a, b int) int {
	if a == Infinite || b == Infinite {
		return Infinite
	}
	return max(a, b)
}

// Union derives the classifier of a team: boolean keys are OR-ed, MakesUseOf
// sets are merged and the memory depth is the deepest member's.
func Union(team ...Classifier) Classifier {
	out := Classifier{MakesUseOf: map[Attribute]struct{}{}}
	for i, c := range team {
		if i == 0 {
			out.MemoryDepth = c.MemoryDepth
		} else {
			out.MemoryDepth = MaxDepth(out.MemoryDepth, c.MemoryDepth)
		}
		out.Stochastic = out.Stochastic || c.Stochastic
		out.LongRunTime = out.LongRunTime || c.LongRunTime
		out.InspectsSource = out.InspectsSource || c.InspectsSource
		out.ManipulatesSource = out.ManipulatesSource || c.ManipulatesSource
		out.ManipulatesState = out.ManipulatesState || c.ManipulatesState
		for a := range c.MakesUseOf {
			out.MakesUseOf[a] = struct{}{}
		}
	}
	return out
}

func (c Classifier) String() string {
	depth := "inf"
	if c.MemoryDepth != Infinite {
		depth = fmt.Sprint(c.MemoryDepth)
	}
	uses := make([]string, 0, len(c.MakesUseOf))
	for _, a := range c.Attributes() {
		uses = append(uses, string(a))
	}
	return fmt.Sprintf("{memory_depth: %s, stochastic: %t, makes_use_of: [%s], long_run_time: %t, inspects_source: %t, manipulates_source: %t, manipulates_state: %t}",
		depth, c.Stochastic, strings.Join(uses, " "), c.LongRunTime, c.InspectsSource, c.ManipulatesSource, c.ManipulatesState)
}
