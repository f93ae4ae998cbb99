// Package random provides the seedable random source every stochastic
// decision draws from. The draw sequence is the reference MT19937 one
// (init_genrand seeding, genrand_res53 doubles) so seeded matches reproduce
// published tournament results.
package random

import (
	"bytes"
	crand "crypto/rand"
	"encoding/binary"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mathext/prng"

	"github.com/MRamiBalles/ipd/internal/domain/action"
)

// ErrInvalidWeights is returned by Choice for empty, negative or all-zero weights.
var ErrInvalidWeights = errors.New("invalid weights")

// Generator is a Mersenne Twister owned by a single player or match.
// It is not safe for concurrent use.
type Generator struct {
	src  *prng.MT19937
	seed uint32
}

// New returns a generator seeded with seed.
func New(seed uint32) *Generator {
	g := &Generator{src: prng.NewMT19937()}
	g.Reseed(seed)
	return g
}

// NewEntropy returns a generator seeded from the operating system.
func NewEntropy() *Generator {
	var b [4]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic(errors.Wrap(err, "failed to read entropy"))
	}
	return New(binary.LittleEndian.Uint32(b[:]))
}

// Reseed restarts the sequence from seed.
func (g *Generator) Reseed(seed uint32) {
	g.seed = seed
	g.src.Seed(uint64(seed))
}

// Seed returns the seed the generator was last started from.
func (g *Generator) Seed() uint32 {
	return g.seed
}

// Random returns a uniform float in [0, 1) built from two 32-bit outputs.
func (g *Generator) Random() float64 {
	a := g.src.Uint32() >> 5
	b := g.src.Uint32() >> 6
	return (float64(a)*67108864.0 + float64(b)) / 9007199254740992.0
}

// Uniform returns a float in [lo, hi).
func (g *Generator) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.Random()
}

// RandomChoice returns C with probability p. The boundaries 0 and 1 are
// decided without consuming a draw.
func (g *Generator) RandomChoice(p float64) action.Action {
	if p == 0 {
		return action.D
	}
	if p == 1 {
		return action.C
	}
	if g.Random() < p {
		return action.C
	}
	return action.D
}

// RandomFlip flips a with probability threshold.
func (g *Generator) RandomFlip(a action.Action, threshold float64) action.Action {
	if g.RandomChoice(threshold) == action.C {
		return a.Flip()
	}
	return a
}

// RandRange returns an int in [lo, hi).
func (g *Generator) RandRange(lo, hi int) int {
	return lo + int(float64(hi-lo)*g.Random())
}

// RandomSeedInt returns a seed in [0, 2^32-1) for a child generator.
func (g *Generator) RandomSeedInt() uint32 {
	const bound = 0xFFFFFFFE
	for {
		if v := g.src.Uint32(); v <= bound {
			return v
		}
	}
}

// Choice picks an index with probability proportional to weights using a
// single draw.
func (g *Generator) Choice(weights []float64) (int, error) {
	if len(weights) == 0 {
		return 0, errors.Wrap(ErrInvalidWeights, "no weights")
	}
	for _, w := range weights {
		if w < 0 {
			return 0, errors.Wrapf(ErrInvalidWeights, "negative weight %v", w)
		}
	}
	cdf := floats.CumSum(make([]float64, len(weights)), weights)
	total := cdf[len(cdf)-1]
	if total <= 0 {
		return 0, errors.Wrap(ErrInvalidWeights, "weights sum to zero")
	}
	floats.Scale(1/total, cdf)
	u := g.Random()
	i := sort.Search(len(cdf), func(i int) bool { return cdf[i] > u })
	if i == len(cdf) {
		i--
	}
	return i, nil
}

// Clone returns a generator at the same point of the same sequence.
func (g *Generator) Clone() *Generator {
	state, err := g.src.MarshalBinary()
	if err != nil {
		panic(errors.Wrap(err, "failed to copy generator state"))
	}
	c := &Generator{src: prng.NewMT19937(), seed: g.seed}
	if err := c.src.UnmarshalBinary(state); err != nil {
		panic(errors.Wrap(err, "failed to copy generator state"))
	}
	return c
}

// Equal reports whether both generators will produce the same remaining
// output. Neither generator is advanced.
func (g *Generator) Equal(other *Generator) bool {
	if g == nil || other == nil {
		return g == other
	}
	a, errA := g.src.MarshalBinary()
	b, errB := other.src.MarshalBinary()
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

// SeedSequence draws n independent seeds from a generator started at seed,
// one per concurrently played match.
func SeedSequence(seed uint32, n int) []uint32 {
	g := New(seed)
	out := make([]uint32, n)
	for i := range out {
		out[i] = g.RandomSeedInt()
	}
	return out
}
