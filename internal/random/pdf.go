package random

import "github.com/pkg/errors"

// Pdf samples from an empirical distribution given as parallel values and
// counts.
type Pdf[T any] struct {
	values        []T
	probabilities []float64
	rng           *Generator
}

// NewPdf builds a sampler. Counts must be non-negative and not all zero.
func NewPdf[T any](values []T, counts []int, seed uint32) (*Pdf[T], error) {
	if len(values) != len(counts) || len(values) == 0 {
		return nil, errors.Wrapf(ErrInvalidWeights, "%d values, %d counts", len(values), len(counts))
	}
	total := 0
	for _, c := range counts {
		if c < 0 {
			return nil, errors.Wrapf(ErrInvalidWeights, "negative count %d", c)
		}
		total += c
	}
	if total == 0 {
		return nil, errors.Wrap(ErrInvalidWeights, "counts sum to zero")
	}
	probs := make([]float64, len(counts))
	for i, c := range counts {
		probs[i] = float64(c) / float64(total)
	}
	return &Pdf[T]{values: values, probabilities: probs, rng: New(seed)}, nil
}

// Probabilities returns the normalised weights in value order.
func (p *Pdf[T]) Probabilities() []float64 {
	return append([]float64(nil), p.probabilities...)
}

// Sample draws one value.
func (p *Pdf[T]) Sample() T {
	// weights were validated on construction
	i, _ := p.rng.Choice(p.probabilities)
	return p.values[i]
}
