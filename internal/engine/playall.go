package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// PlayAll plays independent matches concurrently, at most limit at a time
// (runtime.NumCPU when limit < 1). It returns the first error; matches not yet
// started are skipped once one fails.
func PlayAll(ctx context.Context, matches []*Match, limit int) error {
	if limit < 1 {
		limit = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, m := range matches {
		m := m
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, err := m.Play(gctx)
			return err
		})
	}
	return g.Wait()
}
