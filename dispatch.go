package wavop

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

// shotFunc solves shot i. Errors it returns are attributed to the solver.
type shotFunc func(ctx context.Context, i int) error

// forEachShot runs fn for shots [0, n) on the controller's worker slots.
// Results must be written into pre-sized slices by index. The first
// failure cancels the remaining shots and is returned as a *SolverError.
func (c *config) forEachShot(ctx context.Context, kind Kind, n int, memPerShot int64, fn shotFunc) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := range n {
		if err := c.controller.AcquireWorker(gctx); err != nil {
			if werr := g.Wait(); werr != nil {
				return werr
			}
			return err
		}
		g.Go(func() error {
			defer c.controller.ReleaseWorker()

			if err := c.controller.AcquireMemory(gctx, memPerShot); err != nil {
				return err
			}
			defer c.controller.ReleaseMemory(memPerShot)

			start := time.Now()
			err := fn(gctx, i)
			elapsed := time.Since(start)
			c.metrics.RecordShot(kind, elapsed, err)
			c.logger.LogShot(gctx, kind, i, elapsed, err)
			if err != nil {
				var se *SolverError
				if errors.As(err, &se) {
					return err
				}
				return &SolverError{Kind: kind, Shot: i, cause: err}
			}
			return nil
		})
	}
	return g.Wait()
}

// observe records an operator application.
func (c *config) observe(ctx context.Context, kind Kind, shots int, start time.Time, err error) {
	elapsed := time.Since(start)
	c.metrics.RecordApply(kind, shots, elapsed, err)
	c.logger.LogApply(ctx, kind, shots, elapsed, err)
}
