package sim

import (
	"context"

	kitlog "github.com/go-kit/kit/log"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/keplerlab/internal/dynamo"
)

// Run pairs an integrator with the metrics to attach to its simulator. Metrics
// hold running state, so each Run needs its own instances.
type Run struct {
	Integrator dynamo.Integrator
	Metrics    []dynamo.Metric
}

// Compare propagates the same initial state with every run concurrently and
// returns the results in input order. The first failure cancels the others.
func Compare(ctx context.Context, sys dynamo.System, x0 dynamo.State, cfg dynamo.Config, runs []Run, logger kitlog.Logger) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(runs))
	g, ctx := errgroup.WithContext(ctx)

	for i, run := range runs {
		g.Go(func() error {
			s := New(sys, run.Integrator, logger)
			for _, m := range run.Metrics {
				s.AddMetric(m)
			}
			res, err := s.Run(ctx, x0, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
