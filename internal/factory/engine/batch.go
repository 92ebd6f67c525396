package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rsned/factory-planner/internal/factory/result"
)

// Outcome is the result of one query in a batch.
type Outcome struct {
	Query  string
	Result result.Result
	Err    error
}

// QueryAll runs independent queries with at most concurrency in flight and
// returns their outcomes in input order. A failed query does not stop the
// others; only a done context does.
func (e *Engine) QueryAll(ctx context.Context, queries []string, concurrency int) ([]Outcome, error) {
	out := make([]Outcome, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, raw := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.Query(gctx, raw)
			out[i] = Outcome{Query: raw, Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, ctx.Err()
}
