// Package engine runs the query pipeline: parse, resolve, compile, solve and
// render.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rsned/factory-planner/internal/factory/catalog"
	"github.com/rsned/factory-planner/internal/factory/compare"
	"github.com/rsned/factory-planner/internal/factory/compiler"
	"github.com/rsned/factory-planner/internal/factory/db"
	"github.com/rsned/factory-planner/internal/factory/grammar"
	"github.com/rsned/factory-planner/internal/factory/optimizer"
	"github.com/rsned/factory-planner/internal/factory/query"
	"github.com/rsned/factory-planner/internal/factory/resolve"
	"github.com/rsned/factory-planner/internal/factory/result"
	"github.com/rsned/factory-planner/pkg/factory"
)

// Engine answers queries against one catalog. It is safe for concurrent use;
// every request builds its own query, model and result.
type Engine struct {
	catalog    *catalog.Catalog
	compiler   *compiler.Compiler
	optimizer  *optimizer.Optimizer
	comparator *compare.Comparator
	logger     *slog.Logger
}

type options struct {
	logger    *slog.Logger
	tolerance float64
	cacheSize int
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTolerance sets the solver tolerance. Values <= 0 keep the default.
func WithTolerance(tol float64) Option {
	return func(o *options) { o.tolerance = tol }
}

// WithCacheSize sets the resolver cache size. Values <= 0 keep the default.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// New creates an Engine over c.
func New(c *catalog.Catalog, opts ...Option) (*Engine, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	resolverOpts := []resolve.Option{resolve.WithLogger(o.logger)}
	if o.cacheSize > 0 {
		resolverOpts = append(resolverOpts, resolve.WithCacheSize(o.cacheSize))
	}
	r, err := resolve.New(c, resolverOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating resolver: %w", err)
	}

	opt := optimizer.New(c, optimizer.WithTolerance(o.tolerance), optimizer.WithLogger(o.logger))
	return &Engine{
		catalog:    c,
		compiler:   compiler.New(grammar.New(), r, c, o.logger),
		optimizer:  opt,
		comparator: compare.New(opt, o.logger),
		logger:     o.logger,
	}, nil
}

// Open loads the catalog from the database and creates an Engine over it.
func Open(ctx context.Context, database *db.DB, opts ...Option) (*Engine, error) {
	c, err := catalog.Load(ctx, database)
	if err != nil {
		return nil, err
	}
	return New(c, opts...)
}

// Catalog returns the catalog queries run against.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Compile turns raw text into a query without running it.
func (e *Engine) Compile(raw string) (query.Query, error) {
	return e.compiler.Compile(raw)
}

// Query runs raw through the whole pipeline. Parse, resolution and
// compilation failures come back as a result.Error; the returned error is
// reserved for internal failures and a done context.
func (e *Engine) Query(ctx context.Context, raw string) (result.Result, error) {
	start := time.Now()
	logger := e.logger.With("request_id", uuid.NewString())

	q, err := e.compiler.Compile(raw)
	if err != nil {
		return e.fail(ctx, logger, raw, err)
	}
	queriesTotal.WithLabelValues(q.Kind()).Inc()

	res, err := e.execute(ctx, logger, q)
	if err != nil {
		return e.fail(ctx, logger, raw, err)
	}

	attrs := []any{"query", raw, "kind", q.Kind(), "duration", time.Since(start)}
	if opt, ok := res.(*result.Optimization); ok {
		attrs = append(attrs, "status", opt.Status().String())
	}
	logger.Info("query complete", attrs...)
	return res, nil
}

func (e *Engine) execute(ctx context.Context, logger *slog.Logger, q query.Query) (result.Result, error) {
	switch q := q.(type) {
	case *query.HelpQuery:
		return result.Help{}, nil

	case *query.InfoQuery:
		return result.NewInfo(q.Entities()), nil

	case *query.OptimizationQuery:
		sol, err := e.optimizer.Optimize(ctx, q)
		if err != nil {
			return nil, err
		}
		return result.NewOptimization(e.catalog, q, sol, logger), nil

	case *query.RecipeCompareQuery:
		cmp, err := e.comparator.Compare(ctx, q)
		if err != nil {
			return nil, err
		}
		return result.NewRecipeCompare(cmp)

	default:
		return nil, factory.NewError(factory.ErrCodeInternal, fmt.Sprintf("unsupported query type %T", q))
	}
}

func (e *Engine) fail(ctx context.Context, logger *slog.Logger, raw string, err error) (result.Result, error) {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		logger.Warn("query canceled", "query", raw, "error", err)
		return nil, err
	}

	code := factory.CodeOf(err)
	queryErrors.WithLabelValues(string(code)).Inc()
	if code == factory.ErrCodeInternal {
		logger.Error("query failed", "query", raw, "error", err)
		return nil, err
	}

	logger.Info("query rejected", "query", raw, "code", string(code), "error", err)
	return result.Error{Text: factory.UserMessage(err)}, nil
}
