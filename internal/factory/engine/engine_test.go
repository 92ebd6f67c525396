package engine

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/factory-planner/internal/factory/catalog/catalogtest"
	"github.com/rsned/factory-planner/internal/factory/lp"
	"github.com/rsned/factory-planner/internal/factory/query"
	"github.com/rsned/factory-planner/internal/factory/result"
	"github.com/rsned/factory-planner/pkg/factory"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(catalogtest.Catalog(t), WithCacheSize(16))
	require.NoError(t, err)
	return e
}

func TestOpen(t *testing.T) {
	e, err := Open(context.Background(), catalogtest.Database(t))
	require.NoError(t, err)
	assert.Equal(t, 13, len(e.Catalog().Items()))
}

func TestQueryKinds(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	tests := []struct {
		raw  string
		want any
	}{
		{"help", result.Help{}},
		{"recipes for iron ingot", &result.Info{}},
		{"produce 60 iron rods", &result.Optimization{}},
		{"compare recipes for screws", &result.RecipeCompare{}},
		{"uranium", result.Error{}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			res, err := e.Query(ctx, tt.raw)
			require.NoError(t, err)
			assert.IsType(t, tt.want, res)
		})
	}
}

func TestQueryOptimization(t *testing.T) {
	e := newEngine(t)

	res, err := e.Query(context.Background(), "produce 60 iron rods")
	require.NoError(t, err)
	opt, ok := res.(*result.Optimization)
	require.True(t, ok)
	assert.Equal(t, lp.Optimal, opt.Status())
	assert.Contains(t, opt.String(), "OUTPUT\nIron Rod: 60/m\n")
	assert.Contains(t, opt.String(), "NET POWER\n-24 MW")
}

func TestQueryUserErrors(t *testing.T) {
	e := newEngine(t)
	before := testutil.ToFloat64(queryErrors.WithLabelValues(string(factory.ErrCodeResolution)))

	res, err := e.Query(context.Background(), "produce 10 uranium")
	require.NoError(t, err)
	assert.Equal(t, result.Error{Text: "Could not parse item expression 'uranium'."}, res)

	after := testutil.ToFloat64(queryErrors.WithLabelValues(string(factory.ErrCodeResolution)))
	assert.Equal(t, before+1, after)

	res, err = e.Query(context.Background(), "produce ? iron rods from ? iron ore")
	require.NoError(t, err)
	assert.Equal(t, "Only one objective may be specified.", res.String())
}

func TestQueryCountsKinds(t *testing.T) {
	e := newEngine(t)
	before := testutil.ToFloat64(queriesTotal.WithLabelValues(query.KindHelp))

	_, err := e.Query(context.Background(), "help")
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(queriesTotal.WithLabelValues(query.KindHelp)))
}

func TestQueryCanceled(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Query(ctx, "produce 60 iron rods")
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestCompile(t *testing.T) {
	e := newEngine(t)

	q, err := e.Compile("produce 60 iron rods")
	require.NoError(t, err)
	assert.Equal(t, query.KindOptimization, q.Kind())

	_, err = e.Compile("produce")
	assert.Equal(t, factory.ErrCodeParse, factory.CodeOf(err))
}

func TestQueryAll(t *testing.T) {
	e := newEngine(t)
	queries := []string{
		"produce 60 iron rods",
		"uranium",
		"help",
		"compare recipes for screws",
		"recipes for iron ingot",
	}

	out, err := e.QueryAll(context.Background(), queries, 2)
	require.NoError(t, err)
	require.Len(t, out, len(queries))
	for i, o := range out {
		assert.Equal(t, queries[i], o.Query)
		assert.NoError(t, o.Err)
		assert.NotNil(t, o.Result)
	}
	assert.IsType(t, result.Error{}, out[1].Result)
	assert.IsType(t, result.Help{}, out[2].Result)
}

func TestQueryAllCanceled(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.QueryAll(ctx, []string{"help", "help"}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
