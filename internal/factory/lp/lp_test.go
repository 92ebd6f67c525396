package lp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solve(t *testing.T, m *Model) *Solution {
	t.Helper()
	sol, err := m.Solve(context.Background())
	require.NoError(t, err)
	return sol
}

func TestSolveBounds(t *testing.T) {
	tests := []struct {
		name     string
		maximize bool
		sense    Sense
		bound    float64
		want     float64
	}{
		{"minimize above lower bound", false, GE, 3, 3},
		{"maximize below upper bound", true, LE, 5, 5},
		{"equality", false, EQ, 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel()
			m.Bound("x", tt.sense, tt.bound)
			m.SetObjective(tt.maximize, map[string]float64{"x": 1})

			sol := solve(t, m)
			require.Equal(t, Optimal, sol.Status())
			assert.InDelta(t, tt.want, sol.Value("x"), 1e-6)
			assert.InDelta(t, tt.want, sol.Objective(), 1e-6)
		})
	}
}

func TestSolveSystem(t *testing.T) {
	m := NewModel()
	m.AddRow(Row{Name: "sum", Coeffs: map[string]float64{"x": 1, "y": 1}, Sense: EQ, RHS: 10})
	m.AddRow(Row{Name: "diff", Coeffs: map[string]float64{"x": 1, "y": -1}, Sense: EQ, RHS: 2})
	m.SetObjective(false, map[string]float64{"x": 1})

	sol := solve(t, m)
	require.Equal(t, Optimal, sol.Status())
	assert.InDelta(t, 6, sol.Value("x"), 1e-6)
	assert.InDelta(t, 4, sol.Value("y"), 1e-6)
}

func TestSolveInfeasible(t *testing.T) {
	m := NewModel()
	m.Bound("x", GE, 5)
	m.Bound("x", LE, 3)
	m.SetObjective(false, map[string]float64{"x": 1})

	assert.Equal(t, Infeasible, solve(t, m).Status())
}

func TestSolveUnbounded(t *testing.T) {
	m := NewModel()
	m.Bound("x", GE, 0)
	m.SetObjective(true, map[string]float64{"x": 1})

	assert.Equal(t, Unbounded, solve(t, m).Status())
}

func TestSolveFreeVariables(t *testing.T) {
	m := NewModel()
	m.AddVar("idle")
	m.Bound("x", GE, 1)
	m.SetObjective(false, map[string]float64{"x": 1})

	sol := solve(t, m)
	require.Equal(t, Optimal, sol.Status())
	assert.InDelta(t, 0, sol.Value("idle"), 1e-12)
	assert.Contains(t, sol.Values(), "idle")

	m.SetObjective(false, map[string]float64{"x": 1, "idle": 1})
	assert.Equal(t, Unbounded, solve(t, m).Status())
}

func TestSolveConstantRows(t *testing.T) {
	m := NewModel()
	m.Bound("x", GE, 1)
	m.AddRow(Row{Name: "empty", Coeffs: map[string]float64{"x": 0}, Sense: GE, RHS: 1})
	m.SetObjective(false, map[string]float64{"x": 1})

	assert.Equal(t, Infeasible, solve(t, m).Status())
}

func TestSolveNoRows(t *testing.T) {
	m := NewModel()
	m.AddVar("x")

	sol := solve(t, m)
	require.Equal(t, Optimal, sol.Status())
	assert.InDelta(t, 0, sol.Objective(), 1e-12)
}

func TestSolveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewModel()
	m.Bound("x", GE, 0)
	_, err := m.Solve(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "optimal", Optimal.String())
	assert.Equal(t, "infeasible", Infeasible.String())
	assert.Equal(t, "unbounded", Unbounded.String())
	assert.Equal(t, "not-solved", NotSolved.String())
}

func TestRowString(t *testing.T) {
	r := Row{Name: "balance", Coeffs: map[string]float64{"b": -1, "a": 2}, Sense: GE, RHS: 0}
	assert.Equal(t, "balance: 2 a + -1 b >= 0", r.String())
}
