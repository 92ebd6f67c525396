package lp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"gonum.org/v1/gonum/mat"
	glp "gonum.org/v1/gonum/optimize/convex/lp"
)

// DefaultTolerance is the simplex tolerance used when none is configured.
const DefaultTolerance = 1e-9

// Status is the terminal state of a solve.
type Status int

const (
	NotSolved Status = iota
	Optimal
	Infeasible
	Unbounded
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Infeasible:
		return "infeasible"
	case Unbounded:
		return "unbounded"
	default:
		return "not-solved"
	}
}

// Solution is the immutable outcome of a solve. Values are only meaningful
// when the status is Optimal.
type Solution struct {
	status    Status
	objective float64
	values    map[string]float64
	err       error
}

func (s *Solution) Status() Status     { return s.status }
func (s *Solution) Objective() float64 { return s.objective }

// Value returns the value of a variable, or 0 for unknown variables.
func (s *Solution) Value(v string) float64 { return s.values[v] }

// Values returns a copy of every variable's value.
func (s *Solution) Values() map[string]float64 { return maps.Clone(s.values) }

// Err returns the solver error behind a NotSolved status, if any.
func (s *Solution) Err() error { return s.err }

// NewSolution builds a solution directly. It is meant for tests of code that
// consumes solutions.
func NewSolution(status Status, objective float64, values map[string]float64) *Solution {
	return &Solution{status: status, objective: objective, values: maps.Clone(values)}
}

// SolveOption configures Solve.
type SolveOption func(*solveOptions)

type solveOptions struct {
	tolerance float64
	logger    *slog.Logger
}

// WithTolerance sets the simplex tolerance.
func WithTolerance(tol float64) SolveOption {
	return func(o *solveOptions) { o.tolerance = tol }
}

// WithLogger sets the logger used for solver diagnostics.
func WithLogger(l *slog.Logger) SolveOption {
	return func(o *solveOptions) { o.logger = l }
}

// Solve solves the model. Infeasible, unbounded and failed solves are
// reported through the solution status; the only error is a done context.
func (m *Model) Solve(ctx context.Context, opts ...SolveOption) (*Solution, error) {
	o := solveOptions{tolerance: DefaultTolerance, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Variables in no row are free: any nonzero objective weight on one makes
	// the program unbounded, otherwise it sits at zero.
	used := make(map[string]bool, len(m.vars))
	var g [][]float64
	var h []float64
	cols := make(map[string]int)
	var kept []string

	for _, r := range m.rows {
		for v, k := range r.Coeffs {
			if k != 0 {
				used[v] = true
			}
		}
	}
	for _, v := range m.vars {
		if used[v] {
			cols[v] = len(kept)
			kept = append(kept, v)
		}
	}

	for _, r := range m.rows {
		row := make([]float64, len(kept))
		nonzero := false
		for v, k := range r.Coeffs {
			if k == 0 {
				continue
			}
			row[cols[v]] = k
			nonzero = true
		}
		if !nonzero {
			if !constantHolds(r) {
				o.logger.Debug("constant row is violated", "row", r.String())
				return &Solution{status: Infeasible}, nil
			}
			continue
		}
		switch r.Sense {
		case LE:
			g = append(g, row)
			h = append(h, r.RHS)
		case GE:
			g = append(g, negate(row))
			h = append(h, -r.RHS)
		case EQ:
			g = append(g, row, negate(row))
			h = append(h, r.RHS, -r.RHS)
		}
	}

	values := make(map[string]float64, len(m.vars))
	for _, v := range m.vars {
		values[v] = 0
	}

	if len(kept) > 0 {
		status, x, err := simplex(m, kept, g, h, o.tolerance)
		if status != Optimal {
			if err != nil {
				o.logger.Debug("simplex stopped", "status", status.String(), "error", err)
			}
			return &Solution{status: status, err: err}, nil
		}
		for i, v := range kept {
			values[v] = x[i]
		}
	}

	for v, k := range m.objective {
		if k != 0 && !used[v] {
			return &Solution{status: Unbounded}, nil
		}
	}

	objective := 0.0
	for v, k := range m.objective {
		objective += k * values[v]
	}
	return &Solution{status: Optimal, objective: objective, values: values}, nil
}

// simplex converts G·x ≤ h with free x to standard form and solves it.
func simplex(m *Model, kept []string, g [][]float64, h []float64, tol float64) (status Status, x []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			status, x, err = NotSolved, nil, fmt.Errorf("simplex panicked: %v", r)
		}
	}()

	n := len(kept)
	c := make([]float64, n)
	for i, v := range kept {
		c[i] = m.objective[v]
		if m.maximize {
			c[i] = -c[i]
		}
	}

	data := make([]float64, 0, len(g)*n)
	for _, row := range g {
		data = append(data, row...)
	}
	G := mat.NewDense(len(g), n, data)

	cNew, aNew, bNew := glp.Convert(c, G, h, nil, nil)
	_, xt, err := glp.Simplex(cNew, aNew, bNew, tol, nil)
	switch {
	case err == nil:
	case errors.Is(err, glp.ErrInfeasible):
		return Infeasible, nil, nil
	case errors.Is(err, glp.ErrUnbounded):
		return Unbounded, nil, nil
	default:
		return NotSolved, nil, err
	}

	x = make([]float64, n)
	for i := range x {
		x[i] = xt[i] - xt[n+i]
	}
	return Optimal, x, nil
}

func constantHolds(r Row) bool {
	switch r.Sense {
	case LE:
		return 0 <= r.RHS
	case GE:
		return 0 >= r.RHS
	default:
		return r.RHS == 0
	}
}

func negate(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, k := range row {
		out[i] = -k
	}
	return out
}
