// Package lp builds linear programs over named variables and solves them
// with the gonum simplex implementation.
package lp

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Sense is the relation of a row to its right-hand side.
type Sense int

const (
	EQ Sense = iota
	GE
	LE
)

func (s Sense) String() string {
	switch s {
	case EQ:
		return "=="
	case GE:
		return ">="
	case LE:
		return "<="
	default:
		return "?"
	}
}

// Row is the constraint Σ Coeffs[v]·v Sense RHS.
type Row struct {
	Name   string
	Coeffs map[string]float64
	Sense  Sense
	RHS    float64
}

func (r Row) String() string {
	terms := make([]string, 0, len(r.Coeffs))
	for _, v := range slices.Sorted(maps.Keys(r.Coeffs)) {
		terms = append(terms, fmt.Sprintf("%g %s", r.Coeffs[v], v))
	}
	return fmt.Sprintf("%s: %s %s %g", r.Name, strings.Join(terms, " + "), r.Sense, r.RHS)
}

// Model is a linear program over named, otherwise unbounded variables.
// Bounds are rows. A Model is not safe for concurrent mutation.
type Model struct {
	vars      []string
	index     map[string]int
	rows      []Row
	maximize  bool
	objective map[string]float64
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		index:     make(map[string]int),
		objective: make(map[string]float64),
	}
}

// AddVar declares a variable. Declaring it again is a no-op.
func (m *Model) AddVar(name string) {
	if _, ok := m.index[name]; ok {
		return
	}
	m.index[name] = len(m.vars)
	m.vars = append(m.vars, name)
}

// HasVar reports whether a variable was declared.
func (m *Model) HasVar(name string) bool {
	_, ok := m.index[name]
	return ok
}

// Vars returns the declared variables in declaration order.
func (m *Model) Vars() []string { return slices.Clone(m.vars) }

// Rows returns the model's rows.
func (m *Model) Rows() []Row { return slices.Clone(m.rows) }

// AddRow appends a constraint, declaring any variables it mentions.
func (m *Model) AddRow(r Row) {
	for _, v := range slices.Sorted(maps.Keys(r.Coeffs)) {
		m.AddVar(v)
	}
	r.Coeffs = maps.Clone(r.Coeffs)
	m.rows = append(m.rows, r)
}

// Bound constrains a single variable.
func (m *Model) Bound(v string, sense Sense, k float64) {
	m.AddRow(Row{
		Name:   fmt.Sprintf("bound %s %s %g", v, sense, k),
		Coeffs: map[string]float64{v: 1},
		Sense:  sense,
		RHS:    k,
	})
}

// SetObjective replaces the objective. Unknown variables are declared.
func (m *Model) SetObjective(maximize bool, coeffs map[string]float64) {
	for _, v := range slices.Sorted(maps.Keys(coeffs)) {
		m.AddVar(v)
	}
	m.maximize = maximize
	m.objective = maps.Clone(coeffs)
}

// Maximize reports the objective direction.
func (m *Model) Maximize() bool { return m.maximize }

// Objective returns the objective coefficients.
func (m *Model) Objective() map[string]float64 { return maps.Clone(m.objective) }
