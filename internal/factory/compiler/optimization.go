package compiler

import (
	"github.com/rsned/factory-planner/internal/factory/grammar"
	"github.com/rsned/factory-planner/internal/factory/query"
	"github.com/rsned/factory-planner/pkg/factory"
)

var buildingKinds = []factory.Kind{
	factory.KindRecipe,
	factory.KindPowerRecipe,
	factory.KindCrafter,
	factory.KindGenerator,
}

// compileOptimization evaluates sections in the order outputs, inputs,
// includes, excludes.
func (c *Compiler) compileOptimization(t *grammar.Tree) (*query.OptimizationQuery, error) {
	b := query.NewBuilder(t.Raw)

	if err := c.compileOutputs(t.Outputs, b); err != nil {
		return nil, err
	}
	if err := c.compileInputs(t.Inputs, b); err != nil {
		return nil, err
	}
	included, err := c.compileIncludes(t.Includes, b)
	if err != nil {
		return nil, err
	}
	if err := c.compileExcludes(t.Excludes, b, included); err != nil {
		return nil, err
	}

	if !b.HasObjective() {
		setDefaultObjective(b)
	}
	return b.Build(), nil
}

// setDefaultObjective applies when no clause carried a `?`: minimize the
// unweighted resource total. A `?` on an output or an input always keeps its
// own vars as the objective.
func setDefaultObjective(b *query.Builder) {
	b.SetObjective(false, map[string]float64{factory.VarUnweightedResources: -1})
}

func (c *Compiler) compileOutputs(outputs []grammar.Clause, b *query.Builder) error {
	if len(outputs) == 0 {
		return factory.NewError(factory.ErrCodeCompilation, "No outputs specified in optimization query.")
	}
	for _, cl := range outputs {
		vars, err := c.clauseVars(cl, "Could not parse item expression '%s'.", factory.KindItem)
		if err != nil {
			return err
		}

		switch cl.Value.Kind {
		case grammar.ValueObjective:
			if b.HasObjective() {
				return errOneObjective()
			}
			b.SetObjective(true, coefficients(vars, 1))
		case grammar.ValueNumber:
			for _, v := range vars {
				b.Eq(v, float64(cl.Value.Number))
			}
		default:
			for _, v := range vars {
				b.Ge(v, 0)
			}
		}

		if cl.Strict {
			b.SetStrict(query.StrictOutputs)
		}
		if cl.Literal == grammar.LiteralPower {
			b.SetHasPowerOutput()
		}
	}
	return nil
}

func (c *Compiler) compileInputs(inputs []grammar.Clause, b *query.Builder) error {
	for _, cl := range inputs {
		vars, err := c.clauseVars(cl, "Could not parse resource or item expression '%s'.",
			factory.KindResource, factory.KindItem)
		if err != nil {
			return err
		}

		switch cl.Value.Kind {
		case grammar.ValueObjective:
			if b.HasObjective() {
				return errOneObjective()
			}
			b.SetObjective(false, coefficients(vars, -1))
		case grammar.ValueNumber:
			for _, v := range vars {
				b.Ge(v, -float64(cl.Value.Number))
			}
		default:
			for _, v := range vars {
				b.Le(v, 0)
			}
		}

		if cl.Strict {
			b.SetStrict(query.StrictInputs)
		}
	}
	return nil
}

// compileIncludes returns the set of vars it bounded below.
func (c *Compiler) compileIncludes(includes []grammar.Clause, b *query.Builder) (map[string]bool, error) {
	included := make(map[string]bool)
	for _, cl := range includes {
		if cl.Literal != "" {
			// Space is always available; naming it adds nothing.
			continue
		}
		vars, err := c.clauseVars(cl, "Could not parse recipe, power recipe, crafter, or generator expression '%s'.",
			buildingKinds...)
		if err != nil {
			return nil, err
		}
		for _, v := range vars {
			b.Ge(v, 0)
			included[v] = true
			switch factory.Category(v) {
			case factory.KindRecipe:
				b.SetStrict(query.StrictRecipes)
			case factory.KindPowerRecipe:
				b.SetStrict(query.StrictPowerRecipes)
			case factory.KindCrafter:
				b.SetStrict(query.StrictCrafters)
			case factory.KindGenerator:
				b.SetStrict(query.StrictGenerators)
			}
		}
	}
	return included, nil
}

func (c *Compiler) compileExcludes(excludes []grammar.Clause, b *query.Builder, included map[string]bool) error {
	for _, cl := range excludes {
		if cl.Byproducts {
			b.SetStrict(query.StrictOutputs)
			continue
		}
		vars, err := c.clauseVars(cl, "Could not parse recipe, power recipe, crafter, or generator expression '%s'.",
			buildingKinds...)
		if err != nil {
			return err
		}
		for _, v := range vars {
			if included[v] {
				c.logger.Warn("var is both included and excluded, exclusion wins", "var", v)
			}
			b.Eq(v, 0)
		}
	}
	return nil
}

// clauseVars returns the literal var of a clause or the vars its entity
// expression resolves to.
func (c *Compiler) clauseVars(cl grammar.Clause, format string, kinds ...factory.Kind) ([]string, error) {
	if cl.Literal != "" {
		return []string{cl.Literal}, nil
	}
	matches, err := c.resolve(cl.Entity, format, kinds...)
	if err != nil {
		return nil, err
	}
	return varsOf(matches), nil
}

func coefficients(vars []string, k float64) map[string]float64 {
	out := make(map[string]float64, len(vars))
	for _, v := range vars {
		out[v] = k
	}
	return out
}

func errOneObjective() error {
	return factory.NewError(factory.ErrCodeCompilation, "Only one objective may be specified.")
}
