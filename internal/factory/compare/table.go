package compare

import (
	"fmt"
	"slices"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/rsned/factory-planner/pkg/factory"
)

// OverallTitle is the heading of the overall metrics table.
func (c *Comparison) OverallTitle() string {
	return "All recipes that produce " + c.Product.HumanReadableName()
}

// InputsTitle is the heading of the raw inputs table.
func (c *Comparison) InputsTitle() string {
	return "Raw Inputs for 1/m " + c.Product.HumanReadableName()
}

// OverallTable renders one row per recipe. The base row is blank and every
// alternate shows its deltas.
func (c *Comparison) OverallTable() (string, error) {
	rows := [][]string{{c.Base.Recipe.HumanReadableName(), "", "", "", ""}}
	for _, r := range c.Related {
		rows = append(rows, []string{
			r.Recipe.HumanReadableName(),
			r.UnweightedDeltas.ResourceRequirements.String(),
			r.WeightedDeltas.ResourceRequirements.String(),
			r.UnweightedDeltas.PowerConsumption.String(),
			r.UnweightedDeltas.Complexity.String(),
		})
	}
	return render([]string{"Recipe", "Unweighted Resources", "Weighted Resources", "Power Consumption", "Complexity"}, rows)
}

// InputVars returns every raw input used by any compared recipe: the base
// recipe's inputs first, then inputs new to each alternate.
func (c *Comparison) InputVars() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(inputs map[string]float64) {
		var fresh []string
		for v := range inputs {
			if !seen[v] {
				seen[v] = true
				fresh = append(fresh, v)
			}
		}
		slices.Sort(fresh)
		out = append(out, fresh...)
	}
	add(c.Base.Unweighted.Inputs)
	for _, r := range c.Related {
		add(r.Unweighted.Inputs)
	}
	return out
}

// InputsTable renders per-input consumption for one unit per minute of the
// product, with deltas for the alternates.
func (c *Comparison) InputsTable() (string, error) {
	inputs := c.InputVars()

	header := []string{"Recipe"}
	for _, v := range inputs {
		header = append(header, c.InputName(v))
	}
	header = append(header, "Power")

	base := []string{c.Base.Recipe.HumanReadableName()}
	for _, v := range inputs {
		cell := ""
		if amount, ok := c.Base.Unweighted.Inputs[v]; ok {
			cell = factory.FormatAmount(amount) + "/m"
		}
		base = append(base, cell)
	}
	base = append(base, factory.FormatAmount(c.Base.Unweighted.PowerConsumption)+" MW")
	rows := [][]string{base}

	for _, r := range c.Related {
		row := []string{r.Recipe.HumanReadableName()}
		for _, v := range inputs {
			cell := ""
			if amount, ok := r.Unweighted.Inputs[v]; ok {
				cell = fmt.Sprintf("%s/m (%s)", factory.FormatAmount(amount), r.UnweightedDeltas.Inputs[v])
			}
			row = append(row, cell)
		}
		row = append(row, fmt.Sprintf("%s MW (%s)",
			factory.FormatAmount(r.Unweighted.PowerConsumption), r.UnweightedDeltas.PowerConsumption))
		rows = append(rows, row)
	}
	return render(header, rows)
}

func render(header []string, rows [][]string) (string, error) {
	var b strings.Builder
	table := tablewriter.NewTable(&b, tablewriter.WithHeader(header))
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return "", fmt.Errorf("appending table row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return "", fmt.Errorf("rendering table: %w", err)
	}
	return b.String(), nil
}
