package result

import (
	"strings"

	"github.com/rsned/factory-planner/internal/factory/compare"
)

// RecipeCompare shows how the alternates for an item measure up against its
// standard recipe.
type RecipeCompare struct {
	comparison *compare.Comparison
	overall    string
	inputs     string
}

// NewRecipeCompare renders both comparison tables up front.
func NewRecipeCompare(c *compare.Comparison) (*RecipeCompare, error) {
	overall, err := c.OverallTable()
	if err != nil {
		return nil, err
	}
	inputs, err := c.InputsTable()
	if err != nil {
		return nil, err
	}
	return &RecipeCompare{
		comparison: c,
		overall:    strings.TrimRight(overall, "\n"),
		inputs:     strings.TrimRight(inputs, "\n"),
	}, nil
}

// Comparison returns the underlying statistics.
func (r *RecipeCompare) Comparison() *compare.Comparison { return r.comparison }

func (r *RecipeCompare) String() string {
	return strings.Join([]string{
		r.comparison.OverallTitle(), r.overall, "",
		r.comparison.InputsTitle(), r.inputs,
	}, "\n")
}

// Message puts the tables in code blocks. Content over the cap is replaced
// as a whole.
func (r *RecipeCompare) Message(b *Breadcrumbs) *Message {
	return newMessage(strings.Join([]string{
		b.String(),
		r.comparison.OverallTitle(), "```\n" + r.overall + "\n```",
		r.comparison.InputsTitle(), "```\n" + r.inputs + "\n```",
	}, "\n"))
}

func (*RecipeCompare) HandleReaction(Reaction, *Breadcrumbs) (string, bool) { return "", false }
