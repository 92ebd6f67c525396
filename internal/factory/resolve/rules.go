package resolve

import (
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/rsned/factory-planner/pkg/factory"
)

var (
	exprSplit = regexp.MustCompile(`[\s\-_:]+`)
	nameSplit = regexp.MustCompile(`[\s:\-]+`)
	varSplit  = regexp.MustCompile(`[:\-]+`)
)

const alternatePrefix = "recipe: alternate: "

// Expr is a normalized entity expression.
type Expr struct {
	Raw    string
	Folded string
	Parts  []string

	pattern *regexp.Regexp
}

// NewExpr folds and tokenizes an expression. The regex form is compiled once
// here; an invalid pattern simply never matches.
func NewExpr(raw string) *Expr {
	folded := fold(strings.TrimSpace(raw))
	e := &Expr{Raw: raw, Folded: folded, Parts: split(exprSplit, folded)}
	if re, err := regexp.Compile(`^(?:` + folded + `)$`); err == nil {
		e.pattern = re
	}
	return e
}

// Candidate holds the precomputed match forms of one catalog entity.
type Candidate struct {
	Entity factory.Entity

	Singular      string
	Plural        string
	Var           string
	TypelessVar   string
	SingularParts []string
	PluralParts   []string
	VarParts      []string
	TypelessParts []string
	Alternate     bool
}

func newCandidate(e factory.Entity, plural func(string) string) *Candidate {
	singular := fold(e.HumanReadableName())
	pl := pluralizeLast(singular, plural)
	v := e.Var()
	typeless := factory.SlugOf(v)
	return &Candidate{
		Entity:        e,
		Singular:      singular,
		Plural:        pl,
		Var:           v,
		TypelessVar:   typeless,
		SingularParts: split(nameSplit, singular),
		PluralParts:   split(nameSplit, pl),
		VarParts:      split(varSplit, v),
		TypelessParts: split(varSplit, typeless),
		Alternate:     strings.HasPrefix(singular, alternatePrefix),
	}
}

// Rule is one way an expression can match a candidate.
type Rule struct {
	Name  string
	Match func(e *Expr, c *Candidate) bool
}

// DefaultRules returns the matching rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		SingularRule,
		PluralRule,
		AlternateRecipeRule,
		VarRule,
		TypelessVarRule,
		RegexRule,
	}
}

// SingularRule matches the tokenized singular name.
var SingularRule = Rule{
	Name: "singular",
	Match: func(e *Expr, c *Candidate) bool {
		return slices.Equal(e.Parts, c.SingularParts)
	},
}

// PluralRule matches the tokenized plural name.
var PluralRule = Rule{
	Name: "plural",
	Match: func(e *Expr, c *Candidate) bool {
		return slices.Equal(e.Parts, c.PluralParts)
	},
}

// AlternateRecipeRule lets "Recipe: Alternate: X" be named without the
// "Alternate:" token, with or without the leading "Recipe:".
var AlternateRecipeRule = Rule{
	Name: "alternate-recipe",
	Match: func(e *Expr, c *Candidate) bool {
		if !c.Alternate {
			return false
		}
		for _, parts := range [][]string{c.SingularParts, c.PluralParts} {
			if len(parts) < 2 {
				continue
			}
			if slices.Equal(e.Parts, parts[2:]) {
				return true
			}
			if slices.Equal(e.Parts, append(slices.Clone(parts[:1]), parts[2:]...)) {
				return true
			}
		}
		return false
	},
}

// VarRule matches the tokenized var, e.g. "item iron rod" or "item:iron-rod".
var VarRule = Rule{
	Name: "var",
	Match: func(e *Expr, c *Candidate) bool {
		return slices.Equal(e.Parts, c.VarParts)
	},
}

// TypelessVarRule matches the var without its type prefix.
var TypelessVarRule = Rule{
	Name: "typeless-var",
	Match: func(e *Expr, c *Candidate) bool {
		return slices.Equal(e.Parts, c.TypelessParts)
	},
}

// RegexRule treats the expression as a pattern that must match a whole name
// or var.
var RegexRule = Rule{
	Name: "regex",
	Match: func(e *Expr, c *Candidate) bool {
		if e.pattern == nil {
			return false
		}
		return e.pattern.MatchString(c.Singular) ||
			e.pattern.MatchString(c.Plural) ||
			e.pattern.MatchString(c.Var) ||
			e.pattern.MatchString(c.TypelessVar)
	},
}

func fold(s string) string {
	// Casers carry state, so one per call.
	return cases.Fold().String(s)
}

func split(re *regexp.Regexp, s string) []string {
	var out []string
	for _, p := range re.Split(s, -1) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// pluralizeLast pluralizes the final word of a name.
func pluralizeLast(name string, plural func(string) string) string {
	i := strings.LastIndexByte(name, ' ')
	return name[:i+1] + plural(name[i+1:])
}
