// Package factory contains the core types for the factory planner.
package factory

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// ============================================
// VARIABLE IDENTIFIERS
// ============================================

// Kind identifies the variant of a catalog entity.
type Kind string

const (
	KindItem        Kind = "item"
	KindResource    Kind = "resource"
	KindRecipe      Kind = "recipe"
	KindPowerRecipe Kind = "power-recipe"
	KindCrafter     Kind = "crafter"
	KindGenerator   Kind = "generator"
)

// Kinds returns every entity kind in resolution order.
func Kinds() []Kind {
	return []Kind{KindResource, KindItem, KindRecipe, KindPowerRecipe, KindCrafter, KindGenerator}
}

// Aggregate variables are synthetic LP variables defined as fixed linear
// combinations of catalog variables.
const (
	VarPower               = "power"
	VarUnweightedResources = "unweighted-resources"
	VarWeightedResources   = "weighted-resources"
	VarSpace               = "space"
	VarTickets             = "tickets"
	VarAlternateRecipes    = "alternate-recipes"
)

// AggregateVars returns the synthetic variables in declaration order.
func AggregateVars() []string {
	return []string{
		VarPower,
		VarUnweightedResources,
		VarWeightedResources,
		VarSpace,
		VarTickets,
		VarAlternateRecipes,
	}
}

// MakeVar joins a kind and a slug into a var.
func MakeVar(kind Kind, slug string) string {
	return string(kind) + ":" + slug
}

// Category returns the type prefix of a var, or "" for aggregate vars.
func Category(v string) Kind {
	prefix, _, ok := strings.Cut(v, ":")
	if !ok {
		return ""
	}
	return Kind(prefix)
}

// SlugOf strips the type prefix from a var.
func SlugOf(v string) string {
	_, slug, ok := strings.Cut(v, ":")
	if !ok {
		return v
	}
	return slug
}

// ============================================
// ENTITIES
// ============================================

// Entity is implemented by every catalog variant: *Item, *Recipe,
// *PowerRecipe, *Crafter and *Generator. The set is closed.
type Entity interface {
	Var() string
	Slug() string
	Kind() Kind
	HumanReadableName() string
	Details() string

	entity()
}

// ItemRate is an item flowing into or out of a recipe at a per-minute rate.
type ItemRate struct {
	Item      string  `json:"item" yaml:"item"`
	Name      string  `json:"-" yaml:"-"`
	PerMinute float64 `json:"per_minute" yaml:"per_minute"`
}

// Item is a transportable item or raw resource.
type Item struct {
	ID          string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	StackSize   int     `json:"stack_size,omitempty"`
	SinkPoints  int     `json:"sink_points,omitempty"`
	Resource    bool    `json:"resource,omitempty"`
	Weight      float64 `json:"weight,omitempty"`
}

// Crafter is a building that runs recipes.
type Crafter struct {
	ID          string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	PowerMW     float64 `json:"power_mw"`
	Area        float64 `json:"area,omitempty"`
}

// Generator is a building that burns fuel to produce power.
type Generator struct {
	ID          string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	PowerMW     float64 `json:"power_mw"`
	Area        float64 `json:"area,omitempty"`
}

// Recipe converts ingredients into products in a crafter. Rates are for one
// crafter running at 100%.
type Recipe struct {
	ID           string     `json:"slug"`
	Name         string     `json:"name"`
	Alternate    bool       `json:"alternate,omitempty"`
	Crafter      string     `json:"crafter"`
	CrafterName  string     `json:"-"`
	CraftTimeSec float64    `json:"craft_time_sec,omitempty"`
	Ingredients  []ItemRate `json:"ingredients"`
	Products     []ItemRate `json:"products"`
}

// PowerRecipe burns a fuel item in a generator.
type PowerRecipe struct {
	ID              string  `json:"slug"`
	Name            string  `json:"name"`
	Generator       string  `json:"generator"`
	GeneratorName   string  `json:"-"`
	FuelItem        string  `json:"fuel_item"`
	FuelName        string  `json:"-"`
	FuelPerMinute   float64 `json:"fuel_per_minute"`
	PowerProduction float64 `json:"power_mw"`
}

func (*Item) entity()        {}
func (*Crafter) entity()     {}
func (*Generator) entity()   {}
func (*Recipe) entity()      {}
func (*PowerRecipe) entity() {}

// Kind returns KindResource for raw resources and KindItem otherwise.
func (i *Item) Kind() Kind {
	if i.Resource {
		return KindResource
	}
	return KindItem
}

func (i *Item) Var() string               { return MakeVar(i.Kind(), i.ID) }
func (i *Item) Slug() string              { return i.ID }
func (i *Item) HumanReadableName() string { return i.Name }

// ResourceWeight returns the weight used by the weighted-resources metric.
func (i *Item) ResourceWeight() float64 {
	if i.Weight <= 0 {
		return 1
	}
	return i.Weight
}

func (i *Item) Details() string {
	var b strings.Builder
	b.WriteString(i.Name + "\n")
	if i.Description != "" {
		b.WriteString("  " + i.Description + "\n")
	}
	b.WriteString("  var: " + i.Var() + "\n")
	if i.StackSize > 0 {
		fmt.Fprintf(&b, "  stack size: %d\n", i.StackSize)
	}
	if i.SinkPoints > 0 {
		fmt.Fprintf(&b, "  sink points: %s\n", humanize.Comma(int64(i.SinkPoints)))
	}
	if i.Resource {
		fmt.Fprintf(&b, "  raw resource, weight %s\n", FormatAmount(i.ResourceWeight()))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (c *Crafter) Kind() Kind                { return KindCrafter }
func (c *Crafter) Var() string               { return MakeVar(KindCrafter, c.ID) }
func (c *Crafter) Slug() string              { return c.ID }
func (c *Crafter) HumanReadableName() string { return c.Name }

func (c *Crafter) Details() string {
	var b strings.Builder
	b.WriteString(c.Name + "\n")
	if c.Description != "" {
		b.WriteString("  " + c.Description + "\n")
	}
	b.WriteString("  var: " + c.Var() + "\n")
	fmt.Fprintf(&b, "  power consumption: %s MW", FormatAmount(c.PowerMW))
	if c.Area > 0 {
		fmt.Fprintf(&b, "\n  area: %s m²", FormatAmount(c.Area))
	}
	return b.String()
}

func (g *Generator) Kind() Kind                { return KindGenerator }
func (g *Generator) Var() string               { return MakeVar(KindGenerator, g.ID) }
func (g *Generator) Slug() string              { return g.ID }
func (g *Generator) HumanReadableName() string { return g.Name }

func (g *Generator) Details() string {
	var b strings.Builder
	b.WriteString(g.Name + "\n")
	if g.Description != "" {
		b.WriteString("  " + g.Description + "\n")
	}
	b.WriteString("  var: " + g.Var() + "\n")
	fmt.Fprintf(&b, "  power production: %s MW", FormatAmount(g.PowerMW))
	if g.Area > 0 {
		fmt.Fprintf(&b, "\n  area: %s m²", FormatAmount(g.Area))
	}
	return b.String()
}

func (r *Recipe) Kind() Kind                { return KindRecipe }
func (r *Recipe) Var() string               { return MakeVar(KindRecipe, r.ID) }
func (r *Recipe) Slug() string              { return r.ID }
func (r *Recipe) HumanReadableName() string { return r.Name }

// Ingredient returns the per-minute rate of an ingredient, or 0.
func (r *Recipe) Ingredient(itemVar string) float64 {
	return rateOf(r.Ingredients, itemVar)
}

// Product returns the per-minute rate of a product, or 0.
func (r *Recipe) Product(itemVar string) float64 {
	return rateOf(r.Products, itemVar)
}

func (r *Recipe) Details() string {
	var b strings.Builder
	b.WriteString(r.Name + "\n")
	b.WriteString("  var: " + r.Var() + "\n")
	if r.Alternate {
		b.WriteString("  alternate: yes\n")
	}
	crafter := r.CrafterName
	if crafter == "" {
		crafter = r.Crafter
	}
	b.WriteString("  crafter: " + crafter + "\n")
	if r.CraftTimeSec > 0 {
		fmt.Fprintf(&b, "  craft time: %ss\n", FormatAmount(r.CraftTimeSec))
	}
	b.WriteString("  ingredients:\n")
	writeRates(&b, r.Ingredients)
	b.WriteString("  products:\n")
	writeRates(&b, r.Products)
	return strings.TrimRight(b.String(), "\n")
}

func (p *PowerRecipe) Kind() Kind                { return KindPowerRecipe }
func (p *PowerRecipe) Var() string               { return MakeVar(KindPowerRecipe, p.ID) }
func (p *PowerRecipe) Slug() string              { return p.ID }
func (p *PowerRecipe) HumanReadableName() string { return p.Name }

func (p *PowerRecipe) Details() string {
	var b strings.Builder
	b.WriteString(p.Name + "\n")
	b.WriteString("  var: " + p.Var() + "\n")
	generator := p.GeneratorName
	if generator == "" {
		generator = p.Generator
	}
	fuel := p.FuelName
	if fuel == "" {
		fuel = p.FuelItem
	}
	b.WriteString("  generator: " + generator + "\n")
	fmt.Fprintf(&b, "  fuel: %s %s/m\n", fuel, FormatAmount(p.FuelPerMinute))
	fmt.Fprintf(&b, "  power production: %s MW", FormatAmount(p.PowerProduction))
	return b.String()
}

func rateOf(rates []ItemRate, itemVar string) float64 {
	for _, r := range rates {
		if r.Item == itemVar {
			return r.PerMinute
		}
	}
	return 0
}

func writeRates(b *strings.Builder, rates []ItemRate) {
	for _, r := range rates {
		name := r.Name
		if name == "" {
			name = r.Item
		}
		fmt.Fprintf(b, "    %s: %s/m\n", name, FormatAmount(r.PerMinute))
	}
}

// FormatAmount renders a rate or count rounded to two decimals without
// trailing zeros.
func FormatAmount(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		// Drop the sign of negative zero.
		r = 0
	}
	return humanize.FtoaWithDigits(r, 2)
}
