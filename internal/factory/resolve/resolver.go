// Package resolve matches free-text entity expressions against the catalog.
package resolve

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/gertd/go-pluralize"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rsned/factory-planner/internal/factory/catalog"
	"github.com/rsned/factory-planner/pkg/factory"
)

// DefaultCacheSize is the number of memoized expressions kept by default.
const DefaultCacheSize = 1024

const maxSuggestions = 3

// Resolver resolves entity expressions. It is safe for concurrent use.
type Resolver struct {
	catalog *catalog.Catalog
	rules   []Rule
	byKind  map[factory.Kind][]*Candidate
	cache   *lru.Cache[string, []string]
	logger  *slog.Logger
}

// Option configures a Resolver.
type Option func(*options)

type options struct {
	cacheSize int
	rules     []Rule
	logger    *slog.Logger
}

// WithCacheSize sets the memo size. Zero or less uses DefaultCacheSize.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithRules replaces the default rule list.
func WithRules(rules ...Rule) Option {
	return func(o *options) { o.rules = rules }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New precomputes the match forms of every catalog entity.
func New(c *catalog.Catalog, opts ...Option) (*Resolver, error) {
	o := options{cacheSize: DefaultCacheSize, rules: DefaultRules()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cacheSize <= 0 {
		o.cacheSize = DefaultCacheSize
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	cache, err := lru.New[string, []string](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating resolver cache: %w", err)
	}

	plural := pluralize.NewClient()
	r := &Resolver{
		catalog: c,
		rules:   o.rules,
		byKind:  make(map[factory.Kind][]*Candidate),
		cache:   cache,
		logger:  o.logger,
	}
	for _, kind := range factory.Kinds() {
		for _, e := range c.Entities(kind) {
			r.byKind[kind] = append(r.byKind[kind], newCandidate(e, plural.Plural))
		}
	}
	return r, nil
}

// Resolve returns every entity of the allowed kinds that any rule matches,
// in catalog order. An empty result is not an error here; callers decide
// what an empty match means.
func (r *Resolver) Resolve(expr string, kinds ...factory.Kind) []factory.Entity {
	e := NewExpr(expr)
	key := cacheKey(e.Folded, kinds)

	vars, ok := r.cache.Get(key)
	if ok {
		cacheHits.Inc()
	} else {
		cacheMisses.Inc()
		vars = r.match(e, kinds)
		r.cache.Add(key, vars)
	}

	out := make([]factory.Entity, 0, len(vars))
	for _, v := range vars {
		if ent, ok := r.catalog.Entity(v); ok {
			out = append(out, ent)
		}
	}
	return out
}

func (r *Resolver) match(e *Expr, kinds []factory.Kind) []string {
	var vars []string
	for _, kind := range dedupKinds(kinds) {
		for _, c := range r.byKind[kind] {
			for _, rule := range r.rules {
				if rule.Match(e, c) {
					r.logger.Debug("entity matched", "expr", e.Raw, "var", c.Var, "rule", rule.Name)
					vars = append(vars, c.Var)
					break
				}
			}
		}
	}
	return vars
}

// Suggest returns up to three names of the allowed kinds that are close to
// expr by edit distance, closest first.
func (r *Resolver) Suggest(expr string, kinds ...factory.Kind) []string {
	e := NewExpr(expr)
	if e.Folded == "" {
		return nil
	}

	type scored struct {
		name string
		dist int
	}
	var found []scored
	for _, kind := range dedupKinds(kinds) {
		for _, c := range r.byKind[kind] {
			best := -1
			for _, form := range []string{c.Singular, c.Plural} {
				d := levenshtein.ComputeDistance(e.Folded, form)
				if d <= levenshteinLimit(len(form)) && (best < 0 || d < best) {
					best = d
				}
			}
			if best >= 0 {
				found = append(found, scored{name: c.Entity.HumanReadableName(), dist: best})
			}
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].dist == found[j].dist {
			return found[i].name < found[j].name
		}
		return found[i].dist < found[j].dist
	})

	var names []string
	for _, s := range found {
		if slices.Contains(names, s.name) {
			continue
		}
		names = append(names, s.name)
		if len(names) == maxSuggestions {
			break
		}
	}
	return names
}

// NotFound builds the resolution error for an expression that matched
// nothing, appending suggestions when there are any.
func (r *Resolver) NotFound(message, expr string, kinds ...factory.Kind) *factory.Error {
	suggestions := r.Suggest(expr, kinds...)
	if len(suggestions) > 0 {
		message += "\nDid you mean: " + strings.Join(suggestions, ", ") + "?"
	}
	return factory.NewErrorWithContext(factory.ErrCodeResolution, message, map[string]any{
		"expression":  expr,
		"suggestions": suggestions,
	})
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func dedupKinds(kinds []factory.Kind) []factory.Kind {
	out := make([]factory.Kind, 0, len(kinds))
	for _, k := range kinds {
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}

func cacheKey(folded string, kinds []factory.Kind) string {
	parts := make([]string, 0, len(kinds)+1)
	for _, k := range dedupKinds(kinds) {
		parts = append(parts, string(k))
	}
	parts = append(parts, folded)
	return strings.Join(parts, "\x00")
}
