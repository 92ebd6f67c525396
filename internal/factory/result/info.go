package result

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rsned/factory-planner/pkg/factory"
)

// PageSize is the number of matches listed per page.
const PageSize = 9

// Info lists the entities matched by an info query, or shows the details of
// a single match.
type Info struct {
	entities  []factory.Entity
	selectors bool
}

// NewInfo sorts entities by display name.
func NewInfo(entities []factory.Entity) *Info {
	sorted := append([]factory.Entity(nil), entities...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].HumanReadableName() < sorted[j].HumanReadableName()
	})
	return &Info{entities: sorted}
}

// Entities returns the matches in display order.
func (r *Info) Entities() []factory.Entity {
	return append([]factory.Entity(nil), r.entities...)
}

// Pages returns the number of pages of matches.
func (r *Info) Pages() int {
	return (len(r.entities) + PageSize - 1) / PageSize
}

func (r *Info) String() string {
	if len(r.entities) == 1 {
		return r.entities[0].Details()
	}
	names := make([]string, 0, len(r.entities))
	for _, e := range r.entities {
		names = append(names, e.HumanReadableName())
	}
	return strings.Join(names, "\n")
}

func (r *Info) Message(b *Breadcrumbs) *Message {
	m := newMessage(b.String())
	switch len(r.entities) {
	case 0:
		m.Embed = &Embed{Title: "No matches found"}
	case 1:
		e := r.entities[0]
		m.Embed = &Embed{Title: e.HumanReadableName(), Description: e.Details()}
		m.Reactions = []Reaction{ReactionPrevious}
	default:
		r.page(m, b.Page())
	}
	return m
}

func (r *Info) page(m *Message, page int) {
	start := min((page-1)*PageSize, len(r.entities))
	end := min(start+PageSize, len(r.entities))

	lines := make([]string, 0, end-start)
	for i, e := range r.entities[start:end] {
		prefix := ""
		if r.selectors {
			nr, _ := NumberReaction(i + 1)
			prefix = string(nr) + " "
			m.Reactions = append(m.Reactions, nr)
		}
		lines = append(lines, "- "+prefix+e.HumanReadableName())
	}
	if !r.selectors {
		if page > 1 {
			m.Reactions = append(m.Reactions, ReactionPrevious)
		}
		m.Reactions = append(m.Reactions, ReactionInfo)
		if page < r.Pages() {
			m.Reactions = append(m.Reactions, ReactionNext)
		}
	}

	m.Embed = &Embed{
		Title:       fmt.Sprintf("Found %d matches:", len(r.entities)),
		Description: strings.Join(lines, "\n"),
		Footer:      fmt.Sprintf("Page %d of %d", page, r.Pages()),
	}
}

// HandleReaction pages through the matches, switches the page to numbered
// selectors, or navigates to a selected match. Previous moves back a page
// before it moves back a query.
func (r *Info) HandleReaction(reaction Reaction, b *Breadcrumbs) (string, bool) {
	switch reaction {
	case ReactionInfo:
		r.selectors = true
	case ReactionNext:
		if b.Page() < r.Pages() {
			b.GotoNextPage()
		}
	case ReactionPrevious:
		switch {
		case b.Page() > 1:
			b.GotoPrevPage()
		case b.HasPrevQuery():
			b.GotoPrevQuery()
			return b.PrimaryQuery(), true
		}
	default:
		n, ok := reaction.Number()
		if !ok {
			return "", false
		}
		i := (b.Page()-1)*PageSize + n - 1
		if i >= len(r.entities) {
			return "", false
		}
		r.selectors = false
		q := r.entities[i].HumanReadableName()
		b.AddQuery(q)
		return q, true
	}
	return "", false
}
