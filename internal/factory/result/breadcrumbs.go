package result

import (
	"fmt"
	"strings"
)

// Crumb is one query in a navigation trail and the page shown for it.
type Crumb struct {
	Query string
	Page  int
}

// Breadcrumbs is the in-memory navigation trail of one conversation. It is
// not safe for concurrent use.
type Breadcrumbs struct {
	crumbs []Crumb
}

// NewBreadcrumbs starts a trail at query.
func NewBreadcrumbs(query string) *Breadcrumbs {
	return &Breadcrumbs{crumbs: []Crumb{{Query: query, Page: 1}}}
}

// AddQuery pushes query onto the trail at page 1.
func (b *Breadcrumbs) AddQuery(query string) {
	b.crumbs = append(b.crumbs, Crumb{Query: query, Page: 1})
}

// PrimaryQuery returns the query at the end of the trail.
func (b *Breadcrumbs) PrimaryQuery() string {
	if len(b.crumbs) == 0 {
		return ""
	}
	return b.last().Query
}

// HasPrevQuery reports whether there is a query to go back to.
func (b *Breadcrumbs) HasPrevQuery() bool { return len(b.crumbs) > 1 }

// GotoPrevQuery drops the last query from the trail.
func (b *Breadcrumbs) GotoPrevQuery() {
	if b.HasPrevQuery() {
		b.crumbs = b.crumbs[:len(b.crumbs)-1]
	}
}

// Page returns the page shown for the primary query. A nil trail is on
// page 1.
func (b *Breadcrumbs) Page() int {
	if b == nil || len(b.crumbs) == 0 {
		return 1
	}
	return b.last().Page
}

// GotoNextPage advances the primary query's page.
func (b *Breadcrumbs) GotoNextPage() {
	if len(b.crumbs) > 0 {
		b.last().Page++
	}
}

// GotoPrevPage moves the primary query back a page, stopping at 1.
func (b *Breadcrumbs) GotoPrevPage() {
	if len(b.crumbs) > 0 && b.last().Page > 1 {
		b.last().Page--
	}
}

// Crumbs returns a copy of the trail.
func (b *Breadcrumbs) Crumbs() []Crumb {
	return append([]Crumb(nil), b.crumbs...)
}

func (b *Breadcrumbs) last() *Crumb { return &b.crumbs[len(b.crumbs)-1] }

// String renders the trail as "q1 > q2 [page N]". The page is shown only
// past the first.
func (b *Breadcrumbs) String() string {
	if b == nil {
		return ""
	}
	parts := make([]string, 0, len(b.crumbs))
	for _, c := range b.crumbs {
		s := c.Query
		if c.Page > 1 {
			s += fmt.Sprintf(" [page %d]", c.Page)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " > ")
}
