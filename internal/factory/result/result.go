package result

// Result is the renderable outcome of one query.
type Result interface {
	// String is the textual fallback.
	String() string
	// Message renders the result for the trail's current page.
	Message(b *Breadcrumbs) *Message
	// HandleReaction applies r to the trail. When ok is true the caller runs
	// query next; otherwise it renders this result again.
	HandleReaction(r Reaction, b *Breadcrumbs) (query string, ok bool)
}

const helpText = `factory-planner answers questions about items, buildings and recipes, and
calculates optimal production chains. Some example queries:

    iron rod
    recipes for iron rod
    recipes from iron ingot
    compare recipes for screws

    produce 60 iron rods
    produce 60 iron rods from ? iron ore
    produce ? iron rods from 60 iron ore
    produce ? power from 240 crude oil using only fuel generators
    produce 60 modular frames without refineries
    produce 20 plastic without byproducts

Output values: a number, ? to maximize, or _ / any for "at least some".
Input values: a number caps consumption, ? minimizes it.
Prefix a clause with "only" to forbid anything not named.`

// Help lists the supported query shapes.
type Help struct{}

func (Help) String() string { return helpText }

func (h Help) Message(b *Breadcrumbs) *Message {
	m := newMessage(b.String())
	m.Embed = &Embed{Title: "Help", Description: h.String()}
	return m
}

func (Help) HandleReaction(Reaction, *Breadcrumbs) (string, bool) { return "", false }

// Error is a user-visible failure message.
type Error struct {
	Text string
}

func (e Error) String() string { return e.Text }

func (e Error) Message(b *Breadcrumbs) *Message {
	m := newMessage(b.String())
	m.Embed = &Embed{Title: "Error", Description: e.Text}
	return m
}

func (Error) HandleReaction(Reaction, *Breadcrumbs) (string, bool) { return "", false }
