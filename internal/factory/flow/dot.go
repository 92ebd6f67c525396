package flow

import (
	"fmt"
	"strings"

	"github.com/emicklei/dot"

	"github.com/rsned/factory-planner/pkg/factory"
)

// DOT renders the graph in Graphviz DOT syntax.
func (g *Graph) DOT() string {
	d := dot.NewGraph(dot.Directed)
	d.ID("structs")

	nodes := make(map[string]dot.Node, len(g.Nodes)+1)
	for _, n := range g.Nodes {
		nodes[n.ID] = d.Node(n.ID).Label(n.Label).Attr("shape", "plaintext")
	}
	nodes[PowerNode] = d.Node(PowerNode).
		Attr("label", dot.HTML(powerLabel(g.PowerOutput, g.NetPower))).
		Attr("shape", "plaintext")

	for _, e := range g.Edges {
		from, ok := nodes[e.From]
		if !ok {
			from = d.Node(e.From)
		}
		to, ok := nodes[e.To]
		if !ok {
			to = d.Node(e.To)
		}
		d.Edge(from, to, e.Label)
	}
	return d.String()
}

// powerLabel is an HTML table showing total output, when there is any, and
// net power. Net consumption is highlighted.
func powerLabel(output, net float64) string {
	color := "lightblue"
	if net < 0 {
		color = "moccasin"
	}

	var b strings.Builder
	b.WriteString(`<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="0" CELLPADDING="4">`)
	if output > 0 {
		fmt.Fprintf(&b, `<TR><TD COLSPAN="2" BGCOLOR="%s">Power Output</TD><TD>%s MW</TD></TR>`,
			color, factory.FormatAmount(output))
	}
	fmt.Fprintf(&b, `<TR><TD COLSPAN="2" BGCOLOR="%s">Net Power</TD><TD>%s MW</TD></TR>`,
		color, factory.FormatAmount(net))
	b.WriteString(`</TABLE>`)
	return b.String()
}
