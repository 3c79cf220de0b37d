package observ

import (
	"fmt"
	"io"

	"github.com/emicklei/dot"

	"github.com/vmkit/pea/core"
)

// DumpCFG renders g's control-flow graph as Graphviz, one node per basic
// block labeled with its instruction count and reverse-postorder index.
func DumpCFG(w io.Writer, g *core.Graph) error {
	dg := dot.NewGraph(dot.Directed)
	dg.Attr("rankdir", "TB")

	nodes := make(map[core.BlockID]dot.Node)
	for _, b := range g.Blocks {
		label := fmt.Sprintf("bb%d\\n%d instrs\\nrpo=%d", b.ID, len(b.Instrs), b.RPOIndex())
		nodes[b.ID] = dg.Node(fmt.Sprintf("bb%d", b.ID)).Label(label).Attr("shape", "box")
	}
	for _, b := range g.Blocks {
		for _, s := range b.Succs {
			dg.Edge(nodes[b.ID], nodes[s.ID])
		}
	}

	_, err := io.WriteString(w, dg.String())
	return err
}

// DumpEscapeDAG renders the escape-dependency DAG among a graph's tracked
// allocations: one node per allocation, one edge per "must remain
// replaceable for" dependency, with Irreplaceable allocations shaded.
func DumpEscapeDAG(w io.Writer, g *core.Graph) error {
	dg := dot.NewGraph(dot.Directed)

	nodes := make(map[int]dot.Node)
	for _, a := range g.Allocations {
		label := fmt.Sprintf("alloc%d\\ntype=%d", a.Index, a.StableType)
		n := dg.Node(fmt.Sprintf("a%d", a.Index)).Label(label)
		if a.Irreplaceable {
			n = n.Attr("style", "filled").Attr("fillcolor", "lightgray")
		}
		nodes[a.Index] = n
	}
	for _, a := range g.Allocations {
		for _, dep := range a.EscapeDeps {
			if target, ok := nodes[dep]; ok {
				dg.Edge(nodes[a.Index], target)
			}
		}
	}

	_, err := io.WriteString(w, dg.String())
	return err
}
