package interaction

import (
	"bufio"
	"fmt"
	"io"
)

// Graph is the reachable structure of a flow from some root. Nodes are shared:
// a step reached twice, or through a cycle, appears once.
type Graph struct {
	ID         StepID
	Name       string
	Executable bool
	Next       []*Graph
}

// Graph builds the structure reachable from root. Edges keep the order of
// the step's actions.
func (f *Flow) Graph(root StepID) (*Graph, error) {
	start, ok := f.Get(root)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStep, root)
	}

	visited := make(map[string]*Graph)
	node := func(s *Step) (*Graph, bool) {
		if g, ok := visited[s.name]; ok {
			return g, false
		}
		g := &Graph{ID: s.id, Name: s.name, Executable: s.Executable()}
		visited[s.name] = g
		return g, true
	}

	top, _ := node(start)
	stack := []*Step{start}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		g := visited[s.name]
		for _, a := range s.actions {
			target, ok := f.Get(a.Target)
			if !ok {
				return nil, fmt.Errorf("%w: %d (from %q)", ErrUnknownStep, a.Target, s.name)
			}
			child, fresh := node(target)
			g.Next = append(g.Next, child)
			if fresh {
				stack = append(stack, target)
			}
		}
	}
	return top, nil
}

// Walk visits every node once, depth first, in edge order.
func (g *Graph) Walk(fn func(*Graph)) {
	seen := make(map[*Graph]bool)
	var visit func(*Graph)
	visit = func(n *Graph) {
		if seen[n] {
			return
		}
		seen[n] = true
		fn(n)
		for _, c := range n.Next {
			visit(c)
		}
	}
	visit(g)
}

// Size returns the number of distinct nodes.
func (g *Graph) Size() int {
	n := 0
	g.Walk(func(*Graph) { n++ })
	return n
}

// WriteDOT renders the graph in Graphviz format.
func (g *Graph) WriteDOT(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph flow {")
	g.Walk(func(n *Graph) {
		shape := "ellipse"
		switch {
		case n.ID == End:
			shape = "doublecircle"
		case n.Executable:
			shape = "box"
		}
		fmt.Fprintf(bw, "  %q [shape=%s];\n", n.Name, shape)
	})
	g.Walk(func(n *Graph) {
		for _, c := range n.Next {
			fmt.Fprintf(bw, "  %q -> %q;\n", n.Name, c.Name)
		}
	})
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}
