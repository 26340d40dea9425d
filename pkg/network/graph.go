package network

import "fmt"

// Graph is the built hydrogen network. Nodes and edges keep insertion order;
// adjacency lists hold indexes into the edge slice. The graph is never
// mutated after Build returns.
type Graph struct {
	nodes []*Node
	edges []*Edge

	nodeIndex map[string]int
	edgeIndex map[string]int
	out       map[string][]int
	in        map[string][]int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[string]int),
		out:       make(map[string][]int),
		in:        make(map[string][]int),
	}
}

// AddNode inserts a node. Node IDs are unique across the whole graph; a
// collision is an internal defect, not a user error.
func (g *Graph) AddNode(n *Node) error {
	if _, ok := g.nodeIndex[n.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}
	g.nodeIndex[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	return nil
}

// AddEdge inserts a directed edge. Both endpoints must already exist and at
// most one edge may connect an ordered pair.
func (g *Graph) AddEdge(e *Edge) error {
	if _, ok := g.nodeIndex[e.From]; !ok {
		return fmt.Errorf("%w: edge source %s", ErrNodeNotFound, e.From)
	}
	if _, ok := g.nodeIndex[e.To]; !ok {
		return fmt.Errorf("%w: edge target %s", ErrNodeNotFound, e.To)
	}
	key := e.Key()
	if _, ok := g.edgeIndex[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEdge, key)
	}
	idx := len(g.edges)
	g.edgeIndex[key] = idx
	g.edges = append(g.edges, e)
	g.out[e.From] = append(g.out[e.From], idx)
	g.in[e.To] = append(g.in[e.To], idx)
	return nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Edge returns the edge for an ordered node pair.
func (g *Graph) Edge(from, to string) (*Edge, bool) {
	i, ok := g.edgeIndex[from+"->"+to]
	if !ok {
		return nil, false
	}
	return g.edges[i], true
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge { return g.edges }

// OutEdges returns the edges leaving a node, in insertion order.
func (g *Graph) OutEdges(id string) []*Edge {
	idxs := g.out[id]
	edges := make([]*Edge, len(idxs))
	for i, idx := range idxs {
		edges[i] = g.edges[idx]
	}
	return edges
}

// InEdges returns the edges entering a node, in insertion order.
func (g *Graph) InEdges(id string) []*Edge {
	idxs := g.in[id]
	edges := make([]*Edge, len(idxs))
	for i, idx := range idxs {
		edges[i] = g.edges[idx]
	}
	return edges
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumEdges returns the edge count.
func (g *Graph) NumEdges() int { return len(g.edges) }
