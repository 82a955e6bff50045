package scenegraph

// Snapshot is the attribute set of one node or edge at evaluation time.
type Snapshot struct {
	Kind  string
	ID    string
	Attrs Attrs
}

// Snapshot kinds.
const (
	KindNode = "node"
	KindEdge = "edge"
)

// Evaluate walks every node and then every edge and returns their
// attributes. It does not execute anything and does not mutate g.
func (g *Graph) Evaluate() []Snapshot {
	snaps := make([]Snapshot, 0, len(g.nodeOrder)+len(g.edgeOrder))
	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		snaps = append(snaps, Snapshot{Kind: KindNode, ID: id, Attrs: n.Attrs()})
		g.logger.Debug("evaluate node", "name", n.Name, "id", id)
	}
	for _, id := range g.edgeOrder {
		e := g.edges[id]
		snaps = append(snaps, Snapshot{Kind: KindEdge, ID: id, Attrs: e.Attrs()})
		g.logger.Debug("evaluate edge", "edge", e.Name(), "id", id)
	}
	return snaps
}
