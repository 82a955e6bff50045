package scenegraph

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
)

// State is the coarse state of a Graph.
type State int

const (
	Empty State = iota
	Populated
)

func (s State) String() string {
	if s == Populated {
		return "populated"
	}
	return "empty"
}

// Graph owns every node and edge of a scene. It keeps the name index, the
// attribute store and the adjacency relation consistent inside each
// mutating call.
//
// A Graph is not safe for concurrent use. Callers sharing one across
// goroutines must serialize every call.
type Graph struct {
	nodes map[string]*Node
	edges map[string]*Edge
	names map[string]string

	// adjacency: node id -> set of edge ids
	out map[string]map[string]struct{}
	in  map[string]map[string]struct{}

	nodeOrder []string
	edgeOrder []string
	meta      *Metadata

	registry    *Registry
	view        View
	logger      *slog.Logger
	environment string

	copied []*Node
}

// Option configures a Graph.
type Option func(*Graph)

// WithRegistry sets the node-type registry. The default holds only the
// "default" type.
func WithRegistry(r *Registry) Option {
	return func(g *Graph) { g.registry = r }
}

// WithView attaches a view collaborator.
func WithView(v View) Option {
	return func(g *Graph) { g.view = v }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(g *Graph) { g.logger = l }
}

// WithEnvironment sets the environment metadata written by Reset.
func WithEnvironment(env string) Option {
	return func(g *Graph) { g.environment = env }
}

// New returns an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		registry:    NewRegistry(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		environment: DefaultEnvironment,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.clear()
	return g
}

func (g *Graph) clear() {
	g.nodes = make(map[string]*Node)
	g.edges = make(map[string]*Edge)
	g.names = make(map[string]string)
	g.out = make(map[string]map[string]struct{})
	g.in = make(map[string]map[string]struct{})
	g.nodeOrder = nil
	g.edgeOrder = nil
	g.meta = newMetadata(g.environment)
}

// Reset removes all nodes and edges and restores default metadata.
func (g *Graph) Reset() {
	g.clear()
	g.copied = nil
	if g.view != nil {
		g.view.Clear()
	}
	g.logger.Info("graph reset")
}

// State reports whether the graph holds any node or edge.
func (g *Graph) State() State {
	if len(g.nodes) == 0 && len(g.edges) == 0 {
		return Empty
	}
	return Populated
}

// Registry returns the node-type registry used by g.
func (g *Graph) Registry() *Registry {
	return g.registry
}

// Meta returns a graph-level metadata value.
func (g *Graph) Meta(key string) (any, bool) {
	return g.meta.Get(key)
}

// SetMeta stores a graph-level metadata value.
func (g *Graph) SetMeta(key string, value any) {
	g.meta.Set(key, value)
}

// MetaPairs returns graph-level metadata in insertion order.
func (g *Graph) MetaPairs() []Pair {
	return g.meta.Pairs()
}

// Scene returns the scene file the graph was last read from or written to.
func (g *Graph) Scene() string {
	v, _ := g.meta.Get(MetaScene)
	s, _ := v.(string)
	return s
}

// SetScene sets the scene metadata and returns it.
func (g *Graph) SetScene(scene string) string {
	g.meta.Set(MetaScene, scene)
	return scene
}

// IsNameUnique reports whether no live node is called name.
func (g *Graph) IsNameUnique(name string) bool {
	_, taken := g.names[name]
	return !taken
}

// Disambiguate returns name, or a derived name no live node uses.
func (g *Graph) Disambiguate(name string) (string, error) {
	return Disambiguate(name, func(s string) bool { return !g.IsNameUnique(s) })
}

func (g *Graph) idInUse(id string) bool {
	_, isNode := g.nodes[id]
	_, isEdge := g.edges[id]
	return isNode || isEdge
}

// AddNode creates a node of nodeType from attrs. A name already in use is
// replaced with a disambiguated one and an identifier already in use is
// regenerated.
func (g *Graph) AddNode(nodeType string, attrs Attrs) (*Node, error) {
	n, err := g.registry.NewNode(nodeType, attrs)
	if err != nil {
		return nil, fmt.Errorf("scenegraph: add node: %w", err)
	}
	if _, known := g.registry.Lookup(n.Type); !known {
		g.logger.Debug("unknown node type, using default", "type", n.Type)
	}
	if g.idInUse(n.ID) {
		g.logger.Warn("node identifier already in use, regenerating", "id", n.ID, "name", n.Name)
		n.setID(NewIdentifier())
	}
	if !g.IsNameUnique(n.Name) {
		name, err := g.Disambiguate(n.Name)
		if err != nil {
			return nil, fmt.Errorf("scenegraph: add node: %w", err)
		}
		n.Name = name
	}

	g.nodes[n.ID] = n
	g.names[n.Name] = n.ID
	g.out[n.ID] = make(map[string]struct{})
	g.in[n.ID] = make(map[string]struct{})
	g.nodeOrder = append(g.nodeOrder, n.ID)

	if g.view != nil {
		geo, err := g.view.NodeAdded(*n.Clone())
		if err != nil {
			g.logger.Warn("view rejected node", "name", n.Name, "err", err)
		} else {
			// geometry values are plain floats and cannot fail
			_ = n.setAttrs(geo.attrs())
		}
	}

	g.logger.Info("added node", "name", n.Name, "type", n.Type, "id", n.ID)
	return n.Clone(), nil
}

// AddEdge connects two "node.connection" strings, src being an output and
// dest an input. attrs may carry an "id"; other keys are kept as extras.
func (g *Graph) AddEdge(src, dest string, attrs Attrs) (*Edge, error) {
	if src == "" || dest == "" {
		return nil, fmt.Errorf("scenegraph: add edge: %w: empty endpoint", ErrInvalidEndpoint)
	}
	return g.Connect(ConnString(src), ConnString(dest), attrs)
}

// Connect links src to dest. Parallel edges between the same pair of nodes
// are independent of each other.
func (g *Graph) Connect(src, dest Endpoint, attrs Attrs) (*Edge, error) {
	if src == nil || dest == nil {
		return nil, fmt.Errorf("scenegraph: add edge: %w: missing endpoint", ErrInvalidEndpoint)
	}
	srcID, srcAttr, err := src.resolve(g, Output)
	if err != nil {
		return nil, fmt.Errorf("scenegraph: add edge: source: %w", err)
	}
	destID, destAttr, err := dest.resolve(g, Input)
	if err != nil {
		return nil, fmt.Errorf("scenegraph: add edge: destination: %w", err)
	}
	return g.link(srcID, srcAttr, destID, destAttr, attrs)
}

// link records an edge between two live nodes. The connection names are
// taken as given; only Connect checks them against the nodes.
func (g *Graph) link(srcID, srcAttr, destID, destAttr string, attrs Attrs) (*Edge, error) {
	attrs = attrs.Clone()
	e := &Edge{SrcID: srcID, SrcAttr: srcAttr, DestID: destID, DestAttr: destAttr}
	if v, ok := attrs.pop(KeyEdgeID); ok {
		id, err := toString(KeyEdgeID, v)
		if err != nil {
			return nil, fmt.Errorf("scenegraph: add edge: %w", err)
		}
		e.ID = id
	}
	if e.ID == "" || g.idInUse(e.ID) {
		e.ID = NewIdentifier()
	}
	for _, k := range []string{KeySrcID, KeyDestID, KeySrcAttr, KeyDestAttr} {
		delete(attrs, k)
	}
	if len(attrs) > 0 {
		e.Extra = cloneExtra(attrs)
	}

	g.edges[e.ID] = e
	g.out[srcID][e.ID] = struct{}{}
	g.in[destID][e.ID] = struct{}{}
	g.edgeOrder = append(g.edgeOrder, e.ID)

	if g.view != nil {
		if err := g.view.EdgeAdded(*e.Clone()); err != nil {
			g.logger.Warn("view rejected edge", "edge", e.Name(), "err", err)
		}
	}

	g.logger.Info("added edge", "edge", e.Name(), "id", e.ID)
	return e.Clone(), nil
}

// RemoveNode removes the node called name and every edge touching it.
// It reports false when no node has that name.
func (g *Graph) RemoveNode(name string) bool {
	id, ok := g.names[name]
	if !ok {
		return false
	}
	for _, edgeID := range g.incident(id) {
		g.removeEdge(edgeID)
	}

	delete(g.nodes, id)
	delete(g.names, name)
	delete(g.out, id)
	delete(g.in, id)
	g.nodeOrder = slices.DeleteFunc(g.nodeOrder, func(s string) bool { return s == id })

	if g.view != nil {
		g.view.NodeRemoved(id)
	}
	g.logger.Info("removed node", "name", name, "id", id)
	return true
}

// incident returns the edges touching a node, in insertion order.
func (g *Graph) incident(id string) []string {
	var ids []string
	for _, edgeID := range g.edgeOrder {
		_, isOut := g.out[id][edgeID]
		_, isIn := g.in[id][edgeID]
		if isOut || isIn {
			ids = append(ids, edgeID)
		}
	}
	return ids
}

// RemoveEdge removes an edge given its identifier or its connection string
// ("a.output,b.input", by node name or identifier). It reports false when
// nothing matches.
func (g *Graph) RemoveEdge(ref string) bool {
	id := ref
	if _, ok := g.edges[id]; !ok {
		if id = g.EdgeID(ref); id == "" {
			return false
		}
	}
	g.removeEdge(id)
	return true
}

func (g *Graph) removeEdge(id string) {
	e := g.edges[id]
	delete(g.edges, id)
	delete(g.out[e.SrcID], id)
	delete(g.in[e.DestID], id)
	g.edgeOrder = slices.DeleteFunc(g.edgeOrder, func(s string) bool { return s == id })

	if g.view != nil {
		g.view.EdgeRemoved(id)
	}
	g.logger.Info("removed edge", "edge", e.Name(), "id", id)
}

// RenameNode gives the node called oldName the name newName.
func (g *Graph) RenameNode(oldName, newName string) (*Node, error) {
	if newName == "" {
		return nil, fmt.Errorf("scenegraph: rename %q: %w", oldName, ErrEmptyName)
	}
	id, ok := g.names[oldName]
	if !ok {
		return nil, fmt.Errorf("scenegraph: rename %q: %w", oldName, ErrUnknownNode)
	}
	if other, taken := g.names[newName]; taken {
		if other == id {
			return g.nodes[id].Clone(), nil
		}
		return nil, fmt.Errorf("scenegraph: rename %q: %w: %q", oldName, ErrNameCollision, newName)
	}

	n := g.nodes[id]
	delete(g.names, oldName)
	g.names[newName] = id
	n.Name = newName

	if g.view != nil {
		g.view.NodeUpdated(*n.Clone())
	}
	g.logger.Info("renamed node", "from", oldName, "to", newName, "id", id)
	return n.Clone(), nil
}

// UpdateNode applies attrs to the node named or identified by ref. A "name"
// attribute renames the node; UUID and node_type cannot change.
func (g *Graph) UpdateNode(ref string, attrs Attrs) (*Node, error) {
	cur := g.lookupNode(ref)
	if cur == nil {
		return nil, fmt.Errorf("scenegraph: update %q: %w", ref, ErrUnknownNode)
	}

	attrs = attrs.Clone()
	for key, want := range map[string]string{KeyUUID: cur.ID, KeyID: cur.ID, KeyNodeType: cur.Type} {
		v, ok := attrs.pop(key)
		if !ok {
			continue
		}
		if s, err := toString(key, v); err != nil || s != want {
			return nil, fmt.Errorf("scenegraph: update %q: %w: %s", ref, ErrImmutableAttribute, key)
		}
	}

	newName := cur.Name
	if v, ok := attrs.pop(KeyName); ok {
		s, err := toString(KeyName, v)
		if err != nil {
			return nil, fmt.Errorf("scenegraph: update %q: %w", ref, err)
		}
		if s == "" {
			return nil, fmt.Errorf("scenegraph: update %q: %w", ref, ErrEmptyName)
		}
		if other, taken := g.names[s]; taken && other != cur.ID {
			return nil, fmt.Errorf("scenegraph: update %q: %w: %q", ref, ErrNameCollision, s)
		}
		newName = s
	}

	n := cur.Clone()
	if err := n.setAttrs(attrs); err != nil {
		return nil, fmt.Errorf("scenegraph: update %q: %w", ref, err)
	}
	n.Name = newName

	delete(g.names, cur.Name)
	g.names[n.Name] = n.ID
	g.nodes[n.ID] = n

	if g.view != nil {
		g.view.NodeUpdated(*n.Clone())
	}
	g.logger.Info("updated node", "name", n.Name, "id", n.ID)
	return n.Clone(), nil
}

func (g *Graph) lookupNode(ref string) *Node {
	if id, ok := g.names[ref]; ok {
		return g.nodes[id]
	}
	return g.nodes[ref]
}

// Node returns the node with identifier or name ref.
func (g *Graph) Node(ref string) (*Node, bool) {
	n := g.lookupNode(ref)
	if n == nil {
		return nil, false
	}
	return n.Clone(), true
}

// NodeID returns the identifier of the node called name, or "".
func (g *Graph) NodeID(name string) string {
	return g.names[name]
}

// Edge returns the edge with identifier ref, or the first edge matching the
// connection string ref.
func (g *Graph) Edge(ref string) (*Edge, bool) {
	e, ok := g.edges[ref]
	if !ok {
		if e, ok = g.edges[g.EdgeID(ref)]; !ok {
			return nil, false
		}
	}
	return e.Clone(), true
}

// EdgeID returns the identifier of the first edge matching conn, given as
// "src.attr,dest.attr" where src and dest are node names or identifiers.
// It returns "" when nothing matches.
func (g *Graph) EdgeID(conn string) string {
	// node names may contain ',' as well, so every split is tried
	for i := 0; i < len(conn); i++ {
		if conn[i] != ',' {
			continue
		}
		srcs, err := g.connRefs(conn[:i], true)
		if err != nil {
			continue
		}
		dests, err := g.connRefs(conn[i+1:], true)
		if err != nil {
			continue
		}
		for _, id := range g.edgeOrder {
			e := g.edges[id]
			for _, src := range srcs {
				for _, dest := range dests {
					if e.SrcID == src.node.ID && e.SrcAttr == src.conn &&
						e.DestID == dest.node.ID && e.DestAttr == dest.conn {
						return id
					}
				}
			}
		}
	}
	return ""
}

// Nodes returns snapshots of every node in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.nodeOrder))
	for i, id := range g.nodeOrder {
		nodes[i] = g.nodes[id].Clone()
	}
	return nodes
}

// NodeNames returns the names of every node in insertion order.
func (g *Graph) NodeNames() []string {
	names := make([]string, len(g.nodeOrder))
	for i, id := range g.nodeOrder {
		names[i] = g.nodes[id].Name
	}
	return names
}

// Edges returns snapshots of every edge in insertion order.
func (g *Graph) Edges() []*Edge {
	edges := make([]*Edge, len(g.edgeOrder))
	for i, id := range g.edgeOrder {
		edges[i] = g.edges[id].Clone()
	}
	return edges
}

// OutgoingEdges returns the edges leaving the node ref.
func (g *Graph) OutgoingEdges(ref string) []*Edge {
	return g.adjacent(ref, g.out)
}

// IncomingEdges returns the edges entering the node ref.
func (g *Graph) IncomingEdges(ref string) []*Edge {
	return g.adjacent(ref, g.in)
}

func (g *Graph) adjacent(ref string, adj map[string]map[string]struct{}) []*Edge {
	n := g.lookupNode(ref)
	if n == nil {
		return nil
	}
	var edges []*Edge
	for _, id := range g.edgeOrder {
		if _, ok := adj[n.ID][id]; ok {
			edges = append(edges, g.edges[id].Clone())
		}
	}
	return edges
}

// UpdateGraph pulls node geometry from the attached view. It reports false
// when running headless.
func (g *Graph) UpdateGraph() bool {
	if g.view == nil {
		return false
	}
	for _, id := range g.nodeOrder {
		if geo, ok := g.view.Geometry(id); ok {
			_ = g.nodes[id].setAttrs(geo.attrs())
		}
	}
	return true
}

// CopyNodes fills the copy buffer with the named nodes.
func (g *Graph) CopyNodes(names ...string) error {
	copied := make([]*Node, 0, len(names))
	for _, name := range names {
		n := g.lookupNode(name)
		if n == nil {
			return fmt.Errorf("scenegraph: copy %q: %w", name, ErrUnknownNode)
		}
		copied = append(copied, n.Clone())
	}
	g.copied = copied
	return nil
}

// PasteOffset is how far pasted nodes are moved from their originals.
const PasteOffset = 25

// PasteNodes adds a copy of every node in the copy buffer under a fresh
// name and identifier, offset by PasteOffset.
func (g *Graph) PasteNodes() ([]*Node, error) {
	pasted := make([]*Node, 0, len(g.copied))
	for _, src := range g.copied {
		attrs := src.Attrs()
		delete(attrs, KeyUUID)
		attrs[KeyPos] = []float64{src.Pos[0] + PasteOffset, src.Pos[1] + PasteOffset}
		n, err := g.AddNode(src.Type, attrs)
		if err != nil {
			return pasted, fmt.Errorf("scenegraph: paste %q: %w", src.Name, err)
		}
		pasted = append(pasted, n)
	}
	return pasted, nil
}
