package scenegraph

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Attribute keys of a link record.
const (
	KeyEdgeID   = "id"
	KeySrcID    = "src_id"
	KeyDestID   = "dest_id"
	KeySrcAttr  = "src_attr"
	KeyDestAttr = "dest_attr"
)

// Edge is a directed link from an output connection point of one node to
// an input connection point of another.
type Edge struct {
	ID       string
	SrcID    string
	SrcAttr  string
	DestID   string
	DestAttr string

	Extra map[string]any
}

// Name returns "<srcId>.<srcAttr>,<destId>.<destAttr>".
func (e *Edge) Name() string {
	return FormatConnectionString(e.SrcID, e.SrcAttr) + "," + FormatConnectionString(e.DestID, e.DestAttr)
}

// Clone returns a deep copy of e.
func (e *Edge) Clone() *Edge {
	c := *e
	c.Extra = cloneExtra(e.Extra)
	return &c
}

// Attrs returns every attribute of e keyed as in the JSON record.
func (e *Edge) Attrs() Attrs {
	attrs := Attrs{
		KeyEdgeID:   e.ID,
		KeySrcID:    e.SrcID,
		KeyDestID:   e.DestID,
		KeySrcAttr:  e.SrcAttr,
		KeyDestAttr: e.DestAttr,
	}
	for k, v := range e.Extra {
		attrs[k] = cloneValue(v)
	}
	return attrs
}

// MarshalJSON writes the link record in a stable key order.
func (e *Edge) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.field(KeyEdgeID, e.ID)
	w.field(KeySrcID, e.SrcID)
	w.field(KeyDestID, e.DestID)
	w.field(KeySrcAttr, e.SrcAttr)
	w.field(KeyDestAttr, e.DestAttr)
	for _, k := range slices.Sorted(maps.Keys(e.Extra)) {
		w.field(k, e.Extra[k])
	}
	return w.close()
}

// Endpoint addresses one end of an edge. It is implemented by ConnString,
// *Node and Connection.
type Endpoint interface {
	resolve(g *Graph, dir Direction) (nodeID, conn string, err error)
}

// ConnString is a "nodeName.connectionName" endpoint.
type ConnString string

func (s ConnString) resolve(g *Graph, dir Direction) (string, string, error) {
	refs, err := g.connRefs(string(s), false)
	if err != nil {
		return "", "", err
	}
	// a dotted node name can shadow a shorter one; take the first split
	// whose connection point exists
	for _, r := range refs {
		if id, conn, err := checkConnection(r.node, dir, r.conn); err == nil {
			return id, conn, nil
		}
	}
	return checkConnection(refs[0].node, dir, refs[0].conn)
}

type connRef struct {
	node *Node
	conn string
}

// connRefs lists every way s splits into a live node and a connection name.
// Node names may contain '.', so each '.' is tried in turn. Nodes are matched
// by name, and also by identifier when byID is set.
func (g *Graph) connRefs(s string, byID bool) ([]connRef, error) {
	s = strings.TrimSpace(s)
	first, _, err := ParseConnectionString(s)
	if err != nil {
		return nil, err
	}
	var refs []connRef
	for i := 0; i < len(s); i++ {
		if s[i] != '.' || i == 0 || i == len(s)-1 {
			continue
		}
		var n *Node
		if byID {
			n = g.lookupNode(s[:i])
		} else if id, ok := g.names[s[:i]]; ok {
			n = g.nodes[id]
		}
		if n != nil {
			refs = append(refs, connRef{node: n, conn: s[i+1:]})
		}
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, first)
	}
	return refs, nil
}

// resolve defaults to the node's first output or first input.
func (n *Node) resolve(g *Graph, dir Direction) (string, string, error) {
	if n == nil {
		return "", "", fmt.Errorf("%w: nil node", ErrInvalidEndpoint)
	}
	live, ok := g.nodes[n.ID]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownNode, n.ID)
	}
	conns := live.Outputs
	if dir == Input {
		conns = live.Inputs
	}
	if len(conns) == 0 {
		return "", "", fmt.Errorf("%w: node %q has no %s", ErrUnresolvedEndpoint, live.Name, dir)
	}
	return live.ID, conns[0].Name, nil
}

func (c Connection) resolve(g *Graph, dir Direction) (string, string, error) {
	live, ok := g.nodes[c.NodeID]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownNode, c.NodeID)
	}
	return checkConnection(live, dir, c.Name)
}

func checkConnection(n *Node, dir Direction, conn string) (string, string, error) {
	find := n.Output
	if dir == Input {
		find = n.Input
	}
	if _, ok := find(conn); !ok {
		return "", "", fmt.Errorf("%w: %s %q on node %q", ErrUnresolvedEndpoint, dir, conn, n.Name)
	}
	return n.ID, conn, nil
}
