package scenegraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Attribute keys of a node record.
const (
	KeyUUID            = "UUID"
	KeyID              = "id"
	KeyName            = "name"
	KeyNodeType        = "node_type"
	KeyColor           = "color"
	KeyPos             = "pos"
	KeyPosX            = "pos_x"
	KeyPosY            = "pos_y"
	KeyWidth           = "width"
	KeyHeight          = "height"
	KeyHeightCollapsed = "height_collapsed"
	KeyHeightExpanded  = "height_expanded"
	KeyExpanded        = "expanded"
	KeyEnabled         = "enabled"
	KeyInputs          = "inputs"
	KeyOutputs         = "outputs"
)

// Node defaults.
const (
	DefaultNodeName        = "node1"
	DefaultWidth           = 120
	DefaultHeight          = 175
	DefaultHeightCollapsed = 15
	DefaultHeightExpanded  = 175
)

// DefaultColor is the RGB color given to nodes whose type sets none.
var DefaultColor = []int{180, 180, 180}

// Node is a typed, named vertex of the graph. Values handed out by Graph
// are snapshots; changes go through Graph.UpdateNode and Graph.RenameNode.
type Node struct {
	ID              string
	Name            string
	Type            string
	Color           []int
	Pos             [2]float64
	Width           float64
	Height          float64
	HeightCollapsed float64
	HeightExpanded  float64
	Expanded        bool
	Enabled         bool
	Inputs          []Connection
	Outputs         []Connection

	// Extra holds attributes with no dedicated field, kept verbatim.
	Extra map[string]any
}

// Input returns the input connection point called name.
func (n *Node) Input(name string) (Connection, bool) {
	return findConnection(n.Inputs, name)
}

// Output returns the output connection point called name.
func (n *Node) Output(name string) (Connection, bool) {
	return findConnection(n.Outputs, name)
}

func findConnection(conns []Connection, name string) (Connection, bool) {
	for _, c := range conns {
		if c.Name == name {
			return c, true
		}
	}
	return Connection{}, false
}

// setID moves n and its connection points to a new identifier.
func (n *Node) setID(id string) {
	n.ID = id
	for i := range n.Inputs {
		n.Inputs[i].NodeID = id
	}
	for i := range n.Outputs {
		n.Outputs[i].NodeID = id
	}
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	c := *n
	c.Color = slices.Clone(n.Color)
	c.Inputs = slices.Clone(n.Inputs)
	c.Outputs = slices.Clone(n.Outputs)
	c.Extra = cloneExtra(n.Extra)
	return &c
}

// setAttrs applies attrs to n. Recognized keys set their field; the rest
// land in Extra. attrs is consumed.
func (n *Node) setAttrs(attrs Attrs) error {
	var err error
	for key, v := range attrs {
		switch key {
		case KeyColor:
			n.Color, err = toColor(key, v)
		case KeyPos:
			n.Pos, err = toPos(key, v)
		case KeyPosX:
			n.Pos[0], err = toFloat(key, v)
		case KeyPosY:
			n.Pos[1], err = toFloat(key, v)
		case KeyWidth:
			n.Width, err = toFloat(key, v)
		case KeyHeight:
			n.Height, err = toFloat(key, v)
		case KeyHeightCollapsed:
			n.HeightCollapsed, err = toFloat(key, v)
		case KeyHeightExpanded:
			n.HeightExpanded, err = toFloat(key, v)
		case KeyExpanded:
			n.Expanded, err = toBool(key, v)
		case KeyEnabled:
			n.Enabled, err = toBool(key, v)
		case KeyInputs:
			n.Inputs, err = toConnections(key, n.ID, Input, v)
		case KeyOutputs:
			n.Outputs, err = toConnections(key, n.ID, Output, v)
		default:
			if n.Extra == nil {
				n.Extra = make(map[string]any)
			}
			n.Extra[key] = cloneValue(v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Attrs returns every attribute of n keyed as in the JSON record.
func (n *Node) Attrs() Attrs {
	attrs := Attrs{
		KeyUUID:            n.ID,
		KeyName:            n.Name,
		KeyNodeType:        n.Type,
		KeyColor:           slices.Clone(n.Color),
		KeyPos:             []float64{n.Pos[0], n.Pos[1]},
		KeyWidth:           n.Width,
		KeyHeight:          n.Height,
		KeyHeightCollapsed: n.HeightCollapsed,
		KeyHeightExpanded:  n.HeightExpanded,
		KeyExpanded:        n.Expanded,
		KeyEnabled:         n.Enabled,
		KeyInputs:          slices.Clone(n.Inputs),
		KeyOutputs:         slices.Clone(n.Outputs),
	}
	for k, v := range n.Extra {
		attrs[k] = cloneValue(v)
	}
	return attrs
}

// MarshalJSON writes the node record with fixed fields first, in a stable
// order, followed by the extra attributes sorted by key.
func (n *Node) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.field(KeyUUID, n.ID)
	w.field(KeyName, n.Name)
	w.field(KeyNodeType, n.Type)
	w.field(KeyColor, n.Color)
	w.field(KeyPos, n.Pos)
	w.field(KeyWidth, n.Width)
	w.field(KeyHeight, n.Height)
	w.field(KeyHeightCollapsed, n.HeightCollapsed)
	w.field(KeyHeightExpanded, n.HeightExpanded)
	w.field(KeyExpanded, n.Expanded)
	w.field(KeyEnabled, n.Enabled)
	w.field(KeyInputs, nonNil(n.Inputs))
	w.field(KeyOutputs, nonNil(n.Outputs))
	for _, k := range slices.Sorted(maps.Keys(n.Extra)) {
		w.field(k, n.Extra[k])
	}
	return w.close()
}

func nonNil(c []Connection) []Connection {
	if c == nil {
		return []Connection{}
	}
	return c
}

// objectWriter emits a JSON object with keys in call order.
type objectWriter struct {
	buf bytes.Buffer
	n   int
	err error
}

func newObjectWriter() *objectWriter {
	w := &objectWriter{}
	w.buf.WriteByte('{')
	return w
}

func (w *objectWriter) field(key string, v any) {
	if w.err != nil {
		return
	}
	k, err := json.Marshal(key)
	if err != nil {
		w.err = err
		return
	}
	val, err := json.Marshal(v)
	if err != nil {
		w.err = fmt.Errorf("scenegraph: encode %s: %w", key, err)
		return
	}
	if w.n > 0 {
		w.buf.WriteByte(',')
	}
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(val)
	w.n++
}

func (w *objectWriter) close() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}

func cloneExtra(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneExtra(t)
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = cloneValue(x)
		}
		return out
	case Attrs:
		return Attrs(cloneExtra(t))
	case map[string]string:
		return maps.Clone(t)
	case []string:
		return slices.Clone(t)
	case []int:
		return slices.Clone(t)
	case []int64:
		return slices.Clone(t)
	case []float64:
		return slices.Clone(t)
	case []bool:
		return slices.Clone(t)
	case []Connection:
		return slices.Clone(t)
	}
	return v
}
