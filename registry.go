package scenegraph

import (
	"fmt"
	"slices"
	"sort"
)

// DefaultNodeType is the tag used when a record names no type, and the
// type that unknown tags fall back to.
const DefaultNodeType = "default"

// NodeType is the template a registry uses to build nodes of one tag.
type NodeType struct {
	Tag     string
	Color   []int
	Inputs  []string
	Outputs []string

	// Attrs are applied before the caller's attributes.
	Attrs Attrs
}

// Registry maps node-type tags to templates. It is filled once at startup
// and only read afterwards.
type Registry struct {
	types map[string]NodeType
}

// NewRegistry returns a registry holding the default node type.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]NodeType)}
	r.types[DefaultNodeType] = NodeType{
		Tag:     DefaultNodeType,
		Inputs:  []string{string(Input)},
		Outputs: []string{string(Output)},
	}
	return r
}

// Register adds or replaces the template for t.Tag.
func (r *Registry) Register(t NodeType) error {
	if t.Tag == "" {
		return fmt.Errorf("scenegraph: register node type: empty tag")
	}
	if t.Inputs == nil {
		t.Inputs = []string{string(Input)}
	}
	if t.Outputs == nil {
		t.Outputs = []string{string(Output)}
	}
	r.types[t.Tag] = t
	return nil
}

// Lookup returns the template registered for tag.
func (r *Registry) Lookup(tag string) (NodeType, bool) {
	t, ok := r.types[tag]
	return t, ok
}

// Tags lists registered tags in sorted order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.types))
	for tag := range r.types {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// resolve returns the template for tag, falling back to the default type.
func (r *Registry) resolve(tag string) (NodeType, bool) {
	if t, ok := r.types[tag]; ok {
		return t, true
	}
	return r.types[DefaultNodeType], false
}

// NewNode builds a node of type tag from attrs using r. The requested tag is
// kept on the node even when it falls back to the default template.
func (r *Registry) NewNode(tag string, attrs Attrs) (*Node, error) {
	if tag == "" {
		tag = DefaultNodeType
	}
	t, _ := r.resolve(tag)
	attrs = attrs.Clone()

	n := &Node{
		Type:            tag,
		Name:            DefaultNodeName,
		Color:           slices.Clone(DefaultColor),
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		HeightCollapsed: DefaultHeightCollapsed,
		HeightExpanded:  DefaultHeightExpanded,
		Enabled:         true,
	}
	if t.Color != nil {
		n.Color = slices.Clone(t.Color)
	}

	// UUID wins over id when both are present.
	for _, key := range []string{KeyID, KeyUUID} {
		if v, ok := attrs.pop(key); ok {
			id, err := toString(key, v)
			if err != nil {
				return nil, err
			}
			if id != "" {
				n.ID = id
			}
		}
	}
	if n.ID == "" {
		n.ID = NewIdentifier()
	}

	if v, ok := attrs.pop(KeyName); ok {
		name, err := toString(KeyName, v)
		if err != nil {
			return nil, err
		}
		if name != "" {
			n.Name = name
		}
	}
	attrs.pop(KeyNodeType)

	n.Inputs = defaultConnections(n.ID, Input, t.Inputs)
	n.Outputs = defaultConnections(n.ID, Output, t.Outputs)

	if err := n.setAttrs(t.Attrs.Clone()); err != nil {
		return nil, fmt.Errorf("scenegraph: node type %q defaults: %w", t.Tag, err)
	}
	if err := n.setAttrs(attrs); err != nil {
		return nil, err
	}
	return n, nil
}
