package scenegraph

// Geometry is the placement a view reports for a node.
type Geometry struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (g Geometry) attrs() Attrs {
	return Attrs{KeyPosX: g.X, KeyPosY: g.Y, KeyWidth: g.Width, KeyHeight: g.Height}
}

// View mirrors graph state into widgets. The graph notifies it of every
// structural change but never depends on it: errors are logged and the
// graph keeps the authoritative state.
type View interface {
	// NodeAdded creates a widget for n and reports where it was placed.
	NodeAdded(n Node) (Geometry, error)
	EdgeAdded(e Edge) error
	// NodeUpdated is called after a rename or attribute change.
	NodeUpdated(n Node)
	NodeRemoved(id string)
	EdgeRemoved(id string)

	// Geometry reports the current placement of a node widget.
	Geometry(id string) (Geometry, bool)

	// Clear drops every widget.
	Clear()
}
