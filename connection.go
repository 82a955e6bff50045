package scenegraph

import (
	"fmt"
	"strings"
)

// Direction tells whether a connection point receives or emits.
type Direction string

const (
	Input  Direction = "input"
	Output Direction = "output"
)

// Connection is a named attachment point on a node. NodeID refers back to
// the owning node by identifier.
type Connection struct {
	Name      string    `json:"name"`
	NodeID    string    `json:"node"`
	Direction Direction `json:"type"`
}

// String returns the connection in "<nodeID>.<name>" form.
func (c Connection) String() string {
	return FormatConnectionString(c.NodeID, c.Name)
}

// ParseConnectionString splits "node.connection" on the first '.'.
func ParseConnectionString(s string) (node, conn string, err error) {
	node, conn, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok || node == "" || conn == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidEndpoint, s)
	}
	return node, conn, nil
}

// FormatConnectionString joins a node and connection name with '.'.
func FormatConnectionString(node, conn string) string {
	return node + "." + conn
}

func defaultConnections(nodeID string, dir Direction, names []string) []Connection {
	conns := make([]Connection, len(names))
	for i, name := range names {
		conns[i] = Connection{Name: name, NodeID: nodeID, Direction: dir}
	}
	return conns
}

// toConnections reads an inputs/outputs override. Elements may be
// Connection values, bare names, or decoded JSON objects.
func toConnections(key, nodeID string, dir Direction, v any) ([]Connection, error) {
	var items []any
	switch l := v.(type) {
	case []Connection:
		items = make([]any, len(l))
		for i, c := range l {
			items[i] = c
		}
	case []string:
		items = make([]any, len(l))
		for i, s := range l {
			items[i] = s
		}
	default:
		var err error
		if items, err = toList(key, v); err != nil {
			return nil, err
		}
	}

	conns := make([]Connection, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		var name string
		switch c := item.(type) {
		case Connection:
			name = c.Name
		case string:
			name = c
		case map[string]any:
			s, err := toString(key, c["name"])
			if err != nil {
				return nil, err
			}
			name = s
		default:
			return nil, fmt.Errorf("%w: %s entries must be connections, got %T", ErrInvalidAttribute, key, item)
		}
		if name == "" {
			return nil, fmt.Errorf("%w: %s entry without a name", ErrInvalidAttribute, key)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate %s %q", ErrInvalidAttribute, key, name)
		}
		seen[name] = true
		conns = append(conns, Connection{Name: name, NodeID: nodeID, Direction: dir})
	}
	return conns, nil
}
