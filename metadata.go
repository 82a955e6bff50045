package scenegraph

import (
	"encoding/json"
	"fmt"
)

// Graph-level metadata keys.
const (
	MetaVersion     = "version"
	MetaScene       = "scene"
	MetaEnvironment = "environment"
)

// Version is written to the version metadata of new graphs.
const Version = "0.1.0"

// DefaultEnvironment is the environment tag of a headless graph.
const DefaultEnvironment = "command_line"

// Pair is one graph-level key/value entry. It encodes as [key, value].
type Pair struct {
	Key   string
	Value any
}

func (p Pair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Key, p.Value})
}

func (p *Pair) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: graph entry: %v", ErrMalformedDocument, err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("%w: graph entry has %d elements, want 2", ErrMalformedDocument, len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Key); err != nil {
		return fmt.Errorf("%w: graph entry key: %v", ErrMalformedDocument, err)
	}
	return unmarshalNumber(raw[1], &p.Value)
}

// Metadata is an ordered string-keyed map.
type Metadata struct {
	keys   []string
	values map[string]any
}

func newMetadata(environment string) *Metadata {
	m := &Metadata{values: make(map[string]any)}
	m.Set(MetaVersion, Version)
	m.Set(MetaScene, nil)
	m.Set(MetaEnvironment, environment)
	return m
}

// Get returns the value stored under key.
func (m *Metadata) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return cloneValue(v), ok
}

// Set stores value under key, keeping the key's original position.
func (m *Metadata) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = cloneValue(value)
}

// Pairs returns the entries in insertion order.
func (m *Metadata) Pairs() []Pair {
	pairs := make([]Pair, len(m.keys))
	for i, k := range m.keys {
		pairs[i] = Pair{Key: k, Value: cloneValue(m.values[k])}
	}
	return pairs
}
