package scenegraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Document is the node-link form of a graph: graph-level pairs, one record
// per node and one record per edge. Records are kept as raw JSON so their
// key order and number literals survive a store/load cycle untouched.
type Document struct {
	Graph []Pair            `json:"graph"`
	Nodes []json.RawMessage `json:"nodes"`
	Links []json.RawMessage `json:"links"`
}

// DecodeDocument parses a node-link document from r. All three top-level
// members must be present and must be arrays.
func DecodeDocument(r io.Reader) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: document is null", ErrMalformedDocument)
	}
	for _, key := range []string{"graph", "nodes", "links"} {
		raw, ok := top[key]
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrMalformedDocument, key)
		}
		if !isArray(raw) {
			return nil, fmt.Errorf("%w: %q is not a list", ErrMalformedDocument, key)
		}
	}

	doc := &Document{}
	if err := json.Unmarshal(top["graph"], &doc.Graph); err != nil {
		return nil, fmt.Errorf("%w: graph: %v", ErrMalformedDocument, err)
	}
	if err := json.Unmarshal(top["nodes"], &doc.Nodes); err != nil {
		return nil, fmt.Errorf("%w: nodes: %v", ErrMalformedDocument, err)
	}
	if err := json.Unmarshal(top["links"], &doc.Links); err != nil {
		return nil, fmt.Errorf("%w: links: %v", ErrMalformedDocument, err)
	}
	return doc, nil
}

func isArray(raw json.RawMessage) bool {
	b := bytes.TrimSpace(raw)
	return len(b) > 0 && b[0] == '['
}

// decodeRecord parses one node or link record, keeping numbers as
// json.Number.
func decodeRecord(raw json.RawMessage) (Attrs, error) {
	var attrs map[string]any
	if err := unmarshalNumber(raw, &attrs); err != nil {
		return nil, err
	}
	if attrs == nil {
		return nil, fmt.Errorf("%w: record is not an object", ErrMalformedDocument)
	}
	return attrs, nil
}

func unmarshalNumber(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return nil
}
