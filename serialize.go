package scenegraph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Document returns the node-link form of g.
func (g *Graph) Document() (*Document, error) {
	doc := &Document{
		Graph: g.meta.Pairs(),
		Nodes: make([]json.RawMessage, 0, len(g.nodeOrder)),
		Links: make([]json.RawMessage, 0, len(g.edgeOrder)),
	}
	for _, id := range g.nodeOrder {
		raw, err := g.nodes[id].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("scenegraph: encode node %q: %w", g.nodes[id].Name, err)
		}
		doc.Nodes = append(doc.Nodes, raw)
	}
	for _, id := range g.edgeOrder {
		raw, err := g.edges[id].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("scenegraph: encode edge %s: %w", id, err)
		}
		doc.Links = append(doc.Links, raw)
	}
	return doc, nil
}

// LoadDocument replaces the contents of g with doc. The document is built
// into a fresh graph first; if any record fails, g is left untouched.
func (g *Graph) LoadDocument(doc *Document) error {
	staged := New(WithRegistry(g.registry), WithLogger(g.logger), WithEnvironment(g.environment))
	for _, p := range doc.Graph {
		staged.meta.Set(p.Key, p.Value)
	}

	// file identifier -> staged identifier
	ids := make(map[string]string, len(doc.Nodes))
	for i, raw := range doc.Nodes {
		attrs, err := decodeRecord(raw)
		if err != nil {
			return fmt.Errorf("scenegraph: load node %d: %w", i, err)
		}
		tag := DefaultNodeType
		if v, ok := attrs.pop(KeyNodeType); ok {
			if s, _ := v.(string); s != "" {
				tag = s
			}
		}
		fileID, _ := attrs[KeyUUID].(string)
		if fileID == "" {
			fileID, _ = attrs[KeyID].(string)
		}

		n, err := staged.AddNode(tag, attrs)
		if err != nil {
			return fmt.Errorf("scenegraph: load node %d: %w: %w", i, ErrMalformedDocument, err)
		}
		// a repeated identifier keeps pointing at its first node
		if _, seen := ids[fileID]; fileID != "" && !seen {
			ids[fileID] = n.ID
		}
		g.logger.Debug("building node", "name", n.Name)
	}

	for i, raw := range doc.Links {
		attrs, err := decodeRecord(raw)
		if err != nil {
			return fmt.Errorf("scenegraph: load link %d: %w", i, err)
		}
		srcID, srcAttr, err := staged.recordEndpoint(attrs, ids, KeySrcID, KeySrcAttr, Output)
		if err != nil {
			return fmt.Errorf("scenegraph: load link %d: %w", i, err)
		}
		destID, destAttr, err := staged.recordEndpoint(attrs, ids, KeyDestID, KeyDestAttr, Input)
		if err != nil {
			return fmt.Errorf("scenegraph: load link %d: %w", i, err)
		}
		if _, err := staged.link(srcID, srcAttr, destID, destAttr, attrs); err != nil {
			return fmt.Errorf("scenegraph: load link %d: %w: %w", i, ErrMalformedDocument, err)
		}
	}

	g.install(staged)
	return nil
}

// recordEndpoint maps one side of a link record to a staged node and a
// connection name. Connection points are not checked: a node may have lost
// one since the edge was made.
func (g *Graph) recordEndpoint(attrs Attrs, ids map[string]string, idKey, attrKey string, dir Direction) (string, string, error) {
	fileID, err := toString(idKey, attrs[idKey])
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	n, ok := g.nodes[ids[fileID]]
	if !ok {
		return "", "", fmt.Errorf("%w: %s %q: %w", ErrMalformedDocument, idKey, fileID, ErrUnknownNode)
	}
	conn := string(dir)
	if v, ok := attrs[attrKey]; ok {
		if conn, err = toString(attrKey, v); err != nil {
			return "", "", fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
		if conn == "" {
			return "", "", fmt.Errorf("%w: %s is empty: %w", ErrMalformedDocument, attrKey, ErrInvalidEndpoint)
		}
	}
	if _, _, err := checkConnection(n, dir, conn); err != nil {
		g.logger.Warn("link to missing connection point", "node", n.Name, "connection", conn, "direction", dir)
	}
	return n.ID, conn, nil
}

// install swaps the contents of staged into g and mirrors them to the view.
func (g *Graph) install(staged *Graph) {
	g.Reset()
	g.nodes, g.edges, g.names = staged.nodes, staged.edges, staged.names
	g.out, g.in = staged.out, staged.in
	g.nodeOrder, g.edgeOrder = staged.nodeOrder, staged.edgeOrder
	g.meta = staged.meta

	if g.view == nil {
		return
	}
	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		geo, err := g.view.NodeAdded(*n.Clone())
		if err != nil {
			g.logger.Warn("view rejected node", "name", n.Name, "err", err)
			continue
		}
		_ = n.setAttrs(geo.attrs())
	}
	for _, id := range g.edgeOrder {
		if err := g.view.EdgeAdded(*g.edges[id].Clone()); err != nil {
			g.logger.Warn("view rejected edge", "edge", g.edges[id].Name(), "err", err)
		}
	}
}

// Encode writes g as an indented node-link document.
func (g *Graph) Encode(w io.Writer) error {
	doc, err := g.Document()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("scenegraph: encode: %w", err)
	}
	return nil
}

// Decode replaces the contents of g with the document read from r.
func (g *Graph) Decode(r io.Reader) error {
	doc, err := DecodeDocument(r)
	if err != nil {
		return err
	}
	return g.LoadDocument(doc)
}

// Write syncs geometry from the view and saves g to path. The scene
// metadata is set to path once the file is in place.
func (g *Graph) Write(path string) error {
	g.UpdateGraph()

	var buf bytes.Buffer
	if err := g.Encode(&buf); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("scenegraph: write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("scenegraph: write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("scenegraph: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("scenegraph: write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("scenegraph: write %s: %w", path, err)
	}

	g.SetScene(path)
	g.logger.Info("wrote scene", "path", path, "nodes", len(g.nodes), "edges", len(g.edges))
	return nil
}

// Read replaces the contents of g with the scene saved at path. A missing
// file returns ErrFileNotFound and leaves g as it was.
func (g *Graph) Read(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %w", ErrFileNotFound, err)
		}
		return fmt.Errorf("scenegraph: read %s: %w", path, err)
	}
	if err := g.Decode(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("scenegraph: read %s: %w", path, err)
	}

	g.SetScene(path)
	g.logger.Info("read scene", "path", path, "nodes", len(g.nodes), "edges", len(g.edges))
	return nil
}

// String renders g as a node-link document.
func (g *Graph) String() string {
	var buf bytes.Buffer
	if err := g.Encode(&buf); err != nil {
		return fmt.Sprintf("<scenegraph: %v>", err)
	}
	return buf.String()
}
