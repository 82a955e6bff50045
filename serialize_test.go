package scenegraph

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph(t *testing.T) *Graph {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.Register(NodeType{Tag: "merge", Inputs: []string{"a", "b"}}))

	g := New(WithRegistry(r))
	mustNode(t, g, "reader")
	_, err := g.AddNode("merge", Attrs{"name": "merge", "pos": []float64{120.5, -3}, "mode": "add"})
	require.NoError(t, err)
	mustNode(t, g, "writer")
	mustEdge(t, g, "reader.output", "merge.a")
	mustEdge(t, g, "reader.output", "merge.b")
	_, err = g.AddEdge("merge.output", "writer.input", Attrs{"label": "final"})
	require.NoError(t, err)
	return g
}

func encode(t *testing.T, g *Graph) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, g.Encode(&buf))
	return buf.String()
}

func TestWriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	g := sampleGraph(t)
	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, g.Write(path))
	assert.Equal(t, path, g.Scene())

	loaded := New(WithRegistry(g.Registry()))
	require.NoError(t, loaded.Read(path))
	assert.Equal(t, path, loaded.Scene())

	if diff := cmp.Diff(encode(t, g), encode(t, loaded)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, g.NodeNames(), loaded.NodeNames())
	assert.NotEmpty(t, loaded.EdgeID("merge.output,writer.input"))

	merge, ok := loaded.Node("merge")
	require.True(t, ok)
	assert.Equal(t, "merge", merge.Type)
	assert.Equal(t, [2]float64{120.5, -3}, merge.Pos)
	assert.Len(t, merge.Inputs, 2)
}

func TestWriteFileLayout(t *testing.T) {
	t.Parallel()

	g := sampleGraph(t)
	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, g.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &top))
	assert.Len(t, top, 3)
	assert.Contains(t, string(data), "\n    \"graph\": [")
	assert.Contains(t, string(data), `"version",`)

	var links []map[string]any
	require.NoError(t, json.Unmarshal(top["links"], &links))
	require.Len(t, links, 3)
	for _, l := range links {
		for _, key := range []string{"id", "src_id", "dest_id", "src_attr", "dest_attr"} {
			assert.Contains(t, l, key)
		}
	}
	assert.Equal(t, "final", links[2]["label"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file left behind")
}

func TestReadMissingFileLeavesGraph(t *testing.T) {
	t.Parallel()

	g := sampleGraph(t)
	before := encode(t, g)

	err := g.Read(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, ErrFileNotFound)
	assert.Equal(t, before, encode(t, g))
}

func TestDecodeMalformedLeavesGraph(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `{"graph": [`},
		{name: "not an object", doc: `[1, 2]`},
		{name: "null", doc: `null`},
		{name: "missing links", doc: `{"graph": [], "nodes": []}`},
		{name: "nodes not a list", doc: `{"graph": [], "nodes": {}, "links": []}`},
		{name: "bad graph entry", doc: `{"graph": [["a", 1, 2]], "nodes": [], "links": []}`},
		{name: "node not an object", doc: `{"graph": [], "nodes": [1], "links": []}`},
		{name: "bad node attribute", doc: `{"graph": [], "nodes": [{"UUID": "x", "width": "wide"}], "links": []}`},
		{
			name: "link to unknown node",
			doc: `{"graph": [], "nodes": [{"UUID": "x", "name": "a"}],
				"links": [{"id": "e", "src_id": "x", "dest_id": "y"}]}`,
		},
		{
			name: "link with empty connection name",
			doc: `{"graph": [], "nodes": [{"UUID": "x", "name": "a"}, {"UUID": "y", "name": "b"}],
				"links": [{"id": "e", "src_id": "x", "dest_id": "y", "src_attr": ""}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := sampleGraph(t)
			before := encode(t, g)

			err := g.Decode(strings.NewReader(tt.doc))
			require.ErrorIs(t, err, ErrMalformedDocument)
			assert.Equal(t, before, encode(t, g))
		})
	}
}

func TestDecodeRebuildsThroughRegularPaths(t *testing.T) {
	t.Parallel()

	doc := `{
		"graph": [["version", "0.0.9"], ["scene", "old.json"], ["environment", "editor"], ["author", "me"]],
		"nodes": [
			{"UUID": "id-a", "name": "a", "pos": [1, 2], "ratio": 0.10, "big": 12345678901234567890},
			{"UUID": "id-b", "name": "a"},
			{"id": "id-c", "name": "c", "node_type": "shader"}
		],
		"links": [
			{"id": "e1", "src_id": "id-a", "dest_id": "id-b"},
			{"id": "e2", "src_id": "id-a", "dest_id": "id-c", "src_attr": "output", "dest_attr": "input", "weight": 3}
		]
	}`

	g := New()
	require.NoError(t, g.Decode(strings.NewReader(doc)))

	// duplicate names are disambiguated on the way in
	assert.Equal(t, []string{"a", "a1", "c"}, g.NodeNames())
	assert.Equal(t, "id-b", g.NodeID("a1"))

	c, ok := g.Node("c")
	require.True(t, ok)
	assert.Equal(t, "id-c", c.ID)
	assert.Equal(t, "shader", c.Type)

	e1, ok := g.Edge("e1")
	require.True(t, ok)
	assert.Equal(t, "output", e1.SrcAttr)
	assert.Equal(t, "input", e1.DestAttr)
	e2, ok := g.Edge("a.output,c.input")
	require.True(t, ok)
	assert.Equal(t, "e2", e2.ID)
	assert.Equal(t, json.Number("3"), e2.Extra["weight"])

	author, ok := g.Meta("author")
	require.True(t, ok)
	assert.Equal(t, "me", author)
	assert.Equal(t, "old.json", g.Scene())

	out := encode(t, g)
	assert.Contains(t, out, `"ratio": 0.10`)
	assert.Contains(t, out, `"big": 12345678901234567890`)
}

func TestDocumentIsEmptyForEmptyGraph(t *testing.T) {
	t.Parallel()

	doc, err := New().Document()
	require.NoError(t, err)
	assert.Empty(t, doc.Nodes)
	assert.Empty(t, doc.Links)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"graph": [["version", "0.1.0"], ["scene", null], ["environment", "command_line"]], "nodes": [], "links": []}`,
		string(data))
}

func TestLoadReplacesView(t *testing.T) {
	t.Parallel()

	src := sampleGraph(t)
	var buf bytes.Buffer
	require.NoError(t, src.Encode(&buf))

	v := newFakeView()
	g := New(WithRegistry(src.Registry()), WithView(v))
	mustNode(t, g, "stale")
	require.NoError(t, g.Decode(&buf))

	assert.Equal(t, 1, v.cleared)
	assert.Equal(t, []string{"stale", "reader", "merge", "writer"}, v.added)
	assert.Len(t, v.edges, 3)

	reader, _ := g.Node("reader")
	assert.Equal(t, [2]float64{5, 7}, reader.Pos)
}

func TestString(t *testing.T) {
	t.Parallel()

	g := sampleGraph(t)
	assert.Equal(t, encode(t, g), g.String())
}

func TestRoundTripDottedNames(t *testing.T) {
	t.Parallel()

	g := New()
	shot := mustNode(t, g, "shot.plate")
	grade := mustNode(t, g, "grade,v2")
	_, err := g.Connect(shot, grade, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, g.Write(path))

	loaded := New()
	require.NoError(t, loaded.Read(path))
	assert.Equal(t, []string{"shot.plate", "grade,v2"}, loaded.NodeNames())
	require.Len(t, loaded.Edges(), 1)
	assert.NotEmpty(t, loaded.EdgeID("shot.plate.output,grade,v2.input"))
	assert.Equal(t, encode(t, g), encode(t, loaded))
}

func TestRoundTripDroppedConnectionPoint(t *testing.T) {
	t.Parallel()

	g := New()
	mustNode(t, g, "a")
	mustNode(t, g, "b")
	e := mustEdge(t, g, "a.output", "b.input")

	// the edge outlives the connection point it was made against
	_, err := g.UpdateNode("b", Attrs{"inputs": []string{"in2"}})
	require.NoError(t, err)
	require.Len(t, g.Edges(), 1)

	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, g.Write(path))

	loaded := New()
	require.NoError(t, loaded.Read(path))
	got, ok := loaded.Edge(e.ID)
	require.True(t, ok)
	assert.Equal(t, "input", got.DestAttr)
	assert.Equal(t, encode(t, g), encode(t, loaded))
}

func TestDecodeRepeatedIdentifierKeepsFirstNode(t *testing.T) {
	t.Parallel()

	doc := `{
		"graph": [],
		"nodes": [{"UUID": "dup", "name": "a"}, {"UUID": "dup", "name": "b"}],
		"links": [{"id": "e", "src_id": "dup", "dest_id": "dup"}]
	}`
	g := New()
	require.NoError(t, g.Decode(strings.NewReader(doc)))

	a, ok := g.Node("a")
	require.True(t, ok)
	assert.Equal(t, "dup", a.ID)
	b, ok := g.Node("b")
	require.True(t, ok)
	assert.NotEqual(t, "dup", b.ID)

	e, ok := g.Edge("e")
	require.True(t, ok)
	assert.Equal(t, "dup", e.SrcID)
	assert.Equal(t, "dup", e.DestID)
}

func TestWriteFileMode(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, sampleGraph(t).Write(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
