package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/scenegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStore connects to DATABASE_URL and resets the schema. Tests using it
// are skipped when no database is configured.
func newStore(t *testing.T) *PGStore {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := New(pool)
	require.NoError(t, s.DropSchema(ctx))
	require.NoError(t, s.CreateSchema(ctx))
	t.Cleanup(func() { s.DropSchema(context.Background()) })
	return s
}

func buildGraph(t *testing.T) *scenegraph.Graph {
	t.Helper()
	g := scenegraph.New()
	for _, name := range []string{"plate", "grade", "comp"} {
		_, err := g.AddNode("", scenegraph.Attrs{"name": name, "gain": 1.25})
		require.NoError(t, err)
	}
	_, err := g.AddEdge("plate.output", "grade.input", nil)
	require.NoError(t, err)
	_, err = g.AddEdge("grade.output", "comp.input", nil)
	require.NoError(t, err)
	return g
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	g := buildGraph(t)

	require.NoError(t, g.Save(ctx, s, "shot-020"))

	loaded := scenegraph.New()
	require.NoError(t, loaded.Load(ctx, s, "shot-020"))
	assert.Equal(t, g.String(), loaded.String())

	// saving again replaces the stored scene
	require.True(t, g.RemoveNode("grade"))
	require.NoError(t, g.Save(ctx, s, "shot-020"))
	doc, err := s.LoadDocument(ctx, "shot-020")
	require.NoError(t, err)
	assert.Len(t, doc.Nodes, 2)
	assert.Empty(t, doc.Links)
}

func TestScenes(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	g := buildGraph(t)

	for _, id := range []string{"b", "a"} {
		require.NoError(t, g.Save(ctx, s, id))
	}
	ids, err := s.ListScenes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, s.DeleteDocument(ctx, "a"))
	_, err = s.LoadDocument(ctx, "a")
	assert.ErrorIs(t, err, scenegraph.ErrSceneNotFound)

	err = g.Load(ctx, s, "missing")
	assert.ErrorIs(t, err, scenegraph.ErrSceneNotFound)
	assert.Len(t, g.Nodes(), 3)
}
