package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/meikuraledutech/scenegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeScene(t *testing.T, dir string) string {
	t.Helper()
	g := scenegraph.New()
	for _, name := range []string{"plate", "grade"} {
		_, err := g.AddNode("", scenegraph.Attrs{"name": name})
		require.NoError(t, err)
	}
	_, err := g.AddEdge("plate.output", "grade.input", nil)
	require.NoError(t, err)

	path := filepath.Join(dir, "scene.json")
	require.NoError(t, g.Write(path))
	return path
}

func TestInspect(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	dir := t.TempDir()
	path := writeScene(t, dir)

	out, err := run(t, "--config", filepath.Join(dir, "none.toml"), "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "plate")
	assert.Contains(t, out, "grade")
	assert.Contains(t, out, "plate.output")
	assert.Contains(t, out, "2 nodes, 1 edges")

	out, err = run(t, "--config", filepath.Join(dir, "none.toml"), "inspect", "--evaluate", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"Kind": "edge"`)

	_, err = run(t, "--config", filepath.Join(dir, "none.toml"), "inspect", filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, scenegraph.ErrFileNotFound)
}

func TestScenesWithSQLite(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	dir := t.TempDir()
	path := writeScene(t, dir)

	cfg := filepath.Join(dir, "scenegraph.toml")
	require.NoError(t, os.WriteFile(cfg, []byte(
		"[storage]\ndriver = \"sqlite\"\ndsn = \""+filepath.Join(dir, "scenes.db")+"\"\n",
	), 0o644))

	_, err := run(t, "-c", cfg, "schema", "create")
	require.NoError(t, err)

	_, err = run(t, "-c", cfg, "scenes", "save", path, "shot-010")
	require.NoError(t, err)

	out, err := run(t, "-c", cfg, "scenes", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "shot-010")

	restored := filepath.Join(dir, "restored.json")
	_, err = run(t, "-c", cfg, "scenes", "load", "shot-010", restored)
	require.NoError(t, err)

	g := scenegraph.New()
	require.NoError(t, g.Read(restored))
	assert.Equal(t, []string{"plate", "grade"}, g.NodeNames())
	assert.Len(t, g.Edges(), 1)

	_, err = run(t, "-c", cfg, "scenes", "delete", "shot-010")
	require.NoError(t, err)
	out, err = run(t, "-c", cfg, "scenes", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no scenes stored")
}

func TestScenesNeedStorage(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	dir := t.TempDir()

	_, err := run(t, "-c", filepath.Join(dir, "none.toml"), "scenes", "list")
	assert.ErrorContains(t, err, "no storage configured")
}
