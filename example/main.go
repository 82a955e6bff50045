package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/scenegraph"
	"github.com/meikuraledutech/scenegraph/postgres"
)

func main() {
	ctx := context.Background()

	registry := scenegraph.NewRegistry()
	if err := registry.Register(scenegraph.NodeType{
		Tag:     "merge",
		Color:   []int{120, 160, 200},
		Inputs:  []string{"a", "b"},
		Outputs: []string{"output"},
	}); err != nil {
		log.Fatalf("register: %v", err)
	}
	g := scenegraph.New(scenegraph.WithRegistry(registry))

	// ── Nodes ─────────────────────────────────────────────────────────
	for _, name := range []string{"reader", "reader"} {
		n, err := g.AddNode("default", scenegraph.Attrs{"name": name})
		if err != nil {
			log.Fatalf("add node: %v", err)
		}
		fmt.Printf("added node %s (%s)\n", n.Name, n.ID)
	}
	merge, err := g.AddNode("merge", scenegraph.Attrs{"name": "merge", "pos": []float64{200, 40}})
	if err != nil {
		log.Fatalf("add node: %v", err)
	}

	// ── Edges ─────────────────────────────────────────────────────────
	if _, err := g.AddEdge("reader.output", "merge.a", nil); err != nil {
		log.Fatalf("add edge: %v", err)
	}
	b, _ := merge.Input("b")
	second, _ := g.Node("reader1")
	if _, err := g.Connect(second, b, nil); err != nil {
		log.Fatalf("connect: %v", err)
	}

	// ── Round trip through a file ─────────────────────────────────────
	path := filepath.Join(os.TempDir(), "scenegraph-example.json")
	if err := g.Write(path); err != nil {
		log.Fatalf("write: %v", err)
	}
	fmt.Printf("\nwrote %s\n", path)

	g.Reset()
	if err := g.Read(path); err != nil {
		log.Fatalf("read: %v", err)
	}
	fmt.Printf("read back %d nodes: %v\n", len(g.Nodes()), g.NodeNames())

	// ── Cascade ───────────────────────────────────────────────────────
	g.RemoveNode("reader")
	fmt.Printf("after removing reader: %d edges\n", len(g.Edges()))
	printJSON(g.Evaluate())

	// ── Optional: persist to Postgres ─────────────────────────────────
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return
	}
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	var store scenegraph.Persister = postgres.New(pool)
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	if err := g.Save(ctx, store, "example"); err != nil {
		log.Fatalf("save: %v", err)
	}
	fmt.Println("\nscene saved as \"example\"")
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
