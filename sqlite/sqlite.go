// Package sqlite implements scenegraph.Persister on a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/meikuraledutech/scenegraph"
)

// Store implements scenegraph.Persister using SQLite.
type Store struct {
	db *sql.DB
}

var _ scenegraph.Persister = (*Store)(nil)

// Open opens (or creates) the SQLite database at dsn. Use ":memory:" for a
// throwaway database.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("scenegraph: open sqlite: %w", err)
	}
	// a single connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("scenegraph: enable foreign keys: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sg_scenes (
    id         TEXT PRIMARY KEY,
    graph      TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sg_nodes (
    scene_id TEXT NOT NULL REFERENCES sg_scenes(id) ON DELETE CASCADE,
    id       TEXT NOT NULL,
    name     TEXT NOT NULL,
    position INTEGER NOT NULL,
    data     TEXT NOT NULL,
    PRIMARY KEY (scene_id, id),
    UNIQUE (scene_id, name)
);

CREATE TABLE IF NOT EXISTS sg_edges (
    scene_id TEXT NOT NULL,
    id       TEXT NOT NULL,
    src_id   TEXT NOT NULL,
    dest_id  TEXT NOT NULL,
    position INTEGER NOT NULL,
    data     TEXT NOT NULL,
    PRIMARY KEY (scene_id, id),
    FOREIGN KEY (scene_id, src_id)  REFERENCES sg_nodes(scene_id, id) ON DELETE CASCADE,
    FOREIGN KEY (scene_id, dest_id) REFERENCES sg_nodes(scene_id, id) ON DELETE CASCADE
);
`

// CreateSchema creates the scene, node and edge tables if they don't exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

// DropSchema drops the scene, node and edge tables.
func (s *Store) DropSchema(ctx context.Context) error {
	for _, table := range []string{"sg_edges", "sg_nodes", "sg_scenes"} {
		if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
			return err
		}
	}
	return nil
}

// SaveDocument replaces the scene stored under sceneID in one transaction.
func (s *Store) SaveDocument(ctx context.Context, sceneID string, doc *scenegraph.Document) error {
	graph, err := json.Marshal(doc.Graph)
	if err != nil {
		return fmt.Errorf("scenegraph: encode graph: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("scenegraph: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := deleteScene(ctx, tx, sceneID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sg_scenes (id, graph) VALUES (?, ?)`, sceneID, string(graph),
	); err != nil {
		return fmt.Errorf("scenegraph: insert scene: %w", err)
	}

	for i, raw := range doc.Nodes {
		var key struct {
			ID   string `json:"UUID"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &key); err != nil {
			return fmt.Errorf("scenegraph: %w: node %d: %v", scenegraph.ErrMalformedDocument, i, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sg_nodes (scene_id, id, name, position, data) VALUES (?, ?, ?, ?, ?)`,
			sceneID, key.ID, key.Name, i, string(raw),
		); err != nil {
			return fmt.Errorf("scenegraph: insert node %s: %w", key.ID, err)
		}
	}

	for i, raw := range doc.Links {
		var key struct {
			ID     string `json:"id"`
			SrcID  string `json:"src_id"`
			DestID string `json:"dest_id"`
		}
		if err := json.Unmarshal(raw, &key); err != nil {
			return fmt.Errorf("scenegraph: %w: link %d: %v", scenegraph.ErrMalformedDocument, i, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sg_edges (scene_id, id, src_id, dest_id, position, data) VALUES (?, ?, ?, ?, ?, ?)`,
			sceneID, key.ID, key.SrcID, key.DestID, i, string(raw),
		); err != nil {
			return fmt.Errorf("scenegraph: insert edge %s: %w", key.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("scenegraph: commit: %w", err)
	}
	return nil
}

// LoadDocument returns the scene stored under sceneID, or
// scenegraph.ErrSceneNotFound.
func (s *Store) LoadDocument(ctx context.Context, sceneID string) (*scenegraph.Document, error) {
	var graph string
	err := s.db.QueryRowContext(ctx, `SELECT graph FROM sg_scenes WHERE id = ?`, sceneID).Scan(&graph)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", scenegraph.ErrSceneNotFound, sceneID)
		}
		return nil, fmt.Errorf("scenegraph: get scene: %w", err)
	}

	doc := &scenegraph.Document{}
	if err := json.Unmarshal([]byte(graph), &doc.Graph); err != nil {
		return nil, fmt.Errorf("scenegraph: decode graph: %w", err)
	}
	if doc.Nodes, err = s.records(ctx, `SELECT data FROM sg_nodes WHERE scene_id = ? ORDER BY position`, sceneID); err != nil {
		return nil, fmt.Errorf("scenegraph: list nodes: %w", err)
	}
	if doc.Links, err = s.records(ctx, `SELECT data FROM sg_edges WHERE scene_id = ? ORDER BY position`, sceneID); err != nil {
		return nil, fmt.Errorf("scenegraph: list edges: %w", err)
	}
	return doc, nil
}

func (s *Store) records(ctx context.Context, query, sceneID string) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, query, sceneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []json.RawMessage{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		out = append(out, json.RawMessage(data))
	}
	return out, rows.Err()
}

// DeleteDocument removes a scene. No error if the scene doesn't exist.
func (s *Store) DeleteDocument(ctx context.Context, sceneID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("scenegraph: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := deleteScene(ctx, tx, sceneID); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteScene(ctx context.Context, tx *sql.Tx, sceneID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM sg_edges WHERE scene_id = ?`, sceneID); err != nil {
		return fmt.Errorf("scenegraph: delete edges: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sg_nodes WHERE scene_id = ?`, sceneID); err != nil {
		return fmt.Errorf("scenegraph: delete nodes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sg_scenes WHERE id = ?`, sceneID); err != nil {
		return fmt.Errorf("scenegraph: delete scene: %w", err)
	}
	return nil
}

// ListScenes returns the stored scene IDs in alphabetical order.
func (s *Store) ListScenes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sg_scenes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("scenegraph: list scenes: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scenegraph: scan scene: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
