package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/scenegraph"
)

// SaveDocument saves a full scene (metadata, nodes, edges) in one
// transaction, replacing whatever was stored under sceneID.
func (s *PGStore) SaveDocument(ctx context.Context, sceneID string, doc *scenegraph.Document) error {
	graph, err := json.Marshal(doc.Graph)
	if err != nil {
		return fmt.Errorf("scenegraph: encode graph: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("scenegraph: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Delete existing scene data if any (replace semantics).
	if _, err := tx.Exec(ctx, `DELETE FROM sg_edges WHERE scene_id = $1`, sceneID); err != nil {
		return fmt.Errorf("scenegraph: delete edges: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM sg_nodes WHERE scene_id = $1`, sceneID); err != nil {
		return fmt.Errorf("scenegraph: delete nodes: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO sg_scenes (id, graph) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET graph = EXCLUDED.graph, updated_at = NOW()`,
		sceneID, json.RawMessage(graph),
	); err != nil {
		return fmt.Errorf("scenegraph: upsert scene: %w", err)
	}

	if err := insertNodes(ctx, tx, sceneID, doc.Nodes); err != nil {
		return err
	}
	if err := insertLinks(ctx, tx, sceneID, doc.Links); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("scenegraph: commit: %w", err)
	}
	return nil
}

// LoadDocument retrieves a full scene by its ID.
// Returns scenegraph.ErrSceneNotFound if nothing is stored under sceneID.
func (s *PGStore) LoadDocument(ctx context.Context, sceneID string) (*scenegraph.Document, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("scenegraph: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var graph json.RawMessage
	err = tx.QueryRow(ctx, `SELECT graph FROM sg_scenes WHERE id = $1`, sceneID).Scan(&graph)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: %s", scenegraph.ErrSceneNotFound, sceneID)
		}
		return nil, fmt.Errorf("scenegraph: get scene: %w", err)
	}

	doc := &scenegraph.Document{}
	if err := json.Unmarshal(graph, &doc.Graph); err != nil {
		return nil, fmt.Errorf("scenegraph: decode graph: %w", err)
	}
	if doc.Nodes, err = listNodes(ctx, tx, sceneID); err != nil {
		return nil, err
	}
	if doc.Links, err = listLinks(ctx, tx, sceneID); err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocument removes a scene with its nodes and edges.
// No error if the scene doesn't exist.
func (s *PGStore) DeleteDocument(ctx context.Context, sceneID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("scenegraph: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM sg_edges WHERE scene_id = $1`, sceneID); err != nil {
		return fmt.Errorf("scenegraph: delete edges: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM sg_nodes WHERE scene_id = $1`, sceneID); err != nil {
		return fmt.Errorf("scenegraph: delete nodes: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM sg_scenes WHERE id = $1`, sceneID); err != nil {
		return fmt.Errorf("scenegraph: delete scene: %w", err)
	}

	return tx.Commit(ctx)
}

// ListScenes returns the stored scene IDs in alphabetical order.
func (s *PGStore) ListScenes(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM sg_scenes ORDER BY id`)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scenegraph: rows scenes: %w", err)
	}
	return ids, nil
}
