package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// insertLinks writes link records in document order. Both endpoints must
// already be inserted.
func insertLinks(ctx context.Context, tx pgx.Tx, sceneID string, links []json.RawMessage) error {
	for i, raw := range links {
		var key linkKey
		if err := decodeKey(raw, &key); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO sg_edges (scene_id, id, src_id, dest_id, position, data) VALUES ($1, $2, $3, $4, $5, $6)`,
			sceneID, key.ID, key.SrcID, key.DestID, i, raw,
		); err != nil {
			return fmt.Errorf("scenegraph: insert edge %s: %w", key.ID, err)
		}
	}
	return nil
}

// listLinks returns the link records of a scene, ordered by position.
// Returns an empty slice (not nil) if none found.
func listLinks(ctx context.Context, q pgx.Tx, sceneID string) ([]json.RawMessage, error) {
	rows, err := q.Query(ctx,
		`SELECT data FROM sg_edges WHERE scene_id = $1 ORDER BY position`, sceneID)
	if err != nil {
		return nil, fmt.Errorf("scenegraph: list edges: %w", err)
	}
	defer rows.Close()

	links := []json.RawMessage{}
	for rows.Next() {
		var data json.RawMessage
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scenegraph: scan edge: %w", err)
		}
		links = append(links, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scenegraph: rows edges: %w", err)
	}
	return links, nil
}
