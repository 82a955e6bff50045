package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// insertNodes writes node records in document order.
func insertNodes(ctx context.Context, tx pgx.Tx, sceneID string, nodes []json.RawMessage) error {
	for i, raw := range nodes {
		var key nodeKey
		if err := decodeKey(raw, &key); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO sg_nodes (scene_id, id, name, position, data) VALUES ($1, $2, $3, $4, $5)`,
			sceneID, key.ID, key.Name, i, raw,
		); err != nil {
			return fmt.Errorf("scenegraph: insert node %s: %w", key.ID, err)
		}
	}
	return nil
}

// listNodes returns the node records of a scene, ordered by position.
// Returns an empty slice (not nil) if none found.
func listNodes(ctx context.Context, q pgx.Tx, sceneID string) ([]json.RawMessage, error) {
	rows, err := q.Query(ctx,
		`SELECT data FROM sg_nodes WHERE scene_id = $1 ORDER BY position`, sceneID)
	if err != nil {
		return nil, fmt.Errorf("scenegraph: list nodes: %w", err)
	}
	defer rows.Close()

	nodes := []json.RawMessage{}
	for rows.Next() {
		var data json.RawMessage
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scenegraph: scan node: %w", err)
		}
		nodes = append(nodes, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scenegraph: rows nodes: %w", err)
	}
	return nodes, nil
}
