package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/scenegraph"
)

// PGStore implements scenegraph.Persister using PostgreSQL via pgx.
type PGStore struct {
	db *pgxpool.Pool
}

var _ scenegraph.Persister = (*PGStore)(nil)

// New creates a new PGStore backed by the given pgx connection pool.
func New(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// isNoRows checks if the error is a "no rows" error from pgx.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// nodeKey is the part of a node record stored in its own columns.
type nodeKey struct {
	ID   string `json:"UUID"`
	Name string `json:"name"`
}

// linkKey is the part of a link record stored in its own columns.
type linkKey struct {
	ID     string `json:"id"`
	SrcID  string `json:"src_id"`
	DestID string `json:"dest_id"`
}

func decodeKey(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("scenegraph: %w: %v", scenegraph.ErrMalformedDocument, err)
	}
	return nil
}
