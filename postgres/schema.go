package postgres

import "context"

// Records are kept in JSON (not JSONB) columns so key order and number
// literals are returned exactly as they were written.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS sg_scenes (
    id         TEXT PRIMARY KEY,
    graph      JSON NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sg_nodes (
    scene_id TEXT NOT NULL REFERENCES sg_scenes(id) ON DELETE CASCADE,
    id       TEXT NOT NULL,
    name     TEXT NOT NULL,
    position INTEGER NOT NULL,
    data     JSON NOT NULL,
    PRIMARY KEY (scene_id, id),
    UNIQUE (scene_id, name)
);

CREATE TABLE IF NOT EXISTS sg_edges (
    scene_id TEXT NOT NULL,
    id       TEXT NOT NULL,
    src_id   TEXT NOT NULL,
    dest_id  TEXT NOT NULL,
    position INTEGER NOT NULL,
    data     JSON NOT NULL,
    PRIMARY KEY (scene_id, id),
    FOREIGN KEY (scene_id, src_id)  REFERENCES sg_nodes(scene_id, id) ON DELETE CASCADE,
    FOREIGN KEY (scene_id, dest_id) REFERENCES sg_nodes(scene_id, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sg_edges_src  ON sg_edges(scene_id, src_id);
CREATE INDEX IF NOT EXISTS idx_sg_edges_dest ON sg_edges(scene_id, dest_id);
`

// CreateSchema creates the scene, node and edge tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the scene, node and edge tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS sg_edges, sg_nodes, sg_scenes CASCADE;`)
	return err
}
