package floorplan

import (
	"context"
	"database/sql"
	"encoding/json"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Upsert: floor_id（PK）でINSERTまたは全置換。
func (s *Store) Upsert(ctx context.Context, floorID string, doc json.RawMessage, updatedBy *string) error {
	const q = `
	INSERT INTO floor_layouts (floor_id, layout, updated_by, updated_at)
	VALUES (?, ?, ?, UTC_TIMESTAMP())
	ON DUPLICATE KEY UPDATE
	layout     = VALUES(layout),
	updated_by = VALUES(updated_by),
	updated_at = VALUES(updated_at)`
	_, err := s.db.ExecContext(ctx, q, floorID, []byte(doc), updatedBy)
	return err
}

func (s *Store) Get(ctx context.Context, floorID string) (*Layout, error) {
	const q = `
	SELECT floor_id, layout, updated_by, updated_at
	FROM floor_layouts WHERE floor_id = ? LIMIT 1`
	var l Layout
	var raw []byte
	err := s.db.QueryRowContext(ctx, q, floorID).Scan(&l.FloorID, &raw, &l.UpdatedBy, &l.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	l.Document = json.RawMessage(raw)
	return &l, nil
}

func (s *Store) ListFloorIDs(ctx context.Context) ([]string, error) {
	const q = `SELECT floor_id FROM floor_layouts ORDER BY floor_id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
