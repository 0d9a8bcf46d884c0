package patches

import (
	"bytes"
	"context"
	"database/sql"
	"strings"

	platformdb "ATLAS-backend/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Upsert: asset_tag + patch_id（UNIQUE）でINSERTまたはUPDATE。
// 返り値: 確定行、created=true（新規）/false（更新）
func (s *Store) Upsert(ctx context.Context, ulid, assetTag, patchID, status string, appliedOn, note *string) (PatchRecord, bool, error) {
	// INSERT ... ON DUPLICATE KEY UPDATE
	// - 新規: RowsAffected = 1
	// - 既存更新: RowsAffected = 2
	const q = `
	INSERT INTO patch_records (record_ulid, asset_tag, patch_id, status, applied_on, detected_at, note)
	VALUES (?, ?, ?, ?, ?, UTC_TIMESTAMP(), ?)
	ON DUPLICATE KEY UPDATE
	status      = VALUES(status),
	applied_on  = VALUES(applied_on),
	detected_at = VALUES(detected_at),
	note        = VALUES(note)`

	var (
		rec     PatchRecord
		created bool
	)
	err := platformdb.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx platformdb.DBTX) error {
		res, err := tx.ExecContext(ctx, q, ulid, assetTag, patchID, status, appliedOn, note)
		if err != nil {
			return err
		}
		aff, _ := res.RowsAffected()
		created = (aff == 1)

		row := tx.QueryRowContext(ctx, `
	SELECT record_id, record_ulid, asset_tag, patch_id, status,
	       DATE_FORMAT(applied_on, '%Y-%m-%d') AS applied_on, detected_at, note
	FROM patch_records
	WHERE asset_tag = ? AND patch_id = ?`,
			assetTag, patchID,
		)
		var r patchRow
		if err := row.Scan(&r.RecordID, &r.RecordULID, &r.AssetTag, &r.PatchID, &r.Status, &r.AppliedOn, &r.DetectedAt, &r.Note); err != nil {
			if err == sql.ErrNoRows {
				return ErrInternal("upserted but not found")
			}
			return err
		}
		rec = r.toModel()
		return nil
	})
	if err != nil {
		return PatchRecord{}, created, err
	}
	return rec, created, nil
}

// List: 条件に応じて動的WHERE + LIMIT/OFFSET
func (s *Store) List(ctx context.Context, q ListQuery) ([]PatchRecord, int64, error) {
	var (
		buf    bytes.Buffer
		args   []any
		wheres []string
	)

	buf.WriteString(`
	SELECT record_id, record_ulid, asset_tag, patch_id, status,
	       DATE_FORMAT(applied_on, '%Y-%m-%d') AS applied_on, detected_at, note
	FROM patch_records
	`)
	if q.AssetTag != nil && *q.AssetTag != "" {
		wheres = append(wheres, "asset_tag = ?")
		args = append(args, *q.AssetTag)
	}
	if q.PatchID != nil && *q.PatchID != "" {
		wheres = append(wheres, "patch_id = ?")
		args = append(args, *q.PatchID)
	}
	if q.Status != nil && *q.Status != "" {
		wheres = append(wheres, "status = ?")
		args = append(args, *q.Status)
	}
	if q.From != nil && *q.From != "" {
		wheres = append(wheres, "applied_on >= ?")
		args = append(args, *q.From)
	}
	if q.To != nil && *q.To != "" {
		wheres = append(wheres, "applied_on <= ?")
		args = append(args, *q.To)
	}
	if len(wheres) > 0 {
		buf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}
	buf.WriteString(" ORDER BY detected_at DESC, record_id DESC")

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	buf.WriteString(" LIMIT ? OFFSET ?")
	listArgs := append(append([]any{}, args...), limit, offset)

	// 一覧と件数を同一スナップショットで読む
	var (
		out   []PatchRecord
		total int64
	)
	err := platformdb.ReadOnly(ctx, s.db, func(ctx context.Context, tx platformdb.DBTX) error {
		rows, err := tx.QueryContext(ctx, buf.String(), listArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var r patchRow
			if err := rows.Scan(&r.RecordID, &r.RecordULID, &r.AssetTag, &r.PatchID, &r.Status, &r.AppliedOn, &r.DetectedAt, &r.Note); err != nil {
				return err
			}
			out = append(out, r.toModel())
		}
		if err := rows.Err(); err != nil {
			return err
		}

		var cnt bytes.Buffer
		cnt.WriteString(`SELECT COUNT(*) FROM patch_records`)
		if len(wheres) > 0 {
			cnt.WriteString(" WHERE " + strings.Join(wheres, " AND "))
		}
		return tx.QueryRowContext(ctx, cnt.String(), args...).Scan(&total)
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Summary: ステータス別件数。asset_tag 指定で1台分に絞れる。
func (s *Store) Summary(ctx context.Context, assetTag *string) ([]SummaryRow, error) {
	var buf bytes.Buffer
	var args []any
	buf.WriteString(`SELECT status, COUNT(*) FROM patch_records`)
	if assetTag != nil && *assetTag != "" {
		buf.WriteString(" WHERE asset_tag = ?")
		args = append(args, *assetTag)
	}
	buf.WriteString(" GROUP BY status ORDER BY status")

	rows, err := s.db.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SummaryRow
	for rows.Next() {
		var r SummaryRow
		if err := rows.Scan(&r.Status, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
