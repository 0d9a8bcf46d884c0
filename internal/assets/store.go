package assets

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// GetByTag は行全体をマップで読んで正準モデルへ写像する。
// 資産テーブルのカラム構成は環境により揺れるため SELECT * で受ける。
func (s *Store) GetByTag(ctx context.Context, tag string) (*Asset, error) {
	const q = `SELECT * FROM assets WHERE asset_tag = ? LIMIT 1`
	rows, err := s.db.QueryContext(ctx, q, tag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	rec, err := RowMap(rows)
	if err != nil {
		return nil, err
	}
	a := FromRecord(rec)
	return &a, nil
}

func (s *Store) Insert(ctx context.Context, in CreateAssetRequest, status string, loanable bool) error {
	const q = `
	INSERT INTO assets
	(asset_tag, name, category, status, loanable, serial, location, notes, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`
	_, err := s.db.ExecContext(ctx, q,
		in.AssetTag, in.Name, in.Category, status, loanable, in.Serial, in.Location, in.Notes,
	)
	return err
}

func (s *Store) List(ctx context.Context, f AssetSearchQuery, p Page) ([]Asset, int64, error) {
	where := []string{}
	args := []any{}
	if f.Status != nil {
		where = append(where, "status = ?")
		args = append(args, *f.Status)
	}
	if f.Category != nil {
		where = append(where, "category = ?")
		args = append(args, *f.Category)
	}
	if f.Loanable != nil {
		where = append(where, "loanable = ?")
		args = append(args, *f.Loanable)
	}
	if f.Location != nil {
		where = append(where, "location = ?")
		args = append(args, *f.Location)
	}
	if f.Keyword != nil {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+*f.Keyword+"%")
	}

	sb := strings.Builder{}
	sb.WriteString(`SELECT * FROM assets`)
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	order := "DESC"
	if strings.ToLower(p.Order) == "asc" {
		order = "ASC"
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY asset_tag %s", order))
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	sb.WriteString(" LIMIT ? OFFSET ?")
	argsList := append(append([]any{}, args...), p.Limit, p.Offset)

	rows, err := s.db.QueryContext(ctx, sb.String(), argsList...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Asset
	for rows.Next() {
		rec, err := RowMap(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, FromRecord(rec))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	cb := strings.Builder{}
	cb.WriteString(`SELECT COUNT(*) FROM assets`)
	if len(where) > 0 {
		cb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, cb.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateByTag: 動的アップデート
func (s *Store) UpdateByTag(ctx context.Context, tag string, in UpdateAssetRequest) error {
	sets := []string{}
	args := []any{}
	if in.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *in.Name)
	}
	if in.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *in.Category)
	}
	if in.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, NormalizeStatus(*in.Status))
	}
	if in.Loanable != nil {
		sets = append(sets, "loanable = ?")
		args = append(args, *in.Loanable)
	}
	if in.Serial != nil {
		sets = append(sets, "serial = ?")
		args = append(args, *in.Serial)
	}
	if in.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *in.Location)
	}
	if in.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *in.Notes)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	q := fmt.Sprintf(`UPDATE assets SET %s WHERE asset_tag = ?`, strings.Join(sets, ", "))
	args = append(args, tag)
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus: retire 等の単独ステータス遷移用
func (s *Store) UpdateStatus(ctx context.Context, tag string, status string) error {
	const q = `UPDATE assets SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE asset_tag = ?`
	res, err := s.db.ExecContext(ctx, q, status, tag)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}
