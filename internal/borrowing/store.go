package borrowing

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ATLAS-backend/internal/assets"
	platformdb "ATLAS-backend/internal/platform/db"
)

type SQLStore struct {
	db     *sql.DB
	schema Schema
	now    func() time.Time
}

func NewSQLStore(conn *sql.DB, schema Schema) *SQLStore {
	return &SQLStore{db: conn, schema: schema, now: time.Now}
}

// 未返却ステータスの正規化条件。"checked out" / "Checked-Out" 等も拾う。
const openStatusCond = `REPLACE(LOWER(status), ' ', '_') IN ('checked_out', 'checked-out')`

func (s *SQLStore) FindOpenByTag(ctx context.Context, tag string) (*BorrowRecord, error) {
	return findOpenByTagTx(ctx, s.db, s.schema, tag)
}

func findOpenByTagTx(ctx context.Context, q platformdb.DBTX, schema Schema, tag string) (*BorrowRecord, error) {
	query := fmt.Sprintf("SELECT * FROM `%s` WHERE asset_tag = ? AND %s LIMIT 1", schema.Table, openStatusCond)
	rows, err := q.QueryContext(ctx, query, tag)
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
	rec, err := assets.RowMap(rows)
	if err != nil {
		return nil, err
	}
	return fromRow(rec), nil
}

func (s *SQLStore) GetByID(ctx context.Context, id string) (*BorrowRecord, error) {
	return getByIDTx(ctx, s.db, s.schema, id, false)
}

func getByIDTx(ctx context.Context, q platformdb.DBTX, schema Schema, id string, forUpdate bool) (*BorrowRecord, error) {
	query := fmt.Sprintf("SELECT * FROM `%s` WHERE id = ? LIMIT 1", schema.Table)
	if forUpdate {
		query += " FOR UPDATE"
	}
	rows, err := q.QueryContext(ctx, query, id)
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
	rec, err := assets.RowMap(rows)
	if err != nil {
		return nil, err
	}
	return fromRow(rec), nil
}

// lockAssetRow: 資産行を FOR UPDATE で取得。二重貸出の直列化点。
func lockAssetRow(ctx context.Context, tx *sql.Tx, tag string) (*assets.Asset, error) {
	const q = `SELECT * FROM assets WHERE asset_tag = ? LIMIT 1 FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, tag)
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
	rec, err := assets.RowMap(rows)
	if err != nil {
		return nil, err
	}
	a := assets.FromRecord(rec)
	return &a, nil
}

// ExecCheckout は貸出トランザクション本体。
// 資産行ロック → 適格性再判定 → 未返却レコード確定チェック → INSERT。
func (s *SQLStore) ExecCheckout(ctx context.Context, rec *BorrowRecord) (*BorrowRecord, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// 1. 資産行ロック＋適格性の再判定（トランザクション内が確定判定）
	a, err := lockAssetRow(ctx, tx, rec.AssetTag)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrNotFound("asset not found")
		return nil, err
	}
	if !eligible(a) {
		err = ErrNotAvailable("asset is not available for borrowing")
		return nil, err
	}

	// 2. 二重貸出チェック（こちらが正、サービス側の事前チェックは早期リターン用）
	open, err := findOpenByTagTx(ctx, tx, s.schema, rec.AssetTag)
	if err != nil {
		return nil, err
	}
	if open != nil {
		err = ErrConflict("asset is already checked out")
		return nil, err
	}

	// 3. id に自動採番が無い環境では当日連番で代替IDを合成する
	if !s.schema.IDAutoGenerated {
		day := s.now().UTC()
		prefix := borrowIDDayPrefix(day)
		var n int
		countQ := fmt.Sprintf("SELECT COUNT(*) FROM `%s` WHERE id LIKE ?", s.schema.Table)
		if err = tx.QueryRowContext(ctx, countQ, prefix+"%").Scan(&n); err != nil {
			return nil, err
		}
		rec.ID = buildBorrowID(day, n+1)
	}

	// 4. 存在するカラムだけでINSERTを組み立てる
	cols, args := buildInsert(s.schema, rec)
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = "`" + c + "`"
	}
	insertQ := fmt.Sprintf("INSERT INTO `%s` (%s) VALUES (%s)",
		s.schema.Table,
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
	)
	res, err := tx.ExecContext(ctx, insertQ, args...)
	if err != nil {
		return nil, err
	}
	if s.schema.IDAutoGenerated {
		id, _ := res.LastInsertId()
		rec.ID = strconv.FormatInt(id, 10)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	// 5. コミット後に行全体を取り直して返す
	out, err := s.GetByID(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrInternal("inserted but not found")
	}
	return out, nil
}

// buildInsert: 解決済みスキーマに存在するカラムだけを対象にする。
// 欠落カラムは NULL ではなく「出さない」。
func buildInsert(schema Schema, rec *BorrowRecord) ([]string, []any) {
	var cols []string
	var args []any
	add := func(name string, v any) {
		if !schema.HasColumn(name) {
			return
		}
		cols = append(cols, name)
		args = append(args, v)
	}
	addOpt := func(name string, p *string) {
		if p == nil {
			return
		}
		add(name, *p)
	}

	if rec.ID != "" {
		add(idColumn, rec.ID)
	}
	if rec.BorrowULID != "" {
		add("borrow_ulid", rec.BorrowULID)
	}
	add("asset_tag", rec.AssetTag)
	add("borrowername", rec.BorrowerName)
	addOpt("borrowercontact", rec.BorrowerContact)
	add("checkout_date", rec.CheckoutDate)
	addOpt("due_date", rec.DueDate)
	addOpt("purpose", rec.Purpose)
	addOpt("location", rec.Location)
	addOpt("notes", rec.Notes)
	add("status", rec.Status)
	return cols, args
}

// ExecCheckin は返却トランザクション本体。
// 対象行ロック → 返却済みチェック → UPDATE。
func (s *SQLStore) ExecCheckin(ctx context.Context, id string, upd CheckinUpdate) (*BorrowRecord, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	cur, err := getByIDTx(ctx, tx, s.schema, id, true)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		err = ErrNotFound("borrow record not found")
		return nil, err
	}
	if cur.Status == StatusReturned {
		err = ErrInvalidState("already returned")
		return nil, err
	}

	var sets []string
	var args []any
	set := func(name string, v any) {
		if !s.schema.HasColumn(name) {
			return
		}
		sets = append(sets, "`"+name+"` = ?")
		args = append(args, v)
	}
	setOpt := func(name string, p *string) {
		if p == nil {
			return
		}
		set(name, *p)
	}

	set("status", StatusReturned)
	set("checkin_date", upd.CheckinAt)
	set("condition", upd.Condition)
	set("damage_reported", upd.DamageReported)
	setOpt("damage_description", upd.DamageDescription)
	set("maintenance_required", upd.MaintenanceRequired)
	setOpt("maintenance_notes", upd.MaintenanceNotes)
	setOpt("returned_by_name", upd.ReturnedByName)

	updateQ := fmt.Sprintf("UPDATE `%s` SET %s WHERE id = ?", s.schema.Table, strings.Join(sets, ", "))
	args = append(args, id)
	if _, err = tx.ExecContext(ctx, updateQ, args...); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	out, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrInternal("updated but not found")
	}
	return out, nil
}

func (s *SQLStore) List(ctx context.Context, f BorrowFilter, p Page) ([]BorrowRecord, int64, error) {
	where := []string{}
	args := []any{}
	if f.Status != nil && *f.Status != "" {
		where = append(where, "REPLACE(LOWER(status), ' ', '_') = ?")
		args = append(args, *f.Status)
	}
	if f.BorrowerName != nil && *f.BorrowerName != "" {
		where = append(where, "borrowername = ?")
		args = append(args, *f.BorrowerName)
	}
	if f.AssetTag != nil && *f.AssetTag != "" {
		where = append(where, "asset_tag = ?")
		args = append(args, *f.AssetTag)
	}

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("SELECT * FROM `%s`", s.schema.Table))
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	order := "DESC"
	if strings.ToLower(p.Order) == "asc" {
		order = "ASC"
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY checkout_date %s, id %s", order, order))
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

	var out []BorrowRecord
	for rows.Next() {
		rec, err := assets.RowMap(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *fromRow(rec))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	cb := strings.Builder{}
	cb.WriteString(fmt.Sprintf("SELECT COUNT(*) FROM `%s`", s.schema.Table))
	if len(where) > 0 {
		cb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, cb.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ===== 行マップ -> モデル =====

func fromRow(rec map[string]any) *BorrowRecord {
	r := &BorrowRecord{}
	r.ID = anyToString(rec[idColumn])
	r.BorrowULID = mapString(rec, "borrow_ulid")
	r.AssetTag = mapString(rec, "asset_tag")
	r.BorrowerName = mapString(rec, "borrowername")
	r.BorrowerContact = mapStringPtr(rec, "borrowercontact")
	r.CheckoutDate = mapDate(rec, "checkout_date")
	if v := mapDate(rec, "due_date"); v != "" {
		r.DueDate = &v
	}
	if t, ok := rec["checkin_date"].(time.Time); ok {
		r.CheckinDate = &t
	}
	r.Purpose = mapStringPtr(rec, "purpose")
	r.Location = mapStringPtr(rec, "location")
	r.Notes = mapStringPtr(rec, "notes")
	r.Status = assets.NormalizeStatus(mapString(rec, "status"))
	r.Condition = mapStringPtr(rec, "condition")
	r.DamageReported = mapBool(rec, "damage_reported")
	r.DamageDescription = mapStringPtr(rec, "damage_description")
	r.MaintenanceRequired = mapBool(rec, "maintenance_required")
	r.MaintenanceNotes = mapStringPtr(rec, "maintenance_notes")
	r.ReturnedByName = mapStringPtr(rec, "returned_by_name")
	return r
}

func anyToString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}

func mapString(rec map[string]any, key string) string {
	v, ok := rec[key]
	if !ok || v == nil {
		return ""
	}
	return anyToString(v)
}

func mapStringPtr(rec map[string]any, key string) *string {
	v, ok := rec[key]
	if !ok || v == nil {
		return nil
	}
	s := anyToString(v)
	if s == "" {
		return nil
	}
	return &s
}

// DATE/DATETIME を "YYYY-MM-DD" に揃える
func mapDate(rec map[string]any, key string) string {
	v, ok := rec[key]
	if !ok || v == nil {
		return ""
	}
	if t, ok := v.(time.Time); ok {
		return t.Format(DateLayout)
	}
	s := anyToString(v)
	if len(s) >= len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}

func mapBool(rec map[string]any, key string) bool {
	v, ok := rec[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case []byte:
		return string(t) == "1" || strings.EqualFold(string(t), "true")
	case string:
		return t == "1" || strings.EqualFold(t, "true")
	default:
		return false
	}
}
