package inventory

import (
	"context"
	"database/sql"
	"strings"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Insert(ctx context.Context, in CreateConsumableRequest) (uint64, error) {
	const q = `
	INSERT INTO consumables (sku, name, quantity, reorder_level, is_disabled, created_at)
	VALUES (?, ?, ?, ?, 0, CURRENT_TIMESTAMP)`
	res, err := s.db.ExecContext(ctx, q, in.SKU, in.Name, in.Quantity, in.ReorderLevel)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (s *Store) GetBySKU(ctx context.Context, sku string) (*Consumable, error) {
	const q = `
	SELECT consumable_id, sku, name, quantity, reorder_level, is_disabled, created_at
	FROM consumables WHERE sku = ? LIMIT 1`
	var cn Consumable
	err := s.db.QueryRowContext(ctx, q, sku).Scan(
		&cn.ConsumableID, &cn.SKU, &cn.Name, &cn.Quantity, &cn.ReorderLevel, &cn.IsDisabled, &cn.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &cn, nil
}

func (s *Store) List(ctx context.Context, f SearchQuery, p Page) ([]Consumable, int64, error) {
	where := []string{}
	args := []any{}
	if !f.IncludeDisabled {
		where = append(where, "is_disabled = 0")
	}
	if f.LowStockOnly {
		where = append(where, "quantity <= reorder_level")
	}
	if f.Keyword != nil && *f.Keyword != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+*f.Keyword+"%")
	}

	sb := strings.Builder{}
	sb.WriteString(`
	SELECT consumable_id, sku, name, quantity, reorder_level, is_disabled, created_at
	FROM consumables`)
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY sku")
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	sb.WriteString(" LIMIT ? OFFSET ?")
	listArgs := append(append([]any{}, args...), p.Limit, p.Offset)

	rows, err := s.db.QueryContext(ctx, sb.String(), listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Consumable
	for rows.Next() {
		var cn Consumable
		if err := rows.Scan(&cn.ConsumableID, &cn.SKU, &cn.Name, &cn.Quantity, &cn.ReorderLevel, &cn.IsDisabled, &cn.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, cn)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	cb := strings.Builder{}
	cb.WriteString(`SELECT COUNT(*) FROM consumables`)
	if len(where) > 0 {
		cb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, cb.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// DELETE 相当: is_disabled=1 にする
func (s *Store) Disable(ctx context.Context, sku string) error {
	const q = `UPDATE consumables SET is_disabled = 1 WHERE sku = ?`
	res, err := s.db.ExecContext(ctx, q, sku)
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

// ExecAdjust は入出庫トランザクション本体。
// 在庫行ロック → 残数チェック → UPDATE → 履歴INSERT。
func (s *Store) ExecAdjust(ctx context.Context, movementULID, sku string, delta int, reason, movedBy *string) (*Consumable, *Movement, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// 1. 在庫行ロック
	const lockQ = `
	SELECT consumable_id, quantity FROM consumables
	WHERE sku = ? AND is_disabled = 0 LIMIT 1 FOR UPDATE`
	var id uint64
	var qty int
	if err = tx.QueryRowContext(ctx, lockQ, sku).Scan(&id, &qty); err != nil {
		if err == sql.ErrNoRows {
			err = ErrNotFound("consumable not found")
		}
		return nil, nil, err
	}

	// 2. 残数チェック
	if qty+delta < 0 {
		err = ErrConflict("insufficient stock")
		return nil, nil, err
	}

	// 3. 在庫更新
	const updQ = `UPDATE consumables SET quantity = quantity + ? WHERE consumable_id = ?`
	res, err := tx.ExecContext(ctx, updQ, delta, id)
	if err != nil {
		return nil, nil, err
	}
	if aff, _ := res.RowsAffected(); aff != 1 {
		err = ErrInternal("failed to update consumables.quantity")
		return nil, nil, err
	}

	// 4. 履歴INSERT
	const insQ = `
	INSERT INTO consumable_movements (movement_ulid, consumable_id, delta, reason, moved_by, moved_at)
	VALUES (?, ?, ?, ?, ?, UTC_TIMESTAMP())`
	mres, err := tx.ExecContext(ctx, insQ, movementULID, id, delta, reason, movedBy)
	if err != nil {
		return nil, nil, err
	}
	mid, _ := mres.LastInsertId()

	if err = tx.Commit(); err != nil {
		return nil, nil, err
	}

	cn, err := s.GetBySKU(ctx, sku)
	if err != nil {
		return nil, nil, err
	}
	mv := &Movement{
		MovementID:   uint64(mid),
		MovementULID: movementULID,
		ConsumableID: id,
		Delta:        delta,
		Reason:       reason,
		MovedBy:      movedBy,
	}
	return cn, mv, nil
}

func (s *Store) ListMovements(ctx context.Context, sku string, p Page) ([]Movement, int64, error) {
	const q = `
	SELECT m.movement_id, m.movement_ulid, m.consumable_id, m.delta, m.reason, m.moved_by, m.moved_at
	FROM consumable_movements m
	JOIN consumables c ON c.consumable_id = m.consumable_id
	WHERE c.sku = ?
	ORDER BY m.moved_at DESC, m.movement_id DESC
	LIMIT ? OFFSET ?`
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	rows, err := s.db.QueryContext(ctx, q, sku, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.MovementID, &m.MovementULID, &m.ConsumableID, &m.Delta, &m.Reason, &m.MovedBy, &m.MovedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	const cntQ = `
	SELECT COUNT(*) FROM consumable_movements m
	JOIN consumables c ON c.consumable_id = m.consumable_id
	WHERE c.sku = ?`
	if err := s.db.QueryRowContext(ctx, cntQ, sku).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
