package inventory

import "time"

// Consumable は消耗品の在庫1行。
type Consumable struct {
	ConsumableID uint64
	SKU          string
	Name         string
	Quantity     int
	ReorderLevel int
	IsDisabled   bool
	CreatedAt    time.Time
}

// Movement は入出庫履歴1件。delta は入庫が正、払い出しが負。
type Movement struct {
	MovementID   uint64
	MovementULID string
	ConsumableID uint64
	Delta        int
	Reason       *string
	MovedBy      *string
	MovedAt      time.Time
}

type SearchQuery struct {
	Keyword         *string // name 部分一致
	LowStockOnly    bool    // quantity <= reorder_level
	IncludeDisabled bool
}

type Page struct {
	Limit  int
	Offset int
}
