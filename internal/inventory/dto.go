package inventory

import "time"

type CreateConsumableRequest struct {
	SKU          string `json:"sku" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorder_level"`
}

// 入出庫リクエスト。quantity は常に正の値で受ける。
type AdjustStockRequest struct {
	Quantity int     `json:"quantity" binding:"required"`
	Reason   *string `json:"reason,omitempty"`
	MovedBy  *string `json:"moved_by,omitempty"`
}

type ConsumableResponse struct {
	ConsumableID uint64    `json:"consumable_id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Quantity     int       `json:"quantity"`
	ReorderLevel int       `json:"reorder_level"`
	IsDisabled   bool      `json:"is_disabled"`
	CreatedAt    time.Time `json:"created_at"`
}

type MovementResponse struct {
	MovementID   uint64    `json:"movement_id"`
	MovementULID string    `json:"movement_ulid"`
	ConsumableID uint64    `json:"consumable_id"`
	Delta        int       `json:"delta"`
	Reason       *string   `json:"reason,omitempty"`
	MovedBy      *string   `json:"moved_by,omitempty"`
	MovedAt      time.Time `json:"moved_at"`
}

func toResponse(cn Consumable) ConsumableResponse {
	return ConsumableResponse{
		ConsumableID: cn.ConsumableID,
		SKU:          cn.SKU,
		Name:         cn.Name,
		Quantity:     cn.Quantity,
		ReorderLevel: cn.ReorderLevel,
		IsDisabled:   cn.IsDisabled,
		CreatedAt:    cn.CreatedAt,
	}
}

func toMovementResponse(m Movement) MovementResponse {
	return MovementResponse{
		MovementID:   m.MovementID,
		MovementULID: m.MovementULID,
		ConsumableID: m.ConsumableID,
		Delta:        m.Delta,
		Reason:       m.Reason,
		MovedBy:      m.MovedBy,
		MovedAt:      m.MovedAt,
	}
}
