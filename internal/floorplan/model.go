package floorplan

import (
	"encoding/json"
	"time"
)

// Layout はフロア1枚分の配置図ドキュメント。
// 中身の構造（ノード座標等）はフロントエンド側の管轄なので生JSONのまま持つ。
type Layout struct {
	FloorID   string
	Document  json.RawMessage
	UpdatedBy *string
	UpdatedAt time.Time
}

type SaveLayoutRequest struct {
	Document  json.RawMessage `json:"document" binding:"required"`
	UpdatedBy *string         `json:"updated_by,omitempty"`
}

type LayoutResponse struct {
	FloorID   string          `json:"floor_id"`
	Document  json.RawMessage `json:"document"`
	UpdatedBy *string         `json:"updated_by,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}
