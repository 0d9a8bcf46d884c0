package patches

import "time"

// 適用状況の報告リクエスト（同一 asset_tag + patch_id は上書き）
type ReportPatchRequest struct {
	AssetTag  string  `json:"asset_tag" binding:"required"`
	PatchID   string  `json:"patch_id" binding:"required"`
	Status    string  `json:"status" binding:"required"`
	AppliedOn *string `json:"applied_on,omitempty"` // "YYYY-MM-DD"
	Note      *string `json:"note,omitempty"`
}

type PatchRecordResponse struct {
	RecordID   uint64    `json:"record_id"`
	RecordULID string    `json:"record_ulid"`
	AssetTag   string    `json:"asset_tag"`
	PatchID    string    `json:"patch_id"`
	Status     string    `json:"status"`
	AppliedOn  *string   `json:"applied_on,omitempty"`
	DetectedAt time.Time `json:"detected_at"`
	Note       *string   `json:"note,omitempty"`
}

// ステータス別の件数サマリ
type SummaryRow struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func (p PatchRecord) toDTO() PatchRecordResponse {
	return PatchRecordResponse{
		RecordID:   p.RecordID,
		RecordULID: p.RecordULID,
		AssetTag:   p.AssetTag,
		PatchID:    p.PatchID,
		Status:     p.Status,
		AppliedOn:  p.AppliedOn,
		DetectedAt: p.DetectedAt,
		Note:       p.Note,
	}
}
