package patches

import "time"

// パッチ適用ステータス
const (
	StatusInstalled = "installed"
	StatusPending   = "pending"
	StatusFailed    = "failed"
	StatusExempt    = "exempt"

	DateLayout       = "2006-01-02"
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// DB行に対応（スキャン用）
type patchRow struct {
	RecordID   uint64
	RecordULID string
	AssetTag   string
	PatchID    string
	Status     string
	AppliedOn  *string // DATE → "YYYY-MM-DD"
	DetectedAt time.Time
	Note       *string
}

type PatchRecord struct {
	RecordID   uint64
	RecordULID string
	AssetTag   string
	PatchID    string
	Status     string
	AppliedOn  *string
	DetectedAt time.Time
	Note       *string
}

func (r patchRow) toModel() PatchRecord {
	return PatchRecord{
		RecordID:   r.RecordID,
		RecordULID: r.RecordULID,
		AssetTag:   r.AssetTag,
		PatchID:    r.PatchID,
		Status:     r.Status,
		AppliedOn:  r.AppliedOn,
		DetectedAt: r.DetectedAt.UTC(),
		Note:       r.Note,
	}
}

type ListQuery struct {
	AssetTag *string
	PatchID  *string
	Status   *string
	From     *string // applied_on >=
	To       *string // applied_on <=
	Limit    int
	Offset   int
}
