package patches

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	ulid "github.com/oklog/ulid/v2"

	"ATLAS-backend/internal/assets"
)

// ===== Error model (assets/borrowing と同型) =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		default:
			return 500
		}
	}
	return 500
}

// ---- Clock & ID ----
type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface{ NewULID(t time.Time) string }
type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// PatchStore は永続化境界。テストでは偽物に差し替える。
type PatchStore interface {
	Upsert(ctx context.Context, ulid, assetTag, patchID, status string, appliedOn, note *string) (PatchRecord, bool, error)
	List(ctx context.Context, q ListQuery) ([]PatchRecord, int64, error)
	Summary(ctx context.Context, assetTag *string) ([]SummaryRow, error)
}

type Service struct {
	store PatchStore
	clock Clock
	id    IDGen
}

func NewService(db *sql.DB) *Service {
	return &Service{store: NewStore(db), clock: realClock{}, id: ulidGen{}}
}

var validStatuses = map[string]struct{}{
	StatusInstalled: {},
	StatusPending:   {},
	StatusFailed:    {},
	StatusExempt:    {},
}

// Report: 1台×1パッチの適用状況を登録（既存行は上書き）
func (s *Service) Report(ctx context.Context, req ReportPatchRequest) (PatchRecordResponse, bool, error) {
	tag := assets.NormalizeTag(req.AssetTag)
	if tag == "" {
		return PatchRecordResponse{}, false, ErrInvalid("asset_tag is required")
	}
	if req.PatchID == "" {
		return PatchRecordResponse{}, false, ErrInvalid("patch_id is required")
	}
	status := assets.NormalizeStatus(req.Status)
	if _, ok := validStatuses[status]; !ok {
		return PatchRecordResponse{}, false, ErrInvalid("status must be installed/pending/failed/exempt")
	}
	if req.AppliedOn != nil && *req.AppliedOn != "" {
		if _, err := time.Parse(DateLayout, *req.AppliedOn); err != nil {
			return PatchRecordResponse{}, false, ErrInvalid("invalid applied_on format, expected YYYY-MM-DD")
		}
	}

	rec, created, err := s.store.Upsert(ctx, s.id.NewULID(s.clock.Now()), tag, req.PatchID, status, req.AppliedOn, req.Note)
	if err != nil {
		return PatchRecordResponse{}, false, err
	}
	return rec.toDTO(), created, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]PatchRecordResponse, int64, error) {
	if q.Status != nil && *q.Status != "" {
		st := assets.NormalizeStatus(*q.Status)
		if _, ok := validStatuses[st]; !ok {
			return nil, 0, ErrInvalid("invalid status filter")
		}
		q.Status = &st
	}
	items, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PatchRecordResponse, 0, len(items))
	for _, p := range items {
		out = append(out, p.toDTO())
	}
	return out, total, nil
}

func (s *Service) Summary(ctx context.Context, assetTag *string) ([]SummaryRow, error) {
	return s.store.Summary(ctx, assetTag)
}
