package borrowing

import (
	"context"
	"crypto/rand"
	"database/sql"
	"time"

	ulid "github.com/oklog/ulid/v2"

	"ATLAS-backend/internal/assets"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface {
	NewULID(t time.Time) string
}

type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// AssetReader は資産サブシステムへの読み取り境界。
// 見つからない場合は (nil, nil)。
type AssetReader interface {
	ReadByTag(ctx context.Context, tag string) (*assets.Asset, error)
}

// Store は貸出レコードの永続化境界。
// ExecCheckout / ExecCheckin はそれぞれ1トランザクションで完結すること。
type Store interface {
	FindOpenByTag(ctx context.Context, tag string) (*BorrowRecord, error)
	ExecCheckout(ctx context.Context, rec *BorrowRecord) (*BorrowRecord, error)
	GetByID(ctx context.Context, id string) (*BorrowRecord, error)
	ExecCheckin(ctx context.Context, id string, upd CheckinUpdate) (*BorrowRecord, error)
	List(ctx context.Context, f BorrowFilter, p Page) ([]BorrowRecord, int64, error)
}

// ===== Service本体 =====

type Service struct {
	store  Store
	assets AssetReader
	clock  Clock
	id     IDGen
}

func NewService(conn *sql.DB, schema Schema, reader AssetReader) *Service {
	return &Service{
		store:  NewSQLStore(conn, schema),
		assets: reader,
		clock:  realClock{},
		id:     ulidGen{},
	}
}

// 貸出登録
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*BorrowResponse, error) {
	tag := assets.NormalizeTag(req.AssetTag)
	if tag == "" {
		return nil, ErrValidation("asset_tag is required")
	}
	if req.BorrowerName == "" {
		return nil, ErrValidation("borrowername is required")
	}
	if req.CheckoutDate == "" {
		return nil, ErrValidation("checkout_date is required")
	}
	if _, err := time.Parse(DateLayout, req.CheckoutDate); err != nil {
		return nil, ErrValidation("invalid checkout_date format, expected YYYY-MM-DD")
	}
	if req.DueDate != nil && *req.DueDate != "" {
		if _, err := time.Parse(DateLayout, *req.DueDate); err != nil {
			return nil, ErrValidation("invalid due_date format, expected YYYY-MM-DD")
		}
	}
	status := StatusCheckedOut
	if req.Status != nil && *req.Status != "" {
		if !isOpenStatus(*req.Status) {
			return nil, ErrValidation("status must be a checked_out variant")
		}
		status = assets.NormalizeStatus(*req.Status)
	}

	// 先行チェック（早期リターン用。確定判定は ExecCheckout 内で再実施する）
	a, err := s.assets.ReadByTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound("asset not found")
	}
	if !eligible(a) {
		return nil, ErrNotAvailable("asset is not available for borrowing")
	}

	open, err := s.store.FindOpenByTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, ErrConflict("asset is already checked out")
	}

	now := s.clock.Now()
	rec := &BorrowRecord{
		BorrowULID:      s.id.NewULID(now),
		AssetTag:        tag,
		BorrowerName:    req.BorrowerName,
		BorrowerContact: emptyToNil(req.BorrowerContact),
		CheckoutDate:    req.CheckoutDate,
		DueDate:         emptyToNil(req.DueDate),
		Purpose:         emptyToNil(req.Purpose),
		Location:        emptyToNil(req.Location),
		Notes:           emptyToNil(req.Notes),
		Status:          status,
	}

	out, err := s.store.ExecCheckout(ctx, rec)
	if err != nil {
		return nil, err
	}
	resp := toResponse(out)
	return &resp, nil
}

// 返却登録
func (s *Service) Checkin(ctx context.Context, id string, req CheckinRequest) (*BorrowResponse, error) {
	if id == "" {
		return nil, ErrValidation("id is required")
	}
	if req.Condition == "" {
		return nil, ErrValidation("condition is required")
	}

	upd := CheckinUpdate{
		Condition:         req.Condition,
		DamageDescription: emptyToNil(req.DamageDescription),
		MaintenanceNotes:  emptyToNil(req.MaintenanceNotes),
		ReturnedByName:    emptyToNil(req.ReturnedByName),
		CheckinAt:         s.clock.Now(),
	}
	if req.DamageReported != nil {
		upd.DamageReported = *req.DamageReported
	}
	if req.MaintenanceRequired != nil {
		upd.MaintenanceRequired = *req.MaintenanceRequired
	}

	out, err := s.store.ExecCheckin(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	resp := toResponse(out)
	return &resp, nil
}

// 貸出単一取得
func (s *Service) Get(ctx context.Context, id string) (*BorrowResponse, error) {
	if id == "" {
		return nil, ErrValidation("id is required")
	}
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound("borrow record not found")
	}
	resp := toResponse(rec)
	return &resp, nil
}

// 貸出一覧
func (s *Service) List(ctx context.Context, f BorrowFilter, p Page) ([]BorrowResponse, int64, error) {
	if f.Status != nil {
		st := assets.NormalizeStatus(*f.Status)
		f.Status = &st
	}
	if f.AssetTag != nil {
		t := assets.NormalizeTag(*f.AssetTag)
		f.AssetTag = &t
	}
	items, total, err := s.store.List(ctx, f, p)
	if err != nil {
		return nil, 0, err
	}
	out := make([]BorrowResponse, 0, len(items))
	for i := range items {
		out = append(out, toResponse(&items[i]))
	}
	return out, total, nil
}

// eligible: status が available/active かつ loanable であること
func eligible(a *assets.Asset) bool {
	switch a.Status {
	case assets.StatusAvailable, assets.StatusActive:
		return a.Loanable
	default:
		return false
	}
}

func emptyToNil(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}
