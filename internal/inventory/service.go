package inventory

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	ulid "github.com/oklog/ulid/v2"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
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

// ConsumableStore は永続化境界。
type ConsumableStore interface {
	Insert(ctx context.Context, in CreateConsumableRequest) (uint64, error)
	GetBySKU(ctx context.Context, sku string) (*Consumable, error)
	List(ctx context.Context, f SearchQuery, p Page) ([]Consumable, int64, error)
	Disable(ctx context.Context, sku string) error
	ExecAdjust(ctx context.Context, movementULID, sku string, delta int, reason, movedBy *string) (*Consumable, *Movement, error)
	ListMovements(ctx context.Context, sku string, p Page) ([]Movement, int64, error)
}

type Service struct {
	store ConsumableStore
	clock Clock
	id    IDGen
}

func NewService(db *sql.DB) *Service {
	return &Service{store: NewStore(db), clock: realClock{}, id: ulidGen{}}
}

func (s *Service) Create(ctx context.Context, in CreateConsumableRequest) (ConsumableResponse, error) {
	in.SKU = strings.ToUpper(strings.TrimSpace(in.SKU))
	if in.SKU == "" || strings.TrimSpace(in.Name) == "" {
		return ConsumableResponse{}, ErrInvalid("sku and name are required")
	}
	if in.Quantity < 0 || in.ReorderLevel < 0 {
		return ConsumableResponse{}, ErrInvalid("quantity and reorder_level must be >= 0")
	}

	if _, err := s.store.Insert(ctx, in); err != nil {
		if isDuplicateKey(err) {
			return ConsumableResponse{}, ErrConflict("sku already exists")
		}
		return ConsumableResponse{}, err
	}
	return s.Get(ctx, in.SKU)
}

func (s *Service) Get(ctx context.Context, sku string) (ConsumableResponse, error) {
	cn, err := s.store.GetBySKU(ctx, strings.ToUpper(strings.TrimSpace(sku)))
	if err != nil {
		return ConsumableResponse{}, err
	}
	if cn == nil {
		return ConsumableResponse{}, ErrNotFound("consumable not found")
	}
	return toResponse(*cn), nil
}

func (s *Service) List(ctx context.Context, f SearchQuery, p Page) ([]ConsumableResponse, int64, error) {
	items, total, err := s.store.List(ctx, f, p)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ConsumableResponse, 0, len(items))
	for _, cn := range items {
		out = append(out, toResponse(cn))
	}
	return out, total, nil
}

func (s *Service) Disable(ctx context.Context, sku string) error {
	err := s.store.Disable(ctx, strings.ToUpper(strings.TrimSpace(sku)))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound("consumable not found")
	}
	return err
}

// Consume: 払い出し。quantity は正の値で受けて負の delta にする。
func (s *Service) Consume(ctx context.Context, sku string, req AdjustStockRequest) (ConsumableResponse, MovementResponse, error) {
	return s.adjust(ctx, sku, -req.Quantity, req)
}

// Restock: 入庫。
func (s *Service) Restock(ctx context.Context, sku string, req AdjustStockRequest) (ConsumableResponse, MovementResponse, error) {
	return s.adjust(ctx, sku, req.Quantity, req)
}

func (s *Service) adjust(ctx context.Context, sku string, delta int, req AdjustStockRequest) (ConsumableResponse, MovementResponse, error) {
	if req.Quantity <= 0 {
		return ConsumableResponse{}, MovementResponse{}, ErrInvalid("quantity must be > 0")
	}
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return ConsumableResponse{}, MovementResponse{}, ErrInvalid("sku is required")
	}

	now := s.clock.Now()
	cn, mv, err := s.store.ExecAdjust(ctx, s.id.NewULID(now), sku, delta, req.Reason, req.MovedBy)
	if err != nil {
		return ConsumableResponse{}, MovementResponse{}, err
	}
	return toResponse(*cn), toMovementResponse(*mv), nil
}

func (s *Service) ListMovements(ctx context.Context, sku string, p Page) ([]MovementResponse, int64, error) {
	items, total, err := s.store.ListMovements(ctx, strings.ToUpper(strings.TrimSpace(sku)), p)
	if err != nil {
		return nil, 0, err
	}
	out := make([]MovementResponse, 0, len(items))
	for _, m := range items {
		out = append(out, toMovementResponse(m))
	}
	return out, total, nil
}
