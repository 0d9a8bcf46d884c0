package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
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

type Service struct {
	db    *sql.DB
	store *Store
}

func NewService(db *sql.DB) *Service { return &Service{db: db, store: NewStore(db)} }

var validStatuses = map[string]struct{}{
	StatusAvailable:   {},
	StatusActive:      {},
	StatusAssigned:    {},
	StatusMaintenance: {},
	StatusRetired:     {},
}

func (s *Service) Create(ctx context.Context, in CreateAssetRequest) (AssetResponse, error) {
	in.AssetTag = NormalizeTag(in.AssetTag)
	if in.AssetTag == "" || strings.TrimSpace(in.Name) == "" {
		return AssetResponse{}, ErrInvalid("asset_tag and name are required")
	}

	status := StatusAvailable
	if in.Status != nil {
		status = NormalizeStatus(*in.Status)
		if _, ok := validStatuses[status]; !ok {
			return AssetResponse{}, ErrInvalid("invalid status")
		}
	}
	loanable := true
	if in.Loanable != nil {
		loanable = *in.Loanable
	}

	if err := s.store.Insert(ctx, in, status, loanable); err != nil {
		if isDuplicateKey(err) {
			return AssetResponse{}, ErrConflict("asset_tag already exists")
		}
		return AssetResponse{}, err
	}
	return s.Get(ctx, in.AssetTag)
}

func (s *Service) Get(ctx context.Context, tag string) (AssetResponse, error) {
	a, err := s.store.GetByTag(ctx, NormalizeTag(tag))
	if err != nil {
		return AssetResponse{}, err
	}
	if a == nil {
		return AssetResponse{}, ErrNotFound("asset not found")
	}
	return toResponse(*a), nil
}

func (s *Service) List(ctx context.Context, f AssetSearchQuery, p Page) ([]AssetResponse, int64, error) {
	items, total, err := s.store.List(ctx, f, p)
	if err != nil {
		return nil, 0, err
	}
	out := make([]AssetResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toResponse(a))
	}
	return out, total, nil
}

func (s *Service) Update(ctx context.Context, tag string, in UpdateAssetRequest) (AssetResponse, error) {
	if in.Status != nil {
		st := NormalizeStatus(*in.Status)
		if _, ok := validStatuses[st]; !ok {
			return AssetResponse{}, ErrInvalid("invalid status")
		}
	}
	if err := s.store.UpdateByTag(ctx, NormalizeTag(tag), in); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AssetResponse{}, ErrNotFound("asset not found")
		}
		return AssetResponse{}, err
	}
	return s.Get(ctx, tag)
}

// Retire: 廃棄処理。物理削除はしない。
func (s *Service) Retire(ctx context.Context, tag string) (AssetResponse, error) {
	if err := s.store.UpdateStatus(ctx, NormalizeTag(tag), StatusRetired); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AssetResponse{}, ErrNotFound("asset not found")
		}
		return AssetResponse{}, err
	}
	return s.Get(ctx, tag)
}

// ReadByTag は貸出ワークフロー等のコラボレータ向け。
// 見つからない場合は (nil, nil) を返す。
func (s *Service) ReadByTag(ctx context.Context, tag string) (*Asset, error) {
	return s.store.GetByTag(ctx, NormalizeTag(tag))
}

func toResponse(a Asset) AssetResponse {
	return AssetResponse{
		AssetTag: a.AssetTag,
		Name:     a.Name,
		Category: a.Category,
		Status:   a.Status,
		Loanable: a.Loanable,
		Serial:   a.Serial,
		Location: a.Location,
		Notes:    a.Notes,
	}
}
