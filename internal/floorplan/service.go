package floorplan

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ===== Error model =====
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
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }

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

// LayoutStore は永続化境界。
type LayoutStore interface {
	Upsert(ctx context.Context, floorID string, doc json.RawMessage, updatedBy *string) error
	Get(ctx context.Context, floorID string) (*Layout, error)
	ListFloorIDs(ctx context.Context) ([]string, error)
}

type Service struct {
	store LayoutStore
}

func NewService(db *sql.DB) *Service { return &Service{store: NewStore(db)} }

func (s *Service) Save(ctx context.Context, floorID string, req SaveLayoutRequest) (LayoutResponse, error) {
	floorID = strings.TrimSpace(floorID)
	if floorID == "" {
		return LayoutResponse{}, ErrInvalid("floor_id is required")
	}
	if len(req.Document) == 0 || !json.Valid(req.Document) {
		return LayoutResponse{}, ErrInvalid("document must be valid json")
	}

	if err := s.store.Upsert(ctx, floorID, req.Document, req.UpdatedBy); err != nil {
		return LayoutResponse{}, err
	}
	return s.Get(ctx, floorID)
}

func (s *Service) Get(ctx context.Context, floorID string) (LayoutResponse, error) {
	l, err := s.store.Get(ctx, strings.TrimSpace(floorID))
	if err != nil {
		return LayoutResponse{}, err
	}
	if l == nil {
		return LayoutResponse{}, ErrNotFound("floor layout not found")
	}
	return LayoutResponse{
		FloorID:   l.FloorID,
		Document:  l.Document,
		UpdatedBy: l.UpdatedBy,
		UpdatedAt: l.UpdatedAt,
	}, nil
}

func (s *Service) ListFloorIDs(ctx context.Context) ([]string, error) {
	return s.store.ListFloorIDs(ctx)
}
