package document

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=document
type Repository interface {
	GetDocument(ctx context.Context, uid uuid.UUID) (*Document, error)
	MergeDocument(ctx context.Context, uid uuid.UUID, data json.RawMessage) (*Document, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, uid uuid.UUID) (*Document, error) {
	return s.repo.GetDocument(ctx, uid)
}

// Merge upserts the account's document. The first write stamps createdAt;
// every write stamps updatedAt; top-level fields absent from data are left
// as they were.
func (s *Service) Merge(ctx context.Context, uid uuid.UUID, data json.RawMessage) (*Document, error) {
	if !isJSONObject(data) {
		return nil, ErrBadData
	}

	return s.repo.MergeDocument(ctx, uid, data)
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}

	return json.Valid(trimmed)
}
