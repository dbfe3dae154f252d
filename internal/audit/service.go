package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarhassan/retailops-backend/pkg/db/models"
	"github.com/omarhassan/retailops-backend/pkg/enums"
	apperrors "github.com/omarhassan/retailops-backend/pkg/errors"
	"github.com/omarhassan/retailops-backend/pkg/pagination"
)

// Service records and reads the append-only product audit trail.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Record(ctx context.Context, input RecordInput) (*models.ProductAudit, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*pagination.Page[models.ProductAudit], error)
}

// RecordInput captures one audit entry. OldData and NewData are snapshots
// serialized by the caller.
type RecordInput struct {
	ProductID uuid.UUID
	Action    enums.AuditAction
	OldData   json.RawMessage
	NewData   json.RawMessage
	UserID    uuid.UUID
}

type service struct {
	repo Repository
}

// NewService wires an audit service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Record(ctx context.Context, input RecordInput) (*models.ProductAudit, error) {
	if input.ProductID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "product id is required")
	}
	if input.UserID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id is required")
	}
	if !input.Action.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid audit action %q", input.Action))
	}

	record := &models.ProductAudit{
		ID:        uuid.New(),
		ProductID: input.ProductID,
		Action:    input.Action,
		OldData:   input.OldData,
		NewData:   input.NewData,
		UserID:    input.UserID,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "recording audit entry")
	}
	return record, nil
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*pagination.Page[models.ProductAudit], error) {
	if productID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "product id is required")
	}
	records, total, err := s.repo.ListByProduct(ctx, productID, params)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing audit entries")
	}
	return &pagination.Page[models.ProductAudit]{Data: records, Total: total}, nil
}
