package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarhassan/retailops-backend/pkg/db/models"
	"github.com/omarhassan/retailops-backend/pkg/pagination"
)

// Repository manages persistence for product audit records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.ProductAudit) error
	ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.ProductAudit, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an audit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.ProductAudit) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.ProductAudit, int64, error) {
	params = params.Normalize()
	query := r.db.WithContext(ctx).
		Model(&models.ProductAudit{}).
		Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.ProductAudit
	if err := query.
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
