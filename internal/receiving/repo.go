package receiving

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarhassan/retailops-backend/pkg/db/models"
	"github.com/omarhassan/retailops-backend/pkg/pagination"
)

// ListQuery configures goods receipt list queries.
type ListQuery struct {
	BranchID   *uuid.UUID
	SupplierID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Pagination pagination.Params
}

// Repository manages persistence for goods receipts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, receipt *models.GoodsReceipt) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.GoodsReceipt, error)
	List(ctx context.Context, params ListQuery) ([]models.GoodsReceipt, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a receiving repository bound to the provided
// database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, receipt *models.GoodsReceipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.GoodsReceipt, error) {
	var receipt models.GoodsReceipt
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Product").
		Preload("Supplier").
		Preload("Branch").
		Where("id = ?", id).
		First(&receipt).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &receipt, nil
}

func (r *repository) List(ctx context.Context, params ListQuery) ([]models.GoodsReceipt, int64, error) {
	page := params.Pagination.Normalize()
	query := r.db.WithContext(ctx).Model(&models.GoodsReceipt{})
	if params.BranchID != nil {
		query = query.Where("branch_id = ?", *params.BranchID)
	}
	if params.SupplierID != nil {
		query = query.Where("supplier_id = ?", *params.SupplierID)
	}
	if params.From != nil {
		query = query.Where("created_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("created_at < ?", *params.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var receipts []models.GoodsReceipt
	if err := query.
		Preload("Supplier").
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&receipts).Error; err != nil {
		return nil, 0, err
	}
	return receipts, total, nil
}
